// Tilegate - Map Tile and Time-Series Query Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tilegate

/*
Package websocket pushes tile URL refreshes to connected browsers.

It uses gorilla/websocket with a hub-client layout:

	┌──────────┐
	│   Hub    │ ← Broadcasts to all clients
	└────┬─────┘
	     │
	┌────┴─────┬─────────┐
	│ Client1  │ Client2 │ ...
	└──────────┴─────────┘

Each client runs a readPump (answers application pings, tracks pongs) and a
writePump (serializes queued messages, sends protocol pings).

Message Types:

  - tile_url: a new exchanged tile URL {url, sequence}
  - ping / pong: application-level keepalive

Usage:

	hub := websocket.NewHub()
	go hub.RunWithContext(ctx)
	upgrader := websocket.NewUpgrader(cfg.Security.CORSOrigins)

	current := func() (string, uint64) {
	    if tok := exchanger.Current(); tok != nil {
	        return tok.TileBaseURL, tok.Sequence
	    }
	    return "", 0
	}
	r.With(gate.Require).Get("/ws/tileServerUrl", func(w http.ResponseWriter, r *http.Request) {
	    websocket.ServeWS(hub, upgrader, w, r, current)
	})

The hub reads the current URL when it registers the client and skips any
later broadcast whose sequence is not newer, so a client never regresses
to an older token.

Broadcasts never block: a client whose queue is full is dropped.
*/
package websocket
