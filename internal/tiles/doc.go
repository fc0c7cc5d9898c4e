// Tilegate - Map Tile and Time-Series Query Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tilegate

/*
Package tiles owns the tile-provider side of the gateway: the upstream token
exchanger and the tile relay.

# Token Exchanger

The Exchanger trades the operator's long-lived minting key for a short-lived
token and derives a TileBaseURL template from it:

	https://api.mapbox.com/styles/v1/{user}/{style}/tiles/256/{z}/{x}/{y}?access_token=tk.xxx

The current value lives in a single atomic.Pointer[UpstreamToken]. The
Exchanger is its only writer and always stores a fresh value; readers never
see a partially built token.

State machine:

	Initializing --first success--> Ready --success--> Ready
	     |                            |
	     +--failure (logged)          +--failure (stale token kept)

A failed exchange is logged and counted, and the next tick is the retry.
Ticks that find an exchange still in flight are skipped.

# Tile Relay

Relay.Fetch builds the provider URL for one TileCoordinate and returns the
upstream response for the caller to stream. In direct mode the URL carries
the operator API key; in exchanged mode it is the current TileBaseURL with
the coordinate filled in.
*/
package tiles
