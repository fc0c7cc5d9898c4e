// Tilegate - Map Tile and Time-Series Query Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tilegate

/*
Package events is the in-process event bus, built on watermill's gochannel
pub/sub.

The token exchanger publishes TokenRefreshed on TopicTokenRefreshed after
every successful exchange. The Forwarder subscribes and relays each event
to the websocket hub, so connected browsers learn the new tile URL without
polling.

	bus := events.NewBus()
	defer bus.Close()

	fwd := events.NewForwarder(bus, hub)
	go fwd.RunWithContext(ctx)

	_ = bus.PublishTokenRefreshed(ctx, 3, "https://...?access_token=tk")
*/
package events
