// Tilegate - Map Tile and Time-Series Query Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tilegate

/*
Package services provides suture.Service wrappers for gateway components.

Each wrapper translates a component's lifecycle into suture's
Serve(ctx) error contract and implements fmt.Stringer so supervisor events
name the service.

# Available Services

Token Exchanger (ExchangerService):
  - Adapts tiles.Exchanger Start/Stop to Serve
  - Stop waits for an in-flight exchange before returning

WebSocket Hub and Event Forwarder (RunnerService):
  - Delegate to RunWithContext, which already follows the Serve contract
  - NewWebSocketHubService and NewForwarderService differ only in name

HTTP Server (HTTPServerService):
  - Runs ListenAndServe and drains with Shutdown on cancellation

# Error Handling

	nil         -> service stopped cleanly, will not restart
	error       -> service crashed, supervisor will restart
	ctx.Err()   -> shutdown requested, normal termination

# See Also

  - internal/supervisor: the tree these services are added to
  - github.com/thejerf/suture/v4: underlying supervision library
*/
package services
