// Tilegate - Map Tile and Time-Series Query Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tilegate

/*
Package supervisor provides process supervision for the gateway using suture v4.

# Overview

Long-running components are organized into three layers:

	RootSupervisor ("tilegate")
	├── ExchangeSupervisor ("exchange-layer")
	│   └── ExchangerService (TILE_MODE=exchanged)
	├── MessagingSupervisor ("messaging-layer")
	│   ├── WebSocketHubService
	│   └── ForwarderService
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Each layer counts failures independently, so a token provider outage that
crashes the exchanger does not restart the HTTP server.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddExchangeService(services.NewExchangerService(exchanger))
	tree.AddMessagingService(services.NewWebSocketHubService(hub))
	tree.AddMessagingService(services.NewForwarderService(forwarder))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

	errCh := tree.ServeBackground(ctx)

Supervisor events (start, failure, backoff, stop timeout) are logged through
sutureslog into the zerolog-backed slog handler from internal/logging.

# See Also

  - internal/supervisor/services: service wrappers
  - github.com/thejerf/suture/v4
*/
package supervisor
