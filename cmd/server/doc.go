// Tilegate - Map Tile and Time-Series Query Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tilegate

/*
Package main is the entry point for the Tilegate server.

Tilegate sits between a browser map and chart viewer and two upstreams: a
Mapbox-style tile provider and an InfluxDB v2 instance. It issues bearer
credentials, keeps a short-lived provider token fresh, relays tiles and
runs two catalogued Flux queries on the browser's behalf.

# Application Architecture

Long-running components run under a Suture v4 supervisor tree:

	RootSupervisor ("tilegate")
	├── ExchangeSupervisor ("exchange-layer")
	│   └── Token exchanger (exchanged mode, or whenever MAP_ACCESS_TOKEN is set)
	├── MessagingSupervisor ("messaging-layer")
	│   ├── WebSocket hub
	│   └── Event forwarder (watermill bus -> hub)
	└── APISupervisor ("api-layer")
	    └── HTTP server

Component initialization order:

 1. Configuration: koanf with defaults, optional YAML file, environment
 2. Logging: zerolog with JSON or console output
 3. Upstream clients: one circuit breaker each for tokens, tiles and influx
 4. Exchanger and tile relay
 5. Event bus, WebSocket hub and forwarder
 6. Credential issuer, verifier and gates
 7. Chi router and HTTP server
 8. Supervisor tree

# Configuration

	# Required
	INFLUX_URL=http://influxdb:8086
	INFLUX_TOKEN=<token or file:///run/secrets/influx_token>
	ORG_ID=<organization id>
	JWT_SECRET=<signing secret>
	API_KEY=<provider key>            # direct mode

	# Exchanged tile mode
	TILE_MODE=exchanged
	MAP_ACCESS_TOKEN=<minting key>
	TILE_REFRESH_INTERVAL=50m
	TILE_TOKEN_TTL=1h

	# Optional
	ISSUANCE_MODE=basic               # require operator credentials on POST /jwt
	ISSUER_USERNAME=operator
	ISSUER_PASSWORD=<password>
	QUERY_ERROR_COMPAT=true           # 200 text/plain on query failure
	CONFIG_PATH=/etc/tilegate/config.yaml

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains
in-flight requests, the exchanger stops its refresh loop, the hub closes
every client and the event bus is closed last. Services that miss the
shutdown timeout are reported by name.
*/
package main
