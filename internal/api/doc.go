// Tilegate - Map Tile and Time-Series Query Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tilegate

/*
Package api provides the gateway's HTTP surface on a chi router.

Routes:

	POST /jwt                    issue a bearer credential (text/plain)
	GET  /tileServerUrl          current exchanged tile URL (Gate)
	GET  /ws/tileServerUrl       same URL pushed over a WebSocket (Gate, query token)
	GET  /map/{z}/{x}/{y}        relay one tile image
	GET  /linequery, /mapquery   run a catalogued Flux query
	GET  /api/v1/health[/live|/ready]
	GET  /metrics

The wire contracts of /jwt, /tileServerUrl, the tile relay and the query
routes are fixed by existing browser clients. Everything the gateway itself
reports (validation failures, unavailable upstreams, health) uses the
APIResponse envelope written by ResponseWriter.

Handlers depend on small interfaces (TileFetcher, TokenStatus, QueryRunner)
so tests can drive them without a provider or database.
*/
package api
