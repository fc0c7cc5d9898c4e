// Tilegate - Map Tile and Time-Series Query Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tilegate

// Package metrics declares the Prometheus collectors exported on /metrics.
//
// Collectors are registered on the default registry through promauto, so
// importing the package is enough to expose them. Callers use the Record*
// helpers rather than touching label values directly, which keeps label
// cardinality bounded.
//
// Families:
//   - api_*: request count, latency and in-flight gauge, labeled by route pattern
//   - circuit_breaker_*: state, results and transitions per upstream
//   - tile_token_*: exchange outcomes, skipped ticks, last success, expiry
//   - tile_relay_*: relayed tiles by mode and status class
//   - influx_query_*: proxied queries by catalogue name and result
//   - credentials_*: issued and verified bearer credentials
//   - websocket_*: live tile-URL subscribers and pushed messages
package metrics
