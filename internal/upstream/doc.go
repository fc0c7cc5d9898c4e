// Tilegate - Map Tile and Time-Series Query Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tilegate

/*
Package upstream provides the outbound HTTP client shared by the tile
relay, the token exchanger and the query proxy.

Every request passes through a named circuit breaker (sony/gobreaker) and,
when configured, a token-bucket limiter (golang.org/x/time/rate). Breaker
state is exported through the tilegate_circuit_breaker_* metrics.

Circuit breaker configuration:
  - Max 3 requests in half-open state
  - 1 minute measurement window
  - 2 minute timeout before attempting recovery
  - Opens after 60% failure rate with minimum 10 requests

Transport errors and 5xx responses count as failures. A 5xx response is
still handed back to the caller so it can be relayed unchanged.

Usage:

	client := upstream.NewClient(upstream.Settings{
	    Name:    "mapbox-tiles",
	    Timeout: 20 * time.Second,
	    RPS:     50,
	})
	resp, err := client.Do(req)
*/
package upstream
