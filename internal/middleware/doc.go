// Tilegate - Map Tile and Time-Series Query Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tilegate

/*
Package middleware provides chi-compatible HTTP middleware shared by every
gateway route.

Key Components:

  - RequestID: honours or generates X-Request-ID and seeds the logging context
  - PrometheusMetrics: request counters and latency histograms labelled by
    chi route pattern, so /map/{z}/{x}/{y} is one series, not millions
  - AccessLog: one structured zerolog line per completed request

Middleware Stack:

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog)
	r.Use(middleware.PrometheusMetrics)

All wrappers use chi's WrapResponseWriter so Hijack (WebSocket upgrades)
and Flush (streamed query bodies) still reach the underlying writer.

See Also:

  - internal/auth: credential gates
  - internal/api: route table
  - internal/metrics: metric definitions
*/
package middleware
