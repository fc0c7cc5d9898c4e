// Tilegate - Map Tile and Time-Series Query Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tilegate

package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/tilegate/internal/auth"
	"github.com/tomtom215/tilegate/internal/middleware"
)

// queryCompressionLevel is the gzip level for Flux CSV responses.
const queryCompressionLevel = 5

// compressibleQueryTypes are the content types compressed on query routes.
var compressibleQueryTypes = []string{"text/csv", "application/csv", "text/plain", "application/json"}

// Router wires handlers to routes.
type Router struct {
	handler       *Handler
	gate          *auth.Gate
	issuanceGate  *auth.BasicGate
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a Router. issuanceGate is nil for open issuance.
func NewRouter(handler *Handler, gate *auth.Gate, issuanceGate *auth.BasicGate, mw *ChiMiddleware) (*Router, error) {
	if handler == nil {
		return nil, fmt.Errorf("handler is required")
	}
	if gate == nil {
		return nil, fmt.Errorf("credential gate is required")
	}
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	return &Router{
		handler:       handler,
		gate:          gate,
		issuanceGate:  issuanceGate,
		chiMiddleware: mw,
	}, nil
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// Global middleware, in order
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.AccessLog)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // global so OPTIONS preflights are answered
	r.Use(middleware.PrometheusMetrics)

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
		r.Get("/", router.handler.Health)
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())

		issue := r.With(router.chiMiddleware.RateLimitIssue())
		if router.issuanceGate != nil {
			issue = issue.With(router.issuanceGate.Require)
		}
		issue.Post("/jwt", router.handler.IssueCredential)

		r.With(router.gate.Require).Get("/tileServerUrl", router.handler.TileServerURL)
		r.With(router.gate.WithQueryToken().Require).Get("/ws/tileServerUrl", router.handler.TileServerURLSocket)

		r.Get("/map/{z}/{x}/{y}", router.handler.Tile)

		r.Group(func(r chi.Router) {
			r.Use(chimiddleware.Compress(queryCompressionLevel, compressibleQueryTypes...))
			r.Get("/linequery", router.handler.LineQuery)
			r.Get("/mapquery", router.handler.MapQuery)
		})
	})

	return r
}
