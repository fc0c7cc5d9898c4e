// Tilegate - Map Tile and Time-Series Query Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tilegate

package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/tilegate/internal/auth"
	"github.com/tomtom215/tilegate/internal/influx"
	"github.com/tomtom215/tilegate/internal/tiles"
	ws "github.com/tomtom215/tilegate/internal/websocket"
)

// TileFetcher is satisfied by *tiles.Relay.
type TileFetcher interface {
	Fetch(ctx context.Context, c tiles.TileCoordinate) (*http.Response, error)
	Mode() string
}

// TokenStatus is satisfied by *tiles.Exchanger.
type TokenStatus interface {
	Current() *tiles.UpstreamToken
	Ready() bool
	Status() tiles.Status
}

// QueryRunner is satisfied by *influx.Client.
type QueryRunner interface {
	Query(ctx context.Context, spec influx.QuerySpec) (*http.Response, error)
}

// BreakerReporter is satisfied by *upstream.Client.
type BreakerReporter interface {
	Name() string
	State() string
}

// HandlerConfig holds handler dependencies. Tokens must be left nil (not a
// typed nil pointer) when no exchanger runs.
type HandlerConfig struct {
	Issuer    *auth.Issuer
	Tiles     TileFetcher
	Tokens    TokenStatus
	Queries   QueryRunner
	Catalogue *influx.Catalogue
	Hub       *ws.Hub
	Upgrader  *websocket.Upgrader
	Breakers  []BreakerReporter

	// MaxZoom bounds the z path segment of tile requests.
	MaxZoom int

	// LegacyQueryErrors answers every failed query with 200 text/plain and
	// the error message, as older dashboard clients expect.
	LegacyQueryErrors bool

	Version string
}

// Handler contains dependencies for API handlers.
//
// Handler methods are split across files:
//   - handlers_auth.go: credential issuance and tile URL lookup
//   - handlers_tiles.go: tile relay
//   - handlers_query.go: catalogued Flux queries
//   - handlers_health.go: liveness, readiness and status
type Handler struct {
	issuer            *auth.Issuer
	tiles             TileFetcher
	tokens            TokenStatus
	queries           QueryRunner
	catalogue         *influx.Catalogue
	hub               *ws.Hub
	upgrader          *websocket.Upgrader
	breakers          []BreakerReporter
	maxZoom           int
	legacyQueryErrors bool
	version           string
	startTime         time.Time
}

// NewHandler creates a Handler. Issuer, Tiles, Queries and Catalogue are
// required; Tokens, Hub and Upgrader are optional.
func NewHandler(cfg HandlerConfig) (*Handler, error) {
	switch {
	case cfg.Issuer == nil:
		return nil, fmt.Errorf("issuer is required")
	case cfg.Tiles == nil:
		return nil, fmt.Errorf("tile fetcher is required")
	case cfg.Queries == nil:
		return nil, fmt.Errorf("query runner is required")
	case cfg.Catalogue == nil:
		return nil, fmt.Errorf("query catalogue is required")
	}

	upgrader := cfg.Upgrader
	if upgrader == nil {
		upgrader = ws.NewUpgrader(nil)
	}
	version := cfg.Version
	if version == "" {
		version = "dev"
	}

	return &Handler{
		issuer:            cfg.Issuer,
		tiles:             cfg.Tiles,
		tokens:            cfg.Tokens,
		queries:           cfg.Queries,
		catalogue:         cfg.Catalogue,
		hub:               cfg.Hub,
		upgrader:          upgrader,
		breakers:          cfg.Breakers,
		maxZoom:           cfg.MaxZoom,
		legacyQueryErrors: cfg.LegacyQueryErrors,
		version:           version,
		startTime:         time.Now(),
	}, nil
}

// currentTileURL returns the exchanged tile URL template and its sequence
// from a single token load, or "" while the exchanger is initializing or
// disabled.
func (h *Handler) currentTileURL() (string, uint64) {
	if h.tokens == nil {
		return "", 0
	}
	tok := h.tokens.Current()
	if tok == nil {
		return "", 0
	}
	return tok.TileBaseURL, tok.Sequence
}
