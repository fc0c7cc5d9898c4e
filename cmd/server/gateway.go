// Tilegate - Map Tile and Time-Series Query Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tilegate

package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/tomtom215/tilegate/internal/api"
	"github.com/tomtom215/tilegate/internal/auth"
	"github.com/tomtom215/tilegate/internal/config"
	"github.com/tomtom215/tilegate/internal/events"
	"github.com/tomtom215/tilegate/internal/influx"
	"github.com/tomtom215/tilegate/internal/logging"
	"github.com/tomtom215/tilegate/internal/tiles"
	"github.com/tomtom215/tilegate/internal/upstream"
	ws "github.com/tomtom215/tilegate/internal/websocket"
)

// Upstream client names, used as breaker labels.
const (
	tokensUpstream = "mapbox-tokens"
	tilesUpstream  = "mapbox-tiles"
	influxUpstream = "influx"
)

// httpIdleTimeout bounds keep-alive connections.
const httpIdleTimeout = 60 * time.Second

// gateway holds every wired component. Services are added to the
// supervisor tree by main.
type gateway struct {
	exchanger *tiles.Exchanger // nil unless MAP_ACCESS_TOKEN is set
	bus       *events.Bus
	hub       *ws.Hub
	forwarder *events.Forwarder
	server    *http.Server
	breakers  []*upstream.Client
}

// transports lets tests point the upstream clients at fakes.
type transports struct {
	tokens http.RoundTripper
	tiles  http.RoundTripper
	influx http.RoundTripper
}

// buildGateway wires the components described by cfg.
func buildGateway(cfg *config.Config, version string, rt transports) (*gateway, error) {
	tokenClient := upstream.NewClient(upstream.Settings{
		Name:      tokensUpstream,
		Timeout:   cfg.Tiles.ExchangeTimeout,
		Transport: rt.tokens,
	})
	tileClient := upstream.NewClient(upstream.Settings{
		Name:      tilesUpstream,
		Timeout:   cfg.Tiles.FetchTimeout,
		RPS:       cfg.Tiles.UpstreamRPS,
		Transport: rt.tiles,
	})
	influxClient := upstream.NewClient(upstream.Settings{
		Name:      influxUpstream,
		Timeout:   cfg.Influx.Timeout,
		Transport: rt.influx,
	})

	gw := &gateway{
		bus:      events.NewBus(),
		hub:      ws.NewHub(),
		breakers: []*upstream.Client{tokenClient, tileClient, influxClient},
	}
	gw.forwarder = events.NewForwarder(gw.bus, gw.hub)

	if cfg.Tiles.ExchangeEnabled() {
		source := tiles.NewMapboxTokenSource(tokenClient, cfg.Tiles.TokenEndpoint(),
			cfg.Tiles.AccessToken, cfg.Tiles.Scopes, cfg.Tiles.TokenTTL)
		exchanger, err := tiles.NewExchanger(tiles.ExchangerConfig{
			Source:          source,
			Template:        cfg.Tiles.StyleTileTemplate(),
			RefreshInterval: cfg.Tiles.RefreshInterval,
			Timeout:         cfg.Tiles.ExchangeTimeout,
			Publisher:       gw.bus,
		})
		if err != nil {
			return nil, fmt.Errorf("token exchanger: %w", err)
		}
		gw.exchanger = exchanger
	}

	var relay *tiles.Relay
	switch cfg.Tiles.Mode {
	case config.TileModeExchanged:
		if gw.exchanger == nil {
			return nil, fmt.Errorf("tile mode %q requires MAP_ACCESS_TOKEN", cfg.Tiles.Mode)
		}
		relay = tiles.NewExchangedRelay(tileClient, gw.exchanger)
	default:
		relay = tiles.NewDirectRelay(tileClient, cfg.Tiles.StyleTileTemplate(), cfg.Tiles.DirectURL, cfg.Tiles.APIKey)
	}

	catalogue, err := influx.DefaultCatalogue()
	if err != nil {
		return nil, fmt.Errorf("query catalogue: %w", err)
	}
	logging.Info().Strs("queries", catalogue.Names()).Msg("Query catalogue validated")

	handler, err := buildHandler(cfg, version, gw, relay, catalogue,
		influx.NewClient(influxClient, cfg.Influx.URL, cfg.Influx.Token, cfg.Influx.OrgID))
	if err != nil {
		return nil, err
	}

	router, err := buildRouter(cfg, handler)
	if err != nil {
		return nil, err
	}

	gw.server = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.SetupChi(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  httpIdleTimeout,
	}
	return gw, nil
}

func buildHandler(cfg *config.Config, version string, gw *gateway, relay *tiles.Relay,
	catalogue *influx.Catalogue, queries *influx.Client) (*api.Handler, error) {
	issuer, err := auth.NewIssuer(cfg.Auth.Secret)
	if err != nil {
		return nil, fmt.Errorf("credential issuer: %w", err)
	}

	breakers := make([]api.BreakerReporter, 0, len(gw.breakers))
	for _, b := range gw.breakers {
		breakers = append(breakers, b)
	}

	hc := api.HandlerConfig{
		Issuer:            issuer,
		Tiles:             relay,
		Queries:           queries,
		Catalogue:         catalogue,
		Hub:               gw.hub,
		Upgrader:          ws.NewUpgrader(cfg.Security.CORSOrigins),
		Breakers:          breakers,
		MaxZoom:           cfg.Tiles.MaxZoom,
		LegacyQueryErrors: cfg.Influx.LegacyErrorStatus,
		Version:           version,
	}
	// Leave the interface nil rather than holding a typed nil pointer.
	if gw.exchanger != nil {
		hc.Tokens = gw.exchanger
	}

	handler, err := api.NewHandler(hc)
	if err != nil {
		return nil, fmt.Errorf("api handler: %w", err)
	}
	return handler, nil
}

func buildRouter(cfg *config.Config, handler *api.Handler) (*api.Router, error) {
	verifier, err := auth.NewVerifier(cfg.Auth.Secret, cfg.Auth.RequiredKID)
	if err != nil {
		return nil, fmt.Errorf("credential verifier: %w", err)
	}

	var issuanceGate *auth.BasicGate
	if cfg.Auth.IssuanceMode == config.IssuanceBasic {
		issuanceGate, err = auth.NewBasicGate(cfg.Auth.IssuerUsername, cfg.Auth.IssuerPassword)
		if err != nil {
			return nil, fmt.Errorf("issuance gate: %w", err)
		}
	}

	mw := api.NewChiMiddleware(api.ChiMiddlewareConfigFromConfig(cfg))
	router, err := api.NewRouter(handler, auth.NewGate(verifier), issuanceGate, mw)
	if err != nil {
		return nil, fmt.Errorf("router: %w", err)
	}
	return router, nil
}

// logStartupWarnings reports configurations that run but carry risk.
func logStartupWarnings(cfg *config.Config) {
	if cfg.OpenIssuance() {
		event := logging.Warn()
		if cfg.IsProduction() {
			event = logging.Error()
		}
		event.Str("endpoint", "POST /jwt").
			Msg("Credential issuance is open: any caller can mint a credential with kid=static")
	}
	if cfg.ShouldWarnAboutCORS() {
		logging.Warn().Msg("CORS allows any origin")
	}
	if cfg.RefreshOutlivesToken() {
		logging.Warn().
			Dur("refresh_interval", cfg.Tiles.RefreshInterval).
			Dur("token_ttl", cfg.Tiles.TokenTTL).
			Msg("Token refresh interval exceeds token lifetime; tiles will fail between refreshes")
	}
}
