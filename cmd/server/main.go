// Tilegate - Map Tile and Time-Series Query Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tilegate

package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/tilegate/internal/config"
	"github.com/tomtom215/tilegate/internal/logging"
	"github.com/tomtom215/tilegate/internal/supervisor"
	"github.com/tomtom215/tilegate/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// httpShutdownTimeout bounds the drain of in-flight requests.
const httpShutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	logging.Info().
		Str("version", version).
		Str("tile_mode", cfg.Tiles.Mode).
		Bool("exchange_enabled", cfg.Tiles.ExchangeEnabled()).
		Str("issuance_mode", cfg.Auth.IssuanceMode).
		Str("influx_url", logging.RedactURL(cfg.Influx.URL)).
		Msg("Starting Tilegate with supervisor tree")
	logStartupWarnings(cfg)

	gw, err := buildGateway(cfg, version, transports{})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize gateway")
	}
	defer func() {
		if err := gw.bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event bus")
		}
	}()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLoggerForComponent("supervisor"), supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	if gw.exchanger != nil {
		tree.AddExchangeService(services.NewExchangerService(gw.exchanger))
		logging.Info().Dur("refresh_interval", cfg.Tiles.RefreshInterval).Msg("Token exchanger added to supervisor tree")
	}
	tree.AddMessagingService(services.NewWebSocketHubService(gw.hub))
	tree.AddMessagingService(services.NewForwarderService(gw.forwarder))
	tree.AddAPIService(services.NewHTTPServerService(gw.server, httpShutdownTimeout))
	logging.Info().Str("addr", gw.server.Addr).Msg("HTTP server service added")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// The tree reports exactly once; the channel is never closed.
	var serveErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
		serveErr = <-errCh
	case serveErr = <-errCh:
		cancel()
	}
	if serveErr != nil && !errors.Is(serveErr, context.Canceled) {
		logging.Error().Err(serveErr).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Tilegate stopped gracefully")
}
