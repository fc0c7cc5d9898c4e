// Tilegate - Map Tile and Time-Series Query Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tilegate

// Package logging provides the process-wide zerolog logger for Tilegate.
//
// Every component logs through this package rather than creating its own
// zerolog instance, so level and format are controlled from one place.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
//	logging.Info().Str("mode", "exchanged").Msg("Tile relay ready")
//	logging.Ctx(ctx).Warn().Err(err).Msg("Query upstream unreachable")
//
// # Configuration
//
// Environment Variables (read by internal/config):
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false (default: false)
//
// # Secrets
//
// The gateway handles three long-lived upstream secrets. Never log them
// directly. URLs that carry an access_token query parameter go through
// RedactURL, and bare tokens through MaskSecret:
//
//	logging.Debug().Str("url", logging.RedactURL(tileURL)).Msg("Fetching tile")
//
// # slog Bridge
//
// Suture and Watermill take a *slog.Logger. NewSlogLogger returns one that
// writes through the global zerolog logger:
//
//	hook := (&sutureslog.Handler{Logger: logging.NewSlogLogger()}).MustHook()
package logging
