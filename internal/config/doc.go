// Tilegate - Map Tile and Time-Series Query Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tilegate

// Package config loads and validates Tilegate configuration.
//
// Configuration is layered with Koanf v2, later layers overriding earlier ones:
//
//  1. Defaults from defaultConfig()
//  2. Optional YAML file (CONFIG_PATH, tilegate.yaml, /etc/tilegate/config.yaml)
//  3. Environment variables, through an explicit mapping table
//
// Environment variable names for the upstream credentials match the ones
// used by existing deployments of the map dashboard (INFLUX_URL,
// INFLUX_TOKEN, ORG_ID, API_KEY, MAP_ACCESS_TOKEN), so an existing .env file
// keeps working.
//
// # Secret References
//
// Any secret may be given as a file reference instead of a literal:
//
//	INFLUX_TOKEN=file:///run/secrets/influx_token
//
// The file is read once at load time and trailing whitespace is trimmed.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    logging.Fatal().Err(err).Msg("Failed to load configuration")
//	}
//
// Config is immutable after Load and safe for concurrent reads.
package config
