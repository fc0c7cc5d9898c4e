// Tilegate - Map Tile and Time-Series Query Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tilegate

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths searched for a config file, in order.
var DefaultConfigPaths = []string{
	"tilegate.yaml",
	"tilegate.yml",
	"/etc/tilegate/config.yaml",
	"/etc/tilegate/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultScopes are the scopes requested when minting tile tokens.
var DefaultScopes = []string{
	"styles:tiles",
	"styles:read",
	"fonts:read",
	"datasets:read",
	"vision:read",
}

func defaultConfig() *Config {
	return &Config{
		Influx: InfluxConfig{
			Timeout: 30 * time.Second,
		},
		Tiles: TilesConfig{
			BaseURL:         "https://api.mapbox.com",
			Username:        "influxdata",
			StyleID:         "ckhl79okh00o919npquotuqxp",
			TileSize:        256,
			Mode:            TileModeDirect,
			Scopes:          append([]string(nil), DefaultScopes...),
			TokenTTL:        time.Hour,
			RefreshInterval: 50 * time.Minute,
			ExchangeTimeout: 15 * time.Second,
			FetchTimeout:    20 * time.Second,
			MaxZoom:         22,
			UpstreamRPS:     50,
		},
		Auth: AuthConfig{
			RequiredKID:  "static",
			IssuanceMode: IssuanceOpen,
		},
		Server: ServerConfig{
			Port:        8617,
			Host:        "0.0.0.0",
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Security: SecurityConfig{
			RateLimitReqs:   600,
			RateLimitWindow: time.Minute,
			IssueRateLimit:  30,
			CORSOrigins:     []string{"*"},
			CORSHeaders:     DefaultCORSHeaders(),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadWithKoanf loads configuration with layered sources:
//  1. Defaults
//  2. Config file (optional)
//  3. Environment variables
//
// Secret file references are resolved after unmarshaling, then the result
// is validated.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.resolveSecrets(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are parsed as comma-separated lists when set from env.
var sliceConfigPaths = []string{
	"tiles.scopes",
	"security.cors_origins",
	"security.cors_headers",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps lower-cased environment variable names to koanf paths.
// Unmapped variables are ignored so unrelated environment does not leak
// into the configuration.
var envMappings = map[string]string{
	// InfluxDB
	"influx_url":         "influx.url",
	"influx_token":       "influx.token",
	"org_id":             "influx.org_id",
	"influx_timeout":     "influx.timeout",
	"query_error_compat": "influx.legacy_error_status",

	// Tile provider
	"api_key":               "tiles.api_key",
	"map_access_token":      "tiles.access_token",
	"direct_url":            "tiles.direct_url",
	"map_endpoint":          "tiles.public_endpoint",
	"mapbox_url":            "tiles.base_url",
	"mapbox_username":       "tiles.username",
	"mapbox_style_id":       "tiles.style_id",
	"tile_size":             "tiles.tile_size",
	"tile_mode":             "tiles.mode",
	"tile_scopes":           "tiles.scopes",
	"tile_token_ttl":        "tiles.token_ttl",
	"tile_refresh_interval": "tiles.refresh_interval",
	"tile_exchange_timeout": "tiles.exchange_timeout",
	"tile_fetch_timeout":    "tiles.fetch_timeout",
	"tile_max_zoom":         "tiles.max_zoom",
	"tile_upstream_rps":     "tiles.upstream_rps",

	// Credentials
	"jwt_secret":       "auth.secret",
	"jwt_required_kid": "auth.required_kid",
	"issuance_mode":    "auth.issuance_mode",
	"issuer_username":  "auth.issuer_username",
	"issuer_password":  "auth.issuer_password",

	// Server
	"port":         "server.port",
	"http_port":    "server.port",
	"http_host":    "server.host",
	"http_timeout": "server.timeout",
	"environment":  "server.environment",

	// Security
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"issue_rate_limit":    "security.issue_rate_limit",
	"cors_origins":        "security.cors_origins",
	"cors_headers":        "security.cors_headers",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps an environment variable name to its koanf path,
// returning "" for variables the gateway does not read.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
