// Tilegate - Map Tile and Time-Series Query Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tilegate

package config

import (
	"fmt"
	"strings"
	"time"
)

// Tile relay modes.
const (
	// TileModeDirect signs tile requests with the operator API key.
	TileModeDirect = "direct"
	// TileModeExchanged signs tile requests with the current exchanged token.
	TileModeExchanged = "exchanged"
)

// Credential issuance modes.
const (
	// IssuanceOpen lets any caller mint a credential with any claims.
	IssuanceOpen = "open"
	// IssuanceBasic requires operator Basic credentials on the issue endpoint.
	IssuanceBasic = "basic"
)

// Config holds all gateway configuration.
type Config struct {
	Influx   InfluxConfig   `koanf:"influx"`
	Tiles    TilesConfig    `koanf:"tiles"`
	Auth     AuthConfig     `koanf:"auth"`
	Server   ServerConfig   `koanf:"server"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// InfluxConfig holds the upstream time-series database settings.
//
// Environment Variables:
//   - INFLUX_URL: base URL of the InfluxDB v2 instance
//   - INFLUX_TOKEN: API token sent as "Authorization: Token ..."
//   - ORG_ID: organization ID passed as the orgID query parameter
//   - INFLUX_TIMEOUT: per-query HTTP timeout (default: 30s)
//   - QUERY_ERROR_COMPAT: answer failed queries with 200 and the error text (default: false)
type InfluxConfig struct {
	URL               string        `koanf:"url"`
	Token             string        `koanf:"token"`
	OrgID             string        `koanf:"org_id"`
	Timeout           time.Duration `koanf:"timeout"`
	LegacyErrorStatus bool          `koanf:"legacy_error_status"`
}

// TilesConfig holds tile provider settings for both the relay and the
// token exchanger.
//
// Environment Variables:
//   - API_KEY: long-lived key used by the relay in direct mode
//   - MAP_ACCESS_TOKEN: token-minting key used by the exchanger
//   - DIRECT_URL: optional tile URL template for direct mode, with {z}/{x}/{y}
//   - MAP_ENDPOINT: public tile endpoint reported in the health document
//   - MAPBOX_URL: provider base URL (default: https://api.mapbox.com)
//   - MAPBOX_USERNAME, MAPBOX_STYLE_ID, TILE_SIZE: style coordinates
//   - TILE_MODE: direct or exchanged (default: direct)
//   - TILE_SCOPES: comma-separated scopes requested on exchange
//   - TILE_TOKEN_TTL: lifetime requested for exchanged tokens (default: 1h)
//   - TILE_REFRESH_INTERVAL: exchange cadence (default: 50m)
type TilesConfig struct {
	APIKey          string        `koanf:"api_key"`
	AccessToken     string        `koanf:"access_token"`
	DirectURL       string        `koanf:"direct_url"`
	PublicEndpoint  string        `koanf:"public_endpoint"`
	BaseURL         string        `koanf:"base_url"`
	Username        string        `koanf:"username"`
	StyleID         string        `koanf:"style_id"`
	TileSize        int           `koanf:"tile_size"`
	Mode            string        `koanf:"mode"`
	Scopes          []string      `koanf:"scopes"`
	TokenTTL        time.Duration `koanf:"token_ttl"`
	RefreshInterval time.Duration `koanf:"refresh_interval"`
	ExchangeTimeout time.Duration `koanf:"exchange_timeout"`
	FetchTimeout    time.Duration `koanf:"fetch_timeout"`
	MaxZoom         int           `koanf:"max_zoom"`
	UpstreamRPS     float64       `koanf:"upstream_rps"`
}

// ExchangeEnabled reports whether a token-minting key is configured.
func (t TilesConfig) ExchangeEnabled() bool {
	return t.AccessToken != ""
}

// StyleTileTemplate returns the provider's style tile URL with {z}/{x}/{y}
// placeholders and no access token.
func (t TilesConfig) StyleTileTemplate() string {
	return fmt.Sprintf("%s/styles/v1/%s/%s/tiles/%d/{z}/{x}/{y}",
		strings.TrimRight(t.BaseURL, "/"), t.Username, t.StyleID, t.TileSize)
}

// TokenEndpoint returns the provider token-minting URL without credentials.
func (t TilesConfig) TokenEndpoint() string {
	return fmt.Sprintf("%s/tokens/v2/%s", strings.TrimRight(t.BaseURL, "/"), t.Username)
}

// AuthConfig holds bearer credential settings.
//
// Environment Variables:
//   - JWT_SECRET: HMAC signing secret (required)
//   - JWT_REQUIRED_KID: value the kid claim must carry (default: static)
//   - ISSUANCE_MODE: open or basic (default: open)
//   - ISSUER_USERNAME, ISSUER_PASSWORD: operator credentials for basic issuance
type AuthConfig struct {
	Secret         string `koanf:"secret"`
	RequiredKID    string `koanf:"required_kid"`
	IssuanceMode   string `koanf:"issuance_mode"`
	IssuerUsername string `koanf:"issuer_username"`
	IssuerPassword string `koanf:"issuer_password"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"` // development, staging, production
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SecurityConfig holds request-level protection settings.
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	IssueRateLimit    int           `koanf:"issue_rate_limit"` // per minute, per IP, on POST /jwt
	CORSOrigins       []string      `koanf:"cors_origins"`
	CORSHeaders       []string      `koanf:"cors_headers"` // request headers allowed on preflight
}

// DefaultCORSHeaders returns the request headers browsers may send
// cross-origin. The map client sets Access-Control-Allow-Origin on its own
// requests, so it must pass preflight.
func DefaultCORSHeaders() []string {
	return []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "Access-Control-Allow-Origin"}
}

// LoggingConfig holds logging settings for zerolog.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// IsProduction returns true when ENVIRONMENT is production or prod.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Server.Environment)
	return env == "production" || env == "prod"
}

// IsDevelopment returns true when ENVIRONMENT is unset, development or dev.
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(c.Server.Environment)
	return env == "" || env == "development" || env == "dev"
}

// OpenIssuance reports whether POST /jwt is reachable without credentials.
func (c *Config) OpenIssuance() bool {
	return c.Auth.IssuanceMode == IssuanceOpen
}

// RefreshOutlivesToken reports whether exchanged tokens can expire before
// the next refresh. Callers log it; it is not an error.
func (c *Config) RefreshOutlivesToken() bool {
	return c.Tiles.ExchangeEnabled() && c.Tiles.RefreshInterval > c.Tiles.TokenTTL
}

// Load reads configuration from defaults, an optional file and the environment.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
