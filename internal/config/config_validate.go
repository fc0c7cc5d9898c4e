// Tilegate - Map Tile and Time-Series Query Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tilegate

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateInflux,
		c.validateTiles,
		c.validateAuth,
		c.validateServer,
		c.validateSecurity,
		c.validateLogging,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateInflux() error {
	if c.Influx.URL == "" {
		return fmt.Errorf("INFLUX_URL is required")
	}
	if err := validateHTTPURL(c.Influx.URL, "INFLUX_URL"); err != nil {
		return err
	}
	if c.Influx.Token == "" {
		return fmt.Errorf("INFLUX_TOKEN is required")
	}
	if c.Influx.OrgID == "" {
		return fmt.Errorf("ORG_ID is required")
	}
	if c.Influx.Timeout <= 0 {
		return fmt.Errorf("INFLUX_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateTiles() error {
	t := c.Tiles
	if err := validateHTTPURL(t.BaseURL, "MAPBOX_URL"); err != nil {
		return err
	}
	if t.Username == "" || t.StyleID == "" {
		return fmt.Errorf("MAPBOX_USERNAME and MAPBOX_STYLE_ID are required")
	}
	if t.TileSize != 256 && t.TileSize != 512 {
		return fmt.Errorf("TILE_SIZE must be 256 or 512, got %d", t.TileSize)
	}
	if t.MaxZoom < 0 || t.MaxZoom > 30 {
		return fmt.Errorf("TILE_MAX_ZOOM must be between 0 and 30")
	}

	switch t.Mode {
	case TileModeDirect:
		if t.APIKey == "" && t.DirectURL == "" {
			return fmt.Errorf("API_KEY or DIRECT_URL is required when TILE_MODE is direct")
		}
		if t.DirectURL != "" {
			if err := validateTileTemplate(t.DirectURL, "DIRECT_URL"); err != nil {
				return err
			}
		}
	case TileModeExchanged:
		if !t.ExchangeEnabled() {
			return fmt.Errorf("MAP_ACCESS_TOKEN is required when TILE_MODE is exchanged")
		}
	default:
		return fmt.Errorf("TILE_MODE must be one of: direct, exchanged")
	}

	if t.ExchangeEnabled() {
		if len(t.Scopes) == 0 {
			return fmt.Errorf("TILE_SCOPES must list at least one scope")
		}
		if t.TokenTTL < time.Minute {
			return fmt.Errorf("TILE_TOKEN_TTL must be at least 1m")
		}
		if t.RefreshInterval < time.Second {
			return fmt.Errorf("TILE_REFRESH_INTERVAL must be at least 1s")
		}
	}
	if t.ExchangeTimeout <= 0 || t.FetchTimeout <= 0 {
		return fmt.Errorf("TILE_EXCHANGE_TIMEOUT and TILE_FETCH_TIMEOUT must be positive")
	}
	if t.UpstreamRPS < 0 {
		return fmt.Errorf("TILE_UPSTREAM_RPS must not be negative")
	}
	return nil
}

// Secret length bounds. The shorter minimum keeps existing development
// deployments working; production requires a full-strength key.
const (
	minSecretLength           = 16
	minProductionSecretLength = 32
)

func (c *Config) validateAuth() error {
	if c.Auth.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	minLen := minSecretLength
	if c.IsProduction() {
		minLen = minProductionSecretLength
	}
	if len(c.Auth.Secret) < minLen {
		return fmt.Errorf("JWT_SECRET must be at least %d characters", minLen)
	}
	if containsPlaceholder(c.Auth.Secret) {
		return fmt.Errorf("JWT_SECRET contains a placeholder value - generate a secure secret with: openssl rand -base64 32")
	}
	if c.Auth.RequiredKID == "" {
		return fmt.Errorf("JWT_REQUIRED_KID must not be empty")
	}

	switch c.Auth.IssuanceMode {
	case IssuanceOpen:
		return nil
	case IssuanceBasic:
		if c.Auth.IssuerUsername == "" || c.Auth.IssuerPassword == "" {
			return fmt.Errorf("ISSUER_USERNAME and ISSUER_PASSWORD are required when ISSUANCE_MODE is basic")
		}
		if containsPlaceholder(c.Auth.IssuerPassword) {
			return fmt.Errorf("ISSUER_PASSWORD contains a placeholder value - set a secure password")
		}
		return nil
	default:
		return fmt.Errorf("ISSUANCE_MODE must be one of: open, basic")
	}
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	return nil
}

const (
	minRateLimitRequests = 1
	maxRateLimitRequests = 100000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = time.Hour
)

func (c *Config) validateSecurity() error {
	if c.hasWildcardCORS() && c.IsProduction() {
		return fmt.Errorf("CORS_ORIGINS=* (wildcard) is not allowed in production. " +
			"Set specific origins: CORS_ORIGINS=https://dashboard.example.com " +
			"or use ENVIRONMENT=development for testing purposes")
	}

	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	if c.Security.IssueRateLimit < 0 {
		return fmt.Errorf("ISSUE_RATE_LIMIT must not be negative")
	}
	return nil
}

func (c *Config) hasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// ShouldWarnAboutCORS returns true when wildcard CORS is configured.
func (c *Config) ShouldWarnAboutCORS() bool {
	return c.hasWildcardCORS()
}

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

// placeholderPatterns indicate an operator forgot to set a real value.
var placeholderPatterns = []string{
	"REPLACE",
	"CHANGEME",
	"CHANGE_ME",
	"YOUR_SECRET",
	"YOUR_PASSWORD",
	"PLACEHOLDER",
	"EXAMPLE",
}

func containsPlaceholder(value string) bool {
	upper := strings.ToUpper(value)
	for _, pattern := range placeholderPatterns {
		if strings.Contains(upper, pattern) {
			return true
		}
	}
	return false
}

// validateHTTPURL checks that rawURL is an http(s) base URL without query.
// A path prefix is allowed so the gateway can sit behind a reverse proxy.
func validateHTTPURL(rawURL, fieldName string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s failed to parse URL: %w", fieldName, err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("%s scheme must be http or https, got: %s", fieldName, parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("%s host is required", fieldName)
	}
	if parsedURL.RawQuery != "" {
		return fmt.Errorf("%s should not contain query parameters, remove: ?%s", fieldName, parsedURL.RawQuery)
	}
	return nil
}

// validateTileTemplate checks a tile URL template carries all three
// coordinate placeholders and an http(s) scheme.
func validateTileTemplate(template, fieldName string) error {
	for _, p := range []string{"{z}", "{x}", "{y}"} {
		if !strings.Contains(template, p) {
			return fmt.Errorf("%s must contain the %s placeholder", fieldName, p)
		}
	}
	if !strings.HasPrefix(template, "http://") && !strings.HasPrefix(template, "https://") {
		return fmt.Errorf("%s scheme must be http or https", fieldName)
	}
	return nil
}
