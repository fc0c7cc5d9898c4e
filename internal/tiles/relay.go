// Tilegate - Map Tile and Time-Series Query Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tilegate

package tiles

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/tomtom215/tilegate/internal/config"
	"github.com/tomtom215/tilegate/internal/logging"
	"github.com/tomtom215/tilegate/internal/metrics"
)

// URLSource yields the current exchanged tile template. Implemented by *Exchanger.
type URLSource interface {
	TileBaseURL() string
}

// Relay fetches single tiles from the provider.
type Relay struct {
	client HTTPDoer
	mode   string
	// directTemplate is a full {z}/{x}/{y} template with the API key embedded.
	directTemplate string
	tokens         URLSource
}

// NewDirectRelay signs every tile with the operator API key. When directURL
// is set it is used as the template as-is; otherwise the style template is
// combined with apiKey.
func NewDirectRelay(client HTTPDoer, styleTemplate, directURL, apiKey string) *Relay {
	tmpl := directURL
	if tmpl == "" {
		tmpl = BuildTileBaseURL(styleTemplate, apiKey)
	}
	return &Relay{client: client, mode: config.TileModeDirect, directTemplate: tmpl}
}

// NewExchangedRelay signs every tile with the current exchanged token.
func NewExchangedRelay(client HTTPDoer, tokens URLSource) *Relay {
	return &Relay{client: client, mode: config.TileModeExchanged, tokens: tokens}
}

// Mode returns direct or exchanged.
func (r *Relay) Mode() string { return r.mode }

// Fetch requests tile c and returns the upstream response whatever its
// status; the caller streams and closes the body. Errors are ErrNoToken
// (exchanged mode, still initializing) or wrap ErrTileFailed.
func (r *Relay) Fetch(ctx context.Context, c TileCoordinate) (*http.Response, error) {
	template := r.directTemplate
	if r.mode == config.TileModeExchanged {
		template = r.tokens.TileBaseURL()
		if template == "" {
			metrics.RecordTileUnavailable(r.mode)
			return nil, ErrNoToken
		}
	}

	link := c.Fill(template)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrTileFailed, err)
	}
	req.Header.Set("Accept", "image/png")

	start := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		metrics.RecordTileRequest(r.mode, 0, time.Since(start))
		logging.Ctx(ctx).Warn().Err(err).
			Str("tile", c.String()).
			Str("url", logging.RedactURL(link)).
			Msg("Tile fetch failed")
		return nil, fmt.Errorf("%w: %w", ErrTileFailed, err)
	}

	metrics.RecordTileRequest(r.mode, resp.StatusCode, time.Since(start))
	if resp.StatusCode >= http.StatusBadRequest {
		logging.Ctx(ctx).Debug().
			Int("status", resp.StatusCode).
			Str("tile", c.String()).
			Str("url", logging.RedactURL(link)).
			Msg("Tile provider returned error status")
	}
	return resp, nil
}
