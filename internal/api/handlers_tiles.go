// Tilegate - Map Tile and Time-Series Query Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tilegate

package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/tilegate/internal/logging"
	"github.com/tomtom215/tilegate/internal/tiles"
	"github.com/tomtom215/tilegate/internal/validation"
)

// relayedTileHeaders are copied from the provider response.
var relayedTileHeaders = []string{"Content-Type", "Content-Length", "Cache-Control", "ETag", "Last-Modified"}

// noTokenRetryAfter is sent with 503 while the exchanger initializes.
const noTokenRetryAfter = "5"

// Tile relays one tile. Upstream statuses, including errors, pass through
// with their body.
func (h *Handler) Tile(w http.ResponseWriter, r *http.Request) {
	coord, err := tiles.ParseCoordinate(
		chi.URLParam(r, "z"), chi.URLParam(r, "x"), chi.URLParam(r, "y"), h.maxZoom)
	if err != nil {
		var verr *validation.RequestValidationError
		if errors.As(err, &verr) {
			apiErr := verr.ToAPIError()
			NewResponseWriter(w, r).ValidationError(apiErr.Message, apiErr.Details)
			return
		}
		NewResponseWriter(w, r).ValidationError(err.Error(), nil)
		return
	}

	resp, err := h.tiles.Fetch(r.Context(), coord)
	switch {
	case errors.Is(err, tiles.ErrNoToken):
		w.Header().Set("Retry-After", noTokenRetryAfter)
		NewResponseWriter(w, r).ServiceUnavailable("Tile token not yet available")
		return
	case err != nil:
		NewResponseWriter(w, r).ExternalServiceError("tiles", err)
		return
	}
	defer resp.Body.Close()

	for _, name := range relayedTileHeaders {
		if v := resp.Header.Get(name); v != "" {
			w.Header().Set(name, v)
		}
	}
	w.WriteHeader(resp.StatusCode)

	if _, err := io.Copy(w, resp.Body); err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Str("tile", coord.String()).Msg("Tile stream interrupted")
	}
}
