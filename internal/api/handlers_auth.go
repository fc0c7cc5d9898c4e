// Tilegate - Map Tile and Time-Series Query Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tilegate

package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/tilegate/internal/logging"
	"github.com/tomtom215/tilegate/internal/metrics"
	ws "github.com/tomtom215/tilegate/internal/websocket"
)

// maxClaimsBody bounds the POST /jwt request body.
const maxClaimsBody = 64 << 10

// tileURLResponse is the /tileServerUrl body. Its shape is fixed by
// existing clients, so it does not use the envelope.
type tileURLResponse struct {
	URL string `json:"url"`
}

// IssueCredential signs the JSON object in the request body and returns the
// credential as text/plain. Claims are not inspected; an empty body signs
// an empty claim set.
func (h *Handler) IssueCredential(w http.ResponseWriter, r *http.Request) {
	claims, err := decodeClaims(http.MaxBytesReader(w, r.Body, maxClaimsBody))
	if err != nil {
		NewResponseWriter(w, r).BadRequest("Request body must be a JSON object")
		return
	}

	token, err := h.issuer.Issue(claims)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to sign credential")
		NewResponseWriter(w, r).InternalError("Failed to issue credential")
		return
	}

	metrics.RecordCredentialIssued()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, token) //nolint:errcheck // client went away
}

// decodeClaims reads a single JSON object. A missing body or a literal null
// yields an empty claim set.
func decodeClaims(body io.Reader) (map[string]any, error) {
	var claims map[string]any
	if err := json.NewDecoder(body).Decode(&claims); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if claims == nil {
		claims = map[string]any{}
	}
	return claims, nil
}

// TileServerURL returns the current exchanged tile URL template, or an
// empty string before the first exchange.
func (h *Handler) TileServerURL(w http.ResponseWriter, r *http.Request) {
	url, _ := h.currentTileURL()

	data, err := json.Marshal(tileURLResponse{URL: url})
	if err != nil {
		NewResponseWriter(w, r).InternalError("Failed to encode response")
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data) //nolint:errcheck // client went away
}

// TileServerURLSocket upgrades to a WebSocket that receives the current
// tile URL once registered and every refreshed URL afterwards.
func (h *Handler) TileServerURLSocket(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		NewResponseWriter(w, r).ServiceUnavailable("Live tile URL updates are not enabled")
		return
	}
	ws.ServeWS(h.hub, h.upgrader, w, r, h.currentTileURL)
}
