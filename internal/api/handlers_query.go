// Tilegate - Map Tile and Time-Series Query Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tilegate

package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/tomtom215/tilegate/internal/influx"
	"github.com/tomtom215/tilegate/internal/logging"
	"github.com/tomtom215/tilegate/internal/upstream"
)

// LineQuery runs the catalogued line chart query.
func (h *Handler) LineQuery(w http.ResponseWriter, r *http.Request) {
	h.runQuery(w, r, influx.LineQuery)
}

// MapQuery runs the catalogued map overlay query.
func (h *Handler) MapQuery(w http.ResponseWriter, r *http.Request) {
	h.runQuery(w, r, influx.MapQuery)
}

// runQuery streams the upstream body with its status and Content-Type.
func (h *Handler) runQuery(w http.ResponseWriter, r *http.Request, name string) {
	spec, err := h.catalogue.Get(name)
	if err != nil {
		h.writeQueryError(w, r, name, err)
		return
	}

	resp, err := h.queries.Query(r.Context(), spec)
	if err != nil {
		h.writeQueryError(w, r, name, err)
		return
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.WriteHeader(resp.StatusCode)

	if _, err := io.Copy(w, resp.Body); err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Str("query", name).Msg("Query stream interrupted")
	}
}

// writeQueryError maps a query failure to a response. Upstream rejections
// are relayed as received; transport failures are 502.
func (h *Handler) writeQueryError(w http.ResponseWriter, r *http.Request, name string, err error) {
	if h.legacyQueryErrors {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, err.Error()) //nolint:errcheck // client went away
		return
	}

	var statusErr *upstream.StatusError
	switch {
	case errors.As(err, &statusErr):
		if statusErr.ContentType != "" {
			w.Header().Set("Content-Type", statusErr.ContentType)
		}
		w.WriteHeader(statusErr.Status)
		_, _ = w.Write(statusErr.Body) //nolint:errcheck // client went away
	case errors.Is(err, influx.ErrQueryFailed):
		NewResponseWriter(w, r).ExternalServiceError("influxdb", err)
	default:
		logging.Ctx(r.Context()).Error().Err(err).Str("query", name).Msg("Query could not be built")
		NewResponseWriter(w, r).InternalError("Query is misconfigured")
	}
}
