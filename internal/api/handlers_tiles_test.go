// Tilegate - Map Tile and Time-Series Query Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tilegate

package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/tilegate/internal/tiles"
)

// serveTile routes path through a minimal chi router so URL params resolve.
func serveTile(h *Handler, path string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Get("/map/{z}/{x}/{y}", h.Tile)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestTile_Success(t *testing.T) {
	t.Parallel()

	cfg := testHandlerConfig(t)
	fetcher := &mockTileFetcher{
		mode: "direct",
		resp: func() *http.Response {
			resp := fakeResponse(http.StatusOK, "image/png", "PNGDATA")
			resp.Header.Set("Cache-Control", "max-age=43200")
			resp.Header.Set("ETag", `"abc"`)
			resp.Header.Set("Set-Cookie", "provider=1")
			return resp
		},
	}
	cfg.Tiles = fetcher
	h := newTestHandler(t, cfg)

	w := serveTile(h, "/map/3/4/5")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := w.Body.String(); got != "PNGDATA" {
		t.Errorf("body = %q, want PNGDATA", got)
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q, want image/png", ct)
	}
	if cc := w.Header().Get("Cache-Control"); cc != "max-age=43200" {
		t.Errorf("Cache-Control = %q", cc)
	}
	if w.Header().Get("ETag") != `"abc"` {
		t.Errorf("ETag not relayed")
	}
	if w.Header().Get("Set-Cookie") != "" {
		t.Error("Set-Cookie must not be relayed")
	}

	calls := fetcher.calls()
	if len(calls) != 1 || calls[0] != (tiles.TileCoordinate{Z: 3, X: 4, Y: 5}) {
		t.Errorf("fetch calls = %v, want [3/4/5]", calls)
	}
}

func TestTile_PNGSuffix(t *testing.T) {
	t.Parallel()

	cfg := testHandlerConfig(t)
	fetcher := cfg.Tiles.(*mockTileFetcher)
	h := newTestHandler(t, cfg)

	if w := serveTile(h, "/map/1/1/0.png"); w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if calls := fetcher.calls(); len(calls) != 1 || calls[0].Y != 0 {
		t.Errorf("fetch calls = %v", calls)
	}
}

func TestTile_InvalidCoordinates(t *testing.T) {
	t.Parallel()

	paths := []string{
		"/map/a/0/0",
		"/map/1/2/0",  // x >= 2^z
		"/map/1/0/-1", // negative y
		"/map/23/0/0", // above max zoom
		"/map/0/0/zz",
	}

	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			t.Parallel()
			cfg := testHandlerConfig(t)
			fetcher := cfg.Tiles.(*mockTileFetcher)
			h := newTestHandler(t, cfg)

			w := serveTile(h, path)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
			if n := len(fetcher.calls()); n != 0 {
				t.Errorf("fetch called %d times for invalid coordinate", n)
			}
		})
	}
}

func TestTile_InvalidCoordinateDetails(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		path      string
		wantField string
		wantTag   string
		wantParam string
	}{
		{"x beyond zoom", "/map/1/2/0", "X", "tile_axis", "Z"},
		{"y beyond zoom", "/map/2/0/4", "Y", "tile_axis", "Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := newTestHandler(t, testHandlerConfig(t))

			w := serveTile(h, tt.path)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}

			var resp struct {
				Error struct {
					Code    string                 `json:"code"`
					Message string                 `json:"message"`
					Details map[string]interface{} `json:"details"`
				} `json:"error"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Error.Code != ErrCodeValidationFailed {
				t.Errorf("code = %q, want %q", resp.Error.Code, ErrCodeValidationFailed)
			}
			if resp.Error.Details["field"] != tt.wantField {
				t.Errorf("details.field = %v, want %s", resp.Error.Details["field"], tt.wantField)
			}
			if resp.Error.Details["tag"] != tt.wantTag {
				t.Errorf("details.tag = %v, want %s", resp.Error.Details["tag"], tt.wantTag)
			}
			if resp.Error.Details["param"] != tt.wantParam {
				t.Errorf("details.param = %v, want %s", resp.Error.Details["param"], tt.wantParam)
			}
		})
	}
}

func TestTile_MultipleFieldDetails(t *testing.T) {
	t.Parallel()
	h := newTestHandler(t, testHandlerConfig(t))

	w := serveTile(h, "/map/1/2/3")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	var resp struct {
		Error struct {
			Details struct {
				Fields []map[string]interface{} `json:"fields"`
			} `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Error.Details.Fields) != 2 {
		t.Fatalf("details.fields = %v, want X and Y", resp.Error.Details.Fields)
	}
	for i, want := range []string{"X", "Y"} {
		if got := resp.Error.Details.Fields[i]["field"]; got != want {
			t.Errorf("fields[%d].field = %v, want %s", i, got, want)
		}
	}
}

func TestTile_UnparsableCoordinateHasNoDetails(t *testing.T) {
	t.Parallel()
	h := newTestHandler(t, testHandlerConfig(t))

	w := serveTile(h, "/map/a/0/0")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	var resp struct {
		Error struct {
			Details interface{} `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error.Details != nil {
		t.Errorf("details = %v, want none for a parse failure", resp.Error.Details)
	}
}

func TestTile_UpstreamStatusPassthrough(t *testing.T) {
	t.Parallel()

	cfg := testHandlerConfig(t)
	cfg.Tiles = &mockTileFetcher{
		mode: "direct",
		resp: func() *http.Response {
			return fakeResponse(http.StatusNotFound, "application/json", `{"message":"Tile not found"}`)
		},
	}
	h := newTestHandler(t, cfg)

	w := serveTile(h, "/map/2/1/1")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	if w.Body.String() != `{"message":"Tile not found"}` {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestTile_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"no token", tiles.ErrNoToken, http.StatusServiceUnavailable},
		{"upstream failure", fmt.Errorf("%w: connection refused", tiles.ErrTileFailed), http.StatusBadGateway},
		{"other", errors.New("boom"), http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := testHandlerConfig(t)
			cfg.Tiles = &mockTileFetcher{mode: "exchanged", err: tt.err}
			h := newTestHandler(t, cfg)

			w := serveTile(h, "/map/0/0/0")
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusServiceUnavailable && w.Header().Get("Retry-After") == "" {
				t.Error("expected Retry-After on 503")
			}
		})
	}
}
