// Tilegate - Map Tile and Time-Series Query Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tilegate

package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/tilegate/internal/config"
	"github.com/tomtom215/tilegate/internal/tiles"
)

// healthEnvelope decodes an envelope whose data is a HealthStatus.
type healthEnvelope struct {
	Success bool         `json:"success"`
	Data    HealthStatus `json:"data"`
}

func TestHealthLive(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, testHandlerConfig(t))
	w := httptest.NewRecorder()
	h.HealthLive(w, httptest.NewRequest(http.MethodGet, "/api/v1/health/live", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp APIResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	data, ok := resp.Data.(map[string]interface{})
	if !ok || data["alive"] != true {
		t.Errorf("data = %v, want alive=true", resp.Data)
	}
}

func TestHealthReady(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		mode       string
		tokens     TokenStatus
		wantStatus int
		wantState  string
	}{
		{"direct without exchanger", config.TileModeDirect, nil, http.StatusOK, tiles.StateReady},
		{"direct with initializing exchanger", config.TileModeDirect, &mockTokenStatus{}, http.StatusOK, tiles.StateReady},
		{"exchanged initializing", config.TileModeExchanged, &mockTokenStatus{}, http.StatusServiceUnavailable, tiles.StateInitializing},
		{"exchanged ready", config.TileModeExchanged, &mockTokenStatus{ready: true}, http.StatusOK, tiles.StateReady},
		{"exchanged without exchanger", config.TileModeExchanged, nil, http.StatusServiceUnavailable, tiles.StateInitializing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := testHandlerConfig(t)
			cfg.Tiles.(*mockTileFetcher).mode = tt.mode
			cfg.Tokens = tt.tokens
			h := newTestHandler(t, cfg)

			w := httptest.NewRecorder()
			h.HealthReady(w, httptest.NewRequest(http.MethodGet, "/api/v1/health/ready", nil))

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			var resp APIResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			data, _ := resp.Data.(map[string]interface{})
			if data["state"] != tt.wantState {
				t.Errorf("state = %v, want %s", data["state"], tt.wantState)
			}
			if resp.Success != (tt.wantStatus == http.StatusOK) {
				t.Errorf("success = %v", resp.Success)
			}
		})
	}
}

func TestHealth_ReportsExchangerAndBreakers(t *testing.T) {
	t.Parallel()

	obtained := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	cfg := testHandlerConfig(t)
	cfg.Tiles.(*mockTileFetcher).mode = config.TileModeExchanged
	cfg.Tokens = &mockTokenStatus{
		url:   "https://tiles/{z}/{x}/{y}?access_token=t",
		ready: true,
		status: tiles.Status{
			State:      tiles.StateReady,
			Sequence:   7,
			ObtainedAt: &obtained,
			Running:    true,
		},
	}
	cfg.Breakers = []BreakerReporter{
		mockBreaker{name: "mapbox-tiles", state: "closed"},
		mockBreaker{name: "influx", state: "closed"},
	}
	h := newTestHandler(t, cfg)

	w := httptest.NewRecorder()
	h.Health(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp healthEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	got := resp.Data
	if got.Status != "healthy" {
		t.Errorf("status = %q, want healthy", got.Status)
	}
	if got.Version != "test" {
		t.Errorf("version = %q", got.Version)
	}
	if got.TileMode != config.TileModeExchanged {
		t.Errorf("tile_mode = %q", got.TileMode)
	}
	if got.Exchanger == nil || got.Exchanger.Sequence != 7 || got.Exchanger.State != tiles.StateReady {
		t.Errorf("exchanger = %+v", got.Exchanger)
	}
	if len(got.Breakers) != 2 || got.Breakers["influx"] != "closed" {
		t.Errorf("breakers = %v", got.Breakers)
	}
}

func TestHealth_Degraded(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		mode     string
		tokens   TokenStatus
		breakers []BreakerReporter
	}{
		{
			"open breaker",
			config.TileModeDirect,
			nil,
			[]BreakerReporter{mockBreaker{name: "influx", state: "open"}},
		},
		{
			"exchanger initializing",
			config.TileModeExchanged,
			&mockTokenStatus{status: tiles.Status{State: tiles.StateInitializing}},
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := testHandlerConfig(t)
			cfg.Tiles.(*mockTileFetcher).mode = tt.mode
			cfg.Tokens = tt.tokens
			cfg.Breakers = tt.breakers
			h := newTestHandler(t, cfg)

			w := httptest.NewRecorder()
			h.Health(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

			if w.Code != http.StatusOK {
				t.Errorf("status = %d, want 200", w.Code)
			}
			var resp healthEnvelope
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if resp.Data.Status != "degraded" {
				t.Errorf("status = %q, want degraded", resp.Data.Status)
			}
		})
	}
}
