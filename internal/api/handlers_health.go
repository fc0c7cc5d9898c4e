// Tilegate - Map Tile and Time-Series Query Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tilegate

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/tilegate/internal/config"
	"github.com/tomtom215/tilegate/internal/tiles"
)

// HealthStatus is the /api/v1/health document.
type HealthStatus struct {
	Status           string            `json:"status"` // healthy, degraded
	Version          string            `json:"version"`
	Uptime           float64           `json:"uptime"`
	TileMode         string            `json:"tile_mode"`
	Exchanger        *tiles.Status     `json:"exchanger,omitempty"`
	Breakers         map[string]string `json:"breakers"`
	WebSocketClients int               `json:"websocket_clients"`
}

// Health reports exchanger state, breaker states and connected clients.
// It always answers 200; use /ready for traffic decisions.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:   "healthy",
		Version:  h.version,
		Uptime:   time.Since(h.startTime).Seconds(),
		TileMode: h.tiles.Mode(),
		Breakers: make(map[string]string, len(h.breakers)),
	}

	if h.tokens != nil {
		s := h.tokens.Status()
		status.Exchanger = &s
	}
	if !h.ready() {
		status.Status = "degraded"
	}
	for _, b := range h.breakers {
		state := b.State()
		status.Breakers[b.Name()] = state
		if state != "closed" {
			status.Status = "degraded"
		}
	}
	if h.hub != nil {
		status.WebSocketClients = h.hub.GetClientCount()
	}

	NewResponseWriter(w, r).Success(status)
}

// HealthLive answers 200 while the process is serving.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady answers 200 once tiles can be relayed: always in direct mode,
// after the first exchange in exchanged mode. Otherwise 503.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	state := tiles.StateReady
	statusCode := http.StatusOK
	if !h.ready() {
		state = tiles.StateInitializing
		statusCode = http.StatusServiceUnavailable
	}

	NewResponseWriter(w, r).WithStatus(statusCode, statusCode == http.StatusOK, map[string]interface{}{
		"state":     state,
		"tile_mode": h.tiles.Mode(),
	})
}

func (h *Handler) ready() bool {
	if h.tiles.Mode() != config.TileModeExchanged {
		return true
	}
	return h.tokens != nil && h.tokens.Ready()
}
