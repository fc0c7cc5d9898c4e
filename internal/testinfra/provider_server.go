// Tilegate - Map Tile and Time-Series Query Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tilegate

//go:build integration

package testinfra

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

// ProviderCapture represents a captured provider request.
type ProviderCapture struct {
	Method      string
	Path        string
	AccessToken string
	Headers     http.Header
	Body        []byte
}

// MockTileProvider mimics the token and tile endpoints of a Mapbox-style
// provider. Tokens are issued as "tk.<n>"; tiles are served only when the
// request carries the most recently issued token or the configured API key.
type MockTileProvider struct {
	Server   *httptest.Server
	Captures []ProviderCapture
	mu       sync.Mutex

	// APIKey is the long-lived key accepted by both endpoints.
	APIKey string

	// TileBody is returned for every accepted tile request.
	TileBody []byte

	// TokenStatus overrides the token endpoint status when non-zero.
	TokenStatus atomic.Int32

	issued atomic.Uint64
}

// NewMockTileProvider starts a provider that accepts apiKey.
func NewMockTileProvider(t *testing.T, apiKey string) *MockTileProvider {
	t.Helper()

	p := &MockTileProvider{
		APIKey:   apiKey,
		TileBody: []byte("\x89PNG\r\n\x1a\nmock-tile"),
		Captures: make([]ProviderCapture, 0),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/tokens/v2/", p.serveToken)
	mux.HandleFunc("/styles/v1/", p.serveTile)

	p.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body.Close()

		p.mu.Lock()
		p.Captures = append(p.Captures, ProviderCapture{
			Method:      r.Method,
			Path:        r.URL.Path,
			AccessToken: r.URL.Query().Get("access_token"),
			Headers:     r.Header.Clone(),
			Body:        body,
		})
		p.mu.Unlock()

		r.Body = io.NopCloser(bytes.NewReader(body))
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(p.Close)

	return p
}

// URL returns the server URL.
func (p *MockTileProvider) URL() string {
	return p.Server.URL
}

// TokenEndpoint returns the token URL for user.
func (p *MockTileProvider) TokenEndpoint(user string) string {
	return p.Server.URL + "/tokens/v2/" + user
}

// StyleTemplate returns a {z}/{x}/{y} template for style.
func (p *MockTileProvider) StyleTemplate(style string) string {
	return p.Server.URL + "/styles/v1/" + style + "/tiles/256/{z}/{x}/{y}"
}

// CurrentToken returns the most recently issued token, or "" before the
// first exchange.
func (p *MockTileProvider) CurrentToken() string {
	n := p.issued.Load()
	if n == 0 {
		return ""
	}
	return fmt.Sprintf("tk.%d", n)
}

// Close shuts down the server.
func (p *MockTileProvider) Close() {
	p.Server.Close()
}

// GetCaptures returns all captured requests.
func (p *MockTileProvider) GetCaptures() []ProviderCapture {
	p.mu.Lock()
	defer p.mu.Unlock()
	result := make([]ProviderCapture, len(p.Captures))
	copy(result, p.Captures)
	return result
}

// ClearCaptures clears all captured requests.
func (p *MockTileProvider) ClearCaptures() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Captures = make([]ProviderCapture, 0)
}

// WaitForTokens waits until at least n tokens have been issued or timeout.
func (p *MockTileProvider) WaitForTokens(n uint64, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if p.issued.Load() >= n {
			return true
		}
		time.Sleep(20 * time.Millisecond)
	}
	return p.issued.Load() >= n
}

func (p *MockTileProvider) serveToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if status := p.TokenStatus.Load(); status != 0 {
		writeProviderJSON(w, int(status), map[string]string{"message": "token request rejected"})
		return
	}
	if r.URL.Query().Get("access_token") != p.APIKey {
		writeProviderJSON(w, http.StatusUnauthorized, map[string]string{"message": "Not Authorized - Invalid Token"})
		return
	}

	var req struct {
		Scopes  []string  `json:"scopes"`
		Expires time.Time `json:"expires"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Scopes) == 0 {
		writeProviderJSON(w, http.StatusBadRequest, map[string]string{"message": "scopes are required"})
		return
	}

	n := p.issued.Add(1)
	writeProviderJSON(w, http.StatusOK, map[string]any{
		"token":   fmt.Sprintf("tk.%d", n),
		"expires": req.Expires,
	})
}

func (p *MockTileProvider) serveTile(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("access_token")
	if token == "" || (token != p.APIKey && token != p.CurrentToken()) {
		writeProviderJSON(w, http.StatusUnauthorized, map[string]string{"message": "Not Authorized - Invalid Token"})
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "max-age=3600")
	w.Header().Set("ETag", `"mock-tile"`)
	w.WriteHeader(http.StatusOK)
	w.Write(p.TileBody) //nolint:errcheck
}

func writeProviderJSON(w http.ResponseWriter, status int, v any) {
	data, _ := json.Marshal(v)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data) //nolint:errcheck
}
