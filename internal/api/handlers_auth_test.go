// Tilegate - Map Tile and Time-Series Query Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tilegate

package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/tilegate/internal/auth"
	"github.com/tomtom215/tilegate/internal/tiles"
)

func TestIssueCredential(t *testing.T) {
	t.Parallel()

	verifier, err := auth.NewVerifier(testSecret, "static")
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}

	tests := []struct {
		name      string
		body      string
		wantKIDOK bool
		wantSub   string
	}{
		{"kid static", `{"kid":"static","sub":"viewer"}`, true, "viewer"},
		{"other kid", `{"kid":"dynamic"}`, false, ""},
		{"empty body", ``, false, ""},
		{"null body", `null`, false, ""},
		{"empty object", `{}`, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := newTestHandler(t, testHandlerConfig(t))

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/jwt", strings.NewReader(tt.body))
			h.IssueCredential(w, r)

			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200; body %s", w.Code, w.Body.String())
			}
			if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
				t.Errorf("Content-Type = %q, want text/plain", ct)
			}

			token := w.Body.String()
			if strings.Count(token, ".") != 2 {
				t.Fatalf("body %q is not a compact JWS", token)
			}

			claims, err := verifier.Verify(token)
			if tt.wantKIDOK {
				if err != nil {
					t.Fatalf("Verify: %v", err)
				}
				if claims["sub"] != tt.wantSub {
					t.Errorf("sub = %v, want %q", claims["sub"], tt.wantSub)
				}
			} else if err == nil {
				t.Error("expected verification to fail without kid=static")
			}
		})
	}
}

func TestIssueCredential_RejectsNonObject(t *testing.T) {
	t.Parallel()

	for _, body := range []string{`[1,2]`, `"kid"`, `{"kid":`, `42`} {
		h := newTestHandler(t, testHandlerConfig(t))
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/jwt", strings.NewReader(body))
		h.IssueCredential(w, r)

		if w.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, w.Code)
		}
	}
}

func TestIssueCredential_OversizedBody(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, testHandlerConfig(t))
	body := `{"pad":"` + strings.Repeat("a", maxClaimsBody) + `"}`

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/jwt", strings.NewReader(body))
	h.IssueCredential(w, r)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestTileServerURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		tokens TokenStatus
		want   string
	}{
		{"no exchanger", nil, ""},
		{"initializing", &mockTokenStatus{}, ""},
		{
			"ready",
			&mockTokenStatus{url: "https://api.mapbox.com/styles/v1/u/s/tiles/256/{z}/{x}/{y}?access_token=tk.1", ready: true},
			"https://api.mapbox.com/styles/v1/u/s/tiles/256/{z}/{x}/{y}?access_token=tk.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := testHandlerConfig(t)
			cfg.Tokens = tt.tokens
			h := newTestHandler(t, cfg)

			w := httptest.NewRecorder()
			h.TileServerURL(w, httptest.NewRequest(http.MethodGet, "/tileServerUrl", nil))

			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", w.Code)
			}

			var got map[string]interface{}
			if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if len(got) != 1 {
				t.Errorf("body has %d keys, want only url: %v", len(got), got)
			}
			if got["url"] != tt.want {
				t.Errorf("url = %v, want %q", got["url"], tt.want)
			}
		})
	}
}

func TestTileServerURLSocket_NoHub(t *testing.T) {
	t.Parallel()

	cfg := testHandlerConfig(t)
	cfg.Tokens = &mockTokenStatus{url: "u", ready: true, status: tiles.Status{Sequence: 1}}
	h := newTestHandler(t, cfg)

	w := httptest.NewRecorder()
	h.TileServerURLSocket(w, httptest.NewRequest(http.MethodGet, "/ws/tileServerUrl", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}
