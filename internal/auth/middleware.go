// Tilegate - Map Tile and Time-Series Query Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tilegate

package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tomtom215/tilegate/internal/logging"
	"github.com/tomtom215/tilegate/internal/metrics"
)

type contextKey string

// ClaimsContextKey holds the verified jwt.MapClaims in the request context.
const ClaimsContextKey contextKey = "claims"

// QueryTokenParam is the query parameter accepted by gates built with
// WithQueryToken. Browsers cannot set headers on a WebSocket upgrade.
const QueryTokenParam = "access_token"

// Gate is HTTP middleware that admits requests carrying a verified credential.
type Gate struct {
	verifier        *Verifier
	allowQueryToken bool
}

// NewGate creates a Gate backed by verifier.
func NewGate(verifier *Verifier) *Gate {
	return &Gate{verifier: verifier}
}

// WithQueryToken returns a copy of the gate that also accepts the
// credential from the access_token query parameter when no Authorization
// header is present.
func (g *Gate) WithQueryToken() *Gate {
	return &Gate{verifier: g.verifier, allowQueryToken: true}
}

// Require wraps next so that it only runs for verified requests.
func (g *Gate) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := g.Check(r)
		if err != nil {
			status := http.StatusForbidden
			result := "invalid"
			switch {
			case errors.Is(err, ErrUnauthenticated):
				status = http.StatusUnauthorized
				result = "missing"
			case errors.Is(err, ErrKIDMismatch):
				result = "wrong_kid"
			}
			metrics.RecordCredentialCheck(result)
			logging.Ctx(r.Context()).Debug().
				Err(err).
				Str("path", r.URL.Path).
				Int("status", status).
				Msg("Credential check failed")
			http.Error(w, http.StatusText(status), status)
			return
		}

		metrics.RecordCredentialCheck("ok")
		ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Check extracts and verifies the credential on r. A missing credential
// returns ErrUnauthenticated; anything else that fails wraps ErrForbidden.
func (g *Gate) Check(r *http.Request) (jwt.MapClaims, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		if g.allowQueryToken {
			if token := r.URL.Query().Get(QueryTokenParam); token != "" {
				return g.verifier.Verify(token)
			}
		}
		return nil, ErrUnauthenticated
	}
	return g.verifier.Verify(credentialFromHeader(header))
}

// credentialFromHeader returns the second whitespace-separated field of an
// Authorization header, whatever the scheme word, or "" if there is none.
func credentialFromHeader(header string) string {
	fields := strings.Fields(header)
	if len(fields) < 2 {
		return ""
	}
	return fields[1]
}

// ClaimsFromContext returns the claims stored by Gate.Require.
func ClaimsFromContext(ctx context.Context) (jwt.MapClaims, bool) {
	claims, ok := ctx.Value(ClaimsContextKey).(jwt.MapClaims)
	return claims, ok
}
