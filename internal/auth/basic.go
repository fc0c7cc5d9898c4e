// Tilegate - Map Tile and Time-Series Query Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tilegate

package auth

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/tilegate/internal/logging"
)

// bcryptCost is the cost factor used to hash the operator password at startup.
const bcryptCost = 12

// BasicGate protects credential issuance with a single operator account.
type BasicGate struct {
	username     string
	passwordHash []byte
}

// NewBasicGate hashes password once so requests only pay for the compare.
func NewBasicGate(username, password string) (*BasicGate, error) {
	return newBasicGate(username, password, bcryptCost)
}

func newBasicGate(username, password string, cost int) (*BasicGate, error) {
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	return &BasicGate{username: username, passwordHash: hash}, nil
}

// ValidateCredentials checks a "Basic ..." Authorization header and returns
// the username on success.
func (g *BasicGate) ValidateCredentials(authHeader string) (string, error) {
	encoded, ok := strings.CutPrefix(authHeader, "Basic ")
	if !ok {
		return "", fmt.Errorf("invalid authorization header format")
	}

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("failed to decode credentials")
	}

	username, password, found := strings.Cut(string(decoded), ":")
	if !found {
		return "", fmt.Errorf("invalid credentials format")
	}

	// Both comparisons always run.
	usernameMatch := subtle.ConstantTimeCompare([]byte(username), []byte(g.username)) == 1
	passwordMatch := bcrypt.CompareHashAndPassword(g.passwordHash, []byte(password)) == nil
	if !usernameMatch || !passwordMatch {
		return "", fmt.Errorf("invalid username or password")
	}
	return username, nil
}

// WWWAuthenticate returns the challenge sent with 401 responses.
func (g *BasicGate) WWWAuthenticate() string {
	return `Basic realm="Tilegate", charset="UTF-8"`
}

// Require wraps next with the Basic credential check.
func (g *BasicGate) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			w.Header().Set("WWW-Authenticate", g.WWWAuthenticate())
			http.Error(w, "Unauthorized: authentication required", http.StatusUnauthorized)
			return
		}

		if _, err := g.ValidateCredentials(header); err != nil {
			logging.Ctx(r.Context()).Warn().
				Err(err).
				Str("remote_addr", r.RemoteAddr).
				Msg("Rejected credential issuance request")
			w.Header().Set("WWW-Authenticate", g.WWWAuthenticate())
			http.Error(w, "Unauthorized: invalid credentials", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
