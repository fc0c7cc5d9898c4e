// Tilegate - Map Tile and Time-Series Query Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tilegate

package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// KIDClaim is the claim that discriminates gateway credentials.
const KIDClaim = "kid"

// Issuer signs caller-supplied claim sets.
type Issuer struct {
	secret []byte
}

// NewIssuer creates an Issuer signing with secret.
func NewIssuer(secret string) (*Issuer, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &Issuer{secret: []byte(secret)}, nil
}

// Issue signs claims with HS256. The claims are embedded unchanged; no
// expiry or issued-at claim is added.
func (i *Issuer) Issue(claims map[string]any) (string, error) {
	if claims == nil {
		claims = map[string]any{}
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims(claims))
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign credential: %w", err)
	}
	return signed, nil
}

// Verifier validates credentials produced by an Issuer with the same secret.
type Verifier struct {
	secret      []byte
	requiredKID string
	parser      *jwt.Parser
}

// NewVerifier creates a Verifier that requires the kid claim to equal requiredKID.
func NewVerifier(secret, requiredKID string) (*Verifier, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	if requiredKID == "" {
		return nil, fmt.Errorf("required kid must not be empty")
	}
	return &Verifier{
		secret:      []byte(secret),
		requiredKID: requiredKID,
		parser:      jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})),
	}, nil
}

// RequiredKID returns the kid value credentials must carry.
func (v *Verifier) RequiredKID() string {
	return v.requiredKID
}

// Verify checks the signature and kid claim of token and returns its claims.
// Every failure wraps ErrForbidden. Registered time claims (exp, nbf) are
// honoured when present.
func (v *Verifier) Verify(token string) (jwt.MapClaims, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: empty credential", ErrForbidden)
	}

	claims := jwt.MapClaims{}
	parsed, err := v.parser.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrForbidden, err)
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("%w: invalid credential", ErrForbidden)
	}

	if kid, ok := claims[KIDClaim].(string); !ok || kid != v.requiredKID {
		return nil, fmt.Errorf("%w: %w", ErrForbidden, ErrKIDMismatch)
	}
	return claims, nil
}
