// Tilegate - Map Tile and Time-Series Query Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tilegate

package tiles

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/tilegate/internal/upstream"
)

// maxTokenResponse caps the token endpoint response body.
const maxTokenResponse = 64 << 10

// Exchange is the result of one successful token request.
type Exchange struct {
	Token     string
	ExpiresAt time.Time
}

// TokenSource obtains a short-lived tile token from the provider.
type TokenSource interface {
	Exchange(ctx context.Context) (Exchange, error)
}

// HTTPDoer is satisfied by *upstream.Client and *http.Client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// tokenRequest is the provider's temporary token request body.
type tokenRequest struct {
	Scopes  []string  `json:"scopes"`
	Expires time.Time `json:"expires"`
}

type tokenResponse struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires,omitempty"`
}

// MapboxTokenSource requests temporary tokens from the Mapbox Tokens API.
type MapboxTokenSource struct {
	client      HTTPDoer
	endpoint    string
	accessToken string
	scopes      []string
	ttl         time.Duration
	now         func() time.Time
}

// NewMapboxTokenSource creates a TokenSource that POSTs to endpoint
// (https://api.mapbox.com/tokens/v2/{user}) authenticated with accessToken.
func NewMapboxTokenSource(client HTTPDoer, endpoint, accessToken string, scopes []string, ttl time.Duration) *MapboxTokenSource {
	return &MapboxTokenSource{
		client:      client,
		endpoint:    endpoint,
		accessToken: accessToken,
		scopes:      scopes,
		ttl:         ttl,
		now:         time.Now,
	}
}

// Exchange performs one token request. Every failure wraps ErrExchangeFailed;
// a non-2xx response additionally wraps *upstream.StatusError.
func (s *MapboxTokenSource) Exchange(ctx context.Context) (Exchange, error) {
	expires := s.now().Add(s.ttl).UTC()
	body, err := json.Marshal(tokenRequest{Scopes: s.scopes, Expires: expires})
	if err != nil {
		return Exchange{}, fmt.Errorf("%w: encode request: %v", ErrExchangeFailed, err)
	}

	link := s.endpoint + "?access_token=" + url.QueryEscape(s.accessToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, link, bytes.NewReader(body))
	if err != nil {
		return Exchange{}, fmt.Errorf("%w: build request: %v", ErrExchangeFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return Exchange{}, fmt.Errorf("%w: %w", ErrExchangeFailed, err)
	}
	if !upstream.IsSuccess(resp.StatusCode) {
		return Exchange{}, fmt.Errorf("%w: %w", ErrExchangeFailed, upstream.NewStatusError(resp))
	}
	defer resp.Body.Close()

	var out tokenResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxTokenResponse)).Decode(&out); err != nil {
		return Exchange{}, fmt.Errorf("%w: decode response: %v", ErrExchangeFailed, err)
	}
	if out.Token == "" {
		return Exchange{}, fmt.Errorf("%w: response carried no token", ErrExchangeFailed)
	}

	if !out.Expires.IsZero() {
		expires = out.Expires
	}
	return Exchange{Token: out.Token, ExpiresAt: expires}, nil
}

// BuildTileBaseURL embeds token into a {z}/{x}/{y} style template.
func BuildTileBaseURL(template, token string) string {
	return template + "?access_token=" + url.QueryEscape(token)
}
