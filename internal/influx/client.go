// Tilegate - Map Tile and Time-Series Query Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tilegate

package influx

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/tilegate/internal/logging"
	"github.com/tomtom215/tilegate/internal/metrics"
	"github.com/tomtom215/tilegate/internal/upstream"
)

// Query outcome labels for metrics.
const (
	resultSuccess       = "success"
	resultUpstreamError = "upstream_error"
	resultFailure       = "failure"
)

// HTTPDoer is satisfied by *upstream.Client and *http.Client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client sends queries to one InfluxDB organization.
type Client struct {
	http     HTTPDoer
	endpoint string
	token    string
}

// NewClient creates a Client for baseURL and orgID authenticated with token.
func NewClient(httpClient HTTPDoer, baseURL, token, orgID string) *Client {
	endpoint := strings.TrimRight(baseURL, "/") + "/api/v2/query?orgID=" + url.QueryEscape(orgID)
	return &Client{http: httpClient, endpoint: endpoint, token: token}
}

// Query validates spec and POSTs it. On 2xx the response is returned for the
// caller to stream and close. A non-2xx response is returned as
// *upstream.StatusError; transport failures wrap ErrQueryFailed.
func (c *Client) Query(ctx context.Context, spec QuerySpec) (*http.Response, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	body, err := json.Marshal(spec.Request())
	if err != nil {
		return nil, fmt.Errorf("encode query %q: %w", spec.Name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrQueryFailed, err)
	}
	req.Header.Set("Authorization", "Token "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/csv")

	start := time.Now()
	resp, err := c.http.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		metrics.RecordQuery(spec.Name, resultFailure, elapsed)
		logging.Ctx(ctx).Warn().Err(err).Str("query", spec.Name).Msg("Query request failed")
		return nil, fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}

	if !upstream.IsSuccess(resp.StatusCode) {
		metrics.RecordQuery(spec.Name, resultUpstreamError, elapsed)
		se := upstream.NewStatusError(resp)
		logging.Ctx(ctx).Warn().
			Str("query", spec.Name).
			Int("status", se.Status).
			Msg("Query rejected by upstream")
		return nil, se
	}

	metrics.RecordQuery(spec.Name, resultSuccess, elapsed)
	return resp, nil
}
