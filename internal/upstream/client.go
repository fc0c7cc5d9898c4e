// Tilegate - Map Tile and Time-Series Query Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tilegate

package upstream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/tilegate/internal/logging"
	"github.com/tomtom215/tilegate/internal/metrics"
)

// ErrCircuitOpen is returned when the breaker rejects a request without
// contacting the upstream.
var ErrCircuitOpen = errors.New("upstream circuit open")

// errServerStatus marks a 5xx response so the breaker counts it as a failure.
var errServerStatus = errors.New("upstream server error")

// Settings configures a Client.
type Settings struct {
	// Name labels the breaker in logs and metrics.
	Name string
	// Timeout bounds a whole request including the body read. Zero means none.
	Timeout time.Duration
	// RPS caps outbound requests per second. Zero disables limiting.
	RPS float64
	// Burst is the limiter bucket size. Defaults to max(1, RPS).
	Burst int
	// Transport overrides http.DefaultTransport, mostly for tests.
	Transport http.RoundTripper
}

// Client is an http.Client guarded by a circuit breaker and an optional
// rate limiter. It is safe for concurrent use.
type Client struct {
	name    string
	http    *http.Client
	cb      *gobreaker.CircuitBreaker[*responseResult]
	limiter *rate.Limiter
}

type responseResult struct {
	resp *http.Response
}

// NewClient creates a Client from s.
func NewClient(s Settings) *Client {
	if s.Name == "" {
		s.Name = "upstream"
	}

	transport := s.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	c := &Client{
		name: s.Name,
		http: &http.Client{
			Timeout:   s.Timeout,
			Transport: transport,
		},
		cb: newBreaker(s.Name),
	}

	if s.RPS > 0 {
		burst := s.Burst
		if burst <= 0 {
			burst = int(s.RPS)
			if burst < 1 {
				burst = 1
			}
		}
		c.limiter = rate.NewLimiter(rate.Limit(s.RPS), burst)
	}
	return c
}

// Name returns the breaker name.
func (c *Client) Name() string { return c.name }

// State returns the breaker state as closed, half-open or open.
func (c *Client) State() string { return stateToString(c.cb.State()) }

// Do sends req. Any upstream HTTP status, including 5xx, is returned as a
// response with a nil error; the caller owns the body. Errors mean no
// response was obtained: transport failure, limiter wait cancelled, or
// ErrCircuitOpen.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context()); err != nil {
			return nil, fmt.Errorf("%s: rate limit wait: %w", c.name, err)
		}
	}

	result, err := c.cb.Execute(func() (*responseResult, error) {
		resp, err := c.http.Do(req) //nolint:bodyclose // returned to caller
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return &responseResult{resp: resp}, errServerStatus
		}
		return &responseResult{resp: resp}, nil
	})

	switch {
	case err == nil:
		metrics.CircuitBreakerRequests.WithLabelValues(c.name, "success").Inc()
		metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(c.name).Set(0)
		return result.resp, nil

	case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(c.name, "rejected").Inc()
		logging.Warn().Str("breaker", c.name).Err(err).Msg("[CIRCUIT BREAKER] Request rejected")
		return nil, fmt.Errorf("%s: %w", c.name, ErrCircuitOpen)

	default:
		metrics.CircuitBreakerRequests.WithLabelValues(c.name, "failure").Inc()
		counts := c.cb.Counts()
		metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(c.name).Set(float64(counts.ConsecutiveFailures))

		if errors.Is(err, errServerStatus) && result != nil {
			return result.resp, nil
		}
		return nil, fmt.Errorf("%s: %w", c.name, redactURLError(err))
	}
}

// redactURLError masks credentials that net/http copies from the request
// URL into its error text.
func redactURLError(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		uerr.URL = logging.RedactURL(uerr.URL)
	}
	return err
}

func isCallerCancellation(err error) bool {
	return errors.Is(err, context.Canceled)
}
