// Tilegate - Map Tile and Time-Series Query Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tilegate

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // success, failure, rejected
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Tile Token Exchange Metrics
	TokenExchangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tile_token_exchanges_total",
			Help: "Total number of upstream tile token exchanges",
		},
		[]string{"result"}, // success, failure, skipped
	)

	TokenExchangeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tile_token_exchange_duration_seconds",
			Help:    "Duration of upstream tile token exchanges",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	TokenLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tile_token_last_success_timestamp_seconds",
			Help: "Unix time of the last successful tile token exchange",
		},
	)

	TokenExpiry = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tile_token_expiry_timestamp_seconds",
			Help: "Unix time at which the current tile token expires",
		},
	)

	TokenSequence = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tile_token_sequence",
			Help: "Sequence number of the current tile token",
		},
	)

	// Tile Relay Metrics
	TileRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tile_relay_requests_total",
			Help: "Total number of relayed tile requests",
		},
		[]string{"mode", "status"}, // status: 2xx, 4xx, 5xx, error, unavailable
	)

	TileRelayDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tile_relay_duration_seconds",
			Help:    "Time to first byte from the tile provider",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"mode"},
	)

	// Query Proxy Metrics
	QueryRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "influx_query_requests_total",
			Help: "Total number of proxied InfluxDB queries",
		},
		[]string{"query", "result"}, // success, upstream_error, network_error
	)

	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "influx_query_duration_seconds",
			Help:    "Duration of proxied InfluxDB queries",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"query"},
	)

	// Credential Metrics
	CredentialsIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "credentials_issued_total",
			Help: "Total number of bearer credentials issued",
		},
	)

	CredentialChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credentials_checks_total",
			Help: "Total number of bearer credential checks",
		},
		[]string{"result"}, // ok, missing, invalid, wrong_kid
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)

	// Event Bus Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Total number of in-process events published",
		},
		[]string{"topic"},
	)
)

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordTokenExchange records the outcome of a tile token exchange.
// expiresAt is ignored unless err is nil.
func RecordTokenExchange(duration time.Duration, sequence uint64, expiresAt time.Time, err error) {
	TokenExchangeDuration.Observe(duration.Seconds())
	if err != nil {
		TokenExchangesTotal.WithLabelValues("failure").Inc()
		return
	}
	TokenExchangesTotal.WithLabelValues("success").Inc()
	TokenLastSuccess.SetToCurrentTime()
	TokenExpiry.Set(float64(expiresAt.Unix()))
	TokenSequence.Set(float64(sequence))
}

// RecordTokenExchangeSkipped records a tick that found an exchange in flight.
func RecordTokenExchangeSkipped() {
	TokenExchangesTotal.WithLabelValues("skipped").Inc()
}

// RecordTileRequest records a relayed tile. status is an HTTP status code,
// or 0 when the upstream could not be reached.
func RecordTileRequest(mode string, status int, duration time.Duration) {
	TileRequestsTotal.WithLabelValues(mode, statusClass(status)).Inc()
	if status != 0 {
		TileRelayDuration.WithLabelValues(mode).Observe(duration.Seconds())
	}
}

// RecordTileUnavailable records a tile request refused because no
// exchanged token was available yet.
func RecordTileUnavailable(mode string) {
	TileRequestsTotal.WithLabelValues(mode, "unavailable").Inc()
}

// RecordQuery records a proxied query outcome.
func RecordQuery(query, result string, duration time.Duration) {
	QueryRequestsTotal.WithLabelValues(query, result).Inc()
	QueryDuration.WithLabelValues(query).Observe(duration.Seconds())
}

// RecordCredentialIssued counts an issued bearer credential.
func RecordCredentialIssued() {
	CredentialsIssued.Inc()
}

// RecordCredentialCheck counts a credential check by result.
func RecordCredentialCheck(result string) {
	CredentialChecks.WithLabelValues(result).Inc()
}

// RecordEventPublished counts an event published on topic.
func RecordEventPublished(topic string) {
	EventsPublished.WithLabelValues(topic).Inc()
}

func statusClass(status int) string {
	if status == 0 {
		return "error"
	}
	return strconv.Itoa(status/100) + "xx"
}
