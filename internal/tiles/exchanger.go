// Tilegate - Map Tile and Time-Series Query Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tilegate

package tiles

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tomtom215/tilegate/internal/logging"
	"github.com/tomtom215/tilegate/internal/metrics"
)

// Exchanger states as reported by Status.
const (
	StateInitializing = "initializing"
	StateReady        = "ready"
)

// Publisher is notified after every successful exchange.
// Implemented by *events.Bus.
type Publisher interface {
	PublishTokenRefreshed(ctx context.Context, sequence uint64, tileBaseURL string) error
}

// ExchangerConfig configures an Exchanger.
type ExchangerConfig struct {
	Source TokenSource
	// Template is the style tile URL with {z}/{x}/{y} and no token.
	Template string
	// RefreshInterval is the tick period. Must be positive.
	RefreshInterval time.Duration
	// Timeout bounds a single exchange. Zero means none.
	Timeout time.Duration
	// Publisher is optional.
	Publisher Publisher
}

// Status is a point-in-time view of the exchanger for health reporting.
type Status struct {
	State       string     `json:"state"`
	Sequence    uint64     `json:"sequence"`
	ObtainedAt  *time.Time `json:"obtained_at,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	LastAttempt *time.Time `json:"last_attempt,omitempty"`
	LastError   string     `json:"last_error,omitempty"`
	Running     bool       `json:"running"`
}

// Exchanger keeps the current UpstreamToken fresh.
type Exchanger struct {
	cfg ExchangerConfig

	current  atomic.Pointer[UpstreamToken]
	inFlight atomic.Bool
	sequence atomic.Uint64

	mu          sync.RWMutex
	running     bool
	stopChan    chan struct{}
	lastAttempt time.Time
	lastError   string

	wg sync.WaitGroup
}

// NewExchanger creates an Exchanger in the Initializing state.
func NewExchanger(cfg ExchangerConfig) (*Exchanger, error) {
	if cfg.Source == nil {
		return nil, fmt.Errorf("exchanger: token source is required")
	}
	if cfg.RefreshInterval <= 0 {
		return nil, fmt.Errorf("exchanger: refresh interval must be positive, got %v", cfg.RefreshInterval)
	}
	return &Exchanger{cfg: cfg}, nil
}

// Current returns the latest token, or nil while initializing.
func (e *Exchanger) Current() *UpstreamToken {
	return e.current.Load()
}

// TileBaseURL returns the latest tile URL template, or "" while initializing.
func (e *Exchanger) TileBaseURL() string {
	if tok := e.current.Load(); tok != nil {
		return tok.TileBaseURL
	}
	return ""
}

// Ready reports whether at least one exchange has succeeded.
func (e *Exchanger) Ready() bool {
	return e.current.Load() != nil
}

// ExchangeNow runs one exchange unless another is in flight. It returns
// false, nil when skipped. Failures leave the current token untouched.
func (e *Exchanger) ExchangeNow(ctx context.Context) (bool, error) {
	if !e.inFlight.CompareAndSwap(false, true) {
		metrics.RecordTokenExchangeSkipped()
		logging.Debug().Msg("Token exchange still in flight, skipping tick")
		return false, nil
	}
	defer e.inFlight.Store(false)

	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}
	ctx = logging.ContextWithNewCorrelationID(ctx)

	start := time.Now()
	exch, err := e.cfg.Source.Exchange(ctx)
	elapsed := time.Since(start)

	e.mu.Lock()
	e.lastAttempt = start
	if err != nil {
		e.lastError = err.Error()
	} else {
		e.lastError = ""
	}
	e.mu.Unlock()

	if err != nil {
		metrics.RecordTokenExchange(elapsed, 0, time.Time{}, err)
		logging.Ctx(ctx).Warn().Err(err).
			Bool("stale_token_kept", e.Ready()).
			Dur("duration", elapsed).
			Msg("Token exchange failed")
		return true, err
	}

	tok := &UpstreamToken{
		Token:       exch.Token,
		TileBaseURL: BuildTileBaseURL(e.cfg.Template, exch.Token),
		ObtainedAt:  start,
		ExpiresAt:   exch.ExpiresAt,
		Sequence:    e.sequence.Add(1),
	}
	e.current.Store(tok)

	metrics.RecordTokenExchange(elapsed, tok.Sequence, tok.ExpiresAt, nil)
	logging.Ctx(ctx).Info().
		Uint64("sequence", tok.Sequence).
		Time("expires_at", tok.ExpiresAt).
		Str("token", logging.MaskSecret(tok.Token)).
		Dur("duration", elapsed).
		Msg("Token exchange succeeded")

	if e.cfg.Publisher != nil {
		if perr := e.cfg.Publisher.PublishTokenRefreshed(ctx, tok.Sequence, tok.TileBaseURL); perr != nil {
			logging.Ctx(ctx).Warn().Err(perr).Msg("Failed to publish token refresh")
		}
	}
	return true, nil
}

// Start runs the first exchange in the background and schedules the rest.
func (e *Exchanger) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return fmt.Errorf("token exchanger is already running")
	}
	e.running = true
	e.stopChan = make(chan struct{})
	stop := e.stopChan
	e.mu.Unlock()

	logging.Info().
		Dur("refresh_interval", e.cfg.RefreshInterval).
		Msg("Starting token exchanger...")

	e.wg.Add(1)
	go e.refreshLoop(ctx, stop)
	return nil
}

// Stop cancels the timer and waits for any in-flight exchange.
func (e *Exchanger) Stop() error {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return fmt.Errorf("token exchanger is not running")
	}
	e.running = false
	close(e.stopChan)
	e.mu.Unlock()

	e.wg.Wait()
	logging.Info().Msg("Token exchanger stopped")
	return nil
}

func (e *Exchanger) refreshLoop(ctx context.Context, stop <-chan struct{}) {
	defer e.wg.Done()

	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-stop:
			cancel()
		case <-loopCtx.Done():
		}
	}()

	e.spawnExchange(loopCtx)

	ticker := time.NewTicker(e.cfg.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-loopCtx.Done():
			return
		case <-ticker.C:
			e.spawnExchange(loopCtx)
		}
	}
}

// spawnExchange runs ExchangeNow without blocking the ticker, so a slow
// exchange produces skipped ticks rather than a backlog.
func (e *Exchanger) spawnExchange(ctx context.Context) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		_, _ = e.ExchangeNow(ctx) //nolint:errcheck // logged in ExchangeNow
	}()
}

// Status returns the exchanger's current state.
func (e *Exchanger) Status() Status {
	e.mu.RLock()
	st := Status{
		State:     StateInitializing,
		LastError: e.lastError,
		Running:   e.running,
	}
	if !e.lastAttempt.IsZero() {
		at := e.lastAttempt
		st.LastAttempt = &at
	}
	e.mu.RUnlock()

	if tok := e.current.Load(); tok != nil {
		st.State = StateReady
		st.Sequence = tok.Sequence
		obtained, expires := tok.ObtainedAt, tok.ExpiresAt
		st.ObtainedAt = &obtained
		st.ExpiresAt = &expires
	}
	return st
}
