// Tilegate - Map Tile and Time-Series Query Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tilegate

package supervisor

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/tilegate/internal/supervisor/services"
	"github.com/tomtom215/tilegate/internal/tiles"
)

const testTemplate = "https://tiles.example.test/styles/v1/acme/style/tiles/256/{z}/{x}/{y}"

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// firstOnlySource hands out tk.1 once and fails every later exchange.
type firstOnlySource struct {
	calls atomic.Int32
}

func (s *firstOnlySource) Exchange(_ context.Context) (tiles.Exchange, error) {
	if s.calls.Add(1) == 1 {
		return tiles.Exchange{Token: "tk.1", ExpiresAt: time.Now().Add(time.Hour)}, nil
	}
	return tiles.Exchange{}, errors.New("provider unavailable")
}

// crashOnceService runs the wrapped exchanger service until the first token
// lands, then fails once. Later runs delegate directly.
type crashOnceService struct {
	inner   *services.ExchangerService
	ready   func() bool
	starts  atomic.Int32
	crashed atomic.Bool
}

func (s *crashOnceService) Serve(ctx context.Context) error {
	s.starts.Add(1)
	if s.crashed.Load() {
		return s.inner.Serve(ctx)
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- s.inner.Serve(runCtx) }()

	for !s.ready() {
		select {
		case <-ctx.Done():
			cancel()
			<-done
			return ctx.Err()
		case <-time.After(5 * time.Millisecond):
		}
	}

	s.crashed.Store(true)
	cancel()
	<-done
	return errors.New("token exchanger crashed")
}

func (s *crashOnceService) String() string { return "crash-once-exchanger" }

func newTestExchanger(t *testing.T, src tiles.TokenSource) *tiles.Exchanger {
	t.Helper()
	ex, err := tiles.NewExchanger(tiles.ExchangerConfig{
		Source:          src,
		Template:        testTemplate,
		RefreshInterval: time.Hour,
		Timeout:         time.Second,
	})
	if err != nil {
		t.Fatalf("NewExchanger: %v", err)
	}
	return ex
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSupervisorTree_ExchangerCrashKeepsLastToken(t *testing.T) {
	tree, err := NewSupervisorTree(quietLogger(), TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   10 * time.Millisecond,
		ShutdownTimeout:  time.Second,
	})
	if err != nil {
		t.Fatalf("NewSupervisorTree: %v", err)
	}

	src := &firstOnlySource{}
	ex := newTestExchanger(t, src)
	crashing := &crashOnceService{inner: services.NewExchangerService(ex), ready: ex.Ready}
	messaging := NewMockService("websocket-hub")
	api := NewMockService("http-server")

	tree.AddExchangeService(crashing)
	tree.AddMessagingService(messaging)
	tree.AddAPIService(api)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	// The restarted exchanger runs its first exchange immediately and fails.
	waitFor(t, "exchanger restart", func() bool { return crashing.starts.Load() >= 2 })
	waitFor(t, "failed exchange after restart", func() bool {
		st := ex.Status()
		return st.Running && st.LastError != ""
	})

	tok := ex.Current()
	if tok == nil || tok.Token != "tk.1" || tok.Sequence != 1 {
		t.Errorf("Current() = %+v, want tk.1 at sequence 1", tok)
	}
	if got := ex.Status().State; got != tiles.StateReady {
		t.Errorf("State = %q, want %q", got, tiles.StateReady)
	}
	if n := api.StartCount(); n != 1 {
		t.Errorf("api layer started %d times, want 1", n)
	}
	if n := messaging.StartCount(); n != 1 {
		t.Errorf("messaging layer started %d times, want 1", n)
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("tree did not shut down")
	}
	if ex.Status().Running {
		t.Error("exchanger still running after shutdown")
	}
}

func TestSupervisorTree_APICrashLeavesExchangerAlone(t *testing.T) {
	tree, err := NewSupervisorTree(quietLogger(), TreeConfig{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		ShutdownTimeout:  time.Second,
	})
	if err != nil {
		t.Fatalf("NewSupervisorTree: %v", err)
	}

	src := &firstOnlySource{}
	ex := newTestExchanger(t, src)
	api := NewMockService("http-server")
	api.SetFailCount(2)

	tree.AddExchangeService(services.NewExchangerService(ex))
	tree.AddAPIService(api)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	waitFor(t, "api restarts", func() bool { return api.StartCount() >= 3 })
	waitFor(t, "first token", ex.Ready)

	// An exchanger restart would run a second exchange straight away.
	if n := src.calls.Load(); n != 1 {
		t.Errorf("token source called %d times, want 1", n)
	}
	if tok := ex.Current(); tok == nil || tok.Token != "tk.1" {
		t.Errorf("Current() = %+v, want tk.1", tok)
	}

	cancel()
	select {
	case <-errCh:
	case <-time.After(3 * time.Second):
		t.Fatal("tree did not shut down")
	}
	if ex.Status().Running {
		t.Error("exchanger still running after shutdown")
	}
	if api.StopCount() != api.StartCount() {
		t.Errorf("api stops = %d, starts = %d", api.StopCount(), api.StartCount())
	}
}

func TestSupervisorTree_ShutdownStopsEveryLayer(t *testing.T) {
	tree, err := NewSupervisorTree(quietLogger(), TreeConfig{ShutdownTimeout: time.Second})
	if err != nil {
		t.Fatalf("NewSupervisorTree: %v", err)
	}

	ex := newTestExchanger(t, &firstOnlySource{})
	hub := NewMockService("websocket-hub")
	forwarder := NewMockService("event-forwarder")
	api := NewMockService("http-server")

	tree.AddExchangeService(services.NewExchangerService(ex))
	tree.AddMessagingService(hub)
	tree.AddMessagingService(forwarder)
	tree.AddAPIService(api)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	waitFor(t, "all layers", func() bool {
		return ex.Ready() && hub.StartCount() == 1 && forwarder.StartCount() == 1 && api.StartCount() == 1
	})

	cancel()
	select {
	case <-errCh:
	case <-time.After(3 * time.Second):
		t.Fatal("tree did not shut down")
	}

	for _, svc := range []*MockService{hub, forwarder, api} {
		if svc.StopCount() != 1 {
			t.Errorf("%s stopped %d times, want 1", svc, svc.StopCount())
		}
	}
	if ex.Status().Running {
		t.Error("exchanger still running after shutdown")
	}
	report, err := tree.UnstoppedServiceReport()
	if err != nil {
		t.Fatalf("UnstoppedServiceReport: %v", err)
	}
	if len(report) != 0 {
		t.Errorf("unstopped services: %v", report)
	}
}

func TestNewSupervisorTree_Defaults(t *testing.T) {
	tree, err := NewSupervisorTree(quietLogger(), TreeConfig{FailureBackoff: time.Second})
	if err != nil {
		t.Fatalf("NewSupervisorTree: %v", err)
	}

	want := DefaultTreeConfig()
	want.FailureBackoff = time.Second
	if tree.config != want {
		t.Errorf("config = %+v, want %+v", tree.config, want)
	}
	if tree.Root() == nil {
		t.Error("Root() = nil")
	}
}
