// Tilegate - Map Tile and Time-Series Query Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tilegate

package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestSlogToZerologLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   slog.Level
		want zerolog.Level
	}{
		{slog.LevelDebug - 4, zerolog.TraceLevel},
		{slog.LevelDebug, zerolog.DebugLevel},
		{slog.LevelInfo, zerolog.InfoLevel},
		{slog.LevelWarn, zerolog.WarnLevel},
		{slog.LevelError, zerolog.ErrorLevel},
		{slog.LevelError + 4, zerolog.ErrorLevel},
	}

	for _, tt := range tests {
		if got := slogToZerologLevel(tt.in); got != tt.want {
			t.Errorf("slogToZerologLevel(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSlogHandler_Handle(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewSlogHandlerWithLogger(zerolog.New(&buf)))

	logger.Warn("service restarted",
		"service", "tile-exchanger",
		"attempt", 3,
		"backoff", 15*time.Second,
		"healthy", false,
		"err", errors.New("exchange failed"),
	)

	out := buf.String()
	for _, want := range []string{
		`"level":"warn"`,
		`"message":"service restarted"`,
		`"service":"tile-exchanger"`,
		`"attempt":3`,
		`"healthy":false`,
		`"err":"exchange failed"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output %s missing %s", out, want)
		}
	}
}

func TestSlogHandler_WithAttrsAndGroup(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	h := NewSlogHandlerWithLogger(zerolog.New(&buf))
	logger := slog.New(h.WithAttrs([]slog.Attr{slog.String("layer", "api")}).WithGroup("http"))

	logger.Info("listening", "port", 8617)

	out := buf.String()
	if !strings.Contains(out, `"http.layer":"api"`) && !strings.Contains(out, `"layer":"api"`) {
		t.Errorf("output missing pre-configured attr: %s", out)
	}
	if !strings.Contains(out, `"http.port":8617`) {
		t.Errorf("output missing grouped attr: %s", out)
	}
}

func TestSlogHandler_WithGroupEmpty(t *testing.T) {
	t.Parallel()

	h := NewSlogHandlerWithLogger(zerolog.New(&bytes.Buffer{}))
	if got := h.WithGroup(""); got != h {
		t.Error("WithGroup(\"\") should return the same handler")
	}
}

func TestSlogHandler_Enabled(t *testing.T) {
	t.Parallel()

	h := NewSlogHandlerWithLogger(zerolog.New(&bytes.Buffer{}).Level(zerolog.WarnLevel))
	ctx := context.Background()

	if h.Enabled(ctx, slog.LevelInfo) {
		t.Error("Enabled(Info) = true for warn-level logger, want false")
	}
	if zerolog.GlobalLevel() <= zerolog.ErrorLevel && !h.Enabled(ctx, slog.LevelError) {
		t.Error("Enabled(Error) = false for warn-level logger, want true")
	}
}

func TestNewSlogLoggerForComponent(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))
	defer Init(DefaultConfig())

	NewSlogLoggerForComponent("events").Info("bus started")

	if !strings.Contains(buf.String(), `"component":"events"`) {
		t.Errorf("output missing component: %s", buf.String())
	}
}
