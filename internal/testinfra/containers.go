// Tilegate - Map Tile and Time-Series Query Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tilegate

//go:build integration

package testinfra

import (
	"context"
	"os/exec"
	"testing"
	"time"
)

// maxDumpedLogBytes caps the InfluxDB log tail written on failure.
const maxDumpedLogBytes = 8 << 10

// SkipIfNoDocker skips t when the Docker daemon is unreachable.
func SkipIfNoDocker(t *testing.T) {
	t.Helper()
	if !dockerAvailable() {
		t.Skip("Skipping test: Docker not available")
	}
}

func dockerAvailable() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return exec.CommandContext(ctx, "docker", "info").Run() == nil
}

// StartInfluxDB starts an InfluxDB container for t, or skips t without
// Docker. The container is terminated when t ends; if t failed, the tail
// of the InfluxDB log is written to the test output first.
func StartInfluxDB(ctx context.Context, t *testing.T, opts ...InfluxDBOption) *InfluxDBContainer {
	t.Helper()
	SkipIfNoDocker(t)

	db, err := NewInfluxDBContainer(ctx, opts...)
	if err != nil {
		t.Fatalf("start influxdb: %v", err)
	}

	t.Cleanup(func() {
		// The test's ctx is usually canceled by now.
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if t.Failed() {
			if logs, err := db.Logs(cleanupCtx); err == nil {
				if len(logs) > maxDumpedLogBytes {
					logs = logs[len(logs)-maxDumpedLogBytes:]
				}
				t.Logf("influxdb log tail:\n%s", logs)
			}
		}
		if err := db.Terminate(cleanupCtx); err != nil {
			t.Logf("Warning: failed to terminate influxdb container: %v", err)
		}
	})
	return db
}
