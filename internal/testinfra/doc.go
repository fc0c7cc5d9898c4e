// Tilegate - Map Tile and Time-Series Query Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tilegate

// Package testinfra provides test infrastructure for integration testing
// against a real InfluxDB and a mock tile provider.
//
// Everything except this file is built only with the integration tag:
//
//	go test -tags integration ./internal/testinfra/...
//
// # InfluxDB Container
//
// NewInfluxDBContainer starts InfluxDB 2.x through testcontainers-go with
// automated setup, so the organization, bucket and admin token are known
// up front. The organization ID is resolved before the container is
// returned. StartInfluxDB wraps it for tests: it skips without Docker,
// terminates the container on cleanup and dumps the InfluxDB log tail
// when the test failed:
//
//	db := testinfra.StartInfluxDB(ctx, t)
//
//	db.WriteLineProtocol(ctx, "mem,host=a used_percent=42.5")
//	client := influx.NewClient(http.DefaultClient, db.URL, db.Token, db.OrgID)
//
// # Mock Tile Provider
//
// MockTileProvider is an httptest server with the provider's token and
// tile endpoints. It issues sequential tokens, accepts tiles signed with
// the operator key or the latest token, and captures every request.
//
// # CI Considerations
//
// Container tests go through StartInfluxDB and are skipped when the Docker
// daemon is unreachable. The first run downloads the InfluxDB image.
package testinfra
