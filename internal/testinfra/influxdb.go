// Tilegate - Map Tile and Time-Series Query Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tilegate

//go:build integration

package testinfra

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// DefaultInfluxDBImage is the official InfluxDB 2.x image.
	DefaultInfluxDBImage = "influxdb:2.7-alpine"

	// DefaultInfluxDBPort is the HTTP API port.
	DefaultInfluxDBPort = "8086/tcp"

	// DefaultInfluxOrg, DefaultInfluxBucket and DefaultInfluxToken are set
	// by the image's automated setup on first start.
	DefaultInfluxOrg    = "tilegate"
	DefaultInfluxBucket = "telegraf"
	DefaultInfluxToken  = "tilegate-integration-admin-token"
)

// InfluxDBContainer represents a running InfluxDB 2.x container.
type InfluxDBContainer struct {
	testcontainers.Container
	URL    string
	Token  string
	Org    string
	OrgID  string
	Bucket string
}

// InfluxDBOption configures the InfluxDB container.
type InfluxDBOption func(*influxConfig)

type influxConfig struct {
	image        string
	org          string
	bucket       string
	token        string
	startTimeout time.Duration
}

// WithInfluxDBImage sets a custom InfluxDB image.
func WithInfluxDBImage(image string) InfluxDBOption {
	return func(c *influxConfig) {
		c.image = image
	}
}

// WithInfluxBucket sets the initial bucket created by setup.
func WithInfluxBucket(bucket string) InfluxDBOption {
	return func(c *influxConfig) {
		c.bucket = bucket
	}
}

// WithInfluxStartTimeout sets how long to wait for /health.
func WithInfluxStartTimeout(timeout time.Duration) InfluxDBOption {
	return func(c *influxConfig) {
		c.startTimeout = timeout
	}
}

// NewInfluxDBContainer starts InfluxDB with automated setup and resolves
// the organization ID the query API requires.
func NewInfluxDBContainer(ctx context.Context, opts ...InfluxDBOption) (*InfluxDBContainer, error) {
	cfg := &influxConfig{
		image:        DefaultInfluxDBImage,
		org:          DefaultInfluxOrg,
		bucket:       DefaultInfluxBucket,
		token:        DefaultInfluxToken,
		startTimeout: 90 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	req := testcontainers.ContainerRequest{
		Image:        cfg.image,
		ExposedPorts: []string{DefaultInfluxDBPort},
		Env: map[string]string{
			"DOCKER_INFLUXDB_INIT_MODE":        "setup",
			"DOCKER_INFLUXDB_INIT_USERNAME":    "tilegate",
			"DOCKER_INFLUXDB_INIT_PASSWORD":    "tilegate-password",
			"DOCKER_INFLUXDB_INIT_ORG":         cfg.org,
			"DOCKER_INFLUXDB_INIT_BUCKET":      cfg.bucket,
			"DOCKER_INFLUXDB_INIT_ADMIN_TOKEN": cfg.token,
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort(DefaultInfluxDBPort),
			wait.ForHTTP("/health").WithPort(DefaultInfluxDBPort),
			wait.ForLog("Listening"),
		).WithStartupTimeout(cfg.startTimeout),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("create influxdb container: %w", err)
	}

	endpoint, err := container.PortEndpoint(ctx, DefaultInfluxDBPort, "http")
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get influxdb endpoint: %w", err)
	}

	c := &InfluxDBContainer{
		Container: container,
		URL:       endpoint,
		Token:     cfg.token,
		Org:       cfg.org,
		Bucket:    cfg.bucket,
	}

	// Setup runs after the HTTP listener comes up; retry until the org exists.
	deadline := time.Now().Add(cfg.startTimeout)
	for {
		c.OrgID, err = c.lookupOrgID(ctx)
		if err == nil {
			return c, nil
		}
		if time.Now().After(deadline) {
			container.Terminate(ctx) //nolint:errcheck
			return nil, fmt.Errorf("resolve org id: %w", err)
		}
		select {
		case <-ctx.Done():
			container.Terminate(ctx) //nolint:errcheck
			return nil, ctx.Err()
		case <-time.After(500 * time.Millisecond):
		}
	}
}

func (c *InfluxDBContainer) lookupOrgID(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.URL+"/api/v2/orgs?org="+url.QueryEscape(c.Org), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Token "+c.Token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("orgs lookup returned %d", resp.StatusCode)
	}

	var body struct {
		Orgs []struct {
			ID string `json:"id"`
		} `json:"orgs"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode orgs: %w", err)
	}
	if len(body.Orgs) == 0 {
		return "", fmt.Errorf("org %q not found", c.Org)
	}
	return body.Orgs[0].ID, nil
}

// WriteLineProtocol writes points to the container's bucket with second
// precision.
func (c *InfluxDBContainer) WriteLineProtocol(ctx context.Context, lines ...string) error {
	link := fmt.Sprintf("%s/api/v2/write?org=%s&bucket=%s&precision=s",
		c.URL, url.QueryEscape(c.Org), url.QueryEscape(c.Bucket))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, link, strings.NewReader(strings.Join(lines, "\n")))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Token "+c.Token)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("write points: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("write points returned %d: %s", resp.StatusCode, body)
	}
	return nil
}

// Logs returns the container logs for debugging.
func (c *InfluxDBContainer) Logs(ctx context.Context) (string, error) {
	reader, err := c.Container.Logs(ctx)
	if err != nil {
		return "", fmt.Errorf("get logs: %w", err)
	}
	defer reader.Close()

	logs, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("read logs: %w", err)
	}
	return string(logs), nil
}
