// Tilegate - Map Tile and Time-Series Query Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tilegate

package services

import (
	"context"
)

// ContextRunner matches components whose RunWithContext already follows the
// suture.Service contract: block until ctx is done, then return ctx.Err().
//
// Satisfied by:
//   - *websocket.Hub from internal/websocket/hub.go
//   - *events.Forwarder from internal/events/forwarder.go
type ContextRunner interface {
	RunWithContext(ctx context.Context) error
}

// ContextHub is kept as the name the hub wrapper documents.
type ContextHub = ContextRunner

// RunnerService wraps a ContextRunner as a supervised service.
//
// Example usage:
//
//	hub := websocket.NewHub()
//	tree.AddMessagingService(services.NewWebSocketHubService(hub))
//	tree.AddMessagingService(services.NewForwarderService(forwarder))
type RunnerService struct {
	runner ContextRunner
	name   string
}

// NewWebSocketHubService wraps the WebSocket hub. The hub closes every
// client with a going-away frame when ctx is canceled.
func NewWebSocketHubService(hub ContextHub) *RunnerService {
	return &RunnerService{
		runner: hub,
		name:   "websocket-hub",
	}
}

// NewForwarderService wraps the token event forwarder that relays
// refreshed tile URLs from the event bus to the hub.
func NewForwarderService(forwarder ContextRunner) *RunnerService {
	return &RunnerService{
		runner: forwarder,
		name:   "event-forwarder",
	}
}

// Serve implements suture.Service by delegating to RunWithContext.
func (w *RunnerService) Serve(ctx context.Context) error {
	return w.runner.RunWithContext(ctx)
}

// String implements fmt.Stringer for logging.
func (w *RunnerService) String() string {
	return w.name
}
