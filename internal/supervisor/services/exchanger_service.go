// Tilegate - Map Tile and Time-Series Query Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tilegate

package services

import (
	"context"
	"fmt"
)

// StartStopManager matches the tiles.Exchanger lifecycle.
//
// Satisfied by *tiles.Exchanger from internal/tiles/exchanger.go:
//   - Start(ctx context.Context) error
//   - Stop() error
type StartStopManager interface {
	Start(ctx context.Context) error
	Stop() error
}

// ExchangerService wraps the tile token exchanger as a supervised service.
//
// It adapts the Start/Stop lifecycle pattern to suture's Serve pattern:
//  1. Calls Start(ctx), which runs the first exchange and arms the timer
//  2. Waits for context cancellation
//  3. Calls Stop(), which waits for any in-flight exchange
//
// The current token lives on the exchanger, not the service, so a restart
// keeps serving the last good token until the next exchange lands.
type ExchangerService struct {
	manager StartStopManager
	name    string
}

// NewExchangerService creates a new exchanger service wrapper.
//
// Example usage:
//
//	exchanger, _ := tiles.NewExchanger(cfg)
//	tree.AddExchangeService(services.NewExchangerService(exchanger))
func NewExchangerService(manager StartStopManager) *ExchangerService {
	return &ExchangerService{
		manager: manager,
		name:    "token-exchanger",
	}
}

// Serve implements suture.Service.
//
// If Start fails the error is returned immediately, causing suture to
// restart the service according to its backoff policy.
func (s *ExchangerService) Serve(ctx context.Context) error {
	if err := s.manager.Start(ctx); err != nil {
		return fmt.Errorf("token exchanger start failed: %w", err)
	}

	<-ctx.Done()

	if err := s.manager.Stop(); err != nil {
		return fmt.Errorf("token exchanger stop failed: %w", err)
	}

	return ctx.Err()
}

// String implements fmt.Stringer for logging.
func (s *ExchangerService) String() string {
	return s.name
}
