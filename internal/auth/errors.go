// Tilegate - Map Tile and Time-Series Query Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tilegate

package auth

import "errors"

var (
	// ErrUnauthenticated means no credential was presented.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrForbidden means a credential was presented and rejected.
	ErrForbidden = errors.New("credential rejected")

	// ErrKIDMismatch is wrapped with ErrForbidden when the kid claim is
	// missing or differs from the required value.
	ErrKIDMismatch = errors.New("kid claim mismatch")

	// ErrEmptySecret is returned by constructors given no signing secret.
	ErrEmptySecret = errors.New("signing secret is required")
)
