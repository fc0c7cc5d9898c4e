// Tilegate - Map Tile and Time-Series Query Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tilegate

// Package auth issues and verifies the bearer credentials handed to the
// map dashboard.
//
// Credentials are HS256 JWTs over an arbitrary claim set. The issuer does
// not add or enforce any claims of its own, and credentials carry no expiry
// unless the caller includes one. The verifier accepts a credential when its
// signature is valid and its kid claim equals the configured value
// (default "static"); no other claim is interpreted.
//
// # Components
//
//   - Issuer: signs a claim set
//   - Verifier: checks signature, signing method and the kid claim
//   - Gate: HTTP middleware in front of protected routes
//   - BasicGate: optional operator Basic auth in front of the issue endpoint
//
// # Gate Semantics
//
//	no Authorization header                  -> 401
//	bad signature, malformed or wrong kid    -> 403
//	otherwise                                -> claims stored in context, next handler runs
//
// The scheme word in the header is not checked; "Bearer x" and "Token x"
// are both accepted.
package auth
