// Tilegate - Map Tile and Time-Series Query Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tilegate

package tiles

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/tilegate/internal/validation"
)

var (
	// ErrExchangeFailed wraps any failure to obtain a token from the provider.
	ErrExchangeFailed = errors.New("upstream token exchange failed")

	// ErrTileFailed wraps network failures while fetching a tile.
	ErrTileFailed = errors.New("upstream tile fetch failed")

	// ErrNoToken is returned in exchanged mode before the first successful exchange.
	ErrNoToken = errors.New("no upstream token available")

	// ErrInvalidCoordinate is returned for unparsable or out-of-range tile paths.
	ErrInvalidCoordinate = errors.New("invalid tile coordinate")
)

// UpstreamToken is one completed exchange. Values are immutable once stored.
type UpstreamToken struct {
	Token       string
	TileBaseURL string
	ObtainedAt  time.Time
	ExpiresAt   time.Time
	Sequence    uint64
}

// TileCoordinate identifies one raster tile.
type TileCoordinate struct {
	Z int `validate:"gte=0"`
	X int `validate:"tile_axis=Z"`
	Y int `validate:"tile_axis=Z"`
}

// String renders z/x/y.
func (c TileCoordinate) String() string {
	return strconv.Itoa(c.Z) + "/" + strconv.Itoa(c.X) + "/" + strconv.Itoa(c.Y)
}

// Fill substitutes the coordinate into a {z}/{x}/{y} URL template.
func (c TileCoordinate) Fill(template string) string {
	return strings.NewReplacer(
		"{z}", strconv.Itoa(c.Z),
		"{x}", strconv.Itoa(c.X),
		"{y}", strconv.Itoa(c.Y),
	).Replace(template)
}

// ParseCoordinate parses path segments and checks 0 <= z <= maxZoom and
// 0 <= x, y < 2^z.
func ParseCoordinate(z, x, y string, maxZoom int) (TileCoordinate, error) {
	var c TileCoordinate
	var err error

	if c.Z, err = strconv.Atoi(z); err != nil {
		return c, fmt.Errorf("%w: zoom %q", ErrInvalidCoordinate, z)
	}
	if c.X, err = strconv.Atoi(x); err != nil {
		return c, fmt.Errorf("%w: x %q", ErrInvalidCoordinate, x)
	}
	// Some map clients append the format to the last segment.
	y = strings.TrimSuffix(y, ".png")
	if c.Y, err = strconv.Atoi(y); err != nil {
		return c, fmt.Errorf("%w: y %q", ErrInvalidCoordinate, y)
	}

	if c.Z > maxZoom {
		return c, fmt.Errorf("%w: zoom %d exceeds %d", ErrInvalidCoordinate, c.Z, maxZoom)
	}
	if verr := validation.ValidateStruct(c); verr != nil {
		return c, fmt.Errorf("%w: %w", ErrInvalidCoordinate, verr)
	}
	return c, nil
}
