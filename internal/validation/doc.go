// Tilegate - Map Tile and Time-Series Query Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tilegate

// Package validation wraps go-playground/validator v10 with a shared
// singleton instance, gateway-specific tags and error messages shaped for
// the API error envelope.
//
// Custom tags:
//   - tile_axis=<ZoomField>: an x or y tile index must be below 2^zoom,
//     where zoom is read from the named sibling field
//
// Example:
//
//	type TileCoordinate struct {
//	    Z int `validate:"gte=0,lte=30"`
//	    X int `validate:"gte=0,tile_axis=Z"`
//	    Y int `validate:"gte=0,tile_axis=Z"`
//	}
//
//	if verr := validation.ValidateStruct(&coord); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    ...
//	}
package validation
