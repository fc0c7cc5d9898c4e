// Tilegate - Map Tile and Time-Series Query Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tilegate

package validation

import (
	"strings"
	"testing"
)

type testTile struct {
	Z int `validate:"gte=0,lte=22"`
	X int `validate:"gte=0,tile_axis=Z"`
	Y int `validate:"gte=0,tile_axis=Z"`
}

type testNamed struct {
	Name string `validate:"required,min=2,max=8"`
	Kind string `validate:"oneof=line map"`
}

func TestGetValidator_Singleton(t *testing.T) {
	t.Parallel()

	if GetValidator() != GetValidator() {
		t.Error("GetValidator() returned different instances")
	}
}

func TestValidateStruct_TileAxis(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		tile      testTile
		wantField string
	}{
		{"origin", testTile{0, 0, 0}, ""},
		{"zoom 3 inside", testTile{3, 2, 1}, ""},
		{"zoom 3 last", testTile{3, 7, 7}, ""},
		{"zoom 3 x overflow", testTile{3, 8, 0}, "X"},
		{"zoom 3 y overflow", testTile{3, 0, 8}, "Y"},
		{"zoom 0 x=1", testTile{0, 1, 0}, "X"},
		{"negative x", testTile{4, -1, 0}, "X"},
		{"zoom too high", testTile{23, 0, 0}, "Z"},
		{"negative zoom", testTile{-1, 0, 0}, "Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			verr := ValidateStruct(&tt.tile)
			if tt.wantField == "" {
				if verr != nil {
					t.Errorf("ValidateStruct(%+v) = %v, want nil", tt.tile, verr)
				}
				return
			}
			if verr == nil {
				t.Fatalf("ValidateStruct(%+v) = nil, want error on %s", tt.tile, tt.wantField)
			}
			found := false
			for _, e := range verr.Errors() {
				if e.Field() == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("ValidateStruct(%+v) errors = %v, want one on %s", tt.tile, verr, tt.wantField)
			}
		})
	}
}

func TestValidateStruct_Messages(t *testing.T) {
	t.Parallel()

	verr := ValidateStruct(&testNamed{Name: "x", Kind: "bar"})
	if verr == nil {
		t.Fatal("ValidateStruct() = nil, want errors")
	}
	msg := verr.Error()
	if !strings.Contains(msg, "Name must be at least 2 characters") {
		t.Errorf("Error() = %q, want min message", msg)
	}
	if !strings.Contains(msg, "Kind must be one of: line map") {
		t.Errorf("Error() = %q, want oneof message", msg)
	}
}

func TestToAPIError(t *testing.T) {
	t.Parallel()

	single := ValidateStruct(&testTile{Z: 1, X: 5, Y: 0}).ToAPIError()
	if single.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %q, want VALIDATION_ERROR", single.Code)
	}
	if single.Details["field"] != "X" {
		t.Errorf("Details[field] = %v, want X", single.Details["field"])
	}
	if !strings.Contains(single.Message, "below 2^Z") {
		t.Errorf("Message = %q, want tile_axis message", single.Message)
	}

	multi := ValidateStruct(&testTile{Z: 1, X: 5, Y: 5}).ToAPIError()
	fields, ok := multi.Details["fields"].([]map[string]interface{})
	if !ok || len(fields) != 2 {
		t.Errorf("Details[fields] = %v, want 2 entries", multi.Details["fields"])
	}
}
