// Tilegate - Map Tile and Time-Series Query Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tilegate

package influx

import (
	"errors"
	"fmt"
	"sort"
)

// Query names served by the gateway.
const (
	LineQuery = "line"
	MapQuery  = "map"
)

const lineQueryText = `from(bucket: "telegraf")
    |> range(start: -30s)
    |> filter(fn: (r) => r._measurement == "mem")
    |> filter(fn: (r) => r._field == "used_percent")
    |> aggregateWindow(every: v.windowPeriod, fn: mean, createEmpty: false)`

const mapQueryText = `from(bucket: "palak+cloud2's Bucket")
    |> range(start: 2019-02-01T00:00:00.000Z, stop: 2020-02-28T23:59:00.000Z)
    |> filter(fn: (r) => r["_measurement"] == "migration")
    |> aggregateWindow(every: v.windowPeriod, fn: mean, createEmpty: false)
    |> yield(name: "mean")`

// dashboardBindings are the variables a dashboard cell would supply.
func dashboardBindings() []Binding {
	return []Binding{
		StringBinding("bucket", "telegraf"),
		NegativeDurationBinding("timeRangeStart", 1, "h"),
		CallBinding("timeRangeStop", "now"),
		DurationBinding("windowPeriod", 10000, "ms"),
	}
}

// Catalogue is an immutable set of named queries.
type Catalogue struct {
	specs map[string]QuerySpec
}

// NewCatalogue validates every spec and indexes it by name.
func NewCatalogue(specs ...QuerySpec) (*Catalogue, error) {
	c := &Catalogue{specs: make(map[string]QuerySpec, len(specs))}
	var errs []error
	for _, s := range specs {
		if _, dup := c.specs[s.Name]; dup {
			errs = append(errs, fmt.Errorf("duplicate query name %q", s.Name))
			continue
		}
		if err := s.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		c.specs[s.Name] = s
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return c, nil
}

// DefaultCatalogue returns the line and map queries.
func DefaultCatalogue() (*Catalogue, error) {
	return NewCatalogue(
		QuerySpec{Name: LineQuery, Text: lineQueryText, Bindings: dashboardBindings()},
		QuerySpec{Name: MapQuery, Text: mapQueryText, Bindings: dashboardBindings()},
	)
}

// Get returns the named spec.
func (c *Catalogue) Get(name string) (QuerySpec, error) {
	s, ok := c.specs[name]
	if !ok {
		return QuerySpec{}, fmt.Errorf("%w: %q", ErrUnknownQuery, name)
	}
	return s, nil
}

// Names returns the registered names in sorted order.
func (c *Catalogue) Names() []string {
	names := make([]string, 0, len(c.specs))
	for n := range c.specs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
