// Tilegate - Map Tile and Time-Series Query Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tilegate

package influx

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var (
	// ErrQueryFailed wraps network failures talking to InfluxDB.
	ErrQueryFailed = errors.New("upstream query failed")

	// ErrUnboundVariable is returned when the text references v.<name>
	// without a matching binding.
	ErrUnboundVariable = errors.New("query references unbound variable")

	// ErrUnknownQuery is returned for names missing from a Catalogue.
	ErrUnknownQuery = errors.New("unknown query")
)

// optionRef matches v.<identifier> not preceded by an identifier character,
// so "env.x" or "rv.x" do not count.
var optionRef = regexp.MustCompile(`(?:^|[^A-Za-z0-9_.])v\.([A-Za-z_][A-Za-z0-9_]*)`)

// Dialect requests annotated CSV.
type Dialect struct {
	Annotations []string `json:"annotations"`
}

// DefaultDialect is the annotation set browser chart clients parse.
var DefaultDialect = Dialect{Annotations: []string{"group", "datatype", "default"}}

// Request is the JSON body of POST /api/v2/query.
type Request struct {
	Query   string  `json:"query"`
	Extern  *File   `json:"extern,omitempty"`
	Dialect Dialect `json:"dialect"`
}

// QuerySpec is query text plus the bindings for its free variables.
type QuerySpec struct {
	Name     string
	Text     string
	Bindings []Binding
}

// FreeVariables returns the sorted, de-duplicated v.<name> references in Text.
func (q QuerySpec) FreeVariables() []string {
	seen := make(map[string]struct{})
	for _, m := range optionRef.FindAllStringSubmatch(q.Text, -1) {
		seen[m[1]] = struct{}{}
	}
	vars := make([]string, 0, len(seen))
	for name := range seen {
		vars = append(vars, name)
	}
	sort.Strings(vars)
	return vars
}

// Validate checks the text is non-empty, binding names are unique, and
// every free variable is bound. Extra bindings are allowed.
func (q QuerySpec) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("query %q: empty text", q.Name)
	}

	bound := make(map[string]struct{}, len(q.Bindings))
	for _, b := range q.Bindings {
		if b.Name == "" || b.Value == nil {
			return fmt.Errorf("query %q: binding with empty name or value", q.Name)
		}
		if _, dup := bound[b.Name]; dup {
			return fmt.Errorf("query %q: duplicate binding %q", q.Name, b.Name)
		}
		bound[b.Name] = struct{}{}
	}

	var missing []string
	for _, v := range q.FreeVariables() {
		if _, ok := bound[v]; !ok {
			missing = append(missing, v)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("query %q: %w: v.%s", q.Name, ErrUnboundVariable, strings.Join(missing, ", v."))
	}
	return nil
}

// Request builds the upstream request body.
func (q QuerySpec) Request() Request {
	req := Request{Query: q.Text, Dialect: DefaultDialect}
	if len(q.Bindings) > 0 {
		req.Extern = buildExtern(q.Bindings)
	}
	return req
}
