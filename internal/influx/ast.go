// Tilegate - Map Tile and Time-Series Query Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tilegate

package influx

import "time"

// The types below serialize to the subset of the Flux JSON AST that
// InfluxDB accepts in the "extern" field of a query request.

// File is the extern root.
type File struct {
	Type    string            `json:"type"`
	Package *string           `json:"package"`
	Imports []string          `json:"imports"`
	Body    []OptionStatement `json:"body"`
}

// OptionStatement is "option <assignment>".
type OptionStatement struct {
	Type       string             `json:"type"`
	Assignment VariableAssignment `json:"assignment"`
}

// VariableAssignment is "<id> = <init>".
type VariableAssignment struct {
	Type string           `json:"type"`
	ID   Identifier       `json:"id"`
	Init ObjectExpression `json:"init"`
}

// Identifier names a variable or function.
type Identifier struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// ObjectExpression is an object literal.
type ObjectExpression struct {
	Type       string     `json:"type"`
	Properties []Property `json:"properties"`
}

// Property is one key of an object literal.
type Property struct {
	Type  string     `json:"type"`
	Key   Identifier `json:"key"`
	Value Expression `json:"value"`
}

// Expression is any literal or expression node.
type Expression interface {
	expressionNode()
}

// StringLiteral is a quoted string.
type StringLiteral struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Duration is one magnitude/unit pair, e.g. 10000 ms.
type Duration struct {
	Magnitude int64  `json:"magnitude"`
	Unit      string `json:"unit"`
}

// DurationLiteral is a duration such as 1h30m.
type DurationLiteral struct {
	Type   string     `json:"type"`
	Values []Duration `json:"values"`
}

// UnaryExpression applies Operator to Argument, e.g. -1h.
type UnaryExpression struct {
	Type     string     `json:"type"`
	Operator string     `json:"operator"`
	Argument Expression `json:"argument"`
}

// CallExpression calls a function with no arguments, e.g. now().
type CallExpression struct {
	Type   string     `json:"type"`
	Callee Identifier `json:"callee"`
}

// DateTimeLiteral is an RFC3339 time.
type DateTimeLiteral struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

func (StringLiteral) expressionNode()   {}
func (DurationLiteral) expressionNode() {}
func (UnaryExpression) expressionNode() {}
func (CallExpression) expressionNode()  {}
func (DateTimeLiteral) expressionNode() {}

// Binding is one named option value exposed to the query as v.<Name>.
type Binding struct {
	Name  string
	Value Expression
}

// StringBinding binds name to a string.
func StringBinding(name, value string) Binding {
	return Binding{Name: name, Value: StringLiteral{Type: "StringLiteral", Value: value}}
}

// DurationBinding binds name to magnitude*unit, e.g. 10000 "ms".
func DurationBinding(name string, magnitude int64, unit string) Binding {
	return Binding{Name: name, Value: durationLiteral(magnitude, unit)}
}

// NegativeDurationBinding binds name to -magnitude*unit, e.g. -1h.
func NegativeDurationBinding(name string, magnitude int64, unit string) Binding {
	return Binding{Name: name, Value: UnaryExpression{
		Type:     "UnaryExpression",
		Operator: "-",
		Argument: durationLiteral(magnitude, unit),
	}}
}

// CallBinding binds name to a zero-argument call, e.g. now().
func CallBinding(name, callee string) Binding {
	return Binding{Name: name, Value: CallExpression{
		Type:   "CallExpression",
		Callee: Identifier{Type: "Identifier", Name: callee},
	}}
}

// TimeBinding binds name to an absolute time.
func TimeBinding(name string, t time.Time) Binding {
	return Binding{Name: name, Value: DateTimeLiteral{
		Type:  "DateTimeLiteral",
		Value: t.UTC().Format(time.RFC3339Nano),
	}}
}

func durationLiteral(magnitude int64, unit string) DurationLiteral {
	return DurationLiteral{
		Type:   "DurationLiteral",
		Values: []Duration{{Magnitude: magnitude, Unit: unit}},
	}
}

// buildExtern wraps bindings as "option v = {...}".
func buildExtern(bindings []Binding) *File {
	props := make([]Property, len(bindings))
	for i, b := range bindings {
		props[i] = Property{
			Type:  "Property",
			Key:   Identifier{Type: "Identifier", Name: b.Name},
			Value: b.Value,
		}
	}
	return &File{
		Type: "File",
		Body: []OptionStatement{{
			Type: "OptionStatement",
			Assignment: VariableAssignment{
				Type: "VariableAssignment",
				ID:   Identifier{Type: "Identifier", Name: "v"},
				Init: ObjectExpression{Type: "ObjectExpression", Properties: props},
			},
		}},
	}
}
