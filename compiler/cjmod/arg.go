// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package cjmod

import "strings"

// Arg is a schema bound to scanned values.
//
// Transformers attached with Bind run when a value is read, so a module
// can normalise or rewrite arguments without touching the scan itself.
type Arg struct {
	schema       *Schema
	values       map[string]string
	variadic     []string
	transformers map[string]func(string) string
}

// NewArg creates an empty binding for the schema.
func NewArg(schema *Schema) *Arg {
	return &Arg{
		schema:       schema,
		values:       make(map[string]string),
		transformers: make(map[string]func(string) string),
	}
}

// Schema returns the schema the Arg was bound against.
func (a *Arg) Schema() *Schema { return a.schema }

// Bind attaches a value transformer to a parameter.
func (a *Arg) Bind(name string, fn func(string) string) *Arg {
	a.transformers[name] = fn
	return a
}

// Set stores a raw value for a parameter.
func (a *Arg) Set(name, value string) {
	a.values[name] = value
}

// AppendVariadic stores one value of the variadic tail.
func (a *Arg) AppendVariadic(value string) {
	a.variadic = append(a.variadic, value)
}

// Value reads a parameter value through its transformer. ok is false
// when the parameter was never bound.
func (a *Arg) Value(name string) (string, bool) {
	v, ok := a.values[name]
	if !ok {
		return "", false
	}
	if fn, bound := a.transformers[name]; bound {
		v = fn(v)
	}
	return v, true
}

// ValueOr reads a parameter value with a default for absent ones.
func (a *Arg) ValueOr(name, def string) string {
	if v, ok := a.Value(name); ok {
		return v
	}
	return def
}

// Variadic returns the variadic tail values.
func (a *Arg) Variadic() []string { return a.variadic }

// FillValue copies bound values (not transformers) from another Arg.
func (a *Arg) FillValue(other *Arg) *Arg {
	for k, v := range other.values {
		if _, ok := a.values[k]; !ok {
			a.values[k] = v
		}
	}
	a.variadic = append(a.variadic, other.variadic...)
	return a
}

// Transform renders a template, substituting "$name" for each bound
// parameter. Longer names substitute first so "$width" never collides
// with "$w". Unbound placeholders render empty.
func (a *Arg) Transform(template string) string {
	params := append([]Param(nil), a.schema.Params...)
	for i := 0; i < len(params); i++ {
		for j := i + 1; j < len(params); j++ {
			if len(params[j].Name) > len(params[i].Name) {
				params[i], params[j] = params[j], params[i]
			}
		}
	}
	out := template
	for _, p := range params {
		v, _ := a.Value(p.Name)
		out = strings.ReplaceAll(out, "$"+p.Name, v)
	}
	return out
}
