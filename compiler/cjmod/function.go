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

import (
	"fmt"
	"strings"
)

// CHTLJSFunction is one registered extension form.
//
// The default lowering wraps Body in an immediately-invoked function
// with each parameter in scope as a const. A module may install a
// custom Lower instead for forms the template cannot express.
type CHTLJSFunction struct {
	Name          string
	Schema        *Schema
	Body          string
	VirtualObject bool
	Lower         func(*Arg) (string, error)

	// LowerRaw receives the unscanned block text for forms whose keys
	// fall outside the schema grammar (state-keyed groups like Void<A>).
	LowerRaw func(body string) (string, error)
}

// Create analyzes a pattern and returns the function shell for it.
func Create(pattern string) (*CHTLJSFunction, error) {
	schema, err := Analyze(pattern)
	if err != nil {
		return nil, err
	}
	return &CHTLJSFunction{Name: schema.Keyword, Schema: schema}, nil
}

// BindVirtualObject marks the function as producing a virtual object
// accessible through the vir mechanism.
func (f *CHTLJSFunction) BindVirtualObject(name string) *CHTLJSFunction {
	f.VirtualObject = true
	if name != "" {
		f.Name = name
	}
	return f
}

// Generator renders the final lowered text of a bound Arg.
type Generator struct{}

// ExportResult emits the lowered JavaScript for a function and its
// bound arguments into the JS buffer content returned to the caller.
func (Generator) ExportResult(f *CHTLJSFunction, arg *Arg) (string, error) {
	if f.Lower != nil {
		return f.Lower(arg)
	}

	var decls []string
	for _, p := range f.Schema.Params {
		if p.Variadic {
			decls = append(decls, fmt.Sprintf("const rest = [%s];", strings.Join(arg.Variadic(), ", ")))
			continue
		}
		decls = append(decls, fmt.Sprintf("const %s = %s;", p.Name, arg.ValueOr(p.Name, "undefined")))
	}
	body := arg.Transform(f.Body)
	return fmt.Sprintf("(function () {\n%s\n%s\n})()", strings.Join(decls, "\n"), body), nil
}

// Registry maps keywords to registered functions. It implements the
// chtljs.Lowerer interface, so the CHTL-JS generator dispatches
// unrecognised block keywords here.
type Registry struct {
	funcs map[string]*CHTLJSFunction
	scan  Scanner
	gen   Generator
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]*CHTLJSFunction)}
}

// Register adds a function under its keyword. Later registrations of
// the same keyword win, so modules can shadow built-ins.
func (r *Registry) Register(f *CHTLJSFunction) {
	r.funcs[f.Schema.Keyword] = f
}

// Function returns a registered function by keyword.
func (r *Registry) Function(keyword string) (*CHTLJSFunction, bool) {
	f, ok := r.funcs[keyword]
	return f, ok
}

// IsKeyword reports whether the word opens a registered extension block.
func (r *Registry) IsKeyword(word string) bool {
	_, ok := r.funcs[word]
	return ok
}

// Lower binds the block against the keyword's schema and renders it.
func (r *Registry) Lower(keyword, body string) (string, error) {
	f, ok := r.funcs[keyword]
	if !ok {
		return "", fmt.Errorf("%q: %w", keyword, ErrUnknownFunction)
	}
	if f.LowerRaw != nil {
		return f.LowerRaw(body)
	}
	arg, err := ScanBlock(body, f.Schema)
	if err != nil {
		return "", err
	}
	return r.gen.ExportResult(f, arg)
}
