// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package cjmod is the syntax-extension surface of the CHTL-JS pipeline.
//
// A CJMOD registers functions described by pattern strings. Patterns
// contain placeholders that build an ordered argument schema; the
// scanner binds a source block against the schema into an Arg, and the
// generator renders the lowered JavaScript. Native plugin loading is not
// part of the contract: a built-in registry (see function.go) carries
// the same surface, and the Chtholly module registers through it.
package cjmod

import (
	"fmt"
	"strings"
)

// Param is one placeholder of an analyzed pattern.
//
// Placeholder spellings compose: '$' ordered required, '$?' ordered
// optional, '$!' explicitly required (binding errors when absent), '$_'
// unordered (matched by entry name among siblings), '...' variadic.
// Marks combine, so "$!_" is required-and-unordered.
type Param struct {
	Name      string
	Optional  bool
	Explicit  bool
	Unordered bool
	Variadic  bool
}

// Schema is the analyzed form of a pattern: the leading keyword plus the
// ordered parameter list.
type Schema struct {
	Keyword string
	Params  []Param
}

// Param returns the named parameter.
func (s *Schema) Param(name string) (Param, bool) {
	for _, p := range s.Params {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

// Analyze breaks a pattern template into its argument schema.
//
// Supported shapes:
//
//	keyword {name: $!_, other: $?_}     named block parameters
//	keyword $! -> word $? -> word $!    positional chain parameters
//
// Positional placeholders get synthetic names "arg0", "arg1", … in
// pattern order.
func Analyze(pattern string) (*Schema, error) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return nil, ErrEmptyPattern
	}

	fields := strings.Fields(pattern)
	schema := &Schema{Keyword: fields[0]}
	if strings.ContainsAny(schema.Keyword, "${") {
		return nil, fmt.Errorf("pattern %q: %w", pattern, ErrMissingKeyword)
	}

	rest := strings.TrimSpace(pattern[len(schema.Keyword):])
	if strings.HasPrefix(rest, "{") {
		body := strings.TrimSuffix(strings.TrimPrefix(rest, "{"), "}")
		for _, part := range strings.Split(body, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			name, spec, found := strings.Cut(part, ":")
			if !found {
				return nil, fmt.Errorf("pattern entry %q: %w", part, ErrBadPlaceholder)
			}
			param, err := parsePlaceholder(strings.TrimSpace(spec))
			if err != nil {
				return nil, err
			}
			param.Name = strings.TrimSpace(name)
			schema.Params = append(schema.Params, param)
		}
		return schema, nil
	}

	// Positional chain form: placeholders interleave with literal words.
	n := 0
	for _, f := range fields[1:] {
		if !strings.HasPrefix(f, "$") && f != "..." {
			continue
		}
		param, err := parsePlaceholder(f)
		if err != nil {
			return nil, err
		}
		param.Name = fmt.Sprintf("arg%d", n)
		n++
		schema.Params = append(schema.Params, param)
	}
	if len(schema.Params) == 0 {
		return nil, fmt.Errorf("pattern %q: %w", pattern, ErrBadPlaceholder)
	}
	return schema, nil
}

// parsePlaceholder decodes one placeholder spelling. Nested pattern
// fragments like "function($!_)" reduce to their inner placeholder.
func parsePlaceholder(spec string) (Param, error) {
	if spec == "..." {
		return Param{Variadic: true}, nil
	}
	if i := strings.IndexByte(spec, '$'); i >= 0 {
		spec = spec[i:]
	} else {
		return Param{}, fmt.Errorf("placeholder %q: %w", spec, ErrBadPlaceholder)
	}

	p := Param{}
	for _, c := range spec[1:] {
		switch c {
		case '?':
			p.Optional = true
		case '!':
			p.Explicit = true
		case '_':
			p.Unordered = true
		default:
			// Trailing pattern text like "(…)" ends the placeholder.
			return p, nil
		}
	}
	return p, nil
}
