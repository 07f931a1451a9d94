// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package sema resolves templates and customs to effective bodies.
//
// Resolution merges inherited definitions depth-first (parent content
// precedes child content, later identical keys override earlier ones),
// applies specialization operations in source order, and checks
// constraints. Effective bodies are memoised per definition; a visited
// set on the DFS detects inheritance cycles. Callers always receive a
// fresh clone, so no usage shares mutable state with another.
package sema

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/AleutianAI/chtl/compiler/ast"
	"github.com/AleutianAI/chtl/compiler/symbol"
)

// Resolver computes effective bodies against one symbol table.
type Resolver struct {
	table *symbol.Table
	log   *slog.Logger

	styleMemo   map[string][]ast.Node
	elementMemo map[string][]ast.Node
	varMemo     map[string]map[string]ast.Expr
	visiting    map[string]bool
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used for debug output.
func WithLogger(log *slog.Logger) Option {
	return func(r *Resolver) { r.log = log }
}

// NewResolver creates a Resolver over the given table.
func NewResolver(table *symbol.Table, opts ...Option) *Resolver {
	r := &Resolver{
		table:       table,
		log:         slog.Default(),
		styleMemo:   make(map[string][]ast.Node),
		elementMemo: make(map[string][]ast.Node),
		varMemo:     make(map[string]map[string]ast.Expr),
		visiting:    make(map[string]bool),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Table returns the symbol table the resolver works against.
func (r *Resolver) Table() *symbol.Table { return r.table }

// deleteTargets pre-scans a body for "delete @Kind Name;" operations,
// which sever inheritance links and must apply before the merge.
func deleteTargets(body []ast.Node) map[string]bool {
	out := make(map[string]bool)
	for _, n := range body {
		if del, ok := n.(*ast.DeleteOp); ok && strings.HasPrefix(del.Target, "@") {
			fields := strings.Fields(del.Target)
			out[fields[len(fields)-1]] = true
		}
	}
	return out
}

// EffectiveStyle returns the resolved body of a style template or custom
// visible from ns: inherited content first, own content after, identical
// property names deduplicated with the later value winning.
func (r *Resolver) EffectiveStyle(ns, name string) ([]ast.Node, error) {
	key := "style|" + symbol.Qualify(ns, name)
	if memo, ok := r.styleMemo[key]; ok {
		return cloneNodes(memo), nil
	}
	if r.visiting[key] {
		return nil, fmt.Errorf("style %q: %w", name, ErrCyclicInheritance)
	}
	r.visiting[key] = true
	defer delete(r.visiting, key)

	var inherits []string
	var body []ast.Node
	if c, ok := r.table.StyleCustom(ns, name); ok {
		inherits, body = c.Inherits, c.Body
	} else if t, ok := r.table.StyleTemplate(ns, name); ok {
		inherits, body = t.Inherits, t.Body
	} else {
		return nil, fmt.Errorf("style %q: %w", name, ErrUndefinedReference)
	}

	severed := deleteTargets(body)
	var merged []ast.Node
	for _, parent := range inherits {
		if severed[parent] {
			continue
		}
		pb, err := r.EffectiveStyle(ns, parent)
		if err != nil {
			return nil, err
		}
		merged = append(merged, pb...)
	}

	for _, n := range body {
		switch v := n.(type) {
		case *ast.Usage:
			if v.Kind == ast.DefStyle && severed[v.Name] {
				continue
			}
			if v.Kind == ast.DefStyle {
				pb, err := r.ApplyStyleUsage(ns, v)
				if err != nil {
					return nil, err
				}
				merged = append(merged, pb...)
				continue
			}
			merged = append(merged, cloneNode(v))
		case *ast.DeleteOp:
			if strings.HasPrefix(v.Target, "@") {
				continue // handled by the pre-scan
			}
			merged = deleteStyleProperty(merged, v.Target)
		default:
			merged = append(merged, cloneNode(n))
		}
	}
	merged = dedupeProperties(merged)

	r.styleMemo[key] = merged
	return cloneNodes(merged), nil
}

// ApplyStyleUsage resolves a style usage including its override block.
func (r *Resolver) ApplyStyleUsage(ns string, u *ast.Usage) ([]ast.Node, error) {
	scope := ns
	if u.From != "" {
		scope = u.From
	}
	base, err := r.EffectiveStyle(scope, u.Name)
	if err != nil {
		return nil, err
	}
	for _, o := range u.Overrides {
		switch v := o.(type) {
		case *ast.Property:
			base = overrideProperty(base, v)
		case *ast.DeleteOp:
			base = deleteStyleProperty(base, v.Target)
		case *ast.Usage:
			nested, err := r.ApplyStyleUsage(ns, v)
			if err != nil {
				return nil, err
			}
			base = append(base, nested...)
		case *ast.Rule:
			base = append(base, cloneNode(v))
		}
	}
	return dedupeProperties(base), nil
}

// EffectiveElement returns the resolved child list of an element template
// or custom visible from ns, with the custom's own specialization
// operations already applied.
func (r *Resolver) EffectiveElement(ns, name string) ([]ast.Node, error) {
	key := "element|" + symbol.Qualify(ns, name)
	if memo, ok := r.elementMemo[key]; ok {
		return cloneNodes(memo), nil
	}
	if r.visiting[key] {
		return nil, fmt.Errorf("element %q: %w", name, ErrCyclicInheritance)
	}
	r.visiting[key] = true
	defer delete(r.visiting, key)

	var inherits []string
	var body []ast.Node
	if c, ok := r.table.ElementCustom(ns, name); ok {
		inherits, body = c.Inherits, c.Body
	} else if t, ok := r.table.ElementTemplate(ns, name); ok {
		inherits, body = t.Inherits, t.Body
	} else {
		return nil, fmt.Errorf("element %q: %w", name, ErrUndefinedReference)
	}

	severed := deleteTargets(body)
	var merged []ast.Node
	for _, parent := range inherits {
		if severed[parent] {
			continue
		}
		pb, err := r.EffectiveElement(ns, parent)
		if err != nil {
			return nil, err
		}
		merged = append(merged, pb...)
	}

	base := r.table.Config().IndexInitialCount()
	for _, n := range body {
		switch v := n.(type) {
		case *ast.Usage:
			if v.Kind == ast.DefElement {
				if severed[v.Name] {
					continue
				}
				pb, err := r.ApplyElementUsage(ns, v)
				if err != nil {
					return nil, err
				}
				merged = append(merged, pb...)
				continue
			}
			merged = append(merged, cloneNode(v))
		case *ast.DeleteOp:
			if strings.HasPrefix(v.Target, "@") {
				continue
			}
			var err error
			merged, err = deleteElementTarget(merged, v, base)
			if err != nil {
				return nil, err
			}
		case *ast.InsertOp:
			var err error
			merged, err = applyInsert(merged, v, base)
			if err != nil {
				return nil, err
			}
		default:
			merged = append(merged, cloneNode(n))
		}
	}

	r.elementMemo[key] = merged
	return cloneNodes(merged), nil
}

// ApplyElementUsage resolves an element usage including its override
// block: specialization operations run in source order against the
// effective body.
func (r *Resolver) ApplyElementUsage(ns string, u *ast.Usage) ([]ast.Node, error) {
	scope := ns
	if u.From != "" {
		scope = u.From
	}
	body, err := r.EffectiveElement(scope, u.Name)
	if err != nil {
		return nil, err
	}

	base := r.table.Config().IndexInitialCount()
	for _, o := range u.Overrides {
		switch v := o.(type) {
		case *ast.DeleteOp:
			body, err = deleteElementTarget(body, v, base)
			if err != nil {
				return nil, err
			}
		case *ast.InsertOp:
			body, err = applyInsert(body, v, base)
			if err != nil {
				return nil, err
			}
		case *ast.Property:
			if el := firstElement(body); el != nil {
				setProperty(el, v)
			}
		case *ast.Style:
			if el := firstElement(body); el != nil {
				mergeStyle(el, v)
			}
		default:
			body = append(body, cloneNode(o))
		}
	}
	return body, nil
}

// VarValue resolves one key of a var template or custom group.
func (r *Resolver) VarValue(ns, name, key string) (ast.Expr, error) {
	group, err := r.varGroup(ns, name)
	if err != nil {
		return nil, err
	}
	expr, ok := group[key]
	if !ok {
		return nil, fmt.Errorf("var %s(%s): %w", name, key, ErrUndefinedReference)
	}
	return expr, nil
}

func (r *Resolver) varGroup(ns, name string) (map[string]ast.Expr, error) {
	memoKey := "var|" + symbol.Qualify(ns, name)
	if memo, ok := r.varMemo[memoKey]; ok {
		return memo, nil
	}
	if r.visiting[memoKey] {
		return nil, fmt.Errorf("var %q: %w", name, ErrCyclicInheritance)
	}
	r.visiting[memoKey] = true
	defer delete(r.visiting, memoKey)

	var inherits []string
	var body []ast.Node
	if c, ok := r.table.VarCustom(ns, name); ok {
		inherits, body = c.Inherits, c.Body
	} else if t, ok := r.table.VarTemplate(ns, name); ok {
		inherits, body = t.Inherits, t.Body
	} else {
		return nil, fmt.Errorf("var %q: %w", name, ErrUndefinedReference)
	}

	group := make(map[string]ast.Expr)
	for _, parent := range inherits {
		pg, err := r.varGroup(ns, parent)
		if err != nil {
			return nil, err
		}
		for k, v := range pg {
			group[k] = v
		}
	}
	for _, n := range body {
		if p, ok := n.(*ast.Property); ok {
			group[p.Name] = p.Value
		}
	}

	r.varMemo[memoKey] = group
	return group, nil
}
