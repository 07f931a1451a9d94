// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package sema

import (
	"fmt"
	"strings"

	"github.com/AleutianAI/chtl/compiler/ast"
)

// deleteStyleProperty removes properties with the given name.
func deleteStyleProperty(nodes []ast.Node, name string) []ast.Node {
	out := nodes[:0]
	for _, n := range nodes {
		if p, ok := n.(*ast.Property); ok && p.Name == name {
			continue
		}
		out = append(out, n)
	}
	return out
}

// overrideProperty replaces an existing property in place or appends.
func overrideProperty(nodes []ast.Node, prop *ast.Property) []ast.Node {
	for i, n := range nodes {
		if p, ok := n.(*ast.Property); ok && p.Name == prop.Name {
			nodes[i] = cloneNode(prop)
			return nodes
		}
	}
	return append(nodes, cloneNode(prop))
}

// dedupeProperties keeps the last value of each property name at its last
// position, matching CSS cascade expectations for merged bodies.
func dedupeProperties(nodes []ast.Node) []ast.Node {
	last := make(map[string]int)
	for i, n := range nodes {
		if p, ok := n.(*ast.Property); ok {
			last[p.Name] = i
		}
	}
	out := nodes[:0]
	for i, n := range nodes {
		if p, ok := n.(*ast.Property); ok && last[p.Name] != i {
			continue
		}
		out = append(out, n)
	}
	return out
}

// matchesAnchor reports whether an element matches a specialization
// anchor: "#x" by id, ".x" by class, anything else by tag name.
func matchesAnchor(el *ast.Element, anchor string) bool {
	switch {
	case strings.HasPrefix(anchor, "#"):
		return propertyText(el, "id") == anchor[1:]
	case strings.HasPrefix(anchor, "."):
		for _, cls := range strings.Fields(propertyText(el, "class")) {
			if cls == anchor[1:] {
				return true
			}
		}
		return false
	default:
		return el.Tag == anchor
	}
}

// propertyText returns the literal string value of an element property.
func propertyText(el *ast.Element, name string) string {
	p := el.Property(name)
	if p == nil {
		return ""
	}
	if lit, ok := p.Value.(*ast.StringLit); ok {
		return lit.Raw
	}
	return ""
}

// firstElement returns the first element of a node list.
func firstElement(nodes []ast.Node) *ast.Element {
	for _, n := range nodes {
		if el, ok := n.(*ast.Element); ok {
			return el
		}
	}
	return nil
}

// setProperty replaces or appends a property on an element.
func setProperty(el *ast.Element, prop *ast.Property) {
	for i, c := range el.Children {
		if p, ok := c.(*ast.Property); ok && p.Name == prop.Name {
			el.Children[i] = cloneNode(prop)
			return
		}
	}
	el.Children = append(el.Children, cloneNode(prop))
}

// mergeStyle merges override style content into the element's local
// style block, creating one when absent.
func mergeStyle(el *ast.Element, st *ast.Style) {
	for _, c := range el.Children {
		if existing, ok := c.(*ast.Style); ok && existing.Placeholder == 0 {
			existing.Children = dedupeProperties(append(existing.Children, cloneNodes(st.Children)...))
			return
		}
	}
	el.Children = append(el.Children, cloneNode(st))
}

// anchorIndex finds the nth node matching the anchor. n counts from the
// configured index base; -1 means the first match.
func anchorIndex(nodes []ast.Node, anchor string, n, base int) (int, error) {
	count := base
	for i, node := range nodes {
		el, ok := node.(*ast.Element)
		if !ok || !matchesAnchor(el, anchor) {
			continue
		}
		if n < 0 || count == n {
			return i, nil
		}
		count++
	}
	return 0, fmt.Errorf("anchor %q: %w", anchor, ErrAnchorNotFound)
}

// deleteElementTarget removes the anchored element, or a property of the
// first element when no element matches the target.
func deleteElementTarget(nodes []ast.Node, op *ast.DeleteOp, base int) ([]ast.Node, error) {
	if i, err := anchorIndex(nodes, op.Target, op.Index, base); err == nil {
		return append(nodes[:i], nodes[i+1:]...), nil
	}
	// Fall back to property deletion on the node list itself (style-like
	// bodies) or on the first element.
	for i, n := range nodes {
		if p, ok := n.(*ast.Property); ok && p.Name == op.Target {
			return append(nodes[:i], nodes[i+1:]...), nil
		}
	}
	if el := firstElement(nodes); el != nil && el.Property(op.Target) != nil {
		out := el.Children[:0]
		for _, c := range el.Children {
			if p, ok := c.(*ast.Property); ok && p.Name == op.Target {
				continue
			}
			out = append(out, c)
		}
		el.Children = out
		return nodes, nil
	}
	return nil, fmt.Errorf("delete %q: %w", op.Target, ErrAnchorNotFound)
}

// applyInsert executes one insert operation against a node list.
func applyInsert(nodes []ast.Node, op *ast.InsertOp, base int) ([]ast.Node, error) {
	payload := cloneNodes(op.Body)
	switch op.Pos {
	case ast.InsertAtTop:
		return append(payload, nodes...), nil
	case ast.InsertAtBottom:
		return append(nodes, payload...), nil
	}

	i, err := anchorIndex(nodes, op.Anchor, op.Index, base)
	if err != nil {
		return nil, fmt.Errorf("insert: %w", err)
	}
	switch op.Pos {
	case ast.InsertBefore:
		out := make([]ast.Node, 0, len(nodes)+len(payload))
		out = append(out, nodes[:i]...)
		out = append(out, payload...)
		return append(out, nodes[i:]...), nil
	case ast.InsertAfter:
		out := make([]ast.Node, 0, len(nodes)+len(payload))
		out = append(out, nodes[:i+1]...)
		out = append(out, payload...)
		return append(out, nodes[i+1:]...), nil
	case ast.InsertReplace:
		out := make([]ast.Node, 0, len(nodes)-1+len(payload))
		out = append(out, nodes[:i]...)
		out = append(out, payload...)
		return append(out, nodes[i+1:]...), nil
	default:
		return nodes, nil
	}
}
