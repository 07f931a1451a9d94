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

import "github.com/AleutianAI/chtl/compiler/ast"

// cloneNodes deep-copies a node list so each usage of a template gets its
// own body. Expressions are immutable after parsing and stay shared;
// overrides replace the expression pointer, never mutate it.
func cloneNodes(nodes []ast.Node) []ast.Node {
	if nodes == nil {
		return nil
	}
	out := make([]ast.Node, len(nodes))
	for i, n := range nodes {
		out[i] = cloneNode(n)
	}
	return out
}

func cloneNode(n ast.Node) ast.Node {
	switch v := n.(type) {
	case *ast.Element:
		c := *v
		c.Children = cloneNodes(v.Children)
		return &c
	case *ast.Property:
		c := *v
		return &c
	case *ast.Text:
		c := *v
		return &c
	case *ast.Comment:
		c := *v
		return &c
	case *ast.Style:
		c := *v
		c.Children = cloneNodes(v.Children)
		return &c
	case *ast.Rule:
		c := *v
		c.Children = cloneNodes(v.Children)
		return &c
	case *ast.Script:
		c := *v
		return &c
	case *ast.Usage:
		c := *v
		c.Overrides = cloneNodes(v.Overrides)
		return &c
	case *ast.DeleteOp:
		c := *v
		return &c
	case *ast.InsertOp:
		c := *v
		c.Body = cloneNodes(v.Body)
		return &c
	case *ast.Constraint:
		c := *v
		c.Forbidden = append([]string(nil), v.Forbidden...)
		return &c
	case *ast.Origin:
		c := *v
		return &c
	default:
		// Remaining node kinds are definitions and directives that never
		// appear inside a template body.
		return n
	}
}
