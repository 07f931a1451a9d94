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

// CheckConstraints validates every element's constraint declarations
// against its children. It runs after specialization, so inserted
// content is checked too. All violations are returned, not just the
// first.
func (r *Resolver) CheckConstraints(nodes []ast.Node) []error {
	var errs []error
	for _, n := range nodes {
		el, ok := n.(*ast.Element)
		if !ok {
			continue
		}
		errs = append(errs, r.checkElement(el)...)
		errs = append(errs, r.CheckConstraints(el.Children)...)
	}
	return errs
}

func (r *Resolver) checkElement(el *ast.Element) []error {
	var forbidden []string
	for _, c := range el.Children {
		if con, ok := c.(*ast.Constraint); ok {
			forbidden = append(forbidden, con.Forbidden...)
		}
	}
	if len(forbidden) == 0 {
		return nil
	}

	var errs []error
	for _, c := range el.Children {
		for _, f := range forbidden {
			if violates(c, f) {
				errs = append(errs, fmt.Errorf("element %q forbids %q: %w", el.Tag, f, ErrConstraintViolation))
			}
		}
	}
	return errs
}

// violates reports whether a child node matches a forbidden entry: a tag
// name forbids child elements with that tag, "@Kind" forbids usages of
// that kind.
func violates(n ast.Node, forbidden string) bool {
	if kind, ok := strings.CutPrefix(forbidden, "@"); ok {
		u, isUsage := n.(*ast.Usage)
		if !isUsage {
			if o, isOrigin := n.(*ast.Origin); isOrigin {
				return o.Type == kind
			}
			return false
		}
		return u.Kind.String() == kind
	}
	el, ok := n.(*ast.Element)
	return ok && el.Tag == forbidden
}
