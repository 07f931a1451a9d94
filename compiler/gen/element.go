// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package gen

import (
	"fmt"
	"strings"

	"github.com/AleutianAI/chtl/compiler/ast"
	"github.com/AleutianAI/chtl/compiler/diag"
)

// attr is one emitted attribute, in source order.
type attr struct {
	name  string
	value string
}

// genElement emits one element and its subtree.
func (g *Generator) genElement(el *ast.Element) error {
	var attrs []attr
	var inline []string // style attribute entries "name:value;"
	var content []ast.Node

	type pendingRule struct {
		selector string
		children []ast.Node
	}
	var rules []pendingRule

	for _, c := range el.Children {
		switch v := c.(type) {
		case *ast.Property:
			attrs = append(attrs, attr{name: v.Name, value: g.evalText(v)})

		case *ast.Style:
			if v.Placeholder != 0 {
				if raw, ok := g.store.Lookup(v.Placeholder); ok {
					g.css.WriteString(strings.TrimSpace(raw) + "\n")
				}
				continue
			}
			styleNodes, err := g.expandStyleChildren(v.Children)
			if err != nil {
				return err
			}
			for _, sn := range styleNodes {
				switch sv := sn.(type) {
				case *ast.Property:
					inline = append(inline, fmt.Sprintf("%s:%s;", sv.Name, g.evalText(sv)))
				case *ast.Rule:
					rules = append(rules, pendingRule{selector: sv.Selector, children: sv.Children})
				}
			}

		case *ast.Constraint, *ast.DeleteOp, *ast.InsertOp:
			// Constraints were checked by the resolver; stray
			// specialization ops have nothing to act on here.

		default:
			content = append(content, c)
		}
	}

	// The effective selector carries nested rules: the id if present,
	// else the first class, else an auto-generated class.
	effective := ""
	if len(rules) > 0 {
		effective = g.effectiveSelector(el, &attrs)
	}
	for _, r := range rules {
		if err := g.genRule(effective, r.selector, r.children); err != nil {
			return err
		}
	}

	if len(inline) > 0 {
		attrs = append(attrs, attr{name: "style", value: strings.Join(inline, "")})
	}

	g.html.WriteString("<" + el.Tag)
	for _, a := range attrs {
		g.html.WriteString(fmt.Sprintf(` %s="%s"`, a.name, attrEscape(a.value)))
	}
	if voidElements[el.Tag] {
		g.html.WriteString(" />")
		return nil
	}
	g.html.WriteString(">")

	for _, c := range content {
		if err := g.genElementChild(c); err != nil {
			return err
		}
	}
	g.html.WriteString("</" + el.Tag + ">")
	return nil
}

func (g *Generator) genElementChild(n ast.Node) error {
	switch v := n.(type) {
	case *ast.Element:
		return g.genElement(v)
	case *ast.Text:
		g.html.WriteString(htmlEscape(v.Value))
		return nil
	case *ast.Comment:
		if v.Generator {
			g.html.WriteString("<!-- " + v.Text + " -->")
		}
		return nil
	case *ast.Script:
		return g.genScript(v)
	case *ast.Usage:
		switch v.Kind {
		case ast.DefElement:
			body, err := g.res.ApplyElementUsage(g.ns, v)
			if err != nil {
				g.diags.Errorf(diag.KindSemantic, v.Span(), "%v", err)
				return nil
			}
			for _, cerr := range g.res.CheckConstraints(body) {
				g.diags.Errorf(diag.KindSemantic, v.Span(), "%v", cerr)
			}
			for _, b := range body {
				if err := g.genElementChild(b); err != nil {
					return err
				}
			}
			return nil
		default:
			g.diags.Errorf(diag.KindSemantic, v.Span(), "@%s usage outside a style block", v.Kind)
			return nil
		}
	case *ast.Origin:
		return g.genOrigin(v)
	default:
		return nil
	}
}

// expandStyleChildren inlines style usages so the caller sees only
// properties and rules.
func (g *Generator) expandStyleChildren(nodes []ast.Node) ([]ast.Node, error) {
	var out []ast.Node
	for _, n := range nodes {
		u, ok := n.(*ast.Usage)
		if !ok {
			out = append(out, n)
			continue
		}
		if u.Kind != ast.DefStyle {
			g.diags.Errorf(diag.KindSemantic, u.Span(), "@%s usage inside a style block", u.Kind)
			continue
		}
		body, err := g.res.ApplyStyleUsage(g.ns, u)
		if err != nil {
			g.diags.Errorf(diag.KindSemantic, u.Span(), "%v", err)
			continue
		}
		out = append(out, body...)
	}
	return out, nil
}

// effectiveSelector returns the selector nested rules attach to, adding
// a class or id hook when the element has none and configuration allows.
func (g *Generator) effectiveSelector(el *ast.Element, attrs *[]attr) string {
	for _, a := range *attrs {
		if a.name == "id" && a.value != "" {
			return "#" + a.value
		}
	}
	for _, a := range *attrs {
		if a.name == "class" && a.value != "" {
			return "." + strings.Fields(a.value)[0]
		}
	}

	cfg := g.table.Config()
	switch {
	case !cfg.DisableStyleAutoAddClass():
		g.autoClassSeq++
		cls := fmt.Sprintf("chtl-%d", g.autoClassSeq)
		*attrs = append(*attrs, attr{name: "class", value: cls})
		return "." + cls
	case !cfg.DisableStyleAutoAddID():
		g.autoClassSeq++
		id := fmt.Sprintf("chtl-%d", g.autoClassSeq)
		*attrs = append(*attrs, attr{name: "id", value: id})
		return "#" + id
	default:
		return el.Tag
	}
}

// genRule emits one nested rule into the global CSS buffer. '&' splices
// the parent selector; a bare pseudo-selector appends to it; anything
// else joins with the descendant combinator.
func (g *Generator) genRule(parent, selector string, children []ast.Node) error {
	resolved := resolveSelector(parent, selector)
	if resolved == "" {
		g.diags.Errorf(diag.KindCodeGen, ast.Base{}.Loc, "empty selector")
		return nil
	}

	expanded, err := g.expandStyleChildren(children)
	if err != nil {
		return err
	}
	var props []string
	for _, n := range expanded {
		switch v := n.(type) {
		case *ast.Property:
			props = append(props, fmt.Sprintf("%s: %s;", v.Name, g.evalText(v)))
		case *ast.Rule:
			if err := g.genRule(resolved, v.Selector, v.Children); err != nil {
				return err
			}
		}
	}
	if len(props) > 0 {
		g.css.WriteString(resolved + " { " + strings.Join(props, " ") + " }\n")
	}
	return nil
}

func resolveSelector(parent, selector string) string {
	switch {
	case strings.Contains(selector, "&"):
		return strings.ReplaceAll(selector, "&", parent)
	case strings.HasPrefix(selector, ":"):
		return parent + selector
	case parent == "":
		return selector
	default:
		return parent + " " + selector
	}
}

// evalText evaluates a property value, poisoning only the offending
// property on evaluation errors: the value emits empty and the failure
// is logged as a diagnostic.
func (g *Generator) evalText(p *ast.Property) string {
	v, err := g.ev.Property(p)
	if err != nil {
		g.diags.Warnf(diag.KindEvaluation, p.Span(), "property %q: %v", p.Name, err)
		return ""
	}
	return v.Text()
}

func htmlEscape(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

func attrEscape(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	return s
}
