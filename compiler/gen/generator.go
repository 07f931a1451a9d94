// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package gen walks the resolved CHTL AST and emits the HTML, CSS and JS
// buffers.
//
// HTML comes from a preorder element walk. CSS uses two channels: local
// style properties become the owning element's style attribute, nested
// selector rules and global style blocks accumulate in the global CSS
// buffer. Script bodies are lowered by the CHTL-JS generator into the JS
// buffer. Raw placeholder spans substitute back byte-exact.
package gen

import (
	"log/slog"
	"strings"

	"github.com/AleutianAI/chtl/compiler/ast"
	"github.com/AleutianAI/chtl/compiler/chtljs"
	"github.com/AleutianAI/chtl/compiler/diag"
	"github.com/AleutianAI/chtl/compiler/eval"
	"github.com/AleutianAI/chtl/compiler/scanner"
	"github.com/AleutianAI/chtl/compiler/sema"
	"github.com/AleutianAI/chtl/compiler/symbol"
)

// voidElements is the HTML5 set that self-closes.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// Output carries the three emitted buffers of one document.
type Output struct {
	HTML string
	CSS  string
	JS   string
}

// Generator emits one document against a resolved symbol table.
type Generator struct {
	table *symbol.Table
	res   *sema.Resolver
	store *scanner.PlaceholderStore
	js    *chtljs.Generator
	diags *diag.Collector
	log   *slog.Logger

	ev *eval.Evaluator
	ns string

	html strings.Builder
	css  strings.Builder
	jsB  strings.Builder

	autoClassSeq int
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger used for debug output.
func WithLogger(log *slog.Logger) Option {
	return func(g *Generator) { g.log = log }
}

// New creates a Generator. The CHTL-JS generator is shared with the
// driver so runtime helpers accumulate across fragments.
func New(table *symbol.Table, res *sema.Resolver, store *scanner.PlaceholderStore,
	js *chtljs.Generator, diags *diag.Collector, opts ...Option) *Generator {
	g := &Generator{
		table: table,
		res:   res,
		store: store,
		js:    js,
		diags: diags,
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate walks the document and returns the three buffers.
func (g *Generator) Generate(doc *ast.Document, ns string) (Output, error) {
	g.ns = ns
	g.ev = eval.New(doc.Children, eval.WithVarLookup(func(name, key string) (ast.Expr, bool) {
		expr, err := g.res.VarValue(g.ns, name, key)
		if err != nil {
			return nil, false
		}
		return expr, true
	}))

	if err := g.genNodes(doc.Children); err != nil {
		return Output{}, err
	}
	return Output{HTML: g.html.String(), CSS: g.css.String(), JS: g.jsB.String()}, nil
}

func (g *Generator) genNodes(nodes []ast.Node) error {
	for _, n := range nodes {
		if err := g.genTopLevel(n); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) genTopLevel(n ast.Node) error {
	switch v := n.(type) {
	case *ast.Use:
		if v.Directive == "html5" {
			g.html.WriteString("<!DOCTYPE html>\n")
		}
		return nil

	case *ast.Element:
		return g.genElement(v)

	case *ast.Text:
		g.html.WriteString(htmlEscape(v.Value))
		return nil

	case *ast.Comment:
		if v.Generator {
			g.html.WriteString("<!-- " + v.Text + " -->\n")
		}
		return nil

	case *ast.Style:
		// Global style block: raw CSS passes through.
		if v.Placeholder != 0 {
			if raw, ok := g.store.Lookup(v.Placeholder); ok {
				g.css.WriteString(strings.TrimSpace(raw))
				g.css.WriteString("\n")
			}
		}
		return nil

	case *ast.Script:
		return g.genScript(v)

	case *ast.Namespace:
		prev := g.ns
		g.ns = symbol.Qualify(prev, v.Name)
		err := g.genNodes(v.Children)
		g.ns = prev
		return err

	case *ast.Usage:
		if v.Kind == ast.DefElement {
			body, err := g.res.ApplyElementUsage(g.ns, v)
			if err != nil {
				g.diags.Errorf(diag.KindSemantic, v.Span(), "%v", err)
				return nil
			}
			for _, cerr := range g.res.CheckConstraints(body) {
				g.diags.Errorf(diag.KindSemantic, v.Span(), "%v", cerr)
			}
			return g.genNodes(body)
		}
		g.diags.Errorf(diag.KindSemantic, v.Span(), "@%s usage outside an element", v.Kind)
		return nil

	case *ast.Origin:
		return g.genOrigin(v)

	case *ast.Template, *ast.Custom, *ast.Import, *ast.Configuration,
		*ast.Info, *ast.Export, *ast.Constraint:
		// Declarations were registered before generation.
		return nil

	default:
		return nil
	}
}

// genOrigin emits a raw snippet into the buffer its type names. Named
// references resolve through the symbol table.
func (g *Generator) genOrigin(o *ast.Origin) error {
	placeholder := o.Placeholder
	typ := o.Type
	if placeholder == 0 {
		rec, ok := g.table.Origin(g.ns, o.Name)
		if !ok {
			g.diags.Errorf(diag.KindSemantic, o.Span(), "origin %q is not defined", o.Name)
			return nil
		}
		placeholder = rec.Placeholder
		typ = rec.Type
	} else if o.Name != "" {
		// A named definition emits nothing where it is declared.
		return nil
	}

	raw, ok := g.store.Lookup(placeholder)
	if !ok {
		g.diags.Errorf(diag.KindCodeGen, o.Span(), "origin %q lost its raw body", o.Name)
		return nil
	}
	switch typ {
	case "Style", "CSS", "Css":
		g.css.WriteString(strings.TrimSpace(raw) + "\n")
	case "JavaScript", "Js":
		g.jsB.WriteString(strings.TrimSpace(raw) + "\n")
	default:
		g.html.WriteString(strings.TrimSpace(raw))
	}
	return nil
}

func (g *Generator) genScript(s *ast.Script) error {
	raw, ok := g.store.Lookup(s.Placeholder)
	if !ok {
		return nil
	}
	lowered, err := g.js.Generate(raw)
	if err != nil {
		g.diags.Errorf(diag.KindSyntax, s.Span(), "script: %v", err)
		return nil
	}
	g.jsB.WriteString(strings.TrimSpace(lowered))
	g.jsB.WriteString("\n")
	return nil
}
