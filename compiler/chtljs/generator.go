// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package chtljs

import (
	"fmt"
	"strings"
)

// Lowerer extends Extension with the actual lowering of a registered
// keyword block. The CJMOD registry implements it.
type Lowerer interface {
	Extension
	Lower(keyword, body string) (string, error)
}

// Generator lowers parsed script fragments to plain JavaScript.
//
// One Generator serves a whole compilation: it tracks which runtime
// helpers the lowered code needs, so the driver can prepend Runtime()
// exactly once to the final JS buffer.
type Generator struct {
	ext    Lowerer
	parser *Parser
	needed map[string]bool
}

// NewGenerator creates a Generator; ext may be nil.
func NewGenerator(ext Lowerer) *Generator {
	return &Generator{
		ext:    ext,
		parser: NewParser(ext),
		needed: make(map[string]bool),
	}
}

// Generate lowers one script fragment.
func (g *Generator) Generate(src string) (string, error) {
	nodes, err := g.parser.Parse(src)
	if err != nil {
		return "", err
	}
	return g.emit(nodes)
}

// Runtime returns the helper prelude for every construct the generator
// lowered so far. Empty when no helper is needed.
func (g *Generator) Runtime() string {
	var sb strings.Builder
	for _, h := range []struct {
		name string
		code string
	}{
		{"vir", runtimeVir},
		{"animate", runtimeAnimate},
		{"router", runtimeRouter},
		{"fileloader", runtimeFileLoader},
	} {
		if g.needed[h.name] {
			sb.WriteString(h.code)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func (g *Generator) emit(nodes []Node) (string, error) {
	var sb strings.Builder
	for _, n := range nodes {
		switch v := n.(type) {
		case Raw:
			sb.WriteString(v.Text)
		case Selector:
			sb.WriteString(lowerSelector(v))
		case Listen:
			out, err := g.lowerListen(v)
			if err != nil {
				return "", err
			}
			sb.WriteString(out)
		case Delegate:
			out, err := g.lowerDelegate(v)
			if err != nil {
				return "", err
			}
			sb.WriteString(out)
		case Animate:
			out, err := g.lowerAnimate(v)
			if err != nil {
				return "", err
			}
			sb.WriteString(out)
		case Router:
			out, err := g.lowerRouter(v)
			if err != nil {
				return "", err
			}
			sb.WriteString(out)
		case Vir:
			out, err := g.lowerVir(v)
			if err != nil {
				return "", err
			}
			sb.WriteString(out)
		case FileLoader:
			out, err := g.lowerFileLoader(v)
			if err != nil {
				return "", err
			}
			sb.WriteString(out)
		case Util:
			out, err := g.lowerUtil(v)
			if err != nil {
				return "", err
			}
			sb.WriteString(out)
		case ExtCall:
			if g.ext == nil {
				return "", fmt.Errorf("extension %q: no registry", v.Keyword)
			}
			out, err := g.ext.Lower(v.Keyword, v.Body)
			if err != nil {
				return "", err
			}
			sb.WriteString(out)
		}
	}
	return sb.String(), nil
}

// lowerValue lowers nested constructs inside an entry value.
func (g *Generator) lowerValue(value string) (string, error) {
	return g.Generate(value)
}

// lowerSelector lowers an enhanced selector to its DOM query.
func lowerSelector(sel Selector) string {
	if sel.Index >= 0 {
		return fmt.Sprintf("document.querySelectorAll(%s)[%d]", jsQuote(sel.Css), sel.Index)
	}
	if id, ok := strings.CutPrefix(sel.Css, "#"); ok && isSimpleName(id) {
		return fmt.Sprintf("document.getElementById(%s)", jsQuote(id))
	}
	return fmt.Sprintf("document.querySelector(%s)", jsQuote(sel.Css))
}

func (g *Generator) targetText(n Node) (string, error) {
	switch v := n.(type) {
	case Selector:
		return lowerSelector(v), nil
	case Raw:
		return strings.TrimSpace(v.Text), nil
	default:
		return "", fmt.Errorf("chain target %T: %w", n, ErrMissingChainTarget)
	}
}

func (g *Generator) lowerListen(l Listen) (string, error) {
	target, err := g.targetText(l.Target)
	if err != nil {
		return "", err
	}
	var lines []string
	for _, e := range l.Entries {
		handler, err := g.lowerValue(e.Value)
		if err != nil {
			return "", err
		}
		lines = append(lines, fmt.Sprintf("%s.addEventListener(%s, %s);", target, jsQuote(e.Key), handler))
	}
	return strings.Join(lines, "\n"), nil
}

func (g *Generator) lowerDelegate(d Delegate) (string, error) {
	parent, err := g.targetText(d.Parent)
	if err != nil {
		return "", err
	}
	sel, err := g.delegateTarget(d.Target)
	if err != nil {
		return "", err
	}
	var lines []string
	for _, e := range d.Entries {
		handler, err := g.lowerValue(e.Value)
		if err != nil {
			return "", err
		}
		lines = append(lines, fmt.Sprintf(
			"%s.addEventListener(%s, function (event) {\n\tif (event.target.matches(%s)) {\n\t\t(%s)(event);\n\t}\n});",
			parent, jsQuote(e.Key), sel, handler))
	}
	return strings.Join(lines, "\n"), nil
}

// delegateTarget turns the target entry value into a selector-string
// expression: enhanced selectors contribute their css text, everything
// else passes through as an expression.
func (g *Generator) delegateTarget(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if strings.HasPrefix(trimmed, "{{") && strings.HasSuffix(trimmed, "}}") {
		sel, _, err := parseSelector(trimmed, 0)
		if err != nil {
			return "", err
		}
		return jsQuote(sel.Css), nil
	}
	return g.lowerValue(trimmed)
}

// quotedOptionKeys lists the option keys whose bare-word values become
// strings ("easing: ease-in").
var quotedOptionKeys = map[string]bool{
	"easing":    true,
	"direction": true,
	"mode":      true,
}

func (g *Generator) lowerAnimate(a Animate) (string, error) {
	g.needed["animate"] = true
	obj, err := g.lowerOptionObject(a.Entries, nil)
	if err != nil {
		return "", err
	}
	return "__chtlAnimate(" + obj + ")", nil
}

func (g *Generator) lowerRouter(r Router) (string, error) {
	g.needed["router"] = true
	var opts, routes []string
	for _, e := range r.Entries {
		value, err := g.lowerValue(e.Value)
		if err != nil {
			return "", err
		}
		if strings.HasPrefix(e.Key, "/") {
			routes = append(routes, fmt.Sprintf("%s: %s", jsQuote(e.Key), value))
			continue
		}
		if quotedOptionKeys[e.Key] && isSimpleName(value) {
			value = jsQuote(value)
		}
		opts = append(opts, fmt.Sprintf("%s: %s", e.Key, value))
	}
	opts = append(opts, "routes: {"+strings.Join(routes, ", ")+"}")
	return "__chtlRouter({" + strings.Join(opts, ", ") + "})", nil
}

func (g *Generator) lowerVir(v Vir) (string, error) {
	g.needed["vir"] = true
	body, err := g.lowerValue(v.Body)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("const %s = __chtlVir(%s, %s);", v.Name, jsQuote(v.Name), body), nil
}

func (g *Generator) lowerFileLoader(f FileLoader) (string, error) {
	g.needed["fileloader"] = true
	var items []string
	for _, e := range f.Entries {
		value, err := g.lowerValue(e.Value)
		if err != nil {
			return "", err
		}
		items = append(items, value)
	}
	return "__chtlFileLoader([" + strings.Join(items, ", ") + "])", nil
}

func (g *Generator) lowerUtil(u Util) (string, error) {
	cond, err := g.lowerValue(u.Cond)
	if err != nil {
		return "", err
	}
	then, err := g.lowerValue(u.Then)
	if err != nil {
		return "", err
	}
	els, err := g.lowerValue(u.Else)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("if (%s) {%s} else {%s}", cond, then, els), nil
}

// lowerOptionObject rebuilds an option object literal, lowering values
// and quoting bare words for the option keys that take names.
func (g *Generator) lowerOptionObject(entries []Entry, extra []string) (string, error) {
	parts := append([]string(nil), extra...)
	for _, e := range entries {
		value, err := g.lowerValue(e.Value)
		if err != nil {
			return "", err
		}
		if quotedOptionKeys[e.Key] && isSimpleName(value) {
			value = jsQuote(value)
		}
		key := e.Key
		if !isSimpleName(key) {
			key = jsQuote(key)
		}
		parts = append(parts, fmt.Sprintf("%s: %s", key, value))
	}
	return "{" + strings.Join(parts, ", ") + "}", nil
}

func jsQuote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return "'" + s + "'"
}

func isSimpleName(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !isJSWord(c) && c != '-' {
			return false
		}
	}
	return true
}
