// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package chtljs lowers CHTL-JS script fragments to plain JavaScript.
//
// CHTL-JS is JavaScript extended with enhanced selectors, the '->' chain
// operator, listener/delegate blocks, animation and router blocks,
// virtual objects, file loaders and registry-driven extension forms. The
// parser builds a shallow node list: extended constructs become typed
// nodes, everything between them stays opaque raw runs re-emitted
// verbatim.
package chtljs

import (
	"fmt"
	"strconv"
	"strings"
)

// Node is one piece of a parsed script: a raw run or one construct.
type Node interface{ isNode() }

// Raw is plain JavaScript emitted verbatim.
type Raw struct{ Text string }

// Selector is an enhanced selector {{css}}, {{css[i]}} or {{#id}}.
type Selector struct {
	Css   string
	Index int // -1 when absent
}

// Listen is target->listen { event: handler, … }.
type Listen struct {
	Target  Node // Selector or Raw expression
	Entries []Entry
}

// Delegate is parent->delegate { target: sel, event: handler, … }.
type Delegate struct {
	Parent  Node
	Target  string // raw value text of the target entry
	Entries []Entry
}

// Animate is an animate { … } block.
type Animate struct{ Entries []Entry }

// Router is a router { … } block.
type Router struct{ Entries []Entry }

// Vir is "vir Name = { … }".
type Vir struct {
	Name string
	Body string // raw object literal text including braces
}

// FileLoader is a fileloader { … } block.
type FileLoader struct{ Entries []Entry }

// Util is "util cond -> change { … } -> then { … }".
type Util struct {
	Cond string
	Then string // change body: runs when cond holds
	Else string // then body: runs otherwise
}

// ExtCall is a registry-driven extension form: keyword { … }.
type ExtCall struct {
	Keyword string
	Body    string // raw block text including braces
}

func (Raw) isNode()        {}
func (Selector) isNode()   {}
func (Listen) isNode()     {}
func (Delegate) isNode()   {}
func (Animate) isNode()    {}
func (Router) isNode()     {}
func (Vir) isNode()        {}
func (FileLoader) isNode() {}
func (Util) isNode()       {}
func (ExtCall) isNode()    {}

// Entry is one key/value pair of a construct block. Values are raw JS
// runs; the generator lowers nested constructs inside them recursively.
type Entry struct {
	Key   string
	Value string
}

// Extension resolves registry-driven keywords. The CJMOD registry
// implements it.
type Extension interface {
	// IsKeyword reports whether the word opens an extension block.
	IsKeyword(word string) bool
}

// Parser splits a script fragment into raw runs and construct nodes.
type Parser struct {
	ext Extension
}

// NewParser creates a Parser; ext may be nil when no extensions are
// registered.
func NewParser(ext Extension) *Parser {
	return &Parser{ext: ext}
}

// Parse builds the shallow node list of one script fragment.
func (p *Parser) Parse(src string) ([]Node, error) {
	var nodes []Node
	rawStart := 0
	i := 0

	flush := func(end int) {
		if end > rawStart {
			nodes = append(nodes, Raw{Text: src[rawStart:end]})
		}
	}

	for i < len(src) {
		if j, skipped := skipOpaque(src, i); skipped {
			i = j
			continue
		}

		// Enhanced selector, possibly heading a listen/delegate chain.
		if strings.HasPrefix(src[i:], "{{") {
			sel, end, err := parseSelector(src, i)
			if err != nil {
				return nil, err
			}
			flush(i)
			node, next, err := p.parseChain(src, end, sel)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, node)
			i, rawStart = next, next
			continue
		}

		// '->' outside a recognised chain lowers to '.'.
		if strings.HasPrefix(src[i:], "->") {
			flush(i)
			node, next, err := p.parseArrow(src, i, &nodes)
			if err != nil {
				return nil, err
			}
			if node != nil {
				nodes = append(nodes, node)
			}
			i, rawStart = next, next
			continue
		}

		word := wordAt(src, i)
		if word != "" {
			node, next, handled, err := p.parseKeyword(src, i, word)
			if err != nil {
				return nil, err
			}
			if handled {
				flush(i)
				nodes = append(nodes, node)
				i, rawStart = next, next
				continue
			}
			i += len(word)
			continue
		}
		i++
	}
	flush(len(src))
	return nodes, nil
}

// parseSelector parses "{{css}}" or "{{css[i]}}" starting at i.
func parseSelector(src string, i int) (Selector, int, error) {
	end := strings.Index(src[i+2:], "}}")
	if end < 0 {
		return Selector{}, 0, fmt.Errorf("offset %d: %w", i, ErrUnterminatedSelector)
	}
	inner := strings.TrimSpace(src[i+2 : i+2+end])
	sel := Selector{Css: inner, Index: -1}
	if ob := strings.LastIndexByte(inner, '['); ob >= 0 && strings.HasSuffix(inner, "]") {
		if idx, err := strconv.Atoi(strings.TrimSpace(inner[ob+1 : len(inner)-1])); err == nil {
			sel.Css = strings.TrimSpace(inner[:ob])
			sel.Index = idx
		}
	}
	return sel, i + 2 + end + 2, nil
}

// parseChain checks whether a selector heads a listen/delegate chain.
func (p *Parser) parseChain(src string, i int, target Node) (Node, int, error) {
	j := skipWS(src, i)
	if !strings.HasPrefix(src[j:], "->") {
		return target, i, nil
	}
	k := skipWS(src, j+2)
	word := wordAt(src, k)
	switch word {
	case "listen":
		entries, end, err := p.parseEntryBlock(src, k+len(word))
		if err != nil {
			return nil, 0, err
		}
		return Listen{Target: target, Entries: entries}, end, nil
	case "delegate":
		entries, end, err := p.parseEntryBlock(src, k+len(word))
		if err != nil {
			return nil, 0, err
		}
		d := Delegate{Parent: target}
		for _, e := range entries {
			if e.Key == "target" {
				d.Target = e.Value
				continue
			}
			d.Entries = append(d.Entries, e)
		}
		return d, end, nil
	default:
		// A plain chain: the arrow lowers to '.' and parsing continues
		// after it.
		if sel, ok := target.(Selector); ok {
			return Raw{Text: lowerSelector(sel) + "."}, k, nil
		}
		return Raw{Text: "."}, k, nil
	}
}

// parseArrow handles "expr->listen {…}" and bare "->". The preceding raw
// run is inspected for the chain target expression.
func (p *Parser) parseArrow(src string, i int, nodes *[]Node) (Node, int, error) {
	k := skipWS(src, i+2)
	word := wordAt(src, k)
	if word != "listen" && word != "delegate" {
		return Raw{Text: "."}, i + 2, nil
	}

	// Pull the target expression off the tail of the last raw run.
	target := ""
	if n := len(*nodes); n > 0 {
		if raw, ok := (*nodes)[n-1].(Raw); ok {
			text := raw.Text
			cut := len(text)
			for cut > 0 {
				c := text[cut-1]
				if isJSWord(c) || c == '.' || c == ')' || c == ']' {
					cut--
					continue
				}
				break
			}
			target = text[cut:]
			(*nodes)[n-1] = Raw{Text: text[:cut]}
		}
	}
	if target == "" {
		return nil, 0, fmt.Errorf("offset %d: %w", i, ErrMissingChainTarget)
	}

	entries, end, err := p.parseEntryBlock(src, k+len(word))
	if err != nil {
		return nil, 0, err
	}
	if word == "listen" {
		return Listen{Target: Raw{Text: target}, Entries: entries}, end, nil
	}
	d := Delegate{Parent: Raw{Text: target}}
	for _, e := range entries {
		if e.Key == "target" {
			d.Target = e.Value
			continue
		}
		d.Entries = append(d.Entries, e)
	}
	return d, end, nil
}

// parseKeyword recognises block-keyword constructs at a word boundary.
func (p *Parser) parseKeyword(src string, i int, word string) (Node, int, bool, error) {
	switch word {
	case "animate":
		entries, end, err := p.parseEntryBlock(src, i+len(word))
		if err != nil {
			return nil, 0, false, err
		}
		return Animate{Entries: entries}, end, true, nil

	case "router":
		entries, end, err := p.parseEntryBlock(src, i+len(word))
		if err != nil {
			return nil, 0, false, err
		}
		return Router{Entries: entries}, end, true, nil

	case "fileloader":
		entries, end, err := p.parseEntryBlock(src, i+len(word))
		if err != nil {
			return nil, 0, false, err
		}
		return FileLoader{Entries: entries}, end, true, nil

	case "vir":
		return p.parseVir(src, i)

	case "util":
		return p.parseUtil(src, i)

	default:
		if p.ext != nil && p.ext.IsKeyword(word) {
			j := skipWS(src, i+len(word))
			if j < len(src) && src[j] == '{' {
				close := matchBrace(src, j)
				if close < 0 {
					return nil, 0, false, fmt.Errorf("%s block: %w", word, ErrUnterminatedBlock)
				}
				return ExtCall{Keyword: word, Body: src[j : close+1]}, close + 1, true, nil
			}
		}
		return nil, 0, false, nil
	}
}

// parseVir parses "vir Name = { … }".
func (p *Parser) parseVir(src string, i int) (Node, int, bool, error) {
	j := skipWS(src, i+3)
	name := wordAt(src, j)
	if name == "" {
		return nil, 0, false, nil
	}
	j = skipWS(src, j+len(name))
	if j >= len(src) || src[j] != '=' {
		return nil, 0, false, nil
	}
	j = skipWS(src, j+1)
	if j >= len(src) || src[j] != '{' {
		return nil, 0, false, nil
	}
	close := matchBrace(src, j)
	if close < 0 {
		return nil, 0, false, fmt.Errorf("vir %s: %w", name, ErrUnterminatedBlock)
	}
	end := close + 1
	if k := skipWS(src, end); k < len(src) && src[k] == ';' {
		end = k + 1
	}
	return Vir{Name: name, Body: src[j : close+1]}, end, true, nil
}

// parseUtil parses "util cond -> change { … } -> then { … }".
func (p *Parser) parseUtil(src string, i int) (Node, int, bool, error) {
	j := i + 4
	arrow := strings.Index(src[j:], "->")
	if arrow < 0 {
		return nil, 0, false, nil
	}
	cond := strings.TrimSpace(src[j : j+arrow])
	k := skipWS(src, j+arrow+2)
	if wordAt(src, k) != "change" {
		return nil, 0, false, nil
	}
	k = skipWS(src, k+len("change"))
	if k >= len(src) || src[k] != '{' {
		return nil, 0, false, nil
	}
	closeChange := matchBrace(src, k)
	if closeChange < 0 {
		return nil, 0, false, fmt.Errorf("util change: %w", ErrUnterminatedBlock)
	}
	thenBody := src[k+1 : closeChange]

	m := skipWS(src, closeChange+1)
	if !strings.HasPrefix(src[m:], "->") {
		return nil, 0, false, fmt.Errorf("util: %w", ErrMalformedUtil)
	}
	m = skipWS(src, m+2)
	if wordAt(src, m) != "then" {
		return nil, 0, false, fmt.Errorf("util: %w", ErrMalformedUtil)
	}
	m = skipWS(src, m+len("then"))
	if m >= len(src) || src[m] != '{' {
		return nil, 0, false, fmt.Errorf("util: %w", ErrMalformedUtil)
	}
	closeThen := matchBrace(src, m)
	if closeThen < 0 {
		return nil, 0, false, fmt.Errorf("util then: %w", ErrUnterminatedBlock)
	}
	elseBody := src[m+1 : closeThen]

	return Util{Cond: cond, Then: thenBody, Else: elseBody}, closeThen + 1, true, nil
}

// parseEntryBlock parses "{ key: value, … }" after optional whitespace.
func (p *Parser) parseEntryBlock(src string, i int) ([]Entry, int, error) {
	i = skipWS(src, i)
	if i >= len(src) || src[i] != '{' {
		return nil, 0, fmt.Errorf("offset %d: %w", i, ErrExpectedBlock)
	}
	close := matchBrace(src, i)
	if close < 0 {
		return nil, 0, fmt.Errorf("offset %d: %w", i, ErrUnterminatedBlock)
	}
	entries, err := SplitEntries(src[i+1 : close])
	if err != nil {
		return nil, 0, err
	}
	return entries, close + 1, nil
}

// SplitEntries splits an object-literal body into key/value pairs at
// depth-zero commas. Keys may be identifiers, strings or bracketed forms
// like Void<A>.
func SplitEntries(body string) ([]Entry, error) {
	var entries []Entry
	i := 0
	for i < len(body) {
		i = skipWS(body, i)
		if i >= len(body) {
			break
		}

		// Key runs to the first depth-zero ':'.
		keyStart := i
		depth := 0
		for i < len(body) {
			if j, skipped := skipOpaque(body, i); skipped {
				i = j
				continue
			}
			c := body[i]
			if depth == 0 && c == ':' {
				break
			}
			switch c {
			case '{', '(', '[':
				depth++
			case '}', ')', ']':
				depth--
			}
			i++
		}
		if i >= len(body) {
			return nil, ErrMalformedEntry
		}
		key := strings.TrimSpace(body[keyStart:i])
		key = strings.Trim(key, `"'`)
		i++ // ':'

		// Value runs to the next depth-zero comma.
		valStart := i
		depth = 0
		for i < len(body) {
			if j, skipped := skipOpaque(body, i); skipped {
				i = j
				continue
			}
			c := body[i]
			if depth == 0 && c == ',' {
				break
			}
			switch c {
			case '{', '(', '[':
				depth++
			case '}', ')', ']':
				depth--
			}
			i++
		}
		entries = append(entries, Entry{Key: key, Value: strings.TrimSpace(body[valStart:i])})
		if i < len(body) {
			i++ // ','
		}
	}
	return entries, nil
}
