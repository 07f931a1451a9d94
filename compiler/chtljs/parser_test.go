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
	"errors"
	"testing"
)

func parseNodes(t *testing.T, src string) []Node {
	t.Helper()
	nodes, err := NewParser(nil).Parse(src)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	return nodes
}

func TestParse_SelectorForms(t *testing.T) {
	tests := []struct {
		src   string
		css   string
		index int
	}{
		{"{{#box}}", "#box", -1},
		{"{{.item}}", ".item", -1},
		{"{{ div span }}", "div span", -1},
		{"{{.item[2]}}", ".item", 2},
	}
	for _, tt := range tests {
		nodes := parseNodes(t, tt.src)
		if len(nodes) != 1 {
			t.Fatalf("parse(%q) = %d nodes", tt.src, len(nodes))
		}
		sel, ok := nodes[0].(Selector)
		if !ok {
			t.Fatalf("parse(%q) = %T", tt.src, nodes[0])
		}
		if sel.Css != tt.css || sel.Index != tt.index {
			t.Errorf("parse(%q) = %+v", tt.src, sel)
		}
	}
}

func TestParse_ListenChain(t *testing.T) {
	nodes := parseNodes(t, "{{#b}}->listen { click: f, keyup: g }")
	if len(nodes) != 1 {
		t.Fatalf("got %d nodes", len(nodes))
	}
	listen, ok := nodes[0].(Listen)
	if !ok {
		t.Fatalf("got %T", nodes[0])
	}
	if _, ok := listen.Target.(Selector); !ok {
		t.Errorf("target = %T", listen.Target)
	}
	if len(listen.Entries) != 2 || listen.Entries[0].Key != "click" || listen.Entries[1].Key != "keyup" {
		t.Errorf("entries = %+v", listen.Entries)
	}
}

func TestParse_DelegateSplitsTarget(t *testing.T) {
	nodes := parseNodes(t, "{{#list}}->delegate { target: {{.row}}, click: h }")
	d, ok := nodes[0].(Delegate)
	if !ok {
		t.Fatalf("got %T", nodes[0])
	}
	if d.Target != "{{.row}}" {
		t.Errorf("target = %q", d.Target)
	}
	if len(d.Entries) != 1 || d.Entries[0].Key != "click" {
		t.Errorf("entries = %+v", d.Entries)
	}
}

func TestParse_RawRunsPreserved(t *testing.T) {
	src := "let a = 1; "
	nodes := parseNodes(t, src+"{{#x}}")
	if len(nodes) != 2 {
		t.Fatalf("got %d nodes", len(nodes))
	}
	raw, ok := nodes[0].(Raw)
	if !ok || raw.Text != src {
		t.Errorf("raw = %#v", nodes[0])
	}
}

func TestParse_UnterminatedSelector(t *testing.T) {
	_, err := NewParser(nil).Parse("{{#x")
	if !errors.Is(err, ErrUnterminatedSelector) {
		t.Fatalf("expected ErrUnterminatedSelector, got %v", err)
	}
}

func TestParse_ArrowWithoutTarget(t *testing.T) {
	_, err := NewParser(nil).Parse("->listen { click: f }")
	if !errors.Is(err, ErrMissingChainTarget) {
		t.Fatalf("expected ErrMissingChainTarget, got %v", err)
	}
}

func TestSplitEntries_NestedValues(t *testing.T) {
	entries, err := SplitEntries(`a: {x: 1, y: [1, 2]}, b: "s, with comma", c: fn(1, 2)`)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries: %+v", len(entries), entries)
	}
	if entries[0].Value != "{x: 1, y: [1, 2]}" {
		t.Errorf("a = %q", entries[0].Value)
	}
	if entries[1].Value != `"s, with comma"` {
		t.Errorf("b = %q", entries[1].Value)
	}
	if entries[2].Value != "fn(1, 2)" {
		t.Errorf("c = %q", entries[2].Value)
	}
}

func TestParse_UtilNode(t *testing.T) {
	nodes := parseNodes(t, "util ok -> change { a(); } -> then { b(); }")
	u, ok := nodes[0].(Util)
	if !ok {
		t.Fatalf("got %T", nodes[0])
	}
	if u.Cond != "ok" || u.Then != " a(); " || u.Else != " b(); " {
		t.Errorf("util = %+v", u)
	}
}
