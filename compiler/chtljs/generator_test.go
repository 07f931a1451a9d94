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
	"strings"
	"testing"
)

func gen(t *testing.T, src string) string {
	t.Helper()
	g := NewGenerator(nil)
	out, err := g.Generate(src)
	if err != nil {
		t.Fatalf("unexpected generate error: %v", err)
	}
	return out
}

func TestGenerate_PlainJSUntouched(t *testing.T) {
	src := "const x = 1;\nfunction f(a, b) { return a - b; }\n"
	if got := gen(t, src); got != src {
		t.Errorf("plain JS must pass through:\n got %q\nwant %q", got, src)
	}
}

func TestGenerate_EnhancedSelectors(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"{{#box}}", "document.getElementById('box')"},
		{"{{.item}}", "document.querySelector('.item')"},
		{"{{div span}}", "document.querySelector('div span')"},
		{"{{.item[2]}}", "document.querySelectorAll('.item')[2]"},
	}
	for _, tt := range tests {
		if got := gen(t, tt.src); got != tt.want {
			t.Errorf("gen(%q) = %q, want %q", tt.src, got, tt.want)
		}
	}
}

func TestGenerate_SelectorInCommentIgnored(t *testing.T) {
	src := "// {{#box}}\n/* {{.item}} */\nlet x = 1;"
	got := gen(t, src)
	if strings.Contains(got, "getElementById") || strings.Contains(got, "querySelector") {
		t.Errorf("selectors inside comments must not lower: %q", got)
	}
}

func TestGenerate_SelectorInStringIgnored(t *testing.T) {
	src := `let s = "{{#box}}";`
	if got := gen(t, src); got != src {
		t.Errorf("selectors inside strings must not lower: %q", got)
	}
}

func TestGenerate_ListenBlock(t *testing.T) {
	got := gen(t, "{{#b}}->listen { click: () => x() }")
	want := "document.getElementById('b').addEventListener('click', () => x());"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestGenerate_ListenMultipleEvents(t *testing.T) {
	got := gen(t, "{{#b}}->listen { click: f, mouseover: g }")
	if !strings.Contains(got, "addEventListener('click', f);") ||
		!strings.Contains(got, "addEventListener('mouseover', g);") {
		t.Errorf("got %q", got)
	}
}

func TestGenerate_ListenOnIdentifier(t *testing.T) {
	got := gen(t, "const btn = {{#b}};\nbtn->listen { click: f }")
	if !strings.Contains(got, "btn.addEventListener('click', f);") {
		t.Errorf("got %q", got)
	}
}

func TestGenerate_DelegateBlock(t *testing.T) {
	got := gen(t, "{{#list}}->delegate { target: {{.item}}, click: onItem }")
	if !strings.Contains(got, "document.getElementById('list').addEventListener('click'") {
		t.Errorf("missing parent listener: %q", got)
	}
	if !strings.Contains(got, "event.target.matches('.item')") {
		t.Errorf("missing target filter: %q", got)
	}
	if !strings.Contains(got, "(onItem)(event)") {
		t.Errorf("missing handler call: %q", got)
	}
}

func TestGenerate_ArrowBecomesDot(t *testing.T) {
	got := gen(t, "{{#box}}->textContent = 'hi';")
	want := "document.getElementById('box').textContent = 'hi';"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestGenerate_AnimateBlock(t *testing.T) {
	g := NewGenerator(nil)
	got, err := g.Generate("animate { target: {{#box}}, duration: 500, easing: ease-in, loop: 2 }")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "__chtlAnimate({") {
		t.Errorf("got %q", got)
	}
	if !strings.Contains(got, "target: document.getElementById('box')") {
		t.Errorf("target not lowered: %q", got)
	}
	if !strings.Contains(got, "easing: 'ease-in'") {
		t.Errorf("easing not quoted: %q", got)
	}
	if !strings.Contains(g.Runtime(), "function __chtlAnimate") {
		t.Error("runtime helper missing")
	}
}

func TestGenerate_RouterBlock(t *testing.T) {
	g := NewGenerator(nil)
	got, err := g.Generate(`router { mode: hash, "/home": showHome, "/about": showAbout }`)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "__chtlRouter({") ||
		!strings.Contains(got, "mode: 'hash'") ||
		!strings.Contains(got, "'/home': showHome") {
		t.Errorf("got %q", got)
	}
	if !strings.Contains(g.Runtime(), "hashchange") {
		t.Error("router runtime missing")
	}
}

func TestGenerate_VirBlock(t *testing.T) {
	g := NewGenerator(nil)
	got, err := g.Generate("vir Tools = { ping: () => 1 };")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "const Tools = __chtlVir('Tools', {") {
		t.Errorf("got %q", got)
	}
}

func TestGenerate_FileLoader(t *testing.T) {
	got := gen(t, `fileloader { load: "app.js" }`)
	if !strings.Contains(got, `__chtlFileLoader(["app.js"])`) {
		t.Errorf("got %q", got)
	}
}

func TestGenerate_UtilChangeThen(t *testing.T) {
	got := gen(t, "util x > 3 -> change { grow(); } -> then { shrink(); }")
	want := "if (x > 3) { grow(); } else { shrink(); }"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestGenerate_RuntimeEmittedOnce(t *testing.T) {
	g := NewGenerator(nil)
	if _, err := g.Generate("animate { duration: 100 }"); err != nil {
		t.Fatal(err)
	}
	if _, err := g.Generate("animate { duration: 200 }"); err != nil {
		t.Fatal(err)
	}
	runtime := g.Runtime()
	if strings.Count(runtime, "function __chtlAnimate") != 1 {
		t.Error("runtime helper must appear exactly once")
	}
}

type fakeExt struct{}

func (fakeExt) IsKeyword(word string) bool { return word == "printMylove" }
func (fakeExt) Lower(keyword, body string) (string, error) {
	return "/* lowered " + keyword + " */", nil
}

func TestGenerate_ExtensionDispatch(t *testing.T) {
	g := NewGenerator(fakeExt{})
	got, err := g.Generate(`printMylove { url: "a.png", mode: ASCII }`)
	if err != nil {
		t.Fatal(err)
	}
	if got != "/* lowered printMylove */" {
		t.Errorf("got %q", got)
	}
}
