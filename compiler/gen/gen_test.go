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
	"context"
	"strings"
	"testing"

	"github.com/AleutianAI/chtl/compiler/ast"
	"github.com/AleutianAI/chtl/compiler/chtljs"
	"github.com/AleutianAI/chtl/compiler/diag"
	"github.com/AleutianAI/chtl/compiler/lexer"
	"github.com/AleutianAI/chtl/compiler/parser"
	"github.com/AleutianAI/chtl/compiler/scanner"
	"github.com/AleutianAI/chtl/compiler/sema"
	"github.com/AleutianAI/chtl/compiler/source"
	"github.com/AleutianAI/chtl/compiler/symbol"
)

// compile runs the front half of the pipeline on one source string and
// generates it against a fresh symbol table.
func compile(t *testing.T, src string) (Output, *diag.Collector) {
	t.Helper()
	buf := source.NewBuffer("test.chtl", src)
	store := scanner.NewPlaceholderStore()
	frags, err := scanner.New(buf, store).Scan(context.Background())
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	kw := lexer.NewKeywords(nil)
	toks, err := parser.Stitch(buf, frags, kw)
	if err != nil {
		t.Fatalf("lex: %v", err)
	}
	doc, err := parser.New(buf, toks, kw).ParseDocument()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	table := symbol.NewTable()
	registerDefinitions(t, table, doc.Children)

	diags := diag.NewCollector()
	res := sema.NewResolver(table)
	g := New(table, res, store, chtljs.NewGenerator(nil), diags)
	out, err := g.Generate(doc, "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	return out, diags
}

// registerDefinitions mirrors the driver's declaration pass.
func registerDefinitions(t *testing.T, table *symbol.Table, nodes []ast.Node) {
	t.Helper()
	for _, n := range nodes {
		switch v := n.(type) {
		case *ast.Template:
			if err := table.DefineTemplate("", v); err != nil {
				t.Fatalf("define template: %v", err)
			}
		case *ast.Custom:
			if err := table.DefineCustom("", v); err != nil {
				t.Fatalf("define custom: %v", err)
			}
		case *ast.Origin:
			if v.Name != "" && v.Placeholder != 0 {
				if err := table.RegisterOrigin("", v.Name, symbol.OriginRecord{
					Type: v.Type, Placeholder: v.Placeholder,
				}); err != nil {
					t.Fatalf("register origin: %v", err)
				}
			}
		}
	}
}

func TestGenerate_BasicElement(t *testing.T) {
	out, _ := compile(t, `div { text { "Hello" } }`)
	if !strings.Contains(out.HTML, "<div>Hello</div>") {
		t.Errorf("HTML = %q", out.HTML)
	}
}

func TestGenerate_InlineStyle(t *testing.T) {
	out, _ := compile(t, "div { style { color: red; font-size: 16px; } }")
	if !strings.Contains(out.HTML, `<div style="color:red;font-size:16px;"></div>`) {
		t.Errorf("HTML = %q", out.HTML)
	}
}

func TestGenerate_NestedSelectorGlobalRule(t *testing.T) {
	out, _ := compile(t, "div { id: main; style { &:hover { border: 1px solid black; } } }")
	if !strings.Contains(out.HTML, `<div id="main"></div>`) {
		t.Errorf("HTML = %q", out.HTML)
	}
	if !strings.Contains(out.CSS, "#main:hover { border: 1px solid black; }") {
		t.Errorf("CSS = %q", out.CSS)
	}
}

func TestGenerate_TemplateStyleUsage(t *testing.T) {
	out, _ := compile(t, `
[Template] @Style T { color: black; }
p { style { @Style T; font-size: 14px; } }
`)
	if !strings.Contains(out.HTML, "color:black;") || !strings.Contains(out.HTML, "font-size:14px;") {
		t.Errorf("HTML = %q", out.HTML)
	}
}

func TestGenerate_CustomSpecialization(t *testing.T) {
	out, _ := compile(t, `
[Custom] @Element Card { div {} p {} }
body {
    @Element Card {
        delete p;
        insert after div { span {} }
    }
}
`)
	if !strings.Contains(out.HTML, "<body><div></div><span></span></body>") {
		t.Errorf("HTML = %q", out.HTML)
	}
	if strings.Contains(out.HTML, "<p>") {
		t.Errorf("deleted element still present: %q", out.HTML)
	}
}

func TestGenerate_ListenerLowering(t *testing.T) {
	out, _ := compile(t, "div { script { {{#b}}->listen { click: () => x() } } }")
	if !strings.Contains(out.JS, "document.getElementById('b').addEventListener('click', () => x())") {
		t.Errorf("JS = %q", out.JS)
	}
}

func TestGenerate_AutoClassForNestedRule(t *testing.T) {
	out, _ := compile(t, "div { style { &:hover { color: red; } } }")
	if !strings.Contains(out.HTML, `class="chtl-1"`) {
		t.Errorf("auto class missing: %q", out.HTML)
	}
	if !strings.Contains(out.CSS, ".chtl-1:hover { color: red; }") {
		t.Errorf("CSS = %q", out.CSS)
	}
}

func TestGenerate_AutoClassDisabled(t *testing.T) {
	src := `
[Configuration] { DISABLE_STYLE_AUTO_ADD_CLASS: true; DISABLE_STYLE_AUTO_ADD_ID: true; }
div { style { &:hover { color: red; } } }
`
	buf := source.NewBuffer("test.chtl", src)
	store := scanner.NewPlaceholderStore()
	frags, _ := scanner.New(buf, store).Scan(context.Background())
	kw := lexer.NewKeywords(nil)
	toks, _ := parser.Stitch(buf, frags, kw)
	doc, err := parser.New(buf, toks, kw).ParseDocument()
	if err != nil {
		t.Fatal(err)
	}

	table := symbol.NewTable()
	for key, value := range parser.ScanConfigEntries(toks) {
		if err := table.Config().Set(key, value, false); err != nil {
			t.Fatal(err)
		}
	}
	g := New(table, sema.NewResolver(table), store, chtljs.NewGenerator(nil), diag.NewCollector())
	out, err := g.Generate(doc, "")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out.HTML, "chtl-") {
		t.Errorf("auto hooks must be disabled: %q", out.HTML)
	}
	if !strings.Contains(out.CSS, "div:hover { color: red; }") {
		t.Errorf("CSS should fall back to the tag selector: %q", out.CSS)
	}
}

func TestGenerate_GlobalStylePassThrough(t *testing.T) {
	out, _ := compile(t, "style { body { margin: 0; } }\ndiv {}")
	if !strings.Contains(out.CSS, "body { margin: 0; }") {
		t.Errorf("CSS = %q", out.CSS)
	}
}

func TestGenerate_OriginRoundTrip(t *testing.T) {
	raw := `<b data-x="1">kept   exactly</b>`
	out, _ := compile(t, "[Origin] @Html box { "+raw+" }\nbody { [Origin] @Html box; }")
	if !strings.Contains(out.HTML, raw) {
		t.Errorf("origin must round-trip byte-exact: %q", out.HTML)
	}
}

func TestGenerate_UseHtml5(t *testing.T) {
	out, _ := compile(t, "use html5;\nhtml { body {} }")
	if !strings.HasPrefix(out.HTML, "<!DOCTYPE html>\n<html>") {
		t.Errorf("HTML = %q", out.HTML)
	}
}

func TestGenerate_VoidElement(t *testing.T) {
	out, _ := compile(t, `img { src: logo.png; alt: "logo"; }`)
	if !strings.Contains(out.HTML, `<img src="logo.png" alt="logo" />`) {
		t.Errorf("HTML = %q", out.HTML)
	}
}

func TestGenerate_TextEscaping(t *testing.T) {
	out, _ := compile(t, `div { text { "a < b & c" } }`)
	if !strings.Contains(out.HTML, "a &lt; b &amp; c") {
		t.Errorf("HTML = %q", out.HTML)
	}
}

func TestGenerate_GeneratorCommentEmitted(t *testing.T) {
	out, _ := compile(t, "# banner\ndiv { // hidden\n }")
	if !strings.Contains(out.HTML, "<!-- banner -->") {
		t.Errorf("generator comment missing: %q", out.HTML)
	}
	if strings.Contains(out.HTML, "hidden") {
		t.Errorf("source comment leaked: %q", out.HTML)
	}
}

func TestGenerate_ExpressionInStyle(t *testing.T) {
	out, _ := compile(t, "div { style { width: 100px + 20px; } }")
	if !strings.Contains(out.HTML, "width:120px;") {
		t.Errorf("HTML = %q", out.HTML)
	}
}

func TestGenerate_PropertyRefAcrossElements(t *testing.T) {
	out, _ := compile(t, `
div { id: box; style { width: 100px; } }
div { id: half; style { width: #box.width / 2; } }
`)
	if !strings.Contains(out.HTML, "width:50px;") {
		t.Errorf("HTML = %q", out.HTML)
	}
}

func TestGenerate_EvaluationErrorPoisonsProperty(t *testing.T) {
	out, diags := compile(t, "div { style { width: 1px + 1em; color: red; } }")
	if !strings.Contains(out.HTML, "width:;") {
		t.Errorf("poisoned property should emit empty: %q", out.HTML)
	}
	if !strings.Contains(out.HTML, "color:red;") {
		t.Errorf("sibling property must survive: %q", out.HTML)
	}
	found := false
	for _, d := range diags.All() {
		if d.Kind == diag.KindEvaluation {
			found = true
		}
	}
	if !found {
		t.Error("expected an evaluation diagnostic")
	}
}

func TestGenerate_VarTemplateUsage(t *testing.T) {
	out, _ := compile(t, `
[Template] @Var Theme { accent: crimson; }
div { style { color: Theme(accent); } }
`)
	if !strings.Contains(out.HTML, "color:crimson;") {
		t.Errorf("HTML = %q", out.HTML)
	}
}

func TestGenerate_Determinism(t *testing.T) {
	src := `
[Template] @Style T { color: black; }
div { id: a; style { @Style T; &:hover { color: red; } } }
div { style { &:focus { outline: none; } } }
`
	a, _ := compile(t, src)
	b, _ := compile(t, src)
	if a != b {
		t.Errorf("two runs differ:\n%+v\n%+v", a, b)
	}
}
