// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package driver

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/chtl/compiler/diag"
	"github.com/AleutianAI/chtl/compiler/merge"
)

func compileSrc(t *testing.T, src string) *Result {
	t.Helper()
	c := New(Options{Merge: merge.DefaultOptions()})
	res, err := c.CompileSource(context.Background(), "main.chtl", src)
	require.NoError(t, err)
	return res
}

func TestCompile_BasicElement(t *testing.T) {
	res := compileSrc(t, `div { text { "Hello" } }`)
	assert.False(t, res.Diags.HasErrors(), "diags: %v", res.Diags.All())
	assert.Contains(t, res.Artifact.HTML, "<div>Hello</div>")
	assert.Equal(t, 0, res.ExitCode())
}

func TestCompile_FullDocument(t *testing.T) {
	res := compileSrc(t, `
use html5;
html {
    head { title { text { "Demo" } } }
    body {
        div { id: main; style { color: red; &:hover { color: blue; } } }
        script { {{#main}}->listen { click: () => go() } }
    }
}
`)
	require.False(t, res.Diags.HasErrors(), "diags: %v", res.Diags.All())
	html := res.Artifact.HTML
	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
	assert.Contains(t, html, "<title>Demo</title>")
	assert.Contains(t, html, `style="color:red;"`)
	assert.Contains(t, html, "#main:hover { color: blue; }")
	assert.Contains(t, html, "document.getElementById('main').addEventListener('click', () => go())")
}

func TestCompile_ImportChtlTemplates(t *testing.T) {
	dir := t.TempDir()
	libPath := filepath.Join(dir, "lib.chtl")
	require.NoError(t, os.WriteFile(libPath, []byte(
		"[Template] @Style Accent { color: crimson; }"), 0o644))
	mainPath := filepath.Join(dir, "main.chtl")
	src := `
[Import] @Chtl from "lib.chtl";
p { style { @Style Accent from lib; } }
`
	require.NoError(t, os.WriteFile(mainPath, []byte(src), 0o644))

	c := New(Options{Merge: merge.DefaultOptions()})
	res, err := c.CompileFile(context.Background(), mainPath)
	require.NoError(t, err)
	require.False(t, res.Diags.HasErrors(), "diags: %v", res.Diags.All())
	assert.Contains(t, res.Artifact.HTML, "color:crimson;")
}

func TestCompile_ImportCSSPiece(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "theme.css"),
		[]byte(".theme { color: teal; }"), 0o644))
	mainPath := filepath.Join(dir, "main.chtl")
	require.NoError(t, os.WriteFile(mainPath, []byte(
		"[Import] @Style from \"theme.css\";\ndiv {}"), 0o644))

	c := New(Options{Merge: merge.DefaultOptions()})
	res, err := c.CompileFile(context.Background(), mainPath)
	require.NoError(t, err)
	assert.Contains(t, res.Artifact.HTML, ".theme { color: teal; }")
}

func TestCompile_ImportMissingIsError(t *testing.T) {
	res := compileSrc(t, `[Import] @Chtl from "nope/missing.chtl";`)
	assert.True(t, res.Diags.HasErrors())
	var kinds []diag.DiagKind
	for _, d := range res.Diags.All() {
		kinds = append(kinds, d.Kind)
	}
	assert.Contains(t, kinds, diag.KindImport)
}

func TestCompile_MissingFileMapsToIOExit(t *testing.T) {
	c := New(Options{Merge: merge.DefaultOptions()})
	res, err := c.CompileFile(context.Background(), "/no/such/file.chtl")
	require.NoError(t, err)
	assert.Equal(t, 2, res.ExitCode())
}

func TestCompile_SyntaxErrorAbortsFile(t *testing.T) {
	res := compileSrc(t, "div { : }")
	assert.True(t, res.Diags.HasErrors())
	assert.Nil(t, res.Artifact, "downstream passes are skipped")
	assert.Equal(t, 1, res.ExitCode())
}

func TestCompile_DuplicateDefinition(t *testing.T) {
	res := compileSrc(t, `
[Template] @Style T { color: red; }
[Template] @Style T { color: blue; }
div {}
`)
	assert.True(t, res.Diags.HasErrors())
	found := false
	for _, d := range res.Diags.All() {
		if d.Kind == diag.KindSemantic && strings.Contains(d.Message, "duplicate") {
			found = true
		}
	}
	assert.True(t, found, "diags: %v", res.Diags.All())
}

func TestCompile_ConstraintViolation(t *testing.T) {
	res := compileSrc(t, "div { except span; span {} }")
	assert.True(t, res.Diags.HasErrors())
}

func TestCompile_StrictUnknownConfigKey(t *testing.T) {
	src := "[Configuration] { TYPO_KEY: 1; }\ndiv {}"

	lax := compileSrc(t, src)
	assert.False(t, lax.Diags.HasErrors())

	c := New(Options{Strict: true, Merge: merge.DefaultOptions()})
	res, err := c.CompileSource(context.Background(), "main.chtl", src)
	require.NoError(t, err)
	assert.True(t, res.Diags.HasErrors())
}

func TestCompile_ChthollyModule(t *testing.T) {
	dir := t.TempDir()
	modDir := filepath.Join(dir, "Chtholly")
	require.NoError(t, os.MkdirAll(filepath.Join(modDir, "info"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(modDir, "src", "cjmod"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(modDir, "info", "Chtholly.chtl"), []byte(`
[Info] { name: Chtholly; version: 1.0.0; }
`), 0o644))
	mainPath := filepath.Join(dir, "main.chtl")
	require.NoError(t, os.WriteFile(mainPath, []byte(`
[Import] @CJmod from "Chtholly";
body { script { printMylove { url: "me.png", mode: ASCII } } }
`), 0o644))

	c := New(Options{Merge: merge.DefaultOptions()})
	res, err := c.CompileFile(context.Background(), mainPath)
	require.NoError(t, err)
	require.False(t, res.Diags.HasErrors(), "diags: %v", res.Diags.All())
	assert.Contains(t, res.Artifact.HTML, "createElement('canvas')")
}

func TestCompile_RuntimePrependedOnce(t *testing.T) {
	res := compileSrc(t, `
body {
    script { animate { target: {{#a}}, duration: 100 } }
    script { animate { target: {{#b}}, duration: 200 } }
}
`)
	require.False(t, res.Diags.HasErrors(), "diags: %v", res.Diags.All())
	assert.Equal(t, 1, strings.Count(res.Artifact.HTML, "function __chtlAnimate"))
	idx := strings.Index(res.Artifact.HTML, "function __chtlAnimate")
	firstUse := strings.Index(res.Artifact.HTML, "__chtlAnimate({")
	assert.True(t, idx < firstUse, "runtime must precede first use")
}

func TestCompile_Determinism(t *testing.T) {
	src := `
[Template] @Style T { color: black; }
div { style { @Style T; &:hover { color: red; } } }
div { script { {{#x}}->listen { click: f } } }
`
	a := compileSrc(t, src)
	b := compileSrc(t, src)
	require.NotNil(t, a.Artifact)
	require.NotNil(t, b.Artifact)
	assert.Equal(t, a.Artifact.HTML, b.Artifact.HTML)
	assert.Equal(t, a.Artifact.CSS, b.Artifact.CSS)
	assert.Equal(t, a.Artifact.JS, b.Artifact.JS)
}

func TestCompile_SeparateFilesArtifact(t *testing.T) {
	opts := merge.DefaultOptions()
	opts.SeparateFiles = true
	c := New(Options{Merge: opts})
	res, err := c.CompileSource(context.Background(), "main.chtl",
		"div { id: a; style { &:hover { color: red; } } }")
	require.NoError(t, err)
	assert.Contains(t, res.Artifact.CSS, "#a:hover")
	assert.Contains(t, res.Artifact.HTML, `<link rel="stylesheet"`)
}

func TestCompile_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := New(Options{Merge: merge.DefaultOptions()})
	_, err := c.CompileSource(ctx, "main.chtl", "div {}")
	assert.Error(t, err)
}
