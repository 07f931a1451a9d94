// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package merge

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = "<html><head><title>t</title></head><body><div>hi</div></body></html>"

func TestMerge_InlinePlacement(t *testing.T) {
	m := NewMerger(DefaultOptions())
	art, err := m.Merge(page,
		[]Piece{{Text: ".a { color: red; }", File: "a.chtl", Line: 1}},
		[]Piece{{Text: "console.log(1);", File: "a.chtl", Line: 2}},
	)
	require.NoError(t, err)

	head := art.HTML[:strings.Index(art.HTML, "</head>")]
	assert.Contains(t, head, "<style>", "CSS belongs in head")
	assert.Contains(t, head, ".a { color: red; }")

	body := art.HTML[strings.Index(art.HTML, "<body"):strings.Index(art.HTML, "</body>")]
	assert.Contains(t, body, "<script>", "JS belongs in body")
	assert.Contains(t, body, "console.log(1);")

	assert.Empty(t, art.CSS)
	assert.Empty(t, art.JS)
}

func TestMerge_SeparateFiles(t *testing.T) {
	opts := DefaultOptions()
	opts.SeparateFiles = true
	opts.CSSPath = "site.css"
	opts.JSPath = "site.js"
	m := NewMerger(opts)

	art, err := m.Merge(page,
		[]Piece{{Text: ".a { color: red; }"}},
		[]Piece{{Text: "console.log(1);"}},
	)
	require.NoError(t, err)

	assert.Contains(t, art.HTML, `<link rel="stylesheet" href="site.css">`)
	assert.Contains(t, art.HTML, `<script src="site.js"></script>`)
	assert.Equal(t, ".a { color: red; }", art.CSS)
	assert.Equal(t, "console.log(1);", art.JS)
}

func TestMerge_OrderAndDedup(t *testing.T) {
	m := NewMerger(DefaultOptions())
	art, err := m.Merge(page, []Piece{
		{Text: ".late {}", Priority: 1, File: "a.chtl", Line: 1},
		{Text: ".dup {}", Priority: 0, File: "b.chtl", Line: 9},
		{Text: ".first {}", Priority: 0, File: "a.chtl", Line: 5},
		{Text: ".dup {}", Priority: 0, File: "c.chtl", Line: 1},
	}, nil)
	require.NoError(t, err)

	first := strings.Index(art.HTML, ".first")
	dup := strings.Index(art.HTML, ".dup")
	late := strings.Index(art.HTML, ".late")
	assert.True(t, first < dup && dup < late,
		"priority then file/line order, got HTML %q", art.HTML)
	assert.Equal(t, 1, strings.Count(art.HTML, ".dup"), "identical pieces deduplicate")
}

func TestMerge_MinifyCSSAndJS(t *testing.T) {
	opts := DefaultOptions()
	opts.MinifyCSS = true
	opts.MinifyJS = true
	m := NewMerger(opts)

	art, err := m.Merge(page,
		[]Piece{{Text: ".a {\n  color: red;\n}"}},
		[]Piece{{Text: "function f( ) {  return 1 ; }"}},
	)
	require.NoError(t, err)
	assert.Contains(t, art.HTML, ".a{color:red}")
	assert.NotContains(t, art.HTML, "function f( )")
}

func TestMerge_CommentHandling(t *testing.T) {
	withComment := "<html><head></head><body><!-- banner --><div></div></body></html>"

	m := NewMerger(DefaultOptions())
	art, err := m.Merge(withComment, nil, nil)
	require.NoError(t, err)
	assert.NotContains(t, art.HTML, "banner", "comments drop by default")

	opts := DefaultOptions()
	opts.PreserveComments = true
	art, err = NewMerger(opts).Merge(withComment, nil, nil)
	require.NoError(t, err)
	assert.Contains(t, art.HTML, "<!-- banner -->")
}

func TestMerge_NoHeadFallback(t *testing.T) {
	m := NewMerger(DefaultOptions())
	art, err := m.Merge("<div>bare</div>", []Piece{{Text: ".a {}"}}, []Piece{{Text: "x();"}})
	require.NoError(t, err)
	assert.Contains(t, art.HTML, "<style>")
	assert.Contains(t, art.HTML, "<script>")
}

func TestMerge_SourceMaps(t *testing.T) {
	opts := DefaultOptions()
	opts.SeparateFiles = true
	opts.OutputSourceMaps = true
	m := NewMerger(opts)

	art, err := m.Merge(page,
		[]Piece{{Text: ".a {}", File: "one.chtl"}},
		[]Piece{{Text: "x();", File: "two.chtl"}},
	)
	require.NoError(t, err)
	require.Contains(t, art.SourceMaps, "out.css.map")
	require.Contains(t, art.SourceMaps, "out.js.map")

	var sm struct {
		Version int      `json:"version"`
		Sources []string `json:"sources"`
	}
	require.NoError(t, json.Unmarshal([]byte(art.SourceMaps["out.css.map"]), &sm))
	assert.Equal(t, 3, sm.Version)
	assert.Equal(t, []string{"one.chtl"}, sm.Sources)
}

func TestMerge_Deterministic(t *testing.T) {
	m := NewMerger(DefaultOptions())
	pieces := []Piece{{Text: ".a {}", File: "a"}, {Text: ".b {}", File: "b"}}
	a, err := m.Merge(page, pieces, nil)
	require.NoError(t, err)
	b, err := m.Merge(page, pieces, nil)
	require.NoError(t, err)
	assert.Equal(t, a.HTML, b.HTML)
}
