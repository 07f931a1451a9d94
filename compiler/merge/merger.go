// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package merge assembles the final artifact from the emitted buffers.
//
// Pieces merge by declared priority (lower first), then file name, then
// line; duplicate pieces of the same kind and identical text collapse to
// one. Inline placement puts CSS in <head><style> and JS before </body>;
// separate-file mode emits sidecar files referenced by link/script tags.
package merge

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
)

// Options controls artifact assembly.
type Options struct {
	InlineCSS        bool
	InlineJS         bool
	MinifyHTML       bool
	MinifyCSS        bool
	MinifyJS         bool
	PreserveComments bool
	OutputSourceMaps bool
	SeparateFiles    bool
	CSSPath          string
	JSPath           string
}

// DefaultOptions inlines everything unminified into a single document.
func DefaultOptions() Options {
	return Options{InlineCSS: true, InlineJS: true}
}

// Piece is one mergeable chunk of CSS or JS with its ordering key.
type Piece struct {
	Text     string
	Priority int
	File     string
	Line     int
}

// Artifact is the assembled output. CSS and JS are empty when inlined.
type Artifact struct {
	HTML       string
	CSS        string
	JS         string
	SourceMaps map[string]string
}

// Merger assembles artifacts under one option set.
type Merger struct {
	opts Options
	min  *minify.M
}

// NewMerger creates a Merger.
func NewMerger(opts Options) *Merger {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("application/javascript", js.Minify)
	m.Add("text/html", &html.Minifier{KeepDocumentTags: true, KeepEndTags: true})
	return &Merger{opts: opts, min: m}
}

// Merge assembles the final artifact from the HTML buffer and the
// ordered CSS/JS pieces.
func (m *Merger) Merge(htmlText string, cssPieces, jsPieces []Piece) (*Artifact, error) {
	cssText := joinPieces(cssPieces)
	jsText := joinPieces(jsPieces)

	var err error
	if m.opts.MinifyCSS && cssText != "" {
		if cssText, err = m.min.String("text/css", cssText); err != nil {
			return nil, fmt.Errorf("minify css: %w", err)
		}
	}
	if m.opts.MinifyJS && jsText != "" {
		if jsText, err = m.min.String("application/javascript", jsText); err != nil {
			return nil, fmt.Errorf("minify js: %w", err)
		}
	}

	art := &Artifact{}
	switch {
	case m.opts.SeparateFiles:
		art.CSS = cssText
		art.JS = jsText
		if cssText != "" {
			htmlText = insertInHead(htmlText, fmt.Sprintf(`<link rel="stylesheet" href="%s">`, m.cssPath()))
		}
		if jsText != "" {
			htmlText = insertBeforeBodyEnd(htmlText, fmt.Sprintf(`<script src="%s"></script>`, m.jsPath()))
		}
	default:
		if m.opts.InlineCSS && cssText != "" {
			htmlText = insertInHead(htmlText, "<style>\n"+cssText+"\n</style>")
			cssText = ""
		}
		if m.opts.InlineJS && jsText != "" {
			htmlText = insertBeforeBodyEnd(htmlText, "<script>\n"+jsText+"\n</script>")
			jsText = ""
		}
		art.CSS = cssText
		art.JS = jsText
	}

	if !m.opts.PreserveComments {
		htmlText = stripHTMLComments(htmlText)
	}
	if m.opts.MinifyHTML {
		if htmlText, err = m.min.String("text/html", htmlText); err != nil {
			return nil, fmt.Errorf("minify html: %w", err)
		}
	}
	art.HTML = htmlText

	if m.opts.OutputSourceMaps {
		art.SourceMaps = map[string]string{}
		addSourceMap(art.SourceMaps, "out.html", htmlText, cssPieces, jsPieces)
		if art.CSS != "" {
			addSourceMap(art.SourceMaps, m.cssPath(), art.CSS, cssPieces, nil)
		}
		if art.JS != "" {
			addSourceMap(art.SourceMaps, m.jsPath(), art.JS, nil, jsPieces)
		}
	}
	return art, nil
}

func (m *Merger) cssPath() string {
	if m.opts.CSSPath != "" {
		return m.opts.CSSPath
	}
	return "out.css"
}

func (m *Merger) jsPath() string {
	if m.opts.JSPath != "" {
		return m.opts.JSPath
	}
	return "out.js"
}

// joinPieces orders by priority, file, line, deduplicates identical
// texts, and joins.
func joinPieces(pieces []Piece) string {
	sorted := append([]Piece(nil), pieces...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		if a.File != b.File {
			return a.File < b.File
		}
		return a.Line < b.Line
	})

	seen := make(map[string]bool)
	var parts []string
	for _, p := range sorted {
		text := strings.TrimSpace(p.Text)
		if text == "" || seen[text] {
			continue
		}
		seen[text] = true
		parts = append(parts, text)
	}
	return strings.Join(parts, "\n")
}

// insertInHead places markup inside <head>, creating placement fallbacks
// for documents without one.
func insertInHead(htmlText, markup string) string {
	if i := strings.Index(htmlText, "</head>"); i >= 0 {
		return htmlText[:i] + markup + "\n" + htmlText[i:]
	}
	if i := strings.Index(htmlText, "<body"); i >= 0 {
		return htmlText[:i] + "<head>" + markup + "</head>\n" + htmlText[i:]
	}
	return markup + "\n" + htmlText
}

// insertBeforeBodyEnd places markup just before </body>, appending when
// the document has no body close tag.
func insertBeforeBodyEnd(htmlText, markup string) string {
	if i := strings.LastIndex(htmlText, "</body>"); i >= 0 {
		return htmlText[:i] + markup + "\n" + htmlText[i:]
	}
	return htmlText + "\n" + markup
}

// stripHTMLComments removes <!-- --> runs outside of any parsing.
func stripHTMLComments(htmlText string) string {
	for {
		start := strings.Index(htmlText, "<!--")
		if start < 0 {
			return htmlText
		}
		end := strings.Index(htmlText[start:], "-->")
		if end < 0 {
			return htmlText
		}
		htmlText = htmlText[:start] + htmlText[start+end+3:]
	}
}
