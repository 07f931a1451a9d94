// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package scanner

import "github.com/AleutianAI/chtl/compiler/source"

// Kind classifies a fragment for pipeline dispatch.
type Kind int

const (
	// KindCHTL is element/template DSL text handled by the CHTL pipeline.
	KindCHTL Kind = iota

	// KindCHTLJS is script-block text handled by the CHTL-JS pipeline.
	KindCHTLJS

	// KindCSS is raw stylesheet text (global style blocks, @Style origins).
	KindCSS

	// KindJS is raw JavaScript text (@JavaScript origins).
	KindJS

	// KindHTML is raw markup text. It occurs for @Html origin bodies and
	// for origin bodies of any type other than the CSS and JavaScript
	// ones; these bypass every pipeline and are substituted back byte-exact.
	KindHTML
)

// String returns the kind name used in logs and diagnostics.
func (k Kind) String() string {
	switch k {
	case KindCHTL:
		return "chtl"
	case KindCHTLJS:
		return "chtljs"
	case KindCSS:
		return "css"
	case KindJS:
		return "js"
	case KindHTML:
		return "html"
	default:
		return "unknown"
	}
}

// Fragment is one typed, contiguous slice of a source file.
//
// Fragments are ordered by start position, never overlap, and together
// cover the file. Non-CHTL fragments carry a Placeholder key under which
// their byte-exact text is held in the PlaceholderStore; the generator
// substitutes it back unchanged at emit time.
type Fragment struct {
	Kind        Kind
	Text        string
	Span        source.Span
	Placeholder int // 0 when the fragment has no placeholder entry
}

// PlaceholderStore maps opaque integer keys to raw fragment texts.
//
// Keys are never embedded in user-visible text; the token stream carries
// them on dedicated raw-body tokens, which keeps user content free to
// contain anything without colliding with a marker syntax.
type PlaceholderStore struct {
	next  int
	texts map[int]string
}

// NewPlaceholderStore returns an empty store. Keys start at 1 so the zero
// value of Fragment.Placeholder means "none".
func NewPlaceholderStore() *PlaceholderStore {
	return &PlaceholderStore{next: 1, texts: make(map[int]string)}
}

// Intern records text under a fresh key and returns the key.
func (s *PlaceholderStore) Intern(text string) int {
	id := s.next
	s.next++
	s.texts[id] = text
	return id
}

// Lookup returns the text recorded under key.
func (s *PlaceholderStore) Lookup(key int) (string, bool) {
	t, ok := s.texts[key]
	return t, ok
}

// Len returns the number of interned texts.
func (s *PlaceholderStore) Len() int { return len(s.texts) }
