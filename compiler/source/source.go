// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package source owns file text and the byte-offset to line/column mapping.
//
// A Buffer is created once per input file and shared by every downstream
// pass. Positions and spans produced here travel on tokens, AST nodes and
// diagnostics, so all passes report locations against the same index.
package source

import (
	"sort"
	"strings"
)

// Position is a location inside a file. Line and Column are 1-based;
// Offset is the 0-based byte offset into the normalised text.
type Position struct {
	File   string
	Offset int
	Line   int
	Column int
}

// Span is a half-open [Start, End) region of a single file.
type Span struct {
	Start Position
	End   Position
}

// IsValid reports whether the span covers at least zero bytes of a known file.
func (s Span) IsValid() bool {
	return s.Start.File != "" && s.Start.Offset <= s.End.Offset
}

// Buffer holds the normalised text of one source file plus a line index.
//
// Line endings are normalised to \n on construction so byte offsets are
// stable regardless of the platform the file was authored on. The zero
// value is not usable; construct with NewBuffer.
type Buffer struct {
	file       string
	text       string
	lineStarts []int
}

// NewBuffer normalises the given text (\r\n and bare \r become \n) and
// builds the line-start index.
func NewBuffer(file, text string) *Buffer {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &Buffer{file: file, text: text, lineStarts: starts}
}

// File returns the file name the buffer was created with.
func (b *Buffer) File() string { return b.file }

// Text returns the normalised file text.
func (b *Buffer) Text() string { return b.text }

// Len returns the length of the normalised text in bytes.
func (b *Buffer) Len() int { return len(b.text) }

// Pos maps a byte offset to a full Position. Offsets past the end of the
// buffer clamp to the end.
func (b *Buffer) Pos(offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(b.text) {
		offset = len(b.text)
	}
	line := sort.Search(len(b.lineStarts), func(i int) bool {
		return b.lineStarts[i] > offset
	})
	return Position{
		File:   b.file,
		Offset: offset,
		Line:   line,
		Column: offset - b.lineStarts[line-1] + 1,
	}
}

// Span builds a Span from two byte offsets.
func (b *Buffer) Span(start, end int) Span {
	return Span{Start: b.Pos(start), End: b.Pos(end)}
}

// Slice returns the text covered by the span. Spans from other files
// return the empty string.
func (b *Buffer) Slice(sp Span) string {
	if sp.Start.File != b.file {
		return ""
	}
	start, end := sp.Start.Offset, sp.End.Offset
	if start < 0 || end > len(b.text) || start > end {
		return ""
	}
	return b.text[start:end]
}
