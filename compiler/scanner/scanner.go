// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package scanner partitions a CHTL source file into typed fragments.
//
// The scanner is the first pipeline stage. It performs a single
// left-to-right pass over the file, tracking brace nesting while treating
// string literals and comments as opaque, and splits out the spans that
// belong to other sub-languages: global style blocks (CSS), script blocks
// (CHTL-JS) and [Origin] bodies (raw HTML/CSS/JS). Everything else stays
// CHTL. Raw spans are interned in a PlaceholderStore so downstream passes
// can substitute them back byte-exact.
package scanner

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/AleutianAI/chtl/compiler/source"
)

// Scanner splits one source buffer into fragments.
//
// A Scanner is cheap to construct and used once per file. It is not safe
// for concurrent use; create one per goroutine if scanning in parallel.
type Scanner struct {
	buf   *source.Buffer
	store *PlaceholderStore
	log   *slog.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithLogger sets the logger used for debug output.
func WithLogger(log *slog.Logger) Option {
	return func(s *Scanner) { s.log = log }
}

// New creates a Scanner over buf. Raw spans are interned into store.
func New(buf *source.Buffer, store *PlaceholderStore, opts ...Option) *Scanner {
	s := &Scanner{buf: buf, store: store, log: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan partitions the buffer into an ordered fragment list covering the
// whole source. Concatenating the fragment texts in order reproduces the
// file byte-for-byte.
func (s *Scanner) Scan(ctx context.Context) ([]Fragment, error) {
	start := time.Now()
	if err := initMetrics(); err != nil {
		s.log.Warn("scanner metrics unavailable", "error", err)
	}

	text := s.buf.Text()
	var frags []Fragment
	chtlStart := 0
	var openBraces []int

	flushCHTL := func(end int) {
		if end > chtlStart {
			frags = append(frags, Fragment{
				Kind: KindCHTL,
				Text: text[chtlStart:end],
				Span: s.buf.Span(chtlStart, end),
			})
		}
	}

	// captureBlock splits out the body of the brace block opening at ob as
	// a fragment of the given kind. The surrounding CHTL fragment keeps
	// the braces themselves.
	captureBlock := func(ob int, kind Kind) (int, error) {
		close, err := s.matchBrace(text, ob)
		if err != nil {
			return 0, err
		}
		flushCHTL(ob + 1)
		body := text[ob+1 : close]
		frags = append(frags, Fragment{
			Kind:        kind,
			Text:        body,
			Span:        s.buf.Span(ob+1, close),
			Placeholder: s.store.Intern(body),
		})
		chtlStart = close
		return close + 1, nil
	}

	i := 0
	for i < len(text) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c := text[i]
		switch {
		case c == '"' || c == '\'':
			j, err := s.skipString(text, i)
			if err != nil {
				return nil, err
			}
			i = j

		case c == '/' && i+1 < len(text) && text[i+1] == '/':
			if nl := strings.IndexByte(text[i:], '\n'); nl >= 0 {
				i += nl + 1
			} else {
				i = len(text)
			}

		case c == '/' && i+1 < len(text) && text[i+1] == '*':
			end := strings.Index(text[i+2:], "*/")
			if end < 0 {
				return nil, &ScanError{Err: ErrUnterminatedComment, Opener: s.buf.Pos(i)}
			}
			i += 2 + end + 2

		case c == '{':
			openBraces = append(openBraces, i)
			i++

		case c == '}':
			if len(openBraces) > 0 {
				openBraces = openBraces[:len(openBraces)-1]
			}
			i++

		case c == '[':
			ob, kind, ok := s.matchOrigin(text, i)
			if !ok {
				i++
				break
			}
			next, err := captureBlock(ob, kind)
			if err != nil {
				return nil, err
			}
			i = next

		case isIdentStart(c) && (i == 0 || !isIdentPart(text[i-1])):
			end := i
			for end < len(text) && isIdentPart(text[end]) {
				end++
			}
			word := text[i:end]
			ob := skipSpace(text, end)

			switch {
			case word == "style" && len(openBraces) == 0 && ob < len(text) && text[ob] == '{':
				next, err := captureBlock(ob, KindCSS)
				if err != nil {
					return nil, err
				}
				i = next
			case word == "script" && ob < len(text) && text[ob] == '{':
				next, err := captureBlock(ob, KindCHTLJS)
				if err != nil {
					return nil, err
				}
				i = next
			default:
				i = end
			}

		default:
			i++
		}
	}

	if len(openBraces) > 0 {
		return nil, &ScanError{Err: ErrUnterminatedBlock, Opener: s.buf.Pos(openBraces[len(openBraces)-1])}
	}
	flushCHTL(len(text))

	recordScan(ctx, s.buf.File(), len(frags), time.Since(start))
	return frags, nil
}

// matchOrigin checks whether text[i:] opens an [Origin] block and, if so,
// returns the offset of its opening brace and the fragment kind of its body.
func (s *Scanner) matchOrigin(text string, i int) (int, Kind, bool) {
	const keyword = "[Origin]"
	if !strings.HasPrefix(text[i:], keyword) {
		return 0, 0, false
	}
	j := skipSpace(text, i+len(keyword))
	if j >= len(text) || text[j] != '@' {
		return 0, 0, false
	}
	j++
	start := j
	for j < len(text) && isIdentPart(text[j]) {
		j++
	}
	kind := originKind(text[start:j])

	j = skipSpace(text, j)
	// Optional origin name.
	if j < len(text) && isIdentStart(text[j]) {
		for j < len(text) && isIdentPart(text[j]) {
			j++
		}
		j = skipSpace(text, j)
	}
	if j >= len(text) || text[j] != '{' {
		return 0, 0, false
	}
	return j, kind, true
}

// originKind maps an @-type word to the fragment kind of the origin body.
// Unknown (user-registered) origin types pass through as raw markup.
func originKind(word string) Kind {
	switch word {
	case "Style", "CSS", "Css":
		return KindCSS
	case "JavaScript", "Js":
		return KindJS
	default:
		return KindHTML
	}
}

// matchBrace returns the offset of the brace closing the block opened at
// ob, honouring strings and comments inside the block.
func (s *Scanner) matchBrace(text string, ob int) (int, error) {
	depth := 1
	i := ob + 1
	for i < len(text) {
		switch c := text[i]; {
		case c == '"' || c == '\'':
			j, err := s.skipString(text, i)
			if err != nil {
				return 0, err
			}
			i = j
		case c == '/' && i+1 < len(text) && text[i+1] == '/':
			if nl := strings.IndexByte(text[i:], '\n'); nl >= 0 {
				i += nl + 1
			} else {
				i = len(text)
			}
		case c == '/' && i+1 < len(text) && text[i+1] == '*':
			end := strings.Index(text[i+2:], "*/")
			if end < 0 {
				return 0, &ScanError{Err: ErrUnterminatedComment, Opener: s.buf.Pos(i)}
			}
			i += 2 + end + 2
		case c == '{':
			depth++
			i++
		case c == '}':
			depth--
			if depth == 0 {
				return i, nil
			}
			i++
		default:
			i++
		}
	}
	return 0, &ScanError{Err: ErrUnterminatedBlock, Opener: s.buf.Pos(ob)}
}

// skipString returns the offset just past the string literal opening at i.
func (s *Scanner) skipString(text string, i int) (int, error) {
	quote := text[i]
	j := i + 1
	for j < len(text) {
		switch text[j] {
		case '\\':
			j += 2
		case quote:
			return j + 1, nil
		default:
			j++
		}
	}
	return 0, &ScanError{Err: ErrUnterminatedString, Opener: s.buf.Pos(i)}
}

func skipSpace(text string, i int) int {
	for i < len(text) && (text[i] == ' ' || text[i] == '\t' || text[i] == '\n') {
		i++
	}
	return i
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9') || c == '-'
}
