// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package lexer produces CHTL tokens from a CHTL fragment.
//
// One Lexer instance lexes one fragment. Keyword recognition is
// indirected through the active configuration's KEYWORD_* rebinding table
// (see Keywords); the lexer itself emits Ident tokens and the parser
// resolves them to canonical keywords.
package lexer

import (
	"strings"

	"github.com/AleutianAI/chtl/compiler/source"
)

// bracketKeywords is the closed set of [X] keywords.
var bracketKeywords = map[string]bool{
	"Template":      true,
	"Custom":        true,
	"Origin":        true,
	"Import":        true,
	"Namespace":     true,
	"Configuration": true,
	"Info":          true,
	"Export":        true,
}

// Lexer tokenises one CHTL fragment of a source buffer.
type Lexer struct {
	buf  *source.Buffer
	text string
	base int // absolute offset of text[0] in the buffer
	pos  int // relative offset into text
	kw   *Keywords
}

// New creates a Lexer over the fragment span of buf.
func New(buf *source.Buffer, span source.Span, kw *Keywords) *Lexer {
	return &Lexer{
		buf:  buf,
		text: buf.Slice(span),
		base: span.Start.Offset,
		kw:   kw,
	}
}

// Keywords returns the keyword resolution table the lexer was built with.
func (l *Lexer) Keywords() *Keywords { return l.kw }

// Tokens lexes the whole fragment. The returned slice never includes an
// EOF token; the caller appends one after stitching fragments together.
func (l *Lexer) Tokens() ([]Token, error) {
	var toks []Token
	for {
		tok, err := l.next()
		if err != nil {
			return toks, err
		}
		if tok.Kind == EOF {
			return toks, nil
		}
		toks = append(toks, tok)
	}
}

func (l *Lexer) next() (Token, error) {
	l.skipSpace()
	if l.pos >= len(l.text) {
		return l.token(EOF, l.pos, l.pos, ""), nil
	}

	start := l.pos
	c := l.text[l.pos]

	switch {
	case c == '#':
		if l.pos+1 < len(l.text) && (l.text[l.pos+1] == ' ' || l.text[l.pos+1] == '\t') {
			return l.lexLineComment(start, GeneratorComment), nil
		}
		if l.pos+1 >= len(l.text) || l.text[l.pos+1] == '\n' {
			return l.lexLineComment(start, GeneratorComment), nil
		}
		l.pos++
		return l.token(Hash, start, l.pos, "#"), nil

	case c == '/' && l.peek(1) == '/':
		return l.lexLineComment(start, Comment), nil

	case c == '/' && l.peek(1) == '*':
		end := strings.Index(l.text[l.pos+2:], "*/")
		if end < 0 {
			return Token{}, l.errorAt(start, ErrUnterminatedString)
		}
		l.pos += 2 + end + 2
		return l.token(Comment, start, l.pos, l.text[start:l.pos]), nil

	case c == '"' || c == '\'':
		return l.lexString(start)

	case c >= '0' && c <= '9':
		return l.lexNumber(start), nil

	case c == '.' && l.peek(1) >= '0' && l.peek(1) <= '9':
		return l.lexNumber(start), nil

	case c == '[':
		if tok, ok := l.lexBracketKeyword(start); ok {
			return tok, nil
		}
		l.pos++
		return l.token(LBracket, start, l.pos, "["), nil

	case c == '@':
		l.pos++
		ws := l.pos
		for l.pos < len(l.text) && isWordByte(l.text[l.pos]) {
			l.pos++
		}
		if l.pos == ws {
			return Token{}, l.errorAt(start, ErrUnexpectedChar)
		}
		return l.token(AtKeyword, start, l.pos, l.text[ws:l.pos]), nil

	case isWordStart(c):
		return l.lexWord(start), nil
	}

	// Multi-byte operators before single-byte punctuation.
	switch {
	case c == '-' && l.peek(1) == '>':
		l.pos += 2
		return l.token(Arrow, start, l.pos, "->"), nil
	case c == ':' && l.peek(1) == ':':
		l.pos += 2
		return l.token(ColonPair, start, l.pos, "::"), nil
	case c == '.' && l.peek(1) == '.' && l.peek(2) == '.':
		l.pos += 3
		return l.token(Ellipsis, start, l.pos, "..."), nil
	}

	singles := map[byte]Kind{
		'{': LBrace, '}': RBrace, ']': RBracket,
		'(': LParen, ')': RParen, ';': Semi, ':': Colon,
		',': Comma, '.': Dot, '&': Amp, '|': Pipe,
		'?': Question, '!': Bang, '=': Assign,
		'+': Plus, '-': Minus, '*': Star, '/': Slash, '%': Percent,
	}
	if kind, ok := singles[c]; ok {
		l.pos++
		return l.token(kind, start, l.pos, string(c)), nil
	}
	return Token{}, l.errorAt(start, ErrUnexpectedChar)
}

func (l *Lexer) lexLineComment(start int, kind Kind) Token {
	for l.pos < len(l.text) && l.text[l.pos] != '\n' {
		l.pos++
	}
	return l.token(kind, start, l.pos, strings.TrimSpace(l.text[start:l.pos]))
}

func (l *Lexer) lexString(start int) (Token, error) {
	quote := l.text[l.pos]
	l.pos++
	var sb strings.Builder
	for l.pos < len(l.text) {
		c := l.text[l.pos]
		switch c {
		case '\\':
			if l.pos+1 >= len(l.text) {
				return Token{}, l.errorAt(start, ErrUnterminatedString)
			}
			switch l.text[l.pos+1] {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case '\\':
				sb.WriteByte('\\')
			case '"':
				sb.WriteByte('"')
			case '\'':
				sb.WriteByte('\'')
			default:
				sb.WriteByte(l.text[l.pos+1])
			}
			l.pos += 2
		case quote:
			l.pos++
			return l.token(String, start, l.pos, sb.String()), nil
		default:
			sb.WriteByte(c)
			l.pos++
		}
	}
	return Token{}, l.errorAt(start, ErrUnterminatedString)
}

// lexNumber consumes digits, an optional fraction and a directly attached
// unit suffix ("16px", "1.5em", "50%").
func (l *Lexer) lexNumber(start int) Token {
	for l.pos < len(l.text) && l.text[l.pos] >= '0' && l.text[l.pos] <= '9' {
		l.pos++
	}
	if l.pos < len(l.text) && l.text[l.pos] == '.' && l.peek(1) >= '0' && l.peek(1) <= '9' {
		l.pos++
		for l.pos < len(l.text) && l.text[l.pos] >= '0' && l.text[l.pos] <= '9' {
			l.pos++
		}
	}
	for l.pos < len(l.text) && (isLetter(l.text[l.pos]) || l.text[l.pos] == '%') {
		l.pos++
	}
	return l.token(Number, start, l.pos, l.text[start:l.pos])
}

// lexBracketKeyword recognises the closed [X] keyword set. Anything else
// starting with '[' (index suffixes, ranges) stays plain punctuation.
func (l *Lexer) lexBracketKeyword(start int) (Token, bool) {
	j := start + 1
	ws := j
	for j < len(l.text) && isWordByte(l.text[j]) {
		j++
	}
	if j >= len(l.text) || l.text[j] != ']' || !bracketKeywords[l.text[ws:j]] {
		return Token{}, false
	}
	l.pos = j + 1
	return l.token(BracketKeyword, start, l.pos, l.text[ws:j]), true
}

// lexWord consumes an identifier or unquoted literal. Runs restricted to
// identifier characters yield Ident; runs with dots yield Literal.
func (l *Lexer) lexWord(start int) Token {
	dotted := false
	for l.pos < len(l.text) {
		c := l.text[l.pos]
		if isWordByte(c) {
			l.pos++
			continue
		}
		// A dot glues into the word only when followed by another word
		// byte, so "a.b" is one literal but "name." ends before the dot.
		if c == '.' && l.pos+1 < len(l.text) && isWordByte(l.text[l.pos+1]) {
			dotted = true
			l.pos += 2
			continue
		}
		break
	}
	kind := Ident
	if dotted {
		kind = Literal
	}
	return l.token(kind, start, l.pos, l.text[start:l.pos])
}

func (l *Lexer) token(kind Kind, start, end int, text string) Token {
	return Token{
		Kind: kind,
		Text: text,
		Span: l.buf.Span(l.base+start, l.base+end),
	}
}

func (l *Lexer) skipSpace() {
	for l.pos < len(l.text) {
		switch l.text[l.pos] {
		case ' ', '\t', '\n':
			l.pos++
		default:
			return
		}
	}
}

func (l *Lexer) peek(n int) byte {
	if l.pos+n < len(l.text) {
		return l.text[l.pos+n]
	}
	return 0
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isWordStart(c byte) bool { return isLetter(c) || c == '_' }

func isWordByte(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_' || c == '-'
}
