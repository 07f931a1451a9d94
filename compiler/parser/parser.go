// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package parser builds the CHTL AST from a token stream.
//
// The parser is recursive-descent. Most decisions look at the current
// token; telling a property from a child element looks one token further,
// and telling a nested style rule from a property scans ahead to the
// first '{' or ';' (ruleAhead). It consumes
// the stitched token stream of one file: CHTL tokens from the lexer plus
// RawBody tokens standing in for script/global-style/origin fragments.
// Ordinary comments are skipped transparently; generator comments become
// Comment nodes.
package parser

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/AleutianAI/chtl/compiler/ast"
	"github.com/AleutianAI/chtl/compiler/lexer"
	"github.com/AleutianAI/chtl/compiler/source"
)

// Parser parses one file's token stream.
type Parser struct {
	buf  *source.Buffer
	toks []lexer.Token
	pos  int
	kw   *lexer.Keywords
	log  *slog.Logger

	// Recoverable errors for batch reporting. No parse rule records one:
	// every error the parser detects is fatal and aborts the file through
	// the error return, so Errs returns nil.
	errs []error
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the logger used for debug output.
func WithLogger(log *slog.Logger) Option {
	return func(p *Parser) { p.log = log }
}

// New creates a Parser over a stitched token stream. The buffer is used
// to recover raw selector text from spans.
func New(buf *source.Buffer, toks []lexer.Token, kw *lexer.Keywords, opts ...Option) *Parser {
	p := &Parser{buf: buf, toks: toks, kw: kw, log: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Errs returns the recoverable errors accumulated during the parse.
func (p *Parser) Errs() []error { return p.errs }

// ParseDocument parses the whole stream into a Document rooted at file.
func (p *Parser) ParseDocument() (*ast.Document, error) {
	doc := &ast.Document{File: p.buf.File()}
	startSpan := p.peek().Span

	for !p.at(lexer.EOF) {
		node, err := p.parseTopLevel()
		if err != nil {
			return nil, err
		}
		if node != nil {
			doc.Children = append(doc.Children, node)
		}
	}
	doc.Loc = source.Span{Start: startSpan.Start, End: p.peek().Span.End}
	return doc, nil
}

// parseTopLevel parses one top-level construct.
func (p *Parser) parseTopLevel() (ast.Node, error) {
	tok := p.peek()
	switch tok.Kind {
	case lexer.BracketKeyword:
		return p.parseBracketDecl()

	case lexer.GeneratorComment:
		p.advance()
		return &ast.Comment{Base: at(tok.Span), Text: commentText(tok.Text), Generator: true}, nil

	case lexer.AtKeyword:
		return p.parseUsage()

	case lexer.Ident:
		switch p.kw.Canonical(tok.Text) {
		case lexer.KwUse:
			return p.parseUse()
		case lexer.KwStyle:
			return p.parseStyle()
		case lexer.KwScript:
			return p.parseScript()
		case lexer.KwText:
			return p.parseText()
		}
		return p.parseElement()

	default:
		return nil, p.fatalf(tok, "element, declaration or directive")
	}
}

// parseUse parses "use html5;".
func (p *Parser) parseUse() (ast.Node, error) {
	start := p.advance() // use
	dir := p.peek()
	if dir.Kind != lexer.Ident && dir.Kind != lexer.Number {
		return nil, p.fatalf(dir, "document type")
	}
	p.advance()
	if _, err := p.expect(lexer.Semi); err != nil {
		return nil, err
	}
	return &ast.Use{Base: between(start.Span, dir.Span), Directive: dir.Text}, nil
}

// --- token stream helpers ---

// peek returns the current token, skipping ordinary comments.
func (p *Parser) peek() lexer.Token {
	for p.pos < len(p.toks) && p.toks[p.pos].Kind == lexer.Comment {
		p.pos++
	}
	if p.pos >= len(p.toks) {
		if len(p.toks) > 0 {
			last := p.toks[len(p.toks)-1]
			return lexer.Token{Kind: lexer.EOF, Span: source.Span{Start: last.Span.End, End: last.Span.End}}
		}
		return lexer.Token{Kind: lexer.EOF}
	}
	return p.toks[p.pos]
}

// peekAhead returns the nth token after the current one.
func (p *Parser) peekAhead(n int) lexer.Token {
	saved := p.pos
	var tok lexer.Token
	for i := 0; i <= n; i++ {
		tok = p.peek()
		if tok.Kind == lexer.EOF {
			break
		}
		p.pos++
	}
	p.pos = saved
	return tok
}

func (p *Parser) at(kind lexer.Kind) bool { return p.peek().Kind == kind }

// atKeyword reports whether the current token is an Ident meaning the
// canonical keyword.
func (p *Parser) atKeyword(canonical string) bool {
	tok := p.peek()
	return tok.Kind == lexer.Ident && p.kw.Canonical(tok.Text) == canonical
}

func (p *Parser) advance() lexer.Token {
	tok := p.peek()
	if tok.Kind != lexer.EOF {
		p.pos++
	}
	return tok
}

func (p *Parser) expect(kind lexer.Kind) (lexer.Token, error) {
	tok := p.peek()
	if tok.Kind != kind {
		return tok, p.fatalf(tok, kind.String())
	}
	p.advance()
	return tok, nil
}

// accept consumes the current token when it matches.
func (p *Parser) accept(kind lexer.Kind) (lexer.Token, bool) {
	if p.at(kind) {
		return p.advance(), true
	}
	return lexer.Token{}, false
}

// sliceBetween recovers the raw source text from the start of one token
// to the end of another.
func (p *Parser) sliceBetween(from, to lexer.Token) string {
	return strings.TrimSpace(p.buf.Slice(source.Span{Start: from.Span.Start, End: to.Span.End}))
}

// parseIndexSuffix parses an optional "[i]" suffix; -1 means absent.
func (p *Parser) parseIndexSuffix() (int, error) {
	if !p.at(lexer.LBracket) {
		return -1, nil
	}
	p.advance()
	num, err := p.expect(lexer.Number)
	if err != nil {
		return -1, err
	}
	idx, convErr := strconv.Atoi(num.Text)
	if convErr != nil {
		return -1, p.fatalf(num, "integer index")
	}
	if _, err := p.expect(lexer.RBracket); err != nil {
		return -1, err
	}
	return idx, nil
}

func at(sp source.Span) ast.Base { return ast.Base{Loc: sp} }

func between(start, end source.Span) ast.Base {
	return ast.Base{Loc: source.Span{Start: start.Start, End: end.End}}
}

// commentText strips the leading marker from a comment token's text.
func commentText(text string) string {
	text = strings.TrimPrefix(text, "#")
	text = strings.TrimPrefix(text, "//")
	return strings.TrimSpace(text)
}
