// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package parser

import (
	"strconv"
	"strings"

	"github.com/AleutianAI/chtl/compiler/ast"
	"github.com/AleutianAI/chtl/compiler/lexer"
)

// parseExpr parses a property value: one expression, or a space/comma
// separated value list ("1px solid black"), which folds into a string
// concatenation chain so evaluation yields the serialized list.
func (p *Parser) parseExpr() (ast.Expr, error) {
	expr, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	for {
		sep := " "
		if _, ok := p.accept(lexer.Comma); ok {
			sep = ", "
		} else if !p.startsPrimary() {
			return expr, nil
		}
		next, err := p.parseTernary()
		if err != nil {
			return nil, err
		}
		glue := &ast.StringLit{Base: at(expr.Span()), Raw: sep}
		expr = &ast.Binary{
			Base: between(expr.Span(), next.Span()),
			Op:   ast.OpAdd,
			X:    &ast.Binary{Base: between(expr.Span(), next.Span()), Op: ast.OpAdd, X: expr, Y: glue},
			Y:    next,
		}
	}
}

func (p *Parser) startsPrimary() bool {
	switch p.peek().Kind {
	case lexer.Ident, lexer.Literal, lexer.Number, lexer.String, lexer.Hash:
		return true
	default:
		return false
	}
}

func (p *Parser) parseTernary() (ast.Expr, error) {
	cond, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if _, ok := p.accept(lexer.Question); !ok {
		return cond, nil
	}
	then, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Colon); err != nil {
		return nil, err
	}
	els, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	return &ast.Ternary{Base: between(cond.Span(), els.Span()), Cond: cond, Then: then, Else: els}, nil
}

func (p *Parser) parseAdditive() (ast.Expr, error) {
	x, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		var op ast.ExprOp
		switch p.peek().Kind {
		case lexer.Plus:
			op = ast.OpAdd
		case lexer.Minus:
			op = ast.OpSub
		default:
			return x, nil
		}
		p.advance()
		y, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		x = &ast.Binary{Base: between(x.Span(), y.Span()), Op: op, X: x, Y: y}
	}
}

func (p *Parser) parseMultiplicative() (ast.Expr, error) {
	x, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		var op ast.ExprOp
		switch p.peek().Kind {
		case lexer.Star:
			op = ast.OpMul
		case lexer.Slash:
			op = ast.OpDiv
		default:
			return x, nil
		}
		p.advance()
		y, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		x = &ast.Binary{Base: between(x.Span(), y.Span()), Op: op, X: x, Y: y}
	}
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	switch p.peek().Kind {
	case lexer.Minus:
		tok := p.advance()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Base: between(tok.Span, x.Span()), Op: ast.OpNeg, X: x}, nil
	case lexer.Plus:
		tok := p.advance()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Base: between(tok.Span, x.Span()), Op: ast.OpPos, X: x}, nil
	default:
		return p.parsePrimary()
	}
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	tok := p.peek()
	switch tok.Kind {
	case lexer.Number:
		p.advance()
		value, unit := splitNumber(tok.Text)
		return &ast.NumberLit{Base: at(tok.Span), Value: value, Unit: unit}, nil

	case lexer.String:
		p.advance()
		return &ast.StringLit{Base: at(tok.Span), Raw: tok.Text}, nil

	case lexer.Hash:
		// "#box.width" is a property reference; "#fff" and friends are
		// plain color values.
		p.advance()
		next := p.peek()
		switch next.Kind {
		case lexer.Literal:
			if sel, prop, ok := splitRef(next.Text); ok {
				p.advance()
				return &ast.PropertyRef{Base: between(tok.Span, next.Span), Selector: "#" + sel, Property: prop}, nil
			}
			p.advance()
			return &ast.StringLit{Base: between(tok.Span, next.Span), Raw: "#" + next.Text}, nil
		case lexer.Ident, lexer.Number:
			p.advance()
			return &ast.StringLit{Base: between(tok.Span, next.Span), Raw: "#" + next.Text}, nil
		default:
			return nil, p.fatalf(next, "color value or property reference")
		}

	case lexer.Ident:
		p.advance()
		if tok.Text == "true" || tok.Text == "false" {
			return &ast.BoolLit{Base: at(tok.Span), Value: tok.Text == "true"}, nil
		}
		if p.at(lexer.LParen) {
			return p.parseCall(tok)
		}
		return &ast.StringLit{Base: at(tok.Span), Raw: tok.Text}, nil

	case lexer.Literal:
		p.advance()
		if sel, prop, ok := splitRef(tok.Text); ok && htmlTags[sel] {
			return &ast.PropertyRef{Base: at(tok.Span), Selector: sel, Property: prop}, nil
		}
		return &ast.StringLit{Base: at(tok.Span), Raw: tok.Text}, nil

	case lexer.LParen:
		p.advance()
		inner, err := p.parseTernary()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RParen); err != nil {
			return nil, err
		}
		return inner, nil

	default:
		return nil, p.fatalf(tok, "expression")
	}
}

// parseCall parses "Name(arg, …)": a var-group lookup or a registered
// function call, resolved at evaluation time.
func (p *Parser) parseCall(name lexer.Token) (ast.Expr, error) {
	p.advance() // (
	call := &ast.Call{Name: name.Text}
	for !p.at(lexer.RParen) && !p.at(lexer.EOF) {
		arg, err := p.parseTernary()
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)
		if _, ok := p.accept(lexer.Comma); !ok {
			break
		}
	}
	close, err := p.expect(lexer.RParen)
	if err != nil {
		return nil, err
	}
	call.Base = between(name.Span, close.Span)
	return call, nil
}

// splitNumber separates the numeric value from a trailing unit suffix.
func splitNumber(text string) (float64, string) {
	i := 0
	for i < len(text) && (text[i] >= '0' && text[i] <= '9' || text[i] == '.') {
		i++
	}
	value, err := strconv.ParseFloat(text[:i], 64)
	if err != nil {
		return 0, text
	}
	return value, text[i:]
}

// htmlTags gates bare-tag property references: "div.width" is a
// reference, "logo.png" is a plain value. Id-prefixed references
// ("#box.width") are never ambiguous and bypass this set.
var htmlTags = map[string]bool{
	"a": true, "article": true, "aside": true, "body": true, "button": true,
	"canvas": true, "div": true, "footer": true, "form": true, "h1": true,
	"h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"header": true, "html": true, "img": true, "input": true, "label": true,
	"li": true, "main": true, "nav": true, "ol": true, "p": true,
	"section": true, "select": true, "span": true, "table": true,
	"td": true, "textarea": true, "th": true, "tr": true, "ul": true,
}

// splitRef splits "box.width" into selector and property. Only a single
// dot with identifier-shaped parts qualifies; anything else stays a
// plain unquoted value.
func splitRef(text string) (sel, prop string, ok bool) {
	i := strings.IndexByte(text, '.')
	if i <= 0 || i == len(text)-1 || strings.IndexByte(text[i+1:], '.') >= 0 {
		return "", "", false
	}
	return text[:i], text[i+1:], true
}
