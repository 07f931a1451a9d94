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
	"github.com/AleutianAI/chtl/compiler/ast"
	"github.com/AleutianAI/chtl/compiler/lexer"
)

// parseElement parses "tag { body }".
func (p *Parser) parseElement() (ast.Node, error) {
	tag, err := p.expect(lexer.Ident)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LBrace); err != nil {
		return nil, err
	}
	el := &ast.Element{Tag: tag.Text}
	for !p.at(lexer.RBrace) && !p.at(lexer.EOF) {
		child, err := p.parseElementChild()
		if err != nil {
			return nil, err
		}
		if child != nil {
			el.Children = append(el.Children, child)
		}
	}
	close, err := p.expect(lexer.RBrace)
	if err != nil {
		return nil, err
	}
	el.Base = between(tag.Span, close.Span)
	return el, nil
}

// parseElementChild parses one construct inside an element body.
func (p *Parser) parseElementChild() (ast.Node, error) {
	tok := p.peek()
	switch tok.Kind {
	case lexer.GeneratorComment:
		p.advance()
		return &ast.Comment{Base: at(tok.Span), Text: commentText(tok.Text), Generator: true}, nil

	case lexer.AtKeyword:
		return p.parseUsage()

	case lexer.BracketKeyword:
		return p.parseBracketDecl()

	case lexer.Ident, lexer.Literal:
		switch p.kw.Canonical(tok.Text) {
		case lexer.KwText:
			return p.parseText()
		case lexer.KwStyle:
			return p.parseStyle()
		case lexer.KwScript:
			return p.parseScript()
		case lexer.KwExcept:
			return p.parseConstraint()
		case lexer.KwDelete:
			return p.parseDeleteOp()
		case lexer.KwInsert:
			return p.parseInsertOp()
		case lexer.KwInherit:
			return nil, p.fatalf(tok, "inherit is only valid inside template bodies")
		}
		// Property or child element, decided by the separator.
		next := p.peekAhead(1)
		if next.Kind == lexer.Colon || next.Kind == lexer.Assign {
			return p.parseProperty()
		}
		if next.Kind == lexer.LBrace {
			return p.parseElement()
		}
		return nil, p.fatalf(next, "':' for a property or '{' for a child element")

	default:
		return nil, p.fatalf(tok, "element content")
	}
}

// parseProperty parses "name: expr;" or "name = expr;".
func (p *Parser) parseProperty() (ast.Node, error) {
	name := p.advance()
	sep := p.peek()
	if sep.Kind != lexer.Colon && sep.Kind != lexer.Assign {
		return nil, p.fatalf(sep, "':' or '='")
	}
	p.advance()
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	end, err := p.expect(lexer.Semi)
	if err != nil {
		return nil, err
	}
	return &ast.Property{Base: between(name.Span, end.Span), Name: name.Text, Value: value}, nil
}

// parseText parses a text block: text { "Hello" "World" }.
func (p *Parser) parseText() (ast.Node, error) {
	start := p.advance() // text
	if _, err := p.expect(lexer.LBrace); err != nil {
		return nil, err
	}
	var value string
	for !p.at(lexer.RBrace) && !p.at(lexer.EOF) {
		tok := p.peek()
		switch tok.Kind {
		case lexer.String, lexer.Ident, lexer.Literal, lexer.Number:
			if value != "" {
				value += " "
			}
			value += tok.Text
			p.advance()
		case lexer.Semi, lexer.Comma:
			p.advance()
		default:
			return nil, p.fatalf(tok, "text content")
		}
	}
	close, err := p.expect(lexer.RBrace)
	if err != nil {
		return nil, err
	}
	return &ast.Text{Base: between(start.Span, close.Span), Value: value}, nil
}

// parseStyle parses a style block. Global style blocks carry a raw CSS
// placeholder the scanner split out; local blocks (and global blocks
// nested inside namespaces, which the scanner leaves in the CHTL
// stream) parse as property/rule/usage lists.
func (p *Parser) parseStyle() (ast.Node, error) {
	start := p.advance() // style
	if _, err := p.expect(lexer.LBrace); err != nil {
		return nil, err
	}

	st := &ast.Style{}
	if raw, ok := p.accept(lexer.RawBody); ok {
		st.Placeholder = raw.Placeholder
	} else {
		// Style blocks the scanner left in the CHTL stream (local blocks,
		// and global blocks nested inside namespaces) parse structurally.
		children, err := p.parseStyleBody()
		if err != nil {
			return nil, err
		}
		st.Children = children
	}
	close, err := p.expect(lexer.RBrace)
	if err != nil {
		return nil, err
	}
	st.Base = between(start.Span, close.Span)
	return st, nil
}

// parseStyleBody parses the interior of a local style block or rule.
func (p *Parser) parseStyleBody() ([]ast.Node, error) {
	var children []ast.Node
	for !p.at(lexer.RBrace) && !p.at(lexer.EOF) {
		tok := p.peek()
		switch {
		case tok.Kind == lexer.AtKeyword:
			node, err := p.parseUsage()
			if err != nil {
				return nil, err
			}
			children = append(children, node)

		case tok.Kind == lexer.GeneratorComment:
			p.advance()
			children = append(children, &ast.Comment{Base: at(tok.Span), Text: commentText(tok.Text), Generator: true})

		case p.atKeyword(lexer.KwDelete):
			node, err := p.parseDeleteOp()
			if err != nil {
				return nil, err
			}
			children = append(children, node)

		case p.atKeyword(lexer.KwInherit):
			node, err := p.parseInheritAsUsage()
			if err != nil {
				return nil, err
			}
			children = append(children, node)

		case p.ruleAhead():
			node, err := p.parseRule()
			if err != nil {
				return nil, err
			}
			children = append(children, node)

		case tok.Kind == lexer.Ident || tok.Kind == lexer.Literal:
			node, err := p.parseProperty()
			if err != nil {
				return nil, err
			}
			children = append(children, node)

		default:
			return nil, p.fatalf(tok, "style property or selector rule")
		}
	}
	return children, nil
}

// ruleAhead distinguishes "div:hover { … }" from "color: red;" by which
// of '{' or ';' comes first.
func (p *Parser) ruleAhead() bool {
	tok := p.peek()
	if tok.Kind == lexer.Amp || tok.Kind == lexer.Dot || tok.Kind == lexer.Hash {
		return true
	}
	if tok.Kind != lexer.Ident && tok.Kind != lexer.Literal {
		return false
	}
	for n := 0; ; n++ {
		ahead := p.peekAhead(n)
		switch ahead.Kind {
		case lexer.LBrace:
			return true
		case lexer.Semi, lexer.RBrace, lexer.EOF:
			return false
		}
	}
}

// parseRule parses a nested selector rule. The selector keeps its raw
// source spelling; '&' resolves at emit time.
func (p *Parser) parseRule() (ast.Node, error) {
	first := p.peek()
	last := first
	for !p.at(lexer.LBrace) && !p.at(lexer.EOF) {
		last = p.advance()
	}
	if _, err := p.expect(lexer.LBrace); err != nil {
		return nil, err
	}
	selector := p.sliceBetween(first, last)

	children, err := p.parseStyleBody()
	if err != nil {
		return nil, err
	}
	close, err := p.expect(lexer.RBrace)
	if err != nil {
		return nil, err
	}
	return &ast.Rule{Base: between(first.Span, close.Span), Selector: selector, Children: children}, nil
}

// parseScript parses "script { <raw body> }".
func (p *Parser) parseScript() (ast.Node, error) {
	start := p.advance() // script
	if _, err := p.expect(lexer.LBrace); err != nil {
		return nil, err
	}
	sc := &ast.Script{}
	if raw, ok := p.accept(lexer.RawBody); ok {
		sc.Placeholder = raw.Placeholder
	}
	close, err := p.expect(lexer.RBrace)
	if err != nil {
		return nil, err
	}
	sc.Base = between(start.Span, close.Span)
	return sc, nil
}

// parseUsage parses "@Kind Name", "@Var Name(key)", with optional [i]
// suffix, "from ns" clause and override block.
func (p *Parser) parseUsage() (ast.Node, error) {
	atTok, err := p.expect(lexer.AtKeyword)
	if err != nil {
		return nil, err
	}
	var kind ast.DefKind
	switch atTok.Text {
	case "Style":
		kind = ast.DefStyle
	case "Element":
		kind = ast.DefElement
	case "Var":
		kind = ast.DefVar
	default:
		return nil, p.fatalf(atTok, "@Style, @Element or @Var usage")
	}

	name := p.peek()
	if name.Kind != lexer.Ident && name.Kind != lexer.Literal {
		return nil, p.fatalf(name, "template or custom name")
	}
	p.advance()
	u := &ast.Usage{Kind: kind, Name: name.Text, Index: -1}

	if _, ok := p.accept(lexer.LParen); ok {
		key, err := p.expect(lexer.Ident)
		if err != nil {
			return nil, err
		}
		u.VarKey = key.Text
		if _, err := p.expect(lexer.RParen); err != nil {
			return nil, err
		}
	}

	idx, err := p.parseIndexSuffix()
	if err != nil {
		return nil, err
	}
	u.Index = idx

	if p.atKeyword(lexer.KwFrom) {
		p.advance()
		ns := p.peek()
		if ns.Kind != lexer.Ident && ns.Kind != lexer.Literal {
			return nil, p.fatalf(ns, "namespace name")
		}
		p.advance()
		u.From = ns.Text
	}

	end := name
	if _, ok := p.accept(lexer.LBrace); ok {
		for !p.at(lexer.RBrace) && !p.at(lexer.EOF) {
			child, err := p.parseSpecializationChild()
			if err != nil {
				return nil, err
			}
			if child != nil {
				u.Overrides = append(u.Overrides, child)
			}
		}
		close, err := p.expect(lexer.RBrace)
		if err != nil {
			return nil, err
		}
		end = close
	} else if semi, err := p.expect(lexer.Semi); err != nil {
		return nil, err
	} else {
		end = semi
	}
	u.Base = between(atTok.Span, end.Span)
	return u, nil
}

// parseSpecializationChild parses one entry of a usage override block or
// custom body: properties, elements, usages and specialization ops.
func (p *Parser) parseSpecializationChild() (ast.Node, error) {
	switch {
	case p.atKeyword(lexer.KwDelete):
		return p.parseDeleteOp()
	case p.atKeyword(lexer.KwInsert):
		return p.parseInsertOp()
	default:
		return p.parseElementChild()
	}
}

// parseConstraint parses "except a, b;".
func (p *Parser) parseConstraint() (ast.Node, error) {
	start := p.advance() // except
	c := &ast.Constraint{}
	for {
		tok := p.peek()
		switch tok.Kind {
		case lexer.Ident, lexer.Literal:
			c.Forbidden = append(c.Forbidden, tok.Text)
			p.advance()
		case lexer.AtKeyword, lexer.BracketKeyword:
			c.Forbidden = append(c.Forbidden, "@"+tok.Text)
			p.advance()
		default:
			return nil, p.fatalf(tok, "forbidden tag or type")
		}
		if _, ok := p.accept(lexer.Comma); !ok {
			break
		}
	}
	end, err := p.expect(lexer.Semi)
	if err != nil {
		return nil, err
	}
	c.Base = between(start.Span, end.Span)
	return c, nil
}

// parseDeleteOp parses "delete target[i];".
func (p *Parser) parseDeleteOp() (ast.Node, error) {
	start := p.advance() // delete
	first := p.peek()
	if first.Kind == lexer.Semi {
		return nil, p.fatalf(first, "delete target")
	}
	last := first
	for !p.at(lexer.Semi) && !p.at(lexer.LBracket) && !p.at(lexer.EOF) {
		last = p.advance()
	}
	target := p.sliceBetween(first, last)
	idx, err := p.parseIndexSuffix()
	if err != nil {
		return nil, err
	}
	end, err := p.expect(lexer.Semi)
	if err != nil {
		return nil, err
	}
	return &ast.DeleteOp{Base: between(start.Span, end.Span), Target: target, Index: idx}, nil
}

// parseInsertOp parses "insert before|after|replace anchor[i] { body }"
// and "insert at top|bottom { body }".
func (p *Parser) parseInsertOp() (ast.Node, error) {
	start := p.advance() // insert
	var pos ast.InsertPos
	tok := p.peek()
	switch p.kw.Canonical(tok.Text) {
	case lexer.KwBefore:
		pos = ast.InsertBefore
		p.advance()
	case lexer.KwAfter:
		pos = ast.InsertAfter
		p.advance()
	case lexer.KwReplace:
		pos = ast.InsertReplace
		p.advance()
	case lexer.KwAt:
		p.advance()
		where := p.peek()
		switch p.kw.Canonical(where.Text) {
		case lexer.KwTop:
			pos = ast.InsertAtTop
		case lexer.KwBottom:
			pos = ast.InsertAtBottom
		default:
			return nil, p.fatalf(where, "'top' or 'bottom'")
		}
		p.advance()
	default:
		return nil, p.fatalf(tok, "insert position")
	}

	op := &ast.InsertOp{Pos: pos, Index: -1}
	if pos == ast.InsertBefore || pos == ast.InsertAfter || pos == ast.InsertReplace {
		first := p.peek()
		last := first
		for !p.at(lexer.LBrace) && !p.at(lexer.LBracket) && !p.at(lexer.EOF) {
			last = p.advance()
		}
		op.Anchor = p.sliceBetween(first, last)
		idx, err := p.parseIndexSuffix()
		if err != nil {
			return nil, err
		}
		op.Index = idx
	}

	if _, err := p.expect(lexer.LBrace); err != nil {
		return nil, err
	}
	for !p.at(lexer.RBrace) && !p.at(lexer.EOF) {
		child, err := p.parseElementChild()
		if err != nil {
			return nil, err
		}
		if child != nil {
			op.Body = append(op.Body, child)
		}
	}
	close, err := p.expect(lexer.RBrace)
	if err != nil {
		return nil, err
	}
	op.Base = between(start.Span, close.Span)
	return op, nil
}

// parseInheritAsUsage parses "inherit @Style Name;" inside a style body,
// yielding a Usage node that the resolver merges like any other.
func (p *Parser) parseInheritAsUsage() (ast.Node, error) {
	p.advance() // inherit
	return p.parseUsage()
}
