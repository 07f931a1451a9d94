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

// parseBracketDecl dispatches on the bracket keyword.
func (p *Parser) parseBracketDecl() (ast.Node, error) {
	tok := p.peek()
	switch tok.Text {
	case "Template":
		return p.parseDefinition(false)
	case "Custom":
		return p.parseDefinition(true)
	case "Origin":
		return p.parseOrigin()
	case "Import":
		return p.parseImport()
	case "Namespace":
		return p.parseNamespace()
	case "Configuration":
		return p.parseConfiguration()
	case "Info":
		return p.parseInfo()
	case "Export":
		return p.parseExport()
	default:
		return nil, p.fatalf(tok, "declaration keyword")
	}
}

func defKindOf(word string) (ast.DefKind, bool) {
	switch word {
	case "Style":
		return ast.DefStyle, true
	case "Element":
		return ast.DefElement, true
	case "Var":
		return ast.DefVar, true
	default:
		return 0, false
	}
}

// parseDefinition parses [Template]/[Custom] @Kind Name { body }.
//
// Inside the body, "inherit @Kind Parent;" statements populate the
// inheritance list; everything else is body content. Custom bodies may
// additionally contain specialization operations.
func (p *Parser) parseDefinition(custom bool) (ast.Node, error) {
	start := p.advance() // [Template] or [Custom]
	atTok, err := p.expect(lexer.AtKeyword)
	if err != nil {
		return nil, err
	}
	kind, ok := defKindOf(atTok.Text)
	if !ok {
		return nil, p.fatalf(atTok, "@Style, @Element or @Var")
	}
	name := p.peek()
	if name.Kind != lexer.Ident && name.Kind != lexer.Literal {
		return nil, p.fatalf(name, "definition name")
	}
	p.advance()
	if _, err := p.expect(lexer.LBrace); err != nil {
		return nil, err
	}

	var inherits []string
	var body []ast.Node
	for !p.at(lexer.RBrace) && !p.at(lexer.EOF) {
		if p.atKeyword(lexer.KwInherit) {
			p.advance()
			// Optional repeated @Kind before the parent name.
			if p.at(lexer.AtKeyword) {
				p.advance()
			}
			parent := p.peek()
			if parent.Kind != lexer.Ident && parent.Kind != lexer.Literal {
				return nil, p.fatalf(parent, "parent name")
			}
			p.advance()
			inherits = append(inherits, parent.Text)
			if _, err := p.expect(lexer.Semi); err != nil {
				return nil, err
			}
			continue
		}

		var child ast.Node
		var err error
		switch kind {
		case ast.DefStyle:
			// Style bodies parse like local style blocks.
			if custom {
				child, err = p.parseStyleCustomChild()
			} else {
				children, berr := p.parseStyleBody()
				if berr != nil {
					return nil, berr
				}
				body = append(body, children...)
				continue
			}
		case ast.DefVar:
			child, err = p.parseProperty()
		default:
			if custom {
				child, err = p.parseSpecializationChild()
			} else {
				child, err = p.parseElementChild()
			}
		}
		if err != nil {
			return nil, err
		}
		if child != nil {
			body = append(body, child)
		}
	}
	close, err := p.expect(lexer.RBrace)
	if err != nil {
		return nil, err
	}

	if custom {
		return &ast.Custom{
			Base: between(start.Span, close.Span),
			Kind: kind, Name: name.Text, Inherits: inherits, Body: body,
		}, nil
	}
	return &ast.Template{
		Base: between(start.Span, close.Span),
		Kind: kind, Name: name.Text, Inherits: inherits, Body: body,
	}, nil
}

// parseStyleCustomChild parses one entry of a [Custom] @Style body, where
// specialization ops mix with style content.
func (p *Parser) parseStyleCustomChild() (ast.Node, error) {
	switch {
	case p.atKeyword(lexer.KwDelete):
		return p.parseDeleteOp()
	case p.atKeyword(lexer.KwInsert):
		return p.parseInsertOp()
	default:
		children, err := p.parseStyleBodyOne()
		if err != nil {
			return nil, err
		}
		return children, nil
	}
}

// parseStyleBodyOne parses exactly one style-body construct.
func (p *Parser) parseStyleBodyOne() (ast.Node, error) {
	tok := p.peek()
	switch {
	case tok.Kind == lexer.AtKeyword:
		return p.parseUsage()
	case p.ruleAhead():
		return p.parseRule()
	case tok.Kind == lexer.Ident || tok.Kind == lexer.Literal:
		return p.parseProperty()
	default:
		return nil, p.fatalf(tok, "style property or selector rule")
	}
}

// parseOrigin parses origin definitions "[Origin] @Type [name] { raw }"
// and references "[Origin] @Type name;".
func (p *Parser) parseOrigin() (ast.Node, error) {
	start := p.advance() // [Origin]
	atTok, err := p.expect(lexer.AtKeyword)
	if err != nil {
		return nil, err
	}
	o := &ast.Origin{Type: atTok.Text}

	if nameTok, ok := p.accept(lexer.Ident); ok {
		o.Name = nameTok.Text
	}
	if raw, ok := p.accept(lexer.RawBody); ok {
		// Scanner already split the body out; the braces around it stay
		// in the CHTL stream.
		o.Placeholder = raw.Placeholder
		close, err := p.expect(lexer.RBrace)
		if err != nil {
			return nil, err
		}
		o.Base = between(start.Span, close.Span)
		return o, nil
	}
	if _, ok := p.accept(lexer.LBrace); ok {
		raw, err := p.expect(lexer.RawBody)
		if err != nil {
			return nil, err
		}
		o.Placeholder = raw.Placeholder
		close, err := p.expect(lexer.RBrace)
		if err != nil {
			return nil, err
		}
		o.Base = between(start.Span, close.Span)
		return o, nil
	}
	end, err := p.expect(lexer.Semi)
	if err != nil {
		return nil, err
	}
	o.Base = between(start.Span, end.Span)
	return o, nil
}

// parseImport parses "[Import] @Kind [Name] from <path> [as Alias];".
func (p *Parser) parseImport() (ast.Node, error) {
	start := p.advance() // [Import]
	atTok, err := p.expect(lexer.AtKeyword)
	if err != nil {
		return nil, err
	}
	imp := &ast.Import{}
	switch atTok.Text {
	case "Html":
		imp.Kind = ast.ImportHTML
	case "Style", "CSS", "Css":
		imp.Kind = ast.ImportCSS
	case "JavaScript", "Js":
		imp.Kind = ast.ImportJS
	case "Chtl":
		imp.Kind = ast.ImportCHTL
	case "CJmod", "Cjmod":
		imp.Kind = ast.ImportCJMOD
	default:
		return nil, p.fatalf(atTok, "import kind")
	}

	// Optional specific name before 'from'.
	if tok := p.peek(); (tok.Kind == lexer.Ident || tok.Kind == lexer.Literal) && !p.atKeyword(lexer.KwFrom) {
		imp.From = tok.Text
		p.advance()
	}

	if !p.atKeyword(lexer.KwFrom) {
		return nil, p.fatalf(p.peek(), "'from'")
	}
	p.advance()

	path := p.peek()
	switch path.Kind {
	case lexer.String, lexer.Ident, lexer.Literal:
		imp.Path = path.Text
		p.advance()
	default:
		return nil, p.fatalf(path, "import path")
	}

	if p.atKeyword(lexer.KwAs) {
		p.advance()
		alias, err := p.expect(lexer.Ident)
		if err != nil {
			return nil, err
		}
		imp.Alias = alias.Text
	}
	end, err := p.expect(lexer.Semi)
	if err != nil {
		return nil, err
	}
	imp.Base = between(start.Span, end.Span)
	return imp, nil
}

// parseNamespace parses "[Namespace] Name { … }"; namespaces nest.
func (p *Parser) parseNamespace() (ast.Node, error) {
	start := p.advance() // [Namespace]
	name, err := p.expect(lexer.Ident)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LBrace); err != nil {
		return nil, err
	}
	ns := &ast.Namespace{Name: name.Text}
	for !p.at(lexer.RBrace) && !p.at(lexer.EOF) {
		child, err := p.parseTopLevel()
		if err != nil {
			return nil, err
		}
		if child != nil {
			ns.Children = append(ns.Children, child)
		}
	}
	close, err := p.expect(lexer.RBrace)
	if err != nil {
		return nil, err
	}
	ns.Base = between(start.Span, close.Span)
	return ns, nil
}

// parseConfiguration parses "[Configuration] { KEY: value; … }".
func (p *Parser) parseConfiguration() (ast.Node, error) {
	start := p.advance() // [Configuration]
	if _, err := p.expect(lexer.LBrace); err != nil {
		return nil, err
	}
	cfg := &ast.Configuration{Entries: make(map[string]string)}
	for !p.at(lexer.RBrace) && !p.at(lexer.EOF) {
		key := p.peek()
		if key.Kind != lexer.Ident && key.Kind != lexer.Literal {
			return nil, p.fatalf(key, "configuration key")
		}
		p.advance()
		if _, err := p.expect(lexer.Colon); err != nil {
			return nil, err
		}
		first := p.peek()
		last := first
		for !p.at(lexer.Semi) && !p.at(lexer.RBrace) && !p.at(lexer.EOF) {
			last = p.advance()
		}
		value := p.sliceBetween(first, last)
		if first.Kind == lexer.String {
			value = first.Text
		}
		p.accept(lexer.Semi)
		if _, ok := cfg.Entries[key.Text]; !ok {
			cfg.Order = append(cfg.Order, key.Text)
		}
		cfg.Entries[key.Text] = value
	}
	close, err := p.expect(lexer.RBrace)
	if err != nil {
		return nil, err
	}
	cfg.Base = between(start.Span, close.Span)
	return cfg, nil
}

// parseInfo parses the [Info] metadata block of a module info file.
func (p *Parser) parseInfo() (ast.Node, error) {
	start := p.advance() // [Info]
	if _, err := p.expect(lexer.LBrace); err != nil {
		return nil, err
	}
	info := &ast.Info{Entries: make(map[string]string)}
	for !p.at(lexer.RBrace) && !p.at(lexer.EOF) {
		key := p.peek()
		if key.Kind != lexer.Ident && key.Kind != lexer.Literal {
			return nil, p.fatalf(key, "info key")
		}
		p.advance()
		sep := p.peek()
		if sep.Kind != lexer.Colon && sep.Kind != lexer.Assign {
			return nil, p.fatalf(sep, "':' or '='")
		}
		p.advance()
		first := p.peek()
		last := first
		for !p.at(lexer.Semi) && !p.at(lexer.RBrace) && !p.at(lexer.EOF) {
			last = p.advance()
		}
		value := p.sliceBetween(first, last)
		if first.Kind == lexer.String {
			value = first.Text
		}
		p.accept(lexer.Semi)
		info.Entries[key.Text] = value
	}
	close, err := p.expect(lexer.RBrace)
	if err != nil {
		return nil, err
	}
	info.Base = between(start.Span, close.Span)
	return info, nil
}

// parseExport parses "[Export] { @Style A, B; @Element C; }".
func (p *Parser) parseExport() (ast.Node, error) {
	start := p.advance() // [Export]
	if _, err := p.expect(lexer.LBrace); err != nil {
		return nil, err
	}
	exp := &ast.Export{}
	for !p.at(lexer.RBrace) && !p.at(lexer.EOF) {
		atTok, err := p.expect(lexer.AtKeyword)
		if err != nil {
			return nil, err
		}
		kind, ok := defKindOf(atTok.Text)
		if !ok {
			return nil, p.fatalf(atTok, "@Style, @Element or @Var")
		}
		for {
			name := p.peek()
			if name.Kind != lexer.Ident && name.Kind != lexer.Literal {
				return nil, p.fatalf(name, "exported name")
			}
			p.advance()
			exp.Items = append(exp.Items, ast.ExportItem{Kind: kind, Name: name.Text})
			if _, ok := p.accept(lexer.Comma); !ok {
				break
			}
		}
		p.accept(lexer.Semi)
	}
	close, err := p.expect(lexer.RBrace)
	if err != nil {
		return nil, err
	}
	exp.Base = between(start.Span, close.Span)
	return exp, nil
}

// ScanConfigEntries extracts [Configuration] entries from a raw token
// stream without building an AST. The driver runs this pre-pass before
// parsing so KEYWORD_* rebindings apply to the whole file.
func ScanConfigEntries(toks []lexer.Token) map[string]string {
	entries := make(map[string]string)
	for i := 0; i < len(toks); i++ {
		if toks[i].Kind != lexer.BracketKeyword || toks[i].Text != "Configuration" {
			continue
		}
		j := i + 1
		if j >= len(toks) || toks[j].Kind != lexer.LBrace {
			continue
		}
		j++
		for j < len(toks) && toks[j].Kind != lexer.RBrace {
			if toks[j].Kind != lexer.Ident && toks[j].Kind != lexer.Literal {
				j++
				continue
			}
			key := toks[j].Text
			j++
			if j >= len(toks) || toks[j].Kind != lexer.Colon {
				continue
			}
			j++
			var value string
			for j < len(toks) && toks[j].Kind != lexer.Semi && toks[j].Kind != lexer.RBrace {
				if value != "" {
					value += " "
				}
				value += toks[j].Text
				j++
			}
			if j < len(toks) && toks[j].Kind == lexer.Semi {
				j++
			}
			entries[key] = value
		}
		i = j
	}
	return entries
}
