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
	"errors"
	"fmt"

	"github.com/AleutianAI/chtl/compiler/lexer"
	"github.com/AleutianAI/chtl/compiler/source"
)

// ErrSyntax is the sentinel every parse error wraps.
var ErrSyntax = errors.New("syntax error")

// ParseError carries the offending token span and what was expected.
type ParseError struct {
	Span     source.Span
	Expected string
	Got      string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d:%d: expected %s, got %s",
		e.Span.Start.File, e.Span.Start.Line, e.Span.Start.Column, e.Expected, e.Got)
}

// Unwrap returns ErrSyntax.
func (e *ParseError) Unwrap() error { return ErrSyntax }

func (p *Parser) fatalf(tok lexer.Token, expected string) error {
	got := tok.Kind.String()
	if tok.Text != "" && tok.Kind != lexer.EOF {
		got = fmt.Sprintf("%s %q", got, tok.Text)
	}
	return &ParseError{Span: tok.Span, Expected: expected, Got: got}
}
