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
	"github.com/AleutianAI/chtl/compiler/lexer"
	"github.com/AleutianAI/chtl/compiler/scanner"
	"github.com/AleutianAI/chtl/compiler/source"
)

// Stitch turns an ordered fragment list into one token stream: CHTL
// fragments are lexed, every other fragment becomes a single RawBody
// token carrying its placeholder key.
func Stitch(buf *source.Buffer, frags []scanner.Fragment, kw *lexer.Keywords) ([]lexer.Token, error) {
	var toks []lexer.Token
	for _, frag := range frags {
		if frag.Kind == scanner.KindCHTL {
			l := lexer.New(buf, frag.Span, kw)
			ft, err := l.Tokens()
			if err != nil {
				return nil, err
			}
			toks = append(toks, ft...)
			continue
		}
		toks = append(toks, lexer.Token{
			Kind:        lexer.RawBody,
			Span:        frag.Span,
			Placeholder: frag.Placeholder,
		})
	}
	return toks, nil
}
