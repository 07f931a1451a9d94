// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package lexer

import "github.com/AleutianAI/chtl/compiler/source"

// Kind enumerates CHTL token kinds.
type Kind int

const (
	// EOF terminates every token stream.
	EOF Kind = iota

	// Ident is an identifier: tag names, property names, template names.
	Ident

	// Literal is an unquoted value that is not a valid identifier, such
	// as urls or dotted names. CHTL permits identifiers-as-values without
	// quotes; both Ident and Literal may appear in value position.
	Literal

	// String is a single- or double-quoted string. Text holds the decoded
	// value without quotes.
	String

	// Number is a numeric literal, optionally with a trailing unit suffix
	// captured in the same token ("16px", "1.5em", "50%").
	Number

	// BracketKeyword is one of [Template] [Custom] [Origin] [Import]
	// [Namespace] [Configuration] [Info] [Export]. Text holds the inner
	// word.
	BracketKeyword

	// AtKeyword is one of @Style @Element @Var @Html @JavaScript @CSS
	// @Chtl @CJmod (or a user-registered origin type). Text holds the
	// word after '@'.
	AtKeyword

	// RawBody stands in for a non-CHTL fragment (script body, global
	// style body, origin body). Placeholder carries the store key.
	RawBody

	// GeneratorComment is a '# ...' comment emitted into the output.
	GeneratorComment

	// Comment is an ordinary // or /* */ comment, visible to the parser
	// but never emitted.
	Comment

	// Punctuation and operators.
	LBrace    // {
	RBrace    // }
	LBracket  // [
	RBracket  // ]
	LParen    // (
	RParen    // )
	Semi      // ;
	Colon     // :
	Comma     // ,
	Dot       // .
	Hash      // #
	Amp       // &
	Pipe      // |
	Question  // ?
	Bang      // !
	Assign    // =
	Plus      // +
	Minus     // -
	Star      // *
	Slash     // /
	Percent   // %
	Arrow     // ->
	ColonPair // ::
	Ellipsis  // ...
)

var kindNames = map[Kind]string{
	EOF:              "eof",
	Ident:            "identifier",
	Literal:          "literal",
	String:           "string",
	Number:           "number",
	BracketKeyword:   "bracket-keyword",
	AtKeyword:        "at-keyword",
	RawBody:          "raw-body",
	GeneratorComment: "generator-comment",
	Comment:          "comment",
	LBrace:           "'{'",
	RBrace:           "'}'",
	LBracket:         "'['",
	RBracket:         "']'",
	LParen:           "'('",
	RParen:           "')'",
	Semi:             "';'",
	Colon:            "':'",
	Comma:            "','",
	Dot:              "'.'",
	Hash:             "'#'",
	Amp:              "'&'",
	Pipe:             "'|'",
	Question:         "'?'",
	Bang:             "'!'",
	Assign:           "'='",
	Plus:             "'+'",
	Minus:            "'-'",
	Star:             "'*'",
	Slash:            "'/'",
	Percent:          "'%'",
	Arrow:            "'->'",
	ColonPair:        "'::'",
	Ellipsis:         "'...'",
}

// String returns the human-readable kind name used in diagnostics.
func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "unknown"
}

// Token is one lexed CHTL token.
type Token struct {
	Kind        Kind
	Text        string
	Span        source.Span
	Placeholder int // set only for RawBody tokens
}
