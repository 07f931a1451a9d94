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

import (
	"errors"
	"fmt"

	"github.com/AleutianAI/chtl/compiler/source"
)

// Sentinel errors for the CHTL lexer.
var (
	// ErrUnterminatedString indicates a string or block comment with no
	// closing delimiter inside the fragment.
	ErrUnterminatedString = errors.New("unterminated string literal")

	// ErrUnexpectedChar indicates a byte no token rule accepts.
	ErrUnexpectedChar = errors.New("unexpected character")
)

// LexError wraps a sentinel with the offending position.
type LexError struct {
	Err error
	Pos source.Position
}

// Error implements the error interface.
func (e *LexError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %v", e.Pos.File, e.Pos.Line, e.Pos.Column, e.Err)
}

// Unwrap returns the sentinel error.
func (e *LexError) Unwrap() error { return e.Err }

func (l *Lexer) errorAt(rel int, sentinel error) error {
	return &LexError{Err: sentinel, Pos: l.buf.Pos(l.base + rel)}
}
