// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package scanner

import (
	"errors"
	"fmt"

	"github.com/AleutianAI/chtl/compiler/source"
)

// Sentinel errors for the unified scanner.
var (
	// ErrUnterminatedString indicates a string literal with no closing quote.
	ErrUnterminatedString = errors.New("unterminated string literal")

	// ErrUnterminatedComment indicates a block comment with no closing */.
	ErrUnterminatedComment = errors.New("unterminated block comment")

	// ErrUnterminatedBlock indicates a brace block with no closing }.
	ErrUnterminatedBlock = errors.New("unterminated block")
)

// ScanError wraps a sentinel with the position of the opening delimiter.
type ScanError struct {
	Err    error
	Opener source.Position
}

// Error implements the error interface.
func (e *ScanError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %v", e.Opener.File, e.Opener.Line, e.Opener.Column, e.Err)
}

// Unwrap returns the sentinel error.
func (e *ScanError) Unwrap() error { return e.Err }
