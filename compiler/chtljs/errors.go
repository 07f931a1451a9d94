// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package chtljs

import "errors"

// Sentinel errors for the CHTL-JS pipeline.
var (
	// ErrUnterminatedSelector indicates a "{{" with no closing "}}".
	ErrUnterminatedSelector = errors.New("unterminated enhanced selector")

	// ErrUnterminatedBlock indicates a construct block with no closing
	// brace.
	ErrUnterminatedBlock = errors.New("unterminated block")

	// ErrExpectedBlock indicates a construct keyword not followed by a
	// '{' block.
	ErrExpectedBlock = errors.New("expected '{' block")

	// ErrMissingChainTarget indicates "->listen"/"->delegate" with no
	// target expression before the arrow.
	ErrMissingChainTarget = errors.New("chain operator has no target")

	// ErrMalformedUtil indicates a util expression missing its
	// "-> change" or "-> then" arm.
	ErrMalformedUtil = errors.New("malformed util expression")

	// ErrMalformedEntry indicates an object entry without a key/value
	// separator.
	ErrMalformedEntry = errors.New("malformed block entry")
)
