// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package cjmod

import "errors"

// Sentinel errors for the CJMOD surface.
var (
	// ErrEmptyPattern indicates an empty pattern string.
	ErrEmptyPattern = errors.New("empty pattern")

	// ErrMissingKeyword indicates a pattern that does not start with a
	// literal keyword.
	ErrMissingKeyword = errors.New("pattern must start with a keyword")

	// ErrBadPlaceholder indicates a malformed placeholder spelling.
	ErrBadPlaceholder = errors.New("malformed placeholder")

	// ErrMissingArgument indicates an explicitly required ($!) parameter
	// absent from the scanned source.
	ErrMissingArgument = errors.New("missing required argument")

	// ErrKeywordNotFound indicates the scanned source does not contain
	// the schema keyword.
	ErrKeywordNotFound = errors.New("keyword not found in source")

	// ErrUnknownFunction indicates a lowering request for an unregistered
	// keyword.
	ErrUnknownFunction = errors.New("unknown extension function")
)
