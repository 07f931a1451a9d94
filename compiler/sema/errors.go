// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package sema

import "errors"

// Sentinel errors for semantic resolution.
var (
	// ErrUndefinedReference indicates a usage of a name no definition
	// provides.
	ErrUndefinedReference = errors.New("undefined reference")

	// ErrCyclicInheritance indicates a definition that inherits from
	// itself, directly or transitively.
	ErrCyclicInheritance = errors.New("cyclic inheritance")

	// ErrAnchorNotFound indicates a specialization operation whose anchor
	// matches nothing in the effective body.
	ErrAnchorNotFound = errors.New("specialization anchor not found")

	// ErrConstraintViolation indicates a forbidden child tag or type.
	ErrConstraintViolation = errors.New("constraint violation")
)
