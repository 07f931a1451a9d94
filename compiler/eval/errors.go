// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package eval

import "errors"

// Sentinel errors for expression evaluation.
var (
	// ErrUnitMismatch indicates incompatible units on a numeric operator.
	ErrUnitMismatch = errors.New("mismatched units")

	// ErrDivisionByZero indicates a zero divisor.
	ErrDivisionByZero = errors.New("division by zero")

	// ErrCyclicProperty indicates property references that loop back on
	// themselves.
	ErrCyclicProperty = errors.New("cyclic property dependency")

	// ErrBadOperands indicates an operator applied to value kinds it does
	// not support (subtracting or multiplying strings). Unit conflicts on
	// numbers, including multiplying two unit-carrying numbers, report
	// ErrUnitMismatch instead.
	ErrBadOperands = errors.New("unsupported operands")

	// ErrTargetNotFound indicates a property reference whose selector or
	// property matches nothing in the document.
	ErrTargetNotFound = errors.New("referenced property not found")
)
