// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ast

import "github.com/AleutianAI/chtl/compiler/source"

// Expr is implemented by every style-expression node.
type Expr interface {
	Span() source.Span
}

// ExprOp enumerates expression operators.
type ExprOp int

const (
	OpAdd ExprOp = iota
	OpSub
	OpMul
	OpDiv
	OpNeg
	OpPos
)

// String returns the operator's source spelling.
func (op ExprOp) String() string {
	switch op {
	case OpAdd, OpPos:
		return "+"
	case OpSub, OpNeg:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	default:
		return "?"
	}
}

// NumberLit is a numeric literal with an optional unit ("16px" -> 16, "px").
type NumberLit struct {
	Base
	Value float64
	Unit  string
}

// StringLit is a string literal. Quoted and unquoted source values both
// land here; Raw is the decoded text.
type StringLit struct {
	Base
	Raw string
}

// BoolLit is a boolean literal.
type BoolLit struct {
	Base
	Value bool
}

// Unary applies OpNeg or OpPos to its operand.
type Unary struct {
	Base
	Op ExprOp
	X  Expr
}

// Binary applies an arithmetic operator, or string concatenation for OpAdd.
type Binary struct {
	Base
	Op   ExprOp
	X, Y Expr
}

// Ternary is cond ? then : else.
type Ternary struct {
	Base
	Cond, Then, Else Expr
}

// PropertyRef references another element's effective property value, as
// in "width: #box.width / 2".
type PropertyRef struct {
	Base
	Selector string
	Property string
}

// Call invokes a registered function or a @Var template group lookup
// ("ThemeColor(primary)"). Resolution order is var templates first, then
// the CJMOD function registry.
type Call struct {
	Base
	Name string
	Args []Expr
}
