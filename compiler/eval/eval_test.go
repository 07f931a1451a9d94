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

import (
	"errors"
	"testing"

	"github.com/AleutianAI/chtl/compiler/ast"
)

func num(v float64, unit string) *ast.NumberLit { return &ast.NumberLit{Value: v, Unit: unit} }
func str(s string) *ast.StringLit               { return &ast.StringLit{Raw: s} }

func evalExpr(t *testing.T, e *Evaluator, expr ast.Expr) Value {
	t.Helper()
	v, err := e.Eval(expr)
	if err != nil {
		t.Fatalf("unexpected eval error: %v", err)
	}
	return v
}

func TestEval_Literals(t *testing.T) {
	e := New(nil)
	v := evalExpr(t, e, num(16, "px"))
	if v.Kind != KindNumber || v.Num != 16 || v.Unit != "px" {
		t.Fatalf("v = %+v", v)
	}
	if got := v.Text(); got != "16px" {
		t.Errorf("Text() = %q", got)
	}
	if got := evalExpr(t, e, str("red")).Text(); got != "red" {
		t.Errorf("Text() = %q", got)
	}
}

func TestEval_UnitArithmetic(t *testing.T) {
	e := New(nil)

	tests := []struct {
		name string
		expr ast.Expr
		want string
	}{
		{"same units add", &ast.Binary{Op: ast.OpAdd, X: num(10, "px"), Y: num(6, "px")}, "16px"},
		{"unitless adopts unit", &ast.Binary{Op: ast.OpAdd, X: num(10, "px"), Y: num(6, "")}, "16px"},
		{"sub keeps unit", &ast.Binary{Op: ast.OpSub, X: num(10, "em"), Y: num(4, "em")}, "6em"},
		{"mul unitless right", &ast.Binary{Op: ast.OpMul, X: num(8, "px"), Y: num(2, "")}, "16px"},
		{"mul unitless left", &ast.Binary{Op: ast.OpMul, X: num(2, ""), Y: num(8, "px")}, "16px"},
		{"div same unit cancels", &ast.Binary{Op: ast.OpDiv, X: num(10, "px"), Y: num(5, "px")}, "2"},
		{"div by unitless", &ast.Binary{Op: ast.OpDiv, X: num(10, "px"), Y: num(4, "")}, "2.5px"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := evalExpr(t, e, tt.expr).Text(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEval_UnitMismatch(t *testing.T) {
	e := New(nil)
	_, err := e.Eval(&ast.Binary{Op: ast.OpAdd, X: num(1, "px"), Y: num(1, "em")})
	if !errors.Is(err, ErrUnitMismatch) {
		t.Fatalf("expected ErrUnitMismatch, got %v", err)
	}
	_, err = e.Eval(&ast.Binary{Op: ast.OpMul, X: num(1, "px"), Y: num(1, "px")})
	if !errors.Is(err, ErrUnitMismatch) {
		t.Fatalf("* with two units: expected ErrUnitMismatch, got %v", err)
	}
}

func TestEval_DivisionByZero(t *testing.T) {
	e := New(nil)
	_, err := e.Eval(&ast.Binary{Op: ast.OpDiv, X: num(1, ""), Y: num(0, "")})
	if !errors.Is(err, ErrDivisionByZero) {
		t.Fatalf("expected ErrDivisionByZero, got %v", err)
	}
}

func TestEval_StringConcat(t *testing.T) {
	e := New(nil)
	v := evalExpr(t, e, &ast.Binary{Op: ast.OpAdd, X: num(1, "px"), Y: str(" solid black")})
	if v.Text() != "1px solid black" {
		t.Errorf("got %q", v.Text())
	}
	_, err := e.Eval(&ast.Binary{Op: ast.OpSub, X: str("a"), Y: str("b")})
	if !errors.Is(err, ErrBadOperands) {
		t.Fatalf("expected ErrBadOperands, got %v", err)
	}
}

func TestEval_UnaryMinus(t *testing.T) {
	e := New(nil)
	if got := evalExpr(t, e, &ast.Unary{Op: ast.OpNeg, X: num(4, "px")}).Text(); got != "-4px" {
		t.Errorf("got %q", got)
	}
	if got := evalExpr(t, e, &ast.Unary{Op: ast.OpNeg, X: str("moz-fit")}).Text(); got != "-moz-fit" {
		t.Errorf("got %q", got)
	}
}

func TestEval_Ternary(t *testing.T) {
	e := New(nil)
	tests := []struct {
		cond ast.Expr
		want string
	}{
		{num(1, ""), "yes"},
		{num(0, ""), "no"},
		{str("anything"), "yes"},
		{str(""), "no"},
		{str("false"), "no"},
	}
	for _, tt := range tests {
		got := evalExpr(t, e, &ast.Ternary{Cond: tt.cond, Then: str("yes"), Else: str("no")}).Text()
		if got != tt.want {
			t.Errorf("cond %#v: got %q, want %q", tt.cond, got, tt.want)
		}
	}
}

func docWithBox(width ast.Expr) []ast.Node {
	return []ast.Node{
		&ast.Element{Tag: "div", Children: []ast.Node{
			&ast.Property{Name: "id", Value: str("box")},
			&ast.Style{Children: []ast.Node{
				&ast.Property{Name: "width", Value: width},
			}},
		}},
	}
}

func TestEval_PropertyRef(t *testing.T) {
	e := New(docWithBox(num(100, "px")))
	v := evalExpr(t, e, &ast.Binary{
		Op: ast.OpDiv,
		X:  &ast.PropertyRef{Selector: "#box", Property: "width"},
		Y:  num(2, ""),
	})
	if v.Text() != "50px" {
		t.Errorf("got %q", v.Text())
	}
}

func TestEval_PropertyRefByTag(t *testing.T) {
	e := New(docWithBox(num(40, "em")))
	v := evalExpr(t, e, &ast.PropertyRef{Selector: "div", Property: "width"})
	if v.Text() != "40em" {
		t.Errorf("got %q", v.Text())
	}
}

func TestEval_PropertyRefMissing(t *testing.T) {
	e := New(nil)
	_, err := e.Eval(&ast.PropertyRef{Selector: "#nope", Property: "width"})
	if !errors.Is(err, ErrTargetNotFound) {
		t.Fatalf("expected ErrTargetNotFound, got %v", err)
	}
}

func TestEval_CyclicPropertyDetection(t *testing.T) {
	// a.width references b.width which references a.width.
	aWidth := &ast.Property{Name: "width", Value: &ast.PropertyRef{Selector: "#b", Property: "width"}}
	bWidth := &ast.Property{Name: "width", Value: &ast.PropertyRef{Selector: "#a", Property: "width"}}
	roots := []ast.Node{
		&ast.Element{Tag: "div", Children: []ast.Node{
			&ast.Property{Name: "id", Value: str("a")},
			&ast.Style{Children: []ast.Node{aWidth}},
		}},
		&ast.Element{Tag: "div", Children: []ast.Node{
			&ast.Property{Name: "id", Value: str("b")},
			&ast.Style{Children: []ast.Node{bWidth}},
		}},
	}
	e := New(roots)
	_, err := e.Property(aWidth)
	if !errors.Is(err, ErrCyclicProperty) {
		t.Fatalf("expected ErrCyclicProperty, got %v", err)
	}
}

func TestEval_PropertyCacheMemoises(t *testing.T) {
	p := &ast.Property{Name: "width", Value: num(10, "px")}
	e := New(nil)
	v1, err := e.Property(p)
	if err != nil {
		t.Fatal(err)
	}
	v2, err := e.Property(p)
	if err != nil {
		t.Fatal(err)
	}
	if v1 != v2 {
		t.Errorf("cache returned different values: %+v vs %+v", v1, v2)
	}
}

func TestEval_VarLookup(t *testing.T) {
	vars := func(name, key string) (ast.Expr, bool) {
		if name == "Theme" && key == "accent" {
			return str("crimson"), true
		}
		return nil, false
	}
	e := New(nil, WithVarLookup(vars))
	v := evalExpr(t, e, &ast.Call{Name: "Theme", Args: []ast.Expr{str("accent")}})
	if v.Text() != "crimson" {
		t.Errorf("got %q", v.Text())
	}
}

func TestEval_UnknownFunctionPassesThrough(t *testing.T) {
	e := New(nil)
	v := evalExpr(t, e, &ast.Call{Name: "rgb", Args: []ast.Expr{num(255, ""), num(192, ""), num(203, "")}})
	if v.Text() != "rgb(255, 192, 203)" {
		t.Errorf("got %q", v.Text())
	}
}

func TestEval_RegisteredFunction(t *testing.T) {
	e := New(nil, WithFunc("double", func(args []Value) (Value, error) {
		return Number(args[0].Num*2, args[0].Unit), nil
	}))
	v := evalExpr(t, e, &ast.Call{Name: "double", Args: []ast.Expr{num(8, "px")}})
	if v.Text() != "16px" {
		t.Errorf("got %q", v.Text())
	}
}
