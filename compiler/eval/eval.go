// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package eval evaluates style-expression trees.
//
// Evaluation produces number-with-unit or string values. Cross-property
// references resolve against the instantiated document tree through a
// per-property cache whose tri-state entries (unvisited / evaluating /
// done) double as the cycle detector: hitting an "evaluating" entry
// during recursion is a cyclic-dependency error, with no exceptions used
// for control flow.
package eval

import (
	"fmt"
	"strings"

	"github.com/AleutianAI/chtl/compiler/ast"
)

// Func is a registered expression function. The CJMOD registry feeds
// these; unknown names serialise back to CSS function-call text.
type Func func(args []Value) (Value, error)

// VarLookup resolves a var-group key ("Theme(tableColor)") to its
// expression. ok is false when the name is not a var group.
type VarLookup func(name, key string) (ast.Expr, bool)

// cacheState tracks the lifecycle of one property's evaluation.
type cacheState int

const (
	stateEvaluating cacheState = iota
	stateDone
)

type cacheEntry struct {
	state cacheState
	value Value
}

// Evaluator evaluates expressions against one instantiated document.
//
// One Evaluator exists per compilation unit; its cache lives exactly as
// long as the compilation.
type Evaluator struct {
	roots []ast.Node
	vars  VarLookup
	funcs map[string]Func
	cache map[*ast.Property]*cacheEntry
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithVarLookup installs the var-group resolver.
func WithVarLookup(vars VarLookup) Option {
	return func(e *Evaluator) { e.vars = vars }
}

// WithFunc registers an expression function.
func WithFunc(name string, fn Func) Option {
	return func(e *Evaluator) { e.funcs[name] = fn }
}

// New creates an Evaluator over the instantiated document roots.
func New(roots []ast.Node, opts ...Option) *Evaluator {
	e := &Evaluator{
		roots: roots,
		funcs: make(map[string]Func),
		cache: make(map[*ast.Property]*cacheEntry),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RegisterFunc adds an expression function after construction. The CJMOD
// loader uses this when a module registers value-level helpers.
func (e *Evaluator) RegisterFunc(name string, fn Func) {
	e.funcs[name] = fn
}

// Property evaluates a property node through the cache.
func (e *Evaluator) Property(p *ast.Property) (Value, error) {
	if entry, ok := e.cache[p]; ok {
		if entry.state == stateEvaluating {
			return Value{}, fmt.Errorf("property %q: %w", p.Name, ErrCyclicProperty)
		}
		return entry.value, nil
	}
	entry := &cacheEntry{state: stateEvaluating}
	e.cache[p] = entry

	v, err := e.Eval(p.Value)
	if err != nil {
		delete(e.cache, p)
		return Value{}, err
	}
	entry.state = stateDone
	entry.value = v
	return v, nil
}

// Eval evaluates one expression tree.
func (e *Evaluator) Eval(expr ast.Expr) (Value, error) {
	switch v := expr.(type) {
	case *ast.NumberLit:
		return Number(v.Value, v.Unit), nil

	case *ast.StringLit:
		return String(v.Raw), nil

	case *ast.BoolLit:
		if v.Value {
			return String("true"), nil
		}
		return String("false"), nil

	case *ast.Unary:
		return e.evalUnary(v)

	case *ast.Binary:
		return e.evalBinary(v)

	case *ast.Ternary:
		cond, err := e.Eval(v.Cond)
		if err != nil {
			return Value{}, err
		}
		if cond.Truthy() {
			return e.Eval(v.Then)
		}
		return e.Eval(v.Else)

	case *ast.PropertyRef:
		return e.evalRef(v)

	case *ast.Call:
		return e.evalCall(v)

	default:
		return Value{}, fmt.Errorf("expression %T: %w", expr, ErrBadOperands)
	}
}

func (e *Evaluator) evalUnary(u *ast.Unary) (Value, error) {
	x, err := e.Eval(u.X)
	if err != nil {
		return Value{}, err
	}
	if u.Op == ast.OpPos {
		return x, nil
	}
	if x.Kind == KindNumber {
		x.Num = -x.Num
		return x, nil
	}
	// Negating a string prepends the sign, preserving values like
	// "-moz-fit-content".
	return String("-" + x.Str), nil
}

func (e *Evaluator) evalBinary(b *ast.Binary) (Value, error) {
	x, err := e.Eval(b.X)
	if err != nil {
		return Value{}, err
	}
	y, err := e.Eval(b.Y)
	if err != nil {
		return Value{}, err
	}

	if x.Kind == KindNumber && y.Kind == KindNumber {
		return numericOp(b.Op, x, y)
	}
	if b.Op == ast.OpAdd {
		return String(x.Text() + y.Text()), nil
	}
	return Value{}, fmt.Errorf("%s on strings: %w", b.Op, ErrBadOperands)
}

func numericOp(op ast.ExprOp, x, y Value) (Value, error) {
	switch op {
	case ast.OpAdd, ast.OpSub:
		if x.Unit != "" && y.Unit != "" && x.Unit != y.Unit {
			return Value{}, fmt.Errorf("%s %s and %s: %w", op, x.Unit, y.Unit, ErrUnitMismatch)
		}
		unit := x.Unit
		if unit == "" {
			unit = y.Unit
		}
		if op == ast.OpAdd {
			return Number(x.Num+y.Num, unit), nil
		}
		return Number(x.Num-y.Num, unit), nil

	case ast.OpMul:
		if x.Unit != "" && y.Unit != "" {
			return Value{}, fmt.Errorf("* needs a unitless operand: %w", ErrUnitMismatch)
		}
		unit := x.Unit
		if unit == "" {
			unit = y.Unit
		}
		return Number(x.Num*y.Num, unit), nil

	case ast.OpDiv:
		if y.Num == 0 {
			return Value{}, ErrDivisionByZero
		}
		switch {
		case x.Unit == y.Unit:
			// Same units cancel; this also covers two unitless operands.
			return Number(x.Num/y.Num, ""), nil
		case y.Unit == "":
			return Number(x.Num/y.Num, x.Unit), nil
		default:
			return Value{}, fmt.Errorf("/ %s by %s: %w", x.Unit, y.Unit, ErrUnitMismatch)
		}

	default:
		return Value{}, fmt.Errorf("%s on numbers: %w", op, ErrBadOperands)
	}
}

// evalRef resolves a cross-property reference: "#id" selectors match by
// id, bare tags by first-match depth-first walk.
func (e *Evaluator) evalRef(ref *ast.PropertyRef) (Value, error) {
	el := findElement(e.roots, ref.Selector)
	if el == nil {
		return Value{}, fmt.Errorf("selector %q: %w", ref.Selector, ErrTargetNotFound)
	}
	prop := findStyleProperty(el, ref.Property)
	if prop == nil {
		return Value{}, fmt.Errorf("%s.%s: %w", ref.Selector, ref.Property, ErrTargetNotFound)
	}
	return e.Property(prop)
}

// evalCall resolves Name(args): var groups first, then registered
// functions, then pass-through as CSS function-call text.
func (e *Evaluator) evalCall(call *ast.Call) (Value, error) {
	if e.vars != nil && len(call.Args) == 1 {
		if key, ok := call.Args[0].(*ast.StringLit); ok {
			if expr, found := e.vars(call.Name, key.Raw); found {
				return e.Eval(expr)
			}
		}
	}

	args := make([]Value, len(call.Args))
	for i, a := range call.Args {
		v, err := e.Eval(a)
		if err != nil {
			return Value{}, err
		}
		args[i] = v
	}

	if fn, ok := e.funcs[call.Name]; ok {
		return fn(args)
	}

	// Unrecognised functions pass through untouched.
	texts := make([]string, len(args))
	for i, a := range args {
		texts[i] = a.Text()
	}
	return String(call.Name + "(" + strings.Join(texts, ", ") + ")"), nil
}

// findElement walks the document depth-first for the selector target.
func findElement(nodes []ast.Node, selector string) *ast.Element {
	for _, n := range nodes {
		el, ok := n.(*ast.Element)
		if !ok {
			continue
		}
		if matches(el, selector) {
			return el
		}
		if found := findElement(el.Children, selector); found != nil {
			return found
		}
	}
	return nil
}

func matches(el *ast.Element, selector string) bool {
	if id, ok := strings.CutPrefix(selector, "#"); ok {
		p := el.Property("id")
		if p == nil {
			return false
		}
		lit, isLit := p.Value.(*ast.StringLit)
		return isLit && lit.Raw == id
	}
	return el.Tag == selector
}

// findStyleProperty looks for the property in the element's local style
// block first, then among its attributes.
func findStyleProperty(el *ast.Element, name string) *ast.Property {
	for _, c := range el.Children {
		st, ok := c.(*ast.Style)
		if !ok {
			continue
		}
		for _, sc := range st.Children {
			if p, isProp := sc.(*ast.Property); isProp && p.Name == name {
				return p
			}
		}
	}
	return el.Property(name)
}
