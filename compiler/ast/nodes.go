// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package ast defines the CHTL syntax tree and the style-expression tree.
//
// Every node carries the span of the source text it was parsed from;
// spans survive all passes so diagnostics always point into the original
// file. Property values are always expression trees, never free strings.
package ast

import "github.com/AleutianAI/chtl/compiler/source"

// Node is implemented by every CHTL AST node.
type Node interface {
	Span() source.Span
}

// Base carries the span every node embeds.
type Base struct {
	Loc source.Span
}

// Span returns the node's source span.
func (b Base) Span() source.Span { return b.Loc }

// Document is the root of one parsed file.
type Document struct {
	Base
	File     string
	Children []Node
}

// Element is an HTML element with attributes, children and optional local
// style/script blocks (which appear among Children).
type Element struct {
	Base
	Tag      string
	Children []Node
}

// Properties returns the element's direct Property children.
func (e *Element) Properties() []*Property {
	var props []*Property
	for _, c := range e.Children {
		if p, ok := c.(*Property); ok {
			props = append(props, p)
		}
	}
	return props
}

// Property looks up a direct property by name.
func (e *Element) Property(name string) *Property {
	for _, c := range e.Children {
		if p, ok := c.(*Property); ok && p.Name == name {
			return p
		}
	}
	return nil
}

// Text is a text node; Value is the decoded string.
type Text struct {
	Base
	Value string
}

// Comment is a comment node. Generator comments ('# ...') are emitted as
// HTML comments; source comments are dropped at generation.
type Comment struct {
	Base
	Text      string
	Generator bool
}

// Property is a name/value pair. Value is always an expression tree;
// quoted-string inputs become string literals.
type Property struct {
	Base
	Name  string
	Value Expr
}

// Style is a style block: an ordered mix of Property, Rule and Usage
// children. A top-level (global) style block instead carries the raw CSS
// placeholder and has no children.
type Style struct {
	Base
	Children    []Node
	Placeholder int // global style blocks only
}

// Rule is a nested selector rule inside a style block. Selector keeps the
// source spelling; '&' resolves to the owner's effective selector at emit.
type Rule struct {
	Base
	Selector string
	Children []Node
}

// Script is a script block; the body is a CHTL-JS fragment held behind a
// placeholder.
type Script struct {
	Base
	Placeholder int
}

// DefKind discriminates template/custom definitions and usages.
type DefKind int

const (
	DefStyle DefKind = iota
	DefElement
	DefVar
)

// String returns the @-keyword spelling of the kind.
func (k DefKind) String() string {
	switch k {
	case DefStyle:
		return "Style"
	case DefElement:
		return "Element"
	case DefVar:
		return "Var"
	default:
		return "?"
	}
}

// Template is a [Template] definition. Inherits lists parent names in
// source order.
type Template struct {
	Base
	Kind     DefKind
	Name     string
	Inherits []string
	Body     []Node
}

// Custom is a [Custom] definition: a template whose body may additionally
// contain specialization operations (DeleteOp, InsertOp) and whose usages
// may specialize it further.
type Custom struct {
	Base
	Kind     DefKind
	Name     string
	Inherits []string
	Body     []Node
}

// Usage references a template or custom by name.
//
// Index is the optional [i] suffix (-1 when absent). VarKey is set for
// @Var usages of the form Name(key). Overrides holds the optional local
// block: properties and specialization operations applied at this usage.
type Usage struct {
	Base
	Kind      DefKind
	Name      string
	From      string // explicit namespace (Name from ns)
	VarKey    string
	Index     int
	Overrides []Node
}

// ImportKind enumerates import targets.
type ImportKind int

const (
	ImportHTML ImportKind = iota
	ImportCSS
	ImportJS
	ImportCHTL
	ImportCJMOD
)

// String returns the @-keyword spelling of the import kind.
func (k ImportKind) String() string {
	switch k {
	case ImportHTML:
		return "Html"
	case ImportCSS:
		return "CSS"
	case ImportJS:
		return "JavaScript"
	case ImportCHTL:
		return "Chtl"
	case ImportCJMOD:
		return "CJmod"
	default:
		return "?"
	}
}

// Import is an [Import] directive.
type Import struct {
	Base
	Kind  ImportKind
	Path  string
	Alias string
	From  string // from-namespace, when importing a name out of a module
}

// Namespace nests; children are any top-level nodes.
type Namespace struct {
	Base
	Name     string
	Children []Node
}

// Configuration is a [Configuration] block. Order preserves source order
// of the keys for deterministic reporting.
type Configuration struct {
	Base
	Entries map[string]string
	Order   []string
}

// Info is the [Info] metadata block of a CMOD/CJMOD info file.
type Info struct {
	Base
	Entries map[string]string
}

// ExportItem is one entry of an [Export] list.
type ExportItem struct {
	Kind DefKind
	Name string
}

// Export enumerates the names a module exposes.
type Export struct {
	Base
	Items []ExportItem
}

// Constraint declares forbidden child tags/types for the enclosing
// element ("except span;").
type Constraint struct {
	Base
	Forbidden []string
}

// DeleteOp removes a property, child element or inheritance link during
// specialization. Target is a tag, selector or property name; Index is
// the optional [i] disambiguator (-1 when absent).
type DeleteOp struct {
	Base
	Target string
	Index  int
}

// InsertPos places InsertOp payloads relative to their anchor.
type InsertPos int

const (
	InsertBefore InsertPos = iota
	InsertAfter
	InsertReplace
	InsertAtTop
	InsertAtBottom
)

// InsertOp inserts (or substitutes) children at an anchored position
// during specialization. Anchor is empty for at-top/at-bottom.
type InsertOp struct {
	Base
	Pos    InsertPos
	Anchor string
	Index  int
	Body   []Node
}

// Origin registers a raw snippet under an optional name. Unnamed origins
// are emitted in place; named ones are registered and emitted on use.
type Origin struct {
	Base
	Type        string // Html, Style, JavaScript or a user-registered type
	Name        string
	Placeholder int
}

// Use is a document-type directive ("use html5;").
type Use struct {
	Base
	Directive string
}
