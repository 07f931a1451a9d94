// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package symbol holds the per-compilation global symbol table.
//
// One Table exists per compilation unit. It is populated during parsing
// and import resolution, queried during semantic resolution and code
// generation, and released when the compilation ends. Nothing here is
// process-global, which keeps the compiler reentrant.
package symbol

import (
	"fmt"
	"strings"

	"github.com/AleutianAI/chtl/compiler/ast"
)

// ImportRecord tracks one resolved import by local name.
type ImportRecord struct {
	AbsolutePath string
	Kind         ast.ImportKind
}

// OriginRecord is a raw snippet registered under a name.
type OriginRecord struct {
	Type        string
	Placeholder int
}

// Table is the global symbol table of one compilation.
//
// Names are keyed by qualified name "namespace::local"; the empty
// namespace is the file/global scope. Each definition kind has its own
// map, so a style template and an element template may share a name.
type Table struct {
	styleTemplates   map[string]*ast.Template
	elementTemplates map[string]*ast.Template
	varTemplates     map[string]*ast.Template
	styleCustoms     map[string]*ast.Custom
	elementCustoms   map[string]*ast.Custom
	varCustoms       map[string]*ast.Custom

	variables   map[string]string
	imports     map[string]ImportRecord
	constraints map[string][]string
	origins     map[string]OriginRecord
	originTypes map[string]bool

	// namespace child -> parent; roots map to "".
	namespaceParent map[string]string

	config *Config
}

// NewTable creates an empty table with default configuration.
func NewTable() *Table {
	return &Table{
		styleTemplates:   make(map[string]*ast.Template),
		elementTemplates: make(map[string]*ast.Template),
		varTemplates:     make(map[string]*ast.Template),
		styleCustoms:     make(map[string]*ast.Custom),
		elementCustoms:   make(map[string]*ast.Custom),
		varCustoms:       make(map[string]*ast.Custom),
		variables:        make(map[string]string),
		imports:          make(map[string]ImportRecord),
		constraints:      make(map[string][]string),
		origins:          make(map[string]OriginRecord),
		originTypes:      make(map[string]bool),
		namespaceParent:  make(map[string]string),
		config:           NewConfig(),
	}
}

// Config returns the active configuration.
func (t *Table) Config() *Config { return t.config }

// Qualify joins a namespace and a local name.
func Qualify(ns, local string) string {
	if ns == "" {
		return local
	}
	return ns + "::" + local
}

// SplitQualified splits "ns::local" into its parts. Unqualified names
// return an empty namespace.
func SplitQualified(name string) (ns, local string) {
	if i := strings.LastIndex(name, "::"); i >= 0 {
		return name[:i], name[i+2:]
	}
	return "", name
}

// AddNamespace registers a namespace under its parent. Registering a
// namespace whose ancestry loops back on itself is a fatal error.
func (t *Table) AddNamespace(name, parent string) error {
	if existing, ok := t.namespaceParent[name]; ok && existing != parent {
		return fmt.Errorf("namespace %q: %w (parents %q and %q)", name, ErrNamespaceConflict, existing, parent)
	}
	for p := parent; p != ""; p = t.namespaceParent[p] {
		if p == name {
			return fmt.Errorf("namespace %q: %w", name, ErrCyclicNamespace)
		}
	}
	t.namespaceParent[name] = parent
	return nil
}

// HasNamespace reports whether the namespace was registered.
func (t *Table) HasNamespace(name string) bool {
	_, ok := t.namespaceParent[name]
	return ok
}

func defineIn[V any](m map[string]V, key string, v V, what string) error {
	if _, ok := m[key]; ok {
		return fmt.Errorf("%s %q: %w", what, key, ErrDuplicateDefinition)
	}
	m[key] = v
	return nil
}

// DefineTemplate registers a [Template] definition under ns.
func (t *Table) DefineTemplate(ns string, def *ast.Template) error {
	key := Qualify(ns, def.Name)
	switch def.Kind {
	case ast.DefStyle:
		return defineIn(t.styleTemplates, key, def, "style template")
	case ast.DefElement:
		return defineIn(t.elementTemplates, key, def, "element template")
	case ast.DefVar:
		return defineIn(t.varTemplates, key, def, "var template")
	default:
		return fmt.Errorf("template %q: unknown kind %d", key, def.Kind)
	}
}

// DefineCustom registers a [Custom] definition under ns.
func (t *Table) DefineCustom(ns string, def *ast.Custom) error {
	key := Qualify(ns, def.Name)
	switch def.Kind {
	case ast.DefStyle:
		return defineIn(t.styleCustoms, key, def, "style custom")
	case ast.DefElement:
		return defineIn(t.elementCustoms, key, def, "element custom")
	case ast.DefVar:
		return defineIn(t.varCustoms, key, def, "var custom")
	default:
		return fmt.Errorf("custom %q: unknown kind %d", key, def.Kind)
	}
}

// lookup resolves name from ns: a qualified name is taken verbatim,
// otherwise the namespace itself is searched, then its ancestors, then
// the global scope.
func lookup[V any](t *Table, m map[string]V, ns, name string) (V, bool) {
	var zero V
	if strings.Contains(name, "::") {
		v, ok := m[name]
		return v, ok
	}
	for cur := ns; ; {
		if v, ok := m[Qualify(cur, name)]; ok {
			return v, ok
		}
		if cur == "" {
			return zero, false
		}
		cur = t.namespaceParent[cur]
	}
}

// StyleTemplate resolves a style template visible from ns.
func (t *Table) StyleTemplate(ns, name string) (*ast.Template, bool) {
	return lookup(t, t.styleTemplates, ns, name)
}

// ElementTemplate resolves an element template visible from ns.
func (t *Table) ElementTemplate(ns, name string) (*ast.Template, bool) {
	return lookup(t, t.elementTemplates, ns, name)
}

// VarTemplate resolves a var template visible from ns.
func (t *Table) VarTemplate(ns, name string) (*ast.Template, bool) {
	return lookup(t, t.varTemplates, ns, name)
}

// StyleCustom resolves a style custom visible from ns.
func (t *Table) StyleCustom(ns, name string) (*ast.Custom, bool) {
	return lookup(t, t.styleCustoms, ns, name)
}

// ElementCustom resolves an element custom visible from ns.
func (t *Table) ElementCustom(ns, name string) (*ast.Custom, bool) {
	return lookup(t, t.elementCustoms, ns, name)
}

// VarCustom resolves a var custom visible from ns.
func (t *Table) VarCustom(ns, name string) (*ast.Custom, bool) {
	return lookup(t, t.varCustoms, ns, name)
}

// SetVariable records a scalar variable.
func (t *Table) SetVariable(ns, name, value string) {
	t.variables[Qualify(ns, name)] = value
}

// Variable resolves a scalar variable visible from ns.
func (t *Table) Variable(ns, name string) (string, bool) {
	return lookup(t, t.variables, ns, name)
}

// AddImport records a resolved import under its local name.
func (t *Table) AddImport(name string, rec ImportRecord) error {
	if existing, ok := t.imports[name]; ok {
		if existing.AbsolutePath == rec.AbsolutePath {
			return nil // re-import of the same file is idempotent
		}
		return fmt.Errorf("import %q: %w", name, ErrDuplicateDefinition)
	}
	t.imports[name] = rec
	return nil
}

// Import returns a recorded import by local name.
func (t *Table) Import(name string) (ImportRecord, bool) {
	rec, ok := t.imports[name]
	return rec, ok
}

// AddConstraint records forbidden child tags/types for a scope path.
func (t *Table) AddConstraint(scope string, forbidden []string) {
	t.constraints[scope] = append(t.constraints[scope], forbidden...)
}

// Constraint returns the forbidden set for a scope path.
func (t *Table) Constraint(scope string) []string {
	return t.constraints[scope]
}

// RegisterOrigin records a named raw snippet. Custom (non-builtin) origin
// types respect DISABLE_CUSTOM_ORIGIN_TYPE: types registered before the
// flag flipped keep working, new registrations are rejected.
func (t *Table) RegisterOrigin(ns, name string, rec OriginRecord) error {
	if !builtinOriginType(rec.Type) && !t.originTypes[rec.Type] {
		if t.config.DisableCustomOriginType() {
			return fmt.Errorf("origin type %q: %w", rec.Type, ErrCustomOriginDisabled)
		}
		t.originTypes[rec.Type] = true
	}
	return defineIn(t.origins, Qualify(ns, name), rec, "origin")
}

// Origin resolves a named raw snippet visible from ns.
func (t *Table) Origin(ns, name string) (OriginRecord, bool) {
	return lookup(t, t.origins, ns, name)
}

func builtinOriginType(typ string) bool {
	switch typ {
	case "Html", "Style", "JavaScript", "CSS", "Css", "Js":
		return true
	default:
		return false
	}
}
