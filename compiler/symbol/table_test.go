// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package symbol

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/chtl/compiler/ast"
)

func styleTemplate(name string) *ast.Template {
	return &ast.Template{Kind: ast.DefStyle, Name: name}
}

func TestTable_DefineAndLookup(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.DefineTemplate("", styleTemplate("T")))

	got, ok := tbl.StyleTemplate("", "T")
	require.True(t, ok)
	assert.Equal(t, "T", got.Name)
}

func TestTable_DuplicateDefinition(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.DefineTemplate("ns", styleTemplate("T")))
	err := tbl.DefineTemplate("ns", styleTemplate("T"))
	assert.ErrorIs(t, err, ErrDuplicateDefinition)
}

func TestTable_KindsAreDisjoint(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.DefineTemplate("", styleTemplate("T")))
	require.NoError(t, tbl.DefineTemplate("", &ast.Template{Kind: ast.DefElement, Name: "T"}))
	require.NoError(t, tbl.DefineCustom("", &ast.Custom{Kind: ast.DefStyle, Name: "T"}))
}

func TestTable_NamespaceFallback(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.AddNamespace("outer", ""))
	require.NoError(t, tbl.AddNamespace("outer::inner", "outer"))
	require.NoError(t, tbl.DefineTemplate("outer", styleTemplate("T")))

	// Visible from the child namespace through the parent chain.
	_, ok := tbl.StyleTemplate("outer::inner", "T")
	assert.True(t, ok)

	// Qualified lookup bypasses the chain.
	_, ok = tbl.StyleTemplate("", "outer::T")
	assert.True(t, ok)

	_, ok = tbl.StyleTemplate("", "T")
	assert.False(t, ok, "global scope must not see namespaced names")
}

func TestTable_NamespaceCycle(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.AddNamespace("a", ""))
	require.NoError(t, tbl.AddNamespace("b", "a"))
	err := tbl.AddNamespace("a", "b")
	assert.True(t, errors.Is(err, ErrCyclicNamespace) || errors.Is(err, ErrNamespaceConflict))
}

func TestTable_ImportIdempotence(t *testing.T) {
	tbl := NewTable()
	rec := ImportRecord{AbsolutePath: "/abs/m.chtl", Kind: ast.ImportCHTL}
	require.NoError(t, tbl.AddImport("m", rec))
	require.NoError(t, tbl.AddImport("m", rec), "same path re-import is a no-op")

	err := tbl.AddImport("m", ImportRecord{AbsolutePath: "/other.chtl", Kind: ast.ImportCHTL})
	assert.ErrorIs(t, err, ErrDuplicateDefinition)
}

func TestTable_OriginTypes(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.RegisterOrigin("", "box", OriginRecord{Type: "Html", Placeholder: 1}))
	require.NoError(t, tbl.RegisterOrigin("", "vue1", OriginRecord{Type: "Vue", Placeholder: 2}))

	// Flip the flag: the already-registered Vue type keeps working.
	require.NoError(t, tbl.Config().Set(KeyDisableCustomOriginType, "true", false))
	require.NoError(t, tbl.RegisterOrigin("", "vue2", OriginRecord{Type: "Vue", Placeholder: 3}))

	// A brand-new type is rejected.
	err := tbl.RegisterOrigin("", "sv", OriginRecord{Type: "Svelte", Placeholder: 4})
	assert.ErrorIs(t, err, ErrCustomOriginDisabled)
}

func TestConfig_TypedGetters(t *testing.T) {
	c := NewConfig()
	require.NoError(t, c.Set(KeyDebugMode, "true", false))
	require.NoError(t, c.Set(KeyIndexInitialCount, "1", false))
	assert.True(t, c.DebugMode())
	assert.Equal(t, 1, c.IndexInitialCount())
	assert.False(t, c.DisableStyleAutoAddClass())
}

func TestConfig_StrictUnknownKey(t *testing.T) {
	c := NewConfig()
	assert.NoError(t, c.Set("NO_SUCH_KEY", "1", false))
	assert.ErrorIs(t, c.Set("NO_SUCH_KEY", "1", true), ErrUnknownConfigKey)
	assert.NoError(t, c.Set("KEYWORD_INHERIT", "extends", true))
}

func TestSplitQualified(t *testing.T) {
	ns, local := SplitQualified("a::b::C")
	assert.Equal(t, "a::b", ns)
	assert.Equal(t, "C", local)

	ns, local = SplitQualified("C")
	assert.Equal(t, "", ns)
	assert.Equal(t, "C", local)
}
