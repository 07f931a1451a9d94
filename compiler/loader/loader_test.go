// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/chtl/compiler/ast"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newResolver(t *testing.T, roots ...string) *Resolver {
	t.Helper()
	r, err := NewResolver(roots)
	require.NoError(t, err)
	return r
}

func TestResolve_SearchOrder(t *testing.T) {
	dir := t.TempDir()
	moduleRoot := t.TempDir()

	writeFile(t, filepath.Join(dir, "local.chtl"), "div {}")
	writeFile(t, filepath.Join(dir, "module", "shared.chtl"), "span {}")
	writeFile(t, filepath.Join(moduleRoot, "official.chtl"), "p {}")

	r := newResolver(t, moduleRoot)

	abs, err := r.Resolve(dir, "local.chtl")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "local.chtl"), abs)

	abs, err = r.Resolve(dir, "shared.chtl")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "module", "shared.chtl"), abs)

	abs, err = r.Resolve(dir, "official.chtl")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(moduleRoot, "official.chtl"), abs)

	_, err = r.Resolve(dir, "missing.chtl")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolve_RelativeBeatsModuleDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.chtl"), "relative")
	writeFile(t, filepath.Join(dir, "module", "a.chtl"), "module")

	r := newResolver(t)
	abs, err := r.Resolve(dir, "a.chtl")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "a.chtl"), abs)
}

func TestLoad_OncePerPath(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.chtl"), "div {}")

	r := newResolver(t)
	calls := 0
	process := func(abs, text string) error { calls++; return nil }

	ctx := context.Background()
	require.NoError(t, r.Load(ctx, dir, "a.chtl", process))
	require.NoError(t, r.Load(ctx, dir, "a.chtl", process))
	assert.Equal(t, 1, calls, "importing the same file twice loads it once")
}

func TestLoad_CycleIsNoOp(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.chtl"), "a")
	writeFile(t, filepath.Join(dir, "b.chtl"), "b")

	r := newResolver(t)
	ctx := context.Background()
	var order []string

	var processA, processB func(abs, text string) error
	processA = func(abs, text string) error {
		order = append(order, "a")
		// a imports b, which imports a again.
		return r.Load(ctx, dir, "b.chtl", processB)
	}
	processB = func(abs, text string) error {
		order = append(order, "b")
		return r.Load(ctx, dir, "a.chtl", processA)
	}

	require.NoError(t, r.Load(ctx, dir, "a.chtl", processA))
	assert.Equal(t, []string{"a", "b"}, order, "re-entry aborts as a no-op")
}

func writeModule(t *testing.T, dir, info string) {
	writeFile(t, filepath.Join(dir, "info", "mod.chtl"), info)
	writeFile(t, filepath.Join(dir, "src", "main.chtl"), "[Template] @Style T { color: red; }")
}

const validInfo = `
[Info] {
    name: Chtholly;
    version: 1.2.0;
    description: "flower field widgets";
    author: yhlight;
    license: MIT;
    min_chtl_version: 0.5.0;
    max_chtl_version: 2.0.0;
}
[Export] { @Style T; }
`

func TestLoadModule(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, validInfo)

	r := newResolver(t)
	mod, err := r.LoadModule(context.Background(), dir, "1.0.0")
	require.NoError(t, err)

	assert.Equal(t, "Chtholly", mod.Info.Name)
	assert.Equal(t, "1.2.0", mod.Info.Version)
	assert.Equal(t, "Chtholly", mod.Namespace())
	require.Len(t, mod.Exports, 1)
	assert.Equal(t, ast.ExportItem{Kind: ast.DefStyle, Name: "T"}, mod.Exports[0])
	require.Len(t, mod.SrcFiles, 1)
	assert.False(t, mod.IsCJMOD)
}

func TestLoadModule_VersionRange(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, validInfo)

	r := newResolver(t)
	_, err := r.LoadModule(context.Background(), dir, "0.1.0")
	assert.ErrorIs(t, err, ErrVersionRange)

	_, err = r.LoadModule(context.Background(), dir, "3.0.0")
	assert.ErrorIs(t, err, ErrVersionRange)
}

func TestLoadModule_InvalidInfo(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "[Info] { description: nameless; }")

	r := newResolver(t)
	_, err := r.LoadModule(context.Background(), dir, "1.0.0")
	assert.ErrorIs(t, err, ErrInvalidInfo)
}

func TestLoadModule_NotAModule(t *testing.T) {
	r := newResolver(t)
	_, err := r.LoadModule(context.Background(), t.TempDir(), "1.0.0")
	assert.ErrorIs(t, err, ErrNotAModule)
}

func TestIsModuleDir(t *testing.T) {
	dir := t.TempDir()
	assert.False(t, IsModuleDir(dir))
	writeModule(t, dir, validInfo)
	assert.True(t, IsModuleDir(dir))
}
