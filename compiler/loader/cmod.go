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
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/mod/semver"

	"github.com/AleutianAI/chtl/compiler/ast"
	"github.com/AleutianAI/chtl/compiler/lexer"
	"github.com/AleutianAI/chtl/compiler/parser"
	"github.com/AleutianAI/chtl/compiler/scanner"
	"github.com/AleutianAI/chtl/compiler/source"
)

// ModuleInfo is the metadata of a CMOD/CJMOD info subtree.
type ModuleInfo struct {
	Name           string `validate:"required"`
	Version        string `validate:"required"`
	Description    string
	Author         string
	License        string
	Dependencies   string
	Category       string
	MinCHTLVersion string
	MaxCHTLVersion string
}

// Module is a loaded CMOD/CJMOD package as the compiler consumes it:
// metadata, the export list and the source file paths in load order.
type Module struct {
	Dir      string
	Info     ModuleInfo
	Exports  []ast.ExportItem
	SrcFiles []string
	IsCJMOD  bool
}

// Namespace returns the namespace the module's exports register under.
func (m *Module) Namespace() string { return m.Info.Name }

var infoValidator = validator.New()

// IsModuleDir reports whether path has the info/ + src/ package layout.
func IsModuleDir(path string) bool {
	info, err := os.Stat(filepath.Join(path, "info"))
	if err != nil || !info.IsDir() {
		return false
	}
	src, err := os.Stat(filepath.Join(path, "src"))
	return err == nil && src.IsDir()
}

// LoadModule reads a module's info subtree, validates its metadata
// against the running compiler version, and collects the src file list.
// The caller parses and registers the src files through the resolver so
// cycle handling applies to module sources too.
func (r *Resolver) LoadModule(ctx context.Context, dir, chtlVersion string) (*Module, error) {
	if !IsModuleDir(dir) {
		return nil, fmt.Errorf("%q: %w", dir, ErrNotAModule)
	}

	mod := &Module{Dir: dir}
	if err := r.readInfo(ctx, mod); err != nil {
		return nil, err
	}
	if err := infoValidator.Struct(mod.Info); err != nil {
		return nil, fmt.Errorf("%q: %w: %v", dir, ErrInvalidInfo, err)
	}
	if err := checkVersionRange(mod.Info, chtlVersion); err != nil {
		return nil, err
	}

	srcDir := filepath.Join(dir, "src")
	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", srcDir, err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".chtl") {
			continue
		}
		mod.SrcFiles = append(mod.SrcFiles, filepath.Join(srcDir, e.Name()))
	}
	sort.Strings(mod.SrcFiles)

	// A CJMOD additionally ships a script-extension implementation; the
	// compiler recognises the layout by its cjmod marker directory.
	if _, err := os.Stat(filepath.Join(dir, "src", "cjmod")); err == nil {
		mod.IsCJMOD = true
	}
	return mod, nil
}

// readInfo parses the first .chtl file of the info subtree and extracts
// the [Info] entries and [Export] list.
func (r *Resolver) readInfo(ctx context.Context, mod *Module) error {
	infoDir := filepath.Join(mod.Dir, "info")
	entries, err := os.ReadDir(infoDir)
	if err != nil {
		return fmt.Errorf("read %q: %w", infoDir, err)
	}

	var infoPath string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".chtl") {
			infoPath = filepath.Join(infoDir, e.Name())
			break
		}
	}
	if infoPath == "" {
		return fmt.Errorf("%q: %w", mod.Dir, ErrNoInfoFile)
	}

	text, err := r.ReadFile(infoPath)
	if err != nil {
		return err
	}
	doc, err := parseInfoFile(ctx, infoPath, text)
	if err != nil {
		return err
	}

	for _, n := range doc.Children {
		switch v := n.(type) {
		case *ast.Info:
			applyInfoEntries(&mod.Info, v.Entries)
		case *ast.Export:
			mod.Exports = append(mod.Exports, v.Items...)
		}
	}
	return nil
}

func parseInfoFile(ctx context.Context, path, text string) (*ast.Document, error) {
	buf := source.NewBuffer(path, text)
	store := scanner.NewPlaceholderStore()
	frags, err := scanner.New(buf, store).Scan(ctx)
	if err != nil {
		return nil, err
	}
	kw := lexer.NewKeywords(nil)
	toks, err := parser.Stitch(buf, frags, kw)
	if err != nil {
		return nil, err
	}
	return parser.New(buf, toks, kw).ParseDocument()
}

func applyInfoEntries(info *ModuleInfo, entries map[string]string) {
	for key, value := range entries {
		switch key {
		case "name":
			info.Name = value
		case "version":
			info.Version = value
		case "description":
			info.Description = value
		case "author":
			info.Author = value
		case "license":
			info.License = value
		case "dependencies":
			info.Dependencies = value
		case "category":
			info.Category = value
		case "min_chtl_version", "minimum-chtl-version":
			info.MinCHTLVersion = value
		case "max_chtl_version", "maximum-chtl-version":
			info.MaxCHTLVersion = value
		}
	}
}

// checkVersionRange validates the running compiler version against the
// module's declared range. Missing bounds are open ends.
func checkVersionRange(info ModuleInfo, chtlVersion string) error {
	current := canonicalVersion(chtlVersion)
	if current == "" {
		return nil
	}
	if min := canonicalVersion(info.MinCHTLVersion); min != "" && semver.Compare(current, min) < 0 {
		return fmt.Errorf("module %s needs >= %s, compiler is %s: %w",
			info.Name, info.MinCHTLVersion, chtlVersion, ErrVersionRange)
	}
	if max := canonicalVersion(info.MaxCHTLVersion); max != "" && semver.Compare(current, max) > 0 {
		return fmt.Errorf("module %s needs <= %s, compiler is %s: %w",
			info.Name, info.MaxCHTLVersion, chtlVersion, ErrVersionRange)
	}
	return nil
}

// canonicalVersion normalises to the "vX.Y.Z" form semver.Compare
// expects; malformed versions yield "" and are skipped.
func canonicalVersion(v string) string {
	if v == "" {
		return ""
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return ""
	}
	return v
}
