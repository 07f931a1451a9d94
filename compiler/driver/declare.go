// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package driver

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/AleutianAI/chtl/compiler/ast"
	"github.com/AleutianAI/chtl/compiler/cjmod"
	"github.com/AleutianAI/chtl/compiler/diag"
	"github.com/AleutianAI/chtl/compiler/lexer"
	"github.com/AleutianAI/chtl/compiler/loader"
	"github.com/AleutianAI/chtl/compiler/merge"
	"github.com/AleutianAI/chtl/compiler/parser"
	"github.com/AleutianAI/chtl/compiler/scanner"
	"github.com/AleutianAI/chtl/compiler/source"
	"github.com/AleutianAI/chtl/compiler/symbol"
)

// declare registers every definition reachable from nodes into the
// symbol table and resolves imports before the generator runs.
func (c *Compiler) declare(ctx context.Context, u *unit, kw *lexer.Keywords,
	nodes []ast.Node, ns, fromDir string) error {
	for _, n := range nodes {
		if err := ctx.Err(); err != nil {
			return err
		}
		switch v := n.(type) {
		case *ast.Namespace:
			child := symbol.Qualify(ns, v.Name)
			if err := u.table.AddNamespace(child, ns); err != nil {
				u.diags.Errorf(diag.KindSemantic, v.Span(), "%v", err)
				continue
			}
			if err := c.declare(ctx, u, kw, v.Children, child, fromDir); err != nil {
				return err
			}

		case *ast.Template:
			if err := u.table.DefineTemplate(ns, v); err != nil {
				u.diags.Errorf(diag.KindSemantic, v.Span(), "%v", err)
			}

		case *ast.Custom:
			if err := u.table.DefineCustom(ns, v); err != nil {
				u.diags.Errorf(diag.KindSemantic, v.Span(), "%v", err)
			}

		case *ast.Origin:
			if v.Name != "" && v.Placeholder != 0 {
				rec := symbol.OriginRecord{Type: v.Type, Placeholder: v.Placeholder}
				if err := u.table.RegisterOrigin(ns, v.Name, rec); err != nil {
					u.diags.Errorf(diag.KindConfig, v.Span(), "%v", err)
				}
			}

		case *ast.Configuration:
			// Entries were applied in the pre-pass; re-apply here so
			// blocks inside namespaces land too.
			for _, key := range v.Order {
				if err := u.table.Config().Set(key, v.Entries[key], c.opts.Strict); err != nil {
					u.diags.Errorf(diag.KindConfig, v.Span(), "%v", err)
				}
			}

		case *ast.Import:
			if err := c.processImport(ctx, u, kw, v, ns, fromDir); err != nil {
				return err
			}

		case *ast.Element:
			if err := c.declare(ctx, u, kw, v.Children, ns, fromDir); err != nil {
				return err
			}

		case *ast.Constraint:
			u.table.AddConstraint(ns, v.Forbidden)
		}
	}
	return nil
}

// processImport resolves one import and merges its contribution: CHTL
// files and CMOD packages add declarations under a namespace, CSS and JS
// files add raw pieces, HTML files register as origins.
func (c *Compiler) processImport(ctx context.Context, u *unit, kw *lexer.Keywords,
	imp *ast.Import, ns, fromDir string) error {
	local := imp.Alias
	if local == "" {
		local = fileStem(imp.Path)
	}

	abs, err := u.files.Resolve(fromDir, imp.Path)
	if err != nil {
		u.diags.Errorf(diag.KindImport, imp.Span(), "%v", err)
		return nil
	}
	if err := u.table.AddImport(local, symbol.ImportRecord{AbsolutePath: abs, Kind: imp.Kind}); err != nil {
		u.diags.Errorf(diag.KindSemantic, imp.Span(), "%v", err)
		return nil
	}

	switch imp.Kind {
	case ast.ImportCHTL:
		if loader.IsModuleDir(abs) {
			return c.loadModule(ctx, u, kw, abs, imp)
		}
		return c.loadChtlFile(ctx, u, kw, abs, local, imp)

	case ast.ImportCSS:
		return u.files.Load(ctx, fromDir, imp.Path, func(abs, text string) error {
			u.cssPieces = append(u.cssPieces, merge.Piece{Text: text, File: abs})
			return nil
		})

	case ast.ImportJS:
		return u.files.Load(ctx, fromDir, imp.Path, func(abs, text string) error {
			u.jsPieces = append(u.jsPieces, merge.Piece{Text: text, File: abs})
			return nil
		})

	case ast.ImportHTML:
		return u.files.Load(ctx, fromDir, imp.Path, func(abs, text string) error {
			rec := symbol.OriginRecord{Type: "Html", Placeholder: u.store.Intern(text)}
			if err := u.table.RegisterOrigin(ns, local, rec); err != nil {
				u.diags.Errorf(diag.KindSemantic, imp.Span(), "%v", err)
			}
			return nil
		})

	case ast.ImportCJMOD:
		return c.loadModule(ctx, u, kw, abs, imp)
	}
	return nil
}

// loadChtlFile parses an imported .chtl file and registers its
// declarations under its own namespace.
func (c *Compiler) loadChtlFile(ctx context.Context, u *unit, kw *lexer.Keywords,
	abs, local string, imp *ast.Import) error {
	return u.files.Load(ctx, filepath.Dir(abs), abs, func(abs, text string) error {
		doc, perr := c.parseForImport(ctx, u, kw, abs, text)
		if perr != nil {
			u.diags.Errorf(diag.KindImport, imp.Span(), "import %q: %v", abs, perr)
			return nil
		}
		childNS := local
		if err := u.table.AddNamespace(childNS, ""); err != nil {
			u.diags.Errorf(diag.KindSemantic, imp.Span(), "%v", err)
			return nil
		}
		return c.declare(ctx, u, kw, doc.Children, childNS, filepath.Dir(abs))
	})
}

// loadModule loads a CMOD/CJMOD package: metadata validation, source
// registration under the module namespace, and extension activation for
// CJMODs. Native plugin loading is replaced by the built-in registry.
func (c *Compiler) loadModule(ctx context.Context, u *unit, kw *lexer.Keywords,
	dir string, imp *ast.Import) error {
	mod, err := u.files.LoadModule(ctx, dir, Version)
	if err != nil {
		u.diags.Errorf(diag.KindImport, imp.Span(), "%v", err)
		return nil
	}

	modNS := mod.Namespace()
	if err := u.table.AddNamespace(modNS, ""); err != nil {
		u.diags.Errorf(diag.KindSemantic, imp.Span(), "%v", err)
		return nil
	}
	for _, srcPath := range mod.SrcFiles {
		err := u.files.Load(ctx, filepath.Dir(srcPath), srcPath, func(abs, text string) error {
			doc, perr := c.parseForImport(ctx, u, kw, abs, text)
			if perr != nil {
				u.diags.Errorf(diag.KindImport, imp.Span(), "module source %q: %v", abs, perr)
				return nil
			}
			return c.declare(ctx, u, kw, doc.Children, modNS, filepath.Dir(abs))
		})
		if err != nil {
			return err
		}
	}

	if mod.IsCJMOD || imp.Kind == ast.ImportCJMOD {
		if mod.Info.Name == "Chtholly" {
			if err := cjmod.RegisterChtholly(u.registry); err != nil {
				u.diags.Errorf(diag.KindImport, imp.Span(), "%v", err)
			}
		} else {
			u.diags.Warnf(diag.KindImport, imp.Span(),
				"CJMOD %q has no built-in extension implementation", mod.Info.Name)
		}
	}
	return nil
}

// parseForImport runs the front half of the pipeline on an imported
// file, sharing the unit's placeholder store.
func (c *Compiler) parseForImport(ctx context.Context, u *unit, kw *lexer.Keywords,
	path, text string) (*ast.Document, error) {
	buf := source.NewBuffer(path, text)
	frags, err := scanner.New(buf, u.store).Scan(ctx)
	if err != nil {
		return nil, err
	}
	toks, err := parser.Stitch(buf, frags, kw)
	if err != nil {
		return nil, err
	}
	return parser.New(buf, toks, kw).ParseDocument()
}

func fileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
