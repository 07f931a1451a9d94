// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package driver runs the full compilation pipeline for one file.
//
// One compilation unit owns exactly one symbol table, one placeholder
// store, one import-loading set and one diagnostic collector; all are
// created at compile start and released at compile end, so the compiler
// is reentrant. Cancellation applies at stage boundaries: scanner,
// lexer, parser, resolver, generator, merger.
package driver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AleutianAI/chtl/compiler/ast"
	"github.com/AleutianAI/chtl/compiler/chtljs"
	"github.com/AleutianAI/chtl/compiler/cjmod"
	"github.com/AleutianAI/chtl/compiler/diag"
	"github.com/AleutianAI/chtl/compiler/gen"
	"github.com/AleutianAI/chtl/compiler/lexer"
	"github.com/AleutianAI/chtl/compiler/lint"
	"github.com/AleutianAI/chtl/compiler/loader"
	"github.com/AleutianAI/chtl/compiler/merge"
	"github.com/AleutianAI/chtl/compiler/parser"
	"github.com/AleutianAI/chtl/compiler/scanner"
	"github.com/AleutianAI/chtl/compiler/sema"
	"github.com/AleutianAI/chtl/compiler/source"
	"github.com/AleutianAI/chtl/compiler/symbol"
)

// Version is the compiler version modules validate their ranges against.
const Version = "1.0.0"

// Options configures a Compiler.
type Options struct {
	// ModuleRoots are searched after the importing file's directory.
	ModuleRoots []string

	// Strict promotes unknown configuration keys to errors and aborts a
	// multi-file build on the first failing file.
	Strict bool

	// Lint syntax-checks raw CSS/JS fragments with tree-sitter.
	Lint bool

	// Merge controls artifact assembly.
	Merge merge.Options

	// Logger receives debug output; defaults to slog.Default().
	Logger *slog.Logger
}

// Result is the outcome of compiling one file.
type Result struct {
	ID       string
	File     string
	Artifact *merge.Artifact
	Output   gen.Output
	Diags    *diag.Collector
}

// ExitCode maps the result to the process exit code.
func (r *Result) ExitCode() int { return r.Diags.ExitCode() }

// Compiler compiles CHTL files. It holds only configuration; per-file
// state lives in a compilation unit created for each call.
type Compiler struct {
	opts Options
	log  *slog.Logger
}

// New creates a Compiler.
func New(opts Options) *Compiler {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Compiler{opts: opts, log: log}
}

// unit is the per-compilation state.
type unit struct {
	id       string
	table    *symbol.Table
	store    *scanner.PlaceholderStore
	diags    *diag.Collector
	files    *loader.Resolver
	registry *cjmod.Registry
	js       *chtljs.Generator
	res      *sema.Resolver
	checker  *lint.Checker

	cssPieces []merge.Piece
	jsPieces  []merge.Piece
}

func (c *Compiler) newUnit() (*unit, error) {
	files, err := loader.NewResolver(c.opts.ModuleRoots, loader.WithLogger(c.log))
	if err != nil {
		return nil, err
	}
	registry := cjmod.NewRegistry()
	table := symbol.NewTable()
	u := &unit{
		id:       uuid.NewString(),
		table:    table,
		store:    scanner.NewPlaceholderStore(),
		diags:    diag.NewCollector(),
		files:    files,
		registry: registry,
		js:       chtljs.NewGenerator(registry),
		res:      sema.NewResolver(table, sema.WithLogger(c.log)),
	}
	if c.opts.Lint {
		u.checker = lint.NewChecker()
	}
	return u, nil
}

// CompileFile reads and compiles one file. IO failures surface as
// diagnostics, not as the error return, so sibling files in a build keep
// compiling.
func (c *Compiler) CompileFile(ctx context.Context, path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		diags := diag.NewCollector()
		diags.Add(diag.Diagnostic{
			Severity: diag.SeverityFatal,
			Kind:     diag.KindIO,
			Message:  fmt.Sprintf("cannot read %q: %v", path, err),
		})
		return &Result{File: path, Diags: diags}, nil
	}
	return c.CompileSource(ctx, path, string(data))
}

// CompileSource compiles one file's text through the whole pipeline.
func (c *Compiler) CompileSource(ctx context.Context, path, text string) (*Result, error) {
	start := time.Now()
	if err := initMetrics(); err != nil {
		c.log.Warn("driver metrics unavailable", "error", err)
	}
	u, err := c.newUnit()
	if err != nil {
		return nil, err
	}
	result := &Result{ID: u.id, File: path, Diags: u.diags}
	log := c.log.With("file", path, "compilation", u.id)

	buf := source.NewBuffer(path, text)

	// Stage: scanner.
	frags, err := scanner.New(buf, u.store, scanner.WithLogger(log)).Scan(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		u.diags.Add(diag.Diagnostic{
			Severity: diag.SeverityFatal, Kind: diag.KindSyntax,
			Message: err.Error(), Primary: scanErrSpan(err),
		})
		return result, nil
	}

	if u.checker != nil {
		for _, f := range frags {
			if err := u.checker.Check(ctx, f, u.diags); err != nil {
				log.Warn("lint unavailable", "error", err)
			}
		}
	}

	// Stage: lexer. Tokens do not depend on keyword rebinding, so one
	// pass serves both the configuration pre-pass and the parser.
	toks, err := parser.Stitch(buf, frags, lexer.NewKeywords(nil))
	if err != nil {
		u.diags.Add(diag.Diagnostic{
			Severity: diag.SeverityFatal, Kind: diag.KindSyntax, Message: err.Error(),
		})
		return result, nil
	}

	// Configuration pre-pass: KEYWORD_* rebindings apply to the whole
	// file before parsing continues.
	for key, value := range parser.ScanConfigEntries(toks) {
		if err := u.table.Config().Set(key, value, c.opts.Strict); err != nil {
			u.diags.Errorf(diag.KindConfig, source.Span{}, "%v", err)
		}
	}
	kw := lexer.NewKeywords(u.table.Config().KeywordEntries())

	// Stage: parser.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := parser.New(buf, toks, kw, parser.WithLogger(log)).ParseDocument()
	if err != nil {
		u.diags.Add(diag.Diagnostic{
			Severity: diag.SeverityFatal, Kind: diag.KindSyntax,
			Message: err.Error(), Primary: parseErrSpan(err),
		})
		return result, nil
	}

	// Stage: resolver. Declarations and imports populate the table.
	ns := c.defaultNamespace(u, doc)
	if err := c.declare(ctx, u, kw, doc.Children, ns, filepath.Dir(path)); err != nil {
		return nil, err
	}
	for _, cerr := range u.res.CheckConstraints(doc.Children) {
		u.diags.Errorf(diag.KindSemantic, doc.Span(), "%v", cerr)
	}

	// Stage: generator.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	generator := gen.New(u.table, u.res, u.store, u.js, u.diags, gen.WithLogger(log))
	out, err := generator.Generate(doc, ns)
	if err != nil {
		u.diags.Errorf(diag.KindCodeGen, doc.Span(), "%v", err)
		return result, nil
	}
	result.Output = out

	// Stage: merger.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if runtime := u.js.Runtime(); runtime != "" {
		u.jsPieces = append(u.jsPieces, merge.Piece{Text: runtime, Priority: -1, File: path})
	}
	if out.CSS != "" {
		u.cssPieces = append(u.cssPieces, merge.Piece{Text: out.CSS, File: path})
	}
	if out.JS != "" {
		u.jsPieces = append(u.jsPieces, merge.Piece{Text: out.JS, File: path})
	}
	artifact, err := merge.NewMerger(c.opts.Merge).Merge(out.HTML, u.cssPieces, u.jsPieces)
	if err != nil {
		u.diags.Errorf(diag.KindCodeGen, doc.Span(), "merge: %v", err)
		return result, nil
	}
	result.Artifact = artifact

	log.Info("compiled",
		"fragments", len(frags),
		"diagnostics", len(u.diags.All()),
		"elapsed", time.Since(start))
	recordCompile(ctx, path, !u.diags.HasErrors(), len(u.diags.All()), time.Since(start))
	return result, nil
}

// defaultNamespace wraps a file without an explicit namespace in one
// named after the file stem, unless disabled.
func (c *Compiler) defaultNamespace(u *unit, doc *ast.Document) string {
	if u.table.Config().DisableDefaultNamespace() {
		return ""
	}
	for _, n := range doc.Children {
		if _, ok := n.(*ast.Namespace); ok {
			return ""
		}
	}
	stem := strings.TrimSuffix(filepath.Base(doc.File), filepath.Ext(doc.File))
	if stem == "" || stem == "." {
		return ""
	}
	if err := u.table.AddNamespace(stem, ""); err != nil {
		u.diags.Errorf(diag.KindSemantic, doc.Span(), "%v", err)
		return ""
	}
	return stem
}

func scanErrSpan(err error) source.Span {
	var se *scanner.ScanError
	if errors.As(err, &se) {
		return source.Span{Start: se.Opener, End: se.Opener}
	}
	return source.Span{}
}

func parseErrSpan(err error) source.Span {
	var pe *parser.ParseError
	if errors.As(err, &pe) {
		return pe.Span
	}
	var le *lexer.LexError
	if errors.As(err, &le) {
		return source.Span{Start: le.Pos, End: le.Pos}
	}
	return source.Span{}
}
