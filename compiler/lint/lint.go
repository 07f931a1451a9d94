// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package lint syntax-checks raw CSS and JavaScript fragments.
//
// Raw fragments (global style bodies, origin blocks) pass through the
// compiler untouched; lint only reports syntax errors as diagnostics so
// broken pass-through content is caught at compile time instead of in
// the browser. Checking uses tree-sitter with the css and javascript
// grammars.
package lint

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/css"
	"github.com/smacker/go-tree-sitter/javascript"

	"github.com/AleutianAI/chtl/compiler/diag"
	"github.com/AleutianAI/chtl/compiler/scanner"
)

// Checker validates raw fragments.
//
// Checker is safe for concurrent use; each Check call creates its own
// tree-sitter parser instance.
type Checker struct {
	options Options
}

// Options configures Checker behavior.
type Options struct {
	// MaxFragmentSize is the maximum fragment size in bytes to check.
	// Larger fragments are skipped silently. Default: 1MB.
	MaxFragmentSize int
}

// DefaultOptions returns the default options.
func DefaultOptions() Options {
	return Options{MaxFragmentSize: 1 * 1024 * 1024}
}

// CheckerOption is a functional option for configuring Checker.
type CheckerOption func(*Options)

// WithMaxFragmentSize sets the maximum fragment size to check.
func WithMaxFragmentSize(size int) CheckerOption {
	return func(o *Options) {
		o.MaxFragmentSize = size
	}
}

// NewChecker creates a Checker with the given options.
func NewChecker(opts ...CheckerOption) *Checker {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return &Checker{options: options}
}

// Check validates one fragment and records findings on the collector.
// CHTL and CHTL-JS fragments are not lint's concern and are skipped.
func (c *Checker) Check(ctx context.Context, frag scanner.Fragment, diags *diag.Collector) error {
	var language *sitter.Language
	switch frag.Kind {
	case scanner.KindCSS:
		language = css.GetLanguage()
	case scanner.KindJS:
		language = javascript.GetLanguage()
	default:
		return nil
	}
	if len(frag.Text) == 0 || len(frag.Text) > c.options.MaxFragmentSize {
		return nil
	}

	parser := sitter.NewParser()
	parser.SetLanguage(language)
	tree, err := parser.ParseCtx(ctx, nil, []byte(frag.Text))
	if err != nil {
		return fmt.Errorf("parse %s fragment: %w", frag.Kind, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if !root.HasError() {
		return nil
	}
	c.reportErrors(root, frag, diags)
	return nil
}

// reportErrors walks the tree for ERROR and MISSING nodes. Findings are
// warnings: pass-through output is emitted either way.
func (c *Checker) reportErrors(node *sitter.Node, frag scanner.Fragment, diags *diag.Collector) {
	if node.IsError() || node.IsMissing() {
		diags.Warnf(diag.KindCodeGen, frag.Span,
			"raw %s fragment has a syntax error near byte %d", frag.Kind, node.StartByte())
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		if child := node.Child(i); child != nil && child.HasError() {
			c.reportErrors(child, frag, diags)
		}
	}
}
