// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package diag collects and renders compiler diagnostics.
package diag

import (
	"fmt"

	"github.com/AleutianAI/chtl/compiler/source"
)

// Severity orders diagnostics.
type Severity int

const (
	// SeverityWarning marks a diagnostic that does not fail compilation.
	SeverityWarning Severity = iota

	// SeverityError marks a failure accumulated for batch reporting.
	SeverityError

	// SeverityFatal marks a failure that aborts the current file.
	SeverityFatal
)

// String returns the lowercase severity name.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// DiagKind classifies a diagnostic for exit-code mapping and filtering.
type DiagKind int

const (
	KindIO DiagKind = iota
	KindSyntax
	KindSemantic
	KindImport
	KindEvaluation
	KindCodeGen
	KindConfig
)

// String returns the kind name used in rendered output.
func (k DiagKind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindSyntax:
		return "syntax"
	case KindSemantic:
		return "semantic"
	case KindImport:
		return "import"
	case KindEvaluation:
		return "evaluation"
	case KindCodeGen:
		return "codegen"
	case KindConfig:
		return "config"
	default:
		return "unknown"
	}
}

// Diagnostic is one user-visible finding.
type Diagnostic struct {
	Severity Severity
	Kind     DiagKind
	Message  string
	Primary  source.Span
	Related  []source.Span
	Hint     string
}

// String renders the diagnostic in plain single-line form.
func (d Diagnostic) String() string {
	loc := ""
	if d.Primary.IsValid() {
		loc = fmt.Sprintf("%s:%d:%d: ", d.Primary.Start.File, d.Primary.Start.Line, d.Primary.Start.Column)
	}
	out := fmt.Sprintf("%s%s [%s]: %s", loc, d.Severity, d.Kind, d.Message)
	if d.Hint != "" {
		out += " (" + d.Hint + ")"
	}
	return out
}

// Collector accumulates diagnostics for one compilation.
//
// Syntax and IO failures abort the current file; semantic findings
// accumulate and are reported at the end of the file's pipeline.
type Collector struct {
	diags  []Diagnostic
	errors int
}

// NewCollector returns an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Add records one diagnostic.
func (c *Collector) Add(d Diagnostic) {
	c.diags = append(c.diags, d)
	if d.Severity >= SeverityError {
		c.errors++
	}
}

// Errorf records an error-severity diagnostic.
func (c *Collector) Errorf(kind DiagKind, span source.Span, format string, args ...any) {
	c.Add(Diagnostic{
		Severity: SeverityError,
		Kind:     kind,
		Message:  fmt.Sprintf(format, args...),
		Primary:  span,
	})
}

// Warnf records a warning diagnostic.
func (c *Collector) Warnf(kind DiagKind, span source.Span, format string, args ...any) {
	c.Add(Diagnostic{
		Severity: SeverityWarning,
		Kind:     kind,
		Message:  fmt.Sprintf(format, args...),
		Primary:  span,
	})
}

// All returns the accumulated diagnostics in insertion order.
func (c *Collector) All() []Diagnostic { return c.diags }

// HasErrors reports whether any error or fatal diagnostic was recorded.
func (c *Collector) HasErrors() bool { return c.errors > 0 }

// ErrorCount returns the number of error and fatal diagnostics.
func (c *Collector) ErrorCount() int { return c.errors }

// ExitCode maps the collected diagnostics to the process exit code:
// 0 success, 1 compile error, 2 I/O error.
func (c *Collector) ExitCode() int {
	if !c.HasErrors() {
		return 0
	}
	for _, d := range c.diags {
		if d.Severity >= SeverityError && d.Kind == KindIO {
			return 2
		}
	}
	return 1
}
