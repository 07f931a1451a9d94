// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package diag

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Renderer formats diagnostics for terminal output.
type Renderer struct {
	pretty bool

	fatalStyle lipgloss.Style
	errorStyle lipgloss.Style
	warnStyle  lipgloss.Style
	locStyle   lipgloss.Style
	hintStyle  lipgloss.Style
}

// NewRenderer creates a Renderer; pretty enables colored output.
func NewRenderer(pretty bool) *Renderer {
	return &Renderer{
		pretty:     pretty,
		fatalStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		errorStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		warnStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		locStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		hintStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true),
	}
}

// Render formats one diagnostic.
func (r *Renderer) Render(d Diagnostic) string {
	if !r.pretty {
		return d.String()
	}

	var severity string
	switch d.Severity {
	case SeverityFatal:
		severity = r.fatalStyle.Render("fatal")
	case SeverityError:
		severity = r.errorStyle.Render("error")
	default:
		severity = r.warnStyle.Render("warning")
	}

	var sb strings.Builder
	if d.Primary.IsValid() {
		sb.WriteString(r.locStyle.Render(fmt.Sprintf("%s:%d:%d",
			d.Primary.Start.File, d.Primary.Start.Line, d.Primary.Start.Column)))
		sb.WriteString(" ")
	}
	sb.WriteString(severity)
	sb.WriteString(fmt.Sprintf(" [%s]: %s", d.Kind, d.Message))
	if d.Hint != "" {
		sb.WriteString("\n  ")
		sb.WriteString(r.hintStyle.Render("hint: " + d.Hint))
	}
	for _, rel := range d.Related {
		if rel.IsValid() {
			sb.WriteString(fmt.Sprintf("\n  related: %s:%d:%d",
				rel.Start.File, rel.Start.Line, rel.Start.Column))
		}
	}
	return sb.String()
}

// RenderAll formats every diagnostic, one per line.
func (r *Renderer) RenderAll(diags []Diagnostic) string {
	lines := make([]string, len(diags))
	for i, d := range diags {
		lines[i] = r.Render(d)
	}
	return strings.Join(lines, "\n")
}
