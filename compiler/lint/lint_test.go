// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package lint

import (
	"context"
	"testing"

	"github.com/AleutianAI/chtl/compiler/diag"
	"github.com/AleutianAI/chtl/compiler/scanner"
)

func check(t *testing.T, kind scanner.Kind, text string) *diag.Collector {
	t.Helper()
	diags := diag.NewCollector()
	c := NewChecker()
	err := c.Check(context.Background(), scanner.Fragment{Kind: kind, Text: text}, diags)
	if err != nil {
		t.Fatalf("unexpected check error: %v", err)
	}
	return diags
}

func TestCheck_ValidCSS(t *testing.T) {
	diags := check(t, scanner.KindCSS, "body { margin: 0; } .x:hover { color: red; }")
	if len(diags.All()) != 0 {
		t.Errorf("unexpected findings: %v", diags.All())
	}
}

func TestCheck_BrokenCSS(t *testing.T) {
	diags := check(t, scanner.KindCSS, "body { margin: ; } }")
	if len(diags.All()) == 0 {
		t.Error("expected findings for broken CSS")
	}
}

func TestCheck_ValidJS(t *testing.T) {
	diags := check(t, scanner.KindJS, "function f(a) { return a * 2; }\nconst x = f(2);")
	if len(diags.All()) != 0 {
		t.Errorf("unexpected findings: %v", diags.All())
	}
}

func TestCheck_BrokenJS(t *testing.T) {
	diags := check(t, scanner.KindJS, "function ( { return ;")
	if len(diags.All()) == 0 {
		t.Error("expected findings for broken JS")
	}
}

func TestCheck_SkipsOtherKinds(t *testing.T) {
	diags := check(t, scanner.KindCHTLJS, "{{#x}}->listen { click: f }")
	if len(diags.All()) != 0 {
		t.Errorf("CHTL-JS fragments are not lint's concern: %v", diags.All())
	}
}

func TestCheck_FindingsAreWarnings(t *testing.T) {
	diags := check(t, scanner.KindCSS, "broken {{{")
	if diags.HasErrors() {
		t.Error("lint findings must not fail the build")
	}
}

func TestCheck_SizeCap(t *testing.T) {
	c := NewChecker(WithMaxFragmentSize(4))
	diags := diag.NewCollector()
	err := c.Check(context.Background(), scanner.Fragment{Kind: scanner.KindCSS, Text: "body {{{{"}, diags)
	if err != nil {
		t.Fatal(err)
	}
	if len(diags.All()) != 0 {
		t.Error("oversized fragments are skipped")
	}
}
