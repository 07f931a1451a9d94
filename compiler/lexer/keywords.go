// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package lexer

import "strings"

// Canonical CHTL keywords. These are the spellings the parser matches
// after any KEYWORD_* rebinding has been reversed.
const (
	KwText    = "text"
	KwStyle   = "style"
	KwScript  = "script"
	KwInherit = "inherit"
	KwDelete  = "delete"
	KwInsert  = "insert"
	KwBefore  = "before"
	KwAfter   = "after"
	KwReplace = "replace"
	KwAt      = "at"
	KwTop     = "top"
	KwBottom  = "bottom"
	KwFrom    = "from"
	KwAs      = "as"
	KwExcept  = "except"
	KwUse     = "use"
)

// Keywords resolves user-visible keyword spellings back to canonical ones.
//
// The active configuration may rebind keywords through KEYWORD_* entries
// (KEYWORD_INHERIT: extends; makes "extends" mean "inherit"). The lexer's
// token stream does not depend on the table: keywords reach the parser as
// Ident tokens, and the parser maps them to canonical spellings through
// Canonical.
type Keywords struct {
	rebound map[string]string // user spelling -> canonical
}

// NewKeywords builds the resolution table from KEYWORD_* configuration
// entries. Keys are the configuration keys ("KEYWORD_INHERIT"), values the
// user spelling.
func NewKeywords(entries map[string]string) *Keywords {
	kw := &Keywords{rebound: make(map[string]string)}
	for key, spelling := range entries {
		canonical, ok := strings.CutPrefix(key, "KEYWORD_")
		if !ok || spelling == "" {
			continue
		}
		kw.rebound[spelling] = strings.ToLower(canonical)
	}
	return kw
}

// Canonical maps a token text to its canonical keyword spelling. Text that
// is not a rebound keyword is returned unchanged.
func (kw *Keywords) Canonical(text string) string {
	if kw == nil {
		return text
	}
	if canonical, ok := kw.rebound[text]; ok {
		return canonical
	}
	// Rebinding adds a spelling; it does not shadow the canonical word,
	// which keeps working alongside the user spelling.
	return text
}

// Is reports whether the token text means the given canonical keyword.
func (kw *Keywords) Is(text, canonical string) bool {
	return kw.Canonical(text) == canonical
}
