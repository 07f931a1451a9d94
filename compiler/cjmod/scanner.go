// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package cjmod

import (
	"fmt"
	"strings"

	"github.com/AleutianAI/chtl/compiler/chtljs"
)

// Scanner binds source blocks against schemas.
//
// The scan pre-truncates the source at the schema keyword, then walks
// the keyword's block with two cursors: one over the block entries, one
// over the ordered parameters. Unordered parameters match by entry name
// regardless of position; the variadic parameter absorbs the rest.
type Scanner struct{}

// Scan locates "keyword { … }" in src and binds its entries.
func (Scanner) Scan(src string, schema *Schema) (*Arg, error) {
	i := keywordIndex(src, schema.Keyword)
	if i < 0 {
		return nil, fmt.Errorf("%q: %w", schema.Keyword, ErrKeywordNotFound)
	}
	src = src[i+len(schema.Keyword):] // pre-truncation
	ob := strings.IndexByte(src, '{')
	if ob < 0 {
		return nil, fmt.Errorf("%q: %w", schema.Keyword, ErrKeywordNotFound)
	}
	cb := matchedBrace(src, ob)
	if cb < 0 {
		return nil, fmt.Errorf("%q: unbalanced block", schema.Keyword)
	}
	return ScanBlock(src[ob:cb+1], schema)
}

// ScanBlock binds a "{ … }" block (braces included) against a schema.
func ScanBlock(block string, schema *Schema) (*Arg, error) {
	body := strings.TrimSpace(block)
	body = strings.TrimPrefix(body, "{")
	body = strings.TrimSuffix(body, "}")
	entries, err := chtljs.SplitEntries(body)
	if err != nil {
		return nil, err
	}

	arg := NewArg(schema)
	used := make([]bool, len(entries))

	// Unordered parameters first: matched by name among the entries.
	for _, p := range schema.Params {
		if !p.Unordered {
			continue
		}
		for i, e := range entries {
			if used[i] || e.Key != p.Name {
				continue
			}
			arg.Set(p.Name, e.Value)
			used[i] = true
			break
		}
	}

	// Ordered parameters consume the remaining entries in order; the
	// variadic tail absorbs whatever is left.
	next := 0
	advance := func() (chtljs.Entry, bool) {
		for next < len(entries) {
			if !used[next] {
				used[next] = true
				e := entries[next]
				next++
				return e, true
			}
			next++
		}
		return chtljs.Entry{}, false
	}
	for _, p := range schema.Params {
		if p.Unordered {
			continue
		}
		if p.Variadic {
			for {
				e, ok := advance()
				if !ok {
					break
				}
				arg.AppendVariadic(e.Value)
			}
			continue
		}
		if e, ok := advance(); ok {
			arg.Set(p.Name, e.Value)
		}
	}

	for _, p := range schema.Params {
		if !p.Explicit {
			continue
		}
		if _, ok := arg.Value(p.Name); !ok {
			return nil, fmt.Errorf("%s.%s: %w", schema.Keyword, p.Name, ErrMissingArgument)
		}
	}
	return arg, nil
}

// keywordIndex finds the keyword at a word boundary.
func keywordIndex(src, keyword string) int {
	from := 0
	for {
		i := strings.Index(src[from:], keyword)
		if i < 0 {
			return -1
		}
		i += from
		before := i == 0 || !isWordByte(src[i-1])
		afterIdx := i + len(keyword)
		after := afterIdx >= len(src) || !isWordByte(src[afterIdx])
		if before && after {
			return i
		}
		from = i + len(keyword)
	}
}

// matchedBrace returns the index of the brace closing the block opened
// at i, or -1.
func matchedBrace(src string, i int) int {
	depth := 0
	for ; i < len(src); i++ {
		switch src[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func isWordByte(c byte) bool {
	return c == '_' || c == '$' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
