// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package chtljs

import "strings"

// Low-level scanning helpers shared by the CHTL-JS lexer and parser.
// Interior JavaScript is treated as opaque token runs: strings, template
// literals and comments are skipped verbatim, and construct detection
// never fires inside them.

// skipString returns the index just past the string opening at i.
// Unterminated strings run to the end of input; the surrounding JS was
// already brace-balanced by the unified scanner.
func skipString(src string, i int) int {
	quote := src[i]
	j := i + 1
	for j < len(src) {
		switch src[j] {
		case '\\':
			j += 2
		case quote:
			return j + 1
		default:
			j++
		}
	}
	return j
}

// skipTemplate returns the index just past the template literal opening
// at i, honouring nested ${…} interpolations.
func skipTemplate(src string, i int) int {
	j := i + 1
	for j < len(src) {
		switch {
		case src[j] == '\\':
			j += 2
		case src[j] == '`':
			return j + 1
		case src[j] == '$' && j+1 < len(src) && src[j+1] == '{':
			depth := 1
			j += 2
			for j < len(src) && depth > 0 {
				switch src[j] {
				case '{':
					depth++
				case '}':
					depth--
				}
				j++
			}
		default:
			j++
		}
	}
	return j
}

// skipComment returns the index just past the comment opening at i, or i
// when no comment starts there. Comments are opaque: enhanced selectors
// inside them are never recognised.
func skipComment(src string, i int) int {
	if i+1 >= len(src) || src[i] != '/' {
		return i
	}
	switch src[i+1] {
	case '/':
		if nl := strings.IndexByte(src[i:], '\n'); nl >= 0 {
			return i + nl + 1
		}
		return len(src)
	case '*':
		if end := strings.Index(src[i+2:], "*/"); end >= 0 {
			return i + 2 + end + 2
		}
		return len(src)
	default:
		return i
	}
}

// skipOpaque advances past any string, template or comment at i,
// returning the new index and whether anything was skipped.
func skipOpaque(src string, i int) (int, bool) {
	switch src[i] {
	case '"', '\'':
		return skipString(src, i), true
	case '`':
		return skipTemplate(src, i), true
	case '/':
		if j := skipComment(src, i); j != i {
			return j, true
		}
	}
	return i, false
}

// matchBrace returns the index of the brace closing the block opened at
// i, or -1 when unbalanced. Opaque runs are honoured.
func matchBrace(src string, i int) int {
	depth := 0
	for i < len(src) {
		if j, skipped := skipOpaque(src, i); skipped {
			i = j
			continue
		}
		switch src[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
		i++
	}
	return -1
}

// wordAt reads the identifier starting at i; empty when none starts
// there or when i sits mid-word.
func wordAt(src string, i int) string {
	if i > 0 && isJSWord(src[i-1]) {
		return ""
	}
	j := i
	for j < len(src) && isJSWord(src[j]) {
		j++
	}
	return src[i:j]
}

func isJSWord(c byte) bool {
	return c == '_' || c == '$' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// skipWS advances past whitespace.
func skipWS(src string, i int) int {
	for i < len(src) && (src[i] == ' ' || src[i] == '\t' || src[i] == '\n' || src[i] == '\r') {
		i++
	}
	return i
}
