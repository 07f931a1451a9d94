// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package symbol

import (
	"fmt"
	"strconv"
	"strings"
)

// Known configuration keys. Values are stored as strings and interpreted
// as bool or int where the key demands it.
const (
	KeyDebugMode                 = "DEBUG_MODE"
	KeyIndexInitialCount         = "INDEX_INITIAL_COUNT"
	KeyOptionCount               = "OPTION_COUNT"
	KeyDisableNameGroup          = "DISABLE_NAME_GROUP"
	KeyDisableStyleAutoAddClass  = "DISABLE_STYLE_AUTO_ADD_CLASS"
	KeyDisableStyleAutoAddID     = "DISABLE_STYLE_AUTO_ADD_ID"
	KeyDisableDefaultNamespace   = "DISABLE_DEFAULT_NAMESPACE"
	KeyDisableCustomOriginType   = "DISABLE_CUSTOM_ORIGIN_TYPE"
	KeyDisableScriptAutoAddClass = "DISABLE_SCRIPT_AUTO_ADD_CLASS"
	KeyDisableScriptAutoAddID    = "DISABLE_SCRIPT_AUTO_ADD_ID"
)

var knownKeys = map[string]bool{
	KeyDebugMode:                 true,
	KeyIndexInitialCount:         true,
	KeyOptionCount:               true,
	KeyDisableNameGroup:          true,
	KeyDisableStyleAutoAddClass:  true,
	KeyDisableStyleAutoAddID:     true,
	KeyDisableDefaultNamespace:   true,
	KeyDisableCustomOriginType:   true,
	KeyDisableScriptAutoAddClass: true,
	KeyDisableScriptAutoAddID:    true,
}

// Config holds the active configuration of a compilation.
//
// Entries come from [Configuration] blocks, which are processed in a
// pre-pass before the rest of the file parses so KEYWORD_* rebindings
// take effect for the whole file set.
type Config struct {
	entries map[string]string
}

// NewConfig returns a configuration with no entries set.
func NewConfig() *Config {
	return &Config{entries: make(map[string]string)}
}

// Set stores one entry. Unknown keys are accepted unless strict is true;
// KEYWORD_* keys are always accepted.
func (c *Config) Set(key, value string, strict bool) error {
	if !knownKeys[key] && !strings.HasPrefix(key, "KEYWORD_") {
		if strict {
			return fmt.Errorf("%w: %s", ErrUnknownConfigKey, key)
		}
	}
	c.entries[key] = value
	return nil
}

// Get returns the raw string value of a key.
func (c *Config) Get(key string) (string, bool) {
	v, ok := c.entries[key]
	return v, ok
}

// Bool interprets a key as a boolean; absent keys return def.
func (c *Config) Bool(key string, def bool) bool {
	v, ok := c.entries[key]
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(strings.ToLower(v))
	if err != nil {
		return def
	}
	return b
}

// Int interprets a key as an integer; absent or malformed keys return def.
func (c *Config) Int(key string, def int) int {
	v, ok := c.entries[key]
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// DebugMode reports whether DEBUG_MODE is on.
func (c *Config) DebugMode() bool { return c.Bool(KeyDebugMode, false) }

// IndexInitialCount returns the base value of [i] usage indexes.
func (c *Config) IndexInitialCount() int { return c.Int(KeyIndexInitialCount, 0) }

// DisableStyleAutoAddClass reports whether the generator may not add a
// class attribute to carry nested-selector bindings.
func (c *Config) DisableStyleAutoAddClass() bool {
	return c.Bool(KeyDisableStyleAutoAddClass, false)
}

// DisableStyleAutoAddID reports whether the generator may not add an id.
func (c *Config) DisableStyleAutoAddID() bool {
	return c.Bool(KeyDisableStyleAutoAddID, false)
}

// DisableDefaultNamespace reports whether files without an explicit
// namespace are left in the global scope instead of being wrapped in a
// namespace named after the file stem.
func (c *Config) DisableDefaultNamespace() bool {
	return c.Bool(KeyDisableDefaultNamespace, false)
}

// DisableCustomOriginType reports whether new user origin types may not
// be registered.
func (c *Config) DisableCustomOriginType() bool {
	return c.Bool(KeyDisableCustomOriginType, false)
}

// KeywordEntries returns all KEYWORD_* rebinding entries for the lexer.
func (c *Config) KeywordEntries() map[string]string {
	out := make(map[string]string)
	for k, v := range c.entries {
		if strings.HasPrefix(k, "KEYWORD_") {
			out[k] = v
		}
	}
	return out
}
