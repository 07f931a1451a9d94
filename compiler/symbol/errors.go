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

import "errors"

// Sentinel errors for the symbol table.
var (
	// ErrDuplicateDefinition indicates a name already defined in its
	// namespace and kind.
	ErrDuplicateDefinition = errors.New("duplicate definition")

	// ErrCyclicNamespace indicates a namespace whose ancestry loops.
	ErrCyclicNamespace = errors.New("cyclic namespace")

	// ErrNamespaceConflict indicates a namespace re-registered under a
	// different parent.
	ErrNamespaceConflict = errors.New("namespace registered under two parents")

	// ErrUnknownConfigKey indicates an unrecognised configuration key in
	// strict mode.
	ErrUnknownConfigKey = errors.New("unknown configuration key")

	// ErrCustomOriginDisabled indicates a user origin-type registration
	// while DISABLE_CUSTOM_ORIGIN_TYPE is set.
	ErrCustomOriginDisabled = errors.New("custom origin types are disabled")
)
