// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package loader

import "errors"

// Sentinel errors for import resolution.
var (
	// ErrNotFound indicates no search-path candidate exists.
	ErrNotFound = errors.New("import not found")

	// ErrNotAModule indicates a directory without the info/ + src/
	// layout.
	ErrNotAModule = errors.New("not a CMOD/CJMOD module directory")

	// ErrNoInfoFile indicates a module whose info/ subtree has no .chtl
	// file.
	ErrNoInfoFile = errors.New("module has no info file")

	// ErrInvalidInfo indicates module metadata that fails validation.
	ErrInvalidInfo = errors.New("invalid module metadata")

	// ErrVersionRange indicates a compiler version outside the module's
	// declared min/max range.
	ErrVersionRange = errors.New("compiler version outside module range")
)
