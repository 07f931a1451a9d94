// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package loader locates and loads imported files and CMOD/CJMOD
// packages.
//
// Search order for an import path: absolute paths verbatim, then
// relative to the importing file's directory, then that directory's
// module/ subdirectory, then the configured module roots. Files are
// read once and interned by canonical absolute path. A "currently
// loading" set turns import cycles into tolerated no-ops; unresolved
// paths stay errors.
package loader

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"
)

// fileCacheSize bounds the interned file cache. Builds touching more
// files than this re-read the overflow, they do not break.
const fileCacheSize = 512

// Resolver locates, reads and deduplicates imports for one compilation.
type Resolver struct {
	moduleRoots []string
	log         *slog.Logger

	files   *lru.Cache[string, string]
	loading map[string]bool
	loaded  map[string]bool
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used for debug output.
func WithLogger(log *slog.Logger) Option {
	return func(r *Resolver) { r.log = log }
}

// NewResolver creates a Resolver. moduleRoots are searched last, in
// order (project module dirs first, the official module root after).
func NewResolver(moduleRoots []string, opts ...Option) (*Resolver, error) {
	files, err := lru.New[string, string](fileCacheSize)
	if err != nil {
		return nil, fmt.Errorf("file cache: %w", err)
	}
	r := &Resolver{
		moduleRoots: moduleRoots,
		log:         slog.Default(),
		files:       files,
		loading:     make(map[string]bool),
		loaded:      make(map[string]bool),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Resolve finds the file or module directory an import path names.
// fromDir is the directory of the importing file.
func (r *Resolver) Resolve(fromDir, path string) (string, error) {
	candidates := make([]string, 0, 4)
	if filepath.IsAbs(path) {
		candidates = append(candidates, path)
	} else {
		candidates = append(candidates,
			filepath.Join(fromDir, path),
			filepath.Join(fromDir, "module", path),
		)
		for _, root := range r.moduleRoots {
			candidates = append(candidates, filepath.Join(root, path))
		}
	}

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			abs, err := filepath.Abs(c)
			if err != nil {
				return "", fmt.Errorf("canonicalise %q: %w", c, err)
			}
			return filepath.Clean(abs), nil
		}
	}
	return "", fmt.Errorf("%q (from %q): %w", path, fromDir, ErrNotFound)
}

// ReadFile reads a file through the intern cache.
func (r *Resolver) ReadFile(path string) (string, error) {
	if text, ok := r.files.Get(path); ok {
		return text, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %q: %w", path, err)
	}
	text := string(data)
	r.files.Add(path, text)
	return text, nil
}

// Load resolves and processes one import exactly once.
//
// process receives the canonical path and file text. A path already
// being loaded (an import cycle) or already loaded (a cache hit) is a
// no-op; both return nil so mutually-referencing files work.
func (r *Resolver) Load(ctx context.Context, fromDir, path string, process func(abs, text string) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	abs, err := r.Resolve(fromDir, path)
	if err != nil {
		return err
	}
	if r.loading[abs] {
		r.log.Debug("import cycle tolerated", "path", abs)
		return nil
	}
	if r.loaded[abs] {
		return nil
	}

	text, err := r.ReadFile(abs)
	if err != nil {
		return err
	}

	r.loading[abs] = true
	defer delete(r.loading, abs)

	if err := process(abs, text); err != nil {
		return err
	}
	r.loaded[abs] = true
	return nil
}

// Loaded reports whether a canonical path was fully processed.
func (r *Resolver) Loaded(abs string) bool { return r.loaded[abs] }
