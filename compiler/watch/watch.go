// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package watch rebuilds on source changes.
//
// Filesystem events are debounced so editor save bursts trigger one
// rebuild, and only writes, creations and renames of .chtl, .css and .js
// files count.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce batches rapid successive events into one callback.
const DefaultDebounce = 200 * time.Millisecond

// Watcher observes source directories and invokes a rebuild callback.
type Watcher struct {
	fs       *fsnotify.Watcher
	debounce time.Duration
	log      *slog.Logger
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides the event batching window.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithLogger sets the logger used for event output.
func WithLogger(log *slog.Logger) Option {
	return func(w *Watcher) { w.log = log }
}

// New creates a Watcher over the given directories (recursively).
func New(dirs []string, opts ...Option) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{fs: fs, debounce: DefaultDebounce, log: slog.Default()}
	for _, opt := range opts {
		opt(w)
	}
	for _, dir := range dirs {
		if err := w.addRecursive(dir); err != nil {
			fs.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && !strings.HasPrefix(d.Name(), ".") {
			return w.fs.Add(path)
		}
		return nil
	})
}

// Run blocks, invoking onChange with the batch of changed files until
// the context ends.
func (w *Watcher) Run(ctx context.Context, onChange func(paths []string)) error {
	defer w.fs.Close()

	var pending []string
	var timer *time.Timer
	fire := make(chan struct{}, 1)

	schedule := func() {
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(w.debounce, func() {
			select {
			case fire <- struct{}{}:
			default:
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !relevant(ev) {
				continue
			}
			w.log.Debug("source changed", "path", ev.Name, "op", ev.Op.String())
			pending = append(pending, ev.Name)
			schedule()

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", "error", err)

		case <-fire:
			if len(pending) == 0 {
				continue
			}
			batch := dedupe(pending)
			pending = nil
			onChange(batch)
		}
	}
}

func relevant(ev fsnotify.Event) bool {
	if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Rename) {
		return false
	}
	return strings.HasSuffix(ev.Name, ".chtl") ||
		strings.HasSuffix(ev.Name, ".css") ||
		strings.HasSuffix(ev.Name, ".js")
}

func dedupe(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	var out []string
	for _, p := range paths {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}
