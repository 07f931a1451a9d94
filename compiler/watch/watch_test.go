// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_BatchesChanges(t *testing.T) {
	dir := t.TempDir()
	w, err := New([]string{dir}, WithDebounce(50*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	batches := make(chan []string, 1)
	go func() {
		_ = w.Run(ctx, func(paths []string) {
			select {
			case batches <- paths:
			default:
			}
			cancel()
		})
	}()

	// Give the watcher a moment to arm, then burst-write.
	time.Sleep(100 * time.Millisecond)
	target := filepath.Join(dir, "page.chtl")
	require.NoError(t, os.WriteFile(target, []byte("div {}"), 0o644))
	require.NoError(t, os.WriteFile(target, []byte("div { p {} }"), 0o644))

	select {
	case batch := <-batches:
		require.NotEmpty(t, batch)
		assert.Contains(t, batch[0], "page.chtl")
	case <-ctx.Done():
		t.Fatal("no rebuild batch arrived")
	}
}

func TestWatcher_IgnoresIrrelevantFiles(t *testing.T) {
	dir := t.TempDir()
	w, err := New([]string{dir}, WithDebounce(30*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	fired := false
	go func() {
		_ = w.Run(ctx, func([]string) { fired = true })
	}()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	<-ctx.Done()
	assert.False(t, fired, "non-source files must not trigger rebuilds")
}
