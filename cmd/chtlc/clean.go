// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove compiled artifacts from the output directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := outputDir()
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		removed := 0
		for _, e := range entries {
			if e.IsDir() || !isArtifact(e.Name()) {
				continue
			}
			path := filepath.Join(dir, e.Name())
			if flagDryRun {
				fmt.Fprintf(os.Stderr, "dry run: would remove %s\n", path)
				continue
			}
			if err := os.Remove(path); err != nil {
				return err
			}
			removed++
		}
		if !flagDryRun {
			fmt.Fprintf(os.Stderr, "removed %d artifacts from %s\n", removed, dir)
		}
		return nil
	},
}

// isArtifact matches only files the compiler writes; anything else in
// the output directory is left alone.
func isArtifact(name string) bool {
	switch filepath.Ext(name) {
	case ".html", ".css", ".js":
		return true
	case ".map":
		return strings.HasSuffix(name, ".html.map") ||
			strings.HasSuffix(name, ".css.map") ||
			strings.HasSuffix(name, ".js.map")
	default:
		return false
	}
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}
