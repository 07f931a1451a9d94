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
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/chtl/compiler/driver"
)

var buildCmd = &cobra.Command{
	Use:   "build <project>",
	Short: "Compile every .chtl file in a project directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sources, err := collectSources(args[0])
		if err != nil {
			return err
		}
		if len(sources) == 0 {
			return fmt.Errorf("no .chtl files under %q", args[0])
		}

		c := driver.New(driverOptions())
		worst := 0
		for _, src := range sources {
			result, err := c.CompileFile(cmd.Context(), src)
			if err != nil {
				return err
			}
			reportDiagnostics(result)
			if code := result.ExitCode(); code != 0 {
				if code > worst {
					worst = code
				}
				// A failing file skips its own downstream passes but not
				// its siblings, unless strict mode is on.
				if flagStrict {
					return &exitError{code: code}
				}
				continue
			}
			if flagDryRun {
				continue
			}
			stem := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
			out := filepath.Join(outputDir(), stem+".html")
			if err := writeArtifact(out, result); err != nil {
				return err
			}
		}
		if worst != 0 {
			return &exitError{code: worst}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
}

// collectSources lists .chtl files under the project directory plus any
// --include directories, skipping module package subtrees.
func collectSources(project string) ([]string, error) {
	dirs := append([]string{project}, flagIncludes...)
	var sources []string
	for _, dir := range dirs {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if d.Name() == "module" || strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if strings.HasSuffix(path, ".chtl") {
				sources = append(sources, path)
			}
			return nil
		})
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
	}
	return sources, nil
}
