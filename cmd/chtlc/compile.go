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

	"github.com/AleutianAI/chtl/compiler/diag"
	"github.com/AleutianAI/chtl/compiler/driver"
)

var flagOutput string

var compileCmd = &cobra.Command{
	Use:   "compile <input.chtl>",
	Short: "Compile one CHTL file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := driver.New(driverOptions())
		result, err := c.CompileFile(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		reportDiagnostics(result)
		if result.ExitCode() != 0 {
			return &exitError{code: result.ExitCode()}
		}

		out := flagOutput
		if out == "" {
			stem := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			out = filepath.Join(outputDir(), stem+".html")
		}
		if flagDryRun {
			fmt.Fprintf(os.Stderr, "dry run: would write %s\n", out)
			return nil
		}
		return writeArtifact(out, result)
	},
}

func init() {
	compileCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "output file path")
	rootCmd.AddCommand(compileCmd)
}

// writeArtifact writes the HTML plus any sidecar CSS/JS and source maps
// next to it.
func writeArtifact(htmlPath string, result *driver.Result) error {
	if err := os.MkdirAll(filepath.Dir(htmlPath), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(htmlPath, []byte(result.Artifact.HTML), 0o644); err != nil {
		return err
	}
	dir := filepath.Dir(htmlPath)
	stem := strings.TrimSuffix(filepath.Base(htmlPath), filepath.Ext(htmlPath))
	if result.Artifact.CSS != "" {
		if err := os.WriteFile(filepath.Join(dir, stem+".css"), []byte(result.Artifact.CSS), 0o644); err != nil {
			return err
		}
	}
	if result.Artifact.JS != "" {
		if err := os.WriteFile(filepath.Join(dir, stem+".js"), []byte(result.Artifact.JS), 0o644); err != nil {
			return err
		}
	}
	for name, content := range result.Artifact.SourceMaps {
		if err := os.WriteFile(filepath.Join(dir, filepath.Base(name)), []byte(content), 0o644); err != nil {
			return err
		}
	}
	return nil
}

func reportDiagnostics(result *driver.Result) {
	if len(result.Diags.All()) == 0 {
		return
	}
	r := diag.NewRenderer(flagPretty)
	fmt.Fprintln(os.Stderr, r.RenderAll(result.Diags.All()))
}
