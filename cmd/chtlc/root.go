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
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/chtl/compiler/driver"
	"github.com/AleutianAI/chtl/compiler/merge"
)

// Config is the optional project configuration file (config.yaml).
type Config struct {
	Output      string   `yaml:"output"`
	ModulePaths []string `yaml:"module_paths"`
	Includes    []string `yaml:"includes"`
	Minify      struct {
		HTML bool `yaml:"html"`
		CSS  bool `yaml:"css"`
		JS   bool `yaml:"js"`
	} `yaml:"minify"`
	SeparateFiles bool `yaml:"separate_files"`
	SourceMaps    bool `yaml:"source_maps"`
}

var (
	config Config

	flagConfigPath  string
	flagModulePaths []string
	flagIncludes    []string
	flagMinifyHTML  bool
	flagMinifyCSS   bool
	flagMinifyJS    bool
	flagSourceMap   bool
	flagPretty      bool
	flagStrict      bool
	flagVerbose     bool
	flagDebug       bool
	flagDryRun      bool
)

var rootCmd = &cobra.Command{
	Use:           "chtlc",
	Short:         "CHTL compiler",
	Long:          "chtlc compiles CHTL sources into a combined HTML/CSS/JS artifact.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfigPath, "config", "", "project configuration file")
	pf.StringSliceVar(&flagModulePaths, "module-path", nil, "module search root (repeatable)")
	pf.StringSliceVar(&flagIncludes, "include", nil, "additional source directory (repeatable)")
	pf.BoolVar(&flagMinifyHTML, "minify-html", false, "minify emitted HTML")
	pf.BoolVar(&flagMinifyCSS, "minify-css", false, "minify emitted CSS")
	pf.BoolVar(&flagMinifyJS, "minify-js", false, "minify emitted JS")
	pf.BoolVar(&flagSourceMap, "source-map", false, "emit v3 source maps")
	pf.BoolVar(&flagPretty, "pretty", false, "colored diagnostics")
	pf.BoolVar(&flagStrict, "strict", false, "strict mode: unknown config keys are errors")
	pf.BoolVar(&flagVerbose, "verbose", false, "verbose logging")
	pf.BoolVar(&flagDebug, "debug", false, "debug logging")
	pf.BoolVar(&flagDryRun, "dry-run", false, "compile without writing outputs")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		setupLogging()
		return loadConfig()
	}
}

func setupLogging() {
	level := slog.LevelWarn
	if flagVerbose {
		level = slog.LevelInfo
	}
	if flagDebug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// loadConfig reads config.yaml when present; an explicit --config that
// cannot be read is an error.
func loadConfig() error {
	path := flagConfigPath
	explicit := path != ""
	if path == "" {
		path = "config.yaml"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if explicit {
			return err
		}
		return nil
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return err
	}
	slog.Info("configuration loaded", "path", path)
	return nil
}

// driverOptions merges the config file and command-line flags into the
// compiler options. A boolean option is on when either the config file or
// a flag turns it on, so a flag cannot switch off what the config file
// enables; separate-file output comes from the config file only. Module
// roots are the module-path flags, then the config's module paths, then
// the include flags.
func driverOptions() driver.Options {
	mergeOpts := merge.DefaultOptions()
	mergeOpts.MinifyHTML = config.Minify.HTML || flagMinifyHTML
	mergeOpts.MinifyCSS = config.Minify.CSS || flagMinifyCSS
	mergeOpts.MinifyJS = config.Minify.JS || flagMinifyJS
	mergeOpts.OutputSourceMaps = config.SourceMaps || flagSourceMap
	if config.SeparateFiles {
		mergeOpts.SeparateFiles = true
		mergeOpts.InlineCSS = false
		mergeOpts.InlineJS = false
	}

	roots := append(append([]string(nil), flagModulePaths...), config.ModulePaths...)
	roots = append(roots, flagIncludes...)
	return driver.Options{
		ModuleRoots: roots,
		Strict:      flagStrict,
		Lint:        true,
		Merge:       mergeOpts,
		Logger:      slog.Default(),
	}
}

func outputDir() string {
	if config.Output != "" {
		return config.Output
	}
	return "dist"
}
