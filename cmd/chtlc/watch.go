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
	"context"
	"errors"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/chtl/compiler/devserver"
	"github.com/AleutianAI/chtl/compiler/watch"
)

var flagServeAddr string

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Rebuild on change and serve the output with live reload",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		rebuild := func() {
			if err := buildCmd.RunE(cmd, args); err != nil {
				var ee *exitError
				if !errors.As(err, &ee) {
					slog.Error("rebuild failed", "error", err)
				}
			}
		}
		rebuild()

		server := devserver.New(outputDir(), devserver.WithLogger(slog.Default()))
		go func() {
			if err := server.Run(ctx, flagServeAddr); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("dev server stopped", "error", err)
			}
		}()

		w, err := watch.New([]string{args[0]}, watch.WithLogger(slog.Default()))
		if err != nil {
			return err
		}
		err = w.Run(ctx, func(paths []string) {
			slog.Info("rebuilding", "changed", len(paths))
			rebuild()
			server.NotifyReload()
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	watchCmd.Flags().StringVar(&flagServeAddr, "addr", "127.0.0.1:8173", "dev server listen address")
	rootCmd.AddCommand(watchCmd)
}
