// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package driver

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Package-level meter for compilation runs.
var meter = otel.Meter("chtl.driver")

// Metrics for compilation operations.
var (
	compileLatency   metric.Float64Histogram
	compilationsRun  metric.Int64Counter
	diagnosticsTotal metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		compileLatency, err = meter.Float64Histogram(
			"chtl_compile_duration_seconds",
			metric.WithDescription("Duration of full pipeline runs"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		compilationsRun, err = meter.Int64Counter(
			"chtl_compilations_total",
			metric.WithDescription("Total compilation runs"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		diagnosticsTotal, err = meter.Int64Counter(
			"chtl_diagnostics_total",
			metric.WithDescription("Diagnostics produced across compilations"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// recordCompile records one finished compilation. No-op when metrics
// failed to init.
func recordCompile(ctx context.Context, file string, ok bool, diags int, elapsed time.Duration) {
	if compileLatency == nil || compilationsRun == nil || diagnosticsTotal == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("file", file),
		attribute.Bool("success", ok),
	)
	compileLatency.Record(ctx, elapsed.Seconds(), attrs)
	compilationsRun.Add(ctx, 1, attrs)
	diagnosticsTotal.Add(ctx, int64(diags), attrs)
}
