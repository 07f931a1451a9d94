// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package scanner

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Package-level meter for fragment scanning.
var meter = otel.Meter("chtl.scanner")

// Metrics for scan operations.
var (
	scanLatency    metric.Float64Histogram
	fragmentsTotal metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		scanLatency, err = meter.Float64Histogram(
			"chtl_scan_duration_seconds",
			metric.WithDescription("Duration of unified scanner passes"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		fragmentsTotal, err = meter.Int64Counter(
			"chtl_scan_fragments_total",
			metric.WithDescription("Total fragments produced by the scanner"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// recordScan records one completed scan. No-op when metrics failed to init.
func recordScan(ctx context.Context, file string, fragments int, elapsed time.Duration) {
	if scanLatency == nil || fragmentsTotal == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("file", file))
	scanLatency.Record(ctx, elapsed.Seconds(), attrs)
	fragmentsTotal.Add(ctx, int64(fragments), attrs)
}
