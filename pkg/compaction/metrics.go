package compaction

import (
	"fmt"

	"go.opentelemetry.io/otel/metric"
)

const meterName = "ucompact/compaction"

type engineMetrics struct {
	compressCounter  metric.Int64Counter
	compressDuration metric.Float64Histogram
	compressRatio    metric.Float64Histogram
	expandCounter    metric.Int64Counter
	errorCounter     metric.Int64Counter
}

func newEngineMetrics(meter metric.Meter) (*engineMetrics, error) {
	m := &engineMetrics{}
	var err error

	m.compressCounter, err = meter.Int64Counter(
		"compaction.compress.operations_total",
		metric.WithDescription("Total number of Compress calls"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create compress counter: %w", err)
	}

	m.compressDuration, err = meter.Float64Histogram(
		"compaction.compress.duration_seconds",
		metric.WithDescription("Time spent in Compress"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0),
	)
	if err != nil {
		return nil, fmt.Errorf("create compress duration histogram: %w", err)
	}

	m.compressRatio, err = meter.Float64Histogram(
		"compaction.compress.ratio",
		metric.WithDescription("Character compression ratio achieved per Compress call"),
		metric.WithUnit("1"),
		metric.WithExplicitBucketBoundaries(1.0, 1.5, 2.0, 3.0, 5.0, 10.0, 20.0),
	)
	if err != nil {
		return nil, fmt.Errorf("create compress ratio histogram: %w", err)
	}

	m.expandCounter, err = meter.Int64Counter(
		"compaction.expand.operations_total",
		metric.WithDescription("Total number of Uncompress calls"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create expand counter: %w", err)
	}

	m.errorCounter, err = meter.Int64Counter(
		"compaction.errors_total",
		metric.WithDescription("Total number of engine operations returning an error"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create error counter: %w", err)
	}

	return m, nil
}
