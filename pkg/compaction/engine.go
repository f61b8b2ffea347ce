package compaction

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/arborlane/ucompact/internal/logging"
)

const tracerName = "github.com/arborlane/ucompact/pkg/compaction"

// Engine wraps the package-level Compress/Uncompress/Search functions with
// tracing, metrics, and structured logging, for callers that want an
// instrumented entry point rather than the bare functions.
type Engine struct {
	logger  *logging.Logger
	tracer  trace.Tracer
	meter   metric.Meter
	metrics *engineMetrics
}

// NewEngine builds an Engine. logger may be nil, in which case a nop logger
// is used.
func NewEngine(logger *logging.Logger) (*Engine, error) {
	if logger == nil {
		logger = logging.FromContext(context.Background())
	}

	e := &Engine{
		logger: logger,
		tracer: otel.Tracer(tracerName),
		meter:  otel.Meter(meterName),
	}

	m, err := newEngineMetrics(e.meter)
	if err != nil {
		return nil, fmt.Errorf("initialize compaction metrics: %w", err)
	}
	e.metrics = m

	return e, nil
}

// Compress runs the package-level Compress with tracing and metrics.
func (e *Engine) Compress(ctx context.Context, messages []Message, opts CompressOptions) (CompressResult, error) {
	attrs := []attribute.KeyValue{attribute.Int("message_count", len(messages))}
	if opts.RecencyWindow != nil {
		attrs = append(attrs, attribute.Int("recency_window", *opts.RecencyWindow))
	}
	ctx, span := e.tracer.Start(ctx, "compaction.compress", trace.WithAttributes(attrs...))
	defer span.End()

	start := time.Now()
	result, err := Compress(ctx, messages, opts)
	elapsed := time.Since(start).Seconds()

	e.metrics.compressDuration.Record(ctx, elapsed)
	if err != nil {
		span.RecordError(err)
		e.metrics.errorCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("op", "compress")))
		e.logger.Error(ctx, "compress failed", zap.Error(err))
		return CompressResult{}, err
	}

	e.metrics.compressCounter.Add(ctx, 1)
	e.metrics.compressRatio.Record(ctx, result.Stats.Ratio)

	span.SetAttributes(
		attribute.Float64("ratio", result.Stats.Ratio),
		attribute.Float64("token_ratio", result.Stats.TokenRatio),
		attribute.Int("token_count", result.TokenCount),
		attribute.Bool("fits", result.Fits),
	)
	e.logger.Debug(ctx, "compress completed",
		zap.Int("messages", len(result.Messages)),
		zap.Float64("ratio", result.Stats.Ratio),
	)

	return result, nil
}

// Uncompress runs the package-level Uncompress with tracing and metrics.
func (e *Engine) Uncompress(ctx context.Context, messages []Message, store VerbatimStore, opts ExpandOptions) (ExpandResult, error) {
	ctx, span := e.tracer.Start(ctx, "compaction.uncompress",
		trace.WithAttributes(attribute.Int("message_count", len(messages))),
	)
	defer span.End()

	result, err := Uncompress(ctx, messages, store, opts)
	if err != nil {
		span.RecordError(err)
		e.metrics.errorCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("op", "uncompress")))
		e.logger.Error(ctx, "uncompress failed", zap.Error(err))
		return ExpandResult{}, err
	}

	e.metrics.expandCounter.Add(ctx, 1)
	span.SetAttributes(
		attribute.Int("expanded_count", result.MessagesExpanded),
		attribute.Int("missing_count", len(result.MissingIDs)),
	)

	return result, nil
}

// Search runs the package-level Search, recording a span for observability.
func (e *Engine) Search(ctx context.Context, messages []Message, store VerbatimStore, pattern string, useRegex bool) ([]SearchResult, error) {
	_, span := e.tracer.Start(ctx, "compaction.search",
		trace.WithAttributes(
			attribute.Int("message_count", len(messages)),
			attribute.Bool("use_regex", useRegex),
		),
	)
	defer span.End()

	results, err := Search(messages, store, pattern, useRegex)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("result_count", len(results)))
	return results, nil
}
