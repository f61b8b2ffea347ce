// Package compaction implements the context compaction engine: classification,
// deterministic extractive summarization, exact and fuzzy deduplication,
// token-budget search, and lossless round-trip expansion over an ordered
// sequence of conversational messages.
//
// # Losslessness
//
// Compression never discards an original message. Every message the engine
// replaces with a summary or a dedup tag is copied into a VerbatimMap keyed by
// message ID; Uncompress reverses the process given that map. Nothing here
// performs destructive, generative summarization.
//
// # Security
//
// Message content passes through the classifier's api_key detector (and,
// when enabled, a Gitleaks-backed secret scan) before it is ever eligible for
// compression; any message classified T0 for a HARD reason is preserved
// verbatim rather than rewritten by the extractive summarizer.
//
// # Usage
//
// Compress a conversation against a token budget:
//
//	opts := compaction.DefaultCompressOptions()
//	opts.TokenBudget = compaction.IntPtr(4000)
//	result, err := compaction.Compress(ctx, messages, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Compressed: %.1fx ratio, fits=%v\n", result.Stats.Ratio, result.Fits)
//
// Recover original content from a compressed transcript:
//
//	expanded, err := compaction.Uncompress(ctx, result.Messages, result.Verbatim, compaction.ExpandOptions{})
//
// Or drive both through an instrumented Engine for tracing and metrics:
//
//	engine, err := compaction.NewEngine(logger)
//	result, err := engine.Compress(ctx, messages, opts)
//
// # Observability
//
// Engine exports OpenTelemetry metrics and traces:
//   - compaction.compress.operations_total (counter)
//   - compaction.compress.duration_seconds (histogram)
//   - compaction.compress.ratio (histogram)
//   - compaction.expand.operations_total (counter)
//   - compaction.errors_total (counter)
package compaction
