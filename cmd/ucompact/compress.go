package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/arborlane/ucompact/internal/logging"
	"github.com/arborlane/ucompact/pkg/compaction"
)

var (
	compressInput         string
	compressRecencyWindow int
	compressTokenBudget   int
	compressDedup         bool
	compressFuzzyDedup    bool
	compressFuzzyThresh   float64
)

var compressCmd = &cobra.Command{
	Use:   "compress [file]",
	Short: "Compress a JSON message transcript",
	Long: `Compress reads a JSON array of messages from a file or stdin and writes
a CompressResult as JSON to stdout.

Examples:
  ucompact compress transcript.json
  cat transcript.json | ucompact compress --token-budget 4000`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCompress,
}

func init() {
	compressCmd.Flags().IntVar(&compressRecencyWindow, "recency-window", -1, "tail length never compressed (-1 uses config default)")
	compressCmd.Flags().IntVar(&compressTokenBudget, "token-budget", 0, "switch to budget-search mode when > 0")
	compressCmd.Flags().BoolVar(&compressDedup, "dedup", true, "enable exact deduplication")
	compressCmd.Flags().BoolVar(&compressFuzzyDedup, "fuzzy-dedup", false, "enable fuzzy deduplication")
	compressCmd.Flags().Float64Var(&compressFuzzyThresh, "fuzzy-threshold", 0.85, "minimum Jaccard similarity for fuzzy dedup")
}

func runCompress(cmd *cobra.Command, args []string) error {
	ctx := logging.WithRequestID(cmd.Context(), newRequestID())

	data, err := readInput(args)
	if err != nil {
		return err
	}

	var messages []compaction.Message
	if err := json.Unmarshal(data, &messages); err != nil {
		return fmt.Errorf("parse messages: %w", err)
	}

	opts := compaction.DefaultCompressOptions()
	if cfg != nil {
		opts.RecencyWindow = compaction.IntPtr(cfg.RecencyWindow)
		opts.MinRecencyWindow = compaction.IntPtr(cfg.MinRecencyWindow)
		opts.Dedup = compaction.BoolPtr(cfg.Dedup)
		opts.FuzzyDedup = compaction.BoolPtr(cfg.FuzzyDedup)
		opts.FuzzyThreshold = compaction.Float64Ptr(cfg.FuzzyThreshold)
		opts.Preserve = cfg.PreserveRoles
	}
	if compressRecencyWindow >= 0 {
		opts.RecencyWindow = compaction.IntPtr(compressRecencyWindow)
	}
	if compressTokenBudget > 0 {
		opts.TokenBudget = compaction.IntPtr(compressTokenBudget)
	}
	if cmd.Flags().Changed("dedup") {
		opts.Dedup = compaction.BoolPtr(compressDedup)
	}
	if cmd.Flags().Changed("fuzzy-dedup") {
		opts.FuzzyDedup = compaction.BoolPtr(compressFuzzyDedup)
	}
	if cmd.Flags().Changed("fuzzy-threshold") {
		opts.FuzzyThreshold = compaction.Float64Ptr(compressFuzzyThresh)
	}

	engine, err := compaction.NewEngine(logger)
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}

	result, err := engine.Compress(ctx, messages, opts)
	if err != nil {
		return fmt.Errorf("compress: %w", err)
	}

	return writeJSON(result)
}

func readInput(args []string) ([]byte, error) {
	if len(args) == 1 && args[0] != "-" {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return nil, fmt.Errorf("read file %s: %w", args[0], err)
		}
		return data, nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	return data, nil
}

func writeJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
