package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arborlane/ucompact/internal/logging"
	"github.com/arborlane/ucompact/pkg/compaction"
)

var uncompressRecursive bool

// uncompressRequest is the on-disk shape consumed by the uncompress command:
// a compressed transcript paired with the verbatim store Compress produced.
type uncompressRequest struct {
	Messages []compaction.Message  `json:"messages"`
	Verbatim compaction.VerbatimMap `json:"verbatim"`
}

var uncompressCmd = &cobra.Command{
	Use:   "uncompress [file]",
	Short: "Expand a compressed transcript back to its originals",
	Long: `Uncompress reads {"messages": [...], "verbatim": {...}} from a file or
stdin (the shape of a compress command's output) and writes an ExpandResult
as JSON to stdout.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runUncompress,
}

func init() {
	uncompressCmd.Flags().BoolVar(&uncompressRecursive, "recursive", false, "keep expanding until no provenance remains")
}

func runUncompress(cmd *cobra.Command, args []string) error {
	ctx := logging.WithRequestID(cmd.Context(), newRequestID())

	data, err := readInput(args)
	if err != nil {
		return err
	}

	var req uncompressRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("parse request: %w", err)
	}

	engine, err := compaction.NewEngine(logger)
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}

	result, err := engine.Uncompress(ctx, req.Messages, req.Verbatim, compaction.ExpandOptions{
		Recursive: uncompressRecursive,
	})
	if err != nil {
		return fmt.Errorf("uncompress: %w", err)
	}

	return writeJSON(result)
}
