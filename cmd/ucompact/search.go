package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arborlane/ucompact/internal/logging"
	"github.com/arborlane/ucompact/pkg/compaction"
)

var (
	searchPattern string
	searchRegex   bool
)

// searchRequest is the on-disk shape consumed by the search command: a
// transcript paired with the verbatim store Compress produced, the same
// shape runUncompress reads. Folded-away content lives only in Verbatim,
// not in the compressed messages themselves, so both are required to
// search the full transcript.
type searchRequest struct {
	Messages []compaction.Message   `json:"messages"`
	Verbatim compaction.VerbatimMap `json:"verbatim"`
}

var searchCmd = &cobra.Command{
	Use:   "search [file]",
	Short: "Search message content, tracing a compressed summary back to its source",
	Long: `Search reads {"messages": [...], "verbatim": {...}} from a file or
stdin (the shape of a compress command's output) and finds content matching
--pattern. Messages that still carry their own content are matched directly;
content folded into a summary is matched in the verbatim store and the hit
is reported against the summary message that now owns it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchPattern, "pattern", "", "literal or regex pattern to search for (required)")
	searchCmd.Flags().BoolVar(&searchRegex, "regex", false, "treat --pattern as a regular expression")
	_ = searchCmd.MarkFlagRequired("pattern")
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := logging.WithRequestID(cmd.Context(), newRequestID())

	data, err := readInput(args)
	if err != nil {
		return err
	}

	var req searchRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("parse request: %w", err)
	}

	engine, err := compaction.NewEngine(logger)
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}

	results, err := engine.Search(ctx, req.Messages, req.Verbatim, searchPattern, searchRegex)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	return writeJSON(results)
}
