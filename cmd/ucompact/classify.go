package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arborlane/ucompact/pkg/compaction"
)

var classifyWithSecretScan bool

var classifyCmd = &cobra.Command{
	Use:   "classify [file]",
	Short: "Classify each message's content into a preservation tier",
	Long: `Classify reads a JSON array of messages from a file or stdin and writes
one ClassifyResult per message as a JSON array to stdout.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runClassify,
}

func init() {
	classifyCmd.Flags().BoolVar(&classifyWithSecretScan, "secret-scan", false, "enrich classification with a Gitleaks scan")
}

func runClassify(cmd *cobra.Command, args []string) error {
	data, err := readInput(args)
	if err != nil {
		return err
	}

	var messages []compaction.Message
	if err := json.Unmarshal(data, &messages); err != nil {
		return fmt.Errorf("parse messages: %w", err)
	}

	useSecretScan := classifyWithSecretScan
	allowlistPath := ""
	if cfg != nil {
		useSecretScan = useSecretScan || cfg.SecretScan.Enabled
		allowlistPath = cfg.SecretScan.AllowlistPath
	}

	var scan compaction.SecretScanFunc
	if useSecretScan {
		allow, err := compaction.LoadAllowlistFile(allowlistPath)
		if err != nil {
			return fmt.Errorf("load allowlist: %w", err)
		}
		scanner, err := compaction.NewGitleaksScanner(allow)
		if err != nil {
			return fmt.Errorf("build secret scanner: %w", err)
		}
		scan = scanner.Scan
	}

	results := make([]compaction.ClassifyResult, len(messages))
	for i, m := range messages {
		content := m.ContentOrEmpty()
		if scan != nil {
			results[i] = compaction.ClassifyWithSecretScan(content, scan)
		} else {
			results[i] = compaction.Classify(content)
		}
	}

	return writeJSON(results)
}
