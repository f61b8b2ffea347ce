// Package main implements the ucompact CLI for running the compaction
// engine's operations against JSON message transcripts.
package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/arborlane/ucompact/internal/config"
	"github.com/arborlane/ucompact/internal/logging"
)

var (
	configPath string
	logLevel   string
	version    = "dev"

	cfg    *config.Config
	logger *logging.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "ucompact",
	Short:   "Context compaction engine CLI",
	Long:    `ucompact classifies, compresses, expands, and searches conversational message transcripts.`,
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.yaml (optional)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")

	rootCmd.AddCommand(compressCmd)
	rootCmd.AddCommand(uncompressCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(classifyCmd)
}

func setup() error {
	loaded, err := config.LoadWithFile(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg = loaded

	logCfg := logging.NewDefaultConfig()
	if lvl, err := logging.LevelFromString(logLevel); err == nil {
		logCfg.Level = lvl
	} else {
		logCfg.Level = zapcore.InfoLevel
	}
	l, err := logging.NewLogger(logCfg)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	logger = l

	return nil
}

func newRequestID() string {
	return uuid.NewString()
}
