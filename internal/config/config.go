// Package config provides configuration loading for ucompact.
//
// Configuration is loaded from an optional YAML file with environment
// variable overrides and hardcoded defaults, in that order of precedence.
package config

import (
	"errors"
	"fmt"
)

// Config holds the compaction engine's tunables.
type Config struct {
	// RecencyWindow is CompressOptions.RecencyWindow's default when a caller
	// doesn't override it per call.
	RecencyWindow int `koanf:"recency_window"`
	// MinRecencyWindow bounds the budget search's lower end.
	MinRecencyWindow int `koanf:"min_recency_window"`
	// TokenBudget, when > 0, is the default CompressOptions.TokenBudget.
	TokenBudget int `koanf:"token_budget"`
	// PreserveRoles lists roles always preserved verbatim.
	PreserveRoles []string `koanf:"preserve_roles"`
	// Dedup toggles exact deduplication by default.
	Dedup bool `koanf:"dedup"`
	// FuzzyDedup toggles near-duplicate detection by default.
	FuzzyDedup bool `koanf:"fuzzy_dedup"`
	// FuzzyThreshold is the default minimum Jaccard similarity for fuzzy dedup.
	FuzzyThreshold float64 `koanf:"fuzzy_threshold"`
	// SecretScan configures the optional Gitleaks-backed classification
	// enrichment.
	SecretScan SecretScanConfig `koanf:"secret_scan"`
}

// SecretScanConfig configures the Gitleaks secret-scan enrichment layered
// on top of the built-in classifier.
type SecretScanConfig struct {
	Enabled       bool   `koanf:"enabled"`
	AllowlistPath string `koanf:"allowlist_path"`
}

// NewDefaultConfig returns the engine's documented defaults, matching
// CompressOptions.resolve().
func NewDefaultConfig() *Config {
	return &Config{
		RecencyWindow:    4,
		MinRecencyWindow: 0,
		TokenBudget:      0,
		PreserveRoles:    []string{"system"},
		Dedup:            true,
		FuzzyDedup:       false,
		FuzzyThreshold:   0.85,
		SecretScan: SecretScanConfig{
			Enabled: false,
		},
	}
}

// Validate checks config for internally inconsistent values.
func (c *Config) Validate() error {
	if c.RecencyWindow < 0 {
		return fmt.Errorf("recency_window must be >= 0, got %d", c.RecencyWindow)
	}
	if c.MinRecencyWindow < 0 {
		return fmt.Errorf("min_recency_window must be >= 0, got %d", c.MinRecencyWindow)
	}
	if c.MinRecencyWindow > c.RecencyWindow {
		return fmt.Errorf("min_recency_window (%d) must be <= recency_window (%d)", c.MinRecencyWindow, c.RecencyWindow)
	}
	if c.TokenBudget < 0 {
		return fmt.Errorf("token_budget must be >= 0, got %d", c.TokenBudget)
	}
	if c.FuzzyThreshold < 0 || c.FuzzyThreshold > 1 {
		return fmt.Errorf("fuzzy_threshold must be in [0,1], got %g", c.FuzzyThreshold)
	}
	if len(c.PreserveRoles) == 0 {
		return errors.New("preserve_roles must name at least one role")
	}
	if c.SecretScan.Enabled && c.SecretScan.AllowlistPath == "" {
		return errors.New("secret_scan.allowlist_path required when secret_scan.enabled is true")
	}
	return nil
}
