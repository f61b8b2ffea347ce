package compaction

import (
	"fmt"
	"os"
	"regexp"

	"github.com/BurntSushi/toml"
	gitleaksConfig "github.com/zricethezav/gitleaks/v8/config"
	"github.com/zricethezav/gitleaks/v8/detect"
	gitleaksRegexp "github.com/zricethezav/gitleaks/v8/regexp"
)

// Allowlist suppresses specific path/content patterns from the gitleaks
// enrichment, the same shape and file format (.gitleaks.toml) as a
// project-local gitleaks allowlist.
type Allowlist struct {
	Paths   []string
	Regexes []string
}

// LoadAllowlistFile reads a TOML allowlist file of the form:
//
//	[allowlist]
//	paths = ["...regex..."]
//	regexes = ["...regex..."]
//
// A missing file is not an error; LoadAllowlistFile returns an empty,
// non-nil Allowlist. Invalid TOML or an invalid regex pattern is an error.
func LoadAllowlistFile(path string) (*Allowlist, error) {
	if path == "" {
		return &Allowlist{}, nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return &Allowlist{}, nil
		}
		return nil, err
	}

	var doc struct {
		Allowlist struct {
			Paths   []string
			Regexes []string
		}
	}
	if _, err := toml.DecodeFile(path, &doc); err != nil {
		return nil, fmt.Errorf("compaction: invalid allowlist toml %s: %w", path, err)
	}
	for _, p := range doc.Allowlist.Paths {
		if _, err := regexp.Compile(p); err != nil {
			return nil, fmt.Errorf("compaction: invalid allowlist path pattern %q: %w", p, err)
		}
	}
	for _, p := range doc.Allowlist.Regexes {
		if _, err := regexp.Compile(p); err != nil {
			return nil, fmt.Errorf("compaction: invalid allowlist content pattern %q: %w", p, err)
		}
	}
	return &Allowlist{Paths: doc.Allowlist.Paths, Regexes: doc.Allowlist.Regexes}, nil
}

// GitleaksScanner is a SecretScanFunc backed by the real Gitleaks detector.
// It is an enrichment, not a replacement, for Classify's built-in api_key
// detector: construct it and pass it to ClassifyWithSecretScan explicitly.
type GitleaksScanner struct {
	detector *detect.Detector
}

// NewGitleaksScanner builds a scanner using gitleaks' default rule set,
// optionally merging an allowlist that suppresses known-safe look-alikes.
func NewGitleaksScanner(allow *Allowlist) (*GitleaksScanner, error) {
	d, err := detect.NewDetectorDefaultConfig()
	if err != nil {
		return nil, fmt.Errorf("compaction: building gitleaks detector: %w", err)
	}
	if allow != nil && (len(allow.Paths) > 0 || len(allow.Regexes) > 0) {
		applyAllowlist(&d.Config, allow)
	}
	return &GitleaksScanner{detector: d}, nil
}

// Scan implements SecretScanFunc.
func (s *GitleaksScanner) Scan(content string) bool {
	if s == nil || s.detector == nil {
		return false
	}
	findings := s.detector.DetectString(content)
	return len(findings) > 0
}

func applyAllowlist(cfg *gitleaksConfig.Config, allow *Allowlist) {
	entry := &gitleaksConfig.Allowlist{Description: "compaction caller allowlist"}
	for _, pattern := range allow.Paths {
		re, err := regexp.Compile(pattern)
		if err != nil {
			// Pre-validated by LoadAllowlistFile; a failure here is a
			// programming error, not a runtime condition to recover from.
			panic("compaction: pre-validated allowlist path pattern failed to compile: " + pattern)
		}
		entry.Paths = append(entry.Paths, (*gitleaksRegexp.Regexp)(re))
	}
	for _, pattern := range allow.Regexes {
		re, err := regexp.Compile(pattern)
		if err != nil {
			panic("compaction: pre-validated allowlist content pattern failed to compile: " + pattern)
		}
		entry.Regexes = append(entry.Regexes, (*gitleaksRegexp.Regexp)(re))
	}
	entry.StopWords = append(entry.StopWords, allow.Regexes...)
	cfg.Allowlists = append(cfg.Allowlists, entry)
}
