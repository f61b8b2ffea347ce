package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix       = "UCOMPACT_"
	maxConfigBytes  = 1 << 20 // 1MB
	configDirPerm   = 0700
	configFilePerm0 = 0600
	configFilePerm1 = 0400
)

// LoadWithFile loads configuration starting from documented defaults,
// layering a YAML file (if configPath is non-empty) and then environment
// variables prefixed UCOMPACT_ on top.
func LoadWithFile(configPath string) (*Config, error) {
	k := koanf.New(".")

	defaults := NewDefaultConfig()
	if err := k.Load(structProvider(defaults), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if configPath != "" {
		resolved, err := validateConfigPath(configPath)
		if err != nil {
			return nil, fmt.Errorf("validate config path: %w", err)
		}
		data, err := readConfigFile(resolved)
		if err != nil {
			return nil, err
		}
		if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", resolved, err)
		}
	}

	// A single underscore is part of a key name (RECENCY_WINDOW ->
	// recency_window, matching the koanf:"recency_window" tag verbatim); a
	// double underscore is the nesting delimiter (SECRET_SCAN__ENABLED ->
	// secret_scan.enabled), since koanf itself navigates nested struct tags
	// with ".".
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		trimmed := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		return strings.ReplaceAll(trimmed, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load env overrides: %w", err)
	}

	cfg := NewDefaultConfig()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// validateConfigPath restricts configuration files to the locations
// ucompact is willing to read from, resolving symlinks before the check
// so a symlink can't point outside the allowed directories.
func validateConfigPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("resolve symlinks: %w", err)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}

	allowed := []string{
		filepath.Join(home, ".config", "ucompact"),
		filepath.Join("/etc", "ucompact"),
	}
	for _, dir := range allowed {
		if resolved == dir {
			continue
		}
		rel, err := filepath.Rel(dir, resolved)
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		return resolved, nil
	}
	return "", fmt.Errorf("config path %s is outside allowed directories %v", resolved, allowed)
}

func readConfigFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat config file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("config path %s is a directory", path)
	}
	if info.Size() > maxConfigBytes {
		return nil, fmt.Errorf("config file %s exceeds %d bytes", path, maxConfigBytes)
	}
	perm := info.Mode().Perm()
	if perm != configFilePerm0 && perm != configFilePerm1 {
		return nil, fmt.Errorf("config file %s has permissive mode %o, expected %o or %o", path, perm, configFilePerm0, configFilePerm1)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return data, nil
}

// EnsureConfigDir creates the user config directory for ucompact if it
// doesn't already exist.
func EnsureConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	dir := filepath.Join(home, ".config", "ucompact")
	if err := os.MkdirAll(dir, configDirPerm); err != nil {
		return "", fmt.Errorf("create config dir %s: %w", dir, err)
	}
	return dir, nil
}

// structProvider adapts a *Config's already-set defaults into a koanf
// provider so defaults participate in the same merge order as file and
// env layers.
func structProvider(cfg *Config) koanf.Provider {
	return defaultsProvider{cfg: cfg}
}

type defaultsProvider struct {
	cfg *Config
}

func (d defaultsProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("defaultsProvider does not support ReadBytes")
}

func (d defaultsProvider) Read() (map[string]interface{}, error) {
	return map[string]interface{}{
		"recency_window":             d.cfg.RecencyWindow,
		"min_recency_window":         d.cfg.MinRecencyWindow,
		"token_budget":               d.cfg.TokenBudget,
		"preserve_roles":             d.cfg.PreserveRoles,
		"dedup":                      d.cfg.Dedup,
		"fuzzy_dedup":                d.cfg.FuzzyDedup,
		"fuzzy_threshold":            d.cfg.FuzzyThreshold,
		"secret_scan.enabled":        d.cfg.SecretScan.Enabled,
		"secret_scan.allowlist_path": d.cfg.SecretScan.AllowlistPath,
	}, nil
}
