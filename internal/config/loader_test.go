package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWithFile_NoPathUsesDefaults(t *testing.T) {
	cfg, err := LoadWithFile("")
	require.NoError(t, err)
	assert.Equal(t, NewDefaultConfig(), cfg)
}

func TestLoadWithFile_EnvOverride(t *testing.T) {
	t.Setenv("UCOMPACT_RECENCY_WINDOW", "8")
	t.Setenv("UCOMPACT_DEDUP", "false")

	cfg, err := LoadWithFile("")
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.RecencyWindow)
	assert.False(t, cfg.Dedup)
}

func TestLoadWithFile_EnvOverride_NestedSecretScan(t *testing.T) {
	t.Setenv("UCOMPACT_SECRET_SCAN__ENABLED", "true")
	t.Setenv("UCOMPACT_SECRET_SCAN__ALLOWLIST_PATH", "/etc/ucompact/allow.toml")

	cfg, err := LoadWithFile("")
	require.NoError(t, err)
	assert.True(t, cfg.SecretScan.Enabled)
	assert.Equal(t, "/etc/ucompact/allow.toml", cfg.SecretScan.AllowlistPath)
}

func TestLoadWithFile_YAMLFileOverridesDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	configDir := filepath.Join(home, ".config", "ucompact")
	require.NoError(t, os.MkdirAll(configDir, 0o700))
	configPath := filepath.Join(configDir, "config.yaml")
	yamlContent := "recency_window: 10\nfuzzy_dedup: true\n"
	require.NoError(t, os.WriteFile(configPath, []byte(yamlContent), 0o600))

	cfg, err := LoadWithFile(configPath)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.RecencyWindow)
	assert.True(t, cfg.FuzzyDedup)
}

func TestLoadWithFile_InvalidConfigProducesValidationError(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	configDir := filepath.Join(home, ".config", "ucompact")
	require.NoError(t, os.MkdirAll(configDir, 0o700))
	configPath := filepath.Join(configDir, "config.yaml")
	yamlContent := "recency_window: -1\n"
	require.NoError(t, os.WriteFile(configPath, []byte(yamlContent), 0o600))

	_, err := LoadWithFile(configPath)
	assert.Error(t, err)
}

func TestValidateConfigPath_RejectsOutsideAllowedDirs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	outside := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(outside, []byte("recency_window: 1\n"), 0o600))

	_, err := validateConfigPath(outside)
	assert.Error(t, err)
}

func TestValidateConfigPath_AcceptsUserConfigDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	configDir := filepath.Join(home, ".config", "ucompact")
	require.NoError(t, os.MkdirAll(configDir, 0o700))
	configPath := filepath.Join(configDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("recency_window: 1\n"), 0o600))

	resolved, err := validateConfigPath(configPath)
	require.NoError(t, err)
	assert.Equal(t, configPath, resolved)
}

func TestReadConfigFile_RejectsPermissiveMode(t *testing.T) {
	home := t.TempDir()
	configPath := filepath.Join(home, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("recency_window: 1\n"), 0o644))

	_, err := readConfigFile(configPath)
	assert.Error(t, err)
}

func TestReadConfigFile_RejectsOversizedFile(t *testing.T) {
	home := t.TempDir()
	configPath := filepath.Join(home, "config.yaml")
	big := make([]byte, maxConfigBytes+1)
	require.NoError(t, os.WriteFile(configPath, big, 0o600))

	_, err := readConfigFile(configPath)
	assert.Error(t, err)
}

func TestReadConfigFile_AcceptsValidFile(t *testing.T) {
	home := t.TempDir()
	configPath := filepath.Join(home, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("recency_window: 1\n"), 0o600))

	data, err := readConfigFile(configPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "recency_window")
}

func TestEnsureConfigDir_CreatesDirectory(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir, err := EnsureConfigDir()
	require.NoError(t, err)
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
