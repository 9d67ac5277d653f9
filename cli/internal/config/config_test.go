package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "default", cfg.CurrentProfile)
	assert.NotNil(t, cfg.Profiles)
	assert.Empty(t, cfg.Profiles)
}

func TestLoad_NoConfigFile(t *testing.T) {
	// Load with non-existent path (should use defaults)
	cfg, err := Load("/nonexistent/path/config.yaml")
	require.NoError(t, err)

	assert.Equal(t, "default", cfg.CurrentProfile)
	assert.Empty(t, cfg.Profiles)
}

func TestLoad_WithConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `current_profile: production
profiles:
  production:
    gateway_url: https://ingest.rodeoai.example.com
    api_key: test-key-123
`
	err := os.WriteFile(configPath, []byte(configContent), 0600)
	require.NoError(t, err)

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.CurrentProfile)
	require.Contains(t, cfg.Profiles, "production")
	assert.Equal(t, "https://ingest.rodeoai.example.com", cfg.Profiles["production"].GatewayURL)
	assert.Equal(t, "test-key-123", cfg.Profiles["production"].APIKey)
}

func TestSaveProfile_RoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	cfg, err := Load(configPath)
	require.NoError(t, err)

	err = cfg.SaveProfile("staging", "http://localhost:8095", "secret")
	require.NoError(t, err)
	assert.Equal(t, "staging", cfg.CurrentProfile)

	// Reload from disk
	loaded, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "staging", loaded.CurrentProfile)
	profile, err := loaded.GetProfile("")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8095", profile.GatewayURL)
	assert.Equal(t, "secret", profile.APIKey)

	// Saved with restrictive permissions
	info, err := os.Stat(configPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestGetProfile_NotFound(t *testing.T) {
	cfg := Default()
	_, err := cfg.GetProfile("missing")
	assert.Error(t, err)
}

func TestRemoveProfile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	cfg, err := Load(configPath)
	require.NoError(t, err)
	require.NoError(t, cfg.SaveProfile("staging", "http://localhost:8095", "secret"))

	require.NoError(t, cfg.RemoveProfile("staging"))
	assert.Empty(t, cfg.CurrentProfile)

	err = cfg.RemoveProfile("staging")
	assert.Error(t, err)
}
