package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, ".", cfg.Scan.Root)
	assert.Contains(t, cfg.Scan.Prefixes, "TODO")
	assert.Equal(t, "github", cfg.Tracker.Provider)
	assert.Equal(t, "template", cfg.Generator.Mode)
	assert.Equal(t, 30*time.Second, cfg.GetTrackerTimeout())
	assert.Equal(t, 8, cfg.GetWorkers())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Scan.Prefixes, cfg.Scan.Prefixes)
}

func TestLoadOverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todosync.yaml")
	data := []byte(`
scan:
  root: ./src
  prefixes: [TODO]
  extensions: [.go, .py]
tracker:
  owner: octo
  repo: demo
  timeout: 5s
execution:
  workers: 3
`)
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "./src", cfg.Scan.Root)
	assert.Equal(t, []string{"TODO"}, cfg.Scan.Prefixes)
	assert.Equal(t, []string{".go", ".py"}, cfg.Scan.Extensions)
	assert.Equal(t, "octo", cfg.Tracker.Owner)
	assert.Equal(t, 5*time.Second, cfg.GetTrackerTimeout())
	assert.Equal(t, 3, cfg.GetWorkers())
	// Untouched sections keep defaults.
	assert.Equal(t, "https://api.github.com", cfg.Tracker.BaseURL)
}

func TestEnvOverrides(t *testing.T) {
	t.Run("GITHUB_TOKEN sets tracker token", func(t *testing.T) {
		t.Setenv("GITHUB_TOKEN", "gh-token")

		cfg := &Config{}
		cfg.applyEnvOverrides()
		assert.Equal(t, "gh-token", cfg.Tracker.Token)
	})

	t.Run("TODOSYNC_TOKEN wins over GITHUB_TOKEN", func(t *testing.T) {
		t.Setenv("GITHUB_TOKEN", "gh-token")
		t.Setenv("TODOSYNC_TOKEN", "ts-token")

		cfg := &Config{}
		cfg.applyEnvOverrides()
		assert.Equal(t, "ts-token", cfg.Tracker.Token)
	})

	t.Run("GEMINI_API_KEY sets generator key", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "gm-key")

		cfg := &Config{}
		cfg.applyEnvOverrides()
		assert.Equal(t, "gm-key", cfg.Generator.APIKey)
	})

	t.Run("env wins over file value", func(t *testing.T) {
		t.Setenv("GITHUB_TOKEN", "env-token")

		cfg := &Config{Tracker: TrackerConfig{Token: "file-token"}}
		cfg.applyEnvOverrides()
		assert.Equal(t, "env-token", cfg.Tracker.Token)
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := DefaultConfig()
		cfg.Tracker.Owner = "octo"
		cfg.Tracker.Repo = "demo"
		cfg.Tracker.Token = "tok"
		return cfg
	}

	assert.NoError(t, valid().Validate())

	cfg := valid()
	cfg.Scan.Prefixes = nil
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Tracker.Token = ""
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Tracker.Provider = "jira"
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Generator.Mode = "gemini"
	cfg.Generator.APIKey = ""
	assert.Error(t, cfg.Validate())
	cfg.Generator.APIKey = "k"
	assert.NoError(t, cfg.Validate())

	// Scan-only validation needs no tracker settings.
	cfg = DefaultConfig()
	assert.NoError(t, cfg.ValidateScan())
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "todosync.yaml")
	orig := DefaultConfig()
	orig.Tracker.Owner = "octo"
	require.NoError(t, orig.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "octo", loaded.Tracker.Owner)
	assert.Equal(t, orig.Scan.Prefixes, loaded.Scan.Prefixes)
}
