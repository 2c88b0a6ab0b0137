package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5001", cfg.BackendURL)
	assert.Equal(t, "out", cfg.Output.Dir)
	assert.Equal(t, "png", cfg.Output.Format)
	assert.Equal(t, 92, cfg.Output.Quality)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("BACKEND_API_URL", "http://backend.internal:9001")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://backend.internal:9001", cfg.BackendURL)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"backend_url: http://filehost:5001\noutput:\n  format: webp\n  quality: 80\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://filehost:5001", cfg.BackendURL)
	assert.Equal(t, "webp", cfg.Output.Format)
	assert.Equal(t, 80, cfg.Output.Quality)
	// Untouched keys keep their defaults.
	assert.Equal(t, "out", cfg.Output.Dir)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty backend url", func(c *Config) { c.BackendURL = "" }},
		{"non-http backend url", func(c *Config) { c.BackendURL = "ftp://x" }},
		{"bad output format", func(c *Config) { c.Output.Format = "bmp" }},
		{"quality too low", func(c *Config) { c.Output.Quality = 0 }},
		{"quality too high", func(c *Config) { c.Output.Quality = 101 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("")
			require.NoError(t, err)
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
