package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "communityVoiceData", cfg.StorageKey)
	assert.Equal(t, 100*time.Millisecond, cfg.LoadingDelay)
	assert.Equal(t, 300*time.Millisecond, cfg.SearchDebounce)
	assert.Equal(t, "ideas", cfg.DefaultRoute)
	assert.Empty(t, cfg.DBPath)
	assert.False(t, cfg.AllowAnonymous)
	require.NoError(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, "cvoice.yaml", `
db_path: /tmp/cv.db
loading_delay: 250ms
default_route: polls
allow_anonymous: true
`)
	cfg := Default()
	require.NoError(t, cfg.LoadFile(path))

	assert.Equal(t, "/tmp/cv.db", cfg.DBPath)
	assert.Equal(t, 250*time.Millisecond, cfg.LoadingDelay)
	assert.Equal(t, "polls", cfg.DefaultRoute)
	assert.True(t, cfg.AllowAnonymous)
	// Untouched keys keep their defaults.
	assert.Equal(t, 300*time.Millisecond, cfg.SearchDebounce)
}

func TestLoadFile_RejectsUnknownKeys(t *testing.T) {
	path := writeFile(t, "cvoice.yaml", "loading_dealy: 1s\n")
	cfg := Default()
	err := cfg.LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading_dealy")
}

func TestLoadFile_Empty(t *testing.T) {
	path := writeFile(t, "cvoice.yaml", "")
	cfg := Default()
	require.NoError(t, cfg.LoadFile(path))
	assert.Equal(t, Default(), cfg)
}

func TestLoadEnv_FileThenProcess(t *testing.T) {
	envFile := writeFile(t, ".env", "CVOICE_DB_PATH=from-file.db\nCVOICE_SEARCH_DEBOUNCE=50ms\nOTHER=x\n")
	t.Setenv("CVOICE_DB_PATH", "from-env.db")
	t.Setenv("CVOICE_VERBOSE", "true")

	cfg := Default()
	require.NoError(t, cfg.LoadEnv(envFile))

	assert.Equal(t, "from-env.db", cfg.DBPath)
	assert.Equal(t, 50*time.Millisecond, cfg.SearchDebounce)
	assert.True(t, cfg.Verbose)
}

func TestLoadEnv_MissingFileSkipped(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.LoadEnv(filepath.Join(t.TempDir(), "absent.env")))
	assert.Equal(t, Default(), cfg)
}

func TestLoadEnv_InvalidValue(t *testing.T) {
	t.Setenv("CVOICE_LOADING_DELAY", "soon")
	cfg := Default()
	err := cfg.LoadEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CVOICE_LOADING_DELAY")
}

func TestLoad_Layers(t *testing.T) {
	file := writeFile(t, "cvoice.yaml", "default_route: petitions\nstorage_key: alt\n")
	t.Setenv("CVOICE_DEFAULT_ROUTE", "polls")

	cfg, err := Load(Options{File: file})
	require.NoError(t, err)
	assert.Equal(t, "polls", cfg.DefaultRoute)
	assert.Equal(t, "alt", cfg.StorageKey)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"empty key", func(c *Config) { c.StorageKey = "" }, "storage key"},
		{"empty route", func(c *Config) { c.DefaultRoute = "" }, "default route"},
		{"negative delay", func(c *Config) { c.LoadingDelay = -time.Second }, "loading delay"},
		{"negative debounce", func(c *Config) { c.SearchDebounce = -time.Second }, "search debounce"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
