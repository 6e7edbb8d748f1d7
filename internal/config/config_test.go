package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
	assert.False(t, cfg.SinkConfigured())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("HTTP_TIMEOUT", "3s")
	t.Setenv("SINK_URL", "http://sink.local/hook")
	t.Setenv("SINK_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout)
	assert.True(t, cfg.SinkConfigured())
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dashboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: \"7000\"\nmax_datasets: 4\nhttp_timeout: 2s\n"), 0o644))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("MAX_DATASETS", "8")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "7000", cfg.Port)
	assert.Equal(t, 2*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 8, cfg.MaxDatasets, "env must win over the file")
}

func TestReadFileFormats(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"c.toml": "port = \"7001\"\nlog_level = \"warn\"\n",
		"c.json": `{"port":"7001","log_level":"warn"}`,
		"c.yml":  "port: \"7001\"\nlog_level: warn\n",
	}
	for name, body := range files {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

			cfg := Default()
			require.NoError(t, ApplyFile(&cfg, path))
			assert.Equal(t, "7001", cfg.Port)
			assert.Equal(t, slog.LevelWarn, cfg.LogLevel)
		})
	}
}

func TestReadFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	_, err = ReadFile(dir)
	assert.ErrorContains(t, err, "is a directory")

	ini := filepath.Join(dir, "c.ini")
	require.NoError(t, os.WriteFile(ini, []byte("port=1"), 0o644))
	_, err = ReadFile(ini)
	assert.ErrorContains(t, err, "unsupported config file format")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("http_timeout: soon\n"), 0o644))
	cfg := Default()
	assert.ErrorContains(t, ApplyFile(&cfg, bad), "http_timeout")
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Port = "not-a-port"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.DataSourceURL = "::not a url"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.MaxDatasets = 1
	assert.Error(t, cfg.Validate(), "the sample alone would fill the store")

	assert.NoError(t, Default().Validate())
}
