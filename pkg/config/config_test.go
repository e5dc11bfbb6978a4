package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// inTempDir keeps ./sonority.yaml of the working tree out of the test.
func inTempDir(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
}

func TestLoadDefaults(t *testing.T) {
	inTempDir(t)
	t.Setenv(EnvPath, "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "data/listss19_formatted.tab", cfg.Corpus.Path)
	assert.Equal(t, 20, cfg.Corpus.MinSynsets)
	assert.True(t, cfg.Scoring.ByMeaning)
	assert.False(t, cfg.Scoring.WithLoans)
	assert.Equal(t, 1982, cfg.Climate.FirstYear)
	assert.Equal(t, 2021, cfg.Climate.LastYear)
	assert.True(t, cfg.Climate.Neighbours)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Empty(t, cfg.Scoring.Clicks)
}

const sampleYAML = `
corpus:
  path: "lists.txt"
  min_synsets: 30
scoring:
  with_loans: true
  clicks: [5, 0, 0, 0, 0]
climate:
  first_year: 2000
  last_year: 2001
log:
  level: debug
  format: json
`

func TestLoadYAML(t *testing.T) {
	inTempDir(t)
	path := writeFile(t, "sonority.yaml", sampleYAML)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "lists.txt", cfg.Corpus.Path)
	assert.Equal(t, 30, cfg.Corpus.MinSynsets)
	assert.True(t, cfg.Scoring.WithLoans)
	assert.Equal(t, []float64{5, 0, 0, 0, 0}, cfg.Scoring.Clicks)
	assert.Equal(t, 2000, cfg.Climate.FirstYear)
	assert.Equal(t, "json", cfg.Log.Format)
	// untouched sections keep their defaults
	assert.Equal(t, "sonority.db", cfg.Database.Path)
	assert.True(t, cfg.ScoringOptions().WithLoans)
}

func TestLoadTOML(t *testing.T) {
	inTempDir(t)
	path := writeFile(t, "sonority.toml", `
[corpus]
path = "other.txt"

[database]
batch_size = 7
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "other.txt", cfg.Corpus.Path)
	assert.Equal(t, 7, cfg.Database.BatchSize)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	inTempDir(t)
	path := writeFile(t, "sonority.yaml", sampleYAML)
	t.Setenv(EnvPath, path)
	t.Setenv("SONORITY_MIN_SYNSETS", "35")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 35, cfg.Corpus.MinSynsets)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	inTempDir(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	inTempDir(t)
	t.Setenv(EnvPath, "")
	base, err := Load("")
	require.NoError(t, err)

	cases := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"click count", func(c *Config) { c.Scoring.Clicks = []float64{1, 2} }, "clicks has 2 values for 5 scales"},
		{"negative click", func(c *Config) { c.Scoring.Clicks = []float64{-1, 0, 0, 0, 0} }, "clicks[0]"},
		{"year order", func(c *Config) { c.Climate.FirstYear = 2022 }, "after last_year"},
		{"grid workers", func(c *Config) { c.Climate.Workers = 0 }, "workers must be > 0"},
		{"db workers", func(c *Config) { c.Database.Workers = -1 }, "database.workers"},
		{"batch size", func(c *Config) { c.Database.BatchSize = 0 }, "database.batch_size"},
		{"log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"min synsets", func(c *Config) { c.Corpus.MinSynsets = -1 }, "min_synsets"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := *base
			tc.mutate(&c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestNewLogger(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	var buf bytes.Buffer
	log := NewLogger(LogConfig{Level: "warn", Format: "json"}, &buf)
	log.Info("hidden")
	log.Warn("shown", "n", 1)
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.True(t, strings.HasPrefix(out, "{"))
	assert.Contains(t, out, `"n":1`)

	buf.Reset()
	NewLogger(LogConfig{Level: "debug", Format: "text"}, &buf)
	slog.Debug("via default")
	assert.Contains(t, buf.String(), "msg=\"via default\"")
}
