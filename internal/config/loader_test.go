package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfigYAML = `
log:
  level: debug
corpus:
  source: csv
  documents_path: testdata/opinions.csv
  phrases_path: testdata/phrases.csv
  categories: [majority]
analysis:
  baseline_window_years: 5
  targets:
    mode: years
    years: [2016]
  filters:
    - kind: author
      author: z
    - kind: same_category
    - kind: recent
      years: 10
      modern_only: true
batch:
  chunk_count: 8
  concurrency: 4
  chunk_timeout: 30m
output:
  dir: out
  sinks: [csv]
`

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "antecedent.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_ValidFile(t *testing.T) {
	cfg, err := Load(createTempConfigFile(t, validConfigYAML))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	require.NotNil(t, cfg.Analysis.BaselineWindowYears)
	assert.Equal(t, 5, *cfg.Analysis.BaselineWindowYears)
	assert.Equal(t, TargetYears, cfg.Analysis.Targets.Mode)
	assert.Equal(t, []int{2016}, cfg.Analysis.Targets.Years)
	require.Len(t, cfg.Analysis.Filters, 3)
	assert.Equal(t, "z", cfg.Analysis.Filters[0].Author)
	assert.True(t, cfg.Analysis.Filters[2].ModernOnly)
	assert.Equal(t, 8, cfg.Batch.ChunkCount)
	assert.Equal(t, 4, cfg.Batch.Concurrency)
	assert.Equal(t, 30*time.Minute, cfg.Batch.ChunkTimeout)
	assert.Equal(t, DefaultShutdownGrace, cfg.Batch.ShutdownGrace)
	assert.Equal(t, []string{"majority"}, cfg.Corpus.Categories)
	assert.Equal(t, DefaultCombinedFile, cfg.Output.CombinedFile)
}

func TestLoad_MissingBaselineWindow(t *testing.T) {
	path := createTempConfigFile(t, "corpus:\n  source: csv\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "baseline_window_years")
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_MalformedYAML(t *testing.T) {
	_, err := Load(createTempConfigFile(t, "analysis: [unclosed"))
	require.Error(t, err)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("ANTECEDENT_BATCH_CHUNK_COUNT", "3")
	t.Setenv("ANTECEDENT_LOG_LEVEL", "warn")

	cfg, err := Load(createTempConfigFile(t, validConfigYAML))
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Batch.ChunkCount)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("ANTECEDENT_ANALYSIS_BASELINE_WINDOW_YEARS", "0")
	t.Setenv("ANTECEDENT_BATCH_CHUNK_COUNT", "2")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	require.NotNil(t, cfg.Analysis.BaselineWindowYears)
	assert.Equal(t, 0, *cfg.Analysis.BaselineWindowYears)
	assert.Equal(t, 2, cfg.Batch.ChunkCount)
	assert.Equal(t, 2, cfg.Batch.Concurrency)
	assert.Equal(t, SourceCSV, cfg.Corpus.Source)
}

func TestLoadUnvalidated_EmptyPath(t *testing.T) {
	cfg, err := LoadUnvalidated("")
	require.NoError(t, err)
	assert.Nil(t, cfg.Analysis.BaselineWindowYears)
	assert.Error(t, cfg.Validate())
}

func TestMustLoad_Panics(t *testing.T) {
	assert.Panics(t, func() {
		MustLoad(filepath.Join(t.TempDir(), "nope.yaml"))
	})
}

func TestSearchPaths_Order(t *testing.T) {
	paths := SearchPaths()
	require.NotEmpty(t, paths)
	assert.Equal(t, "./antecedent.yaml", paths[0])
	assert.Equal(t, "/etc/antecedent/config.yaml", paths[len(paths)-1])
}

//Personal.AI order the ending
