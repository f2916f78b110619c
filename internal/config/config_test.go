package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"TOC_DIGEST_CONFIG", "TOC_DIGEST_BACKEND", "TOC_DIGEST_OUTPUT",
		"LOOKBACK_DAYS", "MAX_ITEMS_PER_FEED", "MAX_TOTAL_ITEMS",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "feeds.txt", cfg.Inputs.FeedsPath)
	assert.Equal(t, "interests.md", cfg.Inputs.InterestsPath)
	assert.Equal(t, 50, cfg.Limits.MaxPerFeed)
	assert.Equal(t, 500, cfg.Limits.MaxTotal)
	assert.Equal(t, 7, cfg.Limits.LookbackDays)
	assert.Equal(t, 0.65, cfg.Digest.MinScore)
	assert.Equal(t, 10, cfg.Digest.MaxReturned)
	assert.Equal(t, "digest.md", cfg.Digest.OutputPath)
	assert.Equal(t, "openai", cfg.Scoring.Backend)
	assert.Equal(t, 50, cfg.Triage.BatchSize)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-from-env")
	t.Setenv("OPENAI_MODEL", "gpt-test")
	t.Setenv("TOC_DIGEST_BACKEND", "mock")
	t.Setenv("TOC_DIGEST_OUTPUT", "/tmp/out.md")
	t.Setenv("LOOKBACK_DAYS", "14")

	cfg := Load()
	assert.Equal(t, "sk-from-env", cfg.Scoring.OpenAI.APIKey)
	assert.Equal(t, "gpt-test", cfg.Scoring.OpenAI.Model)
	assert.Equal(t, "mock", cfg.Scoring.Backend)
	assert.Equal(t, "/tmp/out.md", cfg.Digest.OutputPath)
	assert.Equal(t, 14, cfg.Limits.LookbackDays)
}

func TestLoadIgnoresNonNumericEnv(t *testing.T) {
	t.Setenv("LOOKBACK_DAYS", "a fortnight")

	cfg := Load()
	assert.Equal(t, 7, cfg.Limits.LookbackDays)
}

func TestLoadConfigFileMerge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
inputs:
  feedsPath: my-feeds.txt
limits:
  lookbackDays: 3
digest:
  minScore: 0.8
scoring:
  backend: agent
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))
	t.Setenv("TOC_DIGEST_CONFIG", path)

	cfg := Load()
	assert.Equal(t, "my-feeds.txt", cfg.Inputs.FeedsPath)
	assert.Equal(t, 3, cfg.Limits.LookbackDays)
	assert.Equal(t, 0.8, cfg.Digest.MinScore)
	assert.Equal(t, "agent", cfg.Scoring.Backend)
	// untouched sections keep defaults
	assert.Equal(t, "interests.md", cfg.Inputs.InterestsPath)
	assert.Equal(t, 10, cfg.Digest.MaxReturned)
}

func TestLoadEnvWinsOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scoring:\n  backend: agent\n"), 0o644))
	t.Setenv("TOC_DIGEST_CONFIG", path)
	t.Setenv("TOC_DIGEST_BACKEND", "mock")

	cfg := Load()
	assert.Equal(t, "mock", cfg.Scoring.Backend)
}
