package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loopgate/loopgate/internal/domain"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, domain.ConfigFileName), []byte(content), 0o600))
}

func TestLoader_Load_DefaultsWhenNoFiles(t *testing.T) {
	loader := NewLoaderWithGlobalDir(t.TempDir(), t.TempDir())

	cfg, err := loader.Load()

	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Loop.DefaultMaxIterations)
	assert.Equal(t, 30*time.Minute, cfg.Loop.StaleAfter.Std())
	assert.Equal(t, 72*time.Hour, cfg.Approval.ReversibleTTL.Std())
	assert.Equal(t, 4*time.Hour, cfg.Approval.IrreversibleTTL.Std())
	assert.Equal(t, 3, cfg.Approval.MaxAttempts)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoader_Load_LocalOverridesGlobal(t *testing.T) {
	// Setup
	dataDir := t.TempDir()
	globalDir := t.TempDir()
	writeConfig(t, globalDir, `
[loop]
default_max_iterations = 20
stale_after = "1h"

[log]
level = "debug"
`)
	writeConfig(t, dataDir, `
[loop]
default_max_iterations = 5
`)
	loader := NewLoaderWithGlobalDir(dataDir, globalDir)

	// Execute
	cfg, err := loader.Load()

	// Assert - local wins, untouched global values survive, rest are defaults
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Loop.DefaultMaxIterations)
	assert.Equal(t, time.Hour, cfg.Loop.StaleAfter.Std())
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 72*time.Hour, cfg.Approval.ReversibleTTL.Std())
}

func TestLoader_Load_DurationStrings(t *testing.T) {
	dataDir := t.TempDir()
	writeConfig(t, dataDir, `
[approval]
reversible_ttl = "48h"
backoff_initial = "500ms"
max_attempts = 5
`)
	loader := NewLoaderWithGlobalDir(dataDir, t.TempDir())

	cfg, err := loader.Load()

	require.NoError(t, err)
	assert.Equal(t, 48*time.Hour, cfg.Approval.ReversibleTTL.Std())
	assert.Equal(t, 500*time.Millisecond, cfg.Approval.BackoffInitial.Std())
	assert.Equal(t, 5, cfg.Approval.MaxAttempts)
}

func TestLoader_Load_EstimatorOverrides(t *testing.T) {
	dataDir := t.TempDir()
	writeConfig(t, dataDir, `
[estimator.migration]
complexity_tier = "complex"
estimated_steps = 12
estimated_minutes = 90
`)
	loader := NewLoaderWithGlobalDir(dataDir, t.TempDir())

	cfg, err := loader.Load()

	require.NoError(t, err)
	require.Contains(t, cfg.Estimator, "migration")
	assert.Equal(t, domain.TierComplex, cfg.Estimator["migration"].Tier)
	assert.Equal(t, 12, cfg.Estimator["migration"].EstimatedSteps)
}

func TestLoader_Load_MalformedTOML(t *testing.T) {
	dataDir := t.TempDir()
	writeConfig(t, dataDir, "[loop\nbroken")
	loader := NewLoaderWithGlobalDir(dataDir, t.TempDir())

	_, err := loader.Load()

	assert.Error(t, err)
}

func TestLoader_Load_BadDurationString(t *testing.T) {
	dataDir := t.TempDir()
	writeConfig(t, dataDir, `
[loop]
stale_after = "not-a-duration"
`)
	loader := NewLoaderWithGlobalDir(dataDir, t.TempDir())

	_, err := loader.Load()

	assert.Error(t, err)
}
