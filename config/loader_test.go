package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsOnly(t *testing.T) {
	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Coordinator.MaxIterations)
	assert.Equal(t, 0.3, cfg.Detector.ConfidenceGapThreshold)
	assert.Equal(t, 0.7, cfg.Consensus.HighConfidenceThreshold)
	assert.Equal(t, "chorus", cfg.Metrics.Namespace)
	assert.Equal(t, 1.0, cfg.Telemetry.SampleRate)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
coordinator:
  max_iterations: 4
  acceptance_threshold: 0.8
detector:
  confidence_gap_threshold: 0.25
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := NewLoader().WithConfigPath(path).Load()
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Coordinator.MaxIterations)
	assert.Equal(t, 0.8, cfg.Coordinator.AcceptanceThreshold)
	assert.Equal(t, 0.25, cfg.Detector.ConfidenceGapThreshold)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Untouched sections keep defaults.
	assert.Equal(t, 0.5, cfg.Detector.SimilarityThreshold)
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	t.Setenv("CHORUS_COORDINATOR_MAX_ITERATIONS", "3")
	t.Setenv("CHORUS_COORDINATOR_TIER_TIMEOUT", "15s")
	t.Setenv("CHORUS_DETECTOR_SIMILARITY_THRESHOLD", "0.4")
	t.Setenv("CHORUS_REDIS_ENABLED", "true")
	t.Setenv("CHORUS_REDIS_ADDR", "redis:6379")
	t.Setenv("CHORUS_LOG_LEVEL", "warn")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Coordinator.MaxIterations)
	assert.Equal(t, 15*time.Second, cfg.Coordinator.TierTimeout)
	assert.Equal(t, 0.4, cfg.Detector.SimilarityThreshold)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := NewLoader().WithConfigPath("/nonexistent/config.yaml").Load()
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Coordinator.MaxIterations)
}

func TestLoad_InvalidEnvValue(t *testing.T) {
	t.Setenv("CHORUS_COORDINATOR_MAX_ITERATIONS", "many")
	_, err := NewLoader().Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero iterations", func(c *Config) { c.Coordinator.MaxIterations = 0 }},
		{"acceptance above one", func(c *Config) { c.Coordinator.AcceptanceThreshold = 1.5 }},
		{"gap threshold at zero", func(c *Config) { c.Detector.ConfidenceGapThreshold = 0 }},
		{"similarity above one", func(c *Config) { c.Detector.SimilarityThreshold = 1.2 }},
		{"inverted consensus thresholds", func(c *Config) { c.Consensus.HighConfidenceThreshold = 0.4 }},
		{"redis enabled without addr", func(c *Config) { c.Redis.Enabled = true; c.Redis.Addr = "" }},
		{"database enabled without dsn", func(c *Config) { c.Database.Enabled = true; c.Database.DSN = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.NoError(t, Default().Validate())
}
