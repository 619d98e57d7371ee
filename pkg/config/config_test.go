package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 0.2, cfg.Training.TestSize)
	assert.Equal(t, int64(42), cfg.Training.RandomSeed)
	assert.Equal(t, "HousePricePredictor", cfg.Training.RegisteredModel)
	assert.Equal(t, "champion", cfg.Serving.ModelAlias)
	assert.Equal(t, 8080, cfg.Serving.Port)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
environment: production
training:
  data_path: /srv/data/housing.csv
  test_size: 0.3
  random_seed: 7
  experiment: house-price
  registered_model: HousePricePredictor
  promote_alias: champion
serving:
  port: 9090
  model_name: HousePricePredictor
  model_alias: champion
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "/srv/data/housing.csv", cfg.Training.DataPath)
	assert.Equal(t, 0.3, cfg.Training.TestSize)
	assert.Equal(t, int64(7), cfg.Training.RandomSeed)
	assert.Equal(t, 9090, cfg.Serving.Port)
	// untouched sections keep their defaults
	assert.Equal(t, "data/tracking.db", cfg.Tracking.DatabasePath)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "7070")
	t.Setenv("MODEL_ALIAS", "challenger")
	t.Setenv("DATABASE_PATH", "/tmp/runs.db")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Serving.Port)
	assert.Equal(t, "challenger", cfg.Serving.ModelAlias)
	assert.Equal(t, "/tmp/runs.db", cfg.Tracking.DatabasePath)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig("/does/not/exist.yaml")
	assert.Error(t, err)
}

func TestValidateRejectsBadTestSize(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Training.TestSize = 1.5
	assert.Error(t, cfg.Validate())

	cfg.Training.TestSize = 0
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsBadPort(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Serving.Port = 0
	assert.Error(t, cfg.Validate())
}

func TestValidateAutoPromoteNeedsAlias(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Training.AutoPromote = true
	cfg.Training.PromoteAlias = ""
	assert.Error(t, cfg.Validate())
}
