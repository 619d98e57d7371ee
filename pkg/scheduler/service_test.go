package scheduler_test

import (
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PRK-Vasista/MLOps-House-Price-Predictor/pkg/artifact"
	"github.com/PRK-Vasista/MLOps-House-Price-Predictor/pkg/config"
	"github.com/PRK-Vasista/MLOps-House-Price-Predictor/pkg/logging"
	"github.com/PRK-Vasista/MLOps-House-Price-Predictor/pkg/metadatastore"
	"github.com/PRK-Vasista/MLOps-House-Price-Predictor/pkg/pipeline"
	"github.com/PRK-Vasista/MLOps-House-Price-Predictor/pkg/registry"
	"github.com/PRK-Vasista/MLOps-House-Price-Predictor/pkg/scheduler"
	"github.com/PRK-Vasista/MLOps-House-Price-Predictor/pkg/tracking"
)

func newService(t *testing.T) *scheduler.Service {
	t.Helper()
	dir := t.TempDir()

	store, err := metadatastore.NewSQLiteStore(filepath.Join(dir, "tracking.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	artifacts, err := artifact.NewStore(filepath.Join(dir, "artifacts"))
	require.NoError(t, err)

	reg := registry.NewService(store)
	recorder := tracking.NewRecorder(store, artifacts, reg)
	logger := logging.NewLogger()
	logger.SetOutput(io.Discard)

	cfg := config.TrainingConfig{
		DataPath:        filepath.Join(dir, "housing.csv"),
		TestSize:        0.2,
		RandomSeed:      42,
		Experiment:      "house-price",
		RegisteredModel: "HousePricePredictor",
	}
	return scheduler.NewService(pipeline.NewPipeline(cfg, recorder, reg, logger))
}

func TestStartRejectsInvalidCronExpression(t *testing.T) {
	svc := newService(t)

	err := svc.Start("not a cron spec")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid cron expression")

	_, ok := svc.NextRun()
	assert.False(t, ok)
}

func TestStartAndStop(t *testing.T) {
	svc := newService(t)

	require.NoError(t, svc.Start("@hourly"))
	defer svc.Stop()

	next, ok := svc.NextRun()
	require.True(t, ok)
	assert.True(t, next.After(time.Now()))
	assert.True(t, next.Before(time.Now().Add(time.Hour+time.Minute)))

	assert.Error(t, svc.Start("@hourly"))

	svc.Stop()
	_, ok = svc.NextRun()
	assert.False(t, ok)
}

func TestStopWithoutStart(t *testing.T) {
	svc := newService(t)
	svc.Stop()
}
