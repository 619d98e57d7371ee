package pipeline_test

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PRK-Vasista/MLOps-House-Price-Predictor/pkg/artifact"
	"github.com/PRK-Vasista/MLOps-House-Price-Predictor/pkg/config"
	"github.com/PRK-Vasista/MLOps-House-Price-Predictor/pkg/dataset"
	"github.com/PRK-Vasista/MLOps-House-Price-Predictor/pkg/logging"
	"github.com/PRK-Vasista/MLOps-House-Price-Predictor/pkg/metadatastore"
	"github.com/PRK-Vasista/MLOps-House-Price-Predictor/pkg/models"
	"github.com/PRK-Vasista/MLOps-House-Price-Predictor/pkg/pipeline"
	"github.com/PRK-Vasista/MLOps-House-Price-Predictor/pkg/regression"
	"github.com/PRK-Vasista/MLOps-House-Price-Predictor/pkg/registry"
	"github.com/PRK-Vasista/MLOps-House-Price-Predictor/pkg/tracking"
)

type env struct {
	cfg      config.TrainingConfig
	store    *metadatastore.SQLiteStore
	registry *registry.Service
	recorder *tracking.Recorder
	pipeline *pipeline.Pipeline
}

func newEnv(t *testing.T, mutate func(*config.TrainingConfig)) *env {
	t.Helper()
	dir := t.TempDir()

	store, err := metadatastore.NewSQLiteStore(filepath.Join(dir, "tracking.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	artifacts, err := artifact.NewStore(filepath.Join(dir, "artifacts"))
	require.NoError(t, err)

	reg := registry.NewService(store)
	recorder := tracking.NewRecorder(store, artifacts, reg)

	cfg := config.TrainingConfig{
		DataPath:        filepath.Join(dir, "housing.csv"),
		TestSize:        0.2,
		RandomSeed:      42,
		Experiment:      "house-price",
		RegisteredModel: "HousePricePredictor",
		PromoteAlias:    "champion",
	}
	if mutate != nil {
		mutate(&cfg)
	}

	logger := logging.NewLogger()
	logger.SetOutput(io.Discard)

	return &env{
		cfg:      cfg,
		store:    store,
		registry: reg,
		recorder: recorder,
		pipeline: pipeline.NewPipeline(cfg, recorder, reg, logger),
	}
}

func writeHousingCSV(t *testing.T, e *env, rows int) {
	t.Helper()
	require.NoError(t, dataset.Generate(rows, 7).WriteCSV(e.cfg.DataPath))
}

func TestRunEndToEnd(t *testing.T) {
	e := newEnv(t, nil)
	writeHousingCSV(t, e, 100)

	result, err := e.pipeline.Run()
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, 1, result.Version)
	assert.Greater(t, result.Metrics.RMSE, 0.0)
	assert.Equal(t, 20, result.Metrics.NumSamples)

	run, err := e.store.GetRun(result.RunID)
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusFinished, run.Status)
	assert.Equal(t, "0.2", run.Params["test_size"])
	assert.Equal(t, "42", run.Params["random_seed"])
	assert.Equal(t, "LinearRegression", run.Params["model_type"])
	assert.Contains(t, run.Metrics, "rmse")
	assert.Contains(t, run.Metrics, "mae")
	assert.Contains(t, run.Metrics, "r2")

	mv, err := e.registry.GetVersion("HousePricePredictor", 1)
	require.NoError(t, err)
	assert.Equal(t, result.RunID, mv.RunID)

	model, err := regression.LoadModel(mv.ArtifactPath)
	require.NoError(t, err)
	pred, err := model.Predict([]float64{2500, 3, 2, 1, 1})
	require.NoError(t, err)
	assert.Greater(t, pred, 0.0)
}

func TestRunWithFiveRows(t *testing.T) {
	// Five rows at test size 0.2 leave four training rows against six
	// unknowns. The fit must still succeed and serve predictions.
	e := newEnv(t, nil)
	writeHousingCSV(t, e, 5)

	result, err := e.pipeline.Run()
	require.NoError(t, err)
	assert.Equal(t, 1, result.Version)
	assert.Equal(t, 1, result.Metrics.NumSamples)
	assert.False(t, result.Metrics.RMSE < 0)

	mv, err := e.registry.GetVersion("HousePricePredictor", 1)
	require.NoError(t, err)
	model, err := regression.LoadModel(mv.ArtifactPath)
	require.NoError(t, err)
	_, err = model.Predict([]float64{2500, 3, 2, 1, 1})
	require.NoError(t, err)
}

func TestRunDeterministicForSeed(t *testing.T) {
	first := newEnv(t, nil)
	writeHousingCSV(t, first, 80)
	second := newEnv(t, nil)
	require.NoError(t, dataset.Generate(80, 7).WriteCSV(second.cfg.DataPath))

	r1, err := first.pipeline.Run()
	require.NoError(t, err)
	r2, err := second.pipeline.Run()
	require.NoError(t, err)

	assert.InDelta(t, r1.Metrics.RMSE, r2.Metrics.RMSE, 1e-9)
	assert.InDelta(t, r1.Metrics.R2, r2.Metrics.R2, 1e-9)
}

func TestRunInvalidDataLeavesNoPartialRun(t *testing.T) {
	e := newEnv(t, nil)
	require.NoError(t, os.WriteFile(e.cfg.DataPath,
		[]byte("area,bedrooms,bathrooms,price\n2500,3,2,310000\n"), 0644))

	_, err := e.pipeline.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing columns")
	assert.Contains(t, err.Error(), "stories")

	runs, err := e.store.ListRuns("house-price")
	require.NoError(t, err)
	assert.Empty(t, runs)

	versions, err := e.registry.Versions("HousePricePredictor")
	require.NoError(t, err)
	assert.Empty(t, versions)
}

func TestRunTooFewTrainingRows(t *testing.T) {
	e := newEnv(t, func(cfg *config.TrainingConfig) { cfg.TestSize = 0.5 })
	writeHousingCSV(t, e, 2)

	_, err := e.pipeline.Run()
	require.Error(t, err)
	assert.ErrorIs(t, err, regression.ErrTooFewSamples)

	runs, err := e.store.ListRuns("house-price")
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestAutoPromoteClaimsUnsetAlias(t *testing.T) {
	e := newEnv(t, func(cfg *config.TrainingConfig) { cfg.AutoPromote = true })
	writeHousingCSV(t, e, 100)

	result, err := e.pipeline.Run()
	require.NoError(t, err)
	assert.True(t, result.Promoted)

	mv, err := e.registry.Resolve("HousePricePredictor", "champion")
	require.NoError(t, err)
	assert.Equal(t, result.Version, mv.Version)
}

func TestAutoPromoteKeepsChampionWithoutImprovement(t *testing.T) {
	// Identical data and seed yield identical rmse, and a tie must not
	// displace the current champion.
	e := newEnv(t, func(cfg *config.TrainingConfig) { cfg.AutoPromote = true })
	writeHousingCSV(t, e, 100)

	first, err := e.pipeline.Run()
	require.NoError(t, err)
	require.True(t, first.Promoted)

	second, err := e.pipeline.Run()
	require.NoError(t, err)
	assert.False(t, second.Promoted)
	assert.Equal(t, 2, second.Version)

	mv, err := e.registry.Resolve("HousePricePredictor", "champion")
	require.NoError(t, err)
	assert.Equal(t, first.Version, mv.Version)
}

func TestPromoteIfBetterRetargetsOnImprovement(t *testing.T) {
	e := newEnv(t, nil)
	model := fitTestModel(t)

	v1 := recordRunWithRMSE(t, e, model, 100)
	require.NoError(t, e.registry.SetAlias("HousePricePredictor", "champion", v1))
	v2 := recordRunWithRMSE(t, e, model, 50)

	promoted, err := e.pipeline.PromoteIfBetter(v2, 50)
	require.NoError(t, err)
	assert.True(t, promoted)

	mv, err := e.registry.Resolve("HousePricePredictor", "champion")
	require.NoError(t, err)
	assert.Equal(t, v2, mv.Version)

	// A worse candidate leaves the alias alone.
	v3 := recordRunWithRMSE(t, e, model, 80)
	promoted, err = e.pipeline.PromoteIfBetter(v3, 80)
	require.NoError(t, err)
	assert.False(t, promoted)

	mv, err = e.registry.Resolve("HousePricePredictor", "champion")
	require.NoError(t, err)
	assert.Equal(t, v2, mv.Version)
}

func fitTestModel(t *testing.T) *regression.Model {
	t.Helper()
	ds := dataset.Generate(30, 3)
	m, err := regression.Fit(ds.Features, ds.Targets)
	require.NoError(t, err)
	return m
}

func recordRunWithRMSE(t *testing.T, e *env, model *regression.Model, rmse float64) int {
	t.Helper()
	active, err := e.recorder.BeginRun("house-price")
	require.NoError(t, err)
	require.NoError(t, active.LogMetric("rmse", rmse))
	mv, err := active.LogModel(model, "HousePricePredictor")
	require.NoError(t, err)
	require.NoError(t, active.Close(nil))
	return mv.Version
}
