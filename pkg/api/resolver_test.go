package api

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PRK-Vasista/MLOps-House-Price-Predictor/pkg/metadatastore"
	"github.com/PRK-Vasista/MLOps-House-Price-Predictor/pkg/models"
	"github.com/PRK-Vasista/MLOps-House-Price-Predictor/pkg/registry"
)

func TestResolverStartsLoading(t *testing.T) {
	r := NewResolver(nil, "HousePricePredictor", "champion", quietLogger())

	state, cause := r.State()
	assert.Equal(t, StateLoading, state)
	assert.NoError(t, cause)

	_, ok := r.Model()
	assert.False(t, ok)
	_, ok = r.Version()
	assert.False(t, ok)
}

func TestResolveLoadsChampion(t *testing.T) {
	e := newServingEnv(t, nil)

	require.NoError(t, e.resolver.Resolve())

	state, cause := e.resolver.State()
	assert.Equal(t, StateReady, state)
	assert.NoError(t, cause)

	model, ok := e.resolver.Model()
	require.True(t, ok)
	assert.Equal(t, models.FeatureColumns, model.Features)

	mv, ok := e.resolver.Version()
	require.True(t, ok)
	assert.Equal(t, 1, mv.Version)
	assert.Equal(t, e.runID, mv.RunID)
}

func TestResolveFailsWhenAliasUnset(t *testing.T) {
	dir := t.TempDir()
	store, err := metadatastore.NewSQLiteStore(filepath.Join(dir, "tracking.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	r := NewResolver(registry.NewService(store), "HousePricePredictor", "champion", quietLogger())

	err = r.Resolve()
	require.Error(t, err)
	assert.ErrorIs(t, err, metadatastore.ErrAliasNotFound)

	state, cause := r.State()
	assert.Equal(t, StateFailed, state)
	assert.ErrorIs(t, cause, metadatastore.ErrAliasNotFound)
}

func TestResolveFailsOnCorruptArtifact(t *testing.T) {
	// A corrupt artifact must leave the server up but failed: health keeps
	// answering while readiness and predictions report the cause.
	e := newServingEnv(t, nil)
	require.NoError(t, os.WriteFile(e.artifacts.ModelPath(e.runID), []byte("not a model"), 0644))

	err := e.resolver.Resolve()
	require.Error(t, err)

	state, cause := e.resolver.State()
	assert.Equal(t, StateFailed, state)
	require.Error(t, cause)
	assert.Contains(t, cause.Error(), "failed to load artifact")

	rec := e.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodGet, "/ready", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "failed", body["state"])
	assert.Contains(t, body["error"], "failed to load artifact")

	rec = e.do(t, http.MethodPost, "/invocations", map[string]any{
		"columns": models.FeatureColumns,
		"data":    [][]any{{2000, 3, 2, 1, 2}},
	})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestResolveFailsOnSignatureMismatch(t *testing.T) {
	e := newServingEnv(t, nil)

	// Register a second version whose stored signature is narrower than
	// the artifact and point the alias at it.
	narrow := models.Signature{
		Inputs: []models.SignatureField{
			{Name: "area", Type: models.ColumnTypeDouble},
			{Name: "bedrooms", Type: models.ColumnTypeLong},
			{Name: "bathrooms", Type: models.ColumnTypeLong},
			{Name: "stories", Type: models.ColumnTypeLong},
		},
		Output: models.SignatureField{Name: models.TargetColumn, Type: models.ColumnTypeDouble},
	}
	mv, err := e.registry.CreateVersion("HousePricePredictor", e.runID, e.artifacts.ModelPath(e.runID), narrow)
	require.NoError(t, err)
	require.NoError(t, e.registry.SetAlias("HousePricePredictor", "champion", mv.Version))

	err = e.resolver.Resolve()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "signature mismatch")

	state, _ := e.resolver.State()
	assert.Equal(t, StateFailed, state)
}

func TestResolveFailsOnDanglingAlias(t *testing.T) {
	// Deleting a version leaves its aliases behind; resolution through
	// such an alias must fail rather than pick another version.
	e := newServingEnv(t, nil)
	require.NoError(t, e.registry.DeleteVersion("HousePricePredictor", 1))

	err := e.resolver.Resolve()
	require.Error(t, err)
	assert.ErrorIs(t, err, metadatastore.ErrModelVersionNotFound)

	state, _ := e.resolver.State()
	assert.Equal(t, StateFailed, state)
}
