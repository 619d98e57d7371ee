package tracking

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/PRK-Vasista/MLOps-House-Price-Predictor/pkg/artifact"
	"github.com/PRK-Vasista/MLOps-House-Price-Predictor/pkg/metadatastore"
	"github.com/PRK-Vasista/MLOps-House-Price-Predictor/pkg/models"
	"github.com/PRK-Vasista/MLOps-House-Price-Predictor/pkg/regression"
	"github.com/PRK-Vasista/MLOps-House-Price-Predictor/pkg/registry"
)

// Recorder provides experiment tracking: it opens runs, records parameters
// and metrics against the metadata store, and stores model artifacts
// alongside their registry entry. The store is the single source of truth;
// when it is unreachable the operation fails and nothing is recorded locally.
type Recorder struct {
	store     metadatastore.MetadataStore
	artifacts *artifact.Store
	registry  *registry.Service
}

// NewRecorder creates a new experiment recorder
func NewRecorder(store metadatastore.MetadataStore, artifacts *artifact.Store, reg *registry.Service) *Recorder {
	return &Recorder{
		store:     store,
		artifacts: artifacts,
		registry:  reg,
	}
}

// BeginRun opens a new run in the given experiment
func (r *Recorder) BeginRun(experiment string) (*ActiveRun, error) {
	if experiment == "" {
		return nil, fmt.Errorf("experiment name must not be empty")
	}

	run := &models.Run{
		ID:         uuid.New().String(),
		Experiment: experiment,
		Status:     models.RunStatusRunning,
		StartedAt:  time.Now().UTC(),
	}
	if err := r.store.CreateRun(run); err != nil {
		return nil, fmt.Errorf("failed to begin run: %w", err)
	}

	return &ActiveRun{recorder: r, run: run}, nil
}

// GetRun retrieves a run with its params and metrics
func (r *Recorder) GetRun(id string) (*models.Run, error) {
	return r.store.GetRun(id)
}

// ListRuns lists runs for an experiment, newest first
func (r *Recorder) ListRuns(experiment string) ([]*models.Run, error) {
	return r.store.ListRuns(experiment)
}

// ActiveRun is a handle to an open run. All writes go through the metadata
// store, which rejects them once the run reaches a terminal status.
type ActiveRun struct {
	recorder *Recorder
	run      *models.Run
}

// ID returns the run identifier
func (a *ActiveRun) ID() string {
	return a.run.ID
}

// LogParam records a single parameter on the run
func (a *ActiveRun) LogParam(name, value string) error {
	if name == "" {
		return fmt.Errorf("param name must not be empty")
	}
	return a.recorder.store.LogParam(a.run.ID, name, value)
}

// LogParams records several parameters at once
func (a *ActiveRun) LogParams(params map[string]string) error {
	for name, value := range params {
		if err := a.LogParam(name, value); err != nil {
			return err
		}
	}
	return nil
}

// LogMetric records a numeric metric on the run
func (a *ActiveRun) LogMetric(name string, value float64) error {
	if name == "" {
		return fmt.Errorf("metric name must not be empty")
	}
	return a.recorder.store.LogMetric(a.run.ID, name, value)
}

// LogModel stores the fitted model as this run's artifact and registers it
// as the next version of registeredName, creating the registered model on
// first use. If the artifact cannot be written or the store is unreachable
// no version is created.
func (a *ActiveRun) LogModel(model *regression.Model, registeredName string) (*models.ModelVersion, error) {
	if registeredName == "" {
		return nil, fmt.Errorf("registered model name must not be empty")
	}

	path := a.recorder.artifacts.ModelPath(a.run.ID)
	if err := model.Save(path); err != nil {
		return nil, fmt.Errorf("failed to store model artifact: %w", err)
	}
	if err := a.recorder.store.UpdateRunArtifact(a.run.ID, path); err != nil {
		return nil, err
	}

	mv, err := a.recorder.registry.CreateVersion(registeredName, a.run.ID, path, model.Signature)
	if err != nil {
		return nil, fmt.Errorf("failed to register model version: %w", err)
	}
	return mv, nil
}

// Close finishes the run: FINISHED when runErr is nil, FAILED with the error
// message otherwise. A closed run rejects all further writes.
func (a *ActiveRun) Close(runErr error) error {
	if runErr != nil {
		return a.recorder.store.FinishRun(a.run.ID, models.RunStatusFailed, runErr.Error())
	}
	return a.recorder.store.FinishRun(a.run.ID, models.RunStatusFinished, "")
}
