package api

import (
	"fmt"
	"sync"

	"github.com/PRK-Vasista/MLOps-House-Price-Predictor/pkg/logging"
	"github.com/PRK-Vasista/MLOps-House-Price-Predictor/pkg/models"
	"github.com/PRK-Vasista/MLOps-House-Price-Predictor/pkg/regression"
	"github.com/PRK-Vasista/MLOps-House-Price-Predictor/pkg/registry"
)

// ServingState is the lifecycle state of the serving model
type ServingState string

const (
	StateLoading ServingState = "loading"
	StateReady   ServingState = "ready"
	StateFailed  ServingState = "failed"
)

// Resolver loads the model the server will predict with. It resolves the
// configured model name and alias through the registry, loads the version's
// artifact from disk and keeps the result for the prediction handlers.
// Resolution runs once at startup; a failure leaves the resolver in the
// failed state with its cause retained until the process is restarted.
type Resolver struct {
	registry *registry.Service
	logger   *logging.Logger

	modelName string
	alias     string

	mu      sync.RWMutex
	state   ServingState
	version *models.ModelVersion
	model   *regression.Model
	cause   error
}

// NewResolver creates a resolver for the given model name and alias
func NewResolver(reg *registry.Service, modelName, alias string, logger *logging.Logger) *Resolver {
	return &Resolver{
		registry:  reg,
		logger:    logger,
		modelName: modelName,
		alias:     alias,
		state:     StateLoading,
	}
}

// Resolve walks alias to version to artifact and moves the resolver to the
// ready state. Any failure moves it to the failed state instead and returns
// the cause.
func (r *Resolver) Resolve() error {
	mv, err := r.registry.Resolve(r.modelName, r.alias)
	if err != nil {
		return r.fail(fmt.Errorf("failed to resolve %s@%s: %w", r.modelName, r.alias, err))
	}

	model, err := regression.LoadModel(mv.ArtifactPath)
	if err != nil {
		return r.fail(fmt.Errorf("failed to load artifact for %s version %d: %w", r.modelName, mv.Version, err))
	}

	// The registry signature drives request validation, so it must cover
	// exactly the columns the artifact was trained on.
	if err := mv.Signature.ValidateColumns(model.Features); err != nil {
		return r.fail(fmt.Errorf("signature mismatch for %s version %d: %w", r.modelName, mv.Version, err))
	}

	r.mu.Lock()
	r.state = StateReady
	r.version = mv
	r.model = model
	r.mu.Unlock()

	r.logger.Info("Model resolved",
		logging.String("model", r.modelName),
		logging.String("alias", r.alias),
		logging.Int("version", mv.Version),
		logging.String("run_id", mv.RunID),
		logging.Component("resolver"))
	return nil
}

func (r *Resolver) fail(err error) error {
	r.mu.Lock()
	r.state = StateFailed
	r.cause = err
	r.mu.Unlock()

	r.logger.Error("Model resolution failed", err,
		logging.String("model", r.modelName),
		logging.String("alias", r.alias),
		logging.Component("resolver"))
	return err
}

// State returns the current serving state and, when failed, its cause
func (r *Resolver) State() (ServingState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state, r.cause
}

// Model returns the loaded model, or false until the resolver is ready
func (r *Resolver) Model() (*regression.Model, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.state != StateReady {
		return nil, false
	}
	return r.model, true
}

// Version returns the resolved registry version, or false until ready
func (r *Resolver) Version() (*models.ModelVersion, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.state != StateReady {
		return nil, false
	}
	return r.version, true
}
