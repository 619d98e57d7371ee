package pipeline

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/PRK-Vasista/MLOps-House-Price-Predictor/pkg/config"
	"github.com/PRK-Vasista/MLOps-House-Price-Predictor/pkg/dataset"
	"github.com/PRK-Vasista/MLOps-House-Price-Predictor/pkg/logging"
	"github.com/PRK-Vasista/MLOps-House-Price-Predictor/pkg/metadatastore"
	"github.com/PRK-Vasista/MLOps-House-Price-Predictor/pkg/regression"
	"github.com/PRK-Vasista/MLOps-House-Price-Predictor/pkg/registry"
	"github.com/PRK-Vasista/MLOps-House-Price-Predictor/pkg/tracking"
)

// Pipeline orchestrates one training cycle: load data, split, fit, record
// the run, register the resulting model version and optionally promote it.
type Pipeline struct {
	cfg      config.TrainingConfig
	recorder *tracking.Recorder
	registry *registry.Service
	logger   *logging.Logger
}

// NewPipeline creates a training pipeline
func NewPipeline(cfg config.TrainingConfig, recorder *tracking.Recorder, reg *registry.Service, logger *logging.Logger) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		recorder: recorder,
		registry: reg,
		logger:   logger,
	}
}

// Result summarizes a completed pipeline run
type Result struct {
	RunID    string              `json:"run_id"`
	Version  int                 `json:"version"`
	Metrics  *regression.Metrics `json:"metrics"`
	Promoted bool                `json:"promoted"`
}

// Run executes the pipeline once. Data and configuration problems abort
// before a run is opened, so no partial run exists for them. Failures after
// BeginRun close the run as FAILED with the cause. When auto-promotion is
// enabled a non-nil Result alongside a non-nil error means the run itself
// succeeded but the promotion step did not.
func (p *Pipeline) Run() (*Result, error) {
	p.logger.Info("starting training pipeline",
		logging.Component("pipeline"),
		logging.String("data_path", p.cfg.DataPath),
		logging.String("experiment", p.cfg.Experiment))

	ds, err := dataset.Load(p.cfg.DataPath)
	if err != nil {
		return nil, fmt.Errorf("training data failed validation: %w", err)
	}

	train, test, err := ds.Split(p.cfg.TestSize, p.cfg.RandomSeed)
	if err != nil {
		return nil, err
	}
	if train.Len() < 2 {
		return nil, regression.ErrTooFewSamples
	}

	active, err := p.recorder.BeginRun(p.cfg.Experiment)
	if err != nil {
		return nil, err
	}

	result, err := p.execute(active, train, test)
	if err != nil {
		if closeErr := active.Close(err); closeErr != nil {
			p.logger.Error("failed to mark run failed", closeErr,
				logging.Component("pipeline"),
				logging.RequestID(active.ID()))
		}
		return nil, err
	}
	if err := active.Close(nil); err != nil {
		return nil, err
	}

	p.logger.Info("training pipeline finished",
		logging.Component("pipeline"),
		logging.String("run_id", result.RunID),
		logging.Int("version", result.Version),
		logging.Float("rmse", result.Metrics.RMSE),
		logging.Float("r2", result.Metrics.R2))

	if p.cfg.AutoPromote {
		promoted, err := p.PromoteIfBetter(result.Version, result.Metrics.RMSE)
		if err != nil {
			return result, fmt.Errorf("promotion failed: %w", err)
		}
		result.Promoted = promoted
	}

	return result, nil
}

// execute runs the tracked portion of the pipeline against an open run
func (p *Pipeline) execute(active *tracking.ActiveRun, train, test *dataset.Dataset) (*Result, error) {
	err := active.LogParams(map[string]string{
		"test_size":   strconv.FormatFloat(p.cfg.TestSize, 'f', -1, 64),
		"random_seed": strconv.FormatInt(p.cfg.RandomSeed, 10),
		"model_type":  regression.ModelType,
		"train_rows":  strconv.Itoa(train.Len()),
		"test_rows":   strconv.Itoa(test.Len()),
	})
	if err != nil {
		return nil, err
	}

	model, err := regression.Fit(train.Features, train.Targets)
	if err != nil {
		return nil, err
	}

	metrics, err := model.Evaluate(test.Features, test.Targets)
	if err != nil {
		return nil, err
	}
	if err := active.LogMetric("rmse", metrics.RMSE); err != nil {
		return nil, err
	}
	if err := active.LogMetric("mae", metrics.MAE); err != nil {
		return nil, err
	}
	if err := active.LogMetric("r2", metrics.R2); err != nil {
		return nil, err
	}

	mv, err := active.LogModel(model, p.cfg.RegisteredModel)
	if err != nil {
		return nil, err
	}

	return &Result{
		RunID:   active.ID(),
		Version: mv.Version,
		Metrics: metrics,
	}, nil
}

// PromoteIfBetter points the promotion alias at the given version when it
// improves on the current target's rmse. An unset alias is claimed
// unconditionally. Returns whether the alias was retargeted.
func (p *Pipeline) PromoteIfBetter(version int, rmse float64) (bool, error) {
	alias := p.cfg.PromoteAlias
	if alias == "" {
		return false, fmt.Errorf("promotion alias not configured")
	}

	current, err := p.registry.Resolve(p.cfg.RegisteredModel, alias)
	if err != nil {
		if errors.Is(err, metadatastore.ErrAliasNotFound) {
			// First promotion: nothing to compare against.
			if err := p.registry.SetAlias(p.cfg.RegisteredModel, alias, version); err != nil {
				return false, err
			}
			p.logger.Info("alias set to first version",
				logging.Component("pipeline"),
				logging.String("alias", alias),
				logging.Int("version", version))
			return true, nil
		}
		return false, err
	}

	currentRMSE, err := p.runRMSE(current.RunID)
	if err != nil {
		return false, err
	}
	if rmse >= currentRMSE {
		p.logger.Info("keeping current alias target",
			logging.Component("pipeline"),
			logging.String("alias", alias),
			logging.Int("current_version", current.Version),
			logging.Float("current_rmse", currentRMSE),
			logging.Float("candidate_rmse", rmse))
		return false, nil
	}

	if err := p.registry.SetAlias(p.cfg.RegisteredModel, alias, version); err != nil {
		return false, err
	}
	p.logger.Info("promoted model version",
		logging.Component("pipeline"),
		logging.String("alias", alias),
		logging.Int("version", version),
		logging.Float("rmse", rmse),
		logging.Float("previous_rmse", currentRMSE))
	return true, nil
}

// runRMSE reads the rmse metric recorded on the run behind a version
func (p *Pipeline) runRMSE(runID string) (float64, error) {
	run, err := p.recorder.GetRun(runID)
	if err != nil {
		return 0, err
	}
	rmse, ok := run.Metrics["rmse"]
	if !ok {
		return 0, fmt.Errorf("run %s has no rmse metric", runID)
	}
	return rmse, nil
}
