package metadatastore

import "github.com/PRK-Vasista/MLOps-House-Price-Predictor/pkg/models"

// MetadataStore is the interface for experiment and registry metadata
// persistence. This stores run records, registered models, versions and
// aliases. Model artifacts themselves live on the filesystem and are only
// referenced by path from here.
type MetadataStore interface {
	// Run operations
	CreateRun(run *models.Run) error
	GetRun(id string) (*models.Run, error)
	ListRuns(experiment string) ([]*models.Run, error)
	LogParam(runID, name, value string) error
	LogMetric(runID, name string, value float64) error
	UpdateRunArtifact(runID, artifactPath string) error
	FinishRun(runID string, status models.RunStatus, errorMessage string) error

	// Registered model operations
	CreateModelVersion(mv *models.ModelVersion) error
	GetModelVersion(modelName string, version int) (*models.ModelVersion, error)
	ListModelVersions(modelName string) ([]*models.ModelVersion, error)
	DeleteModelVersion(modelName string, version int) error
	ListRegisteredModels() ([]*models.RegisteredModel, error)

	// Alias operations
	SetAlias(modelName, alias string, version int) error
	ResolveAlias(modelName, alias string) (*models.AliasTarget, error)
	ListAliases(modelName string) ([]*models.AliasTarget, error)
	DeleteAlias(modelName, alias string) error
}
