package registry

import (
	"fmt"
	"regexp"

	"github.com/PRK-Vasista/MLOps-House-Price-Predictor/pkg/metadatastore"
	"github.com/PRK-Vasista/MLOps-House-Price-Predictor/pkg/models"
)

var (
	modelNameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,100}$`)
	aliasRegex     = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,50}$`)
)

// Service provides model registry operations: versioning trained models
// under a stable name and pointing mutable aliases at specific versions.
// All consumers of the registry (training, promotion, serving) share one
// Service so the single-writer contract lives in one place.
type Service struct {
	store metadatastore.MetadataStore
}

// NewService creates a new registry service
func NewService(store metadatastore.MetadataStore) *Service {
	return &Service{
		store: store,
	}
}

// CreateVersion registers a model artifact as the next version of the named
// model, creating the registered model on first use. The returned version
// carries the assigned number.
func (s *Service) CreateVersion(modelName, runID, artifactPath string, signature models.Signature) (*models.ModelVersion, error) {
	if err := validateModelName(modelName); err != nil {
		return nil, err
	}
	if runID == "" {
		return nil, fmt.Errorf("run id must not be empty")
	}
	if artifactPath == "" {
		return nil, fmt.Errorf("artifact path must not be empty")
	}
	if err := signature.Validate(); err != nil {
		return nil, fmt.Errorf("invalid signature: %w", err)
	}

	mv := &models.ModelVersion{
		ModelName:    modelName,
		RunID:        runID,
		ArtifactPath: artifactPath,
		Signature:    signature,
	}
	if err := s.store.CreateModelVersion(mv); err != nil {
		return nil, err
	}
	return mv, nil
}

// GetVersion retrieves a specific version of a model
func (s *Service) GetVersion(modelName string, version int) (*models.ModelVersion, error) {
	return s.store.GetModelVersion(modelName, version)
}

// Versions lists all versions of a model in ascending version order
func (s *Service) Versions(modelName string) ([]*models.ModelVersion, error) {
	return s.store.ListModelVersions(modelName)
}

// DeleteVersion removes a version. Its number is never reused.
func (s *Service) DeleteVersion(modelName string, version int) error {
	return s.store.DeleteModelVersion(modelName, version)
}

// Models lists all registered models
func (s *Service) Models() ([]*models.RegisteredModel, error) {
	return s.store.ListRegisteredModels()
}

// SetAlias points an alias at an existing version of a model. Re-setting an
// alias to the version it already targets is a no-op.
func (s *Service) SetAlias(modelName, alias string, version int) error {
	if err := validateModelName(modelName); err != nil {
		return err
	}
	if err := validateAlias(alias); err != nil {
		return err
	}
	if version < 1 {
		return fmt.Errorf("version must be positive, got %d", version)
	}
	return s.store.SetAlias(modelName, alias, version)
}

// Resolve returns the model version an alias currently points at
func (s *Service) Resolve(modelName, alias string) (*models.ModelVersion, error) {
	target, err := s.store.ResolveAlias(modelName, alias)
	if err != nil {
		return nil, err
	}
	return s.store.GetModelVersion(modelName, target.Version)
}

// Aliases lists all aliases of a model
func (s *Service) Aliases(modelName string) ([]*models.AliasTarget, error) {
	return s.store.ListAliases(modelName)
}

// DeleteAlias removes an alias from a model
func (s *Service) DeleteAlias(modelName, alias string) error {
	return s.store.DeleteAlias(modelName, alias)
}

func validateModelName(name string) error {
	if !modelNameRegex.MatchString(name) {
		return fmt.Errorf("invalid model name: %q", name)
	}
	return nil
}

func validateAlias(alias string) error {
	if !aliasRegex.MatchString(alias) {
		return fmt.Errorf("invalid alias: %q", alias)
	}
	return nil
}
