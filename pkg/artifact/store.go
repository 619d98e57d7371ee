package artifact

import (
	"fmt"
	"os"
	"path/filepath"
)

// Store provides file-based persistence for model artifacts. Every run owns
// a directory under the root with its serialized model at
// <root>/<run-id>/model/model.json. The layout is opaque to callers beyond
// the paths handed out here.
type Store struct {
	basePath string
}

// NewStore creates a new file-based artifact store instance
func NewStore(basePath string) (*Store, error) {
	if basePath == "" {
		return nil, fmt.Errorf("artifact root must not be empty")
	}
	// Create base directory if it doesn't exist
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create artifact directory: %w", err)
	}
	return &Store{basePath: basePath}, nil
}

// Root returns the artifact root directory
func (s *Store) Root() string {
	return s.basePath
}

// RunDir returns the artifact directory of a run
func (s *Store) RunDir(runID string) string {
	return filepath.Join(s.basePath, runID)
}

// ModelPath returns the location of a run's serialized model
func (s *Store) ModelPath(runID string) string {
	return filepath.Join(s.basePath, runID, "model", "model.json")
}

// EnsureRunDir creates the artifact directory for a run
func (s *Store) EnsureRunDir(runID string) error {
	if err := os.MkdirAll(s.RunDir(runID), 0755); err != nil {
		return fmt.Errorf("failed to create run artifact directory: %w", err)
	}
	return nil
}

// Exists reports whether a run already has a stored model
func (s *Store) Exists(runID string) bool {
	_, err := os.Stat(s.ModelPath(runID))
	return err == nil
}
