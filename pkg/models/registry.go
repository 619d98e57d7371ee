package models

import "time"

// RegisteredModel groups versions of a model under a stable name
type RegisteredModel struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// ModelVersion is an immutable snapshot of a trained model registered under
// a model name. Version numbers start at 1 and only ever increase; deleting
// a version never frees its number for reuse.
type ModelVersion struct {
	ModelName    string    `json:"model_name"`
	Version      int       `json:"version"`
	RunID        string    `json:"run_id"`
	ArtifactPath string    `json:"artifact_path"`
	Signature    Signature `json:"signature"`
	CreatedAt    time.Time `json:"created_at"`
}

// AliasTarget points a mutable, named alias (such as "champion") at one
// version of a model. Retargeting an alias is atomic: readers observe the
// old target or the new one, never an intermediate state.
type AliasTarget struct {
	ModelName string    `json:"model_name"`
	Alias     string    `json:"alias"`
	Version   int       `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}
