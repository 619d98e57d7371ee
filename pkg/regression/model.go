package regression

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/PRK-Vasista/MLOps-House-Price-Predictor/pkg/models"
)

// Model is a fitted ordinary least squares regressor over the housing
// features. It serializes to the JSON model artifact stored for each run.
type Model struct {
	ModelType    string           `json:"model_type"`
	Coefficients []float64        `json:"coefficients"`
	Intercept    float64          `json:"intercept"`
	Features     []string         `json:"features"`
	Signature    models.Signature `json:"signature"`
	TrainingRows int              `json:"training_rows"`
	TrainedAt    time.Time        `json:"trained_at"`
}

// Validate checks structural consistency of a model
func (m *Model) Validate() error {
	if m.ModelType != ModelType {
		return fmt.Errorf("unsupported model type: %s", m.ModelType)
	}
	if len(m.Coefficients) == 0 {
		return fmt.Errorf("model has no coefficients")
	}
	if len(m.Coefficients) != len(m.Features) {
		return fmt.Errorf("model has %d coefficients for %d features", len(m.Coefficients), len(m.Features))
	}
	if err := m.Signature.Validate(); err != nil {
		return fmt.Errorf("invalid model signature: %w", err)
	}
	if len(m.Signature.Inputs) != len(m.Features) {
		return fmt.Errorf("signature declares %d inputs for %d features", len(m.Signature.Inputs), len(m.Features))
	}
	return nil
}

// Predict returns the price estimate for a single feature row ordered as
// m.Features.
func (m *Model) Predict(row []float64) (float64, error) {
	if len(row) != len(m.Coefficients) {
		return 0, fmt.Errorf("expected %d features, got %d", len(m.Coefficients), len(row))
	}
	v := m.Intercept
	for j, c := range m.Coefficients {
		v += c * row[j]
	}
	return v, nil
}

// PredictBatch applies Predict to every row.
func (m *Model) PredictBatch(rows [][]float64) ([]float64, error) {
	out := make([]float64, len(rows))
	for i, row := range rows {
		v, err := m.Predict(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// Save writes the model as indented JSON to path, creating parent
// directories as needed.
func (m *Model) Save(path string) error {
	if err := m.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid model: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create model directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal model: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write model: %w", err)
	}
	return nil
}

// LoadModel reads and validates a model artifact produced by Save.
func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model: %w", err)
	}
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse model: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid model artifact: %w", err)
	}
	return &m, nil
}
