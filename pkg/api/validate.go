package api

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/PRK-Vasista/MLOps-House-Price-Predictor/pkg/models"
)

// buildMatrix validates a tabular payload against the model signature and
// reorders every row into signature input order. The whole payload is
// validated before any value reaches the model; the first violation aborts
// the request with an error naming the offending row and column.
func buildMatrix(payload *models.TabularPayload, sig models.Signature) ([][]float64, error) {
	if err := sig.ValidateColumns(payload.Columns); err != nil {
		return nil, err
	}
	if len(payload.Data) == 0 {
		return nil, fmt.Errorf("data must contain at least one row")
	}

	pos := make(map[string]int, len(payload.Columns))
	for i, name := range payload.Columns {
		pos[name] = i
	}

	rows := make([][]float64, len(payload.Data))
	for i, raw := range payload.Data {
		if len(raw) != len(payload.Columns) {
			return nil, fmt.Errorf("row %d has %d values for %d columns", i, len(raw), len(payload.Columns))
		}
		row := make([]float64, len(sig.Inputs))
		for j, field := range sig.Inputs {
			v, err := numericCell(raw[pos[field.Name]])
			if err != nil {
				return nil, fmt.Errorf("row %d column %q: %w", i, field.Name, err)
			}
			if field.Type == models.ColumnTypeLong && v != math.Trunc(v) {
				return nil, fmt.Errorf("row %d column %q: expected an integer value, got %v", i, field.Name, raw[pos[field.Name]])
			}
			row[j] = v
		}
		rows[i] = row
	}
	return rows, nil
}

// numericCell converts one decoded JSON cell to a float64. The prediction
// handler decodes with UseNumber, so numeric cells arrive as json.Number
// and everything else is rejected here.
func numericCell(cell any) (float64, error) {
	n, ok := cell.(json.Number)
	if !ok {
		return 0, fmt.Errorf("non-numeric value %v", cell)
	}
	v, err := n.Float64()
	if err != nil {
		return 0, fmt.Errorf("non-numeric value %v", cell)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value %v", cell)
	}
	return v, nil
}
