package regression

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Metrics summarizes prediction quality on a held-out dataset.
type Metrics struct {
	RMSE       float64 `json:"rmse"`
	MAE        float64 `json:"mae"`
	R2         float64 `json:"r2"`
	NumSamples int     `json:"num_samples"`
}

// Evaluate computes regression metrics for the model on the given rows.
// R2 is reported as 0 when the targets are constant.
func (m *Model) Evaluate(features [][]float64, targets []float64) (*Metrics, error) {
	if len(features) != len(targets) {
		return nil, fmt.Errorf("feature rows (%d) and targets (%d) do not match", len(features), len(targets))
	}
	if len(features) == 0 {
		return nil, fmt.Errorf("cannot evaluate on an empty dataset")
	}

	preds, err := m.PredictBatch(features)
	if err != nil {
		return nil, err
	}

	var ssRes, sumAbs float64
	for i, p := range preds {
		diff := p - targets[i]
		ssRes += diff * diff
		sumAbs += math.Abs(diff)
	}
	n := float64(len(targets))

	meanY := stat.Mean(targets, nil)
	var ssTot float64
	for _, y := range targets {
		d := y - meanY
		ssTot += d * d
	}
	r2 := 0.0
	if ssTot > 0 {
		r2 = 1 - ssRes/ssTot
	}

	return &Metrics{
		RMSE:       math.Sqrt(ssRes / n),
		MAE:        sumAbs / n,
		R2:         r2,
		NumSamples: len(targets),
	}, nil
}
