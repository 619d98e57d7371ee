package dataset

import (
	"encoding/csv"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"github.com/PRK-Vasista/MLOps-House-Price-Predictor/pkg/models"
)

// Dataset holds feature rows and their target values. Feature columns are
// ordered as models.FeatureColumns regardless of the column order in the
// source file.
type Dataset struct {
	Features [][]float64
	Targets  []float64
}

// Len returns the number of rows
func (d *Dataset) Len() int {
	return len(d.Features)
}

// Append adds one observation to the dataset
func (d *Dataset) Append(s models.Sample) {
	d.Features = append(d.Features, s.Features())
	d.Targets = append(d.Targets, s.Price)
}

// Load reads a housing CSV file. The header must contain exactly the five
// feature columns and the price column, in any order. Every cell must hold
// a finite numeric value; missing or malformed values are errors that name
// the offending row and column.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("dataset is empty")
	}

	colIdx, err := mapHeader(records[0])
	if err != nil {
		return nil, err
	}
	if len(records) == 1 {
		return nil, fmt.Errorf("dataset has no data rows")
	}

	features := make([][]float64, 0, len(records)-1)
	targets := make([]float64, 0, len(records)-1)
	for i, rec := range records[1:] {
		row := make([]float64, len(models.FeatureColumns))
		for j, col := range models.FeatureColumns {
			v, err := parseCell(rec[colIdx[col]])
			if err != nil {
				return nil, fmt.Errorf("row %d: column %s: %w", i+1, col, err)
			}
			row[j] = v
		}
		target, err := parseCell(rec[colIdx[models.TargetColumn]])
		if err != nil {
			return nil, fmt.Errorf("row %d: column %s: %w", i+1, models.TargetColumn, err)
		}
		features = append(features, row)
		targets = append(targets, target)
	}

	return &Dataset{Features: features, Targets: targets}, nil
}

// mapHeader resolves the position of every required column and rejects
// headers with missing, unexpected or duplicate columns.
func mapHeader(header []string) (map[string]int, error) {
	required := append(append([]string{}, models.FeatureColumns...), models.TargetColumn)
	expected := make(map[string]bool, len(required))
	for _, c := range required {
		expected[c] = true
	}

	idx := make(map[string]int, len(header))
	var unexpected []string
	for i, name := range header {
		name = strings.TrimSpace(name)
		if !expected[name] {
			unexpected = append(unexpected, name)
			continue
		}
		if _, dup := idx[name]; dup {
			return nil, fmt.Errorf("duplicate column in header: %s", name)
		}
		idx[name] = i
	}

	var missing []string
	for _, c := range required {
		if _, ok := idx[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("dataset header missing columns: %s", strings.Join(missing, ", "))
	}
	if len(unexpected) > 0 {
		return nil, fmt.Errorf("dataset header has unexpected columns: %s", strings.Join(unexpected, ", "))
	}
	return idx, nil
}

func parseCell(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid numeric value %q", raw)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value %q", raw)
	}
	return v, nil
}

// Split partitions the dataset into train and test subsets. The split is
// deterministic for a given seed: row indices are shuffled with a seeded
// generator and the test subset takes ceil(n*testSize) rows.
func (d *Dataset) Split(testSize float64, seed int64) (train, test *Dataset, err error) {
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, fmt.Errorf("test size must be between 0 and 1 exclusive, got %v", testSize)
	}
	n := d.Len()
	if n == 0 {
		return nil, nil, fmt.Errorf("cannot split an empty dataset")
	}

	nTest := int(math.Ceil(float64(n) * testSize))
	if nTest >= n {
		return nil, nil, fmt.Errorf("test size %v leaves no training rows for %d samples", testSize, n)
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	r := rand.New(rand.NewSource(seed))
	r.Shuffle(n, func(i, j int) {
		indices[i], indices[j] = indices[j], indices[i]
	})

	return d.subset(indices[:n-nTest]), d.subset(indices[n-nTest:]), nil
}

func (d *Dataset) subset(indices []int) *Dataset {
	sub := &Dataset{
		Features: make([][]float64, len(indices)),
		Targets:  make([]float64, len(indices)),
	}
	for i, idx := range indices {
		sub.Features[i] = d.Features[idx]
		sub.Targets[i] = d.Targets[idx]
	}
	return sub
}
