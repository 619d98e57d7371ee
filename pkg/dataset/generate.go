package dataset

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"

	"github.com/PRK-Vasista/MLOps-House-Price-Predictor/pkg/models"
)

// Generate produces a synthetic housing dataset with a known linear price
// structure plus gaussian noise. The same seed always yields the same rows.
func Generate(n int, seed int64) *Dataset {
	r := rand.New(rand.NewSource(seed))
	ds := &Dataset{
		Features: make([][]float64, 0, n),
		Targets:  make([]float64, 0, n),
	}
	for i := 0; i < n; i++ {
		s := models.Sample{
			Area:      float64(1500 + r.Intn(4500)),
			Bedrooms:  float64(1 + r.Intn(5)),
			Bathrooms: float64(1 + r.Intn(3)),
			Stories:   float64(1 + r.Intn(3)),
			Parking:   float64(r.Intn(3)),
		}
		price := 100*s.Area + 10000*s.Bedrooms + 5000*s.Bathrooms + 2000*s.Stories + 3000*s.Parking
		price += r.NormFloat64() * 20000
		s.Price = float64(int64(price))
		ds.Append(s)
	}
	return ds
}

// WriteCSV writes the dataset to path with a header row, creating parent
// directories as needed.
func (d *Dataset) WriteCSV(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create dataset directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create dataset file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := append(append([]string{}, models.FeatureColumns...), models.TargetColumn)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write dataset header: %w", err)
	}
	for i, row := range d.Features {
		rec := make([]string, 0, len(row)+1)
		for _, v := range row {
			rec = append(rec, strconv.FormatFloat(v, 'f', -1, 64))
		}
		rec = append(rec, strconv.FormatFloat(d.Targets[i], 'f', -1, 64))
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("failed to write dataset row %d: %w", i+1, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush dataset file: %w", err)
	}
	return nil
}
