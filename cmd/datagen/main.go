package main

import (
	"flag"
	"log"

	"github.com/PRK-Vasista/MLOps-House-Price-Predictor/pkg/dataset"
)

func main() {
	var rows int
	flag.IntVar(&rows, "rows", 545, "number of rows to generate")
	var seed int64
	flag.Int64Var(&seed, "seed", 42, "random seed")
	var out string
	flag.StringVar(&out, "out", "data/housing.csv", "output CSV path")
	flag.Parse()

	if rows <= 0 {
		log.Fatalf("-rows must be positive, got %d", rows)
	}

	ds := dataset.Generate(rows, seed)
	if err := ds.WriteCSV(out); err != nil {
		log.Fatalf("Failed to write dataset: %v", err)
	}

	log.Printf("Wrote %d rows to %s", ds.Len(), out)
}
