package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/PRK-Vasista/MLOps-House-Price-Predictor/pkg/artifact"
	"github.com/PRK-Vasista/MLOps-House-Price-Predictor/pkg/config"
	"github.com/PRK-Vasista/MLOps-House-Price-Predictor/pkg/logging"
	"github.com/PRK-Vasista/MLOps-House-Price-Predictor/pkg/metadatastore"
	"github.com/PRK-Vasista/MLOps-House-Price-Predictor/pkg/pipeline"
	"github.com/PRK-Vasista/MLOps-House-Price-Predictor/pkg/registry"
	"github.com/PRK-Vasista/MLOps-House-Price-Predictor/pkg/scheduler"
	"github.com/PRK-Vasista/MLOps-House-Price-Predictor/pkg/tracking"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "configuration file")
	var dataPath string
	flag.StringVar(&dataPath, "data", "", "training data CSV, overrides the configured path")
	var cronSpec string
	flag.StringVar(&cronSpec, "cron", "", "cron expression for periodic retraining, overrides the configured schedule")
	var promote bool
	flag.BoolVar(&promote, "promote", false, "promote the trained model when it beats the current champion")
	flag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if dataPath != "" {
		cfg.Training.DataPath = dataPath
	}
	if cronSpec != "" {
		cfg.Training.Schedule = cronSpec
	}
	if promote {
		cfg.Training.AutoPromote = true
		if cfg.Training.PromoteAlias == "" {
			log.Fatalf("Cannot promote: training.promote_alias is not configured")
		}
	}

	if err := logging.InitLogger(cfg.Logging); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	log.Printf("Starting trainer in %s mode", cfg.Environment)

	if err := os.MkdirAll(filepath.Dir(cfg.Tracking.DatabasePath), 0755); err != nil {
		log.Fatalf("Failed to create tracking directory: %v", err)
	}

	store, err := metadatastore.NewSQLiteStore(cfg.Tracking.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize SQLite storage: %v", err)
	}
	defer store.Close()
	log.Printf("Initialized SQLite storage at: %s", cfg.Tracking.DatabasePath)

	artifacts, err := artifact.NewStore(cfg.Tracking.ArtifactRoot)
	if err != nil {
		log.Fatalf("Failed to initialize artifact store: %v", err)
	}

	reg := registry.NewService(store)
	recorder := tracking.NewRecorder(store, artifacts, reg)
	p := pipeline.NewPipeline(cfg.Training, recorder, reg, logging.GetLogger())

	if cfg.Training.Schedule == "" {
		runOnce(p)
		return
	}

	// Periodic retraining: run on the configured cron schedule until
	// interrupted.
	sched := scheduler.NewService(p)
	if err := sched.Start(cfg.Training.Schedule); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down trainer...")
}

func runOnce(p *pipeline.Pipeline) {
	result, err := p.Run()
	if err != nil {
		if result != nil {
			// The run itself landed; only promotion failed.
			log.Printf("Training run %s finished but promotion failed: %v", result.RunID, err)
			os.Exit(1)
		}
		log.Fatalf("Training run failed: %v", err)
	}

	log.Printf("Training run %s finished: version=%d rmse=%.2f promoted=%v",
		result.RunID, result.Version, result.Metrics.RMSE, result.Promoted)
}
