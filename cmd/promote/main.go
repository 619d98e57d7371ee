package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/PRK-Vasista/MLOps-House-Price-Predictor/pkg/config"
	"github.com/PRK-Vasista/MLOps-House-Price-Predictor/pkg/metadatastore"
	"github.com/PRK-Vasista/MLOps-House-Price-Predictor/pkg/registry"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "configuration file")
	var modelName string
	flag.StringVar(&modelName, "model", "", "registered model name, defaults to the configured one")
	var list bool
	flag.BoolVar(&list, "list", false, "list registered versions with their metrics and aliases")
	var setAlias bool
	flag.BoolVar(&setAlias, "set-alias", false, "point an alias at a version")
	var version int
	flag.IntVar(&version, "version", 0, "version number for -set-alias")
	var alias string
	flag.StringVar(&alias, "alias", "", "alias name for -set-alias")
	flag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if modelName == "" {
		modelName = cfg.Training.RegisteredModel
	}

	store, err := metadatastore.NewSQLiteStore(cfg.Tracking.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to open tracking database: %v", err)
	}
	defer store.Close()

	reg := registry.NewService(store)

	switch {
	case list:
		listVersions(store, reg, modelName)
	case setAlias:
		if alias == "" {
			log.Fatalf("-set-alias requires -alias")
		}
		if version <= 0 {
			log.Fatalf("-set-alias requires -version")
		}
		if err := reg.SetAlias(modelName, alias, version); err != nil {
			log.Fatalf("Failed to set alias: %v", err)
		}
		fmt.Printf("Alias %s@%s now points at version %d\n", modelName, alias, version)
	default:
		fmt.Fprintln(os.Stderr, "Specify -list or -set-alias. Use -h for usage.")
		os.Exit(1)
	}
}

func listVersions(store metadatastore.MetadataStore, reg *registry.Service, modelName string) {
	versions, err := reg.Versions(modelName)
	if err != nil {
		log.Fatalf("Failed to list versions: %v", err)
	}
	if len(versions) == 0 {
		fmt.Printf("No versions registered for %s\n", modelName)
		return
	}

	aliases, err := reg.Aliases(modelName)
	if err != nil {
		log.Fatalf("Failed to list aliases: %v", err)
	}
	byVersion := make(map[int][]string)
	for _, a := range aliases {
		byVersion[a.Version] = append(byVersion[a.Version], a.Alias)
	}

	fmt.Printf("%-8s %-38s %-10s %-22s %s\n", "VERSION", "RUN", "RMSE", "CREATED", "ALIASES")
	for _, v := range versions {
		rmse := "-"
		if run, err := store.GetRun(v.RunID); err == nil {
			if value, ok := run.Metrics["rmse"]; ok {
				rmse = fmt.Sprintf("%.2f", value)
			}
		}
		fmt.Printf("%-8d %-38s %-10s %-22s %s\n",
			v.Version, v.RunID, rmse,
			v.CreatedAt.Format(time.RFC3339),
			strings.Join(byVersion[v.Version], ", "))
	}
}
