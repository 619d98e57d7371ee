package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/cors"

	"github.com/PRK-Vasista/MLOps-House-Price-Predictor/pkg/api"
	"github.com/PRK-Vasista/MLOps-House-Price-Predictor/pkg/config"
	"github.com/PRK-Vasista/MLOps-House-Price-Predictor/pkg/logging"
	"github.com/PRK-Vasista/MLOps-House-Price-Predictor/pkg/metadatastore"
	"github.com/PRK-Vasista/MLOps-House-Price-Predictor/pkg/registry"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logging.InitLogger(cfg.Logging); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	log.Printf("Starting model server in %s mode", cfg.Environment)

	if err := os.MkdirAll(filepath.Dir(cfg.Tracking.DatabasePath), 0755); err != nil {
		log.Fatalf("Failed to create tracking directory: %v", err)
	}

	store, err := metadatastore.NewSQLiteStore(cfg.Tracking.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize SQLite storage: %v", err)
	}
	defer store.Close()

	reg := registry.NewService(store)
	resolver := api.NewResolver(reg, cfg.Serving.ModelName, cfg.Serving.ModelAlias, logging.GetLogger())

	server, err := api.NewServer(resolver, cfg.Serving, logging.GetLogger())
	if err != nil {
		log.Fatalf("Failed to initialize API server: %v", err)
	}

	// Resolve the model in the background. A failure leaves the server up:
	// health keeps answering while readiness and predictions report the
	// failed state until an operator fixes the registry and restarts.
	go func() {
		if err := resolver.Resolve(); err != nil {
			log.Printf("Model resolution failed: %v", err)
		}
	}()

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.Serving.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Serving.Port),
		Handler:      c.Handler(server.Router()),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Serving %s@%s on port %d", cfg.Serving.ModelName, cfg.Serving.ModelAlias, cfg.Serving.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("Error starting server: %v", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("HTTP server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
