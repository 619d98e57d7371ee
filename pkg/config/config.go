package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/PRK-Vasista/MLOps-House-Price-Predictor/pkg/logging"
)

// Config holds the application configuration
type Config struct {
	Environment string         `yaml:"environment"`
	Logging     logging.Config `yaml:"logging"`
	Tracking    TrackingConfig `yaml:"tracking"`
	Training    TrainingConfig `yaml:"training"`
	Serving     ServingConfig  `yaml:"serving"`
}

// TrackingConfig locates the experiment store and the artifact root
type TrackingConfig struct {
	DatabasePath string `yaml:"database_path"`
	ArtifactRoot string `yaml:"artifact_root"`
}

// TrainingConfig parameterizes the training pipeline
type TrainingConfig struct {
	DataPath        string  `yaml:"data_path"`
	TestSize        float64 `yaml:"test_size"`
	RandomSeed      int64   `yaml:"random_seed"`
	Experiment      string  `yaml:"experiment"`
	RegisteredModel string  `yaml:"registered_model"`
	PromoteAlias    string  `yaml:"promote_alias"`
	AutoPromote     bool    `yaml:"auto_promote"`
	Schedule        string  `yaml:"schedule"` // optional cron expression for periodic retraining
}

// ServingConfig parameterizes the prediction server
type ServingConfig struct {
	Port                  int      `yaml:"port"`
	ModelName             string   `yaml:"model_name"`
	ModelAlias            string   `yaml:"model_alias"`
	RateLimit             string   `yaml:"rate_limit"` // e.g. "100-S" for 100 requests per second
	AllowedOrigins        []string `yaml:"allowed_origins"`
	RequestTimeoutSeconds int      `yaml:"request_timeout_seconds"`
}

// DefaultConfig returns the configuration used when no file is given
func DefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Logging: logging.Config{
			Level:    "info",
			Format:   "text",
			Output:   "stdout",
			FilePath: "logs/server.log",
		},
		Tracking: TrackingConfig{
			DatabasePath: "data/tracking.db",
			ArtifactRoot: "data/artifacts",
		},
		Training: TrainingConfig{
			DataPath:        "data/housing.csv",
			TestSize:        0.2,
			RandomSeed:      42,
			Experiment:      "house-price",
			RegisteredModel: "HousePricePredictor",
			PromoteAlias:    "champion",
		},
		Serving: ServingConfig{
			Port:                  8080,
			ModelName:             "HousePricePredictor",
			ModelAlias:            "champion",
			RateLimit:             "100-S",
			AllowedOrigins:        []string{"*"},
			RequestTimeoutSeconds: 30,
		},
	}
}

// LoadConfig loads configuration from an optional YAML file, applies
// environment variable overrides and validates the result. An empty path
// yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnv overrides file values with environment variables
func (c *Config) applyEnv() {
	c.Environment = getEnv("ENVIRONMENT", c.Environment)
	c.Logging.Level = getEnv("LOG_LEVEL", c.Logging.Level)
	c.Tracking.DatabasePath = getEnv("DATABASE_PATH", c.Tracking.DatabasePath)
	c.Tracking.ArtifactRoot = getEnv("ARTIFACT_ROOT", c.Tracking.ArtifactRoot)
	c.Training.DataPath = getEnv("DATA_PATH", c.Training.DataPath)
	c.Serving.Port = getEnvAsInt("PORT", c.Serving.Port)
	c.Serving.ModelName = getEnv("MODEL_NAME", c.Serving.ModelName)
	c.Serving.ModelAlias = getEnv("MODEL_ALIAS", c.Serving.ModelAlias)
}

// Validate checks the configuration for values that cannot work
func (c *Config) Validate() error {
	if c.Training.TestSize <= 0 || c.Training.TestSize >= 1 {
		return fmt.Errorf("training.test_size must be between 0 and 1 exclusive, got %v", c.Training.TestSize)
	}
	if c.Training.Experiment == "" {
		return fmt.Errorf("training.experiment is required")
	}
	if c.Training.RegisteredModel == "" {
		return fmt.Errorf("training.registered_model is required")
	}
	if c.Training.AutoPromote && c.Training.PromoteAlias == "" {
		return fmt.Errorf("training.promote_alias is required when auto_promote is enabled")
	}
	if c.Serving.Port <= 0 || c.Serving.Port > 65535 {
		return fmt.Errorf("serving.port must be between 1 and 65535, got %d", c.Serving.Port)
	}
	if c.Serving.ModelName == "" {
		return fmt.Errorf("serving.model_name is required")
	}
	if c.Serving.ModelAlias == "" {
		return fmt.Errorf("serving.model_alias is required")
	}
	if c.Tracking.DatabasePath == "" {
		return fmt.Errorf("tracking.database_path is required")
	}
	if c.Tracking.ArtifactRoot == "" {
		return fmt.Errorf("tracking.artifact_root is required")
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
