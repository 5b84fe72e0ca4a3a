package config

import (
	"os"
	"strconv"
	"strings"

	"aquacheck/domain/water"
	"aquacheck/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Model    ModelConfig
	Server   ServerConfig
	Database DatabaseConfig
	Input    InputConfig
	Batch    BatchConfig
	UI       UIConfig
	LogLevel string
}

// ModelConfig locates the classifier artifact
type ModelConfig struct {
	Path string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// DatabaseConfig holds the optional model registry connection
type DatabaseConfig struct {
	URL    string
	Driver string
}

// Enabled reports whether a registry database is configured
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// InputConfig controls how out-of-range measurements are handled
type InputConfig struct {
	Policy water.InputPolicy
}

// BatchConfig holds batch scoring settings
type BatchConfig struct {
	Concurrency int
}

// UIConfig holds presentation settings
type UIConfig struct {
	Theme string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{}

	modelConfig, err := loadModelConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load model configuration")
	}
	config.Model = *modelConfig

	inputConfig, err := loadInputConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load input configuration")
	}
	config.Input = *inputConfig

	config.Server = *loadServerConfig()
	config.Database = *loadDatabaseConfig()
	config.Batch = *loadBatchConfig()
	config.UI = UIConfig{Theme: getEnvOrDefault("THEME", "ocean")}
	config.LogLevel = strings.ToUpper(getEnvOrDefault("LOG_LEVEL", "INFO"))

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadModelConfig() (*ModelConfig, error) {
	path := os.Getenv("MODEL_PATH")
	if path == "" {
		return nil, errors.ConfigInvalid("MODEL_PATH is required")
	}
	return &ModelConfig{Path: path}, nil
}

func loadInputConfig() (*InputConfig, error) {
	policy, err := water.ParseInputPolicy(os.Getenv("INPUT_POLICY"))
	if err != nil {
		return nil, errors.ConfigInvalid(err.Error())
	}
	return &InputConfig{Policy: policy}, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "release"),
	}
}

func loadDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		URL:    os.Getenv("DATABASE_URL"),
		Driver: getEnvOrDefault("DATABASE_DRIVER", "postgres"),
	}
}

func loadBatchConfig() *BatchConfig {
	return &BatchConfig{
		Concurrency: getEnvIntOrDefault("BATCH_CONCURRENCY", 4),
	}
}

func validateConfig(config *Config) error {
	if config.Model.Path == "" {
		return errors.ConfigInvalid("model path is required")
	}
	if config.Batch.Concurrency < 1 {
		return errors.ConfigInvalid("BATCH_CONCURRENCY must be at least 1")
	}
	switch config.Server.GinMode {
	case "debug", "release", "test":
	default:
		return errors.ConfigInvalid("GIN_MODE must be debug, release or test")
	}
	switch config.Database.Driver {
	case "postgres", "sqlite3":
	default:
		return errors.ConfigInvalid("DATABASE_DRIVER must be postgres or sqlite3")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
