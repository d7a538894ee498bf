// Package config loads the environment-variable configuration shared by
// the ingestion, extraction, and scoring services.
//
// Configuration Loading Order:
// 1. Load from .env file (if present)
// 2. Load from environment variables, falling back to documented defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the full set of environment-derived settings. Each service
// entrypoint reads only the fields it needs; unused fields are harmless.
type Config struct {
	Schedule     string // cron expression driving the periodic job
	PollInterval time.Duration

	DocStoreURL    string // sqlite DSN / file path for the Document Store
	MsgBusURL      string // redis connection string for the Message Bus
	ArtifactDir    string // root directory for the Artifact Store
	AllowedOrigins []string

	LogLevel string
	Port     int

	LLMURL            string
	LLMTimeoutSeconds int

	MaxConcurrentProcessing int

	CircuitBreakerFailureThreshold uint32
	CircuitBreakerRecoverySeconds  int

	HighRiskThreshold  float64
	SurgePercentage    float64
	UrbanFuelThreshold float64

	ArtifactS3Bucket    string
	ArtifactS3Prefix    string
	ArtifactS3Region    string
	ArtifactS3Endpoint  string
	ArtifactS3AccessKey string
	ArtifactS3SecretKey string
}

// Load reads configuration from the environment (after loading a .env file
// if one exists) and applies the documented defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()

	artifactDir := getEnv("ARTIFACT_DIR", "./data/artifacts")
	absArtifactDir, err := filepath.Abs(artifactDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve artifact directory path: %w", err)
	}
	if err := os.MkdirAll(absArtifactDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create artifact directory: %w", err)
	}

	cfg := &Config{
		Schedule:     getEnv("SCHEDULE", "*/15 * * * *"),
		PollInterval: time.Duration(getEnvAsInt("POLL_INTERVAL", 15)) * time.Minute,

		DocStoreURL:    getEnv("DOC_STORE_URL", "./data/conflict-monitor.db"),
		MsgBusURL:      getEnv("MSG_BUS_URL", "redis://localhost:6379/0"),
		ArtifactDir:    absArtifactDir,
		AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", []string{"*"}),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		Port:     getEnvAsInt("PORT", 8080),

		LLMURL:            getEnv("LLM_URL", ""),
		LLMTimeoutSeconds: getEnvAsInt("LLM_TIMEOUT_SECONDS", 30),

		MaxConcurrentProcessing: getEnvAsInt("MAX_CONCURRENT_PROCESSING", 5),

		CircuitBreakerFailureThreshold: uint32(getEnvAsInt("CB_FAILURE_THRESHOLD", 5)),
		CircuitBreakerRecoverySeconds:  getEnvAsInt("CB_RECOVERY_SECONDS", 30),

		HighRiskThreshold:  getEnvAsFloat("HIGH_RISK_THRESHOLD", 85),
		SurgePercentage:    getEnvAsFloat("SURGE_PERCENTAGE", 20),
		UrbanFuelThreshold: getEnvAsFloat("URBAN_FUEL_THRESHOLD", 80),

		ArtifactS3Bucket:    getEnv("ARTIFACT_S3_BUCKET", ""),
		ArtifactS3Prefix:    getEnv("ARTIFACT_S3_PREFIX", ""),
		ArtifactS3Region:    getEnv("ARTIFACT_S3_REGION", "auto"),
		ArtifactS3Endpoint:  getEnv("ARTIFACT_S3_ENDPOINT", ""),
		ArtifactS3AccessKey: getEnv("ARTIFACT_S3_ACCESS_KEY", ""),
		ArtifactS3SecretKey: getEnv("ARTIFACT_S3_SECRET_KEY", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks invariants that would otherwise surface as confusing
// runtime errors deep in a service's startup path.
func (c *Config) Validate() error {
	if c.MaxConcurrentProcessing <= 0 {
		return fmt.Errorf("MAX_CONCURRENT_PROCESSING must be positive, got %d", c.MaxConcurrentProcessing)
	}
	if c.CircuitBreakerFailureThreshold == 0 {
		return fmt.Errorf("CB_FAILURE_THRESHOLD must be positive")
	}
	return nil
}

// UsesS3Mirror reports whether enough S3/R2 settings are present to enable
// the optional artifact mirror.
func (c *Config) UsesS3Mirror() bool {
	return c.ArtifactS3Bucket != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
