package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port         int
	DatabasePath string
	LogLevel     string
	DevMode      bool

	// Analytics defaults, passed as explicit parameters into the engine.
	// The engine never reads these from ambient state.
	RiskFreeRate         float64 // Annual risk-free rate (0.02 = 2%)
	VaRConfidence        float64 // Confidence level for VaR/CVaR (0.95)
	AnomalyContamination float64 // Expected anomaly fraction (0.05)
	AnomalySeed          int64   // Seed for the isolation forest
	AnomalyMinSamples    int     // Minimum series length for detection
	FeatureWindow        int     // Rolling window for anomaly features
	MaxAllocationStep    float64 // Per-asset cap on a single reallocation step

	// Data refresh
	RefreshSchedule string   // Cron expression for the returns refresh job
	RefreshFunds    []string // Fund symbols refreshed by the scheduled job
	RefreshPeriod   string   // History range requested from the NAV source
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:         getEnvAsInt("PORT", 8000),
		DatabasePath: getEnv("DATABASE_PATH", "./data/analytics.db"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		DevMode:      getEnvAsBool("DEV_MODE", false),

		RiskFreeRate:         getEnvAsFloat("RISK_FREE_RATE", 0.02),
		VaRConfidence:        getEnvAsFloat("VAR_CONFIDENCE", 0.95),
		AnomalyContamination: getEnvAsFloat("ANOMALY_CONTAMINATION", 0.05),
		AnomalySeed:          int64(getEnvAsInt("ANOMALY_RANDOM_STATE", 42)),
		AnomalyMinSamples:    getEnvAsInt("ANOMALY_MIN_SAMPLES", 20),
		FeatureWindow:        getEnvAsInt("FEATURE_WINDOW", 5),
		MaxAllocationStep:    getEnvAsFloat("MAX_ALLOCATION_STEP", 0.05),

		RefreshSchedule: getEnv("REFRESH_SCHEDULE", "0 0 6 * * *"),
		RefreshFunds:    getEnvAsList("REFRESH_FUNDS"),
		RefreshPeriod:   getEnv("REFRESH_PERIOD", "5y"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is usable
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	if c.VaRConfidence <= 0 || c.VaRConfidence >= 1 {
		return fmt.Errorf("VAR_CONFIDENCE must be in (0, 1), got %v", c.VaRConfidence)
	}
	if c.AnomalyContamination <= 0 || c.AnomalyContamination > 0.5 {
		return fmt.Errorf("ANOMALY_CONTAMINATION must be in (0, 0.5], got %v", c.AnomalyContamination)
	}
	if c.MaxAllocationStep <= 0 || c.MaxAllocationStep > 1 {
		return fmt.Errorf("MAX_ALLOCATION_STEP must be in (0, 1], got %v", c.MaxAllocationStep)
	}

	return nil
}

// Helper functions

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
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}

	var items []string
	for _, part := range strings.Split(value, ",") {
		if item := strings.TrimSpace(part); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
