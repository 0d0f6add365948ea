package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"

	"github.com/simaogato/portfoy-backend/internal/domain"
)

// Config holds application configuration
type Config struct {
	GRPCPort         int
	HTTPPort         int
	DBDriver         string // sqlite or postgres
	DBConnStr        string
	DataDir          string
	LogLevel         string
	LogPretty        bool
	DeadBand         decimal.Decimal // Rebalance neutral zone, percentage points
	RiskProfile      domain.RiskProfile
	SnapshotSchedule string // Cron expression with seconds
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	deadBand, err := decimal.NewFromString(getEnv("REBALANCE_DEAD_BAND", "2"))
	if err != nil {
		return nil, fmt.Errorf("REBALANCE_DEAD_BAND: %w", err)
	}

	cfg := &Config{
		GRPCPort:         getEnvAsInt("GRPC_PORT", 8080),
		HTTPPort:         getEnvAsInt("HTTP_PORT", 8081),
		DBDriver:         getEnv("DB_DRIVER", "sqlite"),
		DataDir:          getEnv("DATA_DIR", "./data"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogPretty:        getEnvAsBool("LOG_PRETTY", false),
		DeadBand:         deadBand,
		RiskProfile:      domain.RiskProfile(getEnv("RISK_PROFILE", string(domain.RiskProfileMedium))),
		SnapshotSchedule: getEnv("SNAPSHOT_SCHEDULE", "0 0 18 * * *"), // Daily at 18:00, after market close
	}
	cfg.DBConnStr = connString(cfg.DBDriver, cfg.DataDir)

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// connString returns DB_CONN_STR, or builds one from the individual variables
func connString(driver, dataDir string) string {
	if connStr := os.Getenv("DB_CONN_STR"); connStr != "" {
		return connStr
	}

	if driver != "postgres" {
		return filepath.Join(dataDir, "portfoy.db")
	}

	// Docker friendly
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_USER", "postgres"),
		getEnv("DB_PASSWORD", "postgres"),
		getEnv("DB_NAME", "portfoy"),
	)
}

// Validate checks the configuration is usable
func (c *Config) Validate() error {
	if c.DBDriver != "sqlite" && c.DBDriver != "postgres" {
		return fmt.Errorf("DB_DRIVER must be sqlite or postgres, got %q", c.DBDriver)
	}
	if c.DBConnStr == "" {
		return fmt.Errorf("database connection string is required")
	}
	if !validPort(c.GRPCPort) {
		return fmt.Errorf("GRPC_PORT out of range: %d", c.GRPCPort)
	}
	if !validPort(c.HTTPPort) {
		return fmt.Errorf("HTTP_PORT out of range: %d", c.HTTPPort)
	}
	if c.GRPCPort == c.HTTPPort {
		return fmt.Errorf("GRPC_PORT and HTTP_PORT must differ")
	}
	if c.DeadBand.IsNegative() {
		return fmt.Errorf("REBALANCE_DEAD_BAND cannot be negative")
	}
	if _, err := domain.ParseRiskProfile(string(c.RiskProfile)); err != nil {
		return fmt.Errorf("RISK_PROFILE: %w", err)
	}
	if _, err := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor).Parse(c.SnapshotSchedule); err != nil {
		return fmt.Errorf("SNAPSHOT_SCHEDULE: %w", err)
	}
	return nil
}

func validPort(p int) bool {
	return p > 0 && p <= 65535
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

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
