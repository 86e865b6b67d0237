// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	// Enable ENV override like DATABASE_POSTGRES_HOST
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment-specific overlay, ignored when absent.
	viper.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = viper.MergeInConfig()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.MetricsAddr == "" {
		cfg.App.MetricsAddr = ":9102"
	}

	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}

	if cfg.Ranking.TopN == 0 {
		cfg.Ranking.TopN = 10
	}
	if cfg.Ranking.ProductConcurrency == 0 {
		cfg.Ranking.ProductConcurrency = 4
	}
	if cfg.Ranking.SnapshotBackend == "" {
		cfg.Ranking.SnapshotBackend = "redis"
	}
	if weightsZero(cfg.Ranking.Weights) {
		cfg.Ranking.Weights = Weights{
			NPS:        0.25,
			Sentiment:  0.20,
			Engagement: 0.20,
			Volume:     0.15,
			Recency:    0.10,
			Trend:      0.10,
		}
	}

	if cfg.Sentiment.Timeout == 0 {
		cfg.Sentiment.Timeout = 5000
	}
	if cfg.Sentiment.MaxRetries == 0 {
		cfg.Sentiment.MaxRetries = 2
	}
	if cfg.Sentiment.MaxConcurrent == 0 {
		cfg.Sentiment.MaxConcurrent = 8
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}

func weightsZero(w Weights) bool {
	return w.NPS == 0 && w.Sentiment == 0 && w.Engagement == 0 &&
		w.Volume == 0 && w.Recency == 0 && w.Trend == 0
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.Database.Postgres.Host == "" {
		return fmt.Errorf("database.postgres.host is required")
	}
	if cfg.Database.Postgres.Database == "" {
		return fmt.Errorf("database.postgres.database is required")
	}
	if cfg.Database.Postgres.User == "" {
		return fmt.Errorf("database.postgres.user is required")
	}

	if cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required")
	}

	if cfg.Sentiment.BaseURL == "" {
		return fmt.Errorf("sentiment.base_url is required")
	}

	if b := cfg.Ranking.SnapshotBackend; b != "redis" && b != "postgres" {
		return fmt.Errorf("ranking.snapshot_backend must be redis or postgres, got %q", b)
	}

	sum := cfg.Ranking.Weights.NPS + cfg.Ranking.Weights.Sentiment +
		cfg.Ranking.Weights.Engagement + cfg.Ranking.Weights.Volume +
		cfg.Ranking.Weights.Recency + cfg.Ranking.Weights.Trend
	if sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("ranking.weights must sum to 1.0, got %.4f", sum)
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
