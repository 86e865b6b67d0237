// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Ranking   RankingConfig   `mapstructure:"ranking"`
	Sentiment SentimentConfig `mapstructure:"sentiment"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	MetricsAddr string `mapstructure:"metrics_addr"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// RankingConfig holds every tunable of the scoring pipeline. Weights,
// thresholds and confidence tiers are configuration, never code constants.
type RankingConfig struct {
	TopN               int     `mapstructure:"top_n"`
	MinTotalResponses  int     `mapstructure:"min_total_responses"`
	MinRecentResponses int     `mapstructure:"min_recent_responses"`
	ProductConcurrency int     `mapstructure:"product_concurrency"`
	Weights            Weights `mapstructure:"weights"`

	// SnapshotBackend selects where weekly snapshots live: "redis" or
	// "postgres".
	SnapshotBackend string `mapstructure:"snapshot_backend"`
}

type Weights struct {
	NPS        float64 `mapstructure:"nps"`
	Sentiment  float64 `mapstructure:"sentiment"`
	Engagement float64 `mapstructure:"engagement"`
	Volume     float64 `mapstructure:"volume"`
	Recency    float64 `mapstructure:"recency"`
	Trend      float64 `mapstructure:"trend"`
}

// SentimentConfig holds settings for the external classifier service.
type SentimentConfig struct {
	BaseURL       string `mapstructure:"base_url"`
	APIKey        string `mapstructure:"api_key"`
	Timeout       int    `mapstructure:"timeout"` // milliseconds
	MaxRetries    int    `mapstructure:"max_retries"`
	MaxConcurrent int    `mapstructure:"max_concurrent"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
