package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Downstream  DownstreamConfig  `mapstructure:"downstream"`
	Dedup       DedupConfig       `mapstructure:"dedup"`
	ReviewQueue ReviewQueueConfig `mapstructure:"review_queue"`
	Triage      TriageConfig      `mapstructure:"triage"`
	Ingestion   IngestionConfig   `mapstructure:"ingestion"`
	DLQ         DLQConfig         `mapstructure:"dlq"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type AuthConfig struct {
	// APIKey is the shared secret expected in X-API-Key. Empty disables
	// the auth gate.
	APIKey string `mapstructure:"api_key"`
}

type DownstreamConfig struct {
	URL     string        `mapstructure:"url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type DedupConfig struct {
	// Backend is "memory" or "redis".
	Backend   string `mapstructure:"backend"`
	RedisURL  string `mapstructure:"redis_url"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

type ReviewQueueConfig struct {
	// Backend is "memory" or "postgres".
	Backend     string `mapstructure:"backend"`
	DatabaseURL string `mapstructure:"database_url"`
}

type TriageConfig struct {
	ProcessThreshold float64 `mapstructure:"process_threshold"`
	ReviewThreshold  float64 `mapstructure:"review_threshold"`
}

type IngestionConfig struct {
	MaxFileSize  int64 `mapstructure:"max_file_size"`
	BatchWorkers int   `mapstructure:"batch_workers"`
}

type DLQConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	NatsURL string `mapstructure:"nats_url"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("server.port", 8095)
	v.SetDefault("server.read_timeout", "60s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("auth.api_key", "")
	v.SetDefault("downstream.url", "http://localhost:8096")
	v.SetDefault("downstream.api_key", "")
	v.SetDefault("downstream.timeout", "30s")
	v.SetDefault("dedup.backend", "memory")
	v.SetDefault("dedup.redis_url", "redis://localhost:6379/0")
	v.SetDefault("dedup.key_prefix", "rodeo:dedup")
	v.SetDefault("review_queue.backend", "memory")
	v.SetDefault("review_queue.database_url", "")
	v.SetDefault("triage.process_threshold", 0.7)
	v.SetDefault("triage.review_threshold", 0.4)
	v.SetDefault("ingestion.max_file_size", 33554432)
	v.SetDefault("ingestion.batch_workers", 4)
	v.SetDefault("dlq.enabled", false)
	v.SetDefault("dlq.nats_url", "nats://localhost:4222")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Read config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/rodeoai/ingest")
	}

	// Environment variables override
	v.SetEnvPrefix("RODEO")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found; use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
