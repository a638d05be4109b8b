package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Hermes    HermesConfig    `yaml:"hermes"`
	Optimizer OptimizerConfig `yaml:"optimizer"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type ServerConfig struct {
	Port              int    `yaml:"port"`
	MetricsPort       int    `yaml:"metrics_port"`
	AdminToken        string `yaml:"admin_token"`
	RequestsPerMinute int    `yaml:"requests_per_minute"`
}

// DatabaseConfig selects the case store. An empty URL keeps cases in memory.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// HermesConfig points at the NATS server used for lifecycle events. An empty
// URL disables events.
type HermesConfig struct {
	URL             string `yaml:"url"`
	StatsIntervalMs int    `yaml:"stats_interval_ms"`
}

type OptimizerConfig struct {
	MaxCombinations int `yaml:"max_combinations"`
	TimeoutMs       int `yaml:"timeout_ms"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func (c *Config) StatsInterval() time.Duration {
	return time.Duration(c.Hermes.StatsIntervalMs) * time.Millisecond
}

// OptimizeTimeout bounds a single optimizer run. Zero means no limit.
func (c *Config) OptimizeTimeout() time.Duration {
	return time.Duration(c.Optimizer.TimeoutMs) * time.Millisecond
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:              8700,
			MetricsPort:       8701,
			RequestsPerMinute: 120,
		},
		Hermes: HermesConfig{
			StatsIntervalMs: 60000,
		},
		Optimizer: OptimizerConfig{
			MaxCombinations: 60000,
			TimeoutMs:       120000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Optimizer.MaxCombinations <= 0 {
		return fmt.Errorf("optimizer.max_combinations must be positive, got %d", c.Optimizer.MaxCombinations)
	}
	if c.Optimizer.TimeoutMs < 0 {
		return fmt.Errorf("optimizer.timeout_ms must not be negative, got %d", c.Optimizer.TimeoutMs)
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("logging.format must be json or text, got %q", c.Logging.Format)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("TRADEOFF_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("TRADEOFF_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("TRADEOFF_ADMIN_TOKEN"); v != "" {
		cfg.Server.AdminToken = v
	}
	if v := os.Getenv("TRADEOFF_DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("TRADEOFF_HERMES_URL"); v != "" {
		cfg.Hermes.URL = v
	}
	if v := os.Getenv("TRADEOFF_MAX_COMBINATIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Optimizer.MaxCombinations = n
		}
	}
	if v := os.Getenv("TRADEOFF_OPTIMIZE_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Optimizer.TimeoutMs = n
		}
	}
	if v := os.Getenv("TRADEOFF_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("TRADEOFF_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
