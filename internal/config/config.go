package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Hermes   HermesConfig   `yaml:"hermes"`
	Seasons  SeasonsConfig  `yaml:"seasons"`
	Engine   EngineConfig   `yaml:"engine"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Port        int    `yaml:"port"`
	MetricsPort int    `yaml:"metrics_port"`
	AdminToken  string `yaml:"admin_token"`
}

type DatabaseConfig struct {
	URL                string `yaml:"url"`
	RecordCalculations bool   `yaml:"record_calculations"`
}

type HermesConfig struct {
	URL string `yaml:"url"`
}

type SeasonsConfig struct {
	Dir            string `yaml:"dir"`
	DefaultTZHours int    `yaml:"default_tz_hours"`
}

type EngineConfig struct {
	MaxBatchSize     int `yaml:"max_batch_size"`
	RequestTimeoutMs int `yaml:"request_timeout_ms"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Engine.RequestTimeoutMs) * time.Millisecond
}

// SlogLevel maps the configured level name, defaulting to info.
func (c LoggingConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:        8700,
			MetricsPort: 8701,
		},
		Hermes: HermesConfig{
			URL: "nats://localhost:4222",
		},
		Seasons: SeasonsConfig{
			Dir:            "resource/config",
			DefaultTZHours: 8,
		},
		Engine: EngineConfig{
			MaxBatchSize:     5000,
			RequestTimeoutMs: 30000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// A .env file in the working directory is optional.
	_ = godotenv.Load()
	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Seasons.DefaultTZHours < -12 || c.Seasons.DefaultTZHours > 14 {
		return fmt.Errorf("seasons.default_tz_hours out of range: %d", c.Seasons.DefaultTZHours)
	}
	if c.Engine.MaxBatchSize <= 0 {
		return fmt.Errorf("engine.max_batch_size must be positive, got %d", c.Engine.MaxBatchSize)
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("logging.format must be json or text, got %q", c.Logging.Format)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("POW2_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("POW2_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("POW2_ADMIN_TOKEN"); v != "" {
		cfg.Server.AdminToken = v
	}
	if v := os.Getenv("POW2_DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("POW2_RECORD_CALCULATIONS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Database.RecordCalculations = b
		}
	}
	if v := os.Getenv("POW2_HERMES_URL"); v != "" {
		cfg.Hermes.URL = v
	}
	if v := os.Getenv("POW2_SEASONS_DIR"); v != "" {
		cfg.Seasons.Dir = v
	}
	if v := os.Getenv("POW2_DEFAULT_TZ_HOURS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Seasons.DefaultTZHours = n
		}
	}
	if v := os.Getenv("POW2_MAX_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Engine.MaxBatchSize = n
		}
	}
	if v := os.Getenv("POW2_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("POW2_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
