package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Feed     FeedConfig     `yaml:"feed"`
	Server   ServerConfig   `yaml:"server"`
}

// DatabaseConfig configures SQLite storage.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or console

	// File, when set, also writes the log to a size-rotated file.
	File       string `yaml:"file"`
	MaxSize    int    `yaml:"max_size"` // megabytes
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"` // days
	Compress   bool   `yaml:"compress"`
}

// ScheduleConfig configures the background refresh.
type ScheduleConfig struct {
	RefreshInterval string `yaml:"refresh_interval"`
}

// ParseRefreshInterval returns the refresh interval as time.Duration.
func (s ScheduleConfig) ParseRefreshInterval() time.Duration {
	d, err := time.ParseDuration(s.RefreshInterval)
	if err != nil || d <= 0 {
		return time.Hour
	}
	return d
}

// FeedConfig configures fetching of channel and playlist feeds.
type FeedConfig struct {
	ServiceID   int    `yaml:"service_id"`
	UserAgent   string `yaml:"user_agent"`
	Timeout     string `yaml:"timeout"`
	Retries     int    `yaml:"retries"`     // attempts per feed request
	Concurrency int    `yaml:"concurrency"` // feeds fetched in parallel during a refresh
}

// ParseTimeout returns the HTTP timeout for feed requests.
func (f FeedConfig) ParseTimeout() time.Duration {
	d, err := time.ParseDuration(f.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Path: "./mediavault.db"},
		Log: LogConfig{
			Level:      "info",
			Format:     "console",
			MaxSize:    50,
			MaxBackups: 3,
			MaxAge:     28,
		},
		Schedule: ScheduleConfig{RefreshInterval: "1h"},
		Feed: FeedConfig{
			ServiceID:   0,
			UserAgent:   "mediavault/1.0",
			Timeout:     "30s",
			Retries:     3,
			Concurrency: 4,
		},
		Server: ServerConfig{Port: 8080},
	}
}

// Load reads configuration from a YAML file and applies env var overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides overrides config values with environment variables.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MEDIAVAULT_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("MEDIAVAULT_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("MEDIAVAULT_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
	if v := os.Getenv("MEDIAVAULT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
}
