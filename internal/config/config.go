// Package config loads estimator settings from defaults, an optional YAML
// file and ESTIMATOR_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Addr        string        `yaml:"addr"`
	SessionTTL  time.Duration `yaml:"session_ttl"`
	MetricsPath string        `yaml:"metrics_path"`
}

type Config struct {
	DBPath    string       `yaml:"db_path"`
	LogLevel  string       `yaml:"log_level"`
	LogFormat string       `yaml:"log_format"`
	Currency  string       `yaml:"currency"`
	Server    ServerConfig `yaml:"server"`
}

// DefaultConfig stores the database under ~/.estimator and serves on
// localhost only.
func DefaultConfig() Config {
	return Config{
		DBPath:    defaultDBPath(),
		LogLevel:  "warn",
		LogFormat: "text",
		Currency:  "$",
		Server: ServerConfig{
			Addr:        "127.0.0.1:8080",
			SessionTTL:  30 * time.Minute,
			MetricsPath: "/metrics",
		},
	}
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "estimator.db"
	}
	return filepath.Join(home, ".estimator", "estimator.db")
}

// DefaultPath is $ESTIMATOR_CONFIG, or ~/.estimator/config.yaml.
func DefaultPath() string {
	if v := os.Getenv("ESTIMATOR_CONFIG"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".estimator", "config.yaml")
}

// Load reads the YAML file at path over the defaults and then applies
// environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("reading config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parsing config %s: %w", path, err)
			}
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("ESTIMATOR_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("ESTIMATOR_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("ESTIMATOR_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("ESTIMATOR_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("ESTIMATOR_SESSION_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			cfg.Server.SessionTTL = d
		}
	}
}

// Validate rejects settings the logger or server cannot start with.
func (c Config) Validate() error {
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("log format %q: want text or json", c.LogFormat)
	}
	if c.DBPath == "" {
		return errors.New("db path is empty")
	}
	if c.Server.SessionTTL < 0 {
		return fmt.Errorf("session ttl %s is negative", c.Server.SessionTTL)
	}
	return nil
}

// Save writes c as YAML, creating the parent directory.
func Save(path string, c Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// NewLogger builds the process logger described by c.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelWarn
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("log level %q: want debug, info, warn or error", s)
}
