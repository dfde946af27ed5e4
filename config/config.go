// Package config loads the labtriage service configuration.
// Precedence: defaults -> YAML file -> environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete service configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Local  LocalConfig  `yaml:"local"`
	Log    LogConfig    `yaml:"log"`
}

// ServerConfig holds the HTTP surface settings.
type ServerConfig struct {
	HTTPPort        int           `yaml:"http_port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LocalConfig identifies the local inference endpoint. These are deployment
// facts; the code never hardcodes them.
type LocalConfig struct {
	BaseURL     string        `yaml:"base_url"`
	Model       string        `yaml:"model"`
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature float32       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	JSON  bool   `yaml:"json"`
}

// Default returns the built-in configuration. The base URL and model match a
// stock Foundry Local install and are expected to be overridden per machine.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    5 * time.Minute,
			ShutdownTimeout: 10 * time.Second,
		},
		Local: LocalConfig{
			BaseURL:     "http://127.0.0.1:52403",
			Model:       "Phi-4-mini-instruct-cuda-gpu:5",
			MaxTokens:   256,
			Temperature: 0.2,
			Timeout:     120 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
			JSON:  false,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file, and
// LABTRIAGE_* environment variables, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides configuration values from the environment.
func applyEnv(cfg *Config) {
	if v := os.Getenv("LABTRIAGE_HTTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.HTTPPort = port
		}
	}
	if v := os.Getenv("LABTRIAGE_LOCAL_BASE_URL"); v != "" {
		cfg.Local.BaseURL = v
	}
	if v := os.Getenv("LABTRIAGE_LOCAL_MODEL"); v != "" {
		cfg.Local.Model = v
	}
	if v := os.Getenv("LABTRIAGE_LOCAL_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Local.Timeout = d
		}
	}
	if v := os.Getenv("LABTRIAGE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

// Validate rejects configurations the service cannot run with.
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid http_port %d", c.Server.HTTPPort)
	}
	if c.Local.BaseURL == "" {
		return fmt.Errorf("local.base_url is required")
	}
	if c.Local.Model == "" {
		return fmt.Errorf("local.model is required")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	return nil
}
