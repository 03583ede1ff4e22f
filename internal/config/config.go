// Package config loads the service configuration from config/study_layer.yaml
// with environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joeshaw/envdecode"
	"gopkg.in/yaml.v3"

	"github.com/berea-labs/study_layer/internal/logging"
)

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host            string   `yaml:"host" env:"SERVER_HOST"`
	Port            int      `yaml:"port" env:"SERVER_PORT"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
	ShutdownTimeout int      `yaml:"shutdown_timeout_seconds" env:"SERVER_SHUTDOWN_TIMEOUT"`
}

// DatabaseConfig configures the document store backing studies and notes.
// Driver "memory" selects the in-memory store for development and tests.
type DatabaseConfig struct {
	Driver          string `yaml:"driver" env:"DATABASE_DRIVER"`
	DSN             string `yaml:"dsn" env:"DATABASE_DSN"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime_seconds"`
}

// RedisConfig configures the usage-counter backend. When Addr is empty the
// counter falls back to the primary database.
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB"`
}

// SearchConfig configures the full-text content index.
type SearchConfig struct {
	Endpoint string `yaml:"endpoint" env:"SEARCH_ENDPOINT"`
	Index    string `yaml:"index" env:"SEARCH_INDEX"`
	APIKey   string `yaml:"api_key" env:"SEARCH_API_KEY"`
}

// ModelConfig configures the generative model provider.
type ModelConfig struct {
	Provider string `yaml:"provider" env:"MODEL_PROVIDER"`
	Model    string `yaml:"model" env:"MODEL_NAME"`
	APIKey   string `yaml:"api_key" env:"MODEL_API_KEY"`
}

// PurchasesConfig configures the purchase/subscription provider.
type PurchasesConfig struct {
	BaseURL string `yaml:"base_url" env:"PURCHASES_BASE_URL"`
	APIKey  string `yaml:"api_key" env:"PURCHASES_API_KEY"`
}

// LimitsConfig bounds collaborator calls and inbound request rates.
type LimitsConfig struct {
	ModelTimeoutSeconds   int `yaml:"model_timeout_seconds" env:"MODEL_TIMEOUT"`
	StorageTimeoutSeconds int `yaml:"storage_timeout_seconds" env:"STORAGE_TIMEOUT"`
	RequestsPerSecond     int `yaml:"requests_per_second" env:"RATE_LIMIT_RPS"`
	Burst                 int `yaml:"burst" env:"RATE_LIMIT_BURST"`
}

// Config is the root configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Search    SearchConfig    `yaml:"search"`
	Model     ModelConfig     `yaml:"model"`
	Purchases PurchasesConfig `yaml:"purchases"`
	Logging   logging.Config  `yaml:"logging"`
	Limits    LimitsConfig    `yaml:"limits"`
}

// ModelTimeout returns the model-call deadline.
func (c *Config) ModelTimeout() time.Duration {
	return time.Duration(c.Limits.ModelTimeoutSeconds) * time.Second
}

// StorageTimeout returns the storage/search/purchase-call deadline.
func (c *Config) StorageTimeout() time.Duration {
	return time.Duration(c.Limits.StorageTimeoutSeconds) * time.Second
}

// Load reads configuration from the default path.
func Load() (*Config, error) {
	return LoadFromPath(filepath.Join("config", "study_layer.yaml"))
}

// LoadFromPath reads configuration from a specific yaml file, then applies
// environment overrides.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads the default config file, falling back to defaults plus
// environment overrides when the file is absent.
func LoadOrDefault() (*Config, error) {
	cfg, err := Load()
	if err == nil {
		return cfg, nil
	}
	cfg = Default()
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if err := envdecode.Decode(cfg); err != nil && err != envdecode.ErrNoTargetFieldsAreSet {
		return fmt.Errorf("apply env overrides: %w", err)
	}
	return nil
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server port is required")
	}
	if c.Database.Driver != "memory" && c.Database.DSN == "" {
		return fmt.Errorf("database dsn is required for driver %q", c.Database.Driver)
	}
	return nil
}

// Default returns the baseline configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			AllowedOrigins:  []string{"*"},
			ShutdownTimeout: 10,
		},
		Database: DatabaseConfig{
			Driver: "memory",
		},
		Search: SearchConfig{
			Index: "biblical-content",
		},
		Model: ModelConfig{
			Provider: "gemini",
			Model:    "gemini-2.0-flash",
		},
		Logging: logging.Config{
			Level:  "info",
			Format: "json",
		},
		Limits: LimitsConfig{
			ModelTimeoutSeconds:   30,
			StorageTimeoutSeconds: 5,
			RequestsPerSecond:     10,
			Burst:                 20,
		},
	}
}
