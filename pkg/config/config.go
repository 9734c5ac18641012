/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ssargent/gridstore/pkg/storage"
	"github.com/ssargent/gridstore/pkg/store"
	"gopkg.in/yaml.v3"
)

// Storage backends
const (
	BackendLog    = "log"
	BackendPebble = "pebble"
)

// Compression settings for array payloads
const (
	CompressionNone = "none"
	CompressionZstd = "zstd"
)

// Config represents the gridstore configuration
type Config struct {
	Storage Storage `yaml:"storage"`
	Logging Logging `yaml:"logging"`
	Server  Server  `yaml:"server"`
}

// Storage controls how case files are opened
type Storage struct {
	Backend             string        `yaml:"backend"`
	FsyncInterval       time.Duration `yaml:"fsync_interval"`
	Compression         string        `yaml:"compression"`
	CompressionMinBytes int           `yaml:"compression_min_bytes"`
	LockTimeout         time.Duration `yaml:"lock_timeout"`
}

// Logging contains logging configuration
type Logging struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Server configures the read-only viewer API
type Server struct {
	Port   int    `yaml:"port"`
	Bind   string `yaml:"bind"`
	APIKey string `yaml:"api_key,omitempty"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Storage: Storage{
			Backend:             BackendLog,
			FsyncInterval:       0,
			Compression:         CompressionNone,
			CompressionMinBytes: 4096,
			LockTimeout:         2 * time.Second,
		},
		Logging: Logging{
			Level: "info",
		},
		Server: Server{
			Port: 8080,
			Bind: "127.0.0.1",
		},
	}
}

// Validate checks values a typo could break
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendLog, BackendPebble:
	default:
		return fmt.Errorf("unknown storage backend %q (want %s or %s)", c.Storage.Backend, BackendLog, BackendPebble)
	}
	switch c.Storage.Compression {
	case CompressionNone, CompressionZstd:
	default:
		return fmt.Errorf("unknown compression %q (want %s or %s)", c.Storage.Compression, CompressionNone, CompressionZstd)
	}
	if c.Storage.FsyncInterval < 0 || c.Storage.LockTimeout < 0 {
		return fmt.Errorf("storage durations must not be negative")
	}
	if c.Storage.CompressionMinBytes < 0 {
		return fmt.Errorf("compression_min_bytes must not be negative")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "warning", "error", "fatal":
	default:
		return fmt.Errorf("unknown log level %q", c.Logging.Level)
	}
	return nil
}

// StoreOptions translates the storage section into container options
func (c *Config) StoreOptions() store.Options {
	opts := store.Options{
		Backend:       store.OpenLogBackend,
		FsyncInterval: c.Storage.FsyncInterval,
		LockTimeout:   c.Storage.LockTimeout,
	}
	if c.Storage.Backend == BackendPebble {
		opts.Backend = storage.OpenPebble
	}
	if c.Storage.Compression == CompressionZstd {
		opts.CompressMin = c.Storage.CompressionMinBytes
		if opts.CompressMin == 0 {
			opts.CompressMin = 1
		}
	}
	return opts
}

// LoadConfig loads configuration from the specified path. Keys missing from
// the file keep their defaults.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		configPath = absPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}

	return config, nil
}

// SaveConfig saves the configuration to the specified path
func SaveConfig(config *Config, configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./gridstore.yaml"
	}

	// ~/.config/gridstore/config.yaml
	configDir := filepath.Join(homeDir, ".config", "gridstore")
	return filepath.Join(configDir, "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}
