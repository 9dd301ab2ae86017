package server

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Storage backends
const (
	StorageMemory = "memory"
	StorageFile   = "file"
)

// Config holds the configuration for the HTTP server
type Config struct {
	Port           int           `yaml:"port" env:"PORT" env-default:"8080" env-description:"HTTP server port"`
	StorageBackend string        `yaml:"storage_backend" env:"STORAGE_BACKEND" env-default:"memory" env-description:"Message store: memory or file"`
	StoragePath    string        `yaml:"storage_path" env:"STORAGE_PATH" env-default:"./storage" env-description:"Storage directory path for the file backend"`
	MessageTTL     time.Duration `yaml:"message_ttl" env:"MESSAGE_TTL" env-default:"720h" env-description:"Retention for stored records (e.g., 720h)"`
	LogDebug       bool          `yaml:"debug" env:"DEBUG" env-default:"false" env-description:"Enable debug logging"`
	SearchEnabled  bool          `yaml:"search_enabled" env:"SEARCH_ENABLED" env-default:"true" env-description:"Index redacted messages for search"`
	ScanRoot       string        `yaml:"scan_root" env:"SCAN_ROOT" env-default:"" env-description:"Directory scan_document may read files from; empty disables path scans over MCP"`
}

// LoadConfig loads configuration from a YAML file when path is set, otherwise
// from environment variables
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Validate checks field values that cleanenv cannot
func (c Config) Validate() error {
	if c.StorageBackend != StorageMemory && c.StorageBackend != StorageFile {
		return fmt.Errorf("invalid storage backend %q: must be %q or %q", c.StorageBackend, StorageMemory, StorageFile)
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.MessageTTL < 0 {
		return fmt.Errorf("invalid message TTL %s", c.MessageTTL)
	}
	return nil
}

// Usage describes the environment variables understood by Config
func Usage() string {
	var cfg Config
	text, err := cleanenv.GetDescription(&cfg, nil)
	if err != nil {
		return ""
	}
	return text
}

// WithPort sets the server port
func (c Config) WithPort(port int) Config {
	c.Port = port
	return c
}

// WithStorageBackend sets the message store backend
func (c Config) WithStorageBackend(backend string) Config {
	c.StorageBackend = backend
	return c
}

// WithStoragePath sets the storage path
func (c Config) WithStoragePath(path string) Config {
	c.StoragePath = path
	return c
}

// WithMessageTTL sets the record retention
func (c Config) WithMessageTTL(ttl time.Duration) Config {
	c.MessageTTL = ttl
	return c
}

// WithLogDebug enables or disables debug logging
func (c Config) WithLogDebug(debug bool) Config {
	c.LogDebug = debug
	return c
}

// WithSearchEnabled enables or disables message search
func (c Config) WithSearchEnabled(enabled bool) Config {
	c.SearchEnabled = enabled
	return c
}

// WithScanRoot sets the directory document scans are confined to
func (c Config) WithScanRoot(root string) Config {
	c.ScanRoot = root
	return c
}
