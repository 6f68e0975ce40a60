package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Makepad-fr/tada/internal/store"
)

// Storage backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
	BackendNone   = "none"
)

// ErrUnknownBackend is returned by Validate for a backend name we do not know.
var ErrUnknownBackend = errors.New("unknown storage backend")

// Config holds all tada configuration.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`

	// Theme for non-interactive output: classic, neon or mono.
	Theme string `yaml:"theme"`

	// Group lists pending and done items separately.
	Group bool `yaml:"group"`
}

// StorageConfig selects where the todo state is persisted.
type StorageConfig struct {
	Backend string `yaml:"backend"` // file, sqlite, memory, none
	Path    string `yaml:"path"`    // file or database path; empty means the backend default
	Key     string `yaml:"key"`     // key the state is stored under
}

// LogConfig configures diagnostics.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console, json
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Storage: StorageConfig{
			Backend: BackendFile,
			Key:     store.DefaultKey,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
		Theme: "classic",
	}
}

// Load resolves configuration: defaults, then the YAML file at path (if path
// is non-empty), then TADA_* environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv("TADA_CONFIG")
	}
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}
	cfg.applyEnv()
	return cfg, cfg.Validate()
}

func (c *Config) mergeFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Storage.Backend = strings.ToLower(getEnv("TADA_STORAGE", c.Storage.Backend))
	c.Storage.Path = getEnv("TADA_DATA", c.Storage.Path)
	c.Storage.Key = getEnv("TADA_KEY", c.Storage.Key)
	c.Log.Level = getEnv("TADA_LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("TADA_LOG_FORMAT", c.Log.Format)
	c.Theme = getEnv("TADA_THEME", c.Theme)
}

// Validate checks the fields that have a closed set of values.
func (c Config) Validate() error {
	switch c.Storage.Backend {
	case BackendFile, BackendSQLite, BackendMemory, BackendNone:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Storage.Backend)
	}
	if strings.TrimSpace(c.Storage.Key) == "" {
		return errors.New("storage key must not be empty")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
