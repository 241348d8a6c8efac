// Package config manages aiedit configuration and the .aiedit directory
// structure. It handles loading, saving, and initializing the workspace
// configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

const (
	AieditDir    = ".aiedit"
	ConfigFile   = "config"
	MetaFile     = "meta.db"
	BlobsFile    = "blobs.db"
	BlobsDir     = "blobs"
	APIKeyEnvVar = "GEMINI_API_KEY"
)

// Storage backends for the blob store.
const (
	StorageSQLite = "sqlite"
	StorageFS     = "fs"
)

// Config represents the aiedit workspace configuration
type Config struct {
	// Storage selects the blob store backend: "sqlite" or "fs".
	Storage string `toml:"storage"`

	// DebounceMS is the autosave quiet period in milliseconds.
	DebounceMS int `toml:"debounce_ms"`

	// APIKeyEnv names the environment variable holding the Gemini API
	// key. The key itself is never written to disk.
	APIKeyEnv string `toml:"api_key_env"`

	// Model overrides; empty means the built-in default.
	EditModel  string `toml:"edit_model,omitempty"`
	ImageModel string `toml:"image_model,omitempty"`
	VideoModel string `toml:"video_model,omitempty"`

	path string // path to .aiedit directory
}

// FindRoot finds the .aiedit directory by walking up from the current
// directory.
func FindRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		aieditPath := filepath.Join(dir, AieditDir)
		if info, err := os.Stat(aieditPath); err == nil && info.IsDir() {
			return aieditPath, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not an aiedit workspace (or any parent up to root)")
		}
		dir = parent
	}
}

// Load loads the configuration from the .aiedit directory
func Load() (*Config, error) {
	aieditPath, err := FindRoot()
	if err != nil {
		return nil, err
	}
	return LoadFrom(aieditPath)
}

// LoadFrom loads the configuration from a specific .aiedit directory.
func LoadFrom(aieditPath string) (*Config, error) {
	configPath := filepath.Join(aieditPath, ConfigFile)
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.path = aieditPath
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Storage == "" {
		c.Storage = StorageSQLite
	}
	if c.DebounceMS <= 0 {
		c.DebounceMS = 1000
	}
	if c.APIKeyEnv == "" {
		c.APIKeyEnv = APIKeyEnvVar
	}
}

// Save saves the configuration to disk
func (c *Config) Save() error {
	configPath := filepath.Join(c.path, ConfigFile)
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(configPath, data, 0644)
}

// Path returns the path to the .aiedit directory
func (c *Config) Path() string {
	return c.path
}

// MetaPath returns the path to the bbolt metadata database
func (c *Config) MetaPath() string {
	return filepath.Join(c.path, MetaFile)
}

// BlobsPath returns the path to the sqlite blob database
func (c *Config) BlobsPath() string {
	return filepath.Join(c.path, BlobsFile)
}

// BlobsDirPath returns the path to the filesystem blob directory
func (c *Config) BlobsDirPath() string {
	return filepath.Join(c.path, BlobsDir)
}

// APIKey reads the Gemini API key from the configured environment variable.
func (c *Config) APIKey() string {
	return os.Getenv(c.APIKeyEnv)
}

// Initialize creates a new .aiedit directory with initial configuration
func Initialize(storage string) (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	if storage == "" {
		storage = StorageSQLite
	}
	if storage != StorageSQLite && storage != StorageFS {
		return nil, fmt.Errorf("unknown storage backend %q", storage)
	}

	aieditPath := filepath.Join(cwd, AieditDir)

	// Check if already initialized
	if _, err := os.Stat(aieditPath); err == nil {
		return nil, fmt.Errorf("aiedit workspace already exists")
	}

	// Create directories
	if err := os.MkdirAll(aieditPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create .aiedit directory: %w", err)
	}

	if storage == StorageFS {
		if err := os.MkdirAll(filepath.Join(aieditPath, BlobsDir), 0755); err != nil {
			os.RemoveAll(aieditPath)
			return nil, fmt.Errorf("failed to create blobs directory: %w", err)
		}
	}

	cfg := &Config{
		Storage: storage,
		path:    aieditPath,
	}
	cfg.applyDefaults()

	if err := cfg.Save(); err != nil {
		// Cleanup on failure
		os.RemoveAll(aieditPath)
		return nil, err
	}

	return cfg, nil
}
