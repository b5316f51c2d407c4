package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// MaxFileSizeBytes is the client-enforced upload cap (512 MiB). Files larger
// than this are rejected locally before any network call is attempted.
const MaxFileSizeBytes int64 = 536870912

// AppConfig holds application configuration
type AppConfig struct {
	Endpoint         string `json:"endpoint"`
	UserAgent        string `json:"user_agent"`
	MaxFileSize      int64  `json:"max_file_size"`
	DatabasePath     string `json:"database_path"`
	CacheDir         string `json:"cache_dir"`
	DefaultRetention int    `json:"default_retention"` // hours, 0 = host default
	DefaultSecret    bool   `json:"default_secret"`
}

// DefaultConfig returns default application configuration
func DefaultConfig() *AppConfig {
	dataDir := defaultDataDir()
	return &AppConfig{
		Endpoint:         "https://0x0.st/",
		UserAgent:        "x0x0/0.1.0 (github.com/x0x0-app)",
		MaxFileSize:      MaxFileSizeBytes,
		DatabasePath:     filepath.Join(dataDir, "x0x0.db"),
		CacheDir:         filepath.Join(dataDir, "cache"),
		DefaultRetention: 0,
		DefaultSecret:    false,
	}
}

// Validate checks that the configuration is usable
func (c *AppConfig) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("endpoint cannot be empty")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("max file size must be positive")
	}
	if c.MaxFileSize > MaxFileSizeBytes {
		return fmt.Errorf("max file size cannot exceed %d bytes", MaxFileSizeBytes)
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database path cannot be empty")
	}
	if c.CacheDir == "" {
		return fmt.Errorf("cache directory cannot be empty")
	}
	if c.DefaultRetention < 0 {
		return fmt.Errorf("default retention cannot be negative")
	}
	return nil
}

// defaultDataDir picks a per-user data directory, falling back to the working
// directory when the home directory cannot be resolved
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".x0x0"
	}
	return filepath.Join(home, ".x0x0")
}
