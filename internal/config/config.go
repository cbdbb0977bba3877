// Package config handles repository configuration.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tip-aru/rdmo/internal/source"
)

// Config represents repository configuration stored in .rdmo/config.json.
type Config struct {
	Source         string   `json:"source"`                    // sqlite, postgres, jsonl or api
	APIURL         string   `json:"api_url,omitempty"`         // Record API base URL
	DatabaseURL    string   `json:"database_url,omitempty"`    // PostgreSQL DSN
	ManuscriptRoot string   `json:"manuscript_root,omitempty"` // Folder holding full manuscripts
	ListenAddr     string   `json:"listen_addr,omitempty"`     // Address for rdmo serve
	AllowOrigins   []string `json:"allow_origins,omitempty"`   // CORS origins for rdmo serve
}

const (
	RdmoDir    = ".rdmo"
	ConfigFile = "config.json"
	RecordsDir = "records"
	CacheDir   = "cache"
	DBFile     = "records.db"
	EnvFile    = ".env"
)

// Defaults.
const (
	DefaultSource     = source.KindSQLite
	DefaultListenAddr = "127.0.0.1:8050"
)

// ErrNotRepository is returned when no .rdmo directory is found.
var ErrNotRepository = errors.New("not in an rdmo repository (no .rdmo directory found)")

// Default returns the configuration written by rdmo init.
func Default() *Config {
	return &Config{Source: DefaultSource, ListenAddr: DefaultListenAddr}
}

// RdmoPath returns the path to the .rdmo directory from a root path.
func RdmoPath(root string) string {
	return filepath.Join(root, RdmoDir)
}

// ConfigPath returns the path to config.json from a root path.
func ConfigPath(root string) string {
	return filepath.Join(root, RdmoDir, ConfigFile)
}

// RecordsPath returns the path to the JSONL records directory from a root path.
func RecordsPath(root string) string {
	return filepath.Join(root, RdmoDir, RecordsDir)
}

// CachePath returns the path to the cache directory from a root path.
func CachePath(root string) string {
	return filepath.Join(root, RdmoDir, CacheDir)
}

// DBPath returns the path to records.db from a root path.
func DBPath(root string) string {
	return filepath.Join(root, RdmoDir, CacheDir, DBFile)
}

// IsRepository checks if the given path contains an rdmo repository.
func IsRepository(root string) bool {
	info, err := os.Stat(RdmoPath(root))
	return err == nil && info.IsDir()
}

// FindRepository walks up from the given path to find an rdmo repository.
// Returns the repository root path or ErrNotRepository.
func FindRepository(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	for {
		if IsRepository(abs) {
			return abs, nil
		}

		parent := filepath.Dir(abs)
		if parent == abs {
			return "", ErrNotRepository
		}
		abs = parent
	}
}

// Load reads configuration from the repository at the given root.
func Load(root string) (*Config, error) {
	data, err := os.ReadFile(ConfigPath(root))
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return &cfg, nil
}

// Save writes configuration to the repository at the given root.
func (c *Config) Save(root string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(ConfigPath(root), data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// ValidateSource checks that the source kind is supported.
func ValidateSource(kind string) error {
	if kind == "" {
		return nil // Empty defaults to sqlite
	}
	return source.ValidateKind(kind)
}

// ValidateManuscriptRoot checks that the manuscript root exists and is a directory.
func ValidateManuscriptRoot(path string) error {
	if path == "" {
		return nil // Empty is allowed (not yet configured)
	}

	expandedPath := ExpandPath(path)

	info, err := os.Stat(expandedPath)
	if err != nil {
		return fmt.Errorf("path does not exist: %s", expandedPath)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", expandedPath)
	}

	return nil
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, path[1:])
}
