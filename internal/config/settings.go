package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables that override file configuration.
const (
	EnvRoot        = "RDMO_ROOT"
	EnvSource      = "RDMO_SOURCE"
	EnvAPIURL      = "RDMO_API_URL"
	EnvAPIKey      = "RDMO_API_KEY"
	EnvDatabaseURL = "RDMO_DATABASE_URL"
	EnvLogMode     = "RDMO_LOG_MODE"
)

// Settings are the effective values after merging, in order of precedence,
// environment variables, the repository config, the global config and
// defaults.
type Settings struct {
	Root           string   `json:"root"`
	Source         string   `json:"source"`
	APIURL         string   `json:"api_url,omitempty"`
	APIKey         string   `json:"-"`
	DatabaseURL    string   `json:"-"`
	ManuscriptRoot string   `json:"manuscript_root,omitempty"`
	ListenAddr     string   `json:"listen_addr"`
	AllowOrigins   []string `json:"allow_origins,omitempty"`
	LogMode        string   `json:"log_mode"`
}

// LoadEnv loads root/.env into the process environment without overriding
// variables that are already set. A missing file is not an error.
func LoadEnv(root string) error {
	path := filepath.Join(root, EnvFile)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", EnvFile, err)
	}
	return nil
}

// Merge computes the effective settings. repo and global may be nil;
// getenv is usually os.Getenv.
func Merge(root string, repo *Config, global *GlobalConfig, getenv func(string) string) Settings {
	if repo == nil {
		repo = &Config{}
	}
	if global == nil {
		global = &GlobalConfig{}
	}

	s := Settings{
		Root:           root,
		Source:         first(getenv(EnvSource), repo.Source, DefaultSource),
		APIURL:         first(getenv(EnvAPIURL), repo.APIURL, global.APIURL),
		APIKey:         first(getenv(EnvAPIKey), global.APIKey),
		DatabaseURL:    first(getenv(EnvDatabaseURL), repo.DatabaseURL, global.DatabaseURL),
		ManuscriptRoot: ExpandPath(repo.ManuscriptRoot),
		ListenAddr:     first(repo.ListenAddr, DefaultListenAddr),
		AllowOrigins:   repo.AllowOrigins,
		LogMode:        first(getenv(EnvLogMode), global.LogMode, "dev"),
	}
	if s.ManuscriptRoot != "" && !filepath.IsAbs(s.ManuscriptRoot) {
		s.ManuscriptRoot = filepath.Join(root, s.ManuscriptRoot)
	}
	return s
}

// LoadSettings loads .env, the repository config and the global config for
// the repository at root and merges them.
func LoadSettings(root string) (Settings, error) {
	if err := LoadEnv(root); err != nil {
		return Settings{}, err
	}
	repo, err := Load(root)
	if err != nil {
		return Settings{}, err
	}
	global, err := LoadGlobalConfig()
	if err != nil {
		return Settings{}, err
	}
	s := Merge(root, repo, global, os.Getenv)
	if err := ValidateSource(s.Source); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func first(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
