package config

import (
	"os"
	"path/filepath"
	"testing"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestMerge_Precedence(t *testing.T) {
	repo := &Config{Source: "postgres", DatabaseURL: "postgres://repo/db", APIURL: "http://repo"}
	global := &GlobalConfig{DatabaseURL: "postgres://global/db", APIURL: "http://global", APIKey: "global-key", LogMode: "prod"}

	tests := []struct {
		name   string
		repo   *Config
		global *GlobalConfig
		env    map[string]string
		check  func(t *testing.T, s Settings)
	}{
		{
			name:  "defaults",
			check: func(t *testing.T, s Settings) {
				if s.Source != DefaultSource || s.ListenAddr != DefaultListenAddr || s.LogMode != "dev" {
					t.Errorf("defaults = %+v", s)
				}
			},
		},
		{
			name:   "repo beats global",
			repo:   repo,
			global: global,
			check: func(t *testing.T, s Settings) {
				if s.DatabaseURL != "postgres://repo/db" || s.APIURL != "http://repo" {
					t.Errorf("settings = %+v", s)
				}
				if s.APIKey != "global-key" || s.LogMode != "prod" {
					t.Errorf("global-only values lost: %+v", s)
				}
			},
		},
		{
			name:   "env beats repo",
			repo:   repo,
			global: global,
			env: map[string]string{
				EnvSource:      "api",
				EnvAPIURL:      "http://env",
				EnvAPIKey:      "env-key",
				EnvDatabaseURL: "postgres://env/db",
				EnvLogMode:     "dev",
			},
			check: func(t *testing.T, s Settings) {
				if s.Source != "api" || s.APIURL != "http://env" || s.APIKey != "env-key" ||
					s.DatabaseURL != "postgres://env/db" || s.LogMode != "dev" {
					t.Errorf("settings = %+v", s)
				}
			},
		},
		{
			name:  "blank env ignored",
			repo:  repo,
			env:   map[string]string{EnvAPIURL: "  "},
			check: func(t *testing.T, s Settings) {
				if s.APIURL != "http://repo" {
					t.Errorf("APIURL = %q", s.APIURL)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, Merge("/repo", tt.repo, tt.global, envMap(tt.env)))
		})
	}
}

func TestMerge_RelativeManuscriptRoot(t *testing.T) {
	s := Merge("/repo", &Config{ManuscriptRoot: "manuscripts"}, nil, envMap(nil))
	if s.ManuscriptRoot != "/repo/manuscripts" {
		t.Errorf("ManuscriptRoot = %q, want /repo/manuscripts", s.ManuscriptRoot)
	}

	s = Merge("/repo", &Config{ManuscriptRoot: "/data/pdfs"}, nil, envMap(nil))
	if s.ManuscriptRoot != "/data/pdfs" {
		t.Errorf("ManuscriptRoot = %q, want /data/pdfs", s.ManuscriptRoot)
	}
}

func TestLoadSettings_DotEnv(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	root := t.TempDir()
	if err := os.Mkdir(RdmoPath(root), 0755); err != nil {
		t.Fatal(err)
	}
	if err := Default().Save(root); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, EnvFile), []byte("RDMO_API_URL=http://from-dotenv\n"), 0644); err != nil {
		t.Fatal(err)
	}
	// Registered with t.Setenv so the value loaded from .env is cleared afterwards.
	t.Setenv(EnvAPIURL, "")
	os.Unsetenv(EnvAPIURL)

	s, err := LoadSettings(root)
	if err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}
	if s.APIURL != "http://from-dotenv" {
		t.Errorf("APIURL = %q, want value from .env", s.APIURL)
	}
	if s.Source != DefaultSource {
		t.Errorf("Source = %q, want %q", s.Source, DefaultSource)
	}
}

func TestLoadSettings_InvalidSource(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(EnvSource, "mysql")

	root := t.TempDir()
	if err := os.Mkdir(RdmoPath(root), 0755); err != nil {
		t.Fatal(err)
	}
	if err := Default().Save(root); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadSettings(root); err == nil {
		t.Error("LoadSettings() should reject unknown source")
	}
}
