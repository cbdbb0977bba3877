package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/tip-aru/rdmo/internal/source"
)

func TestPathFunctions(t *testing.T) {
	root := "/test/repo"

	tests := []struct {
		name string
		fn   func(string) string
		want string
	}{
		{"RdmoPath", RdmoPath, "/test/repo/.rdmo"},
		{"ConfigPath", ConfigPath, "/test/repo/.rdmo/config.json"},
		{"RecordsPath", RecordsPath, "/test/repo/.rdmo/records"},
		{"CachePath", CachePath, "/test/repo/.rdmo/cache"},
		{"DBPath", DBPath, "/test/repo/.rdmo/cache/records.db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.fn(root)
			if got != tt.want {
				t.Errorf("%s(%q) = %q, want %q", tt.name, root, got, tt.want)
			}
		})
	}
}

func TestIsRepository(t *testing.T) {
	tmpDir := t.TempDir()

	if IsRepository(tmpDir) {
		t.Error("IsRepository() = true for non-repo directory")
	}

	if err := os.Mkdir(filepath.Join(tmpDir, RdmoDir), 0755); err != nil {
		t.Fatalf("Failed to create .rdmo: %v", err)
	}

	if !IsRepository(tmpDir) {
		t.Error("IsRepository() = false for repo directory")
	}
}

func TestIsRepository_FileNotDir(t *testing.T) {
	tmpDir := t.TempDir()

	if err := os.WriteFile(filepath.Join(tmpDir, RdmoDir), []byte("not a dir"), 0644); err != nil {
		t.Fatalf("Failed to create .rdmo file: %v", err)
	}

	if IsRepository(tmpDir) {
		t.Error("IsRepository() = true when .rdmo is a file")
	}
}

func TestFindRepository(t *testing.T) {
	tmpDir := t.TempDir()
	repoDir := filepath.Join(tmpDir, "repo")
	nestedDir := filepath.Join(repoDir, "exports", "2024")

	if err := os.MkdirAll(nestedDir, 0755); err != nil {
		t.Fatalf("Failed to create nested dirs: %v", err)
	}
	if err := os.Mkdir(filepath.Join(repoDir, RdmoDir), 0755); err != nil {
		t.Fatalf("Failed to create .rdmo: %v", err)
	}

	found, err := FindRepository(nestedDir)
	if err != nil {
		t.Fatalf("FindRepository() error = %v", err)
	}
	if found != repoDir {
		t.Errorf("FindRepository() = %q, want %q", found, repoDir)
	}
}

func TestFindRepository_NotFound(t *testing.T) {
	_, err := FindRepository(t.TempDir())
	if !errors.Is(err, ErrNotRepository) {
		t.Errorf("FindRepository() error = %v, want ErrNotRepository", err)
	}
}

func TestConfig_SaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.Mkdir(filepath.Join(tmpDir, RdmoDir), 0755); err != nil {
		t.Fatalf("Failed to create .rdmo: %v", err)
	}

	cfg := &Config{
		Source:         source.KindPostgres,
		DatabaseURL:    "postgres://localhost/dept_author_db",
		ManuscriptRoot: "manuscripts",
		ListenAddr:     ":9000",
		AllowOrigins:   []string{"http://localhost:8050"},
	}
	if err := cfg.Save(tmpDir); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.Mkdir(filepath.Join(tmpDir, RdmoDir), 0755); err != nil {
		t.Fatalf("Failed to create .rdmo: %v", err)
	}
	if err := os.WriteFile(ConfigPath(tmpDir), []byte("not json"), 0644); err != nil {
		t.Fatalf("Failed to write invalid config: %v", err)
	}

	if _, err := Load(tmpDir); err == nil {
		t.Error("Load() should return error for invalid JSON")
	}
}

func TestValidateSource(t *testing.T) {
	tests := []struct {
		kind    string
		wantErr bool
	}{
		{"", false},
		{"sqlite", false},
		{"postgres", false},
		{"jsonl", false},
		{"api", false},
		{"mysql", true},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			err := ValidateSource(tt.kind)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSource(%q) error = %v, wantErr = %v", tt.kind, err, tt.wantErr)
			}
		})
	}
}

func TestValidateManuscriptRoot(t *testing.T) {
	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "file.txt")
	if err := os.WriteFile(tmpFile, []byte("test"), 0644); err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"empty path", "", false},
		{"valid directory", tmpDir, false},
		{"non-existent path", "/nonexistent/path", true},
		{"file not directory", tmpFile, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateManuscriptRoot(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateManuscriptRoot(%q) error = %v, wantErr = %v", tt.path, err, tt.wantErr)
			}
		})
	}
}
