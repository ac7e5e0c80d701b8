package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
debug: true
server:
  host: 0.0.0.0
  port: 9000
storage:
  database_path: /tmp/songs.db
search:
  default_limit: 20
  cache_enabled: true
auth:
  tokens:
    - token: secret-token
      user_id: alice
library:
  directories:
    - /tmp/songs
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Debug {
		t.Error("Debug = false")
	}
	if cfg.Server.Host != "0.0.0.0" || cfg.Server.Port != 9000 {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Storage.DatabasePath != "/tmp/songs.db" {
		t.Errorf("DatabasePath = %q", cfg.Storage.DatabasePath)
	}
	if cfg.Search.DefaultLimit != 20 {
		t.Errorf("DefaultLimit = %d", cfg.Search.DefaultLimit)
	}
	if len(cfg.Auth.Tokens) != 1 || cfg.Auth.Tokens[0].UserID != "alice" {
		t.Errorf("Tokens = %+v", cfg.Auth.Tokens)
	}
	if len(cfg.Library.Directories) != 1 || cfg.Library.Directories[0] != "/tmp/songs" {
		t.Errorf("Directories = %v", cfg.Library.Directories)
	}
}

func TestLoad_DefaultsApplied(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "server:\n  host: example.com\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8090 {
		t.Errorf("Port = %d", cfg.Server.Port)
	}
	if cfg.Search.DefaultLimit != 10 || cfg.Search.MaxLimit != 100 {
		t.Errorf("Search = %+v", cfg.Search)
	}
	if cfg.Search.SuggestionLimit != 10 || cfg.Search.SuggestionMaxLimit != 50 {
		t.Errorf("Search = %+v", cfg.Search)
	}
	if cfg.Search.CacheTTLSeconds != 60 || cfg.Search.CacheSize != 1024 {
		t.Errorf("Search = %+v", cfg.Search)
	}
	if cfg.Library.OwnerID != "library" {
		t.Errorf("OwnerID = %q", cfg.Library.OwnerID)
	}
	if len(cfg.Library.Extensions) == 0 {
		t.Error("Extensions not defaulted")
	}
}

func TestLoad_RelativePathsResolvedAgainstConfigDir(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
storage:
  database_path: ./data/songs.db
library:
  directories:
    - ./songs
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if want := filepath.Join(dir, "data/songs.db"); cfg.Storage.DatabasePath != want {
		t.Errorf("DatabasePath = %q, want %q", cfg.Storage.DatabasePath, want)
	}
	if want := filepath.Join(dir, "songs"); cfg.Library.Directories[0] != want {
		t.Errorf("Directories[0] = %q, want %q", cfg.Library.Directories[0], want)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "server: [not a map\n")
	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid yaml")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.yaml")

	cfg := &Config{}
	ApplyDefaults(cfg)
	cfg.Auth.Tokens = []AuthToken{{Token: "tok", UserID: "alice"}}

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Server.Port != cfg.Server.Port {
		t.Errorf("Port = %d", loaded.Server.Port)
	}
	if len(loaded.Auth.Tokens) != 1 || loaded.Auth.Tokens[0].Token != "tok" {
		t.Errorf("Tokens = %+v", loaded.Auth.Tokens)
	}
}

func TestRecursiveOrDefault(t *testing.T) {
	var lib LibraryConfig
	if !lib.RecursiveOrDefault() {
		t.Error("unset should default to true")
	}
	f := false
	lib.Recursive = &f
	if lib.RecursiveOrDefault() {
		t.Error("explicit false ignored")
	}
}
