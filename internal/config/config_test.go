package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Addr != DefaultAddr {
		t.Errorf("expected default addr %q, got %q", DefaultAddr, cfg.Addr)
	}
	if cfg.DebounceMs != DefaultDebounceMs {
		t.Errorf("expected default debounce %d, got %d", DefaultDebounceMs, cfg.DebounceMs)
	}
	if cfg.GitMaxOutputMB != DefaultGitMaxOutputMB {
		t.Errorf("expected default ceiling %d, got %d", DefaultGitMaxOutputMB, cfg.GitMaxOutputMB)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
addr = "127.0.0.1:9999"
strict_parse = true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Addr != "127.0.0.1:9999" {
		t.Errorf("expected addr override, got %q", cfg.Addr)
	}
	if !cfg.StrictParse {
		t.Error("expected strict_parse to be true")
	}
	// Unspecified fields fall back to defaults.
	if cfg.DebounceMs != DefaultDebounceMs {
		t.Errorf("expected default debounce, got %d", cfg.DebounceMs)
	}
	if len(cfg.IgnoreGlobs) == 0 {
		t.Error("expected default ignore globs")
	}
}

func TestLoad_IgnoreGlobs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `ignore_globs = ["vendor/**", "!vendor/keep.go"]`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.IgnoreGlobs) != 2 || cfg.IgnoreGlobs[0] != "vendor/**" || cfg.IgnoreGlobs[1] != "!vendor/keep.go" {
		t.Errorf("unexpected globs: %v", cfg.IgnoreGlobs)
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("addr = [broken"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed TOML")
	}
}
