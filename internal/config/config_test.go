package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadAppliesDefaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("path: /var/db/ds\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Path != "/var/db/ds" {
		t.Fatalf("Path = %q, want /var/db/ds", cfg.Path)
	}
	if cfg.MinimumFreeSpace != 1 {
		t.Fatalf("MinimumFreeSpace = %d, want default 1", cfg.MinimumFreeSpace)
	}
	if cfg.Variant != "ADDS" {
		t.Fatalf("Variant = %q, want default ADDS", cfg.Variant)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
