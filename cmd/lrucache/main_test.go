package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"lrucache/internal/config"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := loadConfig(nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8080" || cfg.Capacity != 1000 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"addr":":9000","capacity":10}`), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := loadConfig([]string{"-config", path, "-capacity", "3"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9000" {
		t.Fatalf("expected addr from file, got %q", cfg.Addr)
	}
	if cfg.Capacity != 3 {
		t.Fatalf("expected capacity from flag, got %d", cfg.Capacity)
	}
}

func TestLoadConfig_ExplicitZeroCapacityRejected(t *testing.T) {
	t.Parallel()

	_, err := loadConfig([]string{"-capacity=0"})
	if !errors.Is(err, config.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestNewLogger_FallsBackToInfo(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Log.Level = "nonsense"
	if lvl := newLogger(cfg).GetLevel(); lvl.String() != "info" {
		t.Fatalf("expected info level, got %s", lvl)
	}
}
