package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()

	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	t.Parallel()

	path := writeFile(t, `{
		"capacity": 2,
		"cleanup_interval": "250ms",
		"default_ttl": "5m",
		"log": {"level": "debug", "pretty": true}
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Fatalf("expected default addr, got %q", cfg.Addr)
	}
	if cfg.Capacity != 2 {
		t.Fatalf("expected capacity 2, got %d", cfg.Capacity)
	}
	if time.Duration(cfg.CleanupInterval) != 250*time.Millisecond {
		t.Fatalf("unexpected cleanup interval %v", time.Duration(cfg.CleanupInterval))
	}
	if time.Duration(cfg.DefaultTTL) != 5*time.Minute {
		t.Fatalf("unexpected default ttl %v", time.Duration(cfg.DefaultTTL))
	}
	if cfg.Log.Level != "debug" || !cfg.Log.Pretty {
		t.Fatalf("unexpected log config %+v", cfg.Log)
	}
}

func TestLoad_RejectsZeroCapacity(t *testing.T) {
	t.Parallel()

	_, err := Load(writeFile(t, `{"capacity": 0}`))
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestLoad_RejectsMalformed(t *testing.T) {
	t.Parallel()

	cases := []string{
		`{"capacity": 1, "extra": true}`, // unknown field
		`{"cleanup_interval": 5}`,        // not a string
		`{"default_ttl": "soon"}`,        // bad duration
		`{"capacity":`,                   // bad json
	}
	for _, body := range cases {
		if _, err := Load(writeFile(t, body)); err == nil {
			t.Fatalf("body=%s: expected error", body)
		}
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected ErrNotExist, got %v", err)
	}
}
