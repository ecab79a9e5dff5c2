package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Backend.URL != DefaultBackendURL {
		t.Errorf("backend url = %q, want default %q", cfg.Backend.URL, DefaultBackendURL)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Backend.Timeout != 15*time.Second {
		t.Errorf("timeout = %v, want 15s", cfg.Backend.Timeout)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9000
backend:
  url: http://backend.test:8000
  timeout: 5s
intent:
  provider: keyword
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Backend.URL != "http://backend.test:8000" {
		t.Errorf("backend url = %q", cfg.Backend.URL)
	}
	if cfg.Backend.Timeout != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", cfg.Backend.Timeout)
	}
	if cfg.Intent.Provider != "keyword" {
		t.Errorf("intent provider = %q, want keyword", cfg.Intent.Provider)
	}
}

func TestEnvOverridesBackendURL(t *testing.T) {
	t.Setenv("BACKEND_URL", "http://env.test:8000")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Backend.URL != "http://env.test:8000" {
		t.Errorf("backend url = %q, want env override", cfg.Backend.URL)
	}
}

func TestNextPublicEnvFallback(t *testing.T) {
	t.Setenv("BACKEND_URL", "")
	t.Setenv("NEXT_PUBLIC_BACKEND_URL", "http://public.test:8000")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Backend.URL != "http://public.test:8000" {
		t.Errorf("backend url = %q, want NEXT_PUBLIC fallback", cfg.Backend.URL)
	}
}
