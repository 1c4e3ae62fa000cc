package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("load with no file must use defaults: %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Cache.Backend != "memory" {
		t.Errorf("backend = %q", cfg.Cache.Backend)
	}
	if cfg.Cache.TTL.Quote != 60*time.Second {
		t.Errorf("quote ttl = %v", cfg.Cache.TTL.Quote)
	}
	if cfg.Cache.TTL.Fundamentals != time.Hour {
		t.Errorf("fundamentals ttl = %v", cfg.Cache.TTL.Fundamentals)
	}
	if cfg.Stream.PushInterval != 5*time.Second {
		t.Errorf("push interval = %v", cfg.Stream.PushInterval)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	yaml := `
server:
  addr: ":9999"
cache:
  backend: redis
  ttl:
    quote: 30s
providers:
  schwab:
    api_key: test-key
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != ":9999" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Cache.Backend != "redis" {
		t.Errorf("backend = %q", cfg.Cache.Backend)
	}
	if cfg.Cache.TTL.Quote != 30*time.Second {
		t.Errorf("quote ttl = %v", cfg.Cache.TTL.Quote)
	}
	if cfg.Cache.TTL.Historical != 5*time.Minute {
		t.Errorf("unset keys keep defaults, historical ttl = %v", cfg.Cache.TTL.Historical)
	}
	if cfg.Providers.Schwab.APIKey != "test-key" {
		t.Errorf("schwab api key = %q", cfg.Providers.Schwab.APIKey)
	}
}

func TestLoad_RejectsUnknownBackend(t *testing.T) {
	dir := t.TempDir()
	yaml := "cache:\n  backend: memcached\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(dir); err == nil {
		t.Fatal("expected error for unknown cache backend")
	}
}
