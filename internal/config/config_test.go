package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Store.APIBaseURL != "http://127.0.0.1:5001" {
		t.Errorf("Store.APIBaseURL = %q, want %q", cfg.Store.APIBaseURL, "http://127.0.0.1:5001")
	}
	if cfg.HTTP.DefaultChunkSize != 4*1024*1024 {
		t.Errorf("HTTP.DefaultChunkSize = %d, want %d", cfg.HTTP.DefaultChunkSize, 4*1024*1024)
	}
	if cfg.CatTimeout() != 10*time.Second {
		t.Errorf("CatTimeout() = %v, want 10s", cfg.CatTimeout())
	}
	if cfg.RequestTimeout() != 30*time.Second {
		t.Errorf("RequestTimeout() = %v, want 30s", cfg.RequestTimeout())
	}
}

func TestParseDurationOrFallsBackOnGarbage(t *testing.T) {
	d := Defaults{Store: Store{CatTimeout: "not-a-duration"}}
	if got := d.CatTimeout(); got != 10*time.Second {
		t.Errorf("CatTimeout() = %v, want fallback 10s", got)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("SUBFILE_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("Load() with no file = %+v, want defaults", cfg)
	}
}

func TestLoadOverridesFromFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("SUBFILE_HOME", home)

	contents := `
[store]
api_base_url = "http://localhost:9999"
cat_timeout = "5s"

[http]
request_timeout = "15s"
default_chunk_size = 1048576
`
	if err := os.WriteFile(filepath.Join(home, "config.toml"), []byte(contents), 0o644); err != nil {
		t.Fatalf("write config.toml: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.APIBaseURL != "http://localhost:9999" {
		t.Errorf("Store.APIBaseURL = %q", cfg.Store.APIBaseURL)
	}
	if cfg.CatTimeout() != 5*time.Second {
		t.Errorf("CatTimeout() = %v, want 5s", cfg.CatTimeout())
	}
	if cfg.HTTP.DefaultChunkSize != 1048576 {
		t.Errorf("HTTP.DefaultChunkSize = %d, want 1048576", cfg.HTTP.DefaultChunkSize)
	}
}
