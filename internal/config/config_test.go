package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Storage.Backend != "local" || !cfg.Storage.Overwrite {
		t.Errorf("storage: got %+v", cfg.Storage)
	}
	if cfg.Thumbnails.URLCacheTTL != 24*time.Hour {
		t.Errorf("URL cache TTL: got %v", cfg.Thumbnails.URLCacheTTL)
	}
	if cfg.Thumbnails.Set == nil || len(cfg.Thumbnails.Set.Specs) == 0 {
		t.Error("default thumbnail set not loaded")
	}
}

func TestLoad_FromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thumbs.yaml")
	doc := "thumbnails:\n  - size: 64x64\n    crop: smart\n    upscale: true\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("STORAGE_BACKEND", "Supabase")
	t.Setenv("ALLOWED_EXTENSIONS", " PNG, webp ,,")
	t.Setenv("STORAGE_OVERWRITE", "false")
	t.Setenv("QUEUE_RETRY_BACKOFF", "250ms")
	t.Setenv("QUEUE_WORKERS", "not-a-number")
	t.Setenv("THUMBNAILS_CONFIG", path)
	t.Setenv("MEDIA_CACHE_BUSTER", "v2")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Storage.Backend != "supabase" {
		t.Errorf("backend: got %s", cfg.Storage.Backend)
	}
	if got := cfg.Storage.AllowedExtensions; len(got) != 2 || got[0] != "png" || got[1] != "webp" {
		t.Errorf("extensions: got %v", got)
	}
	if cfg.Storage.Overwrite {
		t.Error("overwrite should be disabled")
	}
	if cfg.RabbitMQ.RetryBackoff != 250*time.Millisecond {
		t.Errorf("backoff: got %v", cfg.RabbitMQ.RetryBackoff)
	}
	if cfg.RabbitMQ.Workers != 2 {
		t.Errorf("invalid worker count should fall back to default, got %d", cfg.RabbitMQ.Workers)
	}
	if cfg.Thumbnails.CacheBuster != "v2" {
		t.Errorf("cache buster: got %s", cfg.Thumbnails.CacheBuster)
	}

	specs := cfg.Thumbnails.Set.Specs
	if len(specs) != 1 || specs[0].Name != "64x64" || !specs[0].Upscale {
		t.Errorf("thumbnail set: got %+v", specs)
	}
}

func TestLoad_BadThumbnailConfig(t *testing.T) {
	t.Setenv("THUMBNAILS_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := Load(); err == nil {
		t.Error("expected error for missing thumbnail config")
	}
}
