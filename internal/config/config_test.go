package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

var keys = []string{
	"MEDIA_HTTP_ADDR",
	"MEDIA_STORAGE_DIR",
	"MEDIA_CATALOG_PATH",
	"MEDIA_MAX_FILE_SIZE",
	"MEDIA_LOG_LEVEL",
	"MEDIA_REINDEX_WORKERS",
}

// isolate runs the test from an empty directory with none of the service's
// variables set, so a developer's .env or shell cannot leak in.
func isolate(t *testing.T) {
	t.Helper()

	for _, k := range keys {
		// Setenv registers the restore; the variable must then be absent
		// rather than empty for godotenv to fill it.
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}

	if cfg.HTTPAddr != ":8080" {
		t.Errorf("Expected :8080 but got %v", cfg.HTTPAddr)
	}
	if cfg.StorageDir != "uploads" {
		t.Errorf("Expected uploads but got %v", cfg.StorageDir)
	}
	if cfg.CatalogPath != filepath.Join("uploads", "catalog.db") {
		t.Errorf("Expected the catalog inside the storage dir but got %v", cfg.CatalogPath)
	}
	if cfg.MaxFileSize != 0 {
		t.Errorf("Expected no size limit by default but got %v", cfg.MaxFileSize)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("Expected info but got %v", cfg.LogLevel)
	}
	if cfg.ReindexWorkers != runtime.NumCPU() {
		t.Errorf("Expected %v workers but got %v", runtime.NumCPU(), cfg.ReindexWorkers)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	isolate(t)

	t.Setenv("MEDIA_HTTP_ADDR", "127.0.0.1:5000")
	t.Setenv("MEDIA_STORAGE_DIR", "/srv/media")
	t.Setenv("MEDIA_MAX_FILE_SIZE", "1048576")
	t.Setenv("MEDIA_REINDEX_WORKERS", "3")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}

	if cfg.HTTPAddr != "127.0.0.1:5000" || cfg.StorageDir != "/srv/media" || cfg.MaxFileSize != 1048576 || cfg.ReindexWorkers != 3 {
		t.Errorf("Unexpected config %+v", cfg)
	}
	if cfg.CatalogPath != "/srv/media/catalog.db" {
		t.Errorf("Expected the catalog to follow the storage dir but got %v", cfg.CatalogPath)
	}
}

func TestLoadDotEnv(t *testing.T) {
	isolate(t)

	if err := os.WriteFile(".env", []byte("MEDIA_HTTP_ADDR=:9999\nMEDIA_LOG_LEVEL=debug\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MEDIA_LOG_LEVEL", "warn")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}

	if cfg.HTTPAddr != ":9999" {
		t.Errorf("Expected .env to supply the address but got %v", cfg.HTTPAddr)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("Expected the environment to win over .env but got %v", cfg.LogLevel)
	}
}

func TestLoadExpandsHome(t *testing.T) {
	isolate(t)

	t.Setenv("MEDIA_STORAGE_DIR", "~/media")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.StorageDir == "~/media" || filepath.Base(cfg.StorageDir) != "media" {
		t.Errorf("Expected ~ to be expanded but got %v", cfg.StorageDir)
	}
}

func TestLoadRejectsBadNumbers(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{name: "non-numeric size", key: "MEDIA_MAX_FILE_SIZE", value: "ten"},
		{name: "negative size", key: "MEDIA_MAX_FILE_SIZE", value: "-1"},
		{name: "zero workers", key: "MEDIA_REINDEX_WORKERS", value: "0"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			isolate(t)
			t.Setenv(c.key, c.value)

			if _, err := Load(); err == nil {
				t.Errorf("Expected %v=%v to be rejected", c.key, c.value)
			}
		})
	}
}
