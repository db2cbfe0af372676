package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
)

type Config struct {
	HTTPAddr    string
	StorageDir  string
	CatalogPath string
	// MaxFileSize is in bytes; 0 disables the limit.
	MaxFileSize    int64
	LogLevel       string
	ReindexWorkers int
}

// Load reads configuration from the environment. Variables in a .env file in
// the working directory are applied first without overriding the real
// environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	storageDir, err := homedir.Expand(getEnv("MEDIA_STORAGE_DIR", "uploads"))
	if err != nil {
		return nil, fmt.Errorf("invalid MEDIA_STORAGE_DIR: %w", err)
	}

	catalogPath, err := homedir.Expand(getEnv("MEDIA_CATALOG_PATH", filepath.Join(storageDir, "catalog.db")))
	if err != nil {
		return nil, fmt.Errorf("invalid MEDIA_CATALOG_PATH: %w", err)
	}

	maxFileSize, err := strconv.ParseInt(getEnv("MEDIA_MAX_FILE_SIZE", "0"), 10, 64)
	if err != nil || maxFileSize < 0 {
		return nil, fmt.Errorf("invalid MEDIA_MAX_FILE_SIZE: %q", os.Getenv("MEDIA_MAX_FILE_SIZE"))
	}

	reindexWorkers := runtime.NumCPU()
	if s := getEnv("MEDIA_REINDEX_WORKERS", ""); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid MEDIA_REINDEX_WORKERS: %q", s)
		}
		reindexWorkers = n
	}

	return &Config{
		HTTPAddr:       getEnv("MEDIA_HTTP_ADDR", ":8080"),
		StorageDir:     storageDir,
		CatalogPath:    catalogPath,
		MaxFileSize:    maxFileSize,
		LogLevel:       getEnv("MEDIA_LOG_LEVEL", "info"),
		ReindexWorkers: reindexWorkers,
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
