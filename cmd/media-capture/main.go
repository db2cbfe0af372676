package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/aldikurniawan2005/media-capture/internal/catalog"
	"github.com/aldikurniawan2005/media-capture/internal/config"
	httphandler "github.com/aldikurniawan2005/media-capture/internal/http"
	"github.com/aldikurniawan2005/media-capture/internal/log"
	"github.com/aldikurniawan2005/media-capture/internal/storage/local"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	app := &cli.App{
		Name:  "media-capture",
		Usage: "upload, store and browse photos and videos",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "storage-dir", Value: cfg.StorageDir, Usage: "uploads root holding images/ and videos/"},
			&cli.StringFlag{Name: "catalog", Value: cfg.CatalogPath, Usage: "path of the catalog database"},
			&cli.StringFlag{Name: "log-level", Value: cfg.LogLevel, Usage: "debug, info, warn or error"},
		},
		Before: func(c *cli.Context) error {
			cfg.StorageDir = c.String("storage-dir")
			cfg.CatalogPath = c.String("catalog")
			// the catalog follows a storage dir given on the command line
			// unless it was placed explicitly
			if c.IsSet("storage-dir") && !c.IsSet("catalog") && os.Getenv("MEDIA_CATALOG_PATH") == "" {
				cfg.CatalogPath = filepath.Join(cfg.StorageDir, "catalog.db")
			}
			cfg.LogLevel = c.String("log-level")
			return nil
		},
		Action: func(c *cli.Context) error {
			return serve(cfg)
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "run the HTTP server",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "addr", Value: cfg.HTTPAddr, Usage: "listen address"},
					&cli.Int64Flag{Name: "max-file-size", Value: cfg.MaxFileSize, Usage: "largest accepted upload in bytes, 0 for no limit"},
				},
				Action: func(c *cli.Context) error {
					cfg.HTTPAddr = c.String("addr")
					cfg.MaxFileSize = c.Int64("max-file-size")
					return serve(cfg)
				},
			},
			{
				Name:  "reindex",
				Usage: "rebuild the catalog from the files on disk",
				Description: "The catalog is locked while the server runs, so stop the server before reindexing.",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "workers", Value: cfg.ReindexWorkers, Usage: "number of hashing workers"},
				},
				Action: func(c *cli.Context) error {
					cfg.ReindexWorkers = c.Int("workers")
					return reindex(c.Context, cfg)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func serve(cfg *config.Config) error {
	if cfg.MaxFileSize < 0 {
		return fmt.Errorf("invalid max file size %d", cfg.MaxFileSize)
	}

	logger, err := log.NewLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	storage, err := local.NewLocalStorage(cfg.StorageDir)
	if err != nil {
		logger.Error("Failed to initialize storage", zap.Error(err))
		return err
	}

	cat, err := catalog.Open(cfg.CatalogPath, logger)
	if err != nil {
		logger.Error("Failed to open catalog", zap.Error(err))
		return err
	}
	defer func() {
		if err := cat.Close(); err != nil {
			logger.Error("Failed to close catalog", zap.Error(err))
		}
	}()

	router, err := httphandler.NewRouter(storage, cat, cfg.MaxFileSize, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("Starting media service", zap.String("addr", cfg.HTTPAddr), zap.String("storage", cfg.StorageDir))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errc:
		logger.Error("Server failed to start", zap.Error(err))
		return err
	case <-quit:
	}

	logger.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
		return err
	}

	logger.Info("Server exited")
	return nil
}

func reindex(ctx context.Context, cfg *config.Config) error {
	logger, err := log.NewLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	// Makes sure both category directories exist before walking them.
	if _, err := local.NewLocalStorage(cfg.StorageDir); err != nil {
		return err
	}

	cat, err := catalog.Open(cfg.CatalogPath, logger)
	if err != nil {
		return err
	}
	defer cat.Close()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	r := &catalog.Reindexer{
		Catalog:    cat,
		Root:       cfg.StorageDir,
		NumWorkers: cfg.ReindexWorkers,
		Logger:     logger,
	}
	_, err = r.Reindex(ctx)
	return err
}
