package catalog

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/aldikurniawan2005/media-capture/internal/domain"
	"go.uber.org/zap"
	"lukechampine.com/blake3"
)

type Stats struct {
	Indexed int
	Failed  int
	Removed int
}

// Reindexer rebuilds the catalog from what is actually on disk under Root.
// Files that cannot be read are logged, counted and skipped; their existing
// entries are left in place.
type Reindexer struct {
	Catalog    *Catalog
	Root       string
	NumWorkers int
	Logger     *zap.Logger
}

type hashed struct {
	job  job
	item domain.MediaItem
	err  error
}

type job struct {
	category domain.Category
	path     string
}

func (r *Reindexer) Reindex(ctx context.Context) (Stats, error) {
	var stats Stats

	numWorkers := r.NumWorkers
	if numWorkers < 1 {
		numWorkers = 1
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	r.Logger.Info("Reindexing media", zap.String("root", r.Root), zap.Int("workers", numWorkers))

	jobs, walkErr := walk(ctx, r.Root)

	workers := make([]<-chan hashed, numWorkers)
	for i := 0; i < numWorkers; i++ {
		workers[i] = hashWorker(ctx, r.Logger.With(zap.Int("worker_id", i)), jobs)
	}

	seen := make(map[domain.Category]map[string]bool)
	for _, c := range domain.Categories() {
		seen[c] = make(map[string]bool)
	}

	for h := range merge(ctx, workers...) {
		if h.err != nil {
			seen[h.job.category][filepath.Base(h.job.path)] = true
			stats.Failed++
			continue
		}
		if err := r.Catalog.Put(h.item); err != nil {
			return stats, fmt.Errorf("failed to index %s/%s: %w", h.item.Category, h.item.Filename, err)
		}
		seen[h.item.Category][h.item.Filename] = true

		stats.Indexed++
		if stats.Indexed%1000 == 0 {
			r.Logger.Info("Indexed a(nother) batch of files", zap.Int("count", stats.Indexed))
		}
	}

	if err := ctx.Err(); err != nil {
		return stats, err
	}
	if err := <-walkErr; err != nil {
		return stats, err
	}

	for _, c := range domain.Categories() {
		names := seen[c]
		removed, err := r.Catalog.Sweep(c, func(filename string) bool { return names[filename] })
		if err != nil {
			return stats, fmt.Errorf("failed to sweep %s: %w", c, err)
		}
		stats.Removed += removed
	}

	fields := []zap.Field{zap.Int("indexed", stats.Indexed), zap.Int("failed", stats.Failed), zap.Int("removed", stats.Removed)}
	for _, c := range domain.Categories() {
		entries, err := r.Catalog.List(c)
		if err != nil {
			return stats, fmt.Errorf("failed to list %s: %w", c, err)
		}
		fields = append(fields, zap.Int(c.String(), len(entries)))
	}
	r.Logger.Info("Reindex complete", fields...)

	return stats, nil
}

// walk emits every regular file directly inside each category directory.
func walk(ctx context.Context, root string) (<-chan job, <-chan error) {
	jobs := make(chan job)
	errc := make(chan error, 1)

	go func() {
		defer close(jobs)
		defer close(errc)

		for _, c := range domain.Categories() {
			dir := filepath.Join(root, c.String())
			entries, err := os.ReadDir(dir)
			if err != nil {
				errc <- fmt.Errorf("failed to read %v: %w", dir, err)
				return
			}

			for _, e := range entries {
				if !e.Type().IsRegular() {
					continue
				}
				select {
				case <-ctx.Done():
					return
				case jobs <- job{category: c, path: filepath.Join(dir, e.Name())}:
				}
			}
		}
	}()

	return jobs, errc
}

func hashWorker(ctx context.Context, logger *zap.Logger, jobs <-chan job) <-chan hashed {
	out := make(chan hashed)

	go func() {
		defer close(out)

		for j := range jobs {
			item, err := hashFile(j.category, j.path)
			if err != nil {
				logger.Error("Cannot hash file", zap.String("path", j.path), zap.Error(err))
			}

			select {
			case <-ctx.Done():
				return
			case out <- hashed{job: j, item: item, err: err}:
			}
		}
	}()

	return out
}

var openFile = os.Open

func hashFile(category domain.Category, path string) (domain.MediaItem, error) {
	f, err := openFile(path)
	if err != nil {
		return domain.MediaItem{}, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return domain.MediaItem{}, err
	}

	h := blake3.New(32, nil)
	if _, err := io.Copy(h, f); err != nil {
		return domain.MediaItem{}, fmt.Errorf("failed to hash %v: %w", path, err)
	}

	return domain.MediaItem{
		Category: category,
		Filename: filepath.Base(path),
		Size:     stat.Size(),
		ModTime:  stat.ModTime(),
		Digest:   hex.EncodeToString(h.Sum(nil)),
	}, nil
}

func merge[T any](ctx context.Context, channels ...<-chan T) <-chan T {
	var wg sync.WaitGroup

	wg.Add(len(channels))
	merged := make(chan T)
	multiplex := func(c <-chan T) {
		defer wg.Done()
		for i := range c {
			select {
			case <-ctx.Done():
				return
			case merged <- i:
			}
		}
	}

	for _, c := range channels {
		go multiplex(c)
	}

	go func() {
		wg.Wait()
		close(merged)
	}()

	return merged
}
