package local

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aldikurniawan2005/media-capture/internal/domain"
	"github.com/aldikurniawan2005/media-capture/internal/storage"
	"github.com/google/uuid"
	"github.com/natefinch/atomic"
	"lukechampine.com/blake3"
)

// incomingDir holds uploads until they are complete. It lives beside the
// category directories so the final rename never crosses a filesystem.
const incomingDir = ".incoming"

type LocalStorage struct {
	baseDir string
	locks   *pathLocks
}

func NewLocalStorage(baseDir string) (*LocalStorage, error) {
	dirs := []string{incomingDir}
	for _, c := range domain.Categories() {
		dirs = append(dirs, c.String())
	}

	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(baseDir, d), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	return &LocalStorage{
		baseDir: baseDir,
		locks:   newPathLocks(),
	}, nil
}

func (s *LocalStorage) BaseDir() string {
	return s.baseDir
}

func (s *LocalStorage) CategoryDir(category domain.Category) string {
	return filepath.Join(s.baseDir, category.String())
}

// resolve joins filename onto the category directory and refuses any result
// that is not a direct child of it.
func (s *LocalStorage) resolve(category domain.Category, filename string) (string, error) {
	if _, err := domain.ParseCategory(category.String()); err != nil {
		return "", fmt.Errorf("%w: %v", storage.ErrNotFound, err)
	}
	if err := storage.ValidateFilename(filename); err != nil {
		return "", fmt.Errorf("%q: %w", filename, err)
	}

	dir := s.CategoryDir(category)
	p := filepath.Join(dir, filename)
	rel, err := filepath.Rel(dir, p)
	if err != nil || rel == "." || rel == ".." || strings.ContainsRune(rel, filepath.Separator) {
		return "", fmt.Errorf("%q: %w", filename, storage.ErrPathTraversal)
	}

	return p, nil
}

func (s *LocalStorage) checkDir(category domain.Category) error {
	info, err := os.Stat(s.CategoryDir(category))
	if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrStorageUnavailable, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", storage.ErrStorageUnavailable, category)
	}
	return nil
}

func (s *LocalStorage) Save(ctx context.Context, category domain.Category, filename string, r io.Reader, onCommit storage.CommitFunc) (domain.MediaItem, error) {
	filePath, err := s.resolve(category, filename)
	if err != nil {
		return domain.MediaItem{}, err
	}
	if err := s.checkDir(category); err != nil {
		return domain.MediaItem{}, err
	}

	unlock := s.locks.lock(filePath)
	defer unlock()

	tmpPath := filepath.Join(s.baseDir, incomingDir, uuid.New().String())
	tmp, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return domain.MediaItem{}, fmt.Errorf("%w: failed to create temp file: %v", storage.ErrStorageUnavailable, err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpPath)
		}
	}()

	h := blake3.New(32, nil)
	size, err := io.Copy(tmp, io.TeeReader(r, h))
	if err != nil {
		tmp.Close()
		return domain.MediaItem{}, fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return domain.MediaItem{}, fmt.Errorf("failed to sync file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return domain.MediaItem{}, fmt.Errorf("failed to close file: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return domain.MediaItem{}, err
	}

	if err := atomic.ReplaceFile(tmpPath, filePath); err != nil {
		return domain.MediaItem{}, fmt.Errorf("failed to replace file: %w", err)
	}
	committed = true

	stat, err := os.Stat(filePath)
	if err != nil {
		return domain.MediaItem{}, fmt.Errorf("failed to stat file: %w", err)
	}

	item := domain.MediaItem{
		Category: category,
		Filename: filename,
		Size:     size,
		ModTime:  stat.ModTime(),
		Digest:   hex.EncodeToString(h.Sum(nil)),
	}
	if onCommit != nil {
		onCommit(item)
	}

	return item, nil
}

func (s *LocalStorage) Open(ctx context.Context, category domain.Category, filename string) (io.ReadSeekCloser, domain.MediaItem, error) {
	if filename == "" {
		return nil, domain.MediaItem{}, fmt.Errorf("%s/: %w", category, storage.ErrNotFound)
	}

	filePath, err := s.resolve(category, filename)
	if err != nil {
		return nil, domain.MediaItem{}, err
	}
	if err := s.checkDir(category); err != nil {
		return nil, domain.MediaItem{}, err
	}

	file, err := os.Open(filePath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.MediaItem{}, fmt.Errorf("%s/%s: %w", category, filename, storage.ErrNotFound)
	}
	if err != nil {
		return nil, domain.MediaItem{}, fmt.Errorf("failed to open file: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, domain.MediaItem{}, fmt.Errorf("failed to stat file: %w", err)
	}
	if stat.IsDir() {
		file.Close()
		return nil, domain.MediaItem{}, fmt.Errorf("%s/%s: %w", category, filename, storage.ErrNotFound)
	}

	return file, domain.MediaItem{
		Category: category,
		Filename: filename,
		Size:     stat.Size(),
		ModTime:  stat.ModTime(),
	}, nil
}

func (s *LocalStorage) List(ctx context.Context, category domain.Category) ([]domain.MediaItem, error) {
	if _, err := domain.ParseCategory(category.String()); err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrNotFound, err)
	}

	entries, err := os.ReadDir(s.CategoryDir(category))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrStorageUnavailable, err)
	}

	items := make([]domain.MediaItem, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// removed between ReadDir and Info
			continue
		}
		items = append(items, domain.MediaItem{
			Category: category,
			Filename: entry.Name(),
			Size:     info.Size(),
			ModTime:  info.ModTime(),
		})
	}

	SortByRecency(items)
	return items, nil
}

// SortByRecency orders items newest first; equal timestamps fall back to
// filename ascending so the order does not depend on the filesystem.
func SortByRecency(items []domain.MediaItem) {
	slices.SortFunc(items, func(a, b domain.MediaItem) int {
		if c := b.ModTime.Compare(a.ModTime); c != 0 {
			return c
		}
		return strings.Compare(a.Filename, b.Filename)
	})
}
