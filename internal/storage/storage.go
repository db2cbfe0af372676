package storage

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/aldikurniawan2005/media-capture/internal/domain"
)

var (
	ErrNotFound           = errors.New("file not found")
	ErrPathTraversal      = errors.New("filename escapes storage directory")
	ErrStorageUnavailable = errors.New("storage directory unavailable")
)

// CommitFunc runs once a saved file is in place, before any other writer of
// the same path can replace it.
type CommitFunc func(item domain.MediaItem)

type Storage interface {
	// Save replaces <category>/<filename> with the content of r. Readers never
	// observe a partially written file. onCommit may be nil.
	Save(ctx context.Context, category domain.Category, filename string, r io.Reader, onCommit CommitFunc) (domain.MediaItem, error)
	Open(ctx context.Context, category domain.Category, filename string) (io.ReadSeekCloser, domain.MediaItem, error)
	// List returns the category's items, most recently modified first.
	List(ctx context.Context, category domain.Category) ([]domain.MediaItem, error)
}

// ValidateFilename rejects names that could resolve outside a flat category
// directory.
func ValidateFilename(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return ErrPathTraversal
	case strings.ContainsAny(name, "/\\\x00"):
		return ErrPathTraversal
	}
	return nil
}
