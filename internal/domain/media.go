package domain

import (
	"fmt"
	"time"
)

type Category string

const (
	CategoryImages Category = "images"
	CategoryVideos Category = "videos"
)

// Categories returns every supported category in display order.
func Categories() []Category {
	return []Category{CategoryImages, CategoryVideos}
}

func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryImages, CategoryVideos:
		return Category(s), nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

func (c Category) String() string {
	return string(c)
}

// MediaItem is a file stored under a category directory. Filename is unique
// within its category only.
type MediaItem struct {
	Category Category
	Filename string
	Size     int64
	ModTime  time.Time
	// Digest is the hex BLAKE3-256 of the content, empty when unknown.
	Digest string
}
