package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aldikurniawan2005/media-capture/internal/domain"
	"github.com/boltdb/bolt"
	"go.uber.org/zap"
)

var (
	ErrNotIndexed = errors.New("file not indexed")
	// ErrLocked means another process, usually the running server, holds the
	// catalog open.
	ErrLocked = errors.New("catalog is in use by another process")
)

// Entry is what the catalog remembers about a stored file.
type Entry struct {
	Filename  string    `json:"filename"`
	Size      int64     `json:"size"`
	ModTime   time.Time `json:"modTime"`
	Digest    string    `json:"digest"`
	IndexedAt time.Time `json:"indexedAt"`
}

// Matches reports whether the entry still describes the file on disk.
func (e Entry) Matches(item domain.MediaItem) bool {
	return e.Size == item.Size && e.ModTime.Equal(item.ModTime)
}

// Catalog keeps one bolt bucket per category, keyed by filename.
type Catalog struct {
	db     *bolt.DB
	logger *zap.Logger
}

func Open(path string, logger *zap.Logger) (*Catalog, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if errors.Is(err, bolt.ErrTimeout) {
		return nil, fmt.Errorf("%v: %w", path, ErrLocked)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog %v: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, c := range domain.Categories() {
			if _, err := tx.CreateBucketIfNotExists([]byte(c)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create buckets: %w", err)
	}

	return &Catalog{db: db, logger: logger}, nil
}

func (c *Catalog) Close() error {
	return c.db.Close()
}

func bucket(tx *bolt.Tx, category domain.Category) (*bolt.Bucket, error) {
	b := tx.Bucket([]byte(category))
	if b == nil {
		return nil, fmt.Errorf("bucket %s doesn't exist", category)
	}
	return b, nil
}

func (c *Catalog) Put(item domain.MediaItem) error {
	entry := Entry{
		Filename:  item.Filename,
		Size:      item.Size,
		ModTime:   item.ModTime,
		Digest:    item.Digest,
		IndexedAt: time.Now(),
	}

	marshalled, err := json.Marshal(&entry)
	if err != nil {
		return err
	}

	return c.db.Update(func(tx *bolt.Tx) error {
		b, err := bucket(tx, item.Category)
		if err != nil {
			return err
		}
		return b.Put([]byte(item.Filename), marshalled)
	})
}

func (c *Catalog) Get(category domain.Category, filename string) (Entry, error) {
	var entry Entry

	err := c.db.View(func(tx *bolt.Tx) error {
		b, err := bucket(tx, category)
		if err != nil {
			return err
		}

		v := b.Get([]byte(filename))
		if v == nil {
			return fmt.Errorf("%s/%s: %w", category, filename, ErrNotIndexed)
		}
		return json.Unmarshal(v, &entry)
	})

	return entry, err
}

func (c *Catalog) List(category domain.Category) ([]Entry, error) {
	var entries []Entry

	err := c.db.View(func(tx *bolt.Tx) error {
		b, err := bucket(tx, category)
		if err != nil {
			return err
		}

		return b.ForEach(func(k, v []byte) error {
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil {
				return err
			}
			entries = append(entries, e)
			return nil
		})
	})

	return entries, err
}

// Sweep deletes every entry in category for which keep returns false and
// reports how many were removed.
func (c *Catalog) Sweep(category domain.Category, keep func(filename string) bool) (int, error) {
	var removed int

	err := c.db.Update(func(tx *bolt.Tx) error {
		b, err := bucket(tx, category)
		if err != nil {
			return err
		}

		var stale [][]byte
		cur := b.Cursor()
		for k, _ := cur.First(); k != nil; k, _ = cur.Next() {
			if !keep(string(k)) {
				stale = append(stale, append([]byte(nil), k...))
			}
		}

		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
			c.logger.Debug("Removed stale catalog entry", zap.String("category", category.String()), zap.ByteString("filename", k))
		}
		removed = len(stale)
		return nil
	})

	return removed, err
}
