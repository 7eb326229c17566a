// Package docstore keeps one JSON document per record under a collection directory.
// Writes go through a temp file and rename so a document is replaced atomically.
package docstore

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/samber/lo"
	"github.com/samber/oops"
)

var ErrNotFound = errors.New("document not found")

// Collection stores documents of type T keyed by string.
type Collection[T any] struct {
	dir string
	mu  sync.RWMutex
}

// Open creates the collection directory below basePath if needed.
func Open[T any](basePath, name string) (*Collection[T], error) {
	dir := filepath.Join(basePath, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, oops.With("base_path", basePath, "collection", name, "context", "failed to create collection directory").Wrap(err)
	}
	return &Collection[T]{dir: dir}, nil
}

// Key formats an integer id as a document key.
func Key(id int64) string {
	return strconv.FormatInt(id, 10)
}

func (c *Collection[T]) path(key string) string {
	return filepath.Join(c.dir, key+".json")
}

// Put upserts the document stored under key.
func (c *Collection[T]) Put(key string, doc *T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return oops.With("key", key, "context", "failed to marshal document").Wrap(err)
	}

	tmp, err := os.CreateTemp(c.dir, ".tmp-*")
	if err != nil {
		return oops.With("key", key, "context", "failed to create temp file").Wrap(err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return oops.With("key", key, "context", "failed to write document").Wrap(err)
	}
	if err := tmp.Close(); err != nil {
		return oops.With("key", key, "context", "failed to close document").Wrap(err)
	}

	return os.Rename(tmp.Name(), c.path(key))
}

// Get returns ErrNotFound when no document is stored under key.
func (c *Collection[T]) Get(key string) (*T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := os.ReadFile(c.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, oops.With("key", key, "context", "failed to read document").Wrap(err)
	}

	var doc T
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, oops.With("key", key, "context", "failed to unmarshal document").Wrap(err)
	}
	return &doc, nil
}

// All returns every readable document. Corrupt files are skipped.
func (c *Collection[T]) All() ([]*T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, oops.With("directory", c.dir, "context", "failed to read collection directory").Wrap(err)
	}

	docs := lo.FilterMap(entries, func(entry os.DirEntry, _ int) (*T, bool) {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			return nil, false
		}

		data, err := os.ReadFile(filepath.Join(c.dir, entry.Name()))
		if err != nil {
			return nil, false
		}

		var doc T
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, false
		}
		return &doc, true
	})

	return docs, nil
}

// Count returns how many documents match filter; a nil filter counts all.
func (c *Collection[T]) Count(filter func(*T) bool) (int64, error) {
	docs, err := c.All()
	if err != nil {
		return 0, err
	}
	if filter == nil {
		return int64(len(docs)), nil
	}
	return int64(lo.CountBy(docs, filter)), nil
}

// Delete reports whether a document existed under key.
func (c *Collection[T]) Delete(key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := os.Remove(c.path(key))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, oops.With("key", key, "context", "failed to delete document").Wrap(err)
}
