// Package jsonstore persists logical tables as JSON files, one array per
// file. Every write replaces the whole file through a temp-file rename so a
// reader can never observe a partially written table.
package jsonstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/nazrin/tadikahub/internal/pkg/logger"
)

// Table is one JSON-file backed array of records. Mutations run under a
// per-table mutex, which serialises the read-modify-write cycle within this
// process. Writers in other processes are not guarded.
type Table[T any] struct {
	path string
	mu   sync.Mutex
}

// NewTable creates a table backed by the JSON file at path. The parent
// directory is created if missing.
func NewTable[T any](path string) (*Table[T], error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create table directory: %w", err)
	}
	return &Table[T]{path: path}, nil
}

// Path returns the backing file path.
func (t *Table[T]) Path() string {
	return t.path
}

// Load reads the full array. A missing file or corrupt JSON degrades to an
// empty array: an unreadable store is treated as an empty one at startup.
func (t *Table[T]) Load() []T {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.load()
}

func (t *Table[T]) load() []T {
	data, err := os.ReadFile(t.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn().Err(err).Str("path", t.path).Msg("Failed to read table file, treating as empty")
		}
		return []T{}
	}

	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		logger.Warn().Err(err).Str("path", t.path).Msg("Table file is not valid JSON, treating as empty")
		return []T{}
	}
	return records
}

// Save replaces the table with the given records.
func (t *Table[T]) Save(records []T) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.save(records)
}

func (t *Table[T]) save(records []T) error {
	if records == nil {
		records = []T{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal table %s: %w", t.path, err)
	}

	// Write to a temporary sibling, then rename over the original. The
	// rename is the durability boundary.
	tmp, err := os.CreateTemp(filepath.Dir(t.path), filepath.Base(t.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", t.path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file for %s: %w", t.path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to sync temp file for %s: %w", t.path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file for %s: %w", t.path, err)
	}

	if err := os.Rename(tmpName, t.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace table file %s: %w", t.path, err)
	}
	return nil
}

// Update applies fn to the current array and persists the result, all under
// the table lock. fn receives a fresh copy of the stored records and returns
// the records to persist.
func (t *Table[T]) Update(fn func(records []T) ([]T, error)) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	records, err := fn(t.load())
	if err != nil {
		return err
	}
	return t.save(records)
}
