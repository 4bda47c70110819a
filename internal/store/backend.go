package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Collections held by the store
const (
	CollectionSessions    = "focus_flow_log"
	CollectionPerformance = "user_performance"
)

// Backend persists ordered JSON documents per collection.
type Backend interface {
	Append(collection string, doc []byte) error
	List(collection string) ([][]byte, error)
	Close() error
}

// FileBackend keeps each collection as one JSON array in <dir>/<collection>.json.
// Every append rewrites the whole file; concurrent writers can lose updates.
type FileBackend struct {
	dir string
}

// NewFileBackend creates a FileBackend rooted at dir, creating it if needed.
func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileBackend{dir: dir}, nil
}

// Path returns the file backing a collection.
func (b *FileBackend) Path(collection string) string {
	return filepath.Join(b.dir, collection+".json")
}

// Append adds doc to the collection. A missing or unreadable file is
// treated as an empty array and replaced.
func (b *FileBackend) Append(collection string, doc []byte) error {
	docs, err := b.List(collection)
	if err != nil {
		docs = nil
	}

	raw := make([]json.RawMessage, 0, len(docs)+1)
	for _, d := range docs {
		raw = append(raw, d)
	}
	raw = append(raw, doc)

	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", collection, err)
	}

	path := b.Path(collection)
	tmp, err := os.CreateTemp(b.dir, collection+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", collection, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close %s: %w", collection, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace %s: %w", collection, err)
	}
	return nil
}

// List returns the documents of a collection in append order.
// A missing file is an empty collection, not an error.
func (b *FileBackend) List(collection string) ([][]byte, error) {
	data, err := os.ReadFile(b.Path(collection))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", collection, err)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", collection, err)
	}

	docs := make([][]byte, len(raw))
	for i, r := range raw {
		docs[i] = r
	}
	return docs, nil
}

func (b *FileBackend) Close() error { return nil }

// MemoryBackend keeps documents in memory. Useful for tests and demo mode.
type MemoryBackend struct {
	mu   sync.RWMutex
	docs map[string][][]byte
}

// NewMemoryBackend creates an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{docs: make(map[string][][]byte)}
}

func (b *MemoryBackend) Append(collection string, doc []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	cp := make([]byte, len(doc))
	copy(cp, doc)
	b.docs[collection] = append(b.docs[collection], cp)
	return nil
}

func (b *MemoryBackend) List(collection string) ([][]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([][]byte, len(b.docs[collection]))
	copy(out, b.docs[collection])
	return out, nil
}

func (b *MemoryBackend) Close() error { return nil }
