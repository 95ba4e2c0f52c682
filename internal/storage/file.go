// Local file implementation of [Store]
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/desertthunder/spr/internal/shared"
)

// FileStore persists the credential record as a JSON file on local disk.
//
// Intended for development and offline use; the gist backend is the primary
// deployment target. Saves write to a temp file and rename so readers never
// observe a partial document.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a file-backed store at path.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: storage path is required", shared.ErrInvalidConfig)
	}
	return &FileStore{path: path}, nil
}

// Load reads and deserializes the record file.
func (s *FileStore) Load(ctx context.Context) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrStorageFailed, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, s.path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", shared.ErrStorageFailed, s.path, err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: malformed record: %v", shared.ErrStorageFailed, err)
	}

	return &rec, nil
}

// Save writes rec atomically via a temp file rename, mode 0600.
func (s *FileStore) Save(ctx context.Context, rec *Record) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrStorageFailed, err)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode record: %v", shared.ErrStorageFailed, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".spr_token-*")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %v", shared.ErrStorageFailed, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: write record: %v", shared.ErrStorageFailed, err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: chmod record: %v", shared.ErrStorageFailed, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: close record: %v", shared.ErrStorageFailed, err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: replace record: %v", shared.ErrStorageFailed, err)
	}

	return nil
}
