package persist

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"

	"github.com/hack-pad/hackpadfs"

	"github.com/kittclouds/goprep/internal/store"
)

// FilePersister stores the state as a single JSON document on a hackpadfs
// filesystem. The fs abstraction is what lets the same persister run against
// IndexedDB in the browser build, the OS disk natively, and an in-memory fs
// in tests.
type FilePersister struct {
	fs   hackpadfs.FS
	path string
}

// NewFilePersister creates a persister writing to path on fsys.
func NewFilePersister(fsys hackpadfs.FS, path string) *FilePersister {
	return &FilePersister{fs: fsys, path: path}
}

// Save serializes the state and overwrites the file in one write.
func (p *FilePersister) Save(ps *store.PersistedState) error {
	data, err := json.MarshalIndent(ps, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := hackpadfs.WriteFullFile(p.fs, p.path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", p.path, err)
	}
	return nil
}

// Load reads the file back. A missing file means a first run, not an error.
// Undecodable content comes back as a CorruptError so the caller can discard
// it and reseed.
func (p *FilePersister) Load() (*store.PersistedState, error) {
	data, err := hackpadfs.ReadFile(p.fs, p.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", p.path, err)
	}

	var ps store.PersistedState
	if err := json.Unmarshal(data, &ps); err != nil {
		return nil, &store.CorruptError{Reason: "undecodable payload: " + err.Error()}
	}
	return &ps, nil
}

// Close is a no-op for the file persister.
func (p *FilePersister) Close() error {
	return nil
}

// Compile-time interface check
var _ Persister = (*FilePersister)(nil)
