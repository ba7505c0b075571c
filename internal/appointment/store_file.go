package appointment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps the snapshot as one JSON document on disk.
type FileStore struct {
	path string
	mu   sync.Mutex // guards the temp file name space, not the snapshot
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load(_ context.Context) (Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Snapshot{}, ErrSnapshotNotFound
		}
		return Snapshot{}, fmt.Errorf("%w: read %s: %v", ErrStorageUnavailable, s.path, err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("%w: decode %s: %v", ErrStorageUnavailable, s.path, err)
	}
	normalizeSnapshot(&snap)
	return snap, nil
}

// Save writes to a temp file in the same directory and renames it over the
// target, so a concurrent Load sees either the old or the new document.
func (s *FileStore) Save(_ context.Context, snap Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrStorageWriteFailed, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp: %v", ErrStorageWriteFailed, err)
	}
	tmpName := tmp.Name()

	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: write: %v", ErrStorageWriteFailed, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: sync: %v", ErrStorageWriteFailed, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close: %v", ErrStorageWriteFailed, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("%w: rename: %v", ErrStorageWriteFailed, err)
	}

	committed = true
	return nil
}

func normalizeSnapshot(snap *Snapshot) {
	if snap.Doctors == nil {
		snap.Doctors = []Doctor{}
	}
	if snap.Appointments == nil {
		snap.Appointments = []Appointment{}
	}
	if snap.Users == nil {
		snap.Users = []User{}
	}
	if snap.Settings == nil {
		snap.Settings = map[string]string{}
	}
}

var _ Store = (*FileStore)(nil)

// Ping checks that the snapshot directory is still reachable.
func (s *FileStore) Ping(_ context.Context) error {
	_, err := os.Stat(filepath.Dir(s.path))
	return err
}
