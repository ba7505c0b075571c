package appointment

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrStorageWriteFailed = errors.New("storage write failed")
	ErrSnapshotNotFound   = errors.New("snapshot not found")
)

// Store holds the single snapshot. There is no partial-update API: every
// mutation is a load, an in-memory change and a save of the whole thing,
// so callers must serialize writers (see Locker).
type Store interface {
	// Load returns the current snapshot. It returns ErrSnapshotNotFound when
	// nothing was ever saved and an error wrapping ErrStorageUnavailable when
	// the medium cannot be read.
	Load(ctx context.Context) (Snapshot, error)

	// Save replaces the snapshot atomically. Failures wrap ErrStorageWriteFailed.
	Save(ctx context.Context, snap Snapshot) error
}

// Pinger is implemented by stores backed by a remote medium.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Initialize writes defaults on first run. Any load failure other than a
// missing snapshot is returned as is.
func Initialize(ctx context.Context, store Store, defaults Snapshot) (Snapshot, error) {
	snap, err := store.Load(ctx)
	if err == nil {
		return snap, nil
	}
	if !errors.Is(err, ErrSnapshotNotFound) {
		return Snapshot{}, err
	}

	if err := store.Save(ctx, defaults); err != nil {
		return Snapshot{}, fmt.Errorf("save initial snapshot: %w", err)
	}
	return defaults.Clone(), nil
}
