package redisclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/hackgods/clinic-booking/internal/appointment"
)

// SnapshotStore keeps the whole snapshot under one key, so every SET is
// an atomic replace.
type SnapshotStore struct {
	client *redis.Client
	key    string
}

func NewSnapshotStore(client *redis.Client, key string) *SnapshotStore {
	return &SnapshotStore{client: client, key: key}
}

func (s *SnapshotStore) Load(ctx context.Context) (appointment.Snapshot, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return appointment.Snapshot{}, appointment.ErrSnapshotNotFound
		}
		return appointment.Snapshot{}, fmt.Errorf("%w: get %s: %v", appointment.ErrStorageUnavailable, s.key, err)
	}

	var snap appointment.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return appointment.Snapshot{}, fmt.Errorf("%w: decode %s: %v", appointment.ErrStorageUnavailable, s.key, err)
	}
	return snap.Clone(), nil
}

func (s *SnapshotStore) Save(ctx context.Context, snap appointment.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("%w: encode: %v", appointment.ErrStorageWriteFailed, err)
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("%w: set %s: %v", appointment.ErrStorageWriteFailed, s.key, err)
	}
	return nil
}

func (s *SnapshotStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

var _ appointment.Store = (*SnapshotStore)(nil)
