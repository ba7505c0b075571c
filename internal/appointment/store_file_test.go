package appointment

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFileStore_LoadMissing(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "data.json"))

	_, err := store.Load(context.Background())
	require.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestFileStore_LoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewFileStore(path).Load(context.Background())
	require.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestFileStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(filepath.Join(dir, "data.json"))
	ctx := context.Background()

	snap := DefaultSnapshot()
	snap.NextID = 41
	snap.Appointments = append(snap.Appointments, Appointment{
		ID:        41,
		Reference: "APT-0000000001",
		Doctor:    "Dr. Alice Smith",
		FullName:  "Jane Roe",
		Email:     "jane@example.com",
		Phone:     "555-0100",
		Date:      "2024-06-01",
		Time:      "09:00",
		Status:    StatusConfirmed,
		CreatedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, store.Save(ctx, snap))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, snap.NextID, got.NextID)
	require.Equal(t, snap.Doctors, got.Doctors)
	require.Equal(t, snap.Appointments, got.Appointments)
	require.Equal(t, snap.Settings, got.Settings)

	// no temp files are left next to the snapshot
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestFileStore_SaveIntoMissingDirectory(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "gone", "data.json"))

	err := store.Save(context.Background(), DefaultSnapshot())
	require.ErrorIs(t, err, ErrStorageWriteFailed)
}

func TestFileStore_EmptyCollectionsDecodeAsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"nextId":3}`), 0o644))

	snap, err := NewFileStore(path).Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, snap.Appointments)
	require.NotNil(t, snap.Settings)
	require.Equal(t, int64(3), snap.NextID)
}

func TestInitialize(t *testing.T) {
	ctx := context.Background()

	t.Run("writes defaults on first run", func(t *testing.T) {
		store := NewMemStore()
		snap, err := Initialize(ctx, store, DefaultSnapshot())
		require.NoError(t, err)
		require.Len(t, snap.Doctors, 6)

		saved, err := store.Load(ctx)
		require.NoError(t, err)
		require.Len(t, saved.Doctors, 6)
	})

	t.Run("keeps existing state", func(t *testing.T) {
		existing := DefaultSnapshot()
		existing.Doctors = existing.Doctors[:1]
		store := NewMemStoreWith(existing)

		snap, err := Initialize(ctx, store, DefaultSnapshot())
		require.NoError(t, err)
		require.Len(t, snap.Doctors, 1)
	})

	t.Run("does not overwrite unreadable storage", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "data.json")
		require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o644))

		_, err := Initialize(ctx, NewFileStore(path), DefaultSnapshot())
		require.ErrorIs(t, err, ErrStorageUnavailable)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		require.Equal(t, "garbage", string(data))
	})
}
