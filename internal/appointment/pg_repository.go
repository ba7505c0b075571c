package appointment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStore keeps the snapshot as a single jsonb row.
type PgStore struct {
	pool *pgxpool.Pool
}

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

const snapshotRowID = 1

func (r *PgStore) Load(ctx context.Context) (Snapshot, error) {
	var data []byte

	err := r.pool.QueryRow(ctx, `
		SELECT data
		FROM clinic_snapshots
		WHERE id = $1
	`, snapshotRowID).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Snapshot{}, ErrSnapshotNotFound
		}
		return Snapshot{}, fmt.Errorf("%w: select snapshot: %v", ErrStorageUnavailable, err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("%w: decode snapshot: %v", ErrStorageUnavailable, err)
	}
	normalizeSnapshot(&snap)
	return snap, nil
}

func (r *PgStore) Save(ctx context.Context, snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("%w: encode snapshot: %v", ErrStorageWriteFailed, err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", ErrStorageWriteFailed, err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO clinic_snapshots (id, data, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (id) DO UPDATE
		SET data = EXCLUDED.data,
		    updated_at = now()
	`, snapshotRowID, data)
	if err != nil {
		return fmt.Errorf("%w: upsert snapshot: %v", ErrStorageWriteFailed, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit: %v", ErrStorageWriteFailed, err)
	}
	return nil
}

func (r *PgStore) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

var _ Store = (*PgStore)(nil)
