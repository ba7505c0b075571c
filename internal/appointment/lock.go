package appointment

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"
)

// Locker serializes every mutation of the snapshot. fn runs while the
// lock is held and the lock is released on every exit path.
type Locker interface {
	WithLock(ctx context.Context, fn func(ctx context.Context) error) error
}

// LocalLocker is an in-process lock whose acquisition honours ctx.
type LocalLocker struct {
	sem *semaphore.Weighted
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{sem: semaphore.NewWeighted(1)}
}

func (l *LocalLocker) WithLock(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("acquire snapshot lock: %w", err)
	}
	defer l.sem.Release(1)

	return fn(ctx)
}

var _ Locker = (*LocalLocker)(nil)
