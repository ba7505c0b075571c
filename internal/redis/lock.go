package redisclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/hackgods/clinic-booking/internal/appointment"
)

var (
	ErrLockNotAcquired = errors.New("snapshot lock not acquired")
)

const defaultRetryInterval = 25 * time.Millisecond

// Locker guards the snapshot with a single Redis key. Acquisition retries
// until ctx is done.
type Locker struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	retry  time.Duration
}

func NewLocker(client *redis.Client, key string, ttl time.Duration) *Locker {
	return &Locker{
		client: client,
		key:    key,
		ttl:    ttl,
		retry:  defaultRetryInterval,
	}
}

func (l *Locker) WithLock(ctx context.Context, fn func(ctx context.Context) error) error {
	token := uuid.NewString()

	if err := l.acquire(ctx, token); err != nil {
		return err
	}

	defer func() {
		// release even when the caller's ctx is already gone
		_ = l.release(context.WithoutCancel(ctx), token)
	}()

	ctxWithTimeout, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()

	return fn(ctxWithTimeout)
}

func (l *Locker) acquire(ctx context.Context, token string) error {
	ticker := time.NewTicker(l.retry)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
		if err != nil {
			return fmt.Errorf("acquire snapshot lock: %w", err)
		}
		if ok {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", ErrLockNotAcquired, ctx.Err())
		case <-ticker.C:
		}
	}
}

var unlockScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

func (l *Locker) release(ctx context.Context, token string) error {
	_, err := unlockScript.Run(ctx, l.client, []string{l.key}, token).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release snapshot lock: %w", err)
	}
	return nil
}

var _ appointment.Locker = (*Locker)(nil)
