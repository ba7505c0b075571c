package appointment

import (
	"context"
	"errors"
	"strings"
)

var ErrUserNotFound = errors.New("user not found")

// FindUser looks a user up by email in the last committed snapshot.
func (s *Service) FindUser(ctx context.Context, email string) (*User, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range snap.Users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, ErrUserNotFound
}

// EnsureAdmin adds u as an admin unless an admin with the same email already
// exists. It reports whether a user was created. No change event is emitted.
func (s *Service) EnsureAdmin(ctx context.Context, u User) (bool, error) {
	created := false

	err := s.locker.WithLock(ctx, func(lockCtx context.Context) error {
		if err := lockCtx.Err(); err != nil {
			return err
		}
		runCtx := context.WithoutCancel(lockCtx)

		snap, err := s.store.Load(runCtx)
		if err != nil {
			return loadError(err)
		}
		for _, existing := range snap.Users {
			if existing.Role == RoleAdmin && strings.EqualFold(existing.Email, u.Email) {
				s.latest.Store(&snap)
				return nil
			}
		}

		u.ID = snap.allocateID()
		u.Role = RoleAdmin
		if u.CreatedAt.IsZero() {
			u.CreatedAt = s.now()
		}
		snap.Users = append(snap.Users, u)

		if err := s.store.Save(runCtx, snap); err != nil {
			return saveError(err)
		}
		s.latest.Store(&snap)
		created = true
		return nil
	})
	return created, err
}
