package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hackgods/clinic-booking/internal/appointment"
)

type nopPublisher struct{}

func (nopPublisher) Publish(appointment.ChangeEvent) {}

func newTestAuth(t *testing.T, opts ...Option) (*Authenticator, *appointment.Service) {
	t.Helper()
	svc := appointment.NewService(appointment.NewMemStoreWith(appointment.DefaultSnapshot()), appointment.NewLocalLocker(), nopPublisher{})
	opts = append([]Option{WithBcryptCost(bcrypt.MinCost)}, opts...)
	return New(svc, "test-secret", time.Hour, opts...), svc
}

func TestBootstrapAndLogin(t *testing.T) {
	a, _ := newTestAuth(t)
	ctx := context.Background()

	created, err := a.BootstrapAdmin(ctx, "admin@clinic.test", "s3cret", "Admin")
	require.NoError(t, err)
	require.True(t, created)

	created, err = a.BootstrapAdmin(ctx, "admin@clinic.test", "other", "Admin")
	require.NoError(t, err)
	require.False(t, created, "existing admin is kept")

	token, user, err := a.Login(ctx, " ADMIN@clinic.test ", "s3cret")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, appointment.RoleAdmin, user.Role)
	require.NotEqual(t, "s3cret", user.PasswordHash)

	p, err := a.Verify(token)
	require.NoError(t, err)
	require.Equal(t, user.ID, p.UserID)
	require.Equal(t, "admin@clinic.test", p.Email)
	require.Equal(t, appointment.RoleAdmin, p.Role)
}

func TestLoginFailures(t *testing.T) {
	a, svc := newTestAuth(t)
	ctx := context.Background()

	_, err := a.BootstrapAdmin(ctx, "admin@clinic.test", "s3cret", "Admin")
	require.NoError(t, err)

	_, _, err = a.Login(ctx, "", "s3cret")
	require.ErrorIs(t, err, ErrMissingCredentials)
	_, _, err = a.Login(ctx, "admin@clinic.test", "")
	require.ErrorIs(t, err, ErrMissingCredentials)

	_, _, err = a.Login(ctx, "admin@clinic.test", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = a.Login(ctx, "nobody@clinic.test", "s3cret")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	u, err := svc.FindUser(ctx, "admin@clinic.test")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(u.PasswordHash, "$2"))
}

func TestVerifyRejectsBadTokens(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := now
	a, _ := newTestAuth(t, WithClock(func() time.Time { return clock }))

	token, err := a.Issue(appointment.User{ID: 3, Email: "admin@clinic.test", Role: appointment.RoleAdmin})
	require.NoError(t, err)

	_, err = a.Verify(token)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]
	_, err = a.Verify(tampered)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = a.Verify("not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)

	other := New(nil, "other-secret", time.Hour)
	foreign, err := other.Issue(appointment.User{ID: 3, Role: appointment.RoleAdmin})
	require.NoError(t, err)
	_, err = a.Verify(foreign)
	require.ErrorIs(t, err, ErrInvalidToken)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Role: appointment.RoleAdmin}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = a.Verify(unsigned)
	require.ErrorIs(t, err, ErrInvalidToken)

	clock = now.Add(2 * time.Hour)
	_, err = a.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken, "expired tokens are rejected")
}

func TestPrincipalContext(t *testing.T) {
	require.Nil(t, PrincipalFrom(context.Background()))

	p := &appointment.Principal{UserID: 1, Role: appointment.RoleAdmin}
	require.Same(t, p, PrincipalFrom(WithPrincipal(context.Background(), p)))
}
