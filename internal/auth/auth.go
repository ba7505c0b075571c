package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/hackgods/clinic-booking/internal/appointment"
)

var (
	ErrMissingCredentials = errors.New("email and password required")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

const DefaultBcryptCost = 12

type Claims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// UserDirectory is the part of the booking service the authenticator needs.
type UserDirectory interface {
	FindUser(ctx context.Context, email string) (*appointment.User, error)
	EnsureAdmin(ctx context.Context, u appointment.User) (bool, error)
}

type Option func(*Authenticator)

func WithBcryptCost(cost int) Option {
	return func(a *Authenticator) { a.cost = cost }
}

func WithClock(now func() time.Time) Option {
	return func(a *Authenticator) { a.now = now }
}

type Authenticator struct {
	users  UserDirectory
	secret []byte
	ttl    time.Duration
	cost   int
	now    func() time.Time
}

func New(users UserDirectory, secret string, ttl time.Duration, opts ...Option) *Authenticator {
	a := &Authenticator{
		users:  users,
		secret: []byte(secret),
		ttl:    ttl,
		cost:   DefaultBcryptCost,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// BootstrapAdmin makes sure an admin account exists for email.
func (a *Authenticator) BootstrapAdmin(ctx context.Context, email, password, name string) (bool, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return false, fmt.Errorf("hash admin password: %w", err)
	}
	return a.users.EnsureAdmin(ctx, appointment.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
	})
}

// Login checks an admin's credentials and returns a signed token.
func (a *Authenticator) Login(ctx context.Context, email, password string) (string, *appointment.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", nil, ErrMissingCredentials
	}

	u, err := a.users.FindUser(ctx, email)
	if err != nil {
		if errors.Is(err, appointment.ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("find user: %w", err)
	}
	if u.Role != appointment.RoleAdmin {
		return "", nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := a.Issue(*u)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

func (a *Authenticator) Issue(u appointment.User) (string, error) {
	now := a.now()
	claims := Claims{
		UserID: u.ID,
		Email:  u.Email,
		Role:   u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses a bearer token into a principal.
func (a *Authenticator) Verify(tokenString string) (*appointment.Principal, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(a.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}

	return &appointment.Principal{
		UserID: claims.UserID,
		Email:  claims.Email,
		Role:   claims.Role,
	}, nil
}

type contextKey struct{}

func WithPrincipal(ctx context.Context, p *appointment.Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// PrincipalFrom returns nil for anonymous requests.
func PrincipalFrom(ctx context.Context) *appointment.Principal {
	p, _ := ctx.Value(contextKey{}).(*appointment.Principal)
	return p
}
