package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV", "HTTP_PORT", "STORE_BACKEND", "DATA_FILE", "POSTGRES_DSN",
		"REDIS_URL", "REDIS_ADDR", "REDIS_USERNAME", "REDIS_PASSWORD", "REDIS_SNAPSHOT_KEY",
		"LOCK_BACKEND", "LOCK_TTL", "LOCK_WAIT_TIMEOUT", "JWT_SECRET", "TOKEN_TTL",
		"ADMIN_EMAIL", "ADMIN_PASSWORD", "SUBSCRIBER_BUFFER", "STATIC_DIR", "SHUTDOWN_TIMEOUT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "dev", cfg.Env)
	require.Equal(t, "8080", cfg.HTTPPort)
	require.Equal(t, StoreFile, cfg.StoreBackend)
	require.Equal(t, "data.json", cfg.DataFile)
	require.Equal(t, LockLocal, cfg.LockBackend)
	require.Equal(t, 10*time.Second, cfg.LockWaitTimeout)
	require.Equal(t, 24*time.Hour, cfg.TokenTTL)
	require.Equal(t, 64, cfg.SubscriberBuf)
	require.Equal(t, "127.0.0.1:6379", cfg.RedisAddr)
	require.NotEmpty(t, cfg.JWTSecret)
	require.NotEmpty(t, cfg.AdminPassword)
	require.False(t, cfg.NeedsRedis())
}

func TestLoad_ProdRequiresSecrets(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "prod")

	_, err := Load()
	require.ErrorContains(t, err, "JWT_SECRET")

	t.Setenv("JWT_SECRET", "s3cret")
	_, err = Load()
	require.ErrorContains(t, err, "ADMIN_PASSWORD")

	t.Setenv("ADMIN_PASSWORD", "hunter2")
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "s3cret", cfg.JWTSecret)
}

func TestLoad_Backends(t *testing.T) {
	clearEnv(t)

	t.Setenv("STORE_BACKEND", "Postgres")
	_, err := Load()
	require.ErrorContains(t, err, "POSTGRES_DSN")

	t.Setenv("POSTGRES_DSN", "postgres://localhost/clinic")
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, StorePostgres, cfg.StoreBackend)

	t.Setenv("STORE_BACKEND", "sqlite")
	_, err = Load()
	require.ErrorContains(t, err, "STORE_BACKEND")

	t.Setenv("STORE_BACKEND", "file")
	t.Setenv("LOCK_BACKEND", "zookeeper")
	_, err = Load()
	require.ErrorContains(t, err, "LOCK_BACKEND")

	t.Setenv("LOCK_BACKEND", "redis")
	cfg, err = Load()
	require.NoError(t, err)
	require.True(t, cfg.NeedsRedis())
}

func TestLoad_RedisURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("REDIS_URL", "redis://clinic:pw@cache.internal:6380")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "cache.internal:6380", cfg.RedisAddr)
	require.Equal(t, "clinic", cfg.RedisUsername)
	require.Equal(t, "pw", cfg.RedisPassword)

	t.Setenv("REDIS_URL", "redis://")
	_, err = Load()
	require.ErrorContains(t, err, "REDIS_URL")
}

func TestLoad_Durations(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOCK_WAIT_TIMEOUT", "3")
	t.Setenv("TOKEN_TTL", "90m")
	t.Setenv("SHUTDOWN_TIMEOUT", "soon")
	t.Setenv("SUBSCRIBER_BUFFER", "-4")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 3*time.Second, cfg.LockWaitTimeout)
	require.Equal(t, 90*time.Minute, cfg.TokenTTL)
	require.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	require.Equal(t, 64, cfg.SubscriberBuf)
}
