package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hackgods/clinic-booking/internal/api"
	"github.com/hackgods/clinic-booking/internal/appointment"
	"github.com/hackgods/clinic-booking/internal/auth"
	"github.com/hackgods/clinic-booking/internal/config"
	"github.com/hackgods/clinic-booking/internal/db"
	"github.com/hackgods/clinic-booking/internal/events"
	"github.com/hackgods/clinic-booking/internal/metrics"
	redisclient "github.com/hackgods/clinic-booking/internal/redis"
)

const version = "1.0.0"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("api-server starting up")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	log.Printf("running in env=%s http_port=%s store=%s lock=%s", cfg.Env, cfg.HTTPPort, cfg.StoreBackend, cfg.LockBackend)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	storage, err := openBackend(rootCtx, cfg)
	if err != nil {
		log.Fatalf("storage setup error: %v", err)
	}
	defer storage.Close()

	initCtx, cancelInit := context.WithTimeout(rootCtx, 10*time.Second)
	if _, err := appointment.Initialize(initCtx, storage.Store, appointment.DefaultSnapshot()); err != nil {
		cancelInit()
		log.Fatalf("initialize snapshot: %v", err)
	}
	cancelInit()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	bus := events.New(
		events.WithBufferSize(cfg.SubscriberBuf),
		events.WithMetrics(metrics.NewBus(reg)),
	)
	defer bus.Close()

	svcOpts := []appointment.Option{appointment.WithMetrics(metrics.NewService(reg))}
	if cfg.StoreBackend != config.StoreFile {
		// postgres and redis may be written by other processes, e.g. cmd/seed
		svcOpts = append(svcOpts, appointment.WithReadThrough())
	}
	svc := appointment.NewService(storage.Store, storage.Locker, bus, svcOpts...)

	authenticator := auth.New(svc, cfg.JWTSecret, cfg.TokenTTL)

	bootCtx, cancelBoot := context.WithTimeout(rootCtx, cfg.LockWaitTimeout)
	created, err := authenticator.BootstrapAdmin(bootCtx, cfg.AdminEmail, cfg.AdminPassword, "System Administrator")
	cancelBoot()
	if err != nil {
		log.Fatalf("bootstrap admin: %v", err)
	}
	if created {
		log.Printf("created admin account email=%s", cfg.AdminEmail)
	}

	router := api.NewRouter(api.RouterConfig{
		Service:   svc,
		Auth:      authenticator,
		Bus:       bus,
		Checks:    storage.Checks,
		Metrics:   promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		StaticDir: cfg.StaticDir,
		Env:       cfg.Env,
		Version:   version,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           withLockTimeout(router, cfg.LockWaitTimeout),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("http server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()

	<-rootCtx.Done()
	log.Println("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	bus.Close() // ends websocket streams so Shutdown does not wait on them
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}
}

// withLockTimeout bounds how long any request may wait, lock included.
// Websocket upgrades are long lived and are left alone.
func withLockTimeout(next http.Handler, d time.Duration) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ws" {
			next.ServeHTTP(w, r)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), d)
		defer cancel()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type backend struct {
	Store  appointment.Store
	Locker appointment.Locker
	Checks map[string]appointment.Pinger
	closer []func()
}

func (b *backend) Close() {
	for i := len(b.closer) - 1; i >= 0; i-- {
		b.closer[i]()
	}
}

func openBackend(ctx context.Context, cfg config.Config) (*backend, error) {
	b := &backend{
		Locker: appointment.NewLocalLocker(),
		Checks: map[string]appointment.Pinger{},
	}

	if cfg.NeedsRedis() {
		rdb, err := redisclient.NewRedisClient(ctx, redisclient.Options{
			Addr:     cfg.RedisAddr,
			Username: cfg.RedisUsername,
			Password: cfg.RedisPassword,
		})
		if err != nil {
			return nil, err
		}
		b.closer = append(b.closer, func() {
			if err := rdb.Close(); err != nil {
				log.Printf("error closing redis: %v", err)
			}
		})
		log.Println("connected to Redis")

		store := redisclient.NewSnapshotStore(rdb, cfg.RedisKey)
		b.Checks["redis"] = store
		if cfg.StoreBackend == config.StoreRedis {
			b.Store = store
		}
		if cfg.LockBackend == config.LockRedis {
			b.Locker = redisclient.NewLocker(rdb, cfg.RedisKey+":lock", cfg.LockTTL)
		}
	}

	switch cfg.StoreBackend {
	case config.StorePostgres:
		pgCtx, cancelPg := context.WithTimeout(ctx, 10*time.Second)
		defer cancelPg()

		pool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.closer = append(b.closer, pool.Close)
		log.Println("connected to Postgres")

		if err := db.EnsureSchema(pgCtx, pool); err != nil {
			b.Close()
			return nil, err
		}
		store := appointment.NewPgStore(pool)
		b.Store = store
		b.Checks["postgres"] = store
	case config.StoreFile:
		store := appointment.NewFileStore(cfg.DataFile)
		b.Store = store
		b.Checks["file"] = store
	}

	return b, nil
}
