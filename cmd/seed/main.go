package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/hackgods/clinic-booking/internal/appointment"
	"github.com/hackgods/clinic-booking/internal/config"
	"github.com/hackgods/clinic-booking/internal/db"
	redisclient "github.com/hackgods/clinic-booking/internal/redis"
)

type discardPublisher struct{}

func (discardPublisher) Publish(appointment.ChangeEvent) {}

var specialties = []string{
	"Dermatology",
	"Cardiology",
	"General Practice",
	"Orthopedics",
	"Endocrinology",
	"Neurology",
	"Pediatrics",
	"Psychiatry",
	"Ophthalmology",
	"ENT",
}

var slotLabels = []string{"09:00", "10:00", "11:00", "12:00", "14:00", "15:00", "16:00"}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer closeStore()

	if _, err := appointment.Initialize(ctx, store, appointment.DefaultSnapshot()); err != nil {
		log.Fatalf("initialize snapshot: %v", err)
	}

	gofakeit.Seed(time.Now().UnixNano())

	if err := seedDoctors(ctx, store, envInt("SEED_DOCTORS", 20)); err != nil {
		log.Fatalf("seed doctors: %v", err)
	}

	svc := appointment.NewService(store, appointment.NewLocalLocker(), discardPublisher{})
	if err := seedAppointments(ctx, svc, store, envInt("SEED_APPOINTMENTS", 100)); err != nil {
		log.Fatalf("seed appointments: %v", err)
	}

	log.Println("seed complete")
}

func seedDoctors(ctx context.Context, store appointment.Store, count int) error {
	log.Printf("seeding %d doctors", count)

	snap, err := store.Load(ctx)
	if err != nil {
		return err
	}

	var nextID int64
	for _, d := range snap.Doctors {
		if d.ID > nextID {
			nextID = d.ID
		}
	}

	for i := 0; i < count; i++ {
		nextID++
		years := gofakeit.Number(2, 30)

		schedule := make([]string, 0, len(slotLabels))
		for _, s := range slotLabels {
			if gofakeit.Bool() {
				schedule = append(schedule, s)
			}
		}

		specialty := specialties[gofakeit.Number(0, len(specialties)-1)]

		snap.Doctors = append(snap.Doctors, appointment.Doctor{
			ID:          nextID,
			Name:        "Dr. " + gofakeit.Name(),
			Specialty:   specialty,
			Description: fmt.Sprintf("%s specialist with %d years of clinical experience.", specialty, years),
			Experience:  fmt.Sprintf("%d years", years),
			Rating:      gofakeit.Float64Range(3.5, 5.0),
			Available:   gofakeit.Number(0, 9) > 0,
			Schedule:    schedule,
		})
	}

	if err := store.Save(ctx, snap); err != nil {
		return err
	}

	log.Println("doctors seeded")
	return nil
}

// seedAppointments books through the service so the slot rules apply;
// collisions are expected and skipped.
func seedAppointments(ctx context.Context, svc *appointment.Service, store appointment.Store, count int) error {
	log.Printf("seeding %d appointments", count)

	snap, err := store.Load(ctx)
	if err != nil {
		return err
	}
	if len(snap.Doctors) == 0 {
		return errors.New("no doctors to book")
	}

	booked, taken := 0, 0
	for i := 0; i < count; i++ {
		doctor := snap.Doctors[gofakeit.Number(0, len(snap.Doctors)-1)]
		day := time.Now().AddDate(0, 0, gofakeit.Number(0, 14))

		_, err := svc.Create(ctx, appointment.CreateRequest{
			Doctor:   doctor.Name,
			FullName: gofakeit.Name(),
			Email:    gofakeit.Email(),
			Phone:    gofakeit.Phone(),
			Date:     day.Format("2006-01-02"),
			Time:     slotLabels[gofakeit.Number(0, len(slotLabels)-1)],
		})
		switch {
		case err == nil:
			booked++
		case errors.Is(err, appointment.ErrSlotTaken):
			taken++
		default:
			return err
		}
	}

	log.Printf("appointments seeded: booked=%d slot_taken=%d", booked, taken)
	return nil
}

func openStore(ctx context.Context, cfg config.Config) (appointment.Store, func(), error) {
	switch cfg.StoreBackend {
	case config.StorePostgres:
		pool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := db.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return appointment.NewPgStore(pool), pool.Close, nil
	case config.StoreRedis:
		rdb, err := redisclient.NewRedisClient(ctx, redisclient.Options{
			Addr:     cfg.RedisAddr,
			Username: cfg.RedisUsername,
			Password: cfg.RedisPassword,
		})
		if err != nil {
			return nil, nil, err
		}
		return redisclient.NewSnapshotStore(rdb, cfg.RedisKey), func() { _ = rdb.Close() }, nil
	default:
		return appointment.NewFileStore(cfg.DataFile), func() {}, nil
	}
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}
