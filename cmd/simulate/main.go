package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/hackgods/clinic-booking/internal/appointment"
)

type SimConfig struct {
	APIBaseURL    string
	Duration      time.Duration
	Workers       int
	BookingRatio  float64
	CancelRatio   float64
	ListRatio     float64
	Days          int
	AdminEmail    string
	AdminPassword string
}

type OperationMetrics struct {
	Total     int64
	Success   int64
	Conflict  int64
	Error     int64
	Latencies []time.Duration
	mu        sync.Mutex
}

func (om *OperationMetrics) Record(latency time.Duration, success bool, conflict bool) {
	atomic.AddInt64(&om.Total, 1)
	if success {
		atomic.AddInt64(&om.Success, 1)
	} else if conflict {
		atomic.AddInt64(&om.Conflict, 1)
	} else {
		atomic.AddInt64(&om.Error, 1)
	}

	om.mu.Lock()
	om.Latencies = append(om.Latencies, latency)
	om.mu.Unlock()
}

func (om *OperationMetrics) Stats() (avg, min, max, p50, p95 time.Duration) {
	om.mu.Lock()
	defer om.mu.Unlock()

	if len(om.Latencies) == 0 {
		return 0, 0, 0, 0, 0
	}

	latencies := make([]time.Duration, len(om.Latencies))
	copy(latencies, om.Latencies)
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}

	avg = sum / time.Duration(len(latencies))
	min = latencies[0]
	max = latencies[len(latencies)-1]
	p50 = latencies[len(latencies)*50/100]
	p95 = latencies[min95(len(latencies))]
	return avg, min, max, p50, p95
}

func min95(n int) int {
	idx := n * 95 / 100
	if idx >= n {
		idx = n - 1
	}
	return idx
}

type Metrics struct {
	Booking OperationMetrics
	Cancel  OperationMetrics
	List    OperationMetrics
}

type Simulator struct {
	config  SimConfig
	client  *http.Client
	token   string
	doctors []string
	metrics Metrics

	mu     sync.Mutex
	booked []int64
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("simulator starting")

	cfg := loadConfig()
	if cfg.Workers <= 0 || cfg.Duration <= 0 || cfg.Days <= 0 {
		log.Fatal("SIM_WORKERS, SIM_DURATION and SIM_DAYS must be > 0")
	}

	log.Printf("config: duration=%s workers=%d booking=%.2f cancel=%.2f list=%.2f days=%d",
		cfg.Duration, cfg.Workers, cfg.BookingRatio, cfg.CancelRatio, cfg.ListRatio, cfg.Days)

	sim := &Simulator{
		config: cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := sim.login(ctx); err != nil {
		log.Fatalf("admin login: %v", err)
	}
	if err := sim.loadDoctors(ctx); err != nil {
		log.Fatalf("load doctors: %v", err)
	}
	log.Printf("loaded: %d doctors", len(sim.doctors))

	sim.Run()
	sim.PrintReport()

	verifyCtx, cancelVerify := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelVerify()

	if err := sim.verify(verifyCtx); err != nil {
		log.Fatalf("verification failed: %v", err)
	}
	log.Println("verification passed: no slot holds more than one active booking")
}

func loadConfig() SimConfig {
	cfg := SimConfig{
		APIBaseURL:    getEnv("SIM_API_BASE_URL", "http://localhost:8080"),
		Duration:      getDuration("SIM_DURATION", 30*time.Second),
		Workers:       getInt("SIM_WORKERS", 10),
		BookingRatio:  getFloat("SIM_BOOKING_RATIO", 0.6),
		CancelRatio:   getFloat("SIM_CANCEL_RATIO", 0.1),
		ListRatio:     getFloat("SIM_LIST_RATIO", 0.3),
		Days:          getInt("SIM_DAYS", 2),
		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@wellbeinghospital.com"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "admin123"),
	}

	// Normalize ratios
	total := cfg.BookingRatio + cfg.CancelRatio + cfg.ListRatio
	if total > 0 {
		cfg.BookingRatio /= total
		cfg.CancelRatio /= total
		cfg.ListRatio /= total
	}

	return cfg
}

func (s *Simulator) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Duration)
	defer cancel()

	log.Printf("starting simulation for %s with %d workers", s.config.Duration, s.config.Workers)

	var wg sync.WaitGroup
	for i := 0; i < s.config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			s.worker(ctx, workerID)
		}(i)
	}

	wg.Wait()
	log.Println("simulation complete")
}

func (s *Simulator) worker(ctx context.Context, workerID int) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(workerID)))

	for ctx.Err() == nil {
		r := rng.Float64()
		switch {
		case r < s.config.BookingRatio:
			s.doBooking(ctx, rng)
		case r < s.config.BookingRatio+s.config.CancelRatio:
			s.doCancel(ctx, rng)
		default:
			s.doList(ctx, rng)
		}
	}
}

// slots are deliberately few so that workers collide on them
var slotLabels = []string{"09:00", "10:00", "11:00", "14:00", "15:00"}

func (s *Simulator) doBooking(ctx context.Context, rng *rand.Rand) {
	body := appointment.CreateRequest{
		Doctor:   s.doctors[rng.Intn(len(s.doctors))],
		FullName: gofakeit.Name(),
		Email:    gofakeit.Email(),
		Phone:    gofakeit.Phone(),
		Date:     time.Now().AddDate(0, 0, 1+rng.Intn(s.config.Days)).Format("2006-01-02"),
		Time:     slotLabels[rng.Intn(len(slotLabels))],
	}

	var resp struct {
		AppointmentID int64 `json:"appointmentId"`
	}
	start := time.Now()
	status, err := s.do(ctx, http.MethodPost, "/api/appointments", body, &resp)
	latency := time.Since(start)
	if ctx.Err() != nil {
		return
	}

	switch {
	case err == nil && status == http.StatusCreated:
		s.metrics.Booking.Record(latency, true, false)
		s.mu.Lock()
		s.booked = append(s.booked, resp.AppointmentID)
		s.mu.Unlock()
	case status == http.StatusConflict:
		s.metrics.Booking.Record(latency, false, true)
	default:
		s.metrics.Booking.Record(latency, false, false)
	}
}

func (s *Simulator) doCancel(ctx context.Context, rng *rand.Rand) {
	s.mu.Lock()
	if len(s.booked) == 0 {
		s.mu.Unlock()
		return
	}
	id := s.booked[rng.Intn(len(s.booked))]
	s.mu.Unlock()

	start := time.Now()
	status, err := s.do(ctx, http.MethodPatch, "/api/admin/appointments/"+strconv.FormatInt(id, 10)+"/status",
		map[string]string{"status": string(appointment.StatusCancelled)}, nil)
	if ctx.Err() != nil {
		return
	}
	s.metrics.Cancel.Record(time.Since(start), err == nil && status == http.StatusOK, false)
}

func (s *Simulator) doList(ctx context.Context, rng *rand.Rand) {
	start := time.Now()
	status, err := s.do(ctx, http.MethodGet, "/api/admin/appointments?limit=20&page="+strconv.Itoa(1+rng.Intn(5)), nil, nil)
	if ctx.Err() != nil {
		return
	}
	s.metrics.List.Record(time.Since(start), err == nil && status == http.StatusOK, false)
}

func (s *Simulator) login(ctx context.Context) error {
	var resp struct {
		Token string `json:"token"`
	}
	status, err := s.do(ctx, http.MethodPost, "/api/admin/login",
		map[string]string{"email": s.config.AdminEmail, "password": s.config.AdminPassword}, &resp)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("unexpected status %d", status)
	}
	s.token = resp.Token
	return nil
}

func (s *Simulator) loadDoctors(ctx context.Context) error {
	var resp struct {
		Data []appointment.Doctor `json:"data"`
	}
	if _, err := s.do(ctx, http.MethodGet, "/api/doctors", nil, &resp); err != nil {
		return err
	}
	for _, d := range resp.Data {
		s.doctors = append(s.doctors, d.Name)
	}
	if len(s.doctors) == 0 {
		return fmt.Errorf("no doctors loaded")
	}
	return nil
}

// verify pages through every appointment and checks the slot invariant.
func (s *Simulator) verify(ctx context.Context) error {
	seen := make(map[string]int64)
	for page := 1; ; page++ {
		var resp struct {
			Data       []appointment.Appointment `json:"data"`
			Pagination struct {
				Total int `json:"total"`
			} `json:"pagination"`
		}
		if _, err := s.do(ctx, http.MethodGet, "/api/admin/appointments?limit=100&page="+strconv.Itoa(page), nil, &resp); err != nil {
			return err
		}
		for _, a := range resp.Data {
			if !a.Active() {
				continue
			}
			key := strings.Join([]string{a.Doctor, a.Date, a.Time}, "|")
			if other, ok := seen[key]; ok {
				return fmt.Errorf("slot %s booked by %d and %d", key, other, a.ID)
			}
			seen[key] = a.ID
		}
		if page >= resp.Pagination.Total {
			return nil
		}
	}
}

func (s *Simulator) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.config.APIBaseURL+path, reader)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
	} else {
		_, _ = io.Copy(io.Discard, resp.Body)
	}
	return resp.StatusCode, nil
}

func (s *Simulator) PrintReport() {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("SIMULATION REPORT")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Duration: %s\n", s.config.Duration)
	fmt.Printf("Workers: %d\n", s.config.Workers)
	fmt.Println()

	printOperationReport("Booking", &s.metrics.Booking)
	printOperationReport("Cancel", &s.metrics.Cancel)
	printOperationReport("List", &s.metrics.List)
}

func printOperationReport(name string, om *OperationMetrics) {
	total := atomic.LoadInt64(&om.Total)
	if total == 0 {
		return
	}

	success := atomic.LoadInt64(&om.Success)
	conflict := atomic.LoadInt64(&om.Conflict)
	errs := atomic.LoadInt64(&om.Error)

	avg, min, max, p50, p95 := om.Stats()

	fmt.Printf("%s:\n", name)
	fmt.Printf("  Total: %d\n", total)
	fmt.Printf("  Success: %d (%.1f%%)\n", success, float64(success)/float64(total)*100)
	if conflict > 0 {
		fmt.Printf("  Conflicts: %d (%.1f%%)\n", conflict, float64(conflict)/float64(total)*100)
	}
	if errs > 0 {
		fmt.Printf("  Errors: %d (%.1f%%)\n", errs, float64(errs)/float64(total)*100)
	}
	fmt.Printf("  Latency: avg=%s min=%s max=%s p50=%s p95=%s\n",
		avg.Round(time.Millisecond), min.Round(time.Millisecond), max.Round(time.Millisecond),
		p50.Round(time.Millisecond), p95.Round(time.Millisecond))
	fmt.Println()
}

// Helper functions

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
