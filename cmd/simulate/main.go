package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/hackgods/clinic-office-scheduling/internal/clinic"
	"github.com/hackgods/clinic-office-scheduling/internal/logging"
	"github.com/hackgods/clinic-office-scheduling/internal/schedule"
)

// SimConfig drives a booking storm against a running api-server. Many desks
// compete for a small set of grid instants; afterwards the simulator checks
// that no instant ended up with two active appointments.
type SimConfig struct {
	APIBaseURL   string
	Duration     time.Duration
	Workers      int
	Days         int
	BookingRatio float64
	StatusRatio  float64
	ReadRatio    float64
}

type target struct {
	Date string
	Time string
}

type DataPool struct {
	Targets      []target
	Names        []string
	mu           sync.RWMutex
	appointments []uuid.UUID
}

func (dp *DataPool) AddAppointment(id uuid.UUID) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	dp.appointments = append(dp.appointments, id)
}

func (dp *DataPool) GetRandomAppointment(rng *rand.Rand) (uuid.UUID, bool) {
	dp.mu.RLock()
	defer dp.mu.RUnlock()
	if len(dp.appointments) == 0 {
		return uuid.Nil, false
	}
	return dp.appointments[rng.Intn(len(dp.appointments))], true
}

type Simulator struct {
	config  SimConfig
	pool    *DataPool
	client  *http.Client
	metrics Metrics
	log     *logrus.Logger
}

func main() {
	_ = godotenv.Load()
	log := logging.New(getEnv("LOG_LEVEL", "info"), true)

	cfg := loadConfig()
	if err := validateConfig(cfg); err != nil {
		log.WithError(err).Fatal("invalid config")
	}

	log.WithFields(logrus.Fields{
		"duration": cfg.Duration,
		"workers":  cfg.Workers,
		"days":     cfg.Days,
		"booking":  cfg.BookingRatio,
		"status":   cfg.StatusRatio,
		"read":     cfg.ReadRatio,
	}).Info("simulator starting")

	sim := &Simulator{
		config: cfg,
		pool:   buildDataPool(cfg, time.Now()),
		client: &http.Client{Timeout: 10 * time.Second},
		log:    log,
	}

	sim.Run()
	sim.PrintReport()

	dupes, err := sim.CheckNoDoubleBooking(context.Background())
	if err != nil {
		log.WithError(err).Fatal("double booking check failed")
	}
	if len(dupes) > 0 {
		log.WithField("instants", dupes).Fatal("double bookings found")
	}
	log.Info("no instant holds more than one active appointment")
}

func loadConfig() SimConfig {
	cfg := SimConfig{
		APIBaseURL:   strings.TrimRight(getEnv("SIM_API_BASE_URL", "http://localhost:8080"), "/"),
		Duration:     getDuration("SIM_DURATION", 30*time.Second),
		Workers:      getInt("SIM_WORKERS", 10),
		Days:         getInt("SIM_DAYS", 2),
		BookingRatio: getFloat("SIM_BOOKING_RATIO", 0.5),
		StatusRatio:  getFloat("SIM_STATUS_RATIO", 0.2),
		ReadRatio:    getFloat("SIM_READ_RATIO", 0.3),
	}

	// Normalize ratios
	total := cfg.BookingRatio + cfg.StatusRatio + cfg.ReadRatio
	if total > 0 {
		cfg.BookingRatio /= total
		cfg.StatusRatio /= total
		cfg.ReadRatio /= total
	}

	return cfg
}

func validateConfig(cfg SimConfig) error {
	if cfg.Workers <= 0 {
		return fmt.Errorf("SIM_WORKERS must be > 0")
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("SIM_DURATION must be > 0")
	}
	if cfg.Days <= 0 {
		return fmt.Errorf("SIM_DAYS must be > 0")
	}
	if _, err := url.Parse(cfg.APIBaseURL); err != nil {
		return fmt.Errorf("SIM_API_BASE_URL: %w", err)
	}
	return nil
}

// buildDataPool targets every grid slot of the next cfg.Days days starting
// tomorrow, and a handful of fake patient names.
func buildDataPool(cfg SimConfig, now time.Time) *DataPool {
	dp := &DataPool{}
	for d := 1; d <= cfg.Days; d++ {
		date := now.AddDate(0, 0, d).Format(clinic.DateLayout)
		for _, label := range schedule.SlotLabels() {
			dp.Targets = append(dp.Targets, target{Date: date, Time: label})
		}
	}
	for i := 0; i < 50; i++ {
		dp.Names = append(dp.Names, gofakeit.LastName()+" "+gofakeit.FirstName())
	}
	return dp
}

func (s *Simulator) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Duration)
	defer cancel()

	s.log.WithField("targets", len(s.pool.Targets)).Info("starting simulation")

	var wg sync.WaitGroup
	for i := 0; i < s.config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			s.worker(ctx, workerID)
		}(i)
	}

	wg.Wait()
	s.log.Info("simulation complete")
}

func (s *Simulator) worker(ctx context.Context, workerID int) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(workerID)))

	for {
		select {
		case <-ctx.Done():
			return
		default:
			r := rng.Float64()
			switch {
			case r < s.config.BookingRatio:
				s.doBooking(ctx, rng)
			case r < s.config.BookingRatio+s.config.StatusRatio:
				s.doStatus(ctx, rng)
			default:
				switch rng.Intn(3) {
				case 0:
					s.doAvailability(ctx, rng)
				case 1:
					s.doCalendar(ctx)
				case 2:
					s.doForPatient(ctx, rng)
				}
			}
		}
	}
}

func (s *Simulator) doBooking(ctx context.Context, rng *rand.Rand) {
	t := s.pool.Targets[rng.Intn(len(s.pool.Targets))]
	body, _ := json.Marshal(map[string]string{
		"patient": s.pool.Names[rng.Intn(len(s.pool.Names))],
		"contact": "06" + gofakeit.Numerify("########"),
		"date":    t.Date,
		"time":    t.Time,
		"type":    "Nouvelle consultation",
		"source":  "Téléphone",
	})

	start := time.Now()
	resp, err := s.send(ctx, http.MethodPost, "/api/appointments", body)
	latency := time.Since(start)

	success, conflict := false, false
	if err == nil {
		defer resp.Body.Close()
		switch resp.StatusCode {
		case http.StatusCreated:
			success = true
			var created struct {
				ID uuid.UUID `json:"id"`
			}
			if json.NewDecoder(resp.Body).Decode(&created) == nil && created.ID != uuid.Nil {
				s.pool.AddAppointment(created.ID)
			}
		case http.StatusConflict:
			conflict = true
		}
	}

	s.metrics.Booking.Record(latency, success, conflict)
}

// doStatus flips a booked appointment between cancelled and confirmed. A
// revive can lose its instant to another desk in the meantime.
func (s *Simulator) doStatus(ctx context.Context, rng *rand.Rand) {
	id, ok := s.pool.GetRandomAppointment(rng)
	if !ok {
		return
	}
	status := "annulé"
	if rng.Intn(2) == 0 {
		status = "confirmé"
	}
	body, _ := json.Marshal(map[string]string{"status": status})

	start := time.Now()
	resp, err := s.send(ctx, http.MethodPatch, "/api/appointments/"+id.String()+"/status", body)
	latency := time.Since(start)

	success, conflict := false, false
	if err == nil {
		defer resp.Body.Close()
		success = resp.StatusCode == http.StatusOK
		conflict = resp.StatusCode == http.StatusConflict
	}

	s.metrics.Status.Record(latency, success, conflict)
}

func (s *Simulator) doAvailability(ctx context.Context, rng *rand.Rand) {
	t := s.pool.Targets[rng.Intn(len(s.pool.Targets))]
	q := url.Values{"date": {t.Date}, "time": {t.Time}}
	s.read(ctx, &s.metrics.Availability, "/api/availability?"+q.Encode())
}

func (s *Simulator) doCalendar(ctx context.Context) {
	first := s.pool.Targets[0].Date
	last := s.pool.Targets[len(s.pool.Targets)-1].Date
	q := url.Values{"start": {first}, "end": {last}}
	s.read(ctx, &s.metrics.Calendar, "/api/calendar?"+q.Encode())
}

func (s *Simulator) doForPatient(ctx context.Context, rng *rand.Rand) {
	q := url.Values{"patient": {s.pool.Names[rng.Intn(len(s.pool.Names))]}}
	s.read(ctx, &s.metrics.ForPatient, "/api/appointments?"+q.Encode())
}

func (s *Simulator) read(ctx context.Context, om *OperationMetrics, path string) {
	start := time.Now()
	resp, err := s.send(ctx, http.MethodGet, path, nil)
	latency := time.Since(start)

	success := false
	if err == nil {
		defer resp.Body.Close()
		success = resp.StatusCode == http.StatusOK
	}
	om.Record(latency, success, false)
}

func (s *Simulator) send(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.config.APIBaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return s.client.Do(req)
}

// CheckNoDoubleBooking lists every appointment and returns the instants held
// by more than one non-cancelled appointment.
func (s *Simulator) CheckNoDoubleBooking(ctx context.Context) ([]string, error) {
	resp, err := s.send(ctx, http.MethodGet, "/api/appointments", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list appointments: status %d", resp.StatusCode)
	}

	var appts []struct {
		DateTime string                   `json:"dateTime"`
		Status   clinic.AppointmentStatus `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&appts); err != nil {
		return nil, fmt.Errorf("decode appointments: %w", err)
	}

	held := make(map[string]int)
	var dupes []string
	for _, a := range appts {
		if a.Status == clinic.StatusCancelled {
			continue
		}
		held[a.DateTime]++
		if held[a.DateTime] == 2 {
			dupes = append(dupes, a.DateTime)
		}
	}
	return dupes, nil
}

func (s *Simulator) PrintReport() {
	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("SIMULATION REPORT")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Duration: %s\n", s.config.Duration)
	fmt.Printf("Workers: %d\n", s.config.Workers)
	fmt.Printf("Targets: %d instants\n", len(s.pool.Targets))
	fmt.Println()

	printOperationReport("Booking", &s.metrics.Booking)
	printOperationReport("Status change", &s.metrics.Status)
	printOperationReport("Availability", &s.metrics.Availability)
	printOperationReport("Calendar", &s.metrics.Calendar)
	printOperationReport("List by patient", &s.metrics.ForPatient)
}

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
