package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"os"
	"slices"
	"strconv"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

const pageSize = 100

type SimConfig struct {
	APIBaseURL      string
	ActorID         uuid.UUID
	Duration        time.Duration
	Workers         int
	BookingRatio    float64
	TransitionRatio float64
	PatientLimit    int
	// Slots is the number of hourly start times bookings compete for. Fewer
	// slots means more SLOT_TAKEN conflicts.
	Slots int
}

type servicePick struct {
	ID             uuid.UUID  `json:"id"`
	ProfessionalID *uuid.UUID `json:"professional_id"`
}

type DataPool struct {
	Patients []uuid.UUID
	Services []servicePick

	mu           sync.RWMutex
	appointments []uuid.UUID
}

func (dp *DataPool) AddAppointment(id uuid.UUID) {
	dp.mu.Lock()
	dp.appointments = append(dp.appointments, id)
	dp.mu.Unlock()
}

func (dp *DataPool) RandomAppointment(rng *rand.Rand) (uuid.UUID, bool) {
	dp.mu.RLock()
	defer dp.mu.RUnlock()
	if len(dp.appointments) == 0 {
		return uuid.Nil, false
	}
	return dp.appointments[rng.Intn(len(dp.appointments))], true
}

type outcome int

const (
	outcomeOK outcome = iota
	outcomeConflict
	outcomeError
)

// opStats collects the outcome and latency of every call of one operation.
type opStats struct {
	mu        sync.Mutex
	counts    [3]int
	latencies []time.Duration
}

func (o *opStats) add(res outcome, latency time.Duration) {
	o.mu.Lock()
	o.counts[res]++
	o.latencies = append(o.latencies, latency)
	o.mu.Unlock()
}

type summary struct {
	total, ok, conflict, failed int
	p50, p95, max               time.Duration
}

func (o *opStats) summarize() summary {
	o.mu.Lock()
	defer o.mu.Unlock()

	sum := summary{
		total:    len(o.latencies),
		ok:       o.counts[outcomeOK],
		conflict: o.counts[outcomeConflict],
		failed:   o.counts[outcomeError],
	}
	if sum.total == 0 {
		return sum
	}
	sorted := slices.Clone(o.latencies)
	slices.Sort(sorted)
	at := func(p int) time.Duration { return sorted[min(sum.total*p/100, sum.total-1)] }
	sum.p50, sum.p95, sum.max = at(50), at(95), sorted[sum.total-1]
	return sum
}

type operation struct {
	name  string
	stats opStats
}

type Simulator struct {
	config SimConfig
	pool   *DataPool
	client *resty.Client
	base   time.Time

	booking, transition, readByID, listByPatient, dashboard operation
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("simulator starting")

	cfg, err := parseFlags()
	if err != nil {
		log.Fatalf("invalid flags: %v", err)
	}

	log.Printf("config: url=%s duration=%s workers=%d slots=%d booking=%.2f transition=%.2f",
		cfg.APIBaseURL, cfg.Duration, cfg.Workers, cfg.Slots, cfg.BookingRatio, cfg.TransitionRatio)

	// The API trusts the actor headers; an admin role is enough to book for
	// any patient.
	client := resty.New().
		SetBaseURL(cfg.APIBaseURL).
		SetTimeout(10*time.Second).
		SetHeader("X-Actor-ID", cfg.ActorID.String()).
		SetHeader("X-Actor-Role", "admin")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dataPool, err := loadDataPool(ctx, client, cfg)
	if err != nil {
		log.Fatalf("load data pool: %v", err)
	}

	log.Printf("loaded: %d patients, %d services", len(dataPool.Patients), len(dataPool.Services))

	sim := &Simulator{
		config:        cfg,
		pool:          dataPool,
		client:        client,
		base:          time.Now().UTC().Truncate(time.Hour).Add(24 * time.Hour),
		booking:       operation{name: "book"},
		transition:    operation{name: "transition"},
		readByID:      operation{name: "get appointment"},
		listByPatient: operation{name: "list by patient"},
		dashboard:     operation{name: "dashboard"},
	}

	sim.Run()
	sim.PrintReport(os.Stdout)
}

func parseFlags() (SimConfig, error) {
	var cfg SimConfig
	var actor string
	flag.StringVar(&cfg.APIBaseURL, "url", "http://localhost:8080", "API base URL")
	flag.StringVar(&actor, "actor", "", "admin person id sent as X-Actor-ID (random when empty)")
	flag.DurationVar(&cfg.Duration, "duration", 30*time.Second, "how long to run")
	flag.IntVar(&cfg.Workers, "workers", 10, "concurrent workers")
	flag.Float64Var(&cfg.BookingRatio, "book", 0.5, "share of booking calls")
	flag.Float64Var(&cfg.TransitionRatio, "transition", 0.2, "share of status transition calls; the rest are reads")
	flag.IntVar(&cfg.PatientLimit, "patients", 2000, "max patients to load")
	flag.IntVar(&cfg.Slots, "slots", 48, "hourly start times to compete for")
	flag.Parse()

	cfg.ActorID = uuid.New()
	if actor != "" {
		id, err := uuid.Parse(actor)
		if err != nil {
			return cfg, fmt.Errorf("-actor: %w", err)
		}
		cfg.ActorID = id
	}

	switch {
	case cfg.Workers <= 0:
		return cfg, errors.New("-workers must be > 0")
	case cfg.Duration <= 0:
		return cfg, errors.New("-duration must be > 0")
	case cfg.Slots <= 0:
		return cfg, errors.New("-slots must be > 0")
	case cfg.BookingRatio < 0 || cfg.TransitionRatio < 0 || cfg.BookingRatio+cfg.TransitionRatio > 1:
		return cfg, errors.New("-book and -transition must be non-negative and sum to at most 1")
	}
	return cfg, nil
}

func loadDataPool(ctx context.Context, client *resty.Client, cfg SimConfig) (*DataPool, error) {
	dataPool := &DataPool{}

	for offset := 0; len(dataPool.Patients) < cfg.PatientLimit; offset += pageSize {
		var page []struct {
			ID uuid.UUID `json:"id"`
		}
		resp, err := client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"role":   "patient",
				"limit":  strconv.Itoa(pageSize),
				"offset": strconv.Itoa(offset),
			}).
			SetResult(&page).
			Get("/persons")
		if err != nil {
			return nil, fmt.Errorf("load patients: %w", err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("load patients: %s", resp.Status())
		}
		for _, p := range page {
			dataPool.Patients = append(dataPool.Patients, p.ID)
		}
		if len(page) < pageSize {
			break
		}
	}

	for offset := 0; ; offset += pageSize {
		var page []servicePick
		resp, err := client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"active": "true",
				"limit":  strconv.Itoa(pageSize),
				"offset": strconv.Itoa(offset),
			}).
			SetResult(&page).
			Get("/services")
		if err != nil {
			return nil, fmt.Errorf("load services: %w", err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("load services: %s", resp.Status())
		}
		for _, s := range page {
			if s.ProfessionalID != nil {
				dataPool.Services = append(dataPool.Services, s)
			}
		}
		if len(page) < pageSize {
			break
		}
	}

	if len(dataPool.Patients) == 0 {
		return nil, fmt.Errorf("no patients loaded, run cmd/seed first")
	}
	if len(dataPool.Services) == 0 {
		return nil, fmt.Errorf("no services with a professional loaded")
	}

	return dataPool, nil
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
		switch r := rng.Float64(); {
		case r < s.config.BookingRatio:
			s.doBooking(ctx, rng)
		case r < s.config.BookingRatio+s.config.TransitionRatio:
			s.doTransition(ctx, rng)
		default:
			switch rng.Intn(3) {
			case 0:
				s.doReadByID(ctx, rng)
			case 1:
				s.doListByPatient(ctx, rng)
			default:
				s.doDashboard(ctx)
			}
		}
	}
}

// call runs one request and records it. Calls cut short by the end of the run
// are dropped.
func (s *Simulator) call(ctx context.Context, op *operation, do func(req *resty.Request) (*resty.Response, error)) *resty.Response {
	start := time.Now()
	resp, err := do(s.client.R().SetContext(ctx))
	latency := time.Since(start)

	switch {
	case err != nil && ctx.Err() != nil:
		return nil
	case err != nil:
		op.stats.add(outcomeError, latency)
		return nil
	case resp.IsSuccess():
		op.stats.add(outcomeOK, latency)
	case resp.StatusCode() == http.StatusConflict:
		op.stats.add(outcomeConflict, latency)
	default:
		op.stats.add(outcomeError, latency)
	}
	return resp
}

func (s *Simulator) doBooking(ctx context.Context, rng *rand.Rand) {
	svc := s.pool.Services[rng.Intn(len(s.pool.Services))]
	body := map[string]any{
		"patient_id":      s.pool.Patients[rng.Intn(len(s.pool.Patients))],
		"professional_id": svc.ProfessionalID,
		"service_id":      svc.ID,
		"when":            s.base.Add(time.Duration(rng.Intn(s.config.Slots)) * time.Hour),
	}

	var created struct {
		ID uuid.UUID `json:"id"`
	}
	resp := s.call(ctx, &s.booking, func(req *resty.Request) (*resty.Response, error) {
		return req.SetBody(body).SetResult(&created).Post("/appointments")
	})
	if resp != nil && resp.StatusCode() == http.StatusCreated && created.ID != uuid.Nil {
		s.pool.AddAppointment(created.ID)
	}
}

func (s *Simulator) doTransition(ctx context.Context, rng *rand.Rand) {
	id, ok := s.pool.RandomAppointment(rng)
	if !ok {
		return
	}
	status := "confirmed"
	if rng.Intn(4) == 0 {
		status = "cancelled"
	}

	s.call(ctx, &s.transition, func(req *resty.Request) (*resty.Response, error) {
		return req.
			SetPathParam("id", id.String()).
			SetBody(map[string]string{"status": status}).
			Post("/appointments/{id}/status")
	})
}

func (s *Simulator) doReadByID(ctx context.Context, rng *rand.Rand) {
	id, ok := s.pool.RandomAppointment(rng)
	if !ok {
		return
	}
	s.call(ctx, &s.readByID, func(req *resty.Request) (*resty.Response, error) {
		return req.SetPathParam("id", id.String()).Get("/appointments/{id}")
	})
}

func (s *Simulator) doListByPatient(ctx context.Context, rng *rand.Rand) {
	patientID := s.pool.Patients[rng.Intn(len(s.pool.Patients))]
	s.call(ctx, &s.listByPatient, func(req *resty.Request) (*resty.Response, error) {
		return req.
			SetQueryParam("patient_id", patientID.String()).
			SetQueryParam("limit", "20").
			Get("/appointments")
	})
}

func (s *Simulator) doDashboard(ctx context.Context) {
	s.call(ctx, &s.dashboard, func(req *resty.Request) (*resty.Response, error) {
		return req.Get("/reports/dashboard")
	})
}

func (s *Simulator) PrintReport(out io.Writer) {
	fmt.Fprintf(out, "\nran %s with %d workers over %d contended slots\n\n", s.config.Duration, s.config.Workers, s.config.Slots)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "operation\ttotal\tok\tconflict\terror\tp50\tp95\tmax\t")
	for _, op := range []*operation{&s.booking, &s.transition, &s.readByID, &s.listByPatient, &s.dashboard} {
		sum := op.stats.summarize()
		if sum.total == 0 {
			continue
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%s\t%s\t%s\t\n",
			op.name, sum.total, sum.ok, sum.conflict, sum.failed,
			sum.p50.Round(time.Millisecond), sum.p95.Round(time.Millisecond), sum.max.Round(time.Millisecond))
	}
	_ = tw.Flush()

	if b := s.booking.stats.summarize(); b.total > 0 {
		fmt.Fprintf(out, "\nbooking conflict rate: %.1f%%\n", float64(b.conflict)/float64(b.total)*100)
	}
}
