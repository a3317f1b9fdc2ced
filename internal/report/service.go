package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/okingsaam/Pulse/internal/appointment"
	"github.com/okingsaam/Pulse/internal/identity"
	redisclient "github.com/okingsaam/Pulse/internal/redis"
	"github.com/okingsaam/Pulse/internal/rejection"
)

const dateLayout = "2006-01-02"

var (
	ErrForbidden    = rejection.New(rejection.Forbidden, "reports are available to admins only")
	ErrInvalidMonth = rejection.New(rejection.Validation, "month must be between 1 and 12")
	ErrInvalidRange = rejection.New(rejection.Validation, "range end must be after its start")
)

// Cache stores rendered aggregates. redisclient.JSONCache satisfies it.
type Cache interface {
	Get(ctx context.Context, key string, dst any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

type Service struct {
	repo     Repository
	appts    AppointmentLister
	loc      *time.Location
	cache    Cache
	cacheTTL time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

type Option func(*Service)

// WithCache caches the dashboard for ttl.
func WithCache(c Cache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo Repository, appts AppointmentLister, loc *time.Location, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		appts:  appts,
		loc:    loc,
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) PerDay(ctx context.Context, actor identity.Actor, r Range) ([]DayCount, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	if !r.To.After(r.From) {
		return nil, ErrInvalidRange
	}
	return s.repo.CountByDay(ctx, r, s.loc)
}

// PerStatus counts appointments per status in r, or over all time when r is
// nil. Every status is present, with zero when it has no appointments.
func (s *Service) PerStatus(ctx context.Context, actor identity.Actor, r *Range) ([]StatusCount, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	return s.perStatus(ctx, r)
}

func (s *Service) perStatus(ctx context.Context, r *Range) ([]StatusCount, error) {
	counts, err := s.repo.CountByStatus(ctx, r)
	if err != nil {
		return nil, err
	}

	byStatus := make(map[appointment.Status]int, len(counts))
	for _, c := range counts {
		byStatus[c.Status] = c.Count
	}
	result := make([]StatusCount, 0, len(appointment.Statuses))
	for _, st := range appointment.Statuses {
		result = append(result, StatusCount{Status: st, Count: byStatus[st]})
	}
	return result, nil
}

// RevenueForMonth reports the clinic-local month's revenue. Each appointment
// counts once: by its paid consultation amount when it has one, otherwise by
// the service price if it is confirmed or completed.
func (s *Service) RevenueForMonth(ctx context.Context, actor identity.Actor, year int, month time.Month) (*Revenue, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	if month < time.January || month > time.December {
		return nil, ErrInvalidMonth
	}
	return s.revenue(ctx, year, month)
}

func (s *Service) revenue(ctx context.Context, year int, month time.Month) (*Revenue, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, s.loc)
	r := Range{From: start, To: start.AddDate(0, 1, 0)}

	services, err := s.repo.ServiceRevenue(ctx, r)
	if err != nil {
		return nil, err
	}
	paid, err := s.repo.PaidConsultationRevenue(ctx, r)
	if err != nil {
		return nil, err
	}

	return &Revenue{
		Year:         year,
		Month:        int(month),
		ServiceCents: services,
		PaidCents:    paid,
		TotalCents:   services + paid,
	}, nil
}

func (s *Service) TopProfessionals(ctx context.Context, actor identity.Actor, r *Range, n int) ([]Ranked, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	return s.repo.TopProfessionals(ctx, r, clampTop(n))
}

func (s *Service) TopServices(ctx context.Context, actor identity.Actor, r *Range, n int) ([]Ranked, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	return s.repo.TopServices(ctx, r, clampTop(n))
}

// Dashboard summarizes the clinic as of now. The result may be served from
// the cache and lag behind writes by up to the cache TTL.
func (s *Service) Dashboard(ctx context.Context, actor identity.Actor) (*Dashboard, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	now := s.now().In(s.loc)
	key := "dashboard:" + now.Format(dateLayout)

	if s.cache != nil {
		var cached Dashboard
		err := s.cache.Get(ctx, key, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, redisclient.ErrCacheMiss) {
			s.logger.Warn("dashboard cache read failed", slog.Any("error", err))
		}
	}

	d, err := s.buildDashboard(ctx, now)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, d, s.cacheTTL); err != nil {
			s.logger.Warn("dashboard cache write failed", slog.Any("error", err))
		}
	}
	return d, nil
}

func (s *Service) buildDashboard(ctx context.Context, now time.Time) (*Dashboard, error) {
	today := startOfDay(now)
	week := WeekStart(now)
	month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.loc)

	d := &Dashboard{GeneratedAt: now.UTC()}
	var err error

	if d.Today, err = s.repo.CountAppointments(ctx, Range{From: today, To: today.AddDate(0, 0, 1)}); err != nil {
		return nil, fmt.Errorf("dashboard today: %w", err)
	}
	if d.Week, err = s.repo.CountAppointments(ctx, Range{From: week, To: week.AddDate(0, 0, 7)}); err != nil {
		return nil, fmt.Errorf("dashboard week: %w", err)
	}
	if d.Month, err = s.repo.CountAppointments(ctx, Range{From: month, To: month.AddDate(0, 1, 0)}); err != nil {
		return nil, fmt.Errorf("dashboard month: %w", err)
	}
	if d.Totals, err = s.repo.Totals(ctx); err != nil {
		return nil, fmt.Errorf("dashboard totals: %w", err)
	}
	if d.PerStatus, err = s.perStatus(ctx, nil); err != nil {
		return nil, fmt.Errorf("dashboard per status: %w", err)
	}
	if d.TopProfessionals, err = s.repo.TopProfessionals(ctx, nil, 5); err != nil {
		return nil, fmt.Errorf("dashboard top professionals: %w", err)
	}
	if d.TopServices, err = s.repo.TopServices(ctx, nil, 5); err != nil {
		return nil, fmt.Errorf("dashboard top services: %w", err)
	}

	rev, err := s.revenue(ctx, now.Year(), now.Month())
	if err != nil {
		return nil, fmt.Errorf("dashboard revenue: %w", err)
	}
	d.Revenue = *rev
	return d, nil
}

// WeekAgenda returns the appointments of the Monday-based clinic-local week
// containing day, grouped per day in time order.
func (s *Service) WeekAgenda(ctx context.Context, actor identity.Actor, day time.Time) (*Agenda, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	start := WeekStart(day.In(s.loc))
	end := start.AddDate(0, 0, 7)

	list, err := s.appts.ListAppointments(ctx, appointment.Filter{From: &start, To: &end})
	if err != nil {
		return nil, fmt.Errorf("week agenda: %w", err)
	}

	agenda := &Agenda{WeekStart: start.Format(dateLayout), Days: make([]AgendaDay, 7)}
	index := make(map[string]int, 7)
	for i := range agenda.Days {
		date := start.AddDate(0, 0, i).Format(dateLayout)
		agenda.Days[i] = AgendaDay{Date: date, Appointments: []appointment.Detail{}}
		index[date] = i
	}
	for _, d := range list {
		i, ok := index[d.ScheduledAt.In(s.loc).Format(dateLayout)]
		if !ok {
			continue
		}
		agenda.Days[i].Appointments = append(agenda.Days[i].Appointments, d)
	}
	return agenda, nil
}

// WeekStart returns local midnight of the Monday on or before t.
func WeekStart(t time.Time) time.Time {
	day := startOfDay(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func clampTop(n int) int {
	if n <= 0 {
		return 5
	}
	if n > 50 {
		return 50
	}
	return n
}
