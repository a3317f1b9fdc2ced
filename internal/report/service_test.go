package report_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okingsaam/Pulse/internal/appointment"
	"github.com/okingsaam/Pulse/internal/catalog"
	"github.com/okingsaam/Pulse/internal/consultation"
	"github.com/okingsaam/Pulse/internal/identity"
	"github.com/okingsaam/Pulse/internal/logs"
	"github.com/okingsaam/Pulse/internal/memstore"
	redisclient "github.com/okingsaam/Pulse/internal/redis"
	"github.com/okingsaam/Pulse/internal/report"
)

var (
	admin   = identity.Actor{ID: uuid.New(), Role: identity.RoleAdmin}
	clinic  = time.FixedZone("BRT", -3*3600)
	fixedAt = time.Date(2025, 6, 4, 15, 0, 0, 0, time.UTC)
)

type fixture struct {
	store   *memstore.Store
	patient identity.Person
	profA   catalog.Professional
	profB   catalog.Professional
	consult catalog.Service
	exam    catalog.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{store: memstore.New()}

	f.patient = identity.Person{ID: uuid.New(), Name: "Ana", Role: identity.RolePatient, Active: true}
	require.NoError(t, f.store.CreatePerson(ctx, &f.patient))

	f.profA = catalog.Professional{ID: uuid.New(), Name: "Dr. A", Specialty: "Cardiology", Active: true}
	f.profB = catalog.Professional{ID: uuid.New(), Name: "Dr. B", Specialty: "Dermatology", Active: true}
	require.NoError(t, f.store.CreateProfessional(ctx, &f.profA))
	require.NoError(t, f.store.CreateProfessional(ctx, &f.profB))

	f.consult = catalog.Service{ID: uuid.New(), Name: "Consult", PriceCents: 10000, Duration: time.Hour, Active: true}
	f.exam = catalog.Service{ID: uuid.New(), Name: "Exam", PriceCents: 5000, Duration: 30 * time.Minute, Active: true}
	require.NoError(t, f.store.CreateService(ctx, &f.consult))
	require.NoError(t, f.store.CreateService(ctx, &f.exam))
	return f
}

func (f *fixture) book(t *testing.T, prof catalog.Professional, svc catalog.Service, at time.Time, status appointment.Status) appointment.Appointment {
	t.Helper()
	a := appointment.Appointment{
		ID:             uuid.New(),
		PatientID:      f.patient.ID,
		ProfessionalID: prof.ID,
		ServiceID:      svc.ID,
		ScheduledAt:    at,
		Status:         status,
	}
	require.NoError(t, f.store.CreateAppointment(context.Background(), &a))
	return a
}

// seed books three appointments in the week of 2025-06-02 and one in July.
// The second one is 23:00 local on Monday although it is Tuesday in UTC.
func (f *fixture) seed(t *testing.T) {
	t.Helper()
	f.book(t, f.profA, f.consult, time.Date(2025, 6, 2, 13, 0, 0, 0, time.UTC), appointment.StatusConfirmed)
	late := f.book(t, f.profA, f.exam, time.Date(2025, 6, 3, 2, 0, 0, 0, time.UTC), appointment.StatusCompleted)
	f.book(t, f.profB, f.consult, time.Date(2025, 6, 4, 12, 0, 0, 0, time.UTC), appointment.StatusPending)
	f.book(t, f.profB, f.consult, time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC), appointment.StatusCancelled)

	c := consultation.Consultation{ID: uuid.New(), AppointmentID: late.ID, AmountCents: 3000, Paid: true}
	require.NoError(t, f.store.CreateConsultation(context.Background(), &c))
}

func (f *fixture) service(opts ...report.Option) *report.Service {
	opts = append([]report.Option{report.WithClock(func() time.Time { return fixedAt })}, opts...)
	return report.NewService(f.store, f.store, clinic, logs.Discard(), opts...)
}

func TestPerDay_UsesClinicDays(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	svc := f.service()

	from := time.Date(2025, 6, 1, 0, 0, 0, 0, clinic)
	got, err := svc.PerDay(context.Background(), admin, report.Range{From: from, To: from.AddDate(0, 0, 7)})
	require.NoError(t, err)
	assert.Equal(t, []report.DayCount{
		{Day: "2025-06-02", Count: 2},
		{Day: "2025-06-04", Count: 1},
	}, got)

	_, err = svc.PerDay(context.Background(), admin, report.Range{From: from, To: from})
	assert.ErrorIs(t, err, report.ErrInvalidRange)
}

func TestPerStatus_AllStatusesPresent(t *testing.T) {
	f := newFixture(t)
	svc := f.service()

	empty, err := svc.PerStatus(context.Background(), admin, nil)
	require.NoError(t, err)
	require.Len(t, empty, len(appointment.Statuses))
	for _, c := range empty {
		assert.Zero(t, c.Count)
	}

	f.seed(t)
	got, err := svc.PerStatus(context.Background(), admin, nil)
	require.NoError(t, err)

	counts := make(map[appointment.Status]int)
	for _, c := range got {
		counts[c.Status] = c.Count
	}
	assert.Equal(t, map[appointment.Status]int{
		appointment.StatusPending:   1,
		appointment.StatusConfirmed: 1,
		appointment.StatusCancelled: 1,
		appointment.StatusCompleted: 1,
		appointment.StatusNoShow:    0,
	}, counts)
}

func TestRevenueForMonth(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	svc := f.service()
	ctx := context.Background()

	june, err := svc.RevenueForMonth(ctx, admin, 2025, time.June)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), june.ServiceCents)
	assert.Equal(t, int64(3000), june.PaidCents)
	assert.Equal(t, int64(13000), june.TotalCents)

	july, err := svc.RevenueForMonth(ctx, admin, 2025, time.July)
	require.NoError(t, err)
	assert.Zero(t, july.TotalCents)

	empty, err := svc.RevenueForMonth(ctx, admin, 2024, time.January)
	require.NoError(t, err)
	assert.Equal(t, report.Revenue{Year: 2024, Month: 1}, *empty)

	_, err = svc.RevenueForMonth(ctx, admin, 2025, 13)
	assert.ErrorIs(t, err, report.ErrInvalidMonth)
}

func TestRevenueForMonth_PaidConsultationReplacesPrice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.book(t, f.profA, f.consult, time.Date(2025, 6, 10, 13, 0, 0, 0, time.UTC), appointment.StatusCompleted)
	c := consultation.Consultation{ID: uuid.New(), AppointmentID: a.ID, AmountCents: 10000, Paid: true}
	require.NoError(t, f.store.CreateConsultation(ctx, &c))

	got, err := f.service().RevenueForMonth(ctx, admin, 2025, time.June)
	require.NoError(t, err)
	assert.Equal(t, report.Revenue{Year: 2025, Month: 6, PaidCents: 10000, TotalCents: 10000}, *got)
}

func TestTopRankings(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	svc := f.service()
	ctx := context.Background()

	from := time.Date(2025, 6, 1, 0, 0, 0, 0, clinic)
	june := &report.Range{From: from, To: from.AddDate(0, 1, 0)}

	profs, err := svc.TopProfessionals(ctx, admin, june, 0)
	require.NoError(t, err)
	require.Len(t, profs, 2)
	assert.Equal(t, report.Ranked{ID: f.profA.ID, Name: "Dr. A", Count: 2}, profs[0])
	assert.Equal(t, 1, profs[1].Count)

	services, err := svc.TopServices(ctx, admin, nil, 1)
	require.NoError(t, err)
	require.Len(t, services, 1)
	assert.Equal(t, report.Ranked{ID: f.consult.ID, Name: "Consult", Count: 3}, services[0])
}

func TestReports_AdminOnly(t *testing.T) {
	f := newFixture(t)
	svc := f.service()
	ctx := context.Background()
	patient := identity.Actor{ID: f.patient.ID, Role: identity.RolePatient}

	_, err := svc.Dashboard(ctx, patient)
	assert.ErrorIs(t, err, report.ErrForbidden)
	_, err = svc.PerStatus(ctx, patient, nil)
	assert.ErrorIs(t, err, report.ErrForbidden)
	_, err = svc.RevenueForMonth(ctx, patient, 2025, time.June)
	assert.ErrorIs(t, err, report.ErrForbidden)
	_, err = svc.WeekAgenda(ctx, patient, fixedAt)
	assert.ErrorIs(t, err, report.ErrForbidden)
}

func TestDashboard(t *testing.T) {
	f := newFixture(t)
	f.seed(t)

	d, err := f.service().Dashboard(context.Background(), admin)
	require.NoError(t, err)
	assert.Equal(t, 1, d.Today)
	assert.Equal(t, 3, d.Week)
	assert.Equal(t, 3, d.Month)
	assert.Equal(t, report.Totals{Patients: 1, Professionals: 2, Services: 2}, d.Totals)
	assert.Equal(t, int64(13000), d.Revenue.TotalCents)
	assert.Len(t, d.PerStatus, len(appointment.Statuses))
	require.NotEmpty(t, d.TopServices)
	assert.Equal(t, f.consult.ID, d.TopServices[0].ID)
}

func TestDashboard_Cached(t *testing.T) {
	f := newFixture(t)
	f.seed(t)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	svc := f.service(report.WithCache(redisclient.NewJSONCache(rdb, "pulse:"), time.Minute))
	ctx := context.Background()

	first, err := svc.Dashboard(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Today)
	assert.True(t, mr.Exists("pulse:dashboard:2025-06-04"))

	f.book(t, f.profA, f.consult, time.Date(2025, 6, 4, 18, 0, 0, 0, time.UTC), appointment.StatusPending)

	cached, err := svc.Dashboard(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, 1, cached.Today)

	mr.FastForward(2 * time.Minute)

	fresh, err := svc.Dashboard(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, 2, fresh.Today)
}

type brokenCache struct{}

func (brokenCache) Get(context.Context, string, any) error {
	return errors.New("connection refused")
}

func (brokenCache) Set(context.Context, string, any, time.Duration) error {
	return errors.New("connection refused")
}

func TestDashboard_CacheFailureFallsBack(t *testing.T) {
	f := newFixture(t)
	f.seed(t)

	d, err := f.service(report.WithCache(brokenCache{}, time.Minute)).Dashboard(context.Background(), admin)
	require.NoError(t, err)
	assert.Equal(t, 3, d.Week)
}

func TestWeekAgenda(t *testing.T) {
	f := newFixture(t)
	f.seed(t)

	agenda, err := f.service().WeekAgenda(context.Background(), admin, time.Date(2025, 6, 4, 9, 0, 0, 0, clinic))
	require.NoError(t, err)
	assert.Equal(t, "2025-06-02", agenda.WeekStart)
	require.Len(t, agenda.Days, 7)

	assert.Equal(t, "2025-06-02", agenda.Days[0].Date)
	require.Len(t, agenda.Days[0].Appointments, 2)
	assert.True(t, agenda.Days[0].Appointments[0].ScheduledAt.Before(agenda.Days[0].Appointments[1].ScheduledAt))
	assert.Empty(t, agenda.Days[1].Appointments)
	assert.Len(t, agenda.Days[2].Appointments, 1)
	assert.Equal(t, "2025-06-08", agenda.Days[6].Date)
}

func TestWeekStart(t *testing.T) {
	sunday := time.Date(2025, 6, 8, 22, 30, 0, 0, clinic)
	assert.Equal(t, time.Date(2025, 6, 2, 0, 0, 0, 0, clinic), report.WeekStart(sunday))

	monday := time.Date(2025, 6, 2, 0, 0, 0, 0, clinic)
	assert.Equal(t, monday, report.WeekStart(monday))
}
