package consultation_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okingsaam/Pulse/internal/appointment"
	"github.com/okingsaam/Pulse/internal/catalog"
	"github.com/okingsaam/Pulse/internal/consultation"
	"github.com/okingsaam/Pulse/internal/identity"
	"github.com/okingsaam/Pulse/internal/logs"
	"github.com/okingsaam/Pulse/internal/memstore"
	"github.com/okingsaam/Pulse/internal/rejection"
)

var admin = identity.Actor{ID: uuid.New(), Role: identity.RoleAdmin}

type fixture struct {
	store   *memstore.Store
	svc     *consultation.Service
	patient identity.Person
	doctor  identity.Person
	prof    catalog.Professional
	appt    appointment.Appointment
}

func newFixture(t *testing.T, status appointment.Status) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{store: memstore.New()}

	f.patient = identity.Person{ID: uuid.New(), Name: "Ana", Role: identity.RolePatient, Active: true}
	f.doctor = identity.Person{ID: uuid.New(), Name: "Lima", Role: identity.RoleProfessional, Active: true}
	require.NoError(t, f.store.CreatePerson(ctx, &f.patient))
	require.NoError(t, f.store.CreatePerson(ctx, &f.doctor))

	f.prof = catalog.Professional{ID: uuid.New(), Name: "Dr. Lima", Specialty: "Cardiology", Active: true, PersonID: &f.doctor.ID}
	require.NoError(t, f.store.CreateProfessional(ctx, &f.prof))

	svc := catalog.Service{ID: uuid.New(), Name: "Checkup", PriceCents: 20000, Duration: time.Hour, Active: true}
	require.NoError(t, f.store.CreateService(ctx, &svc))

	f.appt = appointment.Appointment{
		ID:             uuid.New(),
		PatientID:      f.patient.ID,
		ProfessionalID: f.prof.ID,
		ServiceID:      svc.ID,
		ScheduledAt:    time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		Status:         status,
	}
	require.NoError(t, f.store.CreateAppointment(ctx, &f.appt))

	f.svc = consultation.NewService(f.store, f.store, f.store, logs.Discard())
	return f
}

func TestRecord(t *testing.T) {
	f := newFixture(t, appointment.StatusCompleted)
	ctx := context.Background()
	doctor := identity.Actor{ID: f.doctor.ID, Role: identity.RoleProfessional}

	c, err := f.svc.Record(ctx, doctor, f.appt.ID, consultation.Input{
		Symptoms:    "chest pain",
		Diagnosis:   "angina",
		AmountCents: 25000,
	})
	require.NoError(t, err)
	assert.Equal(t, f.appt.ID, c.AppointmentID)
	assert.False(t, c.Paid)

	_, err = f.svc.Record(ctx, admin, f.appt.ID, consultation.Input{})
	assert.ErrorIs(t, err, consultation.ErrAlreadyRecorded)
	assert.True(t, rejection.Is(err, rejection.Conflict))
}

func TestRecord_Rules(t *testing.T) {
	ctx := context.Background()

	pending := newFixture(t, appointment.StatusConfirmed)
	_, err := pending.svc.Record(ctx, admin, pending.appt.ID, consultation.Input{})
	assert.ErrorIs(t, err, consultation.ErrNotCompleted)

	f := newFixture(t, appointment.StatusCompleted)
	_, err = f.svc.Record(ctx, admin, f.appt.ID, consultation.Input{AmountCents: -1})
	assert.ErrorIs(t, err, consultation.ErrNegativeAmount)

	_, err = f.svc.Record(ctx, admin, uuid.New(), consultation.Input{})
	assert.True(t, rejection.Is(err, rejection.NotFound))

	_, err = f.svc.Record(ctx, identity.Actor{ID: f.patient.ID, Role: identity.RolePatient}, f.appt.ID, consultation.Input{})
	assert.ErrorIs(t, err, consultation.ErrForbidden)

	_, err = f.svc.Record(ctx, identity.Actor{ID: uuid.New(), Role: identity.RoleProfessional}, f.appt.ID, consultation.Input{})
	assert.ErrorIs(t, err, consultation.ErrForbidden)
}

func TestGet_PatientCanRead(t *testing.T) {
	f := newFixture(t, appointment.StatusCompleted)
	ctx := context.Background()

	_, err := f.svc.Record(ctx, admin, f.appt.ID, consultation.Input{Diagnosis: "flu"})
	require.NoError(t, err)

	c, err := f.svc.Get(ctx, identity.Actor{ID: f.patient.ID, Role: identity.RolePatient}, f.appt.ID)
	require.NoError(t, err)
	assert.Equal(t, "flu", c.Diagnosis)

	_, err = f.svc.Get(ctx, identity.Actor{ID: uuid.New(), Role: identity.RolePatient}, f.appt.ID)
	assert.ErrorIs(t, err, consultation.ErrForbidden)
}

func TestUpdateAndMarkPaid(t *testing.T) {
	f := newFixture(t, appointment.StatusCompleted)
	ctx := context.Background()

	c, err := f.svc.Record(ctx, admin, f.appt.ID, consultation.Input{AmountCents: 1000})
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, admin, c.ID, consultation.Input{Treatment: "rest", AmountCents: 1500})
	require.NoError(t, err)
	assert.Equal(t, "rest", updated.Treatment)
	assert.Equal(t, int64(1500), updated.AmountCents)

	_, err = f.svc.Update(ctx, admin, c.ID, consultation.Input{AmountCents: -5})
	assert.ErrorIs(t, err, consultation.ErrNegativeAmount)

	paid, err := f.svc.MarkPaid(ctx, admin, c.ID, true)
	require.NoError(t, err)
	assert.True(t, paid.Paid)

	stored, err := f.store.GetConsultationByID(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, stored.Paid)
	assert.Equal(t, int64(1500), stored.AmountCents)

	_, err = f.svc.MarkPaid(ctx, identity.Actor{ID: f.patient.ID, Role: identity.RolePatient}, c.ID, false)
	assert.ErrorIs(t, err, consultation.ErrForbidden)
}
