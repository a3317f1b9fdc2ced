package memstore

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
	"github.com/okingsaam/Pulse/internal/report"
)

type world struct {
	store   *Store
	patient identity.Person
	prof    catalog.Professional
	svc     catalog.Service
}

func newWorld(t *testing.T) *world {
	t.Helper()
	ctx := context.Background()
	w := &world{store: New()}

	w.patient = identity.Person{ID: uuid.New(), Name: "Ana", Role: identity.RolePatient, Active: true}
	require.NoError(t, w.store.CreatePerson(ctx, &w.patient))

	w.prof = catalog.Professional{ID: uuid.New(), Name: "Dr. Lima", Specialty: "Cardiology", Active: true}
	require.NoError(t, w.store.CreateProfessional(ctx, &w.prof))

	w.svc = catalog.Service{ID: uuid.New(), Name: "Checkup", PriceCents: 15000, Duration: time.Hour, ProfessionalID: &w.prof.ID, Active: true}
	require.NoError(t, w.store.CreateService(ctx, &w.svc))
	return w
}

func (w *world) book(t *testing.T, at time.Time, status appointment.Status) appointment.Appointment {
	t.Helper()
	a := appointment.Appointment{
		ID:             uuid.New(),
		PatientID:      w.patient.ID,
		ProfessionalID: w.prof.ID,
		ServiceID:      w.svc.ID,
		ScheduledAt:    at,
		Status:         status,
	}
	require.NoError(t, w.store.CreateAppointment(context.Background(), &a))
	return a
}

func TestStore_SlotUniqueness(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	at := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	first := w.book(t, at, appointment.StatusPending)

	dup := appointment.Appointment{ID: uuid.New(), PatientID: w.patient.ID, ProfessionalID: w.prof.ID, ServiceID: w.svc.ID, ScheduledAt: at, Status: appointment.StatusPending}
	assert.ErrorIs(t, w.store.CreateAppointment(ctx, &dup), appointment.ErrSlotTaken)

	taken, err := w.store.SlotTaken(ctx, w.prof.ID, at)
	require.NoError(t, err)
	assert.True(t, taken)

	_, err = w.store.UpdateAppointmentStatus(ctx, first.ID, appointment.StatusPending, appointment.StatusCancelled)
	require.NoError(t, err)

	taken, err = w.store.SlotTaken(ctx, w.prof.ID, at)
	require.NoError(t, err)
	assert.False(t, taken)
	assert.NoError(t, w.store.CreateAppointment(ctx, &dup))
}

func TestStore_UpdateStatusRequiresCurrentStatus(t *testing.T) {
	w := newWorld(t)
	a := w.book(t, time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC), appointment.StatusPending)

	_, err := w.store.UpdateAppointmentStatus(context.Background(), a.ID, appointment.StatusConfirmed, appointment.StatusCompleted)
	assert.ErrorIs(t, err, appointment.ErrAppointmentNotFound)
}

func TestStore_DeleteProfessionalCascades(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	a := w.book(t, time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC), appointment.StatusCompleted)
	c := consultation.Consultation{ID: uuid.New(), AppointmentID: a.ID, AmountCents: 100}
	require.NoError(t, w.store.CreateConsultation(ctx, &c))

	require.NoError(t, w.store.DeleteProfessional(ctx, w.prof.ID))

	_, err := w.store.GetServiceByID(ctx, w.svc.ID)
	assert.ErrorIs(t, err, catalog.ErrServiceNotFound)
	_, err = w.store.GetAppointmentByID(ctx, a.ID)
	assert.ErrorIs(t, err, appointment.ErrAppointmentNotFound)
	_, err = w.store.GetConsultationByID(ctx, c.ID)
	assert.ErrorIs(t, err, consultation.ErrConsultationNotFound)

	taken, err := w.store.SlotTaken(ctx, w.prof.ID, a.ScheduledAt)
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestStore_DeletePersonCascadesAndUnlinks(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	doctor := identity.Person{ID: uuid.New(), Name: "Lima", Role: identity.RoleProfessional, Active: true}
	require.NoError(t, w.store.CreatePerson(ctx, &doctor))
	w.prof.PersonID = &doctor.ID
	require.NoError(t, w.store.UpdateProfessional(ctx, &w.prof))

	a := w.book(t, time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC), appointment.StatusPending)

	require.NoError(t, w.store.DeletePerson(ctx, w.patient.ID))
	_, err := w.store.GetAppointmentByID(ctx, a.ID)
	assert.ErrorIs(t, err, appointment.ErrAppointmentNotFound)

	require.NoError(t, w.store.DeletePerson(ctx, doctor.ID))
	prof, err := w.store.GetProfessionalByID(ctx, w.prof.ID)
	require.NoError(t, err)
	assert.Nil(t, prof.PersonID)
}

func TestStore_UniqueKeys(t *testing.T) {
	s := New()
	ctx := context.Background()

	doc := "12345678901"
	require.NoError(t, s.CreatePerson(ctx, &identity.Person{ID: uuid.New(), Name: "A", DocumentID: &doc, Role: identity.RolePatient}))
	assert.ErrorIs(t, s.CreatePerson(ctx, &identity.Person{ID: uuid.New(), Name: "B", DocumentID: &doc, Role: identity.RolePatient}), identity.ErrDuplicateDocument)

	license := "CRM-1"
	require.NoError(t, s.CreateProfessional(ctx, &catalog.Professional{ID: uuid.New(), Name: "A", LicenseID: &license}))
	assert.ErrorIs(t, s.CreateProfessional(ctx, &catalog.Professional{ID: uuid.New(), Name: "B", LicenseID: &license}), catalog.ErrDuplicateLicense)

	missing := uuid.New()
	assert.ErrorIs(t, s.CreateProfessional(ctx, &catalog.Professional{ID: uuid.New(), Name: "C", PersonID: &missing}), identity.ErrPersonNotFound)
}

func TestStore_ListAppointmentsOrderAndPaging(t *testing.T) {
	w := newWorld(t)
	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	for i := 3; i >= 0; i-- {
		w.book(t, base.Add(time.Duration(i)*time.Hour), appointment.StatusPending)
	}

	list, err := w.store.ListAppointments(context.Background(), appointment.Filter{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, base.Add(time.Hour), list[0].ScheduledAt)
	assert.Equal(t, base.Add(2*time.Hour), list[1].ScheduledAt)
	assert.Equal(t, "Ana", list[0].PatientName)
	assert.Equal(t, int64(15000), list[0].PriceCents)
}

func TestStore_Revenue(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	june := report.Range{
		From: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
	}

	w.book(t, time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC), appointment.StatusConfirmed)
	done := w.book(t, time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC), appointment.StatusCompleted)
	w.book(t, time.Date(2025, 6, 4, 9, 0, 0, 0, time.UTC), appointment.StatusPending)
	w.book(t, time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC), appointment.StatusConfirmed)

	require.NoError(t, w.store.CreateConsultation(ctx, &consultation.Consultation{ID: uuid.New(), AppointmentID: done.ID, AmountCents: 5000, Paid: true}))

	cents, err := w.store.ServiceRevenue(ctx, june)
	require.NoError(t, err)
	assert.Equal(t, int64(15000), cents, "the paid appointment is not also counted by price")

	paid, err := w.store.PaidConsultationRevenue(ctx, june)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), paid)
}
