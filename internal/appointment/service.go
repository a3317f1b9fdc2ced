package appointment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okingsaam/Pulse/internal/catalog"
	"github.com/okingsaam/Pulse/internal/config"
	"github.com/okingsaam/Pulse/internal/identity"
	"github.com/okingsaam/Pulse/internal/metrics"
	redisclient "github.com/okingsaam/Pulse/internal/redis"
	"github.com/okingsaam/Pulse/internal/rejection"
)

const (
	EventAppointmentCreated = "APPOINTMENT_CREATED"
	EventAppointmentDeleted = "APPOINTMENT_DELETED"
)

var (
	ErrPastDate          = rejection.New(rejection.PastDate, "appointment time is in the past")
	ErrTooFarFuture      = rejection.New(rejection.TooFarFuture, "appointment time is beyond the booking horizon")
	ErrInvalidTransition = rejection.New(rejection.InvalidTransition, "status change not allowed")
	ErrForbidden         = rejection.New(rejection.Forbidden, "not allowed to act on this appointment")
	ErrNotPatient        = rejection.New(rejection.Validation, "appointments can only be booked for patients")
	ErrPatientInactive   = rejection.New(rejection.Validation, "patient is inactive")
	ErrProfessionalOff   = rejection.New(rejection.Validation, "professional is not taking appointments")
	ErrServiceOff        = rejection.New(rejection.Validation, "service is not available")
	ErrServiceMismatch   = rejection.New(rejection.Validation, "service is not offered by this professional")
)

type PersonReader interface {
	GetPersonByID(ctx context.Context, id uuid.UUID) (*identity.Person, error)
}

type CatalogReader interface {
	GetProfessionalByID(ctx context.Context, id uuid.UUID) (*catalog.Professional, error)
	GetProfessionalByPersonID(ctx context.Context, personID uuid.UUID) (*catalog.Professional, error)
	GetServiceByID(ctx context.Context, id uuid.UUID) (*catalog.Service, error)
}

type Service struct {
	repo    Repository
	persons PersonReader
	catalog CatalogReader
	locker  redisclient.Locker
	horizon time.Duration
	now     func() time.Time
	logger  *slog.Logger
}

type Option func(*Service)

// WithClock replaces the wall clock used for the past/horizon checks.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo Repository, persons PersonReader, cat CatalogReader, locker redisclient.Locker, cfg config.Config, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		repo:    repo,
		persons: persons,
		catalog: cat,
		locker:  locker,
		horizon: cfg.BookingHorizon,
		now:     time.Now,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Book creates a pending appointment for a patient with a professional at an
// exact instant. At most one non-cancelled appointment may hold a
// (professional, instant) slot; the Redis lock serializes concurrent attempts
// and the storage constraint has the final word. A caller that finds the lock
// held goes to storage directly, so it only gets SLOT_TAKEN when the slot is
// really stored as taken.
func (s *Service) Book(ctx context.Context, actor identity.Actor, in BookInput) (*Appointment, error) {
	appt, err := s.book(ctx, actor, in)
	metrics.BookingsTotal.WithLabelValues(metrics.Outcome(err)).Inc()
	return appt, err
}

func (s *Service) book(ctx context.Context, actor identity.Actor, in BookInput) (*Appointment, error) {
	when := in.When.UTC()
	now := s.now().UTC()

	if when.Before(now) {
		return nil, ErrPastDate
	}
	if when.After(now.Add(s.horizon)) {
		return nil, ErrTooFarFuture
	}

	switch actor.Role {
	case identity.RoleAdmin:
	case identity.RolePatient:
		if !actor.Is(in.PatientID) {
			return nil, ErrForbidden
		}
	case identity.RoleProfessional, identity.RoleUnknown:
		return nil, ErrForbidden
	}

	patient, err := s.persons.GetPersonByID(ctx, in.PatientID)
	if err != nil {
		return nil, passRejection(err, "load patient")
	}
	if patient.Role != identity.RolePatient {
		return nil, ErrNotPatient
	}
	if !patient.Active {
		return nil, ErrPatientInactive
	}

	prof, err := s.catalog.GetProfessionalByID(ctx, in.ProfessionalID)
	if err != nil {
		return nil, passRejection(err, "load professional")
	}
	svc, err := s.catalog.GetServiceByID(ctx, in.ServiceID)
	if err != nil {
		return nil, passRejection(err, "load service")
	}
	if svc.ProfessionalID != nil && *svc.ProfessionalID != prof.ID {
		return nil, ErrServiceMismatch
	}
	if !prof.Active {
		return nil, ErrProfessionalOff
	}
	if !svc.Active {
		return nil, ErrServiceOff
	}

	// Slots are stored at second precision.
	when = when.Truncate(time.Second)
	appt := &Appointment{
		ID:             uuid.New(),
		PatientID:      patient.ID,
		ProfessionalID: prof.ID,
		ServiceID:      svc.ID,
		ScheduledAt:    when,
		Status:         StatusPending,
		Notes:          strings.TrimSpace(in.Notes),
	}

	err = s.locker.WithSlotLock(ctx, prof.ID, when, func(lockCtx context.Context) error {
		return s.insert(lockCtx, appt)
	})
	switch {
	case errors.Is(err, redisclient.ErrLockUnavailable):
		s.logger.Warn("slot lock unavailable, relying on storage constraint",
			slog.String("professional_id", prof.ID.String()),
			slog.Any("error", err),
		)
		metrics.LockDegradedTotal.Inc()
		err = s.insert(ctx, appt)
	case errors.Is(err, redisclient.ErrLockNotAcquired):
		// The holder may still fail; storage decides.
		err = s.insert(ctx, appt)
	}
	if err != nil {
		return nil, err
	}

	s.logEvent(ctx, appt.ID, EventAppointmentCreated, map[string]any{
		"patient_id":      appt.PatientID.String(),
		"professional_id": appt.ProfessionalID.String(),
		"service_id":      appt.ServiceID.String(),
		"scheduled_at":    appt.ScheduledAt,
		"actor_id":        actor.ID.String(),
	})
	return appt, nil
}

func (s *Service) insert(ctx context.Context, appt *Appointment) error {
	taken, err := s.repo.SlotTaken(ctx, appt.ProfessionalID, appt.ScheduledAt)
	if err != nil {
		return err
	}
	if taken {
		return ErrSlotTaken
	}
	if err := s.repo.CreateAppointment(ctx, appt); err != nil {
		if _, ok := rejection.ReasonOf(err); ok {
			return err
		}
		return fmt.Errorf("create appointment: %w", err)
	}
	return nil
}

// Transition moves an appointment along one allowed status edge.
func (s *Service) Transition(ctx context.Context, actor identity.Actor, id uuid.UUID, to Status) (*Appointment, error) {
	appt, err := s.transition(ctx, actor, id, to)
	metrics.TransitionsTotal.WithLabelValues(string(to), metrics.Outcome(err)).Inc()
	return appt, err
}

func (s *Service) transition(ctx context.Context, actor identity.Actor, id uuid.UUID, to Status) (*Appointment, error) {
	appt, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		return nil, passRejection(err, "load appointment")
	}

	if !s.mayTransition(ctx, actor, appt) {
		return nil, ErrForbidden
	}
	if !CanTransition(appt.Status, to) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, appt.Status, to)
	}
	// Patients may only cancel their own appointments.
	if actor.Role == identity.RolePatient && to != StatusCancelled {
		return nil, ErrForbidden
	}

	updated, err := s.repo.UpdateAppointmentStatus(ctx, id, appt.Status, to)
	if err != nil {
		if !errors.Is(err, ErrAppointmentNotFound) {
			return nil, fmt.Errorf("update appointment status: %w", err)
		}
		// Either deleted or moved by someone else since it was read.
		current, getErr := s.repo.GetAppointmentByID(ctx, id)
		if getErr != nil {
			return nil, passRejection(getErr, "reload appointment")
		}
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, current.Status, to)
	}

	s.logEvent(ctx, updated.ID, "APPOINTMENT_"+strings.ToUpper(string(to)), map[string]any{
		"from":     string(appt.Status),
		"to":       string(to),
		"actor_id": actor.ID.String(),
	})
	return updated, nil
}

// mayTransition reports whether actor may change the status of appt at all:
// admins, the linked professional and the appointment's own patient.
func (s *Service) mayTransition(ctx context.Context, actor identity.Actor, appt *Appointment) bool {
	switch actor.Role {
	case identity.RoleAdmin:
		return true
	case identity.RoleProfessional:
		return s.ownsCalendar(ctx, actor, appt.ProfessionalID)
	case identity.RolePatient:
		return actor.Is(appt.PatientID)
	case identity.RoleUnknown:
	}
	return false
}

// BulkTransition applies Transition to each id independently. One failing
// item does not stop or undo the others.
func (s *Service) BulkTransition(ctx context.Context, actor identity.Actor, ids []uuid.UUID, to Status) BulkResult {
	res := BulkResult{Items: make([]ItemResult, 0, len(ids))}
	for _, id := range ids {
		item := ItemResult{ID: id}
		appt, err := s.Transition(ctx, actor, id, to)
		if err != nil {
			item.Err = err
			res.Failed++
		} else {
			item.Status = appt.Status
			res.Affected++
		}
		res.Items = append(res.Items, item)
	}
	return res
}

func (s *Service) Get(ctx context.Context, actor identity.Actor, id uuid.UUID) (*Detail, error) {
	detail, err := s.repo.GetAppointmentDetail(ctx, id)
	if err != nil {
		return nil, passRejection(err, "get appointment")
	}

	switch actor.Role {
	case identity.RoleAdmin:
		return detail, nil
	case identity.RolePatient:
		if actor.Is(detail.PatientID) {
			return detail, nil
		}
	case identity.RoleProfessional:
		if s.ownsCalendar(ctx, actor, detail.ProfessionalID) {
			return detail, nil
		}
	case identity.RoleUnknown:
	}
	return nil, ErrForbidden
}

// List returns appointments matching f, restricted to what the actor may see:
// admins see everything, patients their own, professionals their calendar.
func (s *Service) List(ctx context.Context, actor identity.Actor, f Filter) ([]Detail, error) {
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		f.Limit = 100
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	switch actor.Role {
	case identity.RoleAdmin:
	case identity.RolePatient:
		f.PatientID = &actor.ID
	case identity.RoleProfessional:
		prof, err := s.catalog.GetProfessionalByPersonID(ctx, actor.ID)
		if err != nil {
			if errors.Is(err, catalog.ErrProfessionalNotFound) {
				return nil, ErrForbidden
			}
			return nil, fmt.Errorf("load professional: %w", err)
		}
		f.ProfessionalID = &prof.ID
	case identity.RoleUnknown:
		return nil, ErrForbidden
	}

	list, err := s.repo.ListAppointments(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return list, nil
}

// Delete removes an appointment and its consultation.
func (s *Service) Delete(ctx context.Context, actor identity.Actor, id uuid.UUID) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	if err := s.repo.DeleteAppointment(ctx, id); err != nil {
		return passRejection(err, "delete appointment")
	}

	s.logEvent(ctx, uuid.Nil, EventAppointmentDeleted, map[string]any{
		"appointment_id": id.String(),
		"actor_id":       actor.ID.String(),
	})
	return nil
}

func (s *Service) ownsCalendar(ctx context.Context, actor identity.Actor, professionalID uuid.UUID) bool {
	prof, err := s.catalog.GetProfessionalByPersonID(ctx, actor.ID)
	if err != nil {
		if !errors.Is(err, catalog.ErrProfessionalNotFound) {
			s.logger.Error("load professional for actor", slog.String("actor_id", actor.ID.String()), slog.Any("error", err))
		}
		return false
	}
	return prof.ID == professionalID
}

// logEvent writes an audit row. A nil appointment id is stored as NULL so the
// row outlives a deleted appointment.
func (s *Service) logEvent(ctx context.Context, appointmentID uuid.UUID, eventType string, payload map[string]any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("marshal event payload", slog.String("event", eventType), slog.Any("error", err))
		data = nil
	}

	ev := EventLog{
		EventType: eventType,
		Payload:   data,
		CreatedAt: s.now().UTC(),
	}
	if appointmentID != uuid.Nil {
		ev.AppointmentID = &appointmentID
	}

	if err := s.repo.InsertEvent(ctx, ev); err != nil {
		s.logger.Error("insert event log",
			slog.String("event", eventType),
			slog.String("appointment_id", appointmentID.String()),
			slog.Any("error", err),
		)
	}
}

// passRejection returns domain rejections unchanged and wraps anything else.
func passRejection(err error, op string) error {
	if _, ok := rejection.ReasonOf(err); ok {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}
