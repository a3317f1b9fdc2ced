package consultation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/okingsaam/Pulse/internal/appointment"
	"github.com/okingsaam/Pulse/internal/catalog"
	"github.com/okingsaam/Pulse/internal/identity"
	"github.com/okingsaam/Pulse/internal/rejection"
)

var (
	ErrForbidden      = rejection.New(rejection.Forbidden, "not allowed to access this consultation")
	ErrNotCompleted   = rejection.New(rejection.Validation, "consultations can only be recorded for completed appointments")
	ErrNegativeAmount = rejection.New(rejection.Validation, "amount must not be negative")
)

type AppointmentReader interface {
	GetAppointmentByID(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error)
}

type ProfessionalReader interface {
	GetProfessionalByPersonID(ctx context.Context, personID uuid.UUID) (*catalog.Professional, error)
}

type Service struct {
	repo          Repository
	appointments  AppointmentReader
	professionals ProfessionalReader
	logger        *slog.Logger
}

func NewService(repo Repository, appts AppointmentReader, profs ProfessionalReader, logger *slog.Logger) *Service {
	return &Service{
		repo:          repo,
		appointments:  appts,
		professionals: profs,
		logger:        logger,
	}
}

// Record attaches the clinical record to a completed appointment. Each
// appointment has at most one.
func (s *Service) Record(ctx context.Context, actor identity.Actor, appointmentID uuid.UUID, in Input) (*Consultation, error) {
	appt, err := s.appointments.GetAppointmentByID(ctx, appointmentID)
	if err != nil {
		return nil, passRejection(err, "load appointment")
	}
	if !s.canWrite(ctx, actor, appt) {
		return nil, ErrForbidden
	}
	if appt.Status != appointment.StatusCompleted {
		return nil, ErrNotCompleted
	}
	if in.AmountCents < 0 {
		return nil, ErrNegativeAmount
	}

	c := &Consultation{ID: uuid.New(), AppointmentID: appt.ID}
	apply(c, in)

	if err := s.repo.CreateConsultation(ctx, c); err != nil {
		return nil, passRejection(err, "create consultation")
	}

	s.logger.Info("consultation recorded",
		slog.String("consultation_id", c.ID.String()),
		slog.String("appointment_id", appt.ID.String()),
		slog.Int64("amount_cents", c.AmountCents),
	)
	return c, nil
}

// Get returns the consultation of an appointment. The patient of the
// appointment may read it too.
func (s *Service) Get(ctx context.Context, actor identity.Actor, appointmentID uuid.UUID) (*Consultation, error) {
	appt, err := s.appointments.GetAppointmentByID(ctx, appointmentID)
	if err != nil {
		return nil, passRejection(err, "load appointment")
	}
	if !actor.Is(appt.PatientID) && !s.canWrite(ctx, actor, appt) {
		return nil, ErrForbidden
	}
	return s.repo.GetConsultationByAppointment(ctx, appointmentID)
}

func (s *Service) Update(ctx context.Context, actor identity.Actor, id uuid.UUID, in Input) (*Consultation, error) {
	if in.AmountCents < 0 {
		return nil, ErrNegativeAmount
	}

	c, err := s.loadForWrite(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	apply(c, in)

	if err := s.repo.UpdateConsultation(ctx, c); err != nil {
		return nil, passRejection(err, "update consultation")
	}
	return c, nil
}

func (s *Service) MarkPaid(ctx context.Context, actor identity.Actor, id uuid.UUID, paid bool) (*Consultation, error) {
	c, err := s.loadForWrite(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if c.Paid == paid {
		return c, nil
	}

	c.Paid = paid
	if err := s.repo.UpdateConsultation(ctx, c); err != nil {
		return nil, passRejection(err, "update consultation")
	}

	s.logger.Info("consultation payment updated", slog.String("consultation_id", c.ID.String()), slog.Bool("paid", paid))
	return c, nil
}

func (s *Service) loadForWrite(ctx context.Context, actor identity.Actor, id uuid.UUID) (*Consultation, error) {
	c, err := s.repo.GetConsultationByID(ctx, id)
	if err != nil {
		return nil, passRejection(err, "load consultation")
	}
	appt, err := s.appointments.GetAppointmentByID(ctx, c.AppointmentID)
	if err != nil {
		return nil, passRejection(err, "load appointment")
	}
	if !s.canWrite(ctx, actor, appt) {
		return nil, ErrForbidden
	}
	return c, nil
}

func (s *Service) canWrite(ctx context.Context, actor identity.Actor, appt *appointment.Appointment) bool {
	switch actor.Role {
	case identity.RoleAdmin:
		return true
	case identity.RoleProfessional:
		prof, err := s.professionals.GetProfessionalByPersonID(ctx, actor.ID)
		if err != nil {
			if !errors.Is(err, catalog.ErrProfessionalNotFound) {
				s.logger.Error("load professional for actor", slog.String("actor_id", actor.ID.String()), slog.Any("error", err))
			}
			return false
		}
		return prof.ID == appt.ProfessionalID
	case identity.RolePatient, identity.RoleUnknown:
	}
	return false
}

func apply(c *Consultation, in Input) {
	c.Symptoms = strings.TrimSpace(in.Symptoms)
	c.Diagnosis = strings.TrimSpace(in.Diagnosis)
	c.Treatment = strings.TrimSpace(in.Treatment)
	c.Prescription = strings.TrimSpace(in.Prescription)
	c.Notes = strings.TrimSpace(in.Notes)
	c.AmountCents = in.AmountCents
}

func passRejection(err error, op string) error {
	if _, ok := rejection.ReasonOf(err); ok {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}
