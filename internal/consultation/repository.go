package consultation

import (
	"context"

	"github.com/google/uuid"

	"github.com/okingsaam/Pulse/internal/rejection"
)

var (
	ErrConsultationNotFound = rejection.New(rejection.NotFound, "consultation not found")
	ErrAlreadyRecorded      = rejection.New(rejection.Conflict, "appointment already has a consultation")
)

type Repository interface {
	CreateConsultation(ctx context.Context, c *Consultation) error
	GetConsultationByID(ctx context.Context, id uuid.UUID) (*Consultation, error)
	GetConsultationByAppointment(ctx context.Context, appointmentID uuid.UUID) (*Consultation, error)
	UpdateConsultation(ctx context.Context, c *Consultation) error
}
