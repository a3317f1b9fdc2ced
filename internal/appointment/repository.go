package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/okingsaam/Pulse/internal/rejection"
)

var (
	ErrAppointmentNotFound = rejection.New(rejection.NotFound, "appointment not found")
	ErrSlotTaken           = rejection.New(rejection.SlotTaken, "the professional already has an appointment at this time")
	ErrReferenceNotFound   = rejection.New(rejection.NotFound, "patient, professional or service no longer exists")
)

// Repository contains all storage interactions needed by the service.
type Repository interface {
	// CreateAppointment returns ErrSlotTaken when another non-cancelled
	// appointment holds (professional, scheduled instant).
	CreateAppointment(ctx context.Context, a *Appointment) error
	GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	GetAppointmentDetail(ctx context.Context, id uuid.UUID) (*Detail, error)
	SlotTaken(ctx context.Context, professionalID uuid.UUID, at time.Time) (bool, error)

	// UpdateAppointmentStatus moves id from one status to another and returns
	// ErrAppointmentNotFound when the row is missing or no longer in from.
	UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, from, to Status) (*Appointment, error)

	ListAppointments(ctx context.Context, f Filter) ([]Detail, error)
	DeleteAppointment(ctx context.Context, id uuid.UUID) error

	InsertEvent(ctx context.Context, ev EventLog) error
}
