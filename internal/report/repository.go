package report

import (
	"context"
	"time"

	"github.com/okingsaam/Pulse/internal/appointment"
)

// Repository runs the read-only aggregations. Empty inputs produce zero values,
// never errors.
type Repository interface {
	CountAppointments(ctx context.Context, r Range) (int, error)
	CountByDay(ctx context.Context, r Range, loc *time.Location) ([]DayCount, error)
	CountByStatus(ctx context.Context, r *Range) ([]StatusCount, error)
	// ServiceRevenue sums service prices of confirmed and completed
	// appointments that have no paid consultation.
	ServiceRevenue(ctx context.Context, r Range) (int64, error)
	// PaidConsultationRevenue sums amounts of paid consultations by appointment time.
	PaidConsultationRevenue(ctx context.Context, r Range) (int64, error)
	TopProfessionals(ctx context.Context, r *Range, n int) ([]Ranked, error)
	TopServices(ctx context.Context, r *Range, n int) ([]Ranked, error)
	Totals(ctx context.Context) (Totals, error)
}

// AppointmentLister is the appointment query used by the agenda view.
type AppointmentLister interface {
	ListAppointments(ctx context.Context, f appointment.Filter) ([]appointment.Detail, error)
}
