package report

import (
	"time"

	"github.com/google/uuid"

	"github.com/okingsaam/Pulse/internal/appointment"
)

// Range is a half-open interval of instants [From, To).
type Range struct {
	From time.Time
	To   time.Time
}

type DayCount struct {
	Day   string `json:"day"` // clinic-local YYYY-MM-DD
	Count int    `json:"count"`
}

type StatusCount struct {
	Status appointment.Status `json:"status"`
	Count  int                `json:"count"`
}

type Ranked struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Count int       `json:"count"`
}

type Totals struct {
	Patients      int `json:"patients"`
	Professionals int `json:"professionals"`
	Services      int `json:"services"`
}

type Revenue struct {
	Year         int   `json:"year"`
	Month        int   `json:"month"`
	ServiceCents int64 `json:"service_cents"`
	PaidCents    int64 `json:"paid_consultation_cents"`
	TotalCents   int64 `json:"total_cents"`
}

type Dashboard struct {
	GeneratedAt      time.Time     `json:"generated_at"`
	Today            int           `json:"appointments_today"`
	Week             int           `json:"appointments_week"`
	Month            int           `json:"appointments_month"`
	Totals           Totals        `json:"totals"`
	PerStatus        []StatusCount `json:"per_status"`
	TopProfessionals []Ranked      `json:"top_professionals"`
	TopServices      []Ranked      `json:"top_services"`
	Revenue          Revenue       `json:"revenue"`
}

type AgendaDay struct {
	Date         string               `json:"date"`
	Appointments []appointment.Detail `json:"appointments"`
}

type Agenda struct {
	WeekStart string      `json:"week_start"`
	Days      []AgendaDay `json:"days"`
}
