package appointment

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
	StatusNoShow    Status = "no_show"
)

var Statuses = []Status{StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted, StatusNoShow}

func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted, StatusNoShow:
		return st, nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// transitions lists the allowed status edges. Anything absent, self loops
// included, is rejected.
var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCancelled, StatusCompleted, StatusNoShow},
}

func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Occupies reports whether an appointment in this status holds its slot.
func (s Status) Occupies() bool {
	return s != StatusCancelled
}

type Appointment struct {
	ID             uuid.UUID
	PatientID      uuid.UUID
	ProfessionalID uuid.UUID
	ServiceID      uuid.UUID
	ScheduledAt    time.Time
	Status         Status
	Notes          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Detail is an appointment with the names and price needed to present it.
type Detail struct {
	Appointment
	PatientName      string
	PatientEmail     *string
	ProfessionalName string
	Specialty        string
	ServiceName      string
	PriceCents       int64
}

type BookInput struct {
	PatientID      uuid.UUID
	ProfessionalID uuid.UUID
	ServiceID      uuid.UUID
	When           time.Time
	Notes          string
}

// Filter selects appointments. From is inclusive, To exclusive. A zero Limit
// means no limit.
type Filter struct {
	PatientID      *uuid.UUID
	ProfessionalID *uuid.UUID
	Statuses       []Status
	From           *time.Time
	To             *time.Time
	Limit          int
	Offset         int
}

func (f Filter) Match(a *Appointment) bool {
	if f.PatientID != nil && a.PatientID != *f.PatientID {
		return false
	}
	if f.ProfessionalID != nil && a.ProfessionalID != *f.ProfessionalID {
		return false
	}
	if f.From != nil && a.ScheduledAt.Before(*f.From) {
		return false
	}
	if f.To != nil && !a.ScheduledAt.Before(*f.To) {
		return false
	}
	if len(f.Statuses) == 0 {
		return true
	}
	for _, s := range f.Statuses {
		if a.Status == s {
			return true
		}
	}
	return false
}

type EventLog struct {
	ID            int64
	EventType     string
	AppointmentID *uuid.UUID
	Payload       []byte
	CreatedAt     time.Time
}

// ItemResult is the outcome of one entry of a bulk transition.
type ItemResult struct {
	ID     uuid.UUID
	Status Status
	Err    error
}

type BulkResult struct {
	Items    []ItemResult
	Affected int
	Failed   int
}
