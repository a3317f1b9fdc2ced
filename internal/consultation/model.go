package consultation

import (
	"time"

	"github.com/google/uuid"
)

// Consultation is the clinical record of a completed appointment.
type Consultation struct {
	ID            uuid.UUID
	AppointmentID uuid.UUID
	Symptoms      string
	Diagnosis     string
	Treatment     string
	Prescription  string
	Notes         string
	AmountCents   int64
	Paid          bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Input struct {
	Symptoms     string
	Diagnosis    string
	Treatment    string
	Prescription string
	Notes        string
	AmountCents  int64
}
