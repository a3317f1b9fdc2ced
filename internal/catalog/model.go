package catalog

import (
	"time"

	"github.com/google/uuid"
)

type Professional struct {
	ID        uuid.UUID
	Name      string
	Specialty string
	LicenseID *string // medical license (CRM), unique when present
	Phone     *string
	Active    bool
	PersonID  *uuid.UUID // linked account, at most one per professional
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Service struct {
	ID             uuid.UUID
	Name           string
	Description    string
	PriceCents     int64
	Duration       time.Duration
	ProfessionalID *uuid.UUID
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type ProfessionalInput struct {
	Name      string
	Specialty string
	LicenseID string
	Phone     string
	Active    *bool
}

type ServiceInput struct {
	Name           string
	Description    string
	PriceCents     int64
	Duration       time.Duration
	ProfessionalID *uuid.UUID
	Active         *bool
}

type ServiceFilter struct {
	ProfessionalID *uuid.UUID
	ActiveOnly     bool
	Limit          int
	Offset         int
}
