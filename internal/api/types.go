package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/okingsaam/Pulse/internal/appointment"
	"github.com/okingsaam/Pulse/internal/catalog"
	"github.com/okingsaam/Pulse/internal/consultation"
	"github.com/okingsaam/Pulse/internal/identity"
)

const dateLayout = "2006-01-02"

type ErrorResponse struct {
	Error   string   `json:"error"`
	Details string   `json:"details,omitempty"`
	Fields  []string `json:"fields,omitempty"`
}

// persons

type RegisterPersonRequest struct {
	Name       string `json:"name" validate:"required,max=200"`
	Email      string `json:"email" validate:"omitempty,email,max=254"`
	Phone      string `json:"phone" validate:"omitempty,max=32"`
	DocumentID string `json:"document_id" validate:"omitempty,max=20"`
	BirthDate  string `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	Role       string `json:"role" validate:"omitempty,oneof=admin patient professional"`
}

type UpdateContactRequest struct {
	Name   *string `json:"name" validate:"omitempty,max=200"`
	Email  *string `json:"email" validate:"omitempty,max=254"`
	Phone  *string `json:"phone" validate:"omitempty,max=32"`
	Active *bool   `json:"active"`
}

type PersonResponse struct {
	ID         uuid.UUID     `json:"id"`
	Name       string        `json:"name"`
	Email      *string       `json:"email,omitempty"`
	Phone      *string       `json:"phone,omitempty"`
	DocumentID *string       `json:"document_id,omitempty"`
	BirthDate  *string       `json:"birth_date,omitempty"`
	Role       identity.Role `json:"role"`
	Active     bool          `json:"active"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

func toPersonResponse(p *identity.Person) PersonResponse {
	resp := PersonResponse{
		ID:         p.ID,
		Name:       p.Name,
		Email:      p.Email,
		Phone:      p.Phone,
		DocumentID: p.DocumentID,
		Role:       p.Role,
		Active:     p.Active,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
	if p.BirthDate != nil {
		d := p.BirthDate.Format(dateLayout)
		resp.BirthDate = &d
	}
	return resp
}

// catalog

type ProfessionalRequest struct {
	Name      string `json:"name" validate:"required,max=200"`
	Specialty string `json:"specialty" validate:"required,max=100"`
	LicenseID string `json:"license_id" validate:"omitempty,max=30"`
	Phone     string `json:"phone" validate:"omitempty,max=32"`
	Active    *bool  `json:"active"`
}

func (r ProfessionalRequest) input() catalog.ProfessionalInput {
	return catalog.ProfessionalInput{
		Name:      r.Name,
		Specialty: r.Specialty,
		LicenseID: r.LicenseID,
		Phone:     r.Phone,
		Active:    r.Active,
	}
}

type LinkAccountRequest struct {
	PersonID uuid.UUID `json:"person_id" validate:"required"`
}

type ProfessionalResponse struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Specialty string     `json:"specialty"`
	LicenseID *string    `json:"license_id,omitempty"`
	Phone     *string    `json:"phone,omitempty"`
	Active    bool       `json:"active"`
	PersonID  *uuid.UUID `json:"person_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func toProfessionalResponse(p *catalog.Professional) ProfessionalResponse {
	return ProfessionalResponse{
		ID:        p.ID,
		Name:      p.Name,
		Specialty: p.Specialty,
		LicenseID: p.LicenseID,
		Phone:     p.Phone,
		Active:    p.Active,
		PersonID:  p.PersonID,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

type ServiceRequest struct {
	Name            string     `json:"name" validate:"required,max=200"`
	Description     string     `json:"description" validate:"max=2000"`
	PriceCents      int64      `json:"price_cents"`
	DurationMinutes int        `json:"duration_minutes" validate:"required,gt=0,lte=1440"`
	ProfessionalID  *uuid.UUID `json:"professional_id"`
	Active          *bool      `json:"active"`
}

func (r ServiceRequest) input() catalog.ServiceInput {
	return catalog.ServiceInput{
		Name:           r.Name,
		Description:    r.Description,
		PriceCents:     r.PriceCents,
		Duration:       time.Duration(r.DurationMinutes) * time.Minute,
		ProfessionalID: r.ProfessionalID,
		Active:         r.Active,
	}
}

type ServiceResponse struct {
	ID              uuid.UUID  `json:"id"`
	Name            string     `json:"name"`
	Description     string     `json:"description,omitempty"`
	PriceCents      int64      `json:"price_cents"`
	DurationMinutes int        `json:"duration_minutes"`
	ProfessionalID  *uuid.UUID `json:"professional_id,omitempty"`
	Active          bool       `json:"active"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func toServiceResponse(s *catalog.Service) ServiceResponse {
	return ServiceResponse{
		ID:              s.ID,
		Name:            s.Name,
		Description:     s.Description,
		PriceCents:      s.PriceCents,
		DurationMinutes: int(s.Duration / time.Minute),
		ProfessionalID:  s.ProfessionalID,
		Active:          s.Active,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

// appointments

type CreateAppointmentRequest struct {
	PatientID      uuid.UUID `json:"patient_id"`
	ProfessionalID uuid.UUID `json:"professional_id" validate:"required"`
	ServiceID      uuid.UUID `json:"service_id" validate:"required"`
	When           time.Time `json:"when"`
	Notes          string    `json:"notes" validate:"max=1000"`
}

type TransitionRequest struct {
	Status string `json:"status" validate:"required"`
}

type BulkTransitionRequest struct {
	IDs    []uuid.UUID `json:"ids" validate:"required,min=1,max=100"`
	Status string      `json:"status" validate:"required"`
}

type AppointmentResponse struct {
	ID               uuid.UUID          `json:"id"`
	PatientID        uuid.UUID          `json:"patient_id"`
	ProfessionalID   uuid.UUID          `json:"professional_id"`
	ServiceID        uuid.UUID          `json:"service_id"`
	ScheduledAt      time.Time          `json:"scheduled_at"`
	Status           appointment.Status `json:"status"`
	Notes            string             `json:"notes,omitempty"`
	PatientName      string             `json:"patient_name,omitempty"`
	ProfessionalName string             `json:"professional_name,omitempty"`
	Specialty        string             `json:"specialty,omitempty"`
	ServiceName      string             `json:"service_name,omitempty"`
	PriceCents       *int64             `json:"price_cents,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

func toAppointmentResponse(a *appointment.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:             a.ID,
		PatientID:      a.PatientID,
		ProfessionalID: a.ProfessionalID,
		ServiceID:      a.ServiceID,
		ScheduledAt:    a.ScheduledAt,
		Status:         a.Status,
		Notes:          a.Notes,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

func toDetailResponse(d *appointment.Detail) AppointmentResponse {
	resp := toAppointmentResponse(&d.Appointment)
	resp.PatientName = d.PatientName
	resp.ProfessionalName = d.ProfessionalName
	resp.Specialty = d.Specialty
	resp.ServiceName = d.ServiceName
	price := d.PriceCents
	resp.PriceCents = &price
	return resp
}

func toDetailList(list []appointment.Detail) []AppointmentResponse {
	out := make([]AppointmentResponse, 0, len(list))
	for i := range list {
		out = append(out, toDetailResponse(&list[i]))
	}
	return out
}

type BulkItemResponse struct {
	ID     uuid.UUID          `json:"id"`
	Status appointment.Status `json:"status,omitempty"`
	Error  *ErrorResponse     `json:"error,omitempty"`
}

type BulkResponse struct {
	Affected int                `json:"affected"`
	Failed   int                `json:"failed"`
	Items    []BulkItemResponse `json:"items"`
}

// consultations

type ConsultationRequest struct {
	Symptoms     string `json:"symptoms" validate:"max=4000"`
	Diagnosis    string `json:"diagnosis" validate:"max=4000"`
	Treatment    string `json:"treatment" validate:"max=4000"`
	Prescription string `json:"prescription" validate:"max=4000"`
	Notes        string `json:"notes" validate:"max=4000"`
	AmountCents  int64  `json:"amount_cents"`
}

func (r ConsultationRequest) input() consultation.Input {
	return consultation.Input{
		Symptoms:     r.Symptoms,
		Diagnosis:    r.Diagnosis,
		Treatment:    r.Treatment,
		Prescription: r.Prescription,
		Notes:        r.Notes,
		AmountCents:  r.AmountCents,
	}
}

type PaymentRequest struct {
	Paid *bool `json:"paid" validate:"required"`
}

type ConsultationResponse struct {
	ID            uuid.UUID `json:"id"`
	AppointmentID uuid.UUID `json:"appointment_id"`
	Symptoms      string    `json:"symptoms,omitempty"`
	Diagnosis     string    `json:"diagnosis,omitempty"`
	Treatment     string    `json:"treatment,omitempty"`
	Prescription  string    `json:"prescription,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	AmountCents   int64     `json:"amount_cents"`
	Paid          bool      `json:"paid"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toConsultationResponse(c *consultation.Consultation) ConsultationResponse {
	return ConsultationResponse{
		ID:            c.ID,
		AppointmentID: c.AppointmentID,
		Symptoms:      c.Symptoms,
		Diagnosis:     c.Diagnosis,
		Treatment:     c.Treatment,
		Prescription:  c.Prescription,
		Notes:         c.Notes,
		AmountCents:   c.AmountCents,
		Paid:          c.Paid,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}
