package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okingsaam/Pulse/internal/identity"
	"github.com/okingsaam/Pulse/internal/rejection"
)

var (
	ErrForbidden         = rejection.New(rejection.Forbidden, "only an admin can change the catalog")
	ErrNameRequired      = rejection.New(rejection.Validation, "name is required")
	ErrSpecialtyRequired = rejection.New(rejection.Validation, "specialty is required")
	ErrNegativePrice     = rejection.New(rejection.Validation, "price must not be negative")
	ErrInvalidDuration   = rejection.New(rejection.Validation, "duration must be positive")
	ErrNotProfessional   = rejection.New(rejection.Validation, "linked person must have the professional role")
)

// PersonReader is the part of the identity store the catalog needs to link accounts.
type PersonReader interface {
	GetPersonByID(ctx context.Context, id uuid.UUID) (*identity.Person, error)
}

// Manager exposes catalog operations. Writes are admin only, reads are open.
type Manager struct {
	repo    Repository
	persons PersonReader
	region  string
	logger  *slog.Logger
}

func NewManager(repo Repository, persons PersonReader, phoneRegion string, logger *slog.Logger) *Manager {
	return &Manager{
		repo:    repo,
		persons: persons,
		region:  phoneRegion,
		logger:  logger,
	}
}

func (m *Manager) CreateProfessional(ctx context.Context, actor identity.Actor, in ProfessionalInput) (*Professional, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	p := &Professional{ID: uuid.New(), Active: true}
	if err := m.applyProfessional(p, in); err != nil {
		return nil, err
	}
	if err := m.repo.CreateProfessional(ctx, p); err != nil {
		return nil, err
	}

	m.logger.Info("professional created", slog.String("professional_id", p.ID.String()), slog.String("specialty", p.Specialty))
	return p, nil
}

func (m *Manager) GetProfessional(ctx context.Context, id uuid.UUID) (*Professional, error) {
	return m.repo.GetProfessionalByID(ctx, id)
}

func (m *Manager) ListProfessionals(ctx context.Context, activeOnly bool, limit, offset int) ([]Professional, error) {
	limit, offset = clampPage(limit, offset)
	list, err := m.repo.ListProfessionals(ctx, activeOnly, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list professionals: %w", err)
	}
	return list, nil
}

func (m *Manager) UpdateProfessional(ctx context.Context, actor identity.Actor, id uuid.UUID, in ProfessionalInput) (*Professional, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	p, err := m.repo.GetProfessionalByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := m.applyProfessional(p, in); err != nil {
		return nil, err
	}
	if err := m.repo.UpdateProfessional(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// DeleteProfessional removes the professional with its services, appointments
// and their consultations.
func (m *Manager) DeleteProfessional(ctx context.Context, actor identity.Actor, id uuid.UUID) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	if err := m.repo.DeleteProfessional(ctx, id); err != nil {
		return err
	}
	m.logger.Info("professional deleted", slog.String("professional_id", id.String()))
	return nil
}

// LinkAccount attaches a person with the professional role to a professional,
// letting that person manage its own calendar.
func (m *Manager) LinkAccount(ctx context.Context, actor identity.Actor, professionalID, personID uuid.UUID) (*Professional, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	person, err := m.persons.GetPersonByID(ctx, personID)
	if err != nil {
		return nil, err
	}
	switch person.Role {
	case identity.RoleProfessional:
	case identity.RoleAdmin, identity.RolePatient, identity.RoleUnknown:
		return nil, ErrNotProfessional
	}

	p, err := m.repo.GetProfessionalByID(ctx, professionalID)
	if err != nil {
		return nil, err
	}
	if p.PersonID != nil && *p.PersonID == personID {
		return p, nil
	}

	p.PersonID = &personID
	if err := m.repo.UpdateProfessional(ctx, p); err != nil {
		return nil, err
	}

	m.logger.Info("professional account linked",
		slog.String("professional_id", p.ID.String()),
		slog.String("person_id", personID.String()),
	)
	return p, nil
}

func (m *Manager) CreateService(ctx context.Context, actor identity.Actor, in ServiceInput) (*Service, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	s := &Service{ID: uuid.New(), Active: true}
	if err := applyService(s, in); err != nil {
		return nil, err
	}
	if s.ProfessionalID != nil {
		if _, err := m.repo.GetProfessionalByID(ctx, *s.ProfessionalID); err != nil {
			return nil, err
		}
	}
	if err := m.repo.CreateService(ctx, s); err != nil {
		return nil, err
	}

	m.logger.Info("service created", slog.String("service_id", s.ID.String()), slog.Int64("price_cents", s.PriceCents))
	return s, nil
}

func (m *Manager) GetService(ctx context.Context, id uuid.UUID) (*Service, error) {
	return m.repo.GetServiceByID(ctx, id)
}

func (m *Manager) ListServices(ctx context.Context, f ServiceFilter) ([]Service, error) {
	f.Limit, f.Offset = clampPage(f.Limit, f.Offset)
	list, err := m.repo.ListServices(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	return list, nil
}

func (m *Manager) UpdateService(ctx context.Context, actor identity.Actor, id uuid.UUID, in ServiceInput) (*Service, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	s, err := m.repo.GetServiceByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyService(s, in); err != nil {
		return nil, err
	}
	if err := m.repo.UpdateService(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// DeleteService removes the service and the appointments booked for it.
func (m *Manager) DeleteService(ctx context.Context, actor identity.Actor, id uuid.UUID) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	if err := m.repo.DeleteService(ctx, id); err != nil {
		return err
	}
	m.logger.Info("service deleted", slog.String("service_id", id.String()))
	return nil
}

func (m *Manager) applyProfessional(p *Professional, in ProfessionalInput) error {
	p.Name = strings.TrimSpace(in.Name)
	if p.Name == "" {
		return ErrNameRequired
	}
	p.Specialty = strings.TrimSpace(in.Specialty)
	if p.Specialty == "" {
		return ErrSpecialtyRequired
	}

	p.LicenseID = nil
	if license := strings.ToUpper(strings.TrimSpace(in.LicenseID)); license != "" {
		p.LicenseID = &license
	}

	p.Phone = nil
	if strings.TrimSpace(in.Phone) != "" {
		phone, err := identity.NormalizePhone(in.Phone, m.region)
		if err != nil {
			return err
		}
		p.Phone = &phone
	}

	if in.Active != nil {
		p.Active = *in.Active
	}
	return nil
}

func applyService(s *Service, in ServiceInput) error {
	s.Name = strings.TrimSpace(in.Name)
	if s.Name == "" {
		return ErrNameRequired
	}
	if in.PriceCents < 0 {
		return ErrNegativePrice
	}
	duration := in.Duration.Truncate(time.Second)
	if duration <= 0 {
		return ErrInvalidDuration
	}

	s.Description = strings.TrimSpace(in.Description)
	s.PriceCents = in.PriceCents
	s.Duration = duration
	s.ProfessionalID = in.ProfessionalID
	if in.Active != nil {
		s.Active = *in.Active
	}
	return nil
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
