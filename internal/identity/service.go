package identity

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/nyaruka/phonenumbers"

	"github.com/okingsaam/Pulse/internal/rejection"
)

var (
	ErrForbidden       = rejection.New(rejection.Forbidden, "not allowed to manage this person")
	ErrNameRequired    = rejection.New(rejection.Validation, "name is required")
	ErrInvalidEmail    = rejection.New(rejection.Validation, "email is not valid")
	ErrInvalidPhone    = rejection.New(rejection.Validation, "phone number is not valid")
	ErrInvalidDocument = rejection.New(rejection.Validation, "document id must have 11 digits")
	ErrInvalidRole     = rejection.New(rejection.Validation, "role is not valid")
)

type Service struct {
	repo     Repository
	region   string
	validate *validator.Validate
	logger   *slog.Logger
}

func NewService(repo Repository, phoneRegion string, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		region:   phoneRegion,
		validate: validator.New(),
		logger:   logger,
	}
}

// Register creates a person. Anyone may sign up as a patient; other roles
// require an admin.
func (s *Service) Register(ctx context.Context, actor Actor, in RegisterInput) (*Person, error) {
	role := RolePatient
	if actor.IsAdmin() && in.Role != RoleUnknown {
		role = in.Role
	} else if in.Role != RoleUnknown && in.Role != RolePatient {
		return nil, ErrForbidden
	}

	p := &Person{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(in.Name),
		BirthDate: in.BirthDate,
		Role:      role,
		Active:    true,
	}
	if p.Name == "" {
		return nil, ErrNameRequired
	}

	var err error
	if p.Email, err = s.normalizeEmail(in.Email); err != nil {
		return nil, err
	}
	if p.Phone, err = s.normalizePhone(in.Phone); err != nil {
		return nil, err
	}
	if p.DocumentID, err = normalizeDocument(in.DocumentID); err != nil {
		return nil, err
	}

	if err := s.repo.CreatePerson(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("person registered",
		slog.String("person_id", p.ID.String()),
		slog.String("role", p.Role.String()),
		slog.String("actor_id", actor.ID.String()),
	)
	return p, nil
}

func (s *Service) Get(ctx context.Context, actor Actor, id uuid.UUID) (*Person, error) {
	if !actor.IsAdmin() && !actor.Is(id) {
		return nil, ErrForbidden
	}
	return s.repo.GetPersonByID(ctx, id)
}

func (s *Service) List(ctx context.Context, actor Actor, role Role, limit, offset int) ([]Person, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	persons, err := s.repo.ListPersons(ctx, role, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list persons: %w", err)
	}
	return persons, nil
}

// UpdateContact changes the contact fields of a person. The role never changes
// after registration.
func (s *Service) UpdateContact(ctx context.Context, actor Actor, id uuid.UUID, in ContactInput) (*Person, error) {
	if !actor.IsAdmin() && !actor.Is(id) {
		return nil, ErrForbidden
	}
	if in.Active != nil && !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	p, err := s.repo.GetPersonByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		p.Name = name
	}
	if in.Email != nil {
		if p.Email, err = s.normalizeEmail(*in.Email); err != nil {
			return nil, err
		}
	}
	if in.Phone != nil {
		if p.Phone, err = s.normalizePhone(*in.Phone); err != nil {
			return nil, err
		}
	}
	if in.Active != nil {
		p.Active = *in.Active
	}

	if err := s.repo.UpdatePerson(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes a person together with its appointments and consultations.
func (s *Service) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	if err := s.repo.DeletePerson(ctx, id); err != nil {
		return err
	}
	s.logger.Info("person deleted", slog.String("person_id", id.String()), slog.String("actor_id", actor.ID.String()))
	return nil
}

func (s *Service) normalizeEmail(raw string) (*string, error) {
	email := strings.TrimSpace(raw)
	if email == "" {
		return nil, nil
	}
	if err := s.validate.Var(email, "email"); err != nil {
		return nil, ErrInvalidEmail
	}
	email = strings.ToLower(email)
	return &email, nil
}

func (s *Service) normalizePhone(raw string) (*string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	phone, err := NormalizePhone(raw, s.region)
	if err != nil {
		return nil, err
	}
	return &phone, nil
}

// NormalizePhone parses a phone number, using region for numbers written
// without a country code, and formats it as E.164.
func NormalizePhone(raw, region string) (string, error) {
	num, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return "", ErrInvalidPhone
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", ErrInvalidPhone
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

func normalizeDocument(raw string) (*string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		if r == '.' || r == '-' || r == ' ' || r == '/' {
			return -1
		}
		return 'x'
	}, raw)
	if len(digits) != 11 || strings.ContainsRune(digits, 'x') {
		return nil, ErrInvalidDocument
	}
	return &digits, nil
}
