package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/okingsaam/Pulse/internal/rejection"
)

var (
	ErrProfessionalNotFound = rejection.New(rejection.NotFound, "professional not found")
	ErrServiceNotFound      = rejection.New(rejection.NotFound, "service not found")
	ErrDuplicateLicense     = rejection.New(rejection.Conflict, "a professional with this license id already exists")
	ErrPersonAlreadyLinked  = rejection.New(rejection.Conflict, "person is already linked to another professional")
)

// Repository persists the catalog. Deleting a professional removes its
// services and appointments; deleting a service removes its appointments.
type Repository interface {
	CreateProfessional(ctx context.Context, p *Professional) error
	GetProfessionalByID(ctx context.Context, id uuid.UUID) (*Professional, error)
	GetProfessionalByPersonID(ctx context.Context, personID uuid.UUID) (*Professional, error)
	ListProfessionals(ctx context.Context, activeOnly bool, limit, offset int) ([]Professional, error)
	UpdateProfessional(ctx context.Context, p *Professional) error
	DeleteProfessional(ctx context.Context, id uuid.UUID) error

	CreateService(ctx context.Context, s *Service) error
	GetServiceByID(ctx context.Context, id uuid.UUID) (*Service, error)
	ListServices(ctx context.Context, f ServiceFilter) ([]Service, error)
	UpdateService(ctx context.Context, s *Service) error
	DeleteService(ctx context.Context, id uuid.UUID) error
}
