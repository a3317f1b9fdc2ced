package identity

import (
	"context"

	"github.com/google/uuid"

	"github.com/okingsaam/Pulse/internal/rejection"
)

var (
	ErrPersonNotFound    = rejection.New(rejection.NotFound, "person not found")
	ErrDuplicateDocument = rejection.New(rejection.Conflict, "a person with this document id already exists")
)

// Repository persists persons. Deleting a person removes its appointments and
// their consultations.
type Repository interface {
	CreatePerson(ctx context.Context, p *Person) error
	GetPersonByID(ctx context.Context, id uuid.UUID) (*Person, error)
	ListPersons(ctx context.Context, role Role, limit, offset int) ([]Person, error)
	UpdatePerson(ctx context.Context, p *Person) error
	DeletePerson(ctx context.Context, id uuid.UUID) error
}
