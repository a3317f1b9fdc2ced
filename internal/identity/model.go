package identity

import (
	"time"

	"github.com/google/uuid"
)

type Person struct {
	ID         uuid.UUID
	Name       string
	Email      *string
	Phone      *string // E.164
	DocumentID *string // national id (CPF), unique when present
	BirthDate  *time.Time
	Role       Role
	Active     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type RegisterInput struct {
	Name       string
	Email      string
	Phone      string
	DocumentID string
	BirthDate  *time.Time
	Role       Role // ignored unless the caller is an admin
}

type ContactInput struct {
	Name   *string
	Email  *string
	Phone  *string
	Active *bool
}
