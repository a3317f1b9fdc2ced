package identity

import (
	"fmt"

	"github.com/google/uuid"
)

// Role is the closed set of account kinds.
type Role int

const (
	RoleUnknown Role = iota
	RoleAdmin
	RolePatient
	RoleProfessional
)

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RolePatient:
		return "patient"
	case RoleProfessional:
		return "professional"
	case RoleUnknown:
	}
	return "unknown"
}

func ParseRole(s string) (Role, error) {
	switch s {
	case "admin":
		return RoleAdmin, nil
	case "patient":
		return RolePatient, nil
	case "professional":
		return RoleProfessional, nil
	}
	return RoleUnknown, fmt.Errorf("unknown role %q", s)
}

func (r Role) MarshalText() ([]byte, error) {
	if r == RoleUnknown {
		return nil, fmt.Errorf("cannot marshal unknown role")
	}
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(b []byte) error {
	parsed, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Actor is the caller on whose behalf a domain operation runs. It is passed
// explicitly into every service call.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

// Anonymous is a caller without an account, allowed only to self-register.
var Anonymous = Actor{}

func (a Actor) IsAdmin() bool {
	switch a.Role {
	case RoleAdmin:
		return true
	case RolePatient, RoleProfessional, RoleUnknown:
		return false
	}
	return false
}

// Is reports whether the actor is the person with the given id.
func (a Actor) Is(personID uuid.UUID) bool {
	return a.ID != uuid.Nil && a.ID == personID
}
