package memstore

import (
	"context"

	"github.com/google/uuid"

	"github.com/okingsaam/Pulse/internal/appointment"
	"github.com/okingsaam/Pulse/internal/identity"
)

func (s *Store) CreatePerson(_ context.Context, p *identity.Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.DocumentID != nil {
		for _, other := range s.persons {
			if other.DocumentID != nil && *other.DocumentID == *p.DocumentID {
				return identity.ErrDuplicateDocument
			}
		}
	}

	now := s.now()
	p.CreatedAt, p.UpdatedAt = now, now
	s.persons[p.ID] = *p
	return nil
}

func (s *Store) GetPersonByID(_ context.Context, id uuid.UUID) (*identity.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.persons[id]
	if !ok {
		return nil, identity.ErrPersonNotFound
	}
	return &p, nil
}

func (s *Store) ListPersons(_ context.Context, role identity.Role, limit, offset int) ([]identity.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []identity.Person
	for _, p := range s.persons {
		if role != identity.RoleUnknown && p.Role != role {
			continue
		}
		result = append(result, p)
	}
	sortByName(result, func(p identity.Person) string { return p.Name }, func(p identity.Person) uuid.UUID { return p.ID })
	return page(result, limit, offset), nil
}

func (s *Store) UpdatePerson(_ context.Context, p *identity.Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.persons[p.ID]
	if !ok {
		return identity.ErrPersonNotFound
	}
	current.Name = p.Name
	current.Email = p.Email
	current.Phone = p.Phone
	current.Active = p.Active
	current.UpdatedAt = s.now()

	s.persons[p.ID] = current
	p.UpdatedAt = current.UpdatedAt
	return nil
}

func (s *Store) DeletePerson(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.persons[id]; !ok {
		return identity.ErrPersonNotFound
	}
	delete(s.persons, id)

	s.deleteAppointmentsWhere(func(a appointment.Appointment) bool { return a.PatientID == id })
	for pid, prof := range s.professionals {
		if prof.PersonID != nil && *prof.PersonID == id {
			prof.PersonID = nil
			s.professionals[pid] = prof
		}
	}
	return nil
}
