package memstore

import (
	"context"

	"github.com/google/uuid"

	"github.com/okingsaam/Pulse/internal/appointment"
	"github.com/okingsaam/Pulse/internal/catalog"
	"github.com/okingsaam/Pulse/internal/identity"
)

func (s *Store) checkProfessionalKeys(p *catalog.Professional) error {
	for id, other := range s.professionals {
		if id == p.ID {
			continue
		}
		if p.LicenseID != nil && other.LicenseID != nil && *p.LicenseID == *other.LicenseID {
			return catalog.ErrDuplicateLicense
		}
		if p.PersonID != nil && other.PersonID != nil && *p.PersonID == *other.PersonID {
			return catalog.ErrPersonAlreadyLinked
		}
	}
	if p.PersonID != nil {
		if _, ok := s.persons[*p.PersonID]; !ok {
			return identity.ErrPersonNotFound
		}
	}
	return nil
}

func (s *Store) CreateProfessional(_ context.Context, p *catalog.Professional) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkProfessionalKeys(p); err != nil {
		return err
	}
	now := s.now()
	p.CreatedAt, p.UpdatedAt = now, now
	s.professionals[p.ID] = *p
	return nil
}

func (s *Store) GetProfessionalByID(_ context.Context, id uuid.UUID) (*catalog.Professional, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.professionals[id]
	if !ok {
		return nil, catalog.ErrProfessionalNotFound
	}
	return &p, nil
}

func (s *Store) GetProfessionalByPersonID(_ context.Context, personID uuid.UUID) (*catalog.Professional, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.professionals {
		if p.PersonID != nil && *p.PersonID == personID {
			return &p, nil
		}
	}
	return nil, catalog.ErrProfessionalNotFound
}

func (s *Store) ListProfessionals(_ context.Context, activeOnly bool, limit, offset int) ([]catalog.Professional, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []catalog.Professional
	for _, p := range s.professionals {
		if activeOnly && !p.Active {
			continue
		}
		result = append(result, p)
	}
	sortByName(result, func(p catalog.Professional) string { return p.Name }, func(p catalog.Professional) uuid.UUID { return p.ID })
	return page(result, limit, offset), nil
}

func (s *Store) UpdateProfessional(_ context.Context, p *catalog.Professional) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.professionals[p.ID]
	if !ok {
		return catalog.ErrProfessionalNotFound
	}
	if err := s.checkProfessionalKeys(p); err != nil {
		return err
	}

	p.CreatedAt = current.CreatedAt
	p.UpdatedAt = s.now()
	s.professionals[p.ID] = *p
	return nil
}

func (s *Store) DeleteProfessional(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.professionals[id]; !ok {
		return catalog.ErrProfessionalNotFound
	}
	delete(s.professionals, id)

	for sid, svc := range s.services {
		if svc.ProfessionalID != nil && *svc.ProfessionalID == id {
			s.deleteServiceLocked(sid)
		}
	}
	s.deleteAppointmentsWhere(func(a appointment.Appointment) bool { return a.ProfessionalID == id })
	return nil
}

func (s *Store) CreateService(_ context.Context, svc *catalog.Service) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if svc.ProfessionalID != nil {
		if _, ok := s.professionals[*svc.ProfessionalID]; !ok {
			return catalog.ErrProfessionalNotFound
		}
	}
	now := s.now()
	svc.CreatedAt, svc.UpdatedAt = now, now
	s.services[svc.ID] = *svc
	return nil
}

func (s *Store) GetServiceByID(_ context.Context, id uuid.UUID) (*catalog.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	svc, ok := s.services[id]
	if !ok {
		return nil, catalog.ErrServiceNotFound
	}
	return &svc, nil
}

func (s *Store) ListServices(_ context.Context, f catalog.ServiceFilter) ([]catalog.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []catalog.Service
	for _, svc := range s.services {
		if f.ProfessionalID != nil && (svc.ProfessionalID == nil || *svc.ProfessionalID != *f.ProfessionalID) {
			continue
		}
		if f.ActiveOnly && !svc.Active {
			continue
		}
		result = append(result, svc)
	}
	sortByName(result, func(s catalog.Service) string { return s.Name }, func(s catalog.Service) uuid.UUID { return s.ID })
	return page(result, f.Limit, f.Offset), nil
}

func (s *Store) UpdateService(_ context.Context, svc *catalog.Service) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.services[svc.ID]
	if !ok {
		return catalog.ErrServiceNotFound
	}
	if svc.ProfessionalID != nil {
		if _, ok := s.professionals[*svc.ProfessionalID]; !ok {
			return catalog.ErrProfessionalNotFound
		}
	}

	svc.CreatedAt = current.CreatedAt
	svc.UpdatedAt = s.now()
	s.services[svc.ID] = *svc
	return nil
}

func (s *Store) DeleteService(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.services[id]; !ok {
		return catalog.ErrServiceNotFound
	}
	s.deleteServiceLocked(id)
	return nil
}

func (s *Store) deleteServiceLocked(id uuid.UUID) {
	delete(s.services, id)
	s.deleteAppointmentsWhere(func(a appointment.Appointment) bool { return a.ServiceID == id })
}
