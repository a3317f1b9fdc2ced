package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/okingsaam/Pulse/internal/appointment"
)

func (s *Store) CreateAppointment(_ context.Context, a *appointment.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.persons[a.PatientID]; !ok {
		return appointment.ErrReferenceNotFound
	}
	if _, ok := s.professionals[a.ProfessionalID]; !ok {
		return appointment.ErrReferenceNotFound
	}
	if _, ok := s.services[a.ServiceID]; !ok {
		return appointment.ErrReferenceNotFound
	}

	if a.Status.Occupies() {
		if _, taken := s.slots[keyOf(*a)]; taken {
			return appointment.ErrSlotTaken
		}
		s.slots[keyOf(*a)] = a.ID
	}

	now := s.now()
	a.CreatedAt, a.UpdatedAt = now, now
	s.appointments[a.ID] = *a
	return nil
}

func (s *Store) GetAppointmentByID(_ context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.appointments[id]
	if !ok {
		return nil, appointment.ErrAppointmentNotFound
	}
	return &a, nil
}

func (s *Store) GetAppointmentDetail(_ context.Context, id uuid.UUID) (*appointment.Detail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.appointments[id]
	if !ok {
		return nil, appointment.ErrAppointmentNotFound
	}
	d := s.detailLocked(a)
	return &d, nil
}

func (s *Store) SlotTaken(_ context.Context, professionalID uuid.UUID, at time.Time) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, taken := s.slots[slotKey{professionalID: professionalID, unix: at.Unix()}]
	return taken, nil
}

func (s *Store) UpdateAppointmentStatus(_ context.Context, id uuid.UUID, from, to appointment.Status) (*appointment.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.appointments[id]
	if !ok || a.Status != from {
		return nil, appointment.ErrAppointmentNotFound
	}

	key := keyOf(a)
	switch {
	case from.Occupies() && !to.Occupies():
		delete(s.slots, key)
	case !from.Occupies() && to.Occupies():
		if _, taken := s.slots[key]; taken {
			return nil, appointment.ErrSlotTaken
		}
		s.slots[key] = id
	}

	a.Status = to
	a.UpdatedAt = s.now()
	s.appointments[id] = a
	return &a, nil
}

func (s *Store) ListAppointments(_ context.Context, f appointment.Filter) ([]appointment.Detail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []appointment.Appointment
	for _, a := range s.appointments {
		if f.Match(&a) {
			matched = append(matched, a)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].ScheduledAt.Equal(matched[j].ScheduledAt) {
			return matched[i].ScheduledAt.Before(matched[j].ScheduledAt)
		}
		return lessID(matched[i].ID, matched[j].ID)
	})

	matched = page(matched, f.Limit, f.Offset)
	result := make([]appointment.Detail, 0, len(matched))
	for _, a := range matched {
		result = append(result, s.detailLocked(a))
	}
	return result, nil
}

func (s *Store) DeleteAppointment(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.appointments[id]; !ok {
		return appointment.ErrAppointmentNotFound
	}
	s.deleteAppointmentLocked(id)
	return nil
}

func (s *Store) InsertEvent(_ context.Context, ev appointment.EventLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ev.AppointmentID != nil {
		if _, ok := s.appointments[*ev.AppointmentID]; !ok {
			return appointment.ErrAppointmentNotFound
		}
	}
	s.nextEventID++
	ev.ID = s.nextEventID
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = s.now()
	}
	s.events = append(s.events, ev)
	return nil
}

func (s *Store) detailLocked(a appointment.Appointment) appointment.Detail {
	d := appointment.Detail{Appointment: a}
	if p, ok := s.persons[a.PatientID]; ok {
		d.PatientName = p.Name
		d.PatientEmail = p.Email
	}
	if prof, ok := s.professionals[a.ProfessionalID]; ok {
		d.ProfessionalName = prof.Name
		d.Specialty = prof.Specialty
	}
	if svc, ok := s.services[a.ServiceID]; ok {
		d.ServiceName = svc.Name
		d.PriceCents = svc.PriceCents
	}
	return d
}
