package memstore

import (
	"context"

	"github.com/google/uuid"

	"github.com/okingsaam/Pulse/internal/appointment"
	"github.com/okingsaam/Pulse/internal/consultation"
)

func (s *Store) CreateConsultation(_ context.Context, c *consultation.Consultation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.appointments[c.AppointmentID]; !ok {
		return appointment.ErrAppointmentNotFound
	}
	for _, other := range s.consultations {
		if other.AppointmentID == c.AppointmentID {
			return consultation.ErrAlreadyRecorded
		}
	}

	now := s.now()
	c.CreatedAt, c.UpdatedAt = now, now
	s.consultations[c.ID] = *c
	return nil
}

func (s *Store) GetConsultationByID(_ context.Context, id uuid.UUID) (*consultation.Consultation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.consultations[id]
	if !ok {
		return nil, consultation.ErrConsultationNotFound
	}
	return &c, nil
}

func (s *Store) GetConsultationByAppointment(_ context.Context, appointmentID uuid.UUID) (*consultation.Consultation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.consultations {
		if c.AppointmentID == appointmentID {
			return &c, nil
		}
	}
	return nil, consultation.ErrConsultationNotFound
}

func (s *Store) UpdateConsultation(_ context.Context, c *consultation.Consultation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.consultations[c.ID]
	if !ok {
		return consultation.ErrConsultationNotFound
	}

	c.AppointmentID = current.AppointmentID
	c.CreatedAt = current.CreatedAt
	c.UpdatedAt = s.now()
	s.consultations[c.ID] = *c
	return nil
}
