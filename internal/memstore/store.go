// Package memstore keeps every repository in process memory. It enforces the
// same keys, slot uniqueness and cascades as the Postgres schema and backs
// tests and STORAGE=memory runs.
package memstore

import (
	"bytes"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okingsaam/Pulse/internal/appointment"
	"github.com/okingsaam/Pulse/internal/catalog"
	"github.com/okingsaam/Pulse/internal/consultation"
	"github.com/okingsaam/Pulse/internal/identity"
	"github.com/okingsaam/Pulse/internal/report"
)

var (
	_ identity.Repository     = (*Store)(nil)
	_ catalog.Repository      = (*Store)(nil)
	_ appointment.Repository  = (*Store)(nil)
	_ consultation.Repository = (*Store)(nil)
	_ report.Repository       = (*Store)(nil)
)

type slotKey struct {
	professionalID uuid.UUID
	unix           int64
}

type Store struct {
	mu sync.RWMutex

	persons       map[uuid.UUID]identity.Person
	professionals map[uuid.UUID]catalog.Professional
	services      map[uuid.UUID]catalog.Service
	appointments  map[uuid.UUID]appointment.Appointment
	slots         map[slotKey]uuid.UUID
	consultations map[uuid.UUID]consultation.Consultation
	events        []appointment.EventLog
	nextEventID   int64

	now func() time.Time
}

func New() *Store {
	return &Store{
		persons:       make(map[uuid.UUID]identity.Person),
		professionals: make(map[uuid.UUID]catalog.Professional),
		services:      make(map[uuid.UUID]catalog.Service),
		appointments:  make(map[uuid.UUID]appointment.Appointment),
		slots:         make(map[slotKey]uuid.UUID),
		consultations: make(map[uuid.UUID]consultation.Consultation),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Events returns a copy of the audit log.
func (s *Store) Events() []appointment.EventLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]appointment.EventLog(nil), s.events...)
}

func keyOf(a appointment.Appointment) slotKey {
	return slotKey{professionalID: a.ProfessionalID, unix: a.ScheduledAt.Unix()}
}

// deleteAppointmentLocked removes an appointment with its consultation, slot
// and audit rows.
func (s *Store) deleteAppointmentLocked(id uuid.UUID) {
	a, ok := s.appointments[id]
	if !ok {
		return
	}
	if a.Status.Occupies() && s.slots[keyOf(a)] == id {
		delete(s.slots, keyOf(a))
	}
	delete(s.appointments, id)

	for cid, c := range s.consultations {
		if c.AppointmentID == id {
			delete(s.consultations, cid)
		}
	}

	kept := s.events[:0]
	for _, ev := range s.events {
		if ev.AppointmentID != nil && *ev.AppointmentID == id {
			continue
		}
		kept = append(kept, ev)
	}
	s.events = kept
}

func (s *Store) deleteAppointmentsWhere(match func(appointment.Appointment) bool) {
	for id, a := range s.appointments {
		if match(a) {
			s.deleteAppointmentLocked(id)
		}
	}
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func lessID(a, b uuid.UUID) bool {
	return bytes.Compare(a[:], b[:]) < 0
}

func sortByName[T any](items []T, name func(T) string, id func(T) uuid.UUID) {
	sort.Slice(items, func(i, j int) bool {
		ni, nj := name(items[i]), name(items[j])
		if ni != nj {
			return ni < nj
		}
		return lessID(id(items[i]), id(items[j]))
	})
}
