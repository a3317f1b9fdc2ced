package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/okingsaam/Pulse/internal/appointment"
	"github.com/okingsaam/Pulse/internal/identity"
	"github.com/okingsaam/Pulse/internal/report"
)

func inRange(a appointment.Appointment, r *report.Range) bool {
	if r == nil {
		return true
	}
	return !a.ScheduledAt.Before(r.From) && a.ScheduledAt.Before(r.To)
}

func (s *Store) CountAppointments(_ context.Context, r report.Range) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, a := range s.appointments {
		if inRange(a, &r) {
			n++
		}
	}
	return n, nil
}

func (s *Store) CountByDay(_ context.Context, r report.Range, loc *time.Location) ([]report.DayCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int)
	for _, a := range s.appointments {
		if inRange(a, &r) {
			counts[a.ScheduledAt.In(loc).Format("2006-01-02")]++
		}
	}

	result := make([]report.DayCount, 0, len(counts))
	for day, n := range counts {
		result = append(result, report.DayCount{Day: day, Count: n})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Day < result[j].Day })
	return result, nil
}

func (s *Store) CountByStatus(_ context.Context, r *report.Range) ([]report.StatusCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[appointment.Status]int)
	for _, a := range s.appointments {
		if inRange(a, r) {
			counts[a.Status]++
		}
	}

	result := make([]report.StatusCount, 0, len(counts))
	for st, n := range counts {
		result = append(result, report.StatusCount{Status: st, Count: n})
	}
	return result, nil
}

func (s *Store) ServiceRevenue(_ context.Context, r report.Range) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	paid := make(map[uuid.UUID]bool)
	for _, c := range s.consultations {
		if c.Paid {
			paid[c.AppointmentID] = true
		}
	}

	var cents int64
	for _, a := range s.appointments {
		if !inRange(a, &r) || paid[a.ID] {
			continue
		}
		if a.Status != appointment.StatusConfirmed && a.Status != appointment.StatusCompleted {
			continue
		}
		cents += s.services[a.ServiceID].PriceCents
	}
	return cents, nil
}

func (s *Store) PaidConsultationRevenue(_ context.Context, r report.Range) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var cents int64
	for _, c := range s.consultations {
		if !c.Paid {
			continue
		}
		if a, ok := s.appointments[c.AppointmentID]; ok && inRange(a, &r) {
			cents += c.AmountCents
		}
	}
	return cents, nil
}

func (s *Store) TopProfessionals(_ context.Context, r *report.Range, n int) ([]report.Ranked, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.rankLocked(r, n,
		func(a appointment.Appointment) uuid.UUID { return a.ProfessionalID },
		func(id uuid.UUID) string { return s.professionals[id].Name },
	), nil
}

func (s *Store) TopServices(_ context.Context, r *report.Range, n int) ([]report.Ranked, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.rankLocked(r, n,
		func(a appointment.Appointment) uuid.UUID { return a.ServiceID },
		func(id uuid.UUID) string { return s.services[id].Name },
	), nil
}

func (s *Store) rankLocked(r *report.Range, n int, key func(appointment.Appointment) uuid.UUID, name func(uuid.UUID) string) []report.Ranked {
	counts := make(map[uuid.UUID]int)
	for _, a := range s.appointments {
		if inRange(a, r) {
			counts[key(a)]++
		}
	}

	result := make([]report.Ranked, 0, len(counts))
	for id, c := range counts {
		result = append(result, report.Ranked{ID: id, Name: name(id), Count: c})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Name < result[j].Name
	})
	if n > 0 && len(result) > n {
		result = result[:n]
	}
	return result
}

func (s *Store) Totals(_ context.Context) (report.Totals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t := report.Totals{Professionals: len(s.professionals), Services: len(s.services)}
	for _, p := range s.persons {
		if p.Role == identity.RolePatient {
			t.Patients++
		}
	}
	return t, nil
}
