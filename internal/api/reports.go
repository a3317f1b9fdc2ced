package api

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/okingsaam/Pulse/internal/identity"
	"github.com/okingsaam/Pulse/internal/report"
)

type reportHandlers struct {
	svc *report.Service
	loc *time.Location
}

func (h reportHandlers) dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Dashboard(r.Context(), ActorFrom(r.Context()))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h reportHandlers) perDay(w http.ResponseWriter, r *http.Request) {
	rng, ok := h.queryRange(w, r.URL.Query())
	if !ok {
		return
	}
	if rng == nil {
		writeError(w, http.StatusBadRequest, "invalid_range", "from and to are required")
		return
	}

	counts, err := h.svc.PerDay(r.Context(), ActorFrom(r.Context()), *rng)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

func (h reportHandlers) perStatus(w http.ResponseWriter, r *http.Request) {
	rng, ok := h.queryRange(w, r.URL.Query())
	if !ok {
		return
	}

	counts, err := h.svc.PerStatus(r.Context(), ActorFrom(r.Context()), rng)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

func (h reportHandlers) revenue(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	now := time.Now().In(h.loc)

	year, err := queryInt(q.Get("year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_year", "year must be an integer")
		return
	}
	if year == 0 {
		year = now.Year()
	}
	month, err := queryInt(q.Get("month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_month", "month must be an integer")
		return
	}
	if q.Get("month") == "" {
		month = int(now.Month())
	}

	rev, err := h.svc.RevenueForMonth(r.Context(), ActorFrom(r.Context()), year, time.Month(month))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rev)
}

func (h reportHandlers) topProfessionals(w http.ResponseWriter, r *http.Request) {
	h.top(w, r, h.svc.TopProfessionals)
}

func (h reportHandlers) topServices(w http.ResponseWriter, r *http.Request) {
	h.top(w, r, h.svc.TopServices)
}

func (h reportHandlers) top(w http.ResponseWriter, r *http.Request, rank func(ctx context.Context, actor identity.Actor, rng *report.Range, n int) ([]report.Ranked, error)) {
	q := r.URL.Query()
	rng, ok := h.queryRange(w, q)
	if !ok {
		return
	}
	n, err := queryInt(q.Get("n"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_n", "n must be an integer")
		return
	}

	ranked, err := rank(r.Context(), ActorFrom(r.Context()), rng, n)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ranked)
}

func (h reportHandlers) agenda(w http.ResponseWriter, r *http.Request) {
	day := time.Now().In(h.loc)
	if raw := r.URL.Query().Get("day"); raw != "" {
		t, err := queryTime(raw, h.loc)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_day", "day must be YYYY-MM-DD or RFC 3339")
			return
		}
		day = *t
	}

	agenda, err := h.svc.WeekAgenda(r.Context(), ActorFrom(r.Context()), day)
	if err != nil {
		handleError(w, r, err)
		return
	}

	type agendaDay struct {
		Date         string                `json:"date"`
		Appointments []AppointmentResponse `json:"appointments"`
	}
	resp := struct {
		WeekStart string      `json:"week_start"`
		Days      []agendaDay `json:"days"`
	}{WeekStart: agenda.WeekStart, Days: make([]agendaDay, 0, len(agenda.Days))}
	for _, d := range agenda.Days {
		resp.Days = append(resp.Days, agendaDay{Date: d.Date, Appointments: toDetailList(d.Appointments)})
	}
	writeJSON(w, http.StatusOK, resp)
}

// queryRange reads from/to. Both absent means no range; plain dates are
// clinic-local midnights.
func (h reportHandlers) queryRange(w http.ResponseWriter, q url.Values) (*report.Range, bool) {
	from, err := queryTime(q.Get("from"), h.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_from", "from must be YYYY-MM-DD or RFC 3339")
		return nil, false
	}
	to, err := queryTime(q.Get("to"), h.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_to", "to must be YYYY-MM-DD or RFC 3339")
		return nil, false
	}

	switch {
	case from == nil && to == nil:
		return nil, true
	case from == nil || to == nil:
		writeError(w, http.StatusBadRequest, "invalid_range", "from and to must be given together")
		return nil, false
	}
	return &report.Range{From: *from, To: *to}, true
}
