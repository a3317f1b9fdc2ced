package api

import (
	"net/http"
	"strconv"

	"github.com/okingsaam/Pulse/internal/catalog"
)

func createProfessionalHandler(m *catalog.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ProfessionalRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		p, err := m.CreateProfessional(r.Context(), ActorFrom(r.Context()), req.input())
		if err != nil {
			handleError(w, r, err)
			return
		}

		writeJSON(w, http.StatusCreated, toProfessionalResponse(p))
	}
}

func getProfessionalHandler(m *catalog.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}

		p, err := m.GetProfessional(r.Context(), id)
		if err != nil {
			handleError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, toProfessionalResponse(p))
	}
}

func listProfessionalsHandler(m *catalog.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		activeOnly, ok := queryBool(w, q.Get("active"), "active")
		if !ok {
			return
		}
		limit, offset, err := queryPage(q.Get("limit"), q.Get("offset"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_page", err.Error())
			return
		}

		list, err := m.ListProfessionals(r.Context(), activeOnly, limit, offset)
		if err != nil {
			handleError(w, r, err)
			return
		}

		resp := make([]ProfessionalResponse, 0, len(list))
		for i := range list {
			resp = append(resp, toProfessionalResponse(&list[i]))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func updateProfessionalHandler(m *catalog.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		var req ProfessionalRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		p, err := m.UpdateProfessional(r.Context(), ActorFrom(r.Context()), id, req.input())
		if err != nil {
			handleError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, toProfessionalResponse(p))
	}
}

func deleteProfessionalHandler(m *catalog.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		if err := m.DeleteProfessional(r.Context(), ActorFrom(r.Context()), id); err != nil {
			handleError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func linkAccountHandler(m *catalog.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		var req LinkAccountRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		p, err := m.LinkAccount(r.Context(), ActorFrom(r.Context()), id, req.PersonID)
		if err != nil {
			handleError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, toProfessionalResponse(p))
	}
}

func createServiceHandler(m *catalog.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ServiceRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		s, err := m.CreateService(r.Context(), ActorFrom(r.Context()), req.input())
		if err != nil {
			handleError(w, r, err)
			return
		}

		writeJSON(w, http.StatusCreated, toServiceResponse(s))
	}
}

func getServiceHandler(m *catalog.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}

		s, err := m.GetService(r.Context(), id)
		if err != nil {
			handleError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, toServiceResponse(s))
	}
}

func listServicesHandler(m *catalog.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		var f catalog.ServiceFilter
		var err error

		if f.ProfessionalID, err = queryUUID(q.Get("professional_id")); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_professional_id", "professional_id must be a valid UUID")
			return
		}
		var ok bool
		if f.ActiveOnly, ok = queryBool(w, q.Get("active"), "active"); !ok {
			return
		}
		if f.Limit, f.Offset, err = queryPage(q.Get("limit"), q.Get("offset")); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_page", err.Error())
			return
		}

		list, err := m.ListServices(r.Context(), f)
		if err != nil {
			handleError(w, r, err)
			return
		}

		resp := make([]ServiceResponse, 0, len(list))
		for i := range list {
			resp = append(resp, toServiceResponse(&list[i]))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func updateServiceHandler(m *catalog.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		var req ServiceRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		s, err := m.UpdateService(r.Context(), ActorFrom(r.Context()), id, req.input())
		if err != nil {
			handleError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, toServiceResponse(s))
	}
}

func deleteServiceHandler(m *catalog.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		if err := m.DeleteService(r.Context(), ActorFrom(r.Context()), id); err != nil {
			handleError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func queryBool(w http.ResponseWriter, raw, name string) (bool, bool) {
	if raw == "" {
		return false, true
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_"+name, name+" must be true or false")
		return false, false
	}
	return b, true
}
