package api

import (
	"net/http"
	"time"

	"github.com/okingsaam/Pulse/internal/identity"
)

func registerPersonHandler(svc *identity.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterPersonRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		in := identity.RegisterInput{
			Name:       req.Name,
			Email:      req.Email,
			Phone:      req.Phone,
			DocumentID: req.DocumentID,
		}
		if req.BirthDate != "" {
			// validated by the datetime tag
			d, _ := time.Parse(dateLayout, req.BirthDate)
			in.BirthDate = &d
		}
		if req.Role != "" {
			in.Role, _ = identity.ParseRole(req.Role)
		}

		p, err := svc.Register(r.Context(), ActorFrom(r.Context()), in)
		if err != nil {
			handleError(w, r, err)
			return
		}

		writeJSON(w, http.StatusCreated, toPersonResponse(p))
	}
}

func getPersonHandler(svc *identity.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}

		p, err := svc.Get(r.Context(), ActorFrom(r.Context()), id)
		if err != nil {
			handleError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, toPersonResponse(p))
	}
}

func listPersonsHandler(svc *identity.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		role := identity.RoleUnknown
		if raw := q.Get("role"); raw != "" {
			var err error
			if role, err = identity.ParseRole(raw); err != nil {
				writeError(w, http.StatusBadRequest, "invalid_role", err.Error())
				return
			}
		}
		limit, offset, err := queryPage(q.Get("limit"), q.Get("offset"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_page", err.Error())
			return
		}

		persons, err := svc.List(r.Context(), ActorFrom(r.Context()), role, limit, offset)
		if err != nil {
			handleError(w, r, err)
			return
		}

		resp := make([]PersonResponse, 0, len(persons))
		for i := range persons {
			resp = append(resp, toPersonResponse(&persons[i]))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func updatePersonHandler(svc *identity.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		var req UpdateContactRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		p, err := svc.UpdateContact(r.Context(), ActorFrom(r.Context()), id, identity.ContactInput{
			Name:   req.Name,
			Email:  req.Email,
			Phone:  req.Phone,
			Active: req.Active,
		})
		if err != nil {
			handleError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, toPersonResponse(p))
	}
}

func deletePersonHandler(svc *identity.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		if err := svc.Delete(r.Context(), ActorFrom(r.Context()), id); err != nil {
			handleError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
