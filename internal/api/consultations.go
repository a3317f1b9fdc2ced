package api

import (
	"net/http"

	"github.com/okingsaam/Pulse/internal/consultation"
)

func recordConsultationHandler(svc *consultation.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		apptID, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		var req ConsultationRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		c, err := svc.Record(r.Context(), ActorFrom(r.Context()), apptID, req.input())
		if err != nil {
			handleError(w, r, err)
			return
		}

		writeJSON(w, http.StatusCreated, toConsultationResponse(c))
	}
}

func getConsultationHandler(svc *consultation.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		apptID, ok := pathID(w, r, "id")
		if !ok {
			return
		}

		c, err := svc.Get(r.Context(), ActorFrom(r.Context()), apptID)
		if err != nil {
			handleError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, toConsultationResponse(c))
	}
}

func updateConsultationHandler(svc *consultation.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		var req ConsultationRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		c, err := svc.Update(r.Context(), ActorFrom(r.Context()), id, req.input())
		if err != nil {
			handleError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, toConsultationResponse(c))
	}
}

func paymentHandler(svc *consultation.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		var req PaymentRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		c, err := svc.MarkPaid(r.Context(), ActorFrom(r.Context()), id, *req.Paid)
		if err != nil {
			handleError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, toConsultationResponse(c))
	}
}
