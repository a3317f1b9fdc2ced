package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/okingsaam/Pulse/internal/appointment"
	"github.com/okingsaam/Pulse/internal/rejection"
)

const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func createAppointmentHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateAppointmentRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.When.IsZero() {
			writeError(w, http.StatusBadRequest, "invalid_when", "when must be an RFC 3339 timestamp with an offset")
			return
		}

		actor := ActorFrom(r.Context())
		if req.PatientID == uuid.Nil {
			req.PatientID = actor.ID
		}

		appt, err := svc.Book(r.Context(), actor, appointment.BookInput{
			PatientID:      req.PatientID,
			ProfessionalID: req.ProfessionalID,
			ServiceID:      req.ServiceID,
			When:           req.When,
			Notes:          req.Notes,
		})
		if err != nil {
			handleError(w, r, err)
			return
		}

		writeJSON(w, http.StatusCreated, toAppointmentResponse(appt))
	}
}

func getAppointmentHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}

		detail, err := svc.Get(r.Context(), ActorFrom(r.Context()), id)
		if err != nil {
			handleError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, toDetailResponse(detail))
	}
}

func listAppointmentsHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		var f appointment.Filter
		var err error

		if f.PatientID, err = queryUUID(q.Get("patient_id")); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_patient_id", "patient_id must be a valid UUID")
			return
		}
		if f.ProfessionalID, err = queryUUID(q.Get("professional_id")); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_professional_id", "professional_id must be a valid UUID")
			return
		}
		if raw := q.Get("status"); raw != "" {
			for _, part := range strings.Split(raw, ",") {
				st, err := appointment.ParseStatus(strings.TrimSpace(part))
				if err != nil {
					writeError(w, http.StatusBadRequest, "invalid_status", err.Error())
					return
				}
				f.Statuses = append(f.Statuses, st)
			}
		}
		if f.From, err = queryTime(q.Get("from"), time.UTC); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_from", "from must be RFC 3339")
			return
		}
		if f.To, err = queryTime(q.Get("to"), time.UTC); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_to", "to must be RFC 3339")
			return
		}
		if f.Limit, f.Offset, err = queryPage(q.Get("limit"), q.Get("offset")); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_page", err.Error())
			return
		}

		list, err := svc.List(r.Context(), ActorFrom(r.Context()), f)
		if err != nil {
			handleError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, toDetailList(list))
	}
}

func transitionAppointmentHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		var req TransitionRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		to, err := appointment.ParseStatus(req.Status)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_status", err.Error())
			return
		}

		appt, err := svc.Transition(r.Context(), ActorFrom(r.Context()), id, to)
		if err != nil {
			handleError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func bulkTransitionHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BulkTransitionRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		to, err := appointment.ParseStatus(req.Status)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_status", err.Error())
			return
		}

		res := svc.BulkTransition(r.Context(), ActorFrom(r.Context()), req.IDs, to)

		resp := BulkResponse{Affected: res.Affected, Failed: res.Failed, Items: make([]BulkItemResponse, 0, len(res.Items))}
		for _, item := range res.Items {
			out := BulkItemResponse{ID: item.ID, Status: item.Status}
			if item.Err != nil {
				_, code, msg := classify(item.Err)
				out.Error = &ErrorResponse{Error: code, Details: msg}
			}
			resp.Items = append(resp.Items, out)
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func deleteAppointmentHandler(svc *appointment.Service) http.HandlerFunc {
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

// handleError writes the response for a failed domain call.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, msg := classify(err)
	if status == http.StatusInternalServerError {
		loggerFrom(r.Context()).ErrorContext(r.Context(), "request failed",
			slog.String("request_id", GetRequestID(r.Context())),
			slog.Any("error", err),
		)
	}
	writeError(w, status, code, msg)
}

// classify maps an error to its HTTP status, error code and client message.
// Anything that is not a rejection is an internal error and its text is not
// exposed.
func classify(err error) (int, string, string) {
	reason, ok := rejection.ReasonOf(err)
	if !ok {
		return http.StatusInternalServerError, "internal_error", "internal error"
	}

	code := strings.ToLower(string(reason))
	switch reason {
	case rejection.NotFound:
		return http.StatusNotFound, code, err.Error()
	case rejection.Forbidden:
		return http.StatusForbidden, code, err.Error()
	case rejection.SlotTaken, rejection.InvalidTransition, rejection.Conflict:
		return http.StatusConflict, code, err.Error()
	case rejection.PastDate, rejection.TooFarFuture, rejection.Validation:
		return http.StatusUnprocessableEntity, code, err.Error()
	}
	return http.StatusInternalServerError, "internal_error", "internal error"
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return false
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			writeError(w, http.StatusBadRequest, "invalid_request_body", err.Error())
			return false
		}
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fe.Field()+": "+fe.Tag())
		}
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation",
			Details: "request body failed validation",
			Fields:  fields,
		})
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_"+param, param+" must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

func queryUUID(raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// queryTime accepts RFC 3339 or a plain date, which is read as midnight in loc.
func queryTime(raw string, loc *time.Location) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation(dateLayout, raw, loc)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func queryInt(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

func queryPage(rawLimit, rawOffset string) (limit, offset int, err error) {
	if limit, err = queryInt(rawLimit); err != nil || limit < 0 {
		return 0, 0, errors.New("limit must be a non-negative integer")
	}
	if offset, err = queryInt(rawOffset); err != nil || offset < 0 {
		return 0, 0, errors.New("offset must be a non-negative integer")
	}
	return limit, offset, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}
