package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/okingsaam/Pulse/internal/appointment"
	"github.com/okingsaam/Pulse/internal/catalog"
	"github.com/okingsaam/Pulse/internal/consultation"
	"github.com/okingsaam/Pulse/internal/identity"
	"github.com/okingsaam/Pulse/internal/metrics"
	"github.com/okingsaam/Pulse/internal/report"
)

type RouterConfig struct {
	Persons       *identity.Service
	Catalog       *catalog.Manager
	Appointments  *appointment.Service
	Consultations *consultation.Service
	Reports       *report.Service
	Location      *time.Location // clinic zone for date-only query parameters
	PgPool        *pgxpool.Pool  // nil with in-memory storage
	Redis         *redis.Client  // nil when redis is off
	Logger        *slog.Logger
	Env           string
	Version       string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Apply middleware
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(middleware.Recoverer)

	// Health endpoints
	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)
	r.Handle("/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(ActorMiddleware)

		r.Route("/persons", func(r chi.Router) {
			r.Post("/", registerPersonHandler(cfg.Persons))
			r.Get("/", listPersonsHandler(cfg.Persons))
			r.Get("/{id}", getPersonHandler(cfg.Persons))
			r.Patch("/{id}", updatePersonHandler(cfg.Persons))
			r.Delete("/{id}", deletePersonHandler(cfg.Persons))
		})

		r.Route("/professionals", func(r chi.Router) {
			r.Post("/", createProfessionalHandler(cfg.Catalog))
			r.Get("/", listProfessionalsHandler(cfg.Catalog))
			r.Get("/{id}", getProfessionalHandler(cfg.Catalog))
			r.Put("/{id}", updateProfessionalHandler(cfg.Catalog))
			r.Delete("/{id}", deleteProfessionalHandler(cfg.Catalog))
			r.Put("/{id}/account", linkAccountHandler(cfg.Catalog))
		})

		r.Route("/services", func(r chi.Router) {
			r.Post("/", createServiceHandler(cfg.Catalog))
			r.Get("/", listServicesHandler(cfg.Catalog))
			r.Get("/{id}", getServiceHandler(cfg.Catalog))
			r.Put("/{id}", updateServiceHandler(cfg.Catalog))
			r.Delete("/{id}", deleteServiceHandler(cfg.Catalog))
		})

		// Appointment endpoints
		r.Route("/appointments", func(r chi.Router) {
			r.Post("/", createAppointmentHandler(cfg.Appointments))
			r.Get("/", listAppointmentsHandler(cfg.Appointments))
			r.Post("/status", bulkTransitionHandler(cfg.Appointments))
			r.Get("/{id}", getAppointmentHandler(cfg.Appointments))
			r.Delete("/{id}", deleteAppointmentHandler(cfg.Appointments))
			r.Post("/{id}/status", transitionAppointmentHandler(cfg.Appointments))
			r.Post("/{id}/consultation", recordConsultationHandler(cfg.Consultations))
			r.Get("/{id}/consultation", getConsultationHandler(cfg.Consultations))
		})

		r.Route("/consultations", func(r chi.Router) {
			r.Put("/{id}", updateConsultationHandler(cfg.Consultations))
			r.Put("/{id}/payment", paymentHandler(cfg.Consultations))
		})

		reports := reportHandlers{svc: cfg.Reports, loc: cfg.Location}
		r.Route("/reports", func(r chi.Router) {
			r.Get("/dashboard", reports.dashboard)
			r.Get("/per-day", reports.perDay)
			r.Get("/per-status", reports.perStatus)
			r.Get("/revenue", reports.revenue)
			r.Get("/top-professionals", reports.topProfessionals)
			r.Get("/top-services", reports.topServices)
			r.Get("/agenda", reports.agenda)
		})
	})

	return r
}
