package api

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// HealthHandler reports liveness and dependency readiness. A nil pool means
// the in-memory store is in use; a nil Redis client means locking and
// caching are off.
type HealthHandler struct {
	deps    []dependency
	env     string
	version string
}

// dependency is one readiness probe. A failing critical dependency makes the
// service unready; any other failure only degrades it.
type dependency struct {
	name     string
	critical bool
	ping     func(ctx context.Context) error // nil when disabled
}

func NewHealthHandler(pgPool *pgxpool.Pool, rdb *redis.Client, env, version string) *HealthHandler {
	pg := dependency{name: "postgres", critical: true}
	if pgPool != nil {
		pg.ping = pgPool.Ping
	}
	cache := dependency{name: "redis"}
	if rdb != nil {
		cache.ping = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	return &HealthHandler{
		deps:    []dependency{pg, cache},
		env:     env,
		version: version,
	}
}

type LivenessResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Env     string `json:"env,omitempty"`
}

type ReadinessResponse struct {
	Status       string            `json:"status"`
	Version      string            `json:"version,omitempty"`
	Env          string            `json:"env,omitempty"`
	Dependencies map[string]string `json:"dependencies"`
}

func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, LivenessResponse{
		Status:  "ok",
		Version: h.version,
		Env:     h.env,
	})
}

func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := ReadinessResponse{
		Status:       "ok",
		Version:      h.version,
		Env:          h.env,
		Dependencies: make(map[string]string, len(h.deps)),
	}

	for _, dep := range h.deps {
		if dep.ping == nil {
			resp.Dependencies[dep.name] = "disabled"
			continue
		}

		pingCtx, pingCancel := context.WithTimeout(ctx, time.Second)
		err := dep.ping(pingCtx)
		pingCancel()

		switch {
		case err == nil:
			resp.Dependencies[dep.name] = "ok"
		case dep.critical:
			resp.Dependencies[dep.name] = "down"
			resp.Status = "error"
		default:
			resp.Dependencies[dep.name] = "down"
			if resp.Status == "ok" {
				resp.Status = "degraded"
			}
		}
	}

	httpStatus := http.StatusOK
	if resp.Status == "error" {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, resp)
}
