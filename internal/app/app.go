// Package app wires storage, Redis and the domain services from config.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/okingsaam/Pulse/internal/appointment"
	"github.com/okingsaam/Pulse/internal/catalog"
	"github.com/okingsaam/Pulse/internal/config"
	"github.com/okingsaam/Pulse/internal/consultation"
	"github.com/okingsaam/Pulse/internal/db"
	"github.com/okingsaam/Pulse/internal/identity"
	"github.com/okingsaam/Pulse/internal/memstore"
	"github.com/okingsaam/Pulse/internal/notify"
	redisclient "github.com/okingsaam/Pulse/internal/redis"
	"github.com/okingsaam/Pulse/internal/report"
)

const cachePrefix = "pulse:"

type repositories struct {
	persons       identity.Repository
	catalog       catalog.Repository
	appointments  appointment.Repository
	consultations consultation.Repository
	reports       report.Repository
}

type App struct {
	Persons       *identity.Service
	Catalog       *catalog.Manager
	Appointments  *appointment.Service
	Consultations *consultation.Service
	Reports       *report.Service
	Reminder      *notify.Reminder

	PgPool *pgxpool.Pool // nil with in-memory storage
	Redis  *redis.Client // nil when redis is off or unreachable
}

// New connects the configured backends and builds the services. Redis is
// optional: when it is disabled or unreachable bookings run without the slot
// lock and the dashboard is not cached.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	a := &App{}

	repos, err := a.openStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	var locker redisclient.Locker = redisclient.NopLocker{}
	var reportOpts []report.Option

	rdb, err := redisclient.Connect(ctx, cfg)
	switch {
	case err == nil:
		a.Redis = rdb
		locker = redisclient.NewRedisSlotLocker(rdb, cfg.LockTTL)
		if cfg.DashboardCacheTTL > 0 {
			reportOpts = append(reportOpts, report.WithCache(redisclient.NewJSONCache(rdb, cachePrefix), cfg.DashboardCacheTTL))
		}
		logger.Info("connected to redis", slog.String("addr", cfg.RedisAddr))
	case errors.Is(err, redisclient.ErrDisabled):
		logger.Info("redis disabled, bookings rely on the storage constraint")
	default:
		logger.Warn("redis unavailable, continuing without slot lock and cache", slog.Any("error", err))
	}

	loc := cfg.Location()
	a.Persons = identity.NewService(repos.persons, cfg.PhoneRegion, logger)
	a.Catalog = catalog.NewManager(repos.catalog, repos.persons, cfg.PhoneRegion, logger)
	a.Appointments = appointment.NewService(repos.appointments, repos.persons, repos.catalog, locker, cfg, logger)
	a.Consultations = consultation.NewService(repos.consultations, repos.appointments, repos.catalog, logger)
	a.Reports = report.NewService(repos.reports, repos.appointments, loc, logger, reportOpts...)
	a.Reminder = notify.NewReminder(repos.appointments, notify.NewSMTPMailer(cfg.Mail), loc, logger)

	return a, nil
}

func (a *App) openStorage(ctx context.Context, cfg config.Config, logger *slog.Logger) (repositories, error) {
	switch cfg.Storage {
	case "memory":
		logger.Warn("using in-memory storage, data is lost on exit")
		mem := memstore.New()
		return repositories{mem, mem, mem, mem, mem}, nil
	case "postgres":
	default:
		return repositories{}, fmt.Errorf("unknown storage %q", cfg.Storage)
	}

	pgCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	pool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancel()
	if err != nil {
		return repositories{}, fmt.Errorf("connect postgres: %w", err)
	}
	if err := db.Migrate(ctx, pool); err != nil {
		pool.Close()
		return repositories{}, err
	}
	logger.Info("connected to postgres")
	a.PgPool = pool

	return repositories{
		persons:       identity.NewPgRepository(pool),
		catalog:       catalog.NewPgRepository(pool),
		appointments:  appointment.NewPgRepository(pool),
		consultations: consultation.NewPgRepository(pool),
		reports:       report.NewPgRepository(pool),
	}, nil
}

func (a *App) Close() error {
	var err error
	if a.Redis != nil {
		err = a.Redis.Close()
	}
	if a.PgPool != nil {
		a.PgPool.Close()
	}
	return err
}
