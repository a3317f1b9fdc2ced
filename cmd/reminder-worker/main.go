package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/okingsaam/Pulse/internal/app"
	"github.com/okingsaam/Pulse/internal/config"
	"github.com/okingsaam/Pulse/internal/logs"
	"github.com/okingsaam/Pulse/internal/notify"
)

func main() {
	once := flag.Bool("once", false, "send reminders immediately and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	logger := logs.New(cfg, "reminder-worker")
	slog.SetDefault(logger)
	logger.Info("reminder-worker starting up",
		slog.String("schedule", cfg.ReminderCron),
		slog.Int("lead_days", cfg.ReminderLeadDays),
		slog.Bool("mail_enabled", cfg.Mail.Enabled),
	)
	if cfg.Storage == "memory" {
		logger.Warn("in-memory storage holds no appointments from other processes")
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pulse, err := app.New(rootCtx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := pulse.Close(); err != nil {
			logger.Warn("error closing backends", slog.Any("error", err))
		}
	}()

	loc := cfg.Location()
	job := func() { runOnce(rootCtx, pulse.Reminder, loc, cfg.ReminderLeadDays, logger) }

	if *once {
		job()
		return
	}

	cl := cronLogger{logger}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	if _, err := c.AddFunc(cfg.ReminderCron, job); err != nil {
		logger.Error("invalid REMINDER_CRON", slog.String("schedule", cfg.ReminderCron), slog.Any("error", err))
		os.Exit(1)
	}
	c.Start()

	<-rootCtx.Done()
	logger.Info("shutdown signal received, waiting for running job")
	<-c.Stop().Done()
}

func runOnce(ctx context.Context, r *notify.Reminder, loc *time.Location, leadDays int, logger *slog.Logger) {
	runCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	day := time.Now().In(loc).AddDate(0, 0, leadDays)
	start := time.Now()
	res, err := r.SendForDay(runCtx, day)
	if err != nil {
		logger.Error("reminder run error", slog.Any("error", err))
		return
	}
	logger.Info("reminder run complete",
		slog.String("day", day.Format("2006-01-02")),
		slog.Int("sent", res.Sent),
		slog.Int("failed", res.Failed),
		slog.Duration("took", time.Since(start)),
	)
}

// cronLogger routes scheduler messages through slog.
type cronLogger struct {
	l *slog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error(msg, append(keysAndValues, "error", err)...)
}
