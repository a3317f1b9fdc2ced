package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okingsaam/Pulse/internal/app"
	"github.com/okingsaam/Pulse/internal/appointment"
	"github.com/okingsaam/Pulse/internal/catalog"
	"github.com/okingsaam/Pulse/internal/config"
	"github.com/okingsaam/Pulse/internal/identity"
	"github.com/okingsaam/Pulse/internal/logs"
	"github.com/okingsaam/Pulse/internal/rejection"
)

var specialties = map[string][]string{
	"Cardiology":       {"Cardiology consult", "Electrocardiogram"},
	"Dermatology":      {"Dermatology consult", "Mole mapping"},
	"General Practice": {"Check-up", "Follow-up visit"},
	"Orthopedics":      {"Orthopedic consult", "Joint infiltration"},
	"Endocrinology":    {"Endocrinology consult", "Thyroid review"},
	"Neurology":        {"Neurology consult", "Headache clinic"},
	"Pediatrics":       {"Pediatric consult", "Childhood vaccination"},
	"Psychiatry":       {"Psychiatric evaluation", "Therapy session"},
	"Ophthalmology":    {"Eye exam", "Visual field test"},
}

var admin = identity.Actor{Role: identity.RoleAdmin}

type seeded struct {
	patients []uuid.UUID
	services []catalog.Service
}

func main() {
	professionals := flag.Int("professionals", 20, "number of professionals")
	patients := flag.Int("patients", 2000, "number of patients")
	appointments := flag.Int("appointments", 500, "number of appointments to book")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}
	if cfg.Storage != "postgres" {
		log.Fatal("seed requires STORAGE=postgres")
	}
	// Seeding runs without the slot lock.
	cfg.RedisAddr = ""

	logger := logs.New(cfg, "seed")
	logger.Info("seed starting")

	ctx := context.Background()
	pulse, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer pulse.Close()

	var data seeded
	steps := []struct {
		name string
		run  func() error
	}{
		{"admin", func() error { return seedAdmin(ctx, pulse, logger) }},
		{"professionals", func() error { return seedProfessionals(ctx, pulse, *professionals, &data, logger) }},
		{"patients", func() error { return seedPatients(ctx, pulse.PgPool, *patients, &data, logger) }},
		{"appointments", func() error { return seedAppointments(ctx, pulse, cfg.Location(), *appointments, &data, logger) }},
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			logger.Error("seed failed", slog.String("step", step.name), slog.Any("error", err))
			os.Exit(1)
		}
	}

	logger.Info("seed complete")
}

func seedAdmin(ctx context.Context, pulse *app.App, logger *slog.Logger) error {
	p, err := pulse.Persons.Register(ctx, admin, identity.RegisterInput{
		Name:  "Clinic Admin",
		Email: "admin@pulse.local",
		Role:  identity.RoleAdmin,
	})
	if err != nil {
		return err
	}
	logger.Info("admin created, use it as X-Actor-ID", slog.String("person_id", p.ID.String()))
	return nil
}

func seedProfessionals(ctx context.Context, pulse *app.App, count int, data *seeded, logger *slog.Logger) error {
	logger.Info("seeding professionals", slog.Int("count", count))

	names := make([]string, 0, len(specialties))
	for s := range specialties {
		names = append(names, s)
	}

	for i := 0; i < count; i++ {
		specialty := gofakeit.RandomString(names)
		name := "Dr. " + gofakeit.Name()

		person, err := pulse.Persons.Register(ctx, admin, identity.RegisterInput{
			Name:  name,
			Email: emailFor(name, i),
			Phone: mobilePhone(),
			Role:  identity.RoleProfessional,
		})
		if err != nil {
			return fmt.Errorf("register professional account: %w", err)
		}

		prof, err := pulse.Catalog.CreateProfessional(ctx, admin, catalog.ProfessionalInput{
			Name:      name,
			Specialty: specialty,
			LicenseID: "CRM-" + gofakeit.Numerify("######"),
			Phone:     mobilePhone(),
		})
		if err != nil {
			return fmt.Errorf("create professional: %w", err)
		}
		if _, err := pulse.Catalog.LinkAccount(ctx, admin, prof.ID, person.ID); err != nil {
			return fmt.Errorf("link account: %w", err)
		}

		for _, svcName := range specialties[specialty] {
			id := prof.ID
			svc, err := pulse.Catalog.CreateService(ctx, admin, catalog.ServiceInput{
				Name:           svcName,
				Description:    fmt.Sprintf("%s with %s", svcName, name),
				PriceCents:     int64(gofakeit.Number(80, 450)) * 100,
				Duration:       time.Duration(gofakeit.RandomInt([]int{30, 45, 60})) * time.Minute,
				ProfessionalID: &id,
			})
			if err != nil {
				return fmt.Errorf("create service: %w", err)
			}
			data.services = append(data.services, *svc)
		}
	}

	logger.Info("professionals seeded", slog.Int("services", len(data.services)))
	return nil
}

// seedPatients writes straight to the persons table in batches; the fake data
// is generated already normalized.
func seedPatients(ctx context.Context, pool *pgxpool.Pool, count int, data *seeded, logger *slog.Logger) error {
	logger.Info("seeding patients", slog.Int("count", count))

	const batchSize = 500
	minBirth := time.Date(1940, 1, 1, 0, 0, 0, 0, time.UTC)
	maxBirth := time.Date(2020, 12, 31, 0, 0, 0, 0, time.UTC)
	// random base so reruns rarely collide on document_id
	docBase := int64(gofakeit.Number(10, 98)) * 1_000_000_000

	for offset := 0; offset < count; offset += batchSize {
		end := min(offset+batchSize, count)

		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}
		repo := identity.NewPgRepository(tx)

		for i := offset; i < end; i++ {
			name := gofakeit.Name()
			email := emailFor(name, i)
			phone := mobilePhone()
			doc := fmt.Sprintf("%011d", docBase+int64(i))
			birth := gofakeit.DateRange(minBirth, maxBirth).Truncate(24 * time.Hour)

			p := &identity.Person{
				ID:         uuid.New(),
				Name:       name,
				Email:      &email,
				Phone:      &phone,
				DocumentID: &doc,
				BirthDate:  &birth,
				Role:       identity.RolePatient,
				Active:     true,
			}
			if err := repo.CreatePerson(ctx, p); err != nil {
				_ = tx.Rollback(ctx)
				return err
			}
			data.patients = append(data.patients, p.ID)
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}

		logger.Info("patients seeded", slog.Int("done", end), slog.Int("total", count))
	}
	return nil
}

// seedAppointments books on the hour during office days of the next four
// weeks. Taken slots are skipped.
func seedAppointments(ctx context.Context, pulse *app.App, loc *time.Location, count int, data *seeded, logger *slog.Logger) error {
	if len(data.patients) == 0 || len(data.services) == 0 {
		return nil
	}
	logger.Info("seeding appointments", slog.Int("count", count))

	today := time.Now().In(loc)
	var booked, taken int
	for i := 0; i < count; i++ {
		svc := data.services[gofakeit.Number(0, len(data.services)-1)]
		day := today.AddDate(0, 0, gofakeit.Number(1, 28))
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		when := time.Date(day.Year(), day.Month(), day.Day(), gofakeit.Number(8, 17), 0, 0, 0, loc)

		appt, err := pulse.Appointments.Book(ctx, admin, appointment.BookInput{
			PatientID:      data.patients[gofakeit.Number(0, len(data.patients)-1)],
			ProfessionalID: *svc.ProfessionalID,
			ServiceID:      svc.ID,
			When:           when,
		})
		if rejection.Is(err, rejection.SlotTaken) {
			taken++
			continue
		}
		if err != nil {
			return err
		}
		booked++

		if gofakeit.Bool() {
			if _, err := pulse.Appointments.Transition(ctx, admin, appt.ID, appointment.StatusConfirmed); err != nil {
				return err
			}
		}
	}

	logger.Info("appointments seeded", slog.Int("booked", booked), slog.Int("slot_taken", taken))
	return nil
}

func emailFor(name string, n int) string {
	local := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ':
			return '.'
		}
		return -1
	}, strings.ToLower(strings.TrimPrefix(name, "Dr. ")))
	return fmt.Sprintf("%s.%d@example.com", local, n)
}

// mobilePhone returns a São Paulo mobile number in E.164.
func mobilePhone() string {
	return "+55119" + gofakeit.Numerify("########")
}
