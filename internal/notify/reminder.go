package notify

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"text/template"
	"time"

	"github.com/okingsaam/Pulse/internal/appointment"
	"github.com/okingsaam/Pulse/internal/metrics"
)

type AppointmentLister interface {
	ListAppointments(ctx context.Context, f appointment.Filter) ([]appointment.Detail, error)
}

type Result struct {
	Sent    int `json:"sent"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

var reminderBody = template.Must(template.New("reminder").Parse(
	`Hello {{.Patient}},

This is a reminder of your appointment:

  Service:      {{.Service}}
  Professional: {{.Professional}} ({{.Specialty}})
  When:         {{.When}}

If you cannot attend, please cancel it in advance.

Pulse
`))

type reminderData struct {
	Patient      string
	Service      string
	Professional string
	Specialty    string
	When         string
}

// Reminder emails patients about their confirmed appointments.
type Reminder struct {
	appts  AppointmentLister
	mailer Mailer
	loc    *time.Location
	logger *slog.Logger
}

func NewReminder(appts AppointmentLister, mailer Mailer, loc *time.Location, logger *slog.Logger) *Reminder {
	return &Reminder{appts: appts, mailer: mailer, loc: loc, logger: logger}
}

// SendForDay notifies every patient with a confirmed appointment on the
// clinic-local calendar day of day. Patients without an email are skipped.
func (r *Reminder) SendForDay(ctx context.Context, day time.Time) (Result, error) {
	local := day.In(r.loc)
	from := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, r.loc)
	to := from.AddDate(0, 0, 1)

	list, err := r.appts.ListAppointments(ctx, appointment.Filter{
		Statuses: []appointment.Status{appointment.StatusConfirmed},
		From:     &from,
		To:       &to,
	})
	if err != nil {
		return Result{}, fmt.Errorf("list appointments for reminders: %w", err)
	}

	var res Result
	for _, d := range list {
		if d.PatientEmail == nil || *d.PatientEmail == "" {
			res.Skipped++
			metrics.RemindersTotal.WithLabelValues("skipped").Inc()
			continue
		}

		if err := r.send(ctx, d); err != nil {
			res.Failed++
			metrics.RemindersTotal.WithLabelValues("failed").Inc()
			r.logger.Error("reminder delivery failed",
				slog.String("appointment_id", d.ID.String()),
				slog.Any("error", err),
			)
			continue
		}
		res.Sent++
		metrics.RemindersTotal.WithLabelValues("sent").Inc()
	}

	r.logger.Info("reminders processed",
		slog.String("day", from.Format("2006-01-02")),
		slog.Int("sent", res.Sent),
		slog.Int("skipped", res.Skipped),
		slog.Int("failed", res.Failed),
	)
	return res, nil
}

func (r *Reminder) send(ctx context.Context, d appointment.Detail) error {
	var body bytes.Buffer
	err := reminderBody.Execute(&body, reminderData{
		Patient:      d.PatientName,
		Service:      d.ServiceName,
		Professional: d.ProfessionalName,
		Specialty:    d.Specialty,
		When:         d.ScheduledAt.In(r.loc).Format("Mon 02/01/2006 15:04 MST"),
	})
	if err != nil {
		return fmt.Errorf("render reminder: %w", err)
	}

	return r.mailer.Send(ctx, Message{
		To:       *d.PatientEmail,
		Subject:  "Appointment reminder: " + d.ServiceName,
		TextBody: body.String(),
	})
}
