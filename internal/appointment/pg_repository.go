package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/okingsaam/Pulse/internal/db"
)

type PgRepository struct {
	conn db.DBTX
}

func NewPgRepository(conn db.DBTX) *PgRepository {
	return &PgRepository{conn: conn}
}

const appointmentCols = `id, patient_id, professional_id, service_id, scheduled_at, status, notes, created_at, updated_at`

const detailSelect = `
	SELECT a.id, a.patient_id, a.professional_id, a.service_id, a.scheduled_at, a.status, a.notes,
	       a.created_at, a.updated_at,
	       pe.name, pe.email, pr.name, pr.specialty, s.name, s.price_cents
	FROM appointments a
	JOIN persons pe ON pe.id = a.patient_id
	JOIN professionals pr ON pr.id = a.professional_id
	JOIN services s ON s.id = a.service_id
`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment

	err := row.Scan(
		&a.ID,
		&a.PatientID,
		&a.ProfessionalID,
		&a.ServiceID,
		&a.ScheduledAt,
		&a.Status,
		&a.Notes,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	a.ScheduledAt = a.ScheduledAt.UTC()
	return &a, nil
}

func scanDetail(row pgx.Row) (*Detail, error) {
	var d Detail

	err := row.Scan(
		&d.ID,
		&d.PatientID,
		&d.ProfessionalID,
		&d.ServiceID,
		&d.ScheduledAt,
		&d.Status,
		&d.Notes,
		&d.CreatedAt,
		&d.UpdatedAt,
		&d.PatientName,
		&d.PatientEmail,
		&d.ProfessionalName,
		&d.Specialty,
		&d.ServiceName,
		&d.PriceCents,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	d.ScheduledAt = d.ScheduledAt.UTC()
	return &d, nil
}

func (r *PgRepository) CreateAppointment(ctx context.Context, a *Appointment) error {
	row := r.conn.QueryRow(ctx, `
		INSERT INTO appointments (id, patient_id, professional_id, service_id, scheduled_at, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
		RETURNING created_at, updated_at
	`, a.ID, a.PatientID, a.ProfessionalID, a.ServiceID, a.ScheduledAt, a.Status, a.Notes)

	if err := row.Scan(&a.CreatedAt, &a.UpdatedAt); err != nil {
		switch {
		case db.IsUniqueViolation(err, db.ConstraintActiveSlot):
			return ErrSlotTaken
		case db.IsForeignKeyViolation(err):
			return ErrReferenceNotFound
		}
		return fmt.Errorf("insert appointment: %w", err)
	}
	return nil
}

func (r *PgRepository) GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+appointmentCols+` FROM appointments WHERE id = $1`, id)
	return scanAppointment(row)
}

func (r *PgRepository) GetAppointmentDetail(ctx context.Context, id uuid.UUID) (*Detail, error) {
	row := r.conn.QueryRow(ctx, detailSelect+` WHERE a.id = $1`, id)
	return scanDetail(row)
}

func (r *PgRepository) SlotTaken(ctx context.Context, professionalID uuid.UUID, at time.Time) (bool, error) {
	var taken bool
	err := r.conn.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE professional_id = $1 AND scheduled_at = $2 AND status <> 'cancelled'
		)
	`, professionalID, at).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("check slot: %w", err)
	}
	return taken, nil
}

func (r *PgRepository) UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, from, to Status) (*Appointment, error) {
	row := r.conn.QueryRow(ctx, `
		UPDATE appointments
		SET status = $2,
		    updated_at = now()
		WHERE id = $1
		  AND status = $3
		RETURNING `+appointmentCols, id, to, from)

	return scanAppointment(row)
}

func (r *PgRepository) ListAppointments(ctx context.Context, f Filter) ([]Detail, error) {
	var statuses []string
	for _, s := range f.Statuses {
		statuses = append(statuses, string(s))
	}
	var limit *int
	if f.Limit > 0 {
		limit = &f.Limit
	}

	rows, err := r.conn.Query(ctx, detailSelect+`
		WHERE ($1::uuid IS NULL OR a.patient_id = $1)
		  AND ($2::uuid IS NULL OR a.professional_id = $2)
		  AND ($3::text[] IS NULL OR a.status = ANY($3))
		  AND ($4::timestamptz IS NULL OR a.scheduled_at >= $4)
		  AND ($5::timestamptz IS NULL OR a.scheduled_at < $5)
		ORDER BY a.scheduled_at, a.id
		LIMIT $6 OFFSET $7
	`, f.PatientID, f.ProfessionalID, statuses, f.From, f.To, limit, f.Offset)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	defer rows.Close()

	var result []Detail
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *d)
	}
	return result, rows.Err()
}

func (r *PgRepository) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

func (r *PgRepository) InsertEvent(ctx context.Context, ev EventLog) error {
	_, err := r.conn.Exec(ctx, `
		INSERT INTO event_logs (event_type, appointment_id, payload, created_at)
		VALUES ($1, $2, $3, COALESCE($4, now()))
	`, ev.EventType, ev.AppointmentID, ev.Payload, nullableTime(ev.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert event log: %w", err)
	}
	return nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
