package consultation

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/okingsaam/Pulse/internal/appointment"
	"github.com/okingsaam/Pulse/internal/db"
)

type PgRepository struct {
	conn db.DBTX
}

func NewPgRepository(conn db.DBTX) *PgRepository {
	return &PgRepository{conn: conn}
}

const consultationCols = `id, appointment_id, symptoms, diagnosis, treatment, prescription, notes, amount_cents, paid, created_at, updated_at`

func scanConsultation(row pgx.Row) (*Consultation, error) {
	var c Consultation

	err := row.Scan(
		&c.ID,
		&c.AppointmentID,
		&c.Symptoms,
		&c.Diagnosis,
		&c.Treatment,
		&c.Prescription,
		&c.Notes,
		&c.AmountCents,
		&c.Paid,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrConsultationNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *PgRepository) CreateConsultation(ctx context.Context, c *Consultation) error {
	row := r.conn.QueryRow(ctx, `
		INSERT INTO consultations (id, appointment_id, symptoms, diagnosis, treatment, prescription, notes, amount_cents, paid, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
		RETURNING created_at, updated_at
	`, c.ID, c.AppointmentID, c.Symptoms, c.Diagnosis, c.Treatment, c.Prescription, c.Notes, c.AmountCents, c.Paid)

	if err := row.Scan(&c.CreatedAt, &c.UpdatedAt); err != nil {
		switch {
		case db.IsUniqueViolation(err, db.ConstraintConsultationAppt):
			return ErrAlreadyRecorded
		case db.IsForeignKeyViolation(err):
			return appointment.ErrAppointmentNotFound
		}
		return fmt.Errorf("insert consultation: %w", err)
	}
	return nil
}

func (r *PgRepository) GetConsultationByID(ctx context.Context, id uuid.UUID) (*Consultation, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+consultationCols+` FROM consultations WHERE id = $1`, id)
	return scanConsultation(row)
}

func (r *PgRepository) GetConsultationByAppointment(ctx context.Context, appointmentID uuid.UUID) (*Consultation, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+consultationCols+` FROM consultations WHERE appointment_id = $1`, appointmentID)
	return scanConsultation(row)
}

func (r *PgRepository) UpdateConsultation(ctx context.Context, c *Consultation) error {
	row := r.conn.QueryRow(ctx, `
		UPDATE consultations
		SET symptoms = $2, diagnosis = $3, treatment = $4, prescription = $5, notes = $6,
		    amount_cents = $7, paid = $8, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`, c.ID, c.Symptoms, c.Diagnosis, c.Treatment, c.Prescription, c.Notes, c.AmountCents, c.Paid)

	if err := row.Scan(&c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrConsultationNotFound
		}
		return fmt.Errorf("update consultation: %w", err)
	}
	return nil
}
