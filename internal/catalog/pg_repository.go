package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/okingsaam/Pulse/internal/db"
	"github.com/okingsaam/Pulse/internal/identity"
)

type PgRepository struct {
	conn db.DBTX
}

func NewPgRepository(conn db.DBTX) *PgRepository {
	return &PgRepository{conn: conn}
}

const (
	professionalCols = `id, name, specialty, license_id, phone, active, person_id, created_at, updated_at`
	serviceCols      = `id, name, description, price_cents, duration_seconds, professional_id, active, created_at, updated_at`
)

func scanProfessional(row pgx.Row) (*Professional, error) {
	var p Professional

	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Specialty,
		&p.LicenseID,
		&p.Phone,
		&p.Active,
		&p.PersonID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfessionalNotFound
		}
		return nil, err
	}
	return &p, nil
}

func scanService(row pgx.Row) (*Service, error) {
	var s Service
	var seconds int64

	err := row.Scan(
		&s.ID,
		&s.Name,
		&s.Description,
		&s.PriceCents,
		&seconds,
		&s.ProfessionalID,
		&s.Active,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}

	s.Duration = time.Duration(seconds) * time.Second
	return &s, nil
}

func professionalWriteError(err error) error {
	switch {
	case db.IsUniqueViolation(err, db.ConstraintProfessionalLicense):
		return ErrDuplicateLicense
	case db.IsUniqueViolation(err, db.ConstraintProfessionalPerson):
		return ErrPersonAlreadyLinked
	case db.IsForeignKeyViolation(err):
		return identity.ErrPersonNotFound
	}
	return err
}

func (r *PgRepository) CreateProfessional(ctx context.Context, p *Professional) error {
	row := r.conn.QueryRow(ctx, `
		INSERT INTO professionals (id, name, specialty, license_id, phone, active, person_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
		RETURNING created_at, updated_at
	`, p.ID, p.Name, p.Specialty, p.LicenseID, p.Phone, p.Active, p.PersonID)

	if err := row.Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
		if mapped := professionalWriteError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("insert professional: %w", err)
	}
	return nil
}

func (r *PgRepository) GetProfessionalByID(ctx context.Context, id uuid.UUID) (*Professional, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+professionalCols+` FROM professionals WHERE id = $1`, id)
	return scanProfessional(row)
}

func (r *PgRepository) GetProfessionalByPersonID(ctx context.Context, personID uuid.UUID) (*Professional, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+professionalCols+` FROM professionals WHERE person_id = $1`, personID)
	return scanProfessional(row)
}

func (r *PgRepository) ListProfessionals(ctx context.Context, activeOnly bool, limit, offset int) ([]Professional, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT `+professionalCols+`
		FROM professionals
		WHERE (NOT $1 OR active)
		ORDER BY name, id
		LIMIT $2 OFFSET $3
	`, activeOnly, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list professionals: %w", err)
	}
	defer rows.Close()

	var result []Professional
	for rows.Next() {
		p, err := scanProfessional(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	return result, rows.Err()
}

func (r *PgRepository) UpdateProfessional(ctx context.Context, p *Professional) error {
	row := r.conn.QueryRow(ctx, `
		UPDATE professionals
		SET name = $2, specialty = $3, license_id = $4, phone = $5, active = $6, person_id = $7, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`, p.ID, p.Name, p.Specialty, p.LicenseID, p.Phone, p.Active, p.PersonID)

	if err := row.Scan(&p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrProfessionalNotFound
		}
		if mapped := professionalWriteError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("update professional: %w", err)
	}
	return nil
}

func (r *PgRepository) DeleteProfessional(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn.Exec(ctx, `DELETE FROM professionals WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete professional: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProfessionalNotFound
	}
	return nil
}

func (r *PgRepository) CreateService(ctx context.Context, s *Service) error {
	row := r.conn.QueryRow(ctx, `
		INSERT INTO services (id, name, description, price_cents, duration_seconds, professional_id, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
		RETURNING created_at, updated_at
	`, s.ID, s.Name, s.Description, s.PriceCents, int64(s.Duration/time.Second), s.ProfessionalID, s.Active)

	if err := row.Scan(&s.CreatedAt, &s.UpdatedAt); err != nil {
		if db.IsForeignKeyViolation(err) {
			return ErrProfessionalNotFound
		}
		return fmt.Errorf("insert service: %w", err)
	}
	return nil
}

func (r *PgRepository) GetServiceByID(ctx context.Context, id uuid.UUID) (*Service, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+serviceCols+` FROM services WHERE id = $1`, id)
	return scanService(row)
}

func (r *PgRepository) ListServices(ctx context.Context, f ServiceFilter) ([]Service, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT `+serviceCols+`
		FROM services
		WHERE ($1::uuid IS NULL OR professional_id = $1)
		  AND (NOT $2 OR active)
		ORDER BY name, id
		LIMIT $3 OFFSET $4
	`, f.ProfessionalID, f.ActiveOnly, f.Limit, f.Offset)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	var result []Service
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}
	return result, rows.Err()
}

func (r *PgRepository) UpdateService(ctx context.Context, s *Service) error {
	row := r.conn.QueryRow(ctx, `
		UPDATE services
		SET name = $2, description = $3, price_cents = $4, duration_seconds = $5,
		    professional_id = $6, active = $7, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`, s.ID, s.Name, s.Description, s.PriceCents, int64(s.Duration/time.Second), s.ProfessionalID, s.Active)

	if err := row.Scan(&s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrServiceNotFound
		}
		if db.IsForeignKeyViolation(err) {
			return ErrProfessionalNotFound
		}
		return fmt.Errorf("update service: %w", err)
	}
	return nil
}

func (r *PgRepository) DeleteService(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn.Exec(ctx, `DELETE FROM services WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete service: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrServiceNotFound
	}
	return nil
}
