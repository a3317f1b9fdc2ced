package identity

import (
	"context"
	"errors"
	"fmt"

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

const personCols = `id, name, email, phone, document_id, birth_date, role, active, created_at, updated_at`

func scanPerson(row pgx.Row) (*Person, error) {
	var p Person
	var role string

	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Email,
		&p.Phone,
		&p.DocumentID,
		&p.BirthDate,
		&role,
		&p.Active,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPersonNotFound
		}
		return nil, err
	}

	if p.Role, err = ParseRole(role); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PgRepository) CreatePerson(ctx context.Context, p *Person) error {
	row := r.conn.QueryRow(ctx, `
		INSERT INTO persons (id, name, email, phone, document_id, birth_date, role, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
		RETURNING created_at, updated_at
	`, p.ID, p.Name, p.Email, p.Phone, p.DocumentID, p.BirthDate, p.Role.String(), p.Active)

	if err := row.Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
		if db.IsUniqueViolation(err, db.ConstraintPersonDocument) {
			return ErrDuplicateDocument
		}
		return fmt.Errorf("insert person: %w", err)
	}
	return nil
}

func (r *PgRepository) GetPersonByID(ctx context.Context, id uuid.UUID) (*Person, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+personCols+` FROM persons WHERE id = $1`, id)
	return scanPerson(row)
}

func (r *PgRepository) ListPersons(ctx context.Context, role Role, limit, offset int) ([]Person, error) {
	var filter *string
	if role != RoleUnknown {
		s := role.String()
		filter = &s
	}

	rows, err := r.conn.Query(ctx, `
		SELECT `+personCols+`
		FROM persons
		WHERE ($1::text IS NULL OR role = $1)
		ORDER BY name, id
		LIMIT $2 OFFSET $3
	`, filter, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list persons: %w", err)
	}
	defer rows.Close()

	var result []Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	return result, rows.Err()
}

func (r *PgRepository) UpdatePerson(ctx context.Context, p *Person) error {
	row := r.conn.QueryRow(ctx, `
		UPDATE persons
		SET name = $2, email = $3, phone = $4, active = $5, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`, p.ID, p.Name, p.Email, p.Phone, p.Active)

	if err := row.Scan(&p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrPersonNotFound
		}
		return fmt.Errorf("update person: %w", err)
	}
	return nil
}

func (r *PgRepository) DeletePerson(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn.Exec(ctx, `DELETE FROM persons WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete person: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPersonNotFound
	}
	return nil
}
