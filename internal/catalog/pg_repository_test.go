package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okingsaam/Pulse/internal/identity"
)

func TestPgRepository_ProfessionalConstraints(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"license", &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "professionals_license_id_key"}, ErrDuplicateLicense},
		{"linked person", &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "professionals_person_id_key"}, ErrPersonAlreadyLinked},
		{"missing person", &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}, identity.ErrPersonNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			mock.ExpectQuery(`INSERT INTO professionals`).WillReturnError(tt.err)

			err = NewPgRepository(mock).CreateProfessional(context.Background(), &Professional{ID: uuid.New(), Name: "A", Specialty: "B"})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestPgRepository_GetService_Duration(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM services WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "name", "description", "price_cents", "duration_seconds", "professional_id", "active", "created_at", "updated_at",
		}).AddRow(id, "Checkup", "", int64(15000), int64(5400), (*uuid.UUID)(nil), true, now, now))

	s, err := NewPgRepository(mock).GetServiceByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, s.Duration)
	assert.Equal(t, int64(15000), s.PriceCents)
	assert.Nil(t, s.ProfessionalID)
}

func TestPgRepository_CreateService_MissingProfessional(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	owner := uuid.New()
	mock.ExpectQuery(`INSERT INTO services`).
		WithArgs(pgxmock.AnyArg(), "Checkup", "", int64(100), int64(3600), &owner, true).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.ForeignKeyViolation})

	err = NewPgRepository(mock).CreateService(context.Background(), &Service{
		ID: uuid.New(), Name: "Checkup", PriceCents: 100, Duration: time.Hour, ProfessionalID: &owner, Active: true,
	})
	assert.ErrorIs(t, err, ErrProfessionalNotFound)
}
