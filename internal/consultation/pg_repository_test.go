package consultation

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okingsaam/Pulse/internal/appointment"
)

func TestPgRepository_CreateConsultation_Constraints(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"second record", &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "consultations_appointment_id_key"}, ErrAlreadyRecorded},
		{"missing appointment", &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}, appointment.ErrAppointmentNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			mock.ExpectQuery(`INSERT INTO consultations`).WillReturnError(tt.err)

			err = NewPgRepository(mock).CreateConsultation(context.Background(), &Consultation{ID: uuid.New(), AppointmentID: uuid.New()})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
