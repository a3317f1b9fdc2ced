package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func sampleAppointment() *Appointment {
	return &Appointment{
		ID:             uuid.New(),
		PatientID:      uuid.New(),
		ProfessionalID: uuid.New(),
		ServiceID:      uuid.New(),
		ScheduledAt:    time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		Status:         StatusPending,
	}
}

func TestPgRepository_CreateAppointment(t *testing.T) {
	mock := newMock(t)
	repo := NewPgRepository(mock)
	a := sampleAppointment()
	created := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`INSERT INTO appointments`).
		WithArgs(a.ID, a.PatientID, a.ProfessionalID, a.ServiceID, a.ScheduledAt, StatusPending, "").
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(created, created))

	require.NoError(t, repo.CreateAppointment(context.Background(), a))
	assert.Equal(t, created, a.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgRepository_CreateAppointment_ConstraintMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "active slot",
			err:  &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "appointments_active_slot_key"},
			want: ErrSlotTaken,
		},
		{
			name: "missing reference",
			err:  &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation, ConstraintName: "appointments_service_id_fkey"},
			want: ErrReferenceNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMock(t)
			repo := NewPgRepository(mock)

			mock.ExpectQuery(`INSERT INTO appointments`).WillReturnError(tt.err)

			err := repo.CreateAppointment(context.Background(), sampleAppointment())
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestPgRepository_CreateAppointment_OtherErrorWrapped(t *testing.T) {
	mock := newMock(t)
	repo := NewPgRepository(mock)

	dbErr := &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "appointments_pkey"}
	mock.ExpectQuery(`INSERT INTO appointments`).WillReturnError(dbErr)

	err := repo.CreateAppointment(context.Background(), sampleAppointment())
	assert.ErrorIs(t, err, dbErr)
	assert.NotErrorIs(t, err, ErrSlotTaken)
}

func TestPgRepository_SlotTaken(t *testing.T) {
	mock := newMock(t)
	repo := NewPgRepository(mock)
	profID := uuid.New()
	at := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(profID, at).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	taken, err := repo.SlotTaken(context.Background(), profID, at)
	require.NoError(t, err)
	assert.True(t, taken)
}

func TestPgRepository_UpdateAppointmentStatus_StaleStatus(t *testing.T) {
	mock := newMock(t)
	repo := NewPgRepository(mock)
	id := uuid.New()

	mock.ExpectQuery(`UPDATE appointments`).
		WithArgs(id, StatusConfirmed, StatusPending).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.UpdateAppointmentStatus(context.Background(), id, StatusPending, StatusConfirmed)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgRepository_DeleteAppointment(t *testing.T) {
	mock := newMock(t)
	repo := NewPgRepository(mock)
	id := uuid.New()

	mock.ExpectExec(`DELETE FROM appointments`).WithArgs(id).WillReturnResult(pgxmock.NewResult("DELETE", 0))

	assert.ErrorIs(t, repo.DeleteAppointment(context.Background(), id), ErrAppointmentNotFound)
}

func TestPgRepository_InsertEvent(t *testing.T) {
	mock := newMock(t)
	repo := NewPgRepository(mock)
	id := uuid.New()

	mock.ExpectExec(`INSERT INTO event_logs`).
		WithArgs("APPOINTMENT_CREATED", &id, []byte(`{}`), (*time.Time)(nil)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.InsertEvent(context.Background(), EventLog{EventType: "APPOINTMENT_CREATED", AppointmentID: &id, Payload: []byte(`{}`)}))
	assert.NoError(t, mock.ExpectationsWereMet())
}
