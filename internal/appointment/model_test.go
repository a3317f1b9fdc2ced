package appointment

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestParseStatus(t *testing.T) {
	for _, s := range Statuses {
		got, err := ParseStatus(string(s))
		assert.NoError(t, err)
		assert.Equal(t, s, got)
	}
	_, err := ParseStatus("expired")
	assert.Error(t, err)
}

func TestFilter_Match(t *testing.T) {
	prof := uuid.New()
	at := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	a := &Appointment{ProfessionalID: prof, PatientID: uuid.New(), ScheduledAt: at, Status: StatusConfirmed}

	from := at
	to := at.Add(time.Hour)
	other := uuid.New()

	assert.True(t, Filter{}.Match(a))
	assert.True(t, Filter{From: &from, To: &to}.Match(a))
	assert.False(t, Filter{To: &from}.Match(a), "To is exclusive")
	assert.False(t, Filter{ProfessionalID: &other}.Match(a))
	assert.True(t, Filter{Statuses: []Status{StatusPending, StatusConfirmed}}.Match(a))
	assert.False(t, Filter{Statuses: []Status{StatusCancelled}}.Match(a))
}

func TestStatus_Occupies(t *testing.T) {
	assert.False(t, StatusCancelled.Occupies())
	assert.True(t, StatusNoShow.Occupies())
	assert.True(t, StatusCompleted.Occupies())
}
