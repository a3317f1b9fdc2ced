package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	slotErr := &pgconn.PgError{Code: "23505", ConstraintName: ConstraintActiveSlot}

	assert.True(t, IsUniqueViolation(slotErr, ConstraintActiveSlot))
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", slotErr), ""))
	assert.False(t, IsUniqueViolation(slotErr, ConstraintPersonDocument))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}, ""))
	assert.False(t, IsUniqueViolation(errors.New("23505"), ""))
}

func TestIsForeignKeyViolation(t *testing.T) {
	assert.True(t, IsForeignKeyViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsForeignKeyViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsForeignKeyViolation(nil))
}

func TestIsCheckViolation(t *testing.T) {
	assert.True(t, IsCheckViolation(fmt.Errorf("wrap: %w", &pgconn.PgError{Code: "23514"})))
	assert.False(t, IsCheckViolation(&pgconn.PgError{Code: "23505"}))
}
