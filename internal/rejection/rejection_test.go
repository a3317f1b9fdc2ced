package rejection

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReasonOf_Wrapped(t *testing.T) {
	sentinel := New(SlotTaken, "slot already booked")
	err := fmt.Errorf("book: %w", sentinel)

	reason, ok := ReasonOf(err)
	assert.True(t, ok)
	assert.Equal(t, SlotTaken, reason)
	assert.True(t, errors.Is(err, sentinel))
	assert.True(t, Is(err, SlotTaken))
	assert.False(t, Is(err, PastDate))
}

func TestReasonOf_PlainError(t *testing.T) {
	_, ok := ReasonOf(errors.New("boom"))
	assert.False(t, ok)
	assert.False(t, Is(nil, NotFound))
}

func TestSentinelsWithSameReasonAreDistinct(t *testing.T) {
	a := New(NotFound, "patient not found")
	b := New(NotFound, "service not found")

	assert.False(t, errors.Is(a, b))
	assert.Equal(t, "patient not found", a.Error())
}
