// Package rejection holds the user-facing failure taxonomy shared by the
// domain packages. Every rejection is recoverable; callers render a message
// per Reason instead of treating it as a fault.
package rejection

import (
	"errors"
	"fmt"
)

type Reason string

const (
	PastDate          Reason = "PAST_DATE"
	TooFarFuture      Reason = "TOO_FAR_FUTURE"
	SlotTaken         Reason = "SLOT_TAKEN"
	InvalidTransition Reason = "INVALID_TRANSITION"
	NotFound          Reason = "NOT_FOUND"
	Validation        Reason = "VALIDATION"
	Forbidden         Reason = "FORBIDDEN"
	Conflict          Reason = "CONFLICT"
)

// Error is a typed rejection. Package-level sentinels are *Error values and
// are matched with errors.Is by identity.
type Error struct {
	Reason  Reason
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func New(reason Reason, msg string) *Error {
	return &Error{Reason: reason, Message: msg}
}

func Newf(reason Reason, format string, args ...any) *Error {
	return &Error{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// ReasonOf returns the Reason of the first rejection in err's chain.
func ReasonOf(err error) (Reason, bool) {
	var rej *Error
	if errors.As(err, &rej) {
		return rej.Reason, true
	}
	return "", false
}

// Is reports whether err carries the given reason.
func Is(err error, reason Reason) bool {
	r, ok := ReasonOf(err)
	return ok && r == reason
}
