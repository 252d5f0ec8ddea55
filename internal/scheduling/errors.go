package scheduling

import (
	"errors"
	"fmt"
)

var (
	ErrPatientNotFound     = errors.New("patient not found")
	ErrSlotNotFound        = errors.New("slot not found")
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrSlotUnavailable means the slot's capacity was already exhausted (or
	// the slot swept) by the time the booking ran; the caller should offer a
	// different slot rather than retry this one.
	ErrSlotUnavailable = errors.New("slot has no remaining capacity")

	// ErrSlotBusy means another booking currently holds the slot lock; unlike
	// ErrSlotUnavailable, retrying the same slot may succeed.
	ErrSlotBusy = errors.New("slot is currently being booked, please retry")

	ErrPhoneTaken         = errors.New("phone number already registered")
	ErrCredentialMismatch = errors.New("credentials do not match")
)

// ValidationError reports malformed input for a named field. Matched with
// errors.As at operation boundaries.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func validationErr(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
