package planner

import (
	"errors"
	"fmt"
)

// Validation failures for plan building. HTTP handlers map these to client
// errors with errors.Is; each condition gets its own sentinel so callers can
// tell them apart.
var (
	ErrInvalidCheckIn        = errors.New("invalid check-in date")
	ErrInvalidCheckOut       = errors.New("invalid check-out date")
	ErrArrivalAfterDeparture = errors.New("check-in must be before check-out")
	ErrStayTooShort          = errors.New("stay must be at least one night")
	ErrInvalidLatitude       = errors.New("invalid latitude")
	ErrInvalidLongitude      = errors.New("invalid longitude")
	ErrInvalidGuestCounts    = errors.New("invalid guest counts")
	ErrNoGuests              = errors.New("at least one guest is required")
)

// PlanError provides field-level detail for a plan validation failure.
type PlanError struct {
	Field  string
	Reason string
	Err    error
}

func (e *PlanError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *PlanError) Unwrap() error {
	return e.Err
}

// IsValidationError reports whether err is a plan validation failure, as
// opposed to an infrastructure error.
func IsValidationError(err error) bool {
	var pe *PlanError
	return errors.As(err, &pe)
}
