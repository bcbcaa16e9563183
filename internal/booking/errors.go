package booking

import (
	"errors"
	"fmt"
)

// Reasons for rejecting a selection locally.
const (
	ReasonMalformed       = "malformed"
	ReasonOutOfRange      = "out_of_range"
	ReasonClosed          = "closed"
	ReasonPast            = "past"
	ReasonSlotUnavailable = "slot_unavailable"
	ReasonSlotFull        = "slot_full"
)

var (
	// ErrInvalidSelection matches every *InvalidSelectionError.
	ErrInvalidSelection = errors.New("invalid selection")
	// ErrInvalidRequest is returned for bad party size or contact data.
	ErrInvalidRequest = errors.New("invalid booking request")
	// ErrRateLimited is returned when a session submits too often.
	ErrRateLimited = errors.New("too many booking attempts")
	// ErrServiceUnavailable wraps transport failures talking to the booking service.
	ErrServiceUnavailable = errors.New("booking service unavailable")
)

// InvalidSelectionError is a local validation failure with a user-facing message.
type InvalidSelectionError struct {
	Reason  string
	Message string
}

func (e *InvalidSelectionError) Error() string {
	return fmt.Sprintf("invalid selection (%s): %s", e.Reason, e.Message)
}

// Is makes errors.Is(err, ErrInvalidSelection) hold.
func (e *InvalidSelectionError) Is(target error) bool {
	return target == ErrInvalidSelection
}

func invalid(reason, format string, args ...any) *InvalidSelectionError {
	return &InvalidSelectionError{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// RejectedError is a refusal by the booking service. The visitor has to select again.
type RejectedError struct {
	StatusCode int
	Message    string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("booking rejected (http %d)", e.StatusCode)
	}
	return fmt.Sprintf("booking rejected: %s", e.Message)
}

// IsInvalidSelection checks if err is a local validation failure.
func IsInvalidSelection(err error) bool {
	var target *InvalidSelectionError
	return errors.As(err, &target)
}

// IsRejected checks if err is a booking service refusal.
func IsRejected(err error) bool {
	var target *RejectedError
	return errors.As(err, &target)
}
