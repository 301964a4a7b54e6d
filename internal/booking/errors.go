package booking

import "errors"

var (
	// ErrSlotTaken means the slot lost the race at write time. The user must
	// pick another time; there is no retry.
	ErrSlotTaken = errors.New("booking: slot no longer available")

	// ErrNotFound means the referenced appointment does not exist or is no
	// longer active.
	ErrNotFound = errors.New("booking: appointment not found")
)

// ValidationError is a caller fault carrying the exact user-facing message.
// It short-circuits before any side effect.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return "booking: validation: " + e.Message
}

// AsValidation extracts a ValidationError from an error chain.
func AsValidation(err error) (*ValidationError, bool) {
	var v *ValidationError
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}
