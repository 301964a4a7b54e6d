package clients

import "errors"

var (
	// ErrInvalidPhone is returned when the phone fails +55 normalization.
	ErrInvalidPhone = errors.New("clients: phone must be in +55DDXXXXXXXXX format")

	// ErrInvalidName is returned when the name fails the shape check.
	ErrInvalidName = errors.New("clients: name must have at least 3 letters and only alphabetic characters")

	// ErrClientNotFound is returned when no row matches.
	ErrClientNotFound = errors.New("clients: client not found")
)
