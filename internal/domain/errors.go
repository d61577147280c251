package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the search or a fetch found nothing.
	ErrNotFound = errors.New("not found")
	// ErrResolution means the bill was found but its detail page could not be read.
	ErrResolution = errors.New("bill resolution failed")
	// ErrUnavailable covers PDF download and completion failures.
	ErrUnavailable = errors.New("analysis unavailable")
	// ErrNoDocument is reported when a bill has no PDF attached.
	ErrNoDocument = fmt.Errorf("%w: pdf not available for analysis", ErrUnavailable)
	// ErrMalformedInput is returned for missing input columns or empty identifiers.
	ErrMalformedInput = errors.New("malformed input")
	// ErrConfiguration means the completion service is not configured.
	ErrConfiguration = errors.New("configuration error")
)

// ErrorKind maps an error to a short tag used in logs and API payloads.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrMalformedInput):
		return "malformed_input"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrResolution):
		return "resolution_failed"
	case errors.Is(err, ErrNoDocument):
		return "no_document"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	default:
		return "internal"
	}
}
