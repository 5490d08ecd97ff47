package weather

import "errors"

// ErrUpstream marks a failed call to an external provider: network error,
// unexpected status, or a response that could not be decoded.
var ErrUpstream = errors.New("upstream provider failure")

// ValidationError describes the first problem found in a creation payload.
// Field is the JSON path of the offending value and may be empty when the
// payload as a whole is malformed.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}
