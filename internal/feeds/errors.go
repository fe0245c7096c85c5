package feeds

import (
	"errors"
	"fmt"
)

var (
	// ErrNetwork is a transport-level failure.
	ErrNetwork = errors.New("network error")
	// ErrHTTP is a non-success response status.
	ErrHTTP = errors.New("http error")
	// ErrEmptyResult is a well-formed response with no usable result.
	ErrEmptyResult = errors.New("empty result")
	// ErrDataValidity is a response whose status or body is semantically invalid.
	ErrDataValidity = errors.New("invalid data")

	// ErrEmptyQuery is returned when a geocode lookup is requested with no text.
	ErrEmptyQuery = errors.New("empty query")
)

// HTTPStatusError carries the status of a non-success response.
type HTTPStatusError struct {
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.StatusCode)
}

// Is makes HTTPStatusError match ErrHTTP.
func (e *HTTPStatusError) Is(target error) bool {
	return target == ErrHTTP
}
