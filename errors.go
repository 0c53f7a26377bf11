package lens

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyStarted is returned when Start is called more than once.
	ErrAlreadyStarted = errors.New("coordinator already started")

	// ErrInvalidLimit is returned by SetLimit for a page size outside the allowed set.
	ErrInvalidLimit = errors.New("limit is not one of the allowed page sizes")
)

// TransportError reports that a fetch could not complete: the request failed
// to reach the upstream API, or the API answered with a non-2xx status.
type TransportError struct {
	// URL is the endpoint without its query string.
	URL string

	// Status is the HTTP status code, or 0 when no response was received.
	Status int

	// Err is the underlying transport error, if any.
	Err error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("upstream %s returned status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("upstream %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// MalformedResponseError reports a response body missing the fields a page
// is built from.
type MalformedResponseError struct {
	Reason string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed response: %s: %v", e.Reason, e.Err)
	}
	return "malformed response: " + e.Reason
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}
