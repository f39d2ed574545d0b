package provider

import (
	"errors"
	"fmt"
)

// NetworkError is a transport failure or a non-2xx response. Body holds a
// truncated excerpt for the log; it is never shown to the user.
type NetworkError struct {
	Provider   string
	URL        string
	StatusCode int
	Body       string
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: unexpected status %d from %s", e.Provider, e.StatusCode, e.URL)
	}
	return fmt.Sprintf("%s: request to %s failed: %v", e.Provider, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// MalformedResponseError means the payload could not be decoded or lacks the
// fields every response must carry.
type MalformedResponseError struct {
	Provider string
	Err      error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s: malformed response: %v", e.Provider, e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// NotFoundError means the provider has no item with the requested id.
type NotFoundError struct {
	Provider string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %q not found", e.Provider, e.ID)
}

// IsNotFound reports whether err is, or wraps, a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// statusCode returns the HTTP status carried by a NetworkError in err, or 0.
func statusCode(err error) int {
	var ne *NetworkError
	if errors.As(err, &ne) {
		return ne.StatusCode
	}
	return 0
}
