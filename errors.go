package advisor

import (
	"errors"
	"fmt"
)

var (
	// ErrMountPointMissing is returned by Boot when the layout shell
	// does not contain an element with the configured mount id.
	ErrMountPointMissing = errors.New("advisor: mount point not found in layout shell")

	// ErrAlreadyBooted is returned by a second Boot call.
	ErrAlreadyBooted = errors.New("advisor: already booted")

	// ErrNotBooted is returned when the app serves before Boot.
	ErrNotBooted = errors.New("advisor: not booted")

	// ErrNoRoutes is returned by Boot when no route table was
	// registered.
	ErrNoRoutes = errors.New("advisor: no routes registered")
)

// HTTPError carries an HTTP status through an API handler's error
// return. The dispatch layer uses StatusCode for the response and
// Message for the JSON body, keeping the wrapped cause out of the
// client's view.
type HTTPError struct {
	Code    int
	Message string
	Err     error
}

// Error implements error.
func (e *HTTPError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("http %d", e.Code)
}

// Unwrap returns the wrapped cause.
func (e *HTTPError) Unwrap() error { return e.Err }

// StatusCode returns the HTTP status to respond with.
func (e *HTTPError) StatusCode() int { return e.Code }

// NewHTTPError builds an HTTPError.
func NewHTTPError(code int, message string, err error) *HTTPError {
	return &HTTPError{Code: code, Message: message, Err: err}
}
