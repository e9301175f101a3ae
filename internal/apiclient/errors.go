package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError is returned when the API answers with a non-2xx status.
type HTTPError struct {
	StatusCode int
	Status     string // status text, e.g. "Not Found"
	Body       []byte // first bytes of the response body, if any
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("Error %d: %s", e.StatusCode, e.Status)
}

// NetworkError is returned when no response was received at all.
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// IsRequestFailure reports whether err is an HTTPError or a NetworkError. Both mean the
// request can be retried by the user as-is.
func IsRequestFailure(err error) bool {
	var httpErr *HTTPError
	var netErr *NetworkError
	return errors.As(err, &httpErr) || errors.As(err, &netErr)
}

// StatusCode extracts the HTTP status from err, or 0 when err carries none.
func StatusCode(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}

func statusText(resp *http.Response) string {
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	return resp.Status
}
