package referral

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidArgument is returned before any request is sent when a required
	// argument is missing.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnexpectedStatus is wrapped by TransportError when the server answered
	// with a non-2xx status.
	ErrUnexpectedStatus = errors.New("unexpected http status")

	// ErrInvalidResponse is wrapped by TransportError when a 2xx body is not JSON.
	ErrInvalidResponse = errors.New("response body is not valid json")
)

const maxBodySnippet = 512

// TransportError is returned by every operation when the request could not
// complete, the server answered with a non-2xx status, or a 2xx body was not
// JSON. Err holds the original cause.
type TransportError struct {
	Op         string
	Method     string
	URL        string
	StatusCode int // 0 when no response was received
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s %s", e.Op, e.Method, e.URL)
	if e.StatusCode > 0 {
		fmt.Fprintf(&b, ": status %d", e.StatusCode)
	}
	if e.Err != nil && !errors.Is(e.Err, ErrUnexpectedStatus) {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if e.Body != "" {
		fmt.Fprintf(&b, ": %s", e.Body)
	}
	return b.String()
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransportError reports whether err is, or wraps, a *TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// StatusCode returns the HTTP status carried by err, or 0 when err has none.
func StatusCode(err error) int {
	var te *TransportError
	if errors.As(err, &te) {
		return te.StatusCode
	}
	return 0
}

func readBodySnippet(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if len(body) > maxBodySnippet {
		body = body[:maxBodySnippet]
	}
	return strings.TrimSpace(string(body))
}
