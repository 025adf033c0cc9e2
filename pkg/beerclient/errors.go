package beerclient

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

// Fault categories. Match them with errors.Is; use errors.As with the
// concrete types for details.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrHTTP            = errors.New("http fault")
	ErrTransport       = errors.New("transport fault")
)

// InvalidArgumentError is returned before any request is sent.
type InvalidArgumentError struct {
	Op     string
	Field  string
	Reason string
	Err    error
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("%s: invalid %s: %s", e.Op, e.Field, e.Reason)
}

func (e *InvalidArgumentError) Is(target error) bool { return target == ErrInvalidArgument }
func (e *InvalidArgumentError) Unwrap() error        { return e.Err }

// HTTPError is a non-2xx answer from the catalog service.
type HTTPError struct {
	Op         string
	Method     string
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte
	// Summary is a one line extract of Body suitable for logs.
	Summary string
}

func (e *HTTPError) Error() string {
	msg := fmt.Sprintf("%s: %s %s: status %d", e.Op, e.Method, e.URL, e.StatusCode)
	if e.Summary != "" {
		msg += ": " + e.Summary
	}
	return msg
}

func (e *HTTPError) Is(target error) bool { return target == ErrHTTP }

// TransportError covers failures where no usable response arrived:
// connection errors, timeouts, cancellation and undecodable bodies.
type TransportError struct {
	Op     string
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %s %s: %v", e.Op, e.Method, e.URL, e.Err)
}

func (e *TransportError) Is(target error) bool { return target == ErrTransport }
func (e *TransportError) Unwrap() error        { return e.Err }

// StatusCode extracts the HTTP status from an HTTPError anywhere in err's chain.
func StatusCode(err error) (int, bool) {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode, true
	}
	return 0, false
}

// IsNotFound reports whether err is an HTTP 404 from the catalog service.
func IsNotFound(err error) bool {
	code, ok := StatusCode(err)
	return ok && code == http.StatusNotFound
}

// ParseID parses a canonical UUID string, returning an InvalidArgumentError
// when it is blank or malformed.
func ParseID(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, &InvalidArgumentError{Op: "ParseID", Field: "id", Reason: "must not be empty"}
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, &InvalidArgumentError{Op: "ParseID", Field: "id", Reason: "malformed UUID", Err: err}
	}
	return id, nil
}

func invalidArg(op, field, reason string, err error) *InvalidArgumentError {
	return &InvalidArgumentError{Op: op, Field: field, Reason: reason, Err: err}
}
