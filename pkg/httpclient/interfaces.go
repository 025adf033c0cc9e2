package httpclient

import (
	"context"
	"net/http"
	"net/url"
)

// Request describes one call against the beer service. URL is absolute;
// Query is appended as-is, so absent parameters must simply not be set.
type Request struct {
	Method string
	URL    string
	Query  url.Values
	Header map[string]string
	Body   any
}

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
	Header() http.Header
	// RequestURL is the final URL the request was sent to, query included.
	RequestURL() string
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
// Implementations must be safe for concurrent use.
type Client interface {
	Do(ctx context.Context, req Request) (Response, error)
}
