package httpclient

import "context"

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
}

// Request describes a single call relative to the client's base URL.
type Request struct {
	Method string
	// Path may contain {name} placeholders filled from PathParams.
	Path       string
	PathParams map[string]string
	Query      map[string]string
	Body       any
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
type Client interface {
	Do(ctx context.Context, req Request) (Response, error)
}
