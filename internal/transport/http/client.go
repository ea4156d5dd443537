package http

import (
	"net/http"
)

// NewClient returns an HTTP client that sends the given default headers
// and logs traffic at debug level.
// The client has no timeout: a stalled stream blocks until the context is canceled.
func NewClient(headers http.Header) *http.Client {
	return &http.Client{
		Transport: NewHeaderInjector(
			NewLogTransport(http.DefaultTransport, 0),
			headers,
		),
	}
}
