package http

import (
	"net/http"
)

// HeaderInjector is an http.RoundTripper that fills in default request headers.
// Headers already present on a request are never overwritten.
type HeaderInjector struct {
	next     http.RoundTripper
	defaults http.Header
}

// DefaultHeaders returns the headers sent with every attachment request.
func DefaultHeaders() http.Header {
	headers := make(http.Header)
	headers.Set("User-Agent", DefaultUserAgent)
	headers.Set("Accept", defaultAccept)

	return headers
}

// NewHeaderInjector wraps next so that requests carry the given default headers.
func NewHeaderInjector(next http.RoundTripper, defaults http.Header) http.RoundTripper {
	return &HeaderInjector{
		next:     next,
		defaults: defaults.Clone(),
	}
}

// RoundTrip adds the missing default headers to a copy of req and forwards it.
func (t *HeaderInjector) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, ErrNilRequest
	}

	var missing []string

	for name := range t.defaults {
		if req.Header.Get(name) == "" {
			missing = append(missing, name)
		}
	}

	if len(missing) == 0 {
		return t.next.RoundTrip(req)
	}

	// A RoundTripper must not modify the caller's request.
	clone := req.Clone(req.Context())
	for _, name := range missing {
		clone.Header[name] = t.defaults.Values(name)
	}

	return t.next.RoundTrip(clone)
}
