package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDefaultHeaders tests the headers sent with attachment requests.
func TestDefaultHeaders(t *testing.T) {
	t.Parallel()

	headers := DefaultHeaders()

	assert.Equal(t, DefaultUserAgent, headers.Get("User-Agent"))
	assert.Equal(t, "*/*", headers.Get("Accept"))
}

// TestHeaderInjector_RoundTrip tests which headers reach the server.
func TestHeaderInjector_RoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name              string
		requestHeaders    map[string]string
		expectedUserAgent string
		expectedAccept    string
	}{
		{
			name:              "defaults fill empty request",
			expectedUserAgent: DefaultUserAgent,
			expectedAccept:    "*/*",
		},
		{
			name:              "existing user agent is kept",
			requestHeaders:    map[string]string{"User-Agent": "Custom/1.0"},
			expectedUserAgent: "Custom/1.0",
			expectedAccept:    "*/*",
		},
		{
			name: "all headers present",
			requestHeaders: map[string]string{
				"User-Agent": "Custom/1.0",
				"Accept":     "video/mp4",
			},
			expectedUserAgent: "Custom/1.0",
			expectedAccept:    "video/mp4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, tt.expectedUserAgent, r.Header.Get("User-Agent"))
				assert.Equal(t, tt.expectedAccept, r.Header.Get("Accept"))
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			injector := NewHeaderInjector(http.DefaultTransport, DefaultHeaders())

			req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, server.URL, http.NoBody)
			require.NoError(t, err)

			for name, value := range tt.requestHeaders {
				req.Header.Set(name, value)
			}

			resp, err := injector.RoundTrip(req)
			require.NoError(t, err)

			defer resp.Body.Close() //nolint:errcheck // Test cleanup, error is not critical.

			assert.Equal(t, http.StatusOK, resp.StatusCode)
		})
	}
}

// TestHeaderInjector_DoesNotMutateRequest tests that the caller's request is left untouched.
func TestHeaderInjector_DoesNotMutateRequest(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	injector := NewHeaderInjector(http.DefaultTransport, DefaultHeaders())

	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, server.URL, http.NoBody)
	require.NoError(t, err)

	resp, err := injector.RoundTrip(req)
	require.NoError(t, err)

	defer resp.Body.Close() //nolint:errcheck // Test cleanup, error is not critical.

	assert.Empty(t, req.Header.Get("User-Agent"))
}

// TestHeaderInjector_DefaultsAreCopied tests that later changes to the defaults do not leak in.
func TestHeaderInjector_DefaultsAreCopied(t *testing.T) {
	t.Parallel()

	defaults := DefaultHeaders()
	injector, ok := NewHeaderInjector(http.DefaultTransport, defaults).(*HeaderInjector)
	require.True(t, ok)

	defaults.Set("User-Agent", "Changed/1.0")

	assert.Equal(t, DefaultUserAgent, injector.defaults.Get("User-Agent"))
}

// TestRoundTrippers_NilRequest tests that both transports reject a nil request.
func TestRoundTrippers_NilRequest(t *testing.T) {
	t.Parallel()

	transports := map[string]http.RoundTripper{
		"header injector": NewHeaderInjector(http.DefaultTransport, DefaultHeaders()),
		"log transport":   NewLogTransport(http.DefaultTransport, 0),
	}

	for name, transport := range transports {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			//nolint:bodyclose // No response is returned.
			resp, err := transport.RoundTrip(nil)
			require.ErrorIs(t, err, ErrNilRequest)
			assert.Nil(t, resp)
		})
	}
}
