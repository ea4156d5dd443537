package direct

//go:generate $MOCKGEN -source=client.go -destination=mocks/client_mock.go

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	http_transport "github.com/oshokin/mediagrab/internal/transport/http"
)

// Client defines the interface for fetching raw files.
type Client interface {
	// Fetch opens a streaming GET request to url.
	// Redirects are followed only to hosts accepted by isHostAllowed; a nil check accepts any host.
	// The caller must close the returned body.
	Fetch(ctx context.Context, url string, isHostAllowed HostCheck) (*FetchResult, error)
}

// HostCheck reports whether a lower-cased host may be contacted.
type HostCheck func(host string) bool

// FetchResult is an open response body with its announced size.
type FetchResult struct {
	// Body streams the response payload.
	Body io.ReadCloser
	// TotalBytes is the Content-Length, -1 when the server did not send it.
	TotalBytes int64
	// ContentType is the Content-Type header value.
	ContentType string
}

// ClientImpl implements the Client interface.
type ClientImpl struct {
	httpClient *http.Client
}

// maxRedirects matches the net/http default redirect limit.
const maxRedirects = 10

// Static error definitions for better error handling.
var (
	// ErrUnexpectedHTTPStatus indicates a non-2xx HTTP status code.
	ErrUnexpectedHTTPStatus = errors.New("unexpected HTTP status")
	// ErrRedirectNotAllowed indicates a redirect to a host outside the allow-list.
	ErrRedirectNotAllowed = errors.New("redirect to a host that is not allowed")
	// ErrTooManyRedirects indicates a redirect chain longer than maxRedirects.
	ErrTooManyRedirects = errors.New("too many redirects")
)

// NewClient creates a client that sends the default browser headers.
func NewClient() Client {
	return NewClientWithHTTP(
		http_transport.NewClient(http_transport.DefaultHeaders()),
	)
}

// NewClientWithHTTP creates a client on top of an existing HTTP client.
func NewClientWithHTTP(httpClient *http.Client) Client {
	return &ClientImpl{httpClient: httpClient}
}

// Fetch opens a streaming GET request to url.
// Any 2xx status is accepted. A redirect to a host rejected by isHostAllowed
// fails before the foreign host is contacted.
func (c *ClientImpl) Fetch(ctx context.Context, url string, isHostAllowed HostCheck) (*FetchResult, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, err
	}

	// The shared client is copied so that each fetch carries its own redirect policy.
	httpClient := *c.httpClient
	httpClient.CheckRedirect = redirectPolicy(isHostAllowed)

	response, err := httpClient.Do(request)
	if err != nil {
		return nil, err
	}

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		response.Body.Close() //nolint:gosec // Error on close is not critical here.

		return nil, fmt.Errorf("%w: %d", ErrUnexpectedHTTPStatus, response.StatusCode)
	}

	return &FetchResult{
		Body:        response.Body,
		TotalBytes:  response.ContentLength,
		ContentType: response.Header.Get("Content-Type"),
	}, nil
}

// redirectPolicy rejects redirects to hosts that isHostAllowed does not accept.
func redirectPolicy(isHostAllowed HostCheck) func(*http.Request, []*http.Request) error {
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= maxRedirects {
			return ErrTooManyRedirects
		}

		host := strings.ToLower(req.URL.Hostname())
		if isHostAllowed != nil && !isHostAllowed(host) {
			return fmt.Errorf("%w: '%s'", ErrRedirectNotAllowed, host)
		}

		return nil
	}
}
