package http

import (
	"errors"
	"net/http"
	"net/http/httputil"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/oshokin/mediagrab/internal/config"
	"github.com/oshokin/mediagrab/internal/logger"
	"github.com/oshokin/mediagrab/internal/utils"
)

// LogTransport is an http.RoundTripper that logs attachment traffic at debug level.
// Media bodies are never dumped; text bodies (usually error pages) are, up to maxLogLength bytes.
type LogTransport struct {
	next         http.RoundTripper
	maxLogLength uint64
}

// ErrNilRequest indicates that the HTTP request is nil.
var ErrNilRequest = errors.New("request is nil")

// NewLogTransport wraps next with debug logging.
// A zero maxLogLength means config.DefaultMaxLogLength.
func NewLogTransport(next http.RoundTripper, maxLogLength uint64) http.RoundTripper {
	if maxLogLength == 0 {
		maxLogLength = config.DefaultMaxLogLength
	}

	return &LogTransport{
		next:         next,
		maxLogLength: maxLogLength,
	}
}

// RoundTrip forwards req and logs the exchange when debug logging is on.
func (t *LogTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, ErrNilRequest
	}

	if !logger.IsDebugLevel() {
		return t.next.RoundTrip(req)
	}

	ctx := req.Context()
	startTime := time.Now()

	resp, err := t.next.RoundTrip(req)
	if err != nil {
		logger.Debugf(ctx, "GET %s failed after %s: %v", req.URL.Redacted(), time.Since(startTime), err)

		return nil, err
	}

	size := "unknown size"
	if resp.ContentLength >= 0 {
		size = humanize.Bytes(utils.SafeInt64ToUint64(resp.ContentLength))
	}

	logger.DebugKV(ctx, "Attachment response",
		"method", req.Method,
		"host", req.URL.Host,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"content_type", resp.Header.Get("Content-Type"),
		"size", size,
		"duration", time.Since(startTime).String(),
	)

	if resp.StatusCode >= http.StatusBadRequest {
		logger.Debugf(ctx, "Error response from %s:\n%s", req.URL.Host, t.dumpResponse(resp))
	}

	return resp, nil
}

// dumpResponse renders resp, including its body only for text content.
func (t *LogTransport) dumpResponse(resp *http.Response) string {
	isText := utils.IsTextContentType(resp.Header.Get("Content-Type"))

	dump, err := httputil.DumpResponse(resp, isText)
	if err != nil {
		return err.Error()
	}

	if uint64(len(dump)) > t.maxLogLength {
		return string(dump[:t.maxLogLength]) + truncatedSuffix
	}

	return string(dump)
}
