package http

const (
	// DefaultUserAgent mimics a desktop browser; some CDNs reject unknown agents.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36" //nolint: lll

	// defaultAccept asks for any media type.
	defaultAccept = "*/*"

	// truncatedSuffix marks a shortened traffic dump.
	truncatedSuffix = "... [truncated]"
)
