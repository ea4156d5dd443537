// Package http provides custom HTTP transport utilities,
// including debug traffic logging and default header injection.
// It is used by the raw attachment fetcher, which talks to CDNs directly
// instead of going through the external extraction tool.
package http
