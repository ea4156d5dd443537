// Package direct downloads raw files over HTTP.
// It serves platforms whose media is a plain CDN link that needs no extractor,
// such as chat attachments.
package direct
