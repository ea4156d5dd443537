// Package dispatch turns URLs into downloads.
//
// Every URL goes through the same pipeline: it is classified against the
// platform table, refused when its platform cannot be downloaded from,
// fetched directly when it is a plain CDN link, and otherwise translated into
// a yt-dlp argument vector that is run as a child process. The outcome is
// reported with the platform's failure hint and recorded in session statistics.
//
// URLs are processed strictly one after another. A failure never stops the
// remaining URLs.
package dispatch
