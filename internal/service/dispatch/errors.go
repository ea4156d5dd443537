package dispatch

import (
	"context"
	"errors"
)

// Static error definitions for better error handling.
var (
	// ErrPlatformUnavailable indicates that the platform cannot be downloaded from at all.
	ErrPlatformUnavailable = errors.New("platform is not available for download")
	// ErrHostNotAllowed indicates that a direct link points outside the platform's allow-list.
	ErrHostNotAllowed = errors.New("host is not allowed for direct download")
	// ErrEmptyFilePath indicates that the file to tag was not specified.
	ErrEmptyFilePath = errors.New("file path cannot be empty")
	// ErrUnsupportedTagFormat indicates that the audio container cannot be tagged.
	ErrUnsupportedTagFormat = errors.New("unsupported audio format for tagging")
)

// ErrorContext holds contextual information about an error for better reporting.
type ErrorContext struct {
	// URL is the source URL of the request that failed.
	URL string
	// Platform is the display name of the classified platform.
	Platform string
	// Phase describes where the failure happened (e.g., "running yt-dlp").
	Phase string
	// ExitCode is the child exit code, 0 when no child was run.
	ExitCode int
	// Retryable tells the summary whether rerunning the URL can help.
	Retryable bool
}

// recordError records an error in statistics for the final summary.
func (s *ServiceImpl) recordError(errCtx *ErrorContext, err error) {
	if errCtx == nil || err == nil {
		return
	}

	// Don't record context cancellation as an error - it's expected when user presses CTRL+C.
	if errors.Is(err, context.Canceled) {
		return
	}

	s.statsMutex.Lock()
	defer s.statsMutex.Unlock()

	s.stats.Errors = append(s.stats.Errors, DownloadError{
		URL:          errCtx.URL,
		Platform:     errCtx.Platform,
		Phase:        errCtx.Phase,
		ExitCode:     errCtx.ExitCode,
		Retryable:    errCtx.Retryable,
		ErrorMessage: err.Error(),
	})
}
