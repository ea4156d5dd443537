package dispatch

import (
	"time"

	"github.com/oshokin/mediagrab/internal/platform"
)

// DownloadRequest describes one download. It is built from user input and never modified.
type DownloadRequest struct {
	// URL is the source URL.
	URL string
	// Executable is the yt-dlp binary; empty means DefaultExecutable.
	Executable string
	// Platform is the classified platform.
	Platform platform.ID
	// Quality is the abstract quality: best, worst, audio or a height such as 720p.
	Quality string
	// Format selects video, audio or image output.
	Format platform.Format
	// OutputRoot is the download root; the platform sub-directory is added below it.
	OutputRoot string
	// CookiesFile is an optional Netscape cookie file.
	CookiesFile string
	// Playlist enables playlist mode.
	Playlist bool
	// PlaylistLimit caps the number of playlist items.
	PlaylistLimit int64
	// AudioFormat is the codec audio is extracted to.
	AudioFormat string
	// AudioQuality is the target audio bitrate.
	AudioQuality string
	// SpeedLimit is the rate limit in bytes per second, 0 for none.
	SpeedLimit int64
	// PrintToFile receives the final paths of downloaded files, empty when not needed.
	PrintToFile string
}

// SynthesizedCommand is a ready-to-run yt-dlp argument vector.
type SynthesizedCommand struct {
	// Executable is the yt-dlp binary the arguments are meant for.
	Executable string
	// Args are the tool arguments; the URL is always the last element.
	Args []string
	// OutputDir is the platform directory that must exist before the command runs.
	OutputDir string
}

// ExecutionResult is the outcome of one download attempt.
type ExecutionResult struct {
	// ExitCode is the child exit code; -1 when no process ran to completion.
	ExitCode int
	// Success is true only when the download completed.
	Success bool
	// Err describes the failure, nil on success.
	Err error
	// BytesWritten is the size of a directly fetched file.
	BytesWritten int64
	// Path is the destination of a directly fetched file.
	Path string
}

// DownloadStatistics tracks metrics for a download session.
type DownloadStatistics struct {
	// StartTime is when the download session began.
	StartTime time.Time
	// EndTime is when the download session completed.
	EndTime time.Time
	// IsDryRun indicates if this was a dry-run preview.
	IsDryRun bool
	// TotalProcessed is the total number of URLs attempted.
	TotalProcessed int64
	// Succeeded is the number of URLs downloaded successfully.
	Succeeded int64
	// Failed is the number of URLs that failed.
	Failed int64
	// Planned is the number of commands printed in dry-run mode.
	Planned int64
	// MetadataMissing is the number of URLs whose probe returned nothing.
	MetadataMissing int64
	// AttachmentsFetched is the number of files fetched over plain HTTP.
	AttachmentsFetched int64
	// FilesTagged is the number of audio files tagged.
	FilesTagged int64
	// TotalBytesFetched is the size of directly fetched content in bytes.
	TotalBytesFetched int64
	// Errors is a list of all errors encountered during the session.
	Errors []DownloadError
}

// DownloadError represents a single failed URL.
type DownloadError struct {
	// URL is the source URL.
	URL string
	// Platform is the display name of the platform.
	Platform string
	// Phase describes where the failure happened.
	Phase string
	// ExitCode is the child exit code, 0 when no child was run.
	ExitCode int
	// Retryable tells whether the URL is listed in the retry command.
	Retryable bool
	// ErrorMessage is the error text.
	ErrorMessage string
}
