package ytdlp

import "errors"

var (
	// ErrToolNotInstalled indicates that the yt-dlp executable cannot be found or started.
	ErrToolNotInstalled = errors.New("yt-dlp is not installed")
	// ErrMetadataNotFound indicates that the probe produced no usable metadata.
	ErrMetadataNotFound = errors.New("metadata not found")
	// ErrNonZeroExit indicates that the child process finished with a non-zero exit code.
	ErrNonZeroExit = errors.New("process exited with non-zero code")
)
