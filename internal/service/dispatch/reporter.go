package dispatch

import (
	"context"
	"errors"

	"github.com/dustin/go-humanize"

	"github.com/oshokin/mediagrab/internal/client/ytdlp"
	"github.com/oshokin/mediagrab/internal/logger"
	"github.com/oshokin/mediagrab/internal/platform"
)

// Report prints the outcome of a download attempt.
// Failures are followed by the platform's static hint; no error taxonomy is derived from the output.
func Report(ctx context.Context, profile *platform.Profile, result *ExecutionResult) {
	switch {
	case result.Success:
		if result.Path != "" {
			logger.Infof(ctx, "Downloaded: %s", result.Path)
		}

		logger.Info(ctx, "Download successful!")

		return
	case errors.Is(result.Err, context.Canceled):
		logger.Warn(ctx, "Download interrupted")

		return
	case result.ExitCode > 0:
		logger.Errorf(ctx, "Download failed with exit code %d", result.ExitCode)
	case result.Err != nil:
		logger.Errorf(ctx, "Download failed: %v", result.Err)
	default:
		logger.Error(ctx, "Download failed")
	}

	if len(profile.FailureHint) == 0 {
		return
	}

	logger.Info(ctx, "Possible issues:")

	for _, hint := range profile.FailureHint {
		logger.Infof(ctx, "  - %s", hint)
	}
}

// reportUnavailable explains why a platform is refused.
func reportUnavailable(ctx context.Context, profile *platform.Profile) {
	logger.Errorf(ctx, "%s is not available for download", profile.Name)

	if profile.Notice != "" {
		logger.Warnf(ctx, "Notice: %s", profile.Notice)
	}

	if profile.Alternative != "" {
		logger.Infof(ctx, "Alternative: %s", profile.Alternative)
	}
}

// printMediaSummary prints the short metadata echo shown before a download.
func printMediaSummary(ctx context.Context, metadata *ytdlp.MediaMetadata) {
	logger.Infof(ctx, "Title: %s", metadata.Title)
	logger.Infof(ctx, "Creator: %s", metadata.Uploader)

	if metadata.Duration > 0 {
		logger.Infof(ctx, "Duration: %s", formatDuration(metadata.DurationValue()))
	}

	logger.Info(ctx, separatorLine)
}

// printMediaInformation prints the full metadata block of info mode.
func printMediaInformation(ctx context.Context, metadata *ytdlp.MediaMetadata) {
	logger.Info(ctx, "Media Information:")
	logger.Infof(ctx, "  Title:       %s", metadata.Title)
	logger.Infof(ctx, "  Creator:     %s", metadata.Uploader)
	logger.Infof(ctx, "  Duration:    %s", formatDuration(metadata.DurationValue()))
	logger.Infof(ctx, "  Views:       %s", humanize.Comma(metadata.ViewCount))
	logger.Infof(ctx, "  Likes:       %s", humanize.Comma(metadata.LikeCount))

	if metadata.UploadDate != "" {
		logger.Infof(ctx, "  Upload Date: %s", metadata.FormattedUploadDate())
	}

	logger.Infof(ctx, "  Platform:    %s", metadata.ExtractorKey)

	if metadata.FormatsCount > 0 {
		logger.Infof(ctx, "  Formats:     %d available", metadata.FormatsCount)
		printFormats(ctx, metadata.Formats)
	}

	if metadata.Description != "" {
		logger.Infof(ctx, "  Description: %s", truncate(metadata.Description, maxDescriptionLength))
	}
}

// maxListedFormats caps the format rows shown in info mode.
const maxListedFormats = 20

// printFormats prints one row per format, best formats last as yt-dlp orders them.
func printFormats(ctx context.Context, formats []ytdlp.MediaFormat) {
	if len(formats) == 0 {
		return
	}

	hidden := 0
	if len(formats) > maxListedFormats {
		hidden = len(formats) - maxListedFormats
		formats = formats[hidden:]
	}

	logger.Infof(ctx, "    %-16s %-6s %s", "ID", "EXT", "RESOLUTION")

	for _, format := range formats {
		logger.Infof(ctx, "    %-16s %-6s %s", format.ID, format.Extension, format.Resolution)
	}

	if hidden > 0 {
		logger.Infof(ctx, "    ... and %d more", hidden)
	}
}

// maxDescriptionLength caps the description shown in info mode.
const maxDescriptionLength = 200

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}

	return string(runes[:limit]) + "..."
}
