package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/oshokin/mediagrab/internal/logger"
	"github.com/oshokin/mediagrab/internal/utils"
)

// summaryRule frames the download summary.
const summaryRule = "═══════════════════════════════════════════════════════════════"

// formatDuration formats a duration into a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}

	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}

	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}

	return fmt.Sprintf("%ds", seconds)
}

// incrementSucceeded increments the succeeded counter.
func (s *ServiceImpl) incrementSucceeded() {
	s.statsMutex.Lock()
	defer s.statsMutex.Unlock()

	s.stats.Succeeded++
	s.stats.TotalProcessed++
}

// incrementPlanned increments the dry-run counter.
func (s *ServiceImpl) incrementPlanned() {
	s.statsMutex.Lock()
	defer s.statsMutex.Unlock()

	s.stats.Planned++
	s.stats.TotalProcessed++
}

// incrementMetadataMissing increments the counter of failed probes.
func (s *ServiceImpl) incrementMetadataMissing() {
	s.statsMutex.Lock()
	defer s.statsMutex.Unlock()

	s.stats.MetadataMissing++
}

// incrementAttachmentFetched counts a direct download and its size.
func (s *ServiceImpl) incrementAttachmentFetched(bytes int64) {
	s.statsMutex.Lock()
	defer s.statsMutex.Unlock()

	s.stats.AttachmentsFetched++
	s.stats.TotalBytesFetched += bytes
}

// incrementFilesTagged increments the tagged files counter.
func (s *ServiceImpl) incrementFilesTagged() {
	s.statsMutex.Lock()
	defer s.statsMutex.Unlock()

	s.stats.FilesTagged++
}

// recordFailure counts a failed URL and keeps its error for the summary.
// Interrupted requests are not counted.
func (s *ServiceImpl) recordFailure(errCtx *ErrorContext, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}

	s.statsMutex.Lock()
	s.stats.Failed++
	s.stats.TotalProcessed++
	s.statsMutex.Unlock()

	s.recordError(errCtx, err)
}

// Statistics returns a snapshot of the session statistics.
func (s *ServiceImpl) Statistics() DownloadStatistics {
	s.statsMutex.Lock()
	defer s.statsMutex.Unlock()

	snapshot := *s.stats
	snapshot.Errors = append([]DownloadError(nil), s.stats.Errors...)

	return snapshot
}

// PrintDownloadSummary prints a formatted summary of download statistics.
func (s *ServiceImpl) PrintDownloadSummary(ctx context.Context) {
	s.statsMutex.Lock()
	defer s.statsMutex.Unlock()

	stats := s.stats

	// A single URL already printed its outcome.
	if stats.TotalProcessed <= 1 {
		return
	}

	// Check if the context was canceled (CTRL+C).
	wasInterrupted := ctx.Err() != nil

	s.printSummaryHeader(ctx, wasInterrupted, stats.IsDryRun)
	s.printURLStatistics(ctx, stats)
	s.printDataTransferStatistics(ctx, stats)
	logger.Info(ctx, summaryRule)
	s.printErrorDetails(ctx, stats)
	s.printFinalMessage(ctx, wasInterrupted, stats)
}

// printSummaryHeader prints the summary header.
func (s *ServiceImpl) printSummaryHeader(ctx context.Context, wasInterrupted, isDryRun bool) {
	logger.Info(ctx, "")
	logger.Info(ctx, summaryRule)

	switch {
	case isDryRun:
		logger.Info(ctx, "                  DRY-RUN PREVIEW")
	case wasInterrupted:
		logger.Info(ctx, "           DOWNLOAD SUMMARY (Interrupted)")
	default:
		logger.Info(ctx, "                     DOWNLOAD SUMMARY")
	}

	logger.Info(ctx, summaryRule)
}

// printURLStatistics prints per-URL counters.
func (s *ServiceImpl) printURLStatistics(ctx context.Context, stats *DownloadStatistics) {
	logger.Infof(ctx, "URLs:             %d total processed", stats.TotalProcessed)

	if stats.Planned > 0 {
		logger.Infof(ctx, "  Planned:         %d", stats.Planned)
	}

	if stats.Succeeded > 0 {
		logger.Infof(ctx, "  Downloaded:      %d", stats.Succeeded)
	}

	if stats.Failed > 0 {
		logger.Infof(ctx, "  Failed:          %d", stats.Failed)
	}

	if stats.MetadataMissing > 0 {
		logger.Infof(ctx, "  No Metadata:     %d", stats.MetadataMissing)
	}

	if stats.FilesTagged > 0 {
		logger.Infof(ctx, "  Files Tagged:    %d", stats.FilesTagged)
	}

	if !stats.IsDryRun && stats.TotalProcessed > 0 {
		successRate := float64(stats.Succeeded) / float64(stats.TotalProcessed) * 100 //nolint:mnd // Percent.
		logger.Infof(ctx, "  Success Rate:    %.1f%%", successRate)
	}
}

// printDataTransferStatistics prints attachment transfer totals and the session duration.
func (s *ServiceImpl) printDataTransferStatistics(ctx context.Context, stats *DownloadStatistics) {
	if stats.AttachmentsFetched > 0 {
		logger.Info(ctx, "")
		logger.Infof(ctx, "Attachments:      %d", stats.AttachmentsFetched)
		//nolint:gosec // TotalBytesFetched is always positive, no overflow risk.
		logger.Infof(ctx, "Data Fetched:     %s", humanize.Bytes(utils.SafeInt64ToUint64(stats.TotalBytesFetched)))
	}

	if stats.IsDryRun || stats.StartTime.IsZero() || stats.EndTime.IsZero() {
		return
	}

	duration := stats.EndTime.Sub(stats.StartTime)

	// Only show if duration is meaningful (> 100ms).
	if duration > 100*time.Millisecond {
		logger.Infof(ctx, "Duration:         %s", formatDuration(duration))
	}
}

// printErrorDetails prints every failed URL and a command that retries them.
func (s *ServiceImpl) printErrorDetails(ctx context.Context, stats *DownloadStatistics) {
	if len(stats.Errors) == 0 {
		return
	}

	logger.Info(ctx, "")
	logger.Errorf(ctx, "ERRORS ENCOUNTERED: %d", len(stats.Errors))

	for i := range stats.Errors {
		downloadErr := stats.Errors[i]

		logger.Info(ctx, "")
		logger.Errorf(ctx, "  [%d] %s", i+1, downloadErr.URL)
		logger.Errorf(ctx, "      Platform: %s", downloadErr.Platform)
		logger.Errorf(ctx, "      Phase: %s", downloadErr.Phase)

		if downloadErr.ExitCode > 0 {
			logger.Errorf(ctx, "      Exit Code: %d", downloadErr.ExitCode)
		}

		logger.Errorf(ctx, "      Error: %s", downloadErr.ErrorMessage)
	}

	logger.Info(ctx, "")
	logger.Info(ctx, summaryRule)

	s.printRetryCommand(ctx, stats.Errors)
}

// printRetryCommand generates and prints a command to retry failed downloads.
func (s *ServiceImpl) printRetryCommand(ctx context.Context, downloadErrors []DownloadError) {
	urls := make([]string, 0, len(downloadErrors))

	for i := range downloadErrors {
		if downloadErrors[i].Retryable {
			urls = append(urls, "'"+downloadErrors[i].URL+"'")
		}
	}

	if len(urls) == 0 {
		return
	}

	logger.Info(ctx, "")
	logger.Info(ctx, "To retry only failed downloads, run:")
	logger.Info(ctx, "")

	for _, url := range urls {
		logger.Infof(ctx, "  mediagrab %s", url)
	}

	if len(urls) > 1 {
		logger.Info(ctx, "")
		logger.Info(ctx, "Or put them in a file, one per line, and run:")
		logger.Infof(ctx, "  mediagrab failed.txt bulk")
	}

	logger.Debugf(ctx, "Failed URLs: %s", strings.Join(urls, " "))
}

// printFinalMessage prints a helpful message based on download results.
func (s *ServiceImpl) printFinalMessage(ctx context.Context, wasInterrupted bool, stats *DownloadStatistics) {
	if stats.IsDryRun {
		logger.Info(ctx, "")
		logger.Info(ctx, "To proceed with actual download, remove the --dry-run flag.")

		return
	}

	switch {
	case wasInterrupted:
		logger.Info(ctx, "")
		logger.Warn(ctx, "Download interrupted by user (CTRL+C).")

		if stats.Succeeded > 0 {
			logger.Infof(ctx, "Successfully downloaded %d URL(s) before interruption.", stats.Succeeded)
		}
	case len(stats.Errors) > 0:
		logger.Info(ctx, "")
		logger.Warnf(ctx, "%d error(s) occurred during download. See detailed error log above.", len(stats.Errors))
	case stats.Succeeded > 0:
		logger.Info(ctx, "")
		logger.Info(ctx, "All downloads completed successfully!")
	}
}
