package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/oshokin/mediagrab/internal/client/direct"
	"github.com/oshokin/mediagrab/internal/constants"
	"github.com/oshokin/mediagrab/internal/logger"
	"github.com/oshokin/mediagrab/internal/platform"
	"github.com/oshokin/mediagrab/internal/utils"
)

// File options for overwriting an existing file.
const overwriteFileOptions = os.O_CREATE | os.O_TRUNC | os.O_WRONLY

// FetchAttachment downloads a raw file from an allow-listed host into destinationDir.
// The host is checked before any network traffic, and every redirect target is checked
// before it is contacted. The file name comes from customName,
// then from the last URL path segment, then from the profile's placeholder.
// A failed transfer leaves the partial file in place.
func (s *ServiceImpl) FetchAttachment(
	ctx context.Context,
	rawURL string,
	profile *platform.Profile,
	destinationDir string,
	customName string,
) *ExecutionResult {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return failedResult(fmt.Errorf("invalid URL: %w", err))
	}

	host := strings.ToLower(parsedURL.Hostname())
	if !profile.IsHostAllowed(host) {
		return failedResult(fmt.Errorf("%w: '%s'", ErrHostNotAllowed, host))
	}

	destinationPath := filepath.Join(destinationDir, attachmentFilename(parsedURL, customName, profile.PlaceholderName))

	if s.cfg.DryRun {
		logger.Infof(ctx, "[DRY-RUN] Would fetch %s to %s", rawURL, destinationPath)

		return &ExecutionResult{Success: true, Path: destinationPath}
	}

	if err = os.MkdirAll(destinationDir, constants.DefaultFolderPermissions); err != nil {
		return failedResult(fmt.Errorf("failed to create output directory: %w", err))
	}

	fetchResult, err := s.fetcher.Fetch(ctx, rawURL, profile.IsHostAllowed)
	if errors.Is(err, direct.ErrRedirectNotAllowed) {
		return failedResult(fmt.Errorf("%w: %w", ErrHostNotAllowed, err))
	}

	if err != nil {
		return failedResult(err)
	}

	defer fetchResult.Body.Close()

	file, err := os.OpenFile(filepath.Clean(destinationPath), overwriteFileOptions, constants.DefaultFilePermissions)
	if err != nil {
		return failedResult(err)
	}

	defer file.Close()

	bytesWritten, err := s.copyWithLimit(ctx, file, fetchResult.Body, fetchResult.TotalBytes)
	if err != nil {
		return &ExecutionResult{
			ExitCode:     -1,
			Err:          fmt.Errorf("failed to write file: %w", err),
			BytesWritten: bytesWritten,
			Path:         destinationPath,
		}
	}

	return &ExecutionResult{
		Success:      true,
		BytesWritten: bytesWritten,
		Path:         destinationPath,
	}
}

// copyWithLimit streams src into dst with a progress bar, honoring the speed limit.
func (s *ServiceImpl) copyWithLimit(ctx context.Context, dst io.Writer, src io.Reader, totalBytes int64) (int64, error) {
	writer := dst

	if logger.Level() <= zap.InfoLevel {
		bar := progressbar.DefaultBytes(totalBytes, "Downloading")
		writer = io.MultiWriter(dst, bar)
	}

	if s.cfg.ParsedSpeedLimit == 0 {
		return io.Copy(writer, src)
	}

	var bytesWritten int64

	for {
		n, err := io.CopyN(writer, src, s.cfg.ParsedSpeedLimit)
		bytesWritten += n

		if errors.Is(err, io.EOF) {
			return bytesWritten, nil
		}

		if err != nil {
			return bytesWritten, err
		}

		// Throttle to respect speed limit.
		select {
		case <-ctx.Done():
			return bytesWritten, ctx.Err()
		case <-time.After(time.Second):
		}
	}
}

// attachmentFilename picks a safe file name for a direct download.
func attachmentFilename(parsedURL *url.URL, customName, placeholder string) string {
	name := strings.TrimSpace(customName)
	if name == "" {
		name = path.Base(parsedURL.Path)
	}

	if name == "" || name == "." || name == "/" {
		name = placeholder
	}

	if name == "" {
		name = defaultAttachmentName
	}

	return utils.SanitizeFilename(name)
}

func failedResult(err error) *ExecutionResult {
	return &ExecutionResult{ExitCode: -1, Err: err}
}
