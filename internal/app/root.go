package app

import (
	"context"

	"github.com/oshokin/mediagrab/internal/client/direct"
	"github.com/oshokin/mediagrab/internal/client/ytdlp"
	"github.com/oshokin/mediagrab/internal/config"
	"github.com/oshokin/mediagrab/internal/logger"
	"github.com/oshokin/mediagrab/internal/platform"
	"github.com/oshokin/mediagrab/internal/service/dispatch"
	"github.com/oshokin/mediagrab/internal/utils"
)

// ExecuteRootCommand is the entry point for downloads.
// It checks the preconditions, wires the dispatch service and processes the URLs in order.
// listFiles are files of URLs given in bulk mode; they are read here, before any work begins.
func ExecuteRootCommand(ctx context.Context, cfg *config.Config, urls, listFiles []string) {
	tool := ytdlp.NewClient(cfg.ToolPath)

	toolVersion, err := tool.CheckInstalled(ctx)
	if err != nil {
		logger.Fatalf(ctx, "%v. Install it with 'pip install yt-dlp' or set tool_path in the configuration", err)
	}

	logger.Debugf(ctx, "Using %s %s", tool.Executable(), toolVersion)

	urls = append(urls, readListFiles(ctx, listFiles)...)

	for _, url := range urls {
		if dispatch.IsURLListFile(url) {
			ensureFileExists(ctx, url)
		}
	}

	registry, err := platform.NewRegistry(cfg.ExtraDomains)
	if err != nil {
		logger.Fatalf(ctx, "Failed to build platform table: %v", err)
	}

	s := dispatch.NewService(cfg, registry, tool, direct.NewClient(), dispatch.NewTagWriter())

	if cfg.InfoOnly {
		s.ShowInfo(ctx, urls)

		return
	}

	// Ensure statistics are ALWAYS printed, even on panic.
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf(ctx, "Panic recovered: %v", r)
		}

		s.PrintDownloadSummary(ctx)
	}()

	s.DownloadURLs(ctx, urls)
}

// readListFiles reads every bulk file; a missing file stops the program.
func readListFiles(ctx context.Context, listFiles []string) []string {
	var urls []string

	for _, path := range listFiles {
		ensureFileExists(ctx, path)

		lines, err := utils.ReadUniqueLinesFromFile(path)
		if err != nil {
			logger.Fatalf(ctx, "Failed to read URLs from '%s': %v", path, err)
		}

		logger.Infof(ctx, "Found %d URLs in %s", len(lines), path)

		urls = append(urls, lines...)
	}

	return urls
}

func ensureFileExists(ctx context.Context, path string) {
	isExist, err := utils.IsFileExist(path)
	if err != nil {
		logger.Fatalf(ctx, "Failed to check file '%s': %v", path, err)
	}

	if !isExist {
		logger.Fatalf(ctx, "File not found: %s", path)
	}
}
