package dispatch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oshokin/mediagrab/internal/client/direct"
	"github.com/oshokin/mediagrab/internal/client/ytdlp"
	"github.com/oshokin/mediagrab/internal/config"
	"github.com/oshokin/mediagrab/internal/constants"
	"github.com/oshokin/mediagrab/internal/logger"
	"github.com/oshokin/mediagrab/internal/platform"
	"github.com/oshokin/mediagrab/internal/utils"
)

// Service dispatches URLs to the right download path.
type Service interface {
	// DownloadURLs downloads every URL in order; .txt entries are expanded into the URLs they list.
	DownloadURLs(ctx context.Context, urls []string)
	// ShowInfo prints metadata for every URL without downloading anything.
	ShowInfo(ctx context.Context, urls []string)
	// PrintDownloadSummary prints a formatted summary of download statistics.
	PrintDownloadSummary(ctx context.Context)
}

// ServiceImpl implements Service.
type ServiceImpl struct {
	// cfg contains the application configuration.
	cfg *config.Config
	// registry classifies URLs and supplies platform profiles.
	registry *platform.Registry
	// tool runs yt-dlp.
	tool ytdlp.Client
	// fetcher downloads direct links.
	fetcher direct.Client
	// tagWriter tags extracted audio.
	tagWriter TagWriter
	// stats tracks download statistics for the current session.
	stats *DownloadStatistics
	// statsMutex protects access to statistics.
	statsMutex *sync.Mutex
}

const (
	// defaultAttachmentName is used when neither the URL nor the profile yields a file name.
	defaultAttachmentName = "attachment"

	// separatorLine is printed between a request's header and the tool output.
	separatorLine = "--------------------------------------------------"
)

// NewService creates a dispatch service with dependency-injected components.
func NewService(
	cfg *config.Config,
	registry *platform.Registry,
	tool ytdlp.Client,
	fetcher direct.Client,
	tagWriter TagWriter,
) Service {
	return &ServiceImpl{
		cfg:        cfg,
		registry:   registry,
		tool:       tool,
		fetcher:    fetcher,
		tagWriter:  tagWriter,
		stats:      new(DownloadStatistics),
		statsMutex: new(sync.Mutex),
	}
}

// DownloadURLs downloads every URL in order.
// A failed URL is reported and recorded, and processing continues with the next one.
func (s *ServiceImpl) DownloadURLs(ctx context.Context, urls []string) {
	s.statsMutex.Lock()
	s.stats.StartTime = time.Now()
	s.stats.IsDryRun = s.cfg.DryRun
	s.statsMutex.Unlock()

	expandedURLs := s.expandURLs(ctx, urls)
	urlsCount := len(expandedURLs)

	if urlsCount > 1 {
		logger.Infof(ctx, "Found %d URLs to download", urlsCount)
	}

	for index, url := range expandedURLs {
		// Check if context was canceled (CTRL+C pressed) - stop immediately.
		select {
		case <-ctx.Done():
			s.finishSession()

			return
		default:
		}

		if urlsCount > 1 {
			logger.Infof(ctx, "Downloading %d/%d: %s", index+1, urlsCount, url)
		}

		s.processURL(ctx, url)
	}

	s.finishSession()
}

// ShowInfo prints metadata for every URL without downloading anything.
func (s *ServiceImpl) ShowInfo(ctx context.Context, urls []string) {
	for _, url := range s.expandURLs(ctx, urls) {
		select {
		case <-ctx.Done():
			return
		default:
		}

		profile := s.registry.Profile(s.registry.Classify(url))
		logger.Infof(ctx, "Platform: %s (%s)", profile.Name, profile.Status)

		if profile.Kind != platform.KindExtract {
			logger.Warnf(ctx, "Metadata is not available for %s links", profile.Name)

			continue
		}

		metadata, err := s.tool.Probe(ctx, url)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				logger.Errorf(ctx, "Failed to get media information for %s: %v", url, err)
			}

			continue
		}

		printMediaInformation(ctx, metadata)
	}
}

// processURL runs one URL through the request lifecycle.
func (s *ServiceImpl) processURL(ctx context.Context, url string) {
	tracker := newRequestTracker(url)

	id := s.registry.Classify(url)
	profile := s.registry.Profile(id)

	tracker.advance(ctx, StateClassified)

	logger.Info(ctx, "")
	logger.Infof(ctx, "Platform: %s (%s)", profile.Name, profile.Status)

	errCtx := &ErrorContext{
		URL:       url,
		Platform:  profile.Name,
		Retryable: true,
	}

	switch profile.Kind {
	case platform.KindUnavailable:
		tracker.advance(ctx, StateFailed)
		reportUnavailable(ctx, profile)

		errCtx.Phase = "checking platform"
		errCtx.Retryable = false
		s.recordFailure(errCtx, ErrPlatformUnavailable)
	case platform.KindDirect:
		s.runDirect(ctx, tracker, url, profile, errCtx)
	default:
		s.runExtraction(ctx, tracker, url, profile, errCtx)
	}
}

// runDirect fetches a direct link into the platform directory.
func (s *ServiceImpl) runDirect(
	ctx context.Context,
	tracker *requestTracker,
	url string,
	profile *platform.Profile,
	errCtx *ErrorContext,
) {
	tracker.advance(ctx, StateExecuting)

	destinationDir := filepath.Join(s.cfg.OutputPath, string(profile.ID))

	result := s.FetchAttachment(ctx, url, profile, destinationDir, s.cfg.AttachmentName)
	if s.cfg.DryRun && result.Success {
		tracker.advance(ctx, StateSucceeded)
		s.incrementPlanned()

		return
	}

	s.finishRequest(ctx, tracker, profile, result, errCtx, "fetching attachment")

	if result.Success {
		s.incrementAttachmentFetched(result.BytesWritten)
	}
}

// runExtraction synthesizes, probes and runs a yt-dlp download.
func (s *ServiceImpl) runExtraction(
	ctx context.Context,
	tracker *requestTracker,
	url string,
	profile *platform.Profile,
	errCtx *ErrorContext,
) {
	isTagging := s.isTaggingEnabled()

	req := s.newDownloadRequest(url, profile.ID)
	if isTagging {
		req.PrintToFile = filepath.Join(os.TempDir(), "mediagrab-"+uuid.NewString()+constants.ExtensionTXT)
		defer os.Remove(req.PrintToFile) //nolint:errcheck // Best-effort cleanup of a temporary list.
	}

	cmd := Synthesize(req, profile)

	tracker.advance(ctx, StateCommandBuilt)

	if s.cfg.DryRun {
		logger.Infof(ctx, "[DRY-RUN] Would run: %s %s", cmd.Executable, strings.Join(cmd.Args, " "))
		tracker.advance(ctx, StateSucceeded)
		s.incrementPlanned()

		return
	}

	logger.Infof(ctx, "Starting download from %s", profile.Name)

	metadata, err := s.tool.Probe(ctx, url)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			tracker.advance(ctx, StateFailed)

			return
		}

		logger.Warnf(ctx, "Media information is not available: %v", err)
		s.incrementMetadataMissing()
	} else {
		printMediaSummary(ctx, metadata)
	}

	if err = EnsureOutputDir(cmd); err != nil {
		tracker.advance(ctx, StateFailed)
		logger.Errorf(ctx, "Failed to create output directory: %v", err)

		errCtx.Phase = "creating output directory"
		s.recordFailure(errCtx, err)

		return
	}

	tracker.advance(ctx, StateExecuting)

	result := s.execute(ctx, cmd)
	s.finishRequest(ctx, tracker, profile, result, errCtx, "running "+cmd.Executable)

	if result.Success && isTagging {
		s.tagDownloadedFiles(ctx, req, metadata)
	}
}

// execute runs a synthesized command and converts the outcome into a result.
func (s *ServiceImpl) execute(ctx context.Context, cmd *SynthesizedCommand) *ExecutionResult {
	exitCode, err := s.tool.Run(ctx, cmd.Args)

	return &ExecutionResult{
		ExitCode: exitCode,
		Success:  err == nil && exitCode == 0,
		Err:      err,
	}
}

// finishRequest reports a result and moves the request into its terminal state.
func (s *ServiceImpl) finishRequest(
	ctx context.Context,
	tracker *requestTracker,
	profile *platform.Profile,
	result *ExecutionResult,
	errCtx *ErrorContext,
	phase string,
) {
	Report(ctx, profile, result)

	if result.Success {
		tracker.advance(ctx, StateSucceeded)
		s.incrementSucceeded()

		return
	}

	tracker.advance(ctx, StateFailed)

	errCtx.Phase = phase
	errCtx.ExitCode = result.ExitCode
	errCtx.Retryable = !errors.Is(result.Err, ErrHostNotAllowed)

	err := result.Err
	if err == nil {
		err = ytdlp.ErrNonZeroExit
	}

	s.recordFailure(errCtx, err)
}

// tagDownloadedFiles tags every file yt-dlp reported in the print-to-file list.
// Tagging problems are logged and never fail the request.
func (s *ServiceImpl) tagDownloadedFiles(ctx context.Context, req *DownloadRequest, metadata *ytdlp.MediaMetadata) {
	paths, err := utils.ReadUniqueLinesFromFile(req.PrintToFile)
	if err != nil {
		logger.Warnf(ctx, "Failed to read the list of downloaded files: %v", err)

		return
	}

	for _, path := range paths {
		err = s.tagWriter.WriteTags(ctx, &WriteTagsRequest{
			FilePath:  path,
			CoverPath: FindCover(path),
			Metadata:  metadata,
			SourceURL: req.URL,
		})
		if err != nil {
			logger.Warnf(ctx, "Failed to write tags to '%s': %v", path, err)

			continue
		}

		logger.Infof(ctx, "Tags written: %s", filepath.Base(path))
		s.incrementFilesTagged()
	}
}

func (s *ServiceImpl) newDownloadRequest(url string, id platform.ID) *DownloadRequest {
	return &DownloadRequest{
		URL:           url,
		Executable:    s.tool.Executable(),
		Platform:      id,
		Quality:       s.cfg.Quality,
		Format:        s.cfg.ParsedFormat,
		OutputRoot:    s.cfg.OutputPath,
		CookiesFile:   s.cfg.CookiesFor(id),
		Playlist:      s.cfg.Playlist,
		PlaylistLimit: s.cfg.PlaylistLimit,
		AudioFormat:   s.cfg.AudioFormat,
		AudioQuality:  s.cfg.AudioQuality,
		SpeedLimit:    s.cfg.ParsedSpeedLimit,
	}
}

func (s *ServiceImpl) isTaggingEnabled() bool {
	return s.cfg.WriteTags && s.cfg.ParsedFormat == platform.FormatAudio && s.tagWriter != nil
}

// expandURLs replaces .txt entries with the URLs they contain and drops duplicates.
func (s *ServiceImpl) expandURLs(ctx context.Context, urls []string) []string {
	var (
		result = make([]string, 0, len(urls))
		seen   = make(map[string]struct{}, len(urls))
	)

	add := func(url string) {
		url = strings.TrimSpace(url)
		if url == "" {
			return
		}

		if _, ok := seen[url]; ok {
			return
		}

		seen[url] = struct{}{}
		result = append(result, url)
	}

	for _, entry := range urls {
		if !IsURLListFile(entry) {
			add(entry)

			continue
		}

		lines, err := utils.ReadUniqueLinesFromFile(entry)
		if err != nil {
			logger.Errorf(ctx, "Failed to read URLs from '%s': %v", entry, err)

			continue
		}

		logger.Infof(ctx, "Found %d URLs in %s", len(lines), entry)

		for _, line := range lines {
			add(line)
		}
	}

	return result
}

// IsURLListFile reports whether an argument names a file of URLs rather than a URL.
func IsURLListFile(arg string) bool {
	return strings.EqualFold(filepath.Ext(arg), constants.ExtensionTXT) && !strings.Contains(arg, "://")
}

func (s *ServiceImpl) finishSession() {
	s.statsMutex.Lock()
	s.stats.EndTime = time.Now()
	s.statsMutex.Unlock()
}
