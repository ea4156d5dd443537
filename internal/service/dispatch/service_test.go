package dispatch_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/oshokin/mediagrab/internal/client/direct"
	mock_direct "github.com/oshokin/mediagrab/internal/client/direct/mocks"
	"github.com/oshokin/mediagrab/internal/client/ytdlp"
	mock_ytdlp "github.com/oshokin/mediagrab/internal/client/ytdlp/mocks"
	"github.com/oshokin/mediagrab/internal/config"
	"github.com/oshokin/mediagrab/internal/platform"
	"github.com/oshokin/mediagrab/internal/service/dispatch"
	mock_dispatch "github.com/oshokin/mediagrab/internal/service/dispatch/mocks"
)

// testDispatchSetup encapsulates common test dependencies and configuration.
type testDispatchSetup struct {
	tool      *mock_ytdlp.MockClient
	fetcher   *mock_direct.MockClient
	tagWriter *mock_dispatch.MockTagWriter
	service   *dispatch.ServiceImpl
	config    *config.Config
	tempDir   string
}

// newTestDispatchSetup creates a standard test setup with optional config overrides.
func newTestDispatchSetup(
	t *testing.T,
	extraDomains map[string][]string,
	configOverrides ...func(*config.Config),
) *testDispatchSetup {
	t.Helper()

	ctrl := gomock.NewController(t)
	tempDir := t.TempDir()

	cfg := &config.Config{
		OutputPath:    tempDir,
		Quality:       platform.QualityBest,
		AudioFormat:   "mp3",
		AudioQuality:  "192K",
		PlaylistLimit: config.DefaultPlaylistLimit,
		ParsedFormat:  platform.FormatVideo,
	}

	// Apply overrides.
	for _, override := range configOverrides {
		override(cfg)
	}

	registry, err := platform.NewRegistry(extraDomains)
	require.NoError(t, err)

	setup := &testDispatchSetup{
		tool:      mock_ytdlp.NewMockClient(ctrl),
		fetcher:   mock_direct.NewMockClient(ctrl),
		tagWriter: mock_dispatch.NewMockTagWriter(ctrl),
		config:    cfg,
		tempDir:   tempDir,
	}

	setup.tool.EXPECT().Executable().Return(ytdlp.DefaultExecutable).AnyTimes()

	service, ok := dispatch.NewService(cfg, registry, setup.tool, setup.fetcher, setup.tagWriter).(*dispatch.ServiceImpl)
	require.True(t, ok, "Service should be of type *ServiceImpl")

	setup.service = service

	return setup
}

func testMetadata() *ytdlp.MediaMetadata {
	return &ytdlp.MediaMetadata{
		Title:        "Test Video",
		Uploader:     "Test Channel",
		Duration:     95,
		UploadDate:   "20240101",
		ExtractorKey: "Youtube",
	}
}

// argAfter returns the argument following flag.
func argAfter(args []string, flag string) string {
	idx := slices.Index(args, flag)
	if idx < 0 || idx+1 >= len(args) {
		return ""
	}

	return args[idx+1]
}

// TestDownloadURLs_Extraction tests a successful yt-dlp download.
func TestDownloadURLs_Extraction(t *testing.T) {
	t.Parallel()

	setup := newTestDispatchSetup(t, nil)
	url := "https://www.youtube.com/watch?v=abc"

	setup.tool.EXPECT().Probe(gomock.Any(), url).Return(testMetadata(), nil)
	setup.tool.EXPECT().Run(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, args []string) (int, error) {
			assert.Equal(t, url, args[len(args)-1])
			assert.Equal(t, "best[height<=1080]", argAfter(args, "--format"))
			assert.True(t, strings.HasPrefix(argAfter(args, "--output"), filepath.Join(setup.tempDir, "youtube")))

			return 0, nil
		})

	setup.service.DownloadURLs(t.Context(), []string{url})

	stats := setup.service.Statistics()
	assert.Equal(t, int64(1), stats.TotalProcessed)
	assert.Equal(t, int64(1), stats.Succeeded)
	assert.Empty(t, stats.Errors)
	assert.False(t, stats.EndTime.IsZero())

	info, err := os.Stat(filepath.Join(setup.tempDir, "youtube"))
	require.NoError(t, err, "Platform directory should be created before the run")
	assert.True(t, info.IsDir())
}

// TestDownloadURLs_NonZeroExit tests that a failing child is recorded and retryable.
func TestDownloadURLs_NonZeroExit(t *testing.T) {
	t.Parallel()

	setup := newTestDispatchSetup(t, nil)
	url := "https://vimeo.com/123"

	setup.tool.EXPECT().Probe(gomock.Any(), url).Return(testMetadata(), nil)
	setup.tool.EXPECT().Run(gomock.Any(), gomock.Any()).Return(1, ytdlp.ErrNonZeroExit)

	setup.service.DownloadURLs(t.Context(), []string{url})

	stats := setup.service.Statistics()
	assert.Equal(t, int64(1), stats.Failed)
	require.Len(t, stats.Errors, 1)
	assert.Equal(t, url, stats.Errors[0].URL)
	assert.Equal(t, "Vimeo", stats.Errors[0].Platform)
	assert.Equal(t, 1, stats.Errors[0].ExitCode)
	assert.True(t, stats.Errors[0].Retryable)
}

// TestDownloadURLs_MetadataMissing tests that a failed probe does not stop the download.
func TestDownloadURLs_MetadataMissing(t *testing.T) {
	t.Parallel()

	setup := newTestDispatchSetup(t, nil)

	setup.tool.EXPECT().Probe(gomock.Any(), gomock.Any()).Return(nil, ytdlp.ErrMetadataNotFound)
	setup.tool.EXPECT().Run(gomock.Any(), gomock.Any()).Return(0, nil)

	setup.service.DownloadURLs(t.Context(), []string{"https://example.org/some/video"})

	stats := setup.service.Statistics()
	assert.Equal(t, int64(1), stats.Succeeded)
	assert.Equal(t, int64(1), stats.MetadataMissing)
}

// TestDownloadURLs_Unavailable tests that refused platforms never reach the tool.
func TestDownloadURLs_Unavailable(t *testing.T) {
	t.Parallel()

	setup := newTestDispatchSetup(t, nil)

	setup.service.DownloadURLs(t.Context(), []string{"https://www.periscope.tv/w/abc"})

	stats := setup.service.Statistics()
	assert.Equal(t, int64(1), stats.Failed)
	require.Len(t, stats.Errors, 1)
	assert.Equal(t, dispatch.ErrPlatformUnavailable.Error(), stats.Errors[0].ErrorMessage)
	assert.False(t, stats.Errors[0].Retryable)
}

// TestDownloadURLs_DryRun tests that dry-run neither probes nor runs anything.
func TestDownloadURLs_DryRun(t *testing.T) {
	t.Parallel()

	setup := newTestDispatchSetup(t, nil, func(cfg *config.Config) {
		cfg.DryRun = true
	})

	setup.service.DownloadURLs(t.Context(), []string{
		"https://www.tiktok.com/@user/video/1",
		"https://cdn.discordapp.com/attachments/1/2/clip.mp4",
	})

	stats := setup.service.Statistics()
	assert.True(t, stats.IsDryRun)
	assert.Equal(t, int64(2), stats.Planned)
	assert.Equal(t, int64(0), stats.Succeeded)

	entries, err := os.ReadDir(setup.tempDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "Dry-run must not create directories")
}

// TestDownloadURLs_DirectAttachment tests that direct links bypass the tool.
func TestDownloadURLs_DirectAttachment(t *testing.T) {
	t.Parallel()

	setup := newTestDispatchSetup(t, nil)
	url := "https://cdn.discordapp.com/attachments/1/2/image.png"

	setup.fetcher.EXPECT().Fetch(gomock.Any(), url, gomock.Any()).Return(&direct.FetchResult{
		Body:       io.NopCloser(strings.NewReader("png-bytes")),
		TotalBytes: int64(len("png-bytes")),
	}, nil)

	setup.service.DownloadURLs(t.Context(), []string{url})

	stats := setup.service.Statistics()
	assert.Equal(t, int64(1), stats.Succeeded)
	assert.Equal(t, int64(1), stats.AttachmentsFetched)
	assert.Equal(t, int64(len("png-bytes")), stats.TotalBytesFetched)

	data, err := os.ReadFile(filepath.Join(setup.tempDir, "discord", "image.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
}

// TestDownloadURLs_DirectHostNotAllowed tests that an extra domain cannot widen the download allow-list.
func TestDownloadURLs_DirectHostNotAllowed(t *testing.T) {
	t.Parallel()

	setup := newTestDispatchSetup(t, map[string][]string{"discord": {"discord.gg"}})

	setup.service.DownloadURLs(t.Context(), []string{"https://discord.gg/invite/file.zip"})

	stats := setup.service.Statistics()
	assert.Equal(t, int64(1), stats.Failed)
	require.Len(t, stats.Errors, 1)
	assert.Contains(t, stats.Errors[0].ErrorMessage, dispatch.ErrHostNotAllowed.Error())
	assert.False(t, stats.Errors[0].Retryable)
}

// TestDownloadURLs_URLListFile tests expansion of .txt arguments with de-duplication.
func TestDownloadURLs_URLListFile(t *testing.T) {
	t.Parallel()

	setup := newTestDispatchSetup(t, nil)

	listPath := filepath.Join(setup.tempDir, "urls.txt")
	content := strings.Join([]string{
		"# favourites",
		"https://vimeo.com/1",
		"",
		"https://vimeo.com/2",
		"https://vimeo.com/1",
	}, "\n")
	require.NoError(t, os.WriteFile(listPath, []byte(content), 0o600))

	var ranURLs []string

	setup.tool.EXPECT().Probe(gomock.Any(), gomock.Any()).Return(testMetadata(), nil).Times(2)
	setup.tool.EXPECT().Run(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, args []string) (int, error) {
			ranURLs = append(ranURLs, args[len(args)-1])

			return 0, nil
		}).Times(2)

	setup.service.DownloadURLs(t.Context(), []string{listPath, "https://vimeo.com/2"})

	assert.Equal(t, []string{"https://vimeo.com/1", "https://vimeo.com/2"}, ranURLs)
	assert.Equal(t, int64(2), setup.service.Statistics().Succeeded)
}

// TestDownloadURLs_ContinuesAfterFailure tests that one failure does not stop the batch.
func TestDownloadURLs_ContinuesAfterFailure(t *testing.T) {
	t.Parallel()

	setup := newTestDispatchSetup(t, nil)

	gomock.InOrder(
		setup.tool.EXPECT().Probe(gomock.Any(), "https://rumble.com/a").Return(testMetadata(), nil),
		setup.tool.EXPECT().Run(gomock.Any(), gomock.Any()).Return(2, ytdlp.ErrNonZeroExit),
		setup.tool.EXPECT().Probe(gomock.Any(), "https://rumble.com/b").Return(testMetadata(), nil),
		setup.tool.EXPECT().Run(gomock.Any(), gomock.Any()).Return(0, nil),
	)

	setup.service.DownloadURLs(t.Context(), []string{"https://rumble.com/a", "https://rumble.com/b"})

	stats := setup.service.Statistics()
	assert.Equal(t, int64(2), stats.TotalProcessed)
	assert.Equal(t, int64(1), stats.Succeeded)
	assert.Equal(t, int64(1), stats.Failed)
}

// TestDownloadURLs_Canceled tests that a canceled context stops before any work.
func TestDownloadURLs_Canceled(t *testing.T) {
	t.Parallel()

	setup := newTestDispatchSetup(t, nil)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	setup.service.DownloadURLs(ctx, []string{"https://vimeo.com/1", "https://vimeo.com/2"})

	stats := setup.service.Statistics()
	assert.Equal(t, int64(0), stats.TotalProcessed)
	assert.Empty(t, stats.Errors)
}

// TestDownloadURLs_AudioTagging tests that extracted audio files are tagged.
func TestDownloadURLs_AudioTagging(t *testing.T) {
	t.Parallel()

	setup := newTestDispatchSetup(t, nil, func(cfg *config.Config) {
		cfg.ParsedFormat = platform.FormatAudio
		cfg.WriteTags = true
	})

	url := "https://youtu.be/abc"
	downloaded := filepath.Join(setup.tempDir, "youtube", "Test Channel", "Test Video.mp3")

	setup.tool.EXPECT().Probe(gomock.Any(), url).Return(testMetadata(), nil)
	setup.tool.EXPECT().Run(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, args []string) (int, error) {
			idx := slices.Index(args, "--print-to-file")
			require.GreaterOrEqual(t, idx, 0, "Tagging needs the list of downloaded files")
			require.Less(t, idx+2, len(args))

			listPath := args[idx+2]

			return 0, os.WriteFile(listPath, []byte(downloaded+"\n"), 0o600)
		})
	setup.tagWriter.EXPECT().WriteTags(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req *dispatch.WriteTagsRequest) error {
			assert.Equal(t, downloaded, req.FilePath)
			assert.Equal(t, url, req.SourceURL)
			assert.Equal(t, "Test Video", req.Metadata.Title)

			return nil
		})

	setup.service.DownloadURLs(t.Context(), []string{url})

	stats := setup.service.Statistics()
	assert.Equal(t, int64(1), stats.Succeeded)
	assert.Equal(t, int64(1), stats.FilesTagged)
}

// TestDownloadURLs_TaggingFailureKeepsSuccess tests that tag errors never fail a download.
func TestDownloadURLs_TaggingFailureKeepsSuccess(t *testing.T) {
	t.Parallel()

	setup := newTestDispatchSetup(t, nil, func(cfg *config.Config) {
		cfg.ParsedFormat = platform.FormatAudio
		cfg.WriteTags = true
	})

	setup.tool.EXPECT().Probe(gomock.Any(), gomock.Any()).Return(testMetadata(), nil)
	setup.tool.EXPECT().Run(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, args []string) (int, error) {
			listPath := args[slices.Index(args, "--print-to-file")+2]

			return 0, os.WriteFile(listPath, []byte("/nowhere/file.opus\n"), 0o600)
		})
	setup.tagWriter.EXPECT().WriteTags(gomock.Any(), gomock.Any()).Return(dispatch.ErrUnsupportedTagFormat)

	setup.service.DownloadURLs(t.Context(), []string{"https://youtu.be/abc"})

	stats := setup.service.Statistics()
	assert.Equal(t, int64(1), stats.Succeeded)
	assert.Equal(t, int64(0), stats.FilesTagged)
	assert.Empty(t, stats.Errors)
}

// TestShowInfo tests that info mode probes extractable URLs only.
func TestShowInfo(t *testing.T) {
	t.Parallel()

	setup := newTestDispatchSetup(t, nil)

	setup.tool.EXPECT().Probe(gomock.Any(), "https://vimeo.com/1").Return(testMetadata(), nil)
	setup.tool.EXPECT().Probe(gomock.Any(), "https://vimeo.com/2").Return(nil, ytdlp.ErrMetadataNotFound)

	setup.service.ShowInfo(t.Context(), []string{
		"https://vimeo.com/1",
		"https://vimeo.com/2",
		"https://cdn.discordapp.com/attachments/1/2/a.png",
		"https://www.periscope.tv/w/abc",
	})

	stats := setup.service.Statistics()
	assert.Equal(t, int64(0), stats.TotalProcessed, "Info mode does not count downloads")
}

// TestIsURLListFile tests detection of URL list arguments.
func TestIsURLListFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		arg      string
		expected bool
	}{
		{name: "Plain file", arg: "urls.txt", expected: true},
		{name: "Upper-case extension", arg: "URLS.TXT", expected: true},
		{name: "Nested path", arg: filepath.Join("lists", "music.txt"), expected: true},
		{name: "URL ending in txt", arg: "https://example.com/robots.txt", expected: false},
		{name: "Video URL", arg: "https://youtu.be/abc", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, dispatch.IsURLListFile(tt.arg))
		})
	}
}
