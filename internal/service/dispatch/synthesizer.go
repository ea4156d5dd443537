package dispatch

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/oshokin/mediagrab/internal/client/ytdlp"
	"github.com/oshokin/mediagrab/internal/constants"
	"github.com/oshokin/mediagrab/internal/platform"
)

// Output templates understood by yt-dlp.
const (
	uploaderPlaceholder      = "%(uploader)s"
	playlistTitlePlaceholder = "%(playlist_title)s"
	fileNamePlaceholder      = "%(title)s.%(ext)s"

	// printToFileTemplate makes yt-dlp append every final file path to a list.
	printToFileTemplate = "after_move:filepath"
)

// Synthesize builds the yt-dlp argument vector for a request.
// It is pure: nothing is created on disk and nothing is executed.
// Unknown qualities silently fall back to the profile's default selector.
func Synthesize(req *DownloadRequest, profile *platform.Profile) *SynthesizedCommand {
	outputDir := filepath.Join(req.OutputRoot, string(req.Platform))

	args := make([]string, 0, 32) //nolint:mnd // Typical vector length.

	switch req.Format {
	case platform.FormatAudio:
		args = append(args,
			"--extract-audio",
			"--audio-format", req.AudioFormat,
			"--audio-quality", req.AudioQuality,
		)
	case platform.FormatImage:
		args = append(args, "--write-thumbnail", "--skip-download")
	default:
		args = append(args, "--format", profile.Selector(req.Quality))

		if profile.MergeFormat != "" {
			args = append(args, "--merge-output-format", profile.MergeFormat)
		}
	}

	isPlaylist := req.Playlist && profile.SupportsPlaylist

	args = append(args, "--output", outputTemplate(outputDir, isPlaylist))

	// Sidecars are kept next to the media file.
	args = append(args, "--write-description", "--write-info-json")
	if profile.SupportsThumbnail && req.Format != platform.FormatImage {
		args = append(args, "--write-thumbnail")
	}

	if isPlaylist {
		args = append(args,
			"--playlist-end", strconv.FormatInt(req.PlaylistLimit, 10),
			"--ignore-errors",
		)
	}

	if profile.SupportsGeoBypass {
		args = append(args, "--geo-bypass")
	}

	if req.CookiesFile != "" {
		args = append(args, "--cookies", req.CookiesFile)
	}

	if req.SpeedLimit > 0 {
		args = append(args, "--limit-rate", strconv.FormatInt(req.SpeedLimit, 10))
	}

	if req.PrintToFile != "" {
		args = append(args, "--print-to-file", printToFileTemplate, req.PrintToFile)
	}

	// URL goes last, after the end-of-options marker.
	args = append(args, "--progress", "--", req.URL)

	executable := strings.TrimSpace(req.Executable)
	if executable == "" {
		executable = ytdlp.DefaultExecutable
	}

	return &SynthesizedCommand{
		Executable: executable,
		Args:       args,
		OutputDir:  outputDir,
	}
}

// EnsureOutputDir creates the command's output directory. It is idempotent.
func EnsureOutputDir(cmd *SynthesizedCommand) error {
	return os.MkdirAll(cmd.OutputDir, constants.DefaultFolderPermissions)
}

func outputTemplate(outputDir string, isPlaylist bool) string {
	if isPlaylist {
		return filepath.Join(outputDir, uploaderPlaceholder, playlistTitlePlaceholder, fileNamePlaceholder)
	}

	return filepath.Join(outputDir, uploaderPlaceholder, fileNamePlaceholder)
}
