package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/oshokin/mediagrab/internal/app"
	"github.com/oshokin/mediagrab/internal/config"
	"github.com/oshokin/mediagrab/internal/logger"
	"github.com/oshokin/mediagrab/internal/service/dispatch"
	"github.com/oshokin/mediagrab/internal/version"
)

const (
	// bulkKeyword marks the preceding arguments as files of URLs.
	bulkKeyword = "bulk"

	// shutdownGracePeriod bounds the wait for the summary after an interrupt.
	shutdownGracePeriod = 10 * time.Second
)

// ErrTooManyArguments is returned when more than a quality and a format follow a URL.
var ErrTooManyArguments = errors.New("too many arguments: expected <url> [quality] [format]")

// invocation is the parsed positional part of the command line.
type invocation struct {
	urls      []string
	listFiles []string
	quality   string
	format    string
}

var (
	//nolint:gochecknoglobals // It is required for configuration initialization before the application starts.
	configFilenameFromFlag string

	//nolint:gochecknoglobals,lll // It is initialized once during the application's startup and shared across the command execution logic.
	appConfig *config.Config

	//nolint:gochecknoglobals,lll // Cobra command requires a global definition for proper command-line parsing and execution.
	rootCmd = &cobra.Command{
		Use:   "mediagrab [flags] <url> [quality] [format]",
		Short: "Download video, audio or images from social media and video hosting sites.",
		Long: `mediagrab downloads media from YouTube, Instagram, TikTok, Vimeo and dozens of other
platforms through yt-dlp, and fetches Discord attachments directly.

Usage forms:
  mediagrab <url> [quality] [format]   download one URL
  mediagrab <url> <url>...             download several URLs in order
  mediagrab <file> bulk                download every URL listed in a file
  mediagrab urls.txt                   same as bulk for .txt files
  mediagrab --info <url>               print metadata without downloading
  mediagrab --list                     list supported platforms

Qualities: best, worst, audio, 1080p, 720p, 480p, 360p (platform dependent).
Formats: video, audio, image.`,
		Version:          version.Full(),
		Args:             validateArgs,
		PersistentPreRun: initConfig,
		Run: func(cmd *cobra.Command, args []string) {
			ctx := cmd.Context()

			if isListRequested(cmd.Flags()) {
				app.ExecutePlatformsCommand(ctx, appConfig)

				return
			}

			inv, err := parseArguments(args)
			if err != nil {
				logger.Fatalf(ctx, "Failed to parse arguments: %v", err)
			}

			applyPositional(appConfig, inv)

			if err = bindFlagsToConfig(cmd.Flags(), appConfig); err != nil {
				logger.Fatalf(ctx, "Failed to parse flags: %v", err)
			}

			logger.SetLevel(appConfig.ParsedLogLevel)

			app.ExecuteRootCommand(ctx, appConfig, inv.urls, inv.listFiles)
		},
	}
)

// Execute executes the root command.
func Execute() {
	signals := []os.Signal{syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM}
	ctx, stop := signal.NotifyContext(context.Background(), signals...)

	defer func() {
		_ = logger.Logger().Sync()
	}()

	defer stop()

	done := make(chan struct{})

	go func() {
		defer close(done)
		defer stop()

		err := rootCmd.ExecuteContext(ctx)
		cobra.CheckErr(err)
	}()

	<-ctx.Done()

	// A second signal after stop() terminates the process immediately.
	if !waitForCompletion(done, shutdownGracePeriod) {
		logger.Warnf(ctx, "Interrupted run did not finish within %s", shutdownGracePeriod)
	}
}

// waitForCompletion waits until done is closed or grace elapses.
// It reports whether the command finished in time.
func waitForCompletion(done <-chan struct{}, grace time.Duration) bool {
	timer := time.NewTimer(grace)
	defer timer.Stop()

	select {
	case <-done:
		return true
	case <-timer.C:
		return false
	}
}

//nolint:gochecknoinits // Cobra requires the init function to set up flags before the command is executed.
func init() {
	rootCmd.PersistentFlags().StringVarP(
		&configFilenameFromFlag,
		"config",
		"c",
		"",
		fmt.Sprintf("path to the configuration file (default is '%s')",
			config.DefaultConfigFilename))

	addRootFlags(rootCmd.Flags())
}

// addRootFlags defines the download flags on a flag set.
//
//nolint:funlen // One statement per flag.
func addRootFlags(rootCmdFlags *pflag.FlagSet) {
	rootCmdFlags.BoolP(
		"info",
		"i",
		false,
		"print media information without downloading.")

	rootCmdFlags.BoolP(
		"list",
		"L",
		false,
		"list supported platforms and their status.")

	rootCmdFlags.Bool(
		"list-platforms",
		false,
		"same as --list.")

	rootCmdFlags.StringP(
		"quality",
		"q",
		"",
		"quality: best, worst, audio, 1080p, 720p, 480p, 360p.")

	rootCmdFlags.StringP(
		"format",
		"f",
		"",
		"content to download: video, audio, image.")

	rootCmdFlags.StringP(
		"output",
		"o",
		"",
		"download root; each platform gets its own sub-directory.")

	rootCmdFlags.StringP(
		"cookies",
		"C",
		"",
		"Netscape cookie file passed to yt-dlp for every URL.")

	rootCmdFlags.BoolP(
		"playlist",
		"p",
		false,
		"download playlists on platforms that support them.")

	rootCmdFlags.Int64(
		"playlist-limit",
		0,
		fmt.Sprintf("maximum number of playlist items (default %d).", config.DefaultPlaylistLimit))

	rootCmdFlags.StringP(
		"speed-limit",
		"s",
		"",
		"set download speed limit, for example: 500KB, 1MB, 1.5MB.")

	rootCmdFlags.BoolP(
		"tags",
		"t",
		false,
		"write title, artist and cover tags to extracted MP3 and FLAC files.")

	rootCmdFlags.Bool(
		"dry-run",
		false,
		"print the commands that would run without downloading anything.")

	rootCmdFlags.String(
		"name",
		"",
		"file name for a direct attachment download.")
}

func initConfig(cmd *cobra.Command, _ []string) {
	var err error

	appConfig, err = config.LoadConfig(configFilenameFromFlag)
	if err != nil {
		logger.Fatalf(cmd.Context(), "Failed to load configuration: %v", err)
	}

	if level, ok := logger.ParseLogLevel(appConfig.LogLevel); ok {
		logger.SetLevel(level)
	}
}

// validateArgs requires at least one URL unless the platform listing is requested.
func validateArgs(cmd *cobra.Command, args []string) error {
	if isListRequested(cmd.Flags()) {
		return nil
	}

	return cobra.MinimumNArgs(1)(cmd, args)
}

func isListRequested(flags *pflag.FlagSet) bool {
	list, _ := flags.GetBool("list")
	listPlatforms, _ := flags.GetBool("list-platforms")

	return list || listPlatforms
}

// parseArguments splits the positional arguments into URLs, bulk files, quality and format.
// Arguments that look like URLs or URL list files are all downloaded; otherwise the first
// argument is the URL and the next two are the quality and the format.
func parseArguments(args []string) (*invocation, error) {
	inv := new(invocation)

	if len(args) > 1 && strings.EqualFold(args[len(args)-1], bulkKeyword) {
		inv.listFiles = append(inv.listFiles, args[:len(args)-1]...)

		return inv, nil
	}

	var options []string

	for i, arg := range args {
		if i == 0 || isURLArgument(arg) {
			inv.urls = append(inv.urls, arg)

			continue
		}

		options = append(options, arg)
	}

	//nolint:mnd // Quality and format.
	if len(options) > 2 {
		return nil, fmt.Errorf("%w, got '%s'", ErrTooManyArguments, strings.Join(options, " "))
	}

	if len(options) > 0 {
		inv.quality = options[0]
	}

	if len(options) > 1 {
		inv.format = options[1]
	}

	return inv, nil
}

func isURLArgument(arg string) bool {
	return strings.Contains(arg, "://") || dispatch.IsURLListFile(arg)
}

// applyPositional stores the positional quality and format; flags applied later take precedence.
func applyPositional(cfg *config.Config, inv *invocation) {
	if inv.quality != "" {
		cfg.Quality = inv.quality
	}

	if inv.format != "" {
		cfg.Format = inv.format
	}
}

//nolint:cyclop // One branch per flag.
func bindFlagsToConfig(flags *pflag.FlagSet, cfg *config.Config) error {
	if flag := flags.Lookup("quality"); flag != nil && flag.Changed {
		cfg.Quality, _ = flags.GetString("quality")
	}

	if flag := flags.Lookup("format"); flag != nil && flag.Changed {
		cfg.Format, _ = flags.GetString("format")
	}

	if flag := flags.Lookup("output"); flag != nil && flag.Changed {
		cfg.OutputPath, _ = flags.GetString("output")
	}

	if flag := flags.Lookup("cookies"); flag != nil && flag.Changed {
		cfg.CookiesFile, _ = flags.GetString("cookies")
	}

	if flag := flags.Lookup("playlist"); flag != nil && flag.Changed {
		cfg.Playlist, _ = flags.GetBool("playlist")
	}

	if flag := flags.Lookup("playlist-limit"); flag != nil && flag.Changed {
		cfg.PlaylistLimit, _ = flags.GetInt64("playlist-limit")
	}

	if flag := flags.Lookup("speed-limit"); flag != nil && flag.Changed {
		cfg.SpeedLimit, _ = flags.GetString("speed-limit")
	}

	if flag := flags.Lookup("tags"); flag != nil && flag.Changed {
		cfg.WriteTags, _ = flags.GetBool("tags")
	}

	if flag := flags.Lookup("dry-run"); flag != nil && flag.Changed {
		cfg.DryRun, _ = flags.GetBool("dry-run")
	}

	if flag := flags.Lookup("info"); flag != nil && flag.Changed {
		cfg.InfoOnly, _ = flags.GetBool("info")
	}

	if flag := flags.Lookup("name"); flag != nil && flag.Changed {
		cfg.AttachmentName, _ = flags.GetString("name")
	}

	return config.ValidateConfig(cfg)
}
