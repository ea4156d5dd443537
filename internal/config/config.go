package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/mediagrab/internal/constants"
	"github.com/oshokin/mediagrab/internal/logger"
	"github.com/oshokin/mediagrab/internal/platform"
	"github.com/oshokin/mediagrab/internal/utils"
)

// Config holds all configuration settings.
type Config struct {
	// OutputPath is the root directory for downloads; each platform gets a sub-directory.
	OutputPath string `mapstructure:"output_path"`
	// Quality is the requested quality: best, worst, audio or a height such as 720p.
	Quality string `mapstructure:"quality"`
	// Format is the requested content type: video, audio or image.
	Format string `mapstructure:"format"`
	// Cookies maps a platform identifier to a Netscape cookie file.
	Cookies map[string]string `mapstructure:"cookies"`
	// ExtraDomains appends domain fragments to existing platforms.
	ExtraDomains map[string][]string `mapstructure:"extra_domains"`
	// AudioFormat is the codec audio is extracted to.
	AudioFormat string `mapstructure:"audio_format"`
	// AudioQuality is the target audio bitrate.
	AudioQuality string `mapstructure:"audio_quality"`
	// PlaylistLimit caps the number of playlist items in playlist mode.
	PlaylistLimit int64 `mapstructure:"playlist_limit"`
	// SpeedLimit sets the maximum download speed (e.g., "1MB", "500KB").
	SpeedLimit string `mapstructure:"speed_limit"`
	// WriteTags enables tagging of extracted audio.
	WriteTags bool `mapstructure:"write_tags"`
	// ToolPath is the yt-dlp executable name or path.
	ToolPath string `mapstructure:"tool_path"`
	// LogLevel specifies the logging verbosity level.
	LogLevel string `mapstructure:"log_level"`
	// ConfigFile is the path the configuration was read from, or would be written to.
	ConfigFile string
	// DryRun prints the synthesized commands without running them.
	DryRun bool
	// InfoOnly prints metadata without downloading.
	InfoOnly bool
	// Playlist enables playlist mode.
	Playlist bool
	// CookiesFile overrides the per-platform cookie files for this run.
	CookiesFile string
	// AttachmentName overrides the file name of a direct download.
	AttachmentName string
	// ParsedFormat is the normalized format.
	ParsedFormat platform.Format
	// ParsedSpeedLimit is the parsed speed limit in bytes per second, 0 when unlimited.
	ParsedSpeedLimit int64
	// ParsedLogLevel is the parsed zap log level.
	ParsedLogLevel zapcore.Level
}

const (
	// DefaultConfigFilename is the default name of the configuration file.
	DefaultConfigFilename = ".mediagrab.yaml"

	// DefaultOutputPath is the default download root.
	DefaultOutputPath = "./downloads"

	// DefaultPlaylistLimit is the default number of playlist items.
	DefaultPlaylistLimit = 20

	// DefaultMaxLogLength is the default maximum size (in bytes) of a dumped HTTP message.
	DefaultMaxLogLength = 1 * 1024 * 1024 // 1 MB

	// cookiesKey is the configuration key holding the cookie file map.
	cookiesKey = "cookies"
)

// Static error definitions for better error handling.
var (
	// ErrConfigNotFound indicates that an explicitly requested config file does not exist.
	ErrConfigNotFound = errors.New("config file not found")
	// ErrInvalidFormat indicates that the format setting is invalid.
	ErrInvalidFormat = errors.New("invalid format")
	// ErrUnknownLogLevel indicates that the log level is not recognized.
	ErrUnknownLogLevel = errors.New("unknown log level")
	// ErrInvalidPlaylistLimit indicates that the playlist limit is not positive.
	ErrInvalidPlaylistLimit = errors.New("playlist_limit must be a positive integer")
	// ErrNotMapping indicates that the config file's top level is not a YAML mapping.
	ErrNotMapping = errors.New("config file top level is not a mapping")
	// ErrEmptyOutputPath indicates that the output path is blank.
	ErrEmptyOutputPath = errors.New("output_path cannot be empty")
)

// LoadConfig loads configuration settings from a YAML file.
// An empty filename selects the default file, which may be absent: built-in defaults are used then.
// An explicitly named file must exist.
func LoadConfig(configFilename string) (*Config, error) {
	isDefault := configFilename == ""
	if isDefault {
		configFilename = DefaultConfigFilename
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(configFilename)

	isExist, err := utils.IsFileExist(configFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to check config file: %w", err)
	}

	switch {
	case isExist:
		if err = v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config from file: %w", err)
		}
	case !isDefault:
		return nil, fmt.Errorf("%w: '%s'", ErrConfigNotFound, configFilename)
	}

	var cfg Config
	if err = v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.ConfigFile = configFilename

	return &cfg, nil
}

// DefaultConfig returns a configuration holding only built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		OutputPath:    DefaultOutputPath,
		Quality:       platform.QualityBest,
		Format:        string(platform.FormatVideo),
		AudioFormat:   "mp3",
		AudioQuality:  "192K",
		PlaylistLimit: DefaultPlaylistLimit,
		ToolPath:      "yt-dlp",
		LogLevel:      "info",
		ConfigFile:    DefaultConfigFilename,
	}
}

func setDefaults(v *viper.Viper) {
	defaults := DefaultConfig()

	v.SetDefault("output_path", defaults.OutputPath)
	v.SetDefault("quality", defaults.Quality)
	v.SetDefault("format", defaults.Format)
	v.SetDefault("audio_format", defaults.AudioFormat)
	v.SetDefault("audio_quality", defaults.AudioQuality)
	v.SetDefault("playlist_limit", defaults.PlaylistLimit)
	v.SetDefault("speed_limit", "")
	v.SetDefault("write_tags", false)
	v.SetDefault("tool_path", defaults.ToolPath)
	v.SetDefault("log_level", defaults.LogLevel)
}

// ValidateConfig checks the configuration for validity and sets derived fields.
func ValidateConfig(cfg *Config) error {
	var (
		speedLimit       = strings.TrimSpace(cfg.SpeedLimit)
		parsedSpeedLimit uint64
		err              error
	)

	cfg.OutputPath = strings.TrimSpace(cfg.OutputPath)
	if cfg.OutputPath == "" {
		return ErrEmptyOutputPath
	}

	cfg.Quality = strings.ToLower(strings.TrimSpace(cfg.Quality))
	if cfg.Quality == "" {
		cfg.Quality = platform.QualityBest
	}

	format, isFormatCorrect := platform.ParseFormat(cfg.Format)
	if !isFormatCorrect {
		return fmt.Errorf("%w: '%s', must be one of video, audio, image", ErrInvalidFormat, cfg.Format)
	}

	cfg.ParsedFormat = format

	parsedLogLevel, isLogLevelCorrect := logger.ParseLogLevel(cfg.LogLevel)
	if !(isLogLevelCorrect) {
		return fmt.Errorf("%w: '%s'", ErrUnknownLogLevel, cfg.LogLevel)
	}

	cfg.ParsedLogLevel = parsedLogLevel

	if speedLimit != "" && speedLimit != "0" {
		parsedSpeedLimit, err = humanize.ParseBytes(speedLimit)
		if err != nil {
			return fmt.Errorf("failed to parse speed limit: %w", err)
		}
	}

	// io.CopyN accepts only int64 so we transform it safely in order to use it later.
	cfg.ParsedSpeedLimit = utils.SafeUint64ToInt64(parsedSpeedLimit)

	if cfg.PlaylistLimit <= 0 {
		return ErrInvalidPlaylistLimit
	}

	return nil
}

// CookiesFor returns the cookie file for a platform.
// A run-wide cookie file takes precedence over the per-platform map.
func (c *Config) CookiesFor(id platform.ID) string {
	if c.CookiesFile != "" {
		return c.CookiesFile
	}

	return c.Cookies[string(id)]
}

// CookieStorePath returns where the cookie export stores the cookie file of a platform.
func (c *Config) CookieStorePath(id platform.ID) string {
	return filepath.Join(c.OutputPath, ".cookies", string(id)+constants.ExtensionTXT)
}

// SaveCookiesPath records the cookie file of a platform in the configuration file
// while preserving the original format and order.
func SaveCookiesPath(cfg *Config, id platform.ID, cookiesPath string) error {
	if cfg.Cookies == nil {
		cfg.Cookies = make(map[string]string)
	}

	cfg.Cookies[string(id)] = cookiesPath

	configFile := cfg.ConfigFile
	if configFile == "" {
		configFile = DefaultConfigFilename
	}

	// Read the original file content.
	originalContent, err := os.ReadFile(configFile)
	if err != nil {
		return handleMissingConfigFile(configFile, cfg.Cookies, err)
	}

	// Parse YAML while preserving order using yaml.Node.
	var node yaml.Node
	if err = yaml.Unmarshal(originalContent, &node); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err = updateCookiesInNode(&node, string(id), cookiesPath); err != nil {
		return err
	}

	// Marshal back to YAML (preserves order).
	newContent, err := yaml.Marshal(&node)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err = os.WriteFile(configFile, newContent, constants.DefaultFilePermissions); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// handleMissingConfigFile creates a new config file holding only the cookie map.
func handleMissingConfigFile(configFile string, cookies map[string]string, err error) error {
	if !os.IsNotExist(err) {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	content, err := yaml.Marshal(map[string]any{cookiesKey: cookies})
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err = os.WriteFile(configFile, content, constants.DefaultFilePermissions); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	return nil
}

// updateCookiesInNode sets cookies.<platformID> in the YAML node tree,
// adding the map or the entry when they are missing.
func updateCookiesInNode(node *yaml.Node, platformID, cookiesPath string) error {
	// An empty file parses into a zero node.
	if node.Kind == 0 {
		node.Kind = yaml.DocumentNode
	}

	if len(node.Content) == 0 {
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"})
	}

	// The root node is a document node, content[0] is the actual map.
	mapNode := node.Content[0]
	if mapNode.Kind != yaml.MappingNode {
		return ErrNotMapping
	}

	cookiesNode := findValueNode(mapNode, cookiesKey)

	switch {
	case cookiesNode == nil:
		cookiesNode = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		mapNode.Content = append(mapNode.Content, scalarNode(cookiesKey), cookiesNode)
	case cookiesNode.Kind != yaml.MappingNode:
		// A blank "cookies:" entry parses as null.
		*cookiesNode = yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	}

	if valueNode := findValueNode(cookiesNode, platformID); valueNode != nil {
		// Update the value while preserving style.
		valueNode.Kind = yaml.ScalarNode
		valueNode.Tag = "!!str"
		valueNode.Value = cookiesPath

		return nil
	}

	cookiesNode.Content = append(cookiesNode.Content, scalarNode(platformID), scalarNode(cookiesPath))

	return nil
}

// findValueNode returns the value paired with key in a mapping node.
func findValueNode(mapNode *yaml.Node, key string) *yaml.Node {
	// Iterate through key-value pairs (stored as alternating nodes).
	for i := 0; i+1 < len(mapNode.Content); i += 2 {
		if mapNode.Content[i].Value == key {
			return mapNode.Content[i+1]
		}
	}

	return nil
}

func scalarNode(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}
