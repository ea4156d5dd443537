package app

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/oshokin/mediagrab/internal/config"
	"github.com/oshokin/mediagrab/internal/logger"
	"github.com/oshokin/mediagrab/internal/platform"
)

// TestPrintPlatforms tests that the listing covers every category in order.
func TestPrintPlatforms(t *testing.T) {
	t.Parallel()

	registry, err := platform.NewRegistry(nil)
	require.NoError(t, err)

	var buf bytes.Buffer

	PrintPlatforms(&buf, registry)

	output := buf.String()

	for _, p := range registry.Profiles() {
		assert.Contains(t, output, p.Name)
	}

	previous := -1

	for _, category := range registry.Categories() {
		idx := strings.Index(output, category)
		require.GreaterOrEqual(t, idx, 0, "Category %s should be listed", category)
		assert.Greater(t, idx, previous, "Category %s is out of order", category)

		previous = idx
	}

	assert.Contains(t, output, "Direct Links")
	assert.Contains(t, output, "cdn.discordapp.com")
	assert.Contains(t, output, "best-effort")
}

// TestPrintPlatforms_ExtraDomains tests that configured domains appear in the listing.
func TestPrintPlatforms_ExtraDomains(t *testing.T) {
	t.Parallel()

	registry, err := platform.NewRegistry(map[string][]string{"peertube": {"video.example.org"}})
	require.NoError(t, err)

	var buf bytes.Buffer

	PrintPlatforms(&buf, registry)

	assert.Contains(t, buf.String(), "video.example.org")
}

// TestExecutePlatformsCommand tests that the listing is emitted through the logger line by line.
//
//nolint:paralleltest // Replaces the global logger.
func TestExecutePlatformsCommand(t *testing.T) {
	originalLogger := logger.Logger()
	core, logs := observer.New(zapcore.InfoLevel)

	logger.SetLogger(zap.New(core))
	t.Cleanup(func() { logger.SetLogger(originalLogger) })

	cfg := &config.Config{ExtraDomains: map[string][]string{"peertube": {"video.example.org"}}}

	ExecutePlatformsCommand(context.Background(), cfg)

	assert.Equal(t, 1, logs.FilterMessage("Supported platforms:").Len())
	assert.Equal(t, 1, logs.FilterMessageSnippet("video.example.org").Len())
	assert.Equal(t, 1, logs.FilterMessageSnippet("best-effort").Len())

	for _, entry := range logs.All() {
		assert.Equal(t, zapcore.InfoLevel, entry.Level)
		assert.NotContains(t, entry.Message, "\n", "Each line is logged on its own")
	}
}
