package app

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/oshokin/mediagrab/internal/config"
	"github.com/oshokin/mediagrab/internal/logger"
	"github.com/oshokin/mediagrab/internal/platform"
)

// ExecutePlatformsCommand logs every known platform grouped by category, one line per entry.
func ExecutePlatformsCommand(ctx context.Context, cfg *config.Config) {
	registry, err := platform.NewRegistry(cfg.ExtraDomains)
	if err != nil {
		logger.Fatalf(ctx, "Failed to build platform table: %v", err)
	}

	var listing bytes.Buffer

	PrintPlatforms(&listing, registry)

	scanner := bufio.NewScanner(&listing)
	for scanner.Scan() {
		logger.Info(ctx, scanner.Text())
	}
}

// PrintPlatforms writes the platform listing to w.
// Statuses are colored by how well the platform is supported.
func PrintPlatforms(w io.Writer, registry *platform.Registry) {
	var (
		header   = color.New(color.Bold, color.Underline).SprintFunc()
		profiles = registry.Profiles()
		total    int
	)

	fmt.Fprintln(w, "Supported platforms:")

	for _, category := range registry.Categories() {
		var inCategory []*platform.Profile

		for _, p := range profiles {
			if p.Category == category {
				inCategory = append(inCategory, p)
			}
		}

		if len(inCategory) == 0 {
			continue
		}

		fmt.Fprintln(w)
		fmt.Fprintln(w, header(category))

		for _, p := range inCategory {
			fmt.Fprintf(w, "  %-14s %s  %s\n", p.Name, statusColor(p.Status).Sprint(p.Status), strings.Join(p.Domains, ", "))
		}

		total += len(inCategory)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%d platforms. Any other URL is passed to yt-dlp on a best-effort basis.\n", total)
}

func statusColor(status string) *color.Color {
	switch status {
	case platform.StatusFull:
		return color.New(color.FgGreen)
	case platform.StatusGood:
		return color.New(color.FgCyan)
	case platform.StatusDirectLinks:
		return color.New(color.FgBlue)
	case platform.StatusDiscontinued, platform.StatusDRM, platform.StatusToolOnly:
		return color.New(color.FgRed)
	default:
		return color.New(color.FgYellow)
	}
}
