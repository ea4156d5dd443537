package app

import (
	"context"

	"github.com/oshokin/mediagrab/internal/config"
	"github.com/oshokin/mediagrab/internal/logger"
	"github.com/oshokin/mediagrab/internal/platform"
	"github.com/oshokin/mediagrab/internal/service/auth"
)

// ExecuteAuthLoginCommand executes the auth login command.
// It opens a browser at the platform's login page, exports the cookies once the browser is closed
// and records the cookie file in the configuration file.
func ExecuteAuthLoginCommand(ctx context.Context, cfg *config.Config, platformID string) {
	registry, err := platform.NewRegistry(cfg.ExtraDomains)
	if err != nil {
		logger.Fatalf(ctx, "Failed to build platform table: %v", err)
	}

	profile, err := registry.Lookup(platformID)
	if err != nil {
		logger.Fatalf(ctx, "%v. Run 'mediagrab platforms' to see the identifiers", err)
	}

	destination := cfg.CookieStorePath(profile.ID)

	count, err := auth.NewService().ExportCookies(ctx, profile, destination)
	if err != nil {
		logger.Fatalf(ctx, "Authentication failed: %v", err)
	}

	if err = config.SaveCookiesPath(cfg, profile.ID, destination); err != nil {
		logger.Fatalf(ctx, "Failed to save configuration: %v", err)
	}

	logger.Infof(ctx, "Saved %d cookies for %s to %s", count, profile.Name, destination)
	logger.Infof(ctx, "Configuration updated: %s", cfg.ConfigFile)
	logger.Info(ctx, "")
	logger.Infof(ctx, "Downloads from %s now use these cookies automatically.", profile.Name)
}
