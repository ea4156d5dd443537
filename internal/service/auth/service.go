package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-rod/rod"

	"github.com/oshokin/mediagrab/internal/logger"
	"github.com/oshokin/mediagrab/internal/platform"
)

const (
	// browserSlowMotionDelay is the delay between browser actions for visibility during debugging.
	browserSlowMotionDelay = 200 * time.Millisecond

	// loginPollInterval is the interval for polling browser cookies.
	loginPollInterval = 1 * time.Second

	// maxLoginWaitTime is the maximum time to wait for the user to close the browser.
	maxLoginWaitTime = 10 * time.Minute

	// humanBehaviorMinDelay is the minimum delay for simulated human actions.
	humanBehaviorMinDelay = 500 * time.Millisecond
	// humanBehaviorMaxDelay is the maximum delay for simulated human actions.
	humanBehaviorMaxDelay = 2 * time.Second

	// mouseMovementsPerCheck is the number of random mouse movements to simulate after page load.
	mouseMovementsPerCheck = 2

	// mouseMovementMinDelay is the minimum delay between mouse movements.
	mouseMovementMinDelay = 100 * time.Millisecond
	// mouseMovementMaxDelay is the maximum delay between mouse movements.
	mouseMovementMaxDelay = 400 * time.Millisecond

	// scrollProbability is the probability of scrolling (1 in N).
	scrollProbability = 3
	// scrollMinAmount is the minimum scroll amount in pixels.
	scrollMinAmount = -100
	// scrollMaxAmount is the maximum scroll amount in pixels.
	scrollMaxAmount = 200

	// browserCleanupDelay is the delay to wait for Chrome to release file locks before cleanup.
	browserCleanupDelay = 500 * time.Millisecond
)

var (
	// ErrLoginNotSupported is returned for platforms without a login page.
	ErrLoginNotSupported = errors.New("platform has no login page")

	// ErrBrowserClosed is returned when the browser is gone while cookies are read.
	ErrBrowserClosed = errors.New("browser was closed by user")

	// ErrNoCookies is returned when the browser holds no cookies for the platform.
	ErrNoCookies = errors.New("no cookies found for the platform - login may have failed")
)

// Service provides browser-based cookie export.
type Service interface {
	// ExportCookies opens a browser at the platform's login page, waits until the user closes it
	// and writes the platform cookies to destination in Netscape format.
	// It returns the number of cookies written.
	ExportCookies(ctx context.Context, profile *platform.Profile, destination string) (int, error)
}

// ServiceImpl exports cookies through a visible Chrome instance driven by go-rod.
type ServiceImpl struct {
	browser *rod.Browser
	page    *rod.Page
	// tempDir stores the temporary profile directory for cleanup.
	tempDir string
}

// NewService creates a new browser authentication service.
func NewService() *ServiceImpl {
	return new(ServiceImpl)
}

// ExportCookies opens a browser at the platform's login page, waits until the user closes it
// and writes the platform cookies to destination in Netscape format.
func (s *ServiceImpl) ExportCookies(ctx context.Context, profile *platform.Profile, destination string) (int, error) {
	if profile.LoginURL == "" {
		return 0, fmt.Errorf("%w: %s", ErrLoginNotSupported, profile.Name)
	}

	logger.Infof(ctx, "Starting browser-based login for %s", profile.Name)

	// Initialize browser.
	if err := s.initBrowser(ctx); err != nil {
		return 0, fmt.Errorf("failed to initialize browser: %w", err)
	}

	defer s.cleanup(ctx)

	cookies, err := s.waitForBrowserClose(ctx, profile)
	if err != nil {
		return 0, fmt.Errorf("login failed: %w", err)
	}

	if len(cookies) == 0 {
		return 0, ErrNoCookies
	}

	if err = WriteCookieFile(destination, cookies); err != nil {
		return 0, fmt.Errorf("failed to write cookies: %w", err)
	}

	logger.Infof(ctx, "Exported %d cookies to %s", len(cookies), destination)

	return len(cookies), nil
}
