package auth

import (
	"context"
	"time"

	"github.com/oshokin/mediagrab/internal/logger"
	"github.com/oshokin/mediagrab/internal/platform"
)

// waitForBrowserClose navigates to the login page and snapshots the platform cookies
// until the user closes the browser. The last snapshot is returned.
func (s *ServiceImpl) waitForBrowserClose(ctx context.Context, profile *platform.Profile) ([]Cookie, error) {
	logger.Infof(ctx, "Opening %s login page...", profile.Name)
	logger.Debugf(ctx, "Navigating to %s", profile.LoginURL)

	// Add random delay before navigation to appear more human.
	randomHumanDelay()

	if err := s.page.Navigate(profile.LoginURL); err != nil {
		return nil, err
	}

	// Wait for page to fully load with random delay.
	randomHumanDelay()
	s.simulateHumanBehavior(ctx)

	logger.Info(ctx, "")
	logger.Info(ctx, "╔══════════════════════════════════════════════════════════════════╗")
	logger.Info(ctx, "║                      LOGIN INSTRUCTIONS                          ║")
	logger.Info(ctx, "╚══════════════════════════════════════════════════════════════════╝")
	logger.Info(ctx, "")
	logger.Infof(ctx, "1. Log in to %s in the opened browser window", profile.Name)
	logger.Info(ctx, "2. Make sure the site shows you as logged in")
	logger.Info(ctx, "3. Close the browser window")
	logger.Info(ctx, "")
	logger.Infof(ctx, "Cookies are captured until the browser is closed (at most %v).", maxLoginWaitTime)
	logger.Info(ctx, "")

	var (
		startTime = time.Now()
		snapshot  []Cookie
	)

	for {
		// Check context cancellation.
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if time.Since(startTime) > maxLoginWaitTime {
			logger.Warnf(ctx, "Login window was open for more than %v, using the cookies captured so far", maxLoginWaitTime)

			return snapshot, nil
		}

		if !s.isBrowserAlive(ctx) {
			logger.Info(ctx, "Browser closed")

			return snapshot, nil
		}

		current, err := s.platformCookies(ctx, profile)
		if err == nil {
			if len(current) != len(snapshot) {
				logger.Debugf(ctx, "Captured %d cookies for %s", len(current), profile.Name)
			}

			snapshot = current
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(loginPollInterval):
		}
	}
}

// platformCookies reads every browser cookie and keeps the ones of the platform.
func (s *ServiceImpl) platformCookies(ctx context.Context, profile *platform.Profile) (result []Cookie, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Debugf(ctx, "platformCookies panic recovered: %v", r)

			result, err = nil, ErrBrowserClosed
		}
	}()

	browserCookies, err := s.browser.GetCookies()
	if err != nil {
		return nil, err
	}

	cookies := make([]Cookie, 0, len(browserCookies))
	for _, c := range browserCookies {
		cookies = append(cookies, Cookie{
			Domain:   c.Domain,
			Path:     c.Path,
			Name:     c.Name,
			Value:    c.Value,
			Secure:   c.Secure,
			HTTPOnly: c.HTTPOnly,
			Expires:  int64(c.Expires),
		})
	}

	return FilterCookies(cookies, profile.Domains), nil
}
