package auth

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/mediagrab/internal/platform"
)

// TestNewService tests the NewService function.
func TestNewService(t *testing.T) {
	t.Parallel()

	service := NewService()

	assert.NotNil(t, service)
	assert.Nil(t, service.browser)
	assert.Nil(t, service.page)
}

// TestExportCookies_NoLoginURL tests that platforms without a login page are refused before a browser starts.
func TestExportCookies_NoLoginURL(t *testing.T) {
	t.Parallel()

	service := NewService()

	count, err := service.ExportCookies(t.Context(), &platform.Profile{Name: "Rumble"}, filepath.Join(t.TempDir(), "c.txt"))

	require.ErrorIs(t, err, ErrLoginNotSupported)
	assert.Zero(t, count)
	assert.Nil(t, service.browser, "Browser must not be launched")
}

// TestFilterCookies tests the domain filter.
func TestFilterCookies(t *testing.T) {
	t.Parallel()

	cookies := []Cookie{
		{Domain: ".youtube.com", Name: "SID"},
		{Domain: "www.youtube.com", Name: "PREF"},
		{Domain: ".google.com", Name: "NID"},
		{Domain: "notyoutube.com", Name: "X"},
		{Domain: "peertube.example.org", Name: "token"},
	}

	tests := []struct {
		name     string
		domains  []string
		expected []string
	}{
		{
			name:     "Dotted fragment matches the domain and subdomains",
			domains:  []string{"youtube.com", "youtu.be"},
			expected: []string{"SID", "PREF"},
		},
		{
			name:     "Bare word matches anywhere",
			domains:  []string{"peertube"},
			expected: []string{"token"},
		},
		{
			name:     "No domains",
			domains:  nil,
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			names := make([]string, 0)
			for _, cookie := range FilterCookies(cookies, tt.domains) {
				names = append(names, cookie.Name)
			}

			assert.Equal(t, tt.expected, names)
		})
	}
}

// TestFormatNetscape tests the cookie file layout.
func TestFormatNetscape(t *testing.T) {
	t.Parallel()

	content := FormatNetscape([]Cookie{
		{Domain: "www.vimeo.com", Path: "", Name: "b", Value: "2", Expires: -1},
		{Domain: ".vimeo.com", Path: "/", Name: "a", Value: "1", Secure: true, HTTPOnly: true, Expires: 1700000000},
	})

	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	require.Len(t, lines, 4)

	assert.Equal(t, netscapeHeader, lines[0])
	assert.Empty(t, lines[1])
	assert.Equal(t, "#HttpOnly_.vimeo.com\tTRUE\t/\tTRUE\t1700000000\ta\t1", lines[2])
	assert.Equal(t, "www.vimeo.com\tFALSE\t/\tFALSE\t0\tb\t2", lines[3])
}

// TestWriteCookieFile tests that the file is created with private permissions.
func TestWriteCookieFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ".cookies", "vimeo.txt")

	err := WriteCookieFile(path, []Cookie{{Domain: ".vimeo.com", Name: "a", Value: "1"}})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), netscapeHeader))

	if runtime.GOOS != "windows" {
		info, statErr := os.Stat(path)
		require.NoError(t, statErr)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}
}

// TestSentinelErrors tests that all sentinel errors are defined and have proper messages.
func TestSentinelErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		err   error
		wants string
	}{
		{
			name:  "ErrLoginNotSupported",
			err:   ErrLoginNotSupported,
			wants: "platform has no login page",
		},
		{
			name:  "ErrBrowserClosed",
			err:   ErrBrowserClosed,
			wants: "browser was closed by user",
		},
		{
			name:  "ErrNoCookies",
			err:   ErrNoCookies,
			wants: "no cookies found for the platform - login may have failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			require.Error(t, tt.err)
			assert.Equal(t, tt.wants, tt.err.Error())
		})
	}
}

// TestConstants tests that timing constants are properly defined.
func TestConstants(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 200, int(browserSlowMotionDelay.Milliseconds()))
	assert.Equal(t, 1, int(loginPollInterval.Seconds()))
	assert.Equal(t, 10, int(maxLoginWaitTime.Minutes()))
}

// TestServiceImpl_Cleanup tests the cleanup function.
func TestServiceImpl_Cleanup(t *testing.T) {
	t.Parallel()

	service := &ServiceImpl{
		browser: nil, // No browser initialized.
	}

	// Should not panic even with nil browser.
	assert.NotPanics(t, func() {
		service.cleanup(context.Background())
	})
}
