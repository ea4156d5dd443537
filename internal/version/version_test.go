package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestShort tests the Short function.
func TestShort(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Version, Short())
}

// TestFull tests that the --version line carries every build field.
func TestFull(t *testing.T) {
	t.Parallel()

	result := Full()

	for _, field := range []string{Version, Commit, BuildTime} {
		assert.NotEmpty(t, field)
		assert.Contains(t, result, field)
	}

	assert.True(t, strings.HasPrefix(result, "version: "+Version))
}

// TestVersionFormat tests that the version looks like a semantic version.
func TestVersionFormat(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 2, strings.Count(Version, "."), "Expected MAJOR.MINOR.PATCH")
	assert.NotContains(t, Version, " ")
}
