package version

import (
	"encoding/json"
	"regexp"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jameslz/rlzap/pkg/lcp"
)

func TestVersion_IsDevOrSemver(t *testing.T) {
	// Given: Version is set by ldflags or left at its default
	if Version == "dev" {
		return
	}

	// Then: a released version is semver, optionally with a suffix
	semver := regexp.MustCompile(`^\d+\.\d+\.\d+(-[a-zA-Z0-9.]+)?$`)
	assert.True(t, semver.MatchString(Version), "Version %q is not semver", Version)
}

func TestString_IncludesBuildInfo(t *testing.T) {
	s := String()

	for _, part := range []string{"rlzap", Version, "commit: " + Commit, "go: " + GoVersion, "format: v1"} {
		assert.Contains(t, s, part)
	}
}

func TestShort(t *testing.T) {
	assert.Equal(t, Version, Short())
}

func TestFormatVersion_MatchesIndexFormat(t *testing.T) {
	assert.Equal(t, lcp.FormatVersion, FormatVersion)
}

func TestGetInfo(t *testing.T) {
	// When: reading structured info
	info := GetInfo()

	// Then: it mirrors the package variables and the runtime
	assert.Equal(t, BuildInfo{
		Version:       Version,
		Commit:        Commit,
		Date:          Date,
		GoVersion:     runtime.Version(),
		OS:            runtime.GOOS,
		Arch:          runtime.GOARCH,
		FormatVersion: FormatVersion,
	}, info)
}

func TestGetInfo_JSONFieldNames(t *testing.T) {
	data, err := json.Marshal(GetInfo())
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))
	for _, key := range []string{"version", "commit", "date", "go_version", "os", "arch", "format_version"} {
		assert.Contains(t, fields, key)
	}
}
