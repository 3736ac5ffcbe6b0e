package cmd

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jameslz/rlzap/pkg/version"
)

func TestVersionCmd_Output(t *testing.T) {
	workspace(t)

	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, out string)
	}{
		{
			name: "default",
			args: []string{"version"},
			check: func(t *testing.T, out string) {
				assert.Contains(t, out, "rlzap "+version.Version)
				assert.Contains(t, out, "commit")
				assert.Contains(t, out, "format: v1")
			},
		},
		{
			name: "short",
			args: []string{"version", "--short"},
			check: func(t *testing.T, out string) {
				assert.Equal(t, version.Version, strings.TrimSpace(out))
			},
		},
		{
			name: "json",
			args: []string{"version", "--json"},
			check: func(t *testing.T, out string) {
				var info version.BuildInfo
				require.NoError(t, json.Unmarshal([]byte(out), &info))
				assert.Equal(t, version.Version, info.Version)
				assert.Equal(t, version.FormatVersion, info.FormatVersion)
				assert.NotEmpty(t, info.GoVersion)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.args...)

			require.NoError(t, err)
			tt.check(t, out)
		})
	}
}

func TestVersionCmd_RejectsConflictingFlags(t *testing.T) {
	workspace(t)

	_, err := run(t, "version", "--json", "--short")

	assert.Error(t, err)
}

func TestVersionCmd_RejectsArgs(t *testing.T) {
	workspace(t)

	_, err := run(t, "version", "extra")

	assert.Error(t, err)
}
