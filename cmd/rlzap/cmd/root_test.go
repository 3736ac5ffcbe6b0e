package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jameslz/rlzap/internal/errors"
)

func TestRootCmd_HasSubcommands(t *testing.T) {
	// Given: the root command
	cmd := NewRootCmd()

	// When: listing its subcommands
	names := make(map[string]bool)
	for _, sc := range cmd.Commands() {
		names[sc.Name()] = true
	}

	// Then: every command is registered
	for _, name := range []string{"build", "at", "range", "cursor", "info", "verify", "config", "version"} {
		assert.True(t, names[name], "missing command %s", name)
	}
}

func TestRootCmd_GlobalFlags(t *testing.T) {
	cmd := NewRootCmd()

	for _, name := range []string{"config", "debug", "log-level", "metrics-file", "profile-cpu", "profile-mem", "profile-trace"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), "missing flag --%s", name)
	}
}

func TestRootCmd_InvalidLogLevel(t *testing.T) {
	// Given: a clean workspace
	workspace(t)

	// When: running with an unknown log level
	_, err := run(t, "--log-level", "loud", "version")

	// Then: the invocation fails before the command runs
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidInput, errors.GetCode(err))
}

func TestRootCmd_MissingExplicitConfig(t *testing.T) {
	workspace(t)

	_, err := run(t, "--config", "missing.yaml", "version")

	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeConfigNotFound, errors.GetCode(err))
}

func TestRootCmd_WritesMetricsFile(t *testing.T) {
	// Given: a reference and target on disk
	dir := workspace(t)
	refPath, targetPath, _, _ := corpus(t, dir, 1, 2000)
	metrics := filepath.Join(dir, "rlzap.prom")

	// When: building with --metrics-file
	_, err := run(t, "--metrics-file", metrics, "build", refPath, targetPath, "--min-match", "8")
	require.NoError(t, err)

	// Then: the textfile holds the build counters
	data, err := os.ReadFile(metrics)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, `rlzap_builds_total{status="ok"} 1`)
	assert.True(t, strings.Contains(text, "rlzap_phrases_total"), "phrase counters exported")
}

func TestRootCmd_WritesProfiles(t *testing.T) {
	// Given: a reference and target on disk
	dir := workspace(t)
	refPath, targetPath, _, _ := corpus(t, dir, 2, 2000)
	cpu := filepath.Join(dir, "cpu.prof")
	heap := filepath.Join(dir, "heap.prof")

	// When: building with profiling enabled
	_, err := run(t, "--profile-cpu", cpu, "--profile-mem", heap, "build", refPath, targetPath, "--min-match", "8")
	require.NoError(t, err)

	// Then: both profiles are written
	for _, path := range []string{cpu, heap} {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}
}
