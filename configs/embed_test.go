package configs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jameslz/rlzap/internal/config"
)

func TestConfigTemplate_LoadsAsDefaults(t *testing.T) {
	// Given: the template written as a project config
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.ProjectFileName), []byte(ConfigTemplate), 0644))

	// When: loading it
	cfg, err := config.Load(dir, "")

	// Then: it is valid and matches the built-in defaults
	require.NoError(t, err)
	assert.Equal(t, config.NewConfig(), cfg)
}
