package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackupConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), ProjectFileName)

	t.Run("no config exists", func(t *testing.T) {
		backupPath, err := BackupConfig(configPath)
		require.NoError(t, err)
		assert.Empty(t, backupPath)
	})

	t.Run("backup existing config", func(t *testing.T) {
		content := "version: 1\nbuild:\n  codec: snappy\n"
		require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

		backupPath, err := BackupConfig(configPath)
		require.NoError(t, err)
		require.NotEmpty(t, backupPath)

		got, err := os.ReadFile(backupPath)
		require.NoError(t, err)
		assert.Equal(t, content, string(got))
	})
}

func TestBackupConfig_KeepsNewestBackups(t *testing.T) {
	// Given: an existing config file
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("version: 1\n"), 0644))

	// When: backing it up more often than MaxBackups
	var made []string
	for i := 0; i < MaxBackups+2; i++ {
		p, err := BackupConfig(configPath)
		require.NoError(t, err)
		made = append(made, p)
	}

	// Then: only the newest MaxBackups remain, newest first
	backups, err := ListBackups(configPath)
	require.NoError(t, err)
	require.Len(t, backups, MaxBackups)
	assert.Equal(t, made[len(made)-1], backups[0])
	assert.NoFileExists(t, made[0])
}

func TestListBackups_MissingDirectory(t *testing.T) {
	backups, err := ListBackups(filepath.Join(t.TempDir(), "nope", "config.yaml"))
	require.NoError(t, err)
	assert.Empty(t, backups)
}

func TestWriteYAML_RoundTripsThroughLoad(t *testing.T) {
	// Given: a non-default configuration written to a project file
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg := NewConfig()
	cfg.Build.Codec = "snappy"
	cfg.Query.BlockSize = 512
	require.NoError(t, cfg.WriteYAML(filepath.Join(dir, ProjectFileName)))

	// When: loading it back
	loaded, err := Load(dir, "")

	// Then: values survive
	require.NoError(t, err)
	assert.Equal(t, "snappy", loaded.Build.Codec)
	assert.Equal(t, 512, loaded.Query.BlockSize)
}
