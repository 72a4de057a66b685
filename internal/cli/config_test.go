package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/notesync/pkg/types"
)

func writeConfig(t *testing.T, dir string, cfg map[string]any) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	data, err := yaml.Marshal(cfg)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), data, 0o644))
}

func useDirs(t *testing.T, env cliEnv) {
	t.Helper()
	prev := flags
	flags = rootFlags{configDir: env.configDir, dataDir: env.dataDir}
	t.Cleanup(func() { flags = prev })
}

func TestLoadSettingsDefaults(t *testing.T) {
	env := setupCLI(t)
	t.Setenv("NOTESYNC_LOG_LEVEL", "")
	useDirs(t, env)

	s, err := loadSettings()
	require.NoError(t, err)

	assert.Equal(t, env.configDir, s.ConfigDir)
	assert.Equal(t, env.dataDir, s.Core.DataDir)
	assert.Equal(t, types.BackendSQLite, s.Core.Backend)
	assert.Equal(t, types.NetworkModeFile, s.Core.NetworkMode)
	assert.Equal(t, filepath.Join(env.dataDir, "netstate.json"), s.Core.StateFile)
	assert.Equal(t, types.DefaultRemoteTimeout, s.Core.RemoteTimeout)
	assert.Equal(t, defaultRemoteURL, s.Core.RemoteBaseURL)
	assert.Equal(t, "warn", s.Log.Level)
	assert.Equal(t, defaultServerAddr, s.ServerAddr)

	// The first run leaves a commented default config behind.
	data, err := os.ReadFile(filepath.Join(env.configDir, "config.yaml"))
	require.NoError(t, err)
	var parsed map[string]any
	require.NoError(t, yaml.Unmarshal(data, &parsed))
	assert.Equal(t, "sqlite", parsed["backend"])
}

func TestLoadSettingsFromFile(t *testing.T) {
	env := setupCLI(t)
	useDirs(t, env)
	writeConfig(t, env.configDir, map[string]any{
		"remote": map[string]any{
			"base_url": "https://notes.example.com/api/notes",
			"timeout":  3,
		},
		"network": map[string]any{
			"mode":           "probe",
			"probe_interval": "250ms",
		},
		"log": map[string]any{
			"file": "notesync.log",
		},
	})

	s, err := loadSettings()
	require.NoError(t, err)

	assert.Equal(t, "https://notes.example.com/api/notes", s.Core.RemoteBaseURL)
	assert.Equal(t, 3*time.Second, s.Core.RemoteTimeout)
	assert.Equal(t, types.NetworkModeProbe, s.Core.NetworkMode)
	assert.Equal(t, 250*time.Millisecond, s.Core.ProbeInterval)
	assert.Equal(t, filepath.Join(env.dataDir, "notesync.log"), s.Log.File)
}

func TestLoadSettingsEnvOverridesFile(t *testing.T) {
	env := setupCLI(t)
	useDirs(t, env)
	writeConfig(t, env.configDir, map[string]any{
		"remote":  map[string]any{"base_url": "http://from-file/notes"},
		"network": map[string]any{"mode": "file"},
	})
	t.Setenv("NOTESYNC_REMOTE_BASE_URL", "http://from-env/notes")
	t.Setenv("NOTESYNC_NETWORK_MODE", "online")

	s, err := loadSettings()
	require.NoError(t, err)
	assert.Equal(t, "http://from-env/notes", s.Core.RemoteBaseURL)
	assert.Equal(t, types.NetworkModeOnline, s.Core.NetworkMode)
}

func TestLoadSettingsRejectsInvalid(t *testing.T) {
	env := setupCLI(t)
	useDirs(t, env)
	writeConfig(t, env.configDir, map[string]any{"backend": "postgres"})

	_, err := loadSettings()
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrBackendUnknown)
}
