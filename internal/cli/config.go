package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mesh-intelligence/notesync/internal/logging"
	"github.com/mesh-intelligence/notesync/internal/paths"
	"github.com/mesh-intelligence/notesync/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"

	envPrefix = "NOTESYNC"
)

// Config keys.
const (
	cfgKeyBackend       = "backend"
	cfgKeyDataDir       = "data_dir"
	cfgKeyRemoteURL     = "remote.base_url"
	cfgKeyRemoteTimeout = "remote.timeout"
	cfgKeyNetworkMode   = "network.mode"
	cfgKeyStateFile     = "network.state_file"
	cfgKeyProbeInterval = "network.probe_interval"
	cfgKeyLogLevel      = "log.level"
	cfgKeyLogFile       = "log.file"
	cfgKeyLogMaxSize    = "log.max_size_mb"
	cfgKeyLogMaxBackups = "log.max_backups"
	cfgKeyServerAddr    = "server.addr"
)

// Defaults for keys not covered by types.Config.WithDefaults.
const (
	defaultRemoteURL  = "http://127.0.0.1:8080/notes"
	defaultServerAddr = "127.0.0.1:8080"
	defaultLogLevel   = "warn"
)

// envKeys are the keys that NOTESYNC_* variables may override. data_dir is
// absent: its env variable ranks below config.yaml and is handled by
// paths.ResolveDataDir.
var envKeys = []string{
	cfgKeyRemoteURL,
	cfgKeyRemoteTimeout,
	cfgKeyNetworkMode,
	cfgKeyStateFile,
	cfgKeyProbeInterval,
	cfgKeyLogLevel,
	cfgKeyLogFile,
	cfgKeyServerAddr,
}

// defaultConfigYAML is the content written to config.yaml on first run.
const defaultConfigYAML = `# notesync configuration

backend: sqlite

# Data directory (optional; overridable by --data-dir)
# data_dir:

remote:
  base_url: http://127.0.0.1:8080/notes
  timeout: 15s

network:
  # file: follow a state file flipped by "notesync net online|offline"
  # probe: poll the remote /health endpoint
  # online: assume the network is always available
  mode: file
  # state_file: defaults to netstate.json in the data directory
  probe_interval: 10s

log:
  level: warn
  # file: rotate logs into this file instead of stderr
  max_size_mb: 10
  max_backups: 3

server:
  addr: 127.0.0.1:8080
`

// settings is the resolved configuration of one CLI invocation.
type settings struct {
	ConfigDir  string
	Core       types.Config
	Log        logging.Options
	ServerAddr string
}

// loadConfig reads config.yaml from the resolved config directory using Viper.
// It creates the config directory and a default config.yaml on first run.
// A missing config.yaml is not an error.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyBackend, types.BackendSQLite)
	v.SetDefault(cfgKeyRemoteURL, defaultRemoteURL)
	v.SetDefault(cfgKeyRemoteTimeout, types.DefaultRemoteTimeout)
	v.SetDefault(cfgKeyNetworkMode, types.NetworkModeFile)
	v.SetDefault(cfgKeyProbeInterval, types.DefaultProbeInterval)
	v.SetDefault(cfgKeyLogLevel, defaultLogLevel)
	v.SetDefault(cfgKeyLogMaxSize, 10)
	v.SetDefault(cfgKeyLogMaxBackups, 3)
	v.SetDefault(cfgKeyServerAddr, defaultServerAddr)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, k := range envKeys {
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", k, err)
		}
	}

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// ensureDefaultConfigFile creates a default config.yaml if the file does not
// exist in the config directory.
func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, paths.ConfigFileName)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}

// loadSettings resolves directories, reads the configuration and validates
// it.
func loadSettings() (settings, error) {
	configDir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return settings{}, fmt.Errorf("resolve config dir: %w", err)
	}
	v, err := loadConfig(configDir)
	if err != nil {
		return settings{}, err
	}

	dataDir, err := paths.ResolveDataDir(flags.dataDir, v.GetString(cfgKeyDataDir))
	if err != nil {
		return settings{}, fmt.Errorf("resolve data dir: %w", err)
	}
	stateFile, err := paths.ResolveStateFile(v.GetString(cfgKeyStateFile), dataDir)
	if err != nil {
		return settings{}, fmt.Errorf("resolve state file: %w", err)
	}

	core := types.Config{
		Backend:       v.GetString(cfgKeyBackend),
		DataDir:       dataDir,
		RemoteBaseURL: v.GetString(cfgKeyRemoteURL),
		RemoteTimeout: durationOf(v, cfgKeyRemoteTimeout),
		NetworkMode:   v.GetString(cfgKeyNetworkMode),
		StateFile:     stateFile,
		ProbeInterval: durationOf(v, cfgKeyProbeInterval),
	}.WithDefaults()
	if err := core.Validate(); err != nil {
		return settings{}, fmt.Errorf("invalid configuration: %w", err)
	}

	logFile := v.GetString(cfgKeyLogFile)
	if logFile != "" && !filepath.IsAbs(logFile) {
		logFile = filepath.Join(dataDir, logFile)
	}
	return settings{
		ConfigDir: configDir,
		Core:      core,
		Log: logging.Options{
			Level:      v.GetString(cfgKeyLogLevel),
			File:       logFile,
			MaxSizeMB:  v.GetInt(cfgKeyLogMaxSize),
			MaxBackups: v.GetInt(cfgKeyLogMaxBackups),
		},
		ServerAddr: v.GetString(cfgKeyServerAddr),
	}, nil
}

// durationOf reads a duration, taking bare YAML numbers as seconds.
func durationOf(v *viper.Viper, key string) time.Duration {
	switch n := v.Get(key).(type) {
	case int:
		return time.Duration(n) * time.Second
	case float64:
		return time.Duration(n * float64(time.Second))
	}
	return v.GetDuration(key)
}
