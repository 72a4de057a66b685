package types

import (
	"errors"
	"time"
)

// Config holds the settings needed to assemble the sync core: where local
// data lives, how to reach the remote authority and how connectivity is
// observed.
type Config struct {
	Backend       string        `json:"backend" yaml:"backend"`
	DataDir       string        `json:"data_dir" yaml:"data_dir"`
	RemoteBaseURL string        `json:"remote_base_url" yaml:"remote_base_url"`
	RemoteTimeout time.Duration `json:"remote_timeout" yaml:"remote_timeout"`
	NetworkMode   string        `json:"network_mode" yaml:"network_mode"`
	StateFile     string        `json:"state_file" yaml:"state_file"`
	ProbeInterval time.Duration `json:"probe_interval" yaml:"probe_interval"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
)

// Network observation modes.
const (
	NetworkModeFile   = "file"
	NetworkModeProbe  = "probe"
	NetworkModeOnline = "online"
)

// Defaults applied by WithDefaults.
const (
	DefaultRemoteTimeout = 15 * time.Second
	DefaultProbeInterval = 10 * time.Second
)

// Config validation errors.
var (
	ErrBackendEmpty         = errors.New("backend must not be empty")
	ErrBackendUnknown       = errors.New("unknown backend")
	ErrNetworkModeUnknown   = errors.New("unknown network mode")
	ErrRemoteURLEmpty       = errors.New("remote base URL must not be empty")
	ErrStateFileEmpty       = errors.New("state file must not be empty in file network mode")
	ErrTimeoutInvalid       = errors.New("remote timeout must be positive")
	ErrProbeIntervalInvalid = errors.New("probe interval must be positive")
)

var knownBackends = map[string]bool{
	BackendSQLite: true,
}

var knownNetworkModes = map[string]bool{
	NetworkModeFile:   true,
	NetworkModeProbe:  true,
	NetworkModeOnline: true,
}

// WithDefaults returns a copy of c with zero values replaced by defaults.
func (c Config) WithDefaults() Config {
	if c.Backend == "" {
		c.Backend = BackendSQLite
	}
	if c.NetworkMode == "" {
		c.NetworkMode = NetworkModeFile
	}
	if c.RemoteTimeout == 0 {
		c.RemoteTimeout = DefaultRemoteTimeout
	}
	if c.ProbeInterval == 0 {
		c.ProbeInterval = DefaultProbeInterval
	}
	return c
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if !knownNetworkModes[c.NetworkMode] {
		return ErrNetworkModeUnknown
	}
	if c.RemoteBaseURL == "" {
		return ErrRemoteURLEmpty
	}
	if c.RemoteTimeout <= 0 {
		return ErrTimeoutInvalid
	}
	switch c.NetworkMode {
	case NetworkModeFile:
		if c.StateFile == "" {
			return ErrStateFileEmpty
		}
	case NetworkModeProbe:
		if c.ProbeInterval <= 0 {
			return ErrProbeIntervalInvalid
		}
	}
	return nil
}
