package config

import (
	"bytes"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (

	// Twitch chat host. The port follows the tls setting.
	DefaultServer = "irc.chat.twitch.tv"

	// Anonymous Twitch nickname. Any justinfan<digits> nick is accepted
	// without a password and gets read-only access.
	DefaultNickname = "justinfan12345"

	// Directory for log files, relative to the working directory.
	DefaultLogPath = "logs"

	// Port used when the server address has none.
	defaultTLSPort   = "6697"
	defaultPlainPort = "6667"

	// Reconnect backoff bounds.
	DefaultInitialInterval = time.Second
	DefaultMaxInterval     = 2 * time.Minute
)

// Reconnect backoff settings.
type Reconnect struct {
	InitialInterval time.Duration `yaml:"initial_interval"` // First delay after a lost connection.
	MaxInterval     time.Duration `yaml:"max_interval"`     // Upper bound for the delay.
}

// Daemon configuration.
type Config struct {
	Channels  []string  `yaml:"channels"`  // Normalized channel names ("#name").
	LogPath   string    `yaml:"log_path"`  // Directory holding one log file per channel.
	Server    string    `yaml:"server"`    // IRC server as host[:port], 6697 or 6667 by default.
	Nickname  string    `yaml:"nickname"`  // Nickname sent on registration.
	TLS       bool      `yaml:"tls"`       // Whether to connect over TLS.
	Reconnect Reconnect `yaml:"reconnect"` // Backoff used when the connection drops.
}

// Returns a configuration with every default applied and no channels.
func Default() *Config {
	return &Config{
		LogPath:  DefaultLogPath,
		Server:   DefaultServer,
		Nickname: DefaultNickname,
		TLS:      true,
		Reconnect: Reconnect{
			InitialInterval: DefaultInitialInterval,
			MaxInterval:     DefaultMaxInterval,
		},
	}
}

// Reads, parses and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", path)
	}
	return cfg, nil
}

// Parses and validates a YAML configuration document.
//
// Unknown keys are rejected so that typos do not silently fall back to a
// default.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if err == io.EOF {
			return nil, errors.Wrap(ErrConfig, "empty document")
		}
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validates fields and rewrites them into canonical form.
func (c *Config) normalize() error {
	channels, err := NormalizeChannels(c.Channels)
	if err != nil {
		return err
	}
	c.Channels = channels

	c.LogPath = strings.TrimSpace(c.LogPath)
	if c.LogPath == "" {
		return errors.Wrap(ErrConfig, "log_path must not be empty")
	}

	c.Nickname = strings.TrimSpace(c.Nickname)
	if c.Nickname == "" {
		return errors.Wrap(ErrConfig, "nickname must not be empty")
	}

	server, err := normalizeServer(c.Server, c.TLS)
	if err != nil {
		return err
	}
	c.Server = server

	if c.Reconnect.InitialInterval <= 0 {
		return errors.Wrap(ErrConfig, "reconnect.initial_interval must be positive")
	}
	if c.Reconnect.MaxInterval < c.Reconnect.InitialInterval {
		return errors.Wrap(ErrConfig, "reconnect.max_interval must not be below initial_interval")
	}

	return nil
}

// Appends the default port when the address has none.
func normalizeServer(server string, useTLS bool) (string, error) {
	server = strings.TrimSpace(server)
	if server == "" {
		return "", errors.Wrap(ErrConfig, "server must not be empty")
	}

	if _, _, err := net.SplitHostPort(server); err == nil {
		return server, nil
	}

	port := defaultPlainPort
	if useTLS {
		port = defaultTLSPort
	}
	return net.JoinHostPort(server, port), nil
}

// Reports whether a change from c to other needs a new connection.
//
// Reloads only apply channel and log path changes; endpoint changes take
// effect on the next start.
func (c *Config) EndpointChanged(other *Config) bool {
	return c.Server != other.Server || c.Nickname != other.Nickname || c.TLS != other.TLS
}
