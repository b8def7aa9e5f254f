package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
	Remote   RemoteConfig   `toml:"remote"`
	Mirror   MirrorConfig   `toml:"mirror"`
	Metadata MetadataConfig `toml:"metadata"`
	Player   PlayerConfig   `toml:"player"`
}

// DatabaseConfig contains database connection settings for the remote store server.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host              string   `toml:"host"`
	Port              int      `toml:"port"`
	Endpoint          string   `toml:"endpoint"`
	RequestsPerMinute int      `toml:"requests_per_minute"`
	AllowedOrigins    []string `toml:"allowed_origins"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RemoteConfig points the client at a remote collection store.
type RemoteConfig struct {
	URL            string `toml:"url"`
	Endpoint       string `toml:"endpoint"`
	DebounceMS     int    `toml:"debounce_ms"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Debounce returns the idle window used to coalesce remote writes.
func (r RemoteConfig) Debounce() time.Duration {
	return time.Duration(r.DebounceMS) * time.Millisecond
}

// Timeout returns the per-request timeout for remote calls.
func (r RemoteConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutSeconds) * time.Second
}

// MirrorConfig selects and configures the local mirror backend.
type MirrorConfig struct {
	Backend       string `toml:"backend"`
	Path          string `toml:"path"`
	Key           string `toml:"key"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// MetadataConfig configures the best-effort metadata lookups.
type MetadataConfig struct {
	OEmbedURL      string  `toml:"oembed_url"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
	Workers        int     `toml:"workers"`
	RateLimit      float64 `toml:"rate_limit"`
}

// Timeout returns the per-lookup timeout.
func (m MetadataConfig) Timeout() time.Duration {
	return time.Duration(m.TimeoutSeconds) * time.Second
}

// PlayerConfig configures the playback collaborator.
type PlayerConfig struct {
	OpenBrowser bool   `toml:"open_browser"`
	LogPath     string `toml:"log_path"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the values the rest of the application relies on.
func (c *Config) Validate() error {
	switch c.Mirror.Backend {
	case "file", "redis":
	default:
		return fmt.Errorf("%w: unknown mirror backend %q", ErrInvalidConfig, c.Mirror.Backend)
	}

	if c.Remote.DebounceMS < 0 {
		return fmt.Errorf("%w: remote.debounce_ms must not be negative", ErrInvalidConfig)
	}

	if c.Server.Endpoint == "" || c.Server.Endpoint[0] != '/' {
		return fmt.Errorf("%w: server.endpoint must start with /", ErrInvalidConfig)
	}

	if c.Remote.Endpoint == "" || c.Remote.Endpoint[0] != '/' {
		return fmt.Errorf("%w: remote.endpoint must start with /", ErrInvalidConfig)
	}

	return nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
