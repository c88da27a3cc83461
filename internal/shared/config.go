package shared

import (
	_ "embed"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

const (
	ModeDevelopment = "development"
	ModeProduction  = "production"
)

// Config represents the application configuration loaded from a TOML file.
//
// A Config is built once at startup and treated as read-only afterwards.
type Config struct {
	App      AppConfig      `toml:"app"`
	Server   ServerConfig   `toml:"server"`
	Provider ProviderConfig `toml:"provider"`
	Limits   LimitsConfig   `toml:"limits"`
	Database DatabaseConfig `toml:"database"`
	Logging  LoggingConfig  `toml:"logging"`
}

// AppConfig contains the Meta application credentials.
type AppConfig struct {
	ID          string `toml:"id"`
	Secret      string `toml:"secret"`
	RedirectURI string `toml:"redirect_uri"`
}

// ServerConfig contains HTTP server settings. Timeouts are in seconds.
type ServerConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	Mode            string `toml:"mode"`
	ReadTimeout     int    `toml:"read_timeout"`
	WriteTimeout    int    `toml:"write_timeout"`
	ShutdownTimeout int    `toml:"shutdown_timeout"`
}

// ProviderConfig describes the Graph API token endpoint and login dialog.
type ProviderConfig struct {
	BaseURL    string   `toml:"base_url"`
	DialogURL  string   `toml:"dialog_url"`
	APIVersion string   `toml:"api_version"`
	Timeout    int      `toml:"timeout"`
	Scopes     []string `toml:"scopes"`
}

// LimitsConfig configures the token bucket guarding the exchange endpoint.
//
// A zero RequestsPerSecond disables limiting.
type LimitsConfig struct {
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
}

// DatabaseConfig contains audit database connection settings.
type DatabaseConfig struct {
	Enabled      bool   `toml:"enabled"`
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LoggingConfig controls logger level and output format.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the values of [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
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

	if err := os.WriteFile(path, exampleConf, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overlays environment variables on top of the file configuration.
func (c *Config) ApplyEnv() error {
	return c.applyEnv(os.Getenv)
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv("META_APP_ID"); v != "" {
		c.App.ID = v
	}
	if v := getenv("META_APP_SECRET"); v != "" {
		c.App.Secret = v
	}
	if v := getenv("REDIRECT_URI"); v != "" {
		c.App.RedirectURI = v
	}
	if v := getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: PORT=%q is not a number", ErrInvalidConfig, v)
		}
		c.Server.Port = port
	}

	mode := getenv("APP_ENV")
	if mode == "" {
		mode = getenv("NODE_ENV")
	}
	switch {
	case mode == "":
	case strings.EqualFold(mode, ModeDevelopment):
		c.Server.Mode = ModeDevelopment
	default:
		c.Server.Mode = ModeProduction
	}

	if v := getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := getenv("DATABASE_PATH"); v != "" {
		c.Database.Path = v
		c.Database.Enabled = true
	}
	return nil
}

// Validate checks that the configuration can serve token exchanges.
func (c *Config) Validate() error {
	if c.App.ID == "" || c.App.Secret == "" {
		return fmt.Errorf("%w: app id and secret are required", ErrMissingCredentials)
	}
	if c.App.RedirectURI == "" {
		return fmt.Errorf("%w: redirect_uri is required", ErrInvalidConfig)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, c.Server.Port)
	}
	switch c.Server.Mode {
	case ModeDevelopment, ModeProduction:
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, c.Server.Mode)
	}
	if c.Provider.BaseURL == "" || c.Provider.APIVersion == "" {
		return fmt.Errorf("%w: provider base_url and api_version are required", ErrInvalidConfig)
	}
	for _, raw := range []string{c.Provider.BaseURL, c.Provider.DialogURL} {
		if raw == "" {
			continue
		}
		if u, err := url.Parse(raw); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: provider url %q is not an absolute http(s) URL", ErrInvalidConfig, raw)
		}
	}
	if c.Limits.RequestsPerSecond < 0 || c.Limits.Burst < 0 {
		return fmt.Errorf("%w: limits must not be negative", ErrInvalidConfig)
	}
	return nil
}

// IsDevelopment reports whether diagnostic details may be returned to clients.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Server.Mode, ModeDevelopment)
}

// Addr returns the listen address in host:port form.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// ProviderTimeout returns the per-call timeout for outbound provider requests, defaulting to 10s.
func (c *Config) ProviderTimeout() time.Duration {
	return seconds(c.Provider.Timeout, 10*time.Second)
}

// Redacted returns a copy of the configuration that is safe to log.
func (c *Config) Redacted() Config {
	out := *c
	out.App.Secret = Redact(c.App.Secret)
	out.Provider.Scopes = append([]string(nil), c.Provider.Scopes...)
	return out
}

// Redact masks a secret, keeping only its last four characters when it is long enough.
func Redact(value string) string {
	switch {
	case value == "":
		return ""
	case len(value) <= 8:
		return "****"
	default:
		return "****" + value[len(value)-4:]
	}
}

func seconds(n int, fallback time.Duration) time.Duration {
	if n <= 0 {
		return fallback
	}
	return time.Duration(n) * time.Second
}

// ReadTimeoutDuration returns the server read timeout.
func (s ServerConfig) ReadTimeoutDuration() time.Duration {
	return seconds(s.ReadTimeout, 15*time.Second)
}

// WriteTimeoutDuration returns the server write timeout.
func (s ServerConfig) WriteTimeoutDuration() time.Duration {
	return seconds(s.WriteTimeout, 30*time.Second)
}

// ShutdownTimeoutDuration returns how long graceful shutdown may take.
func (s ServerConfig) ShutdownTimeoutDuration() time.Duration {
	return seconds(s.ShutdownTimeout, 10*time.Second)
}
