package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Server.Port != 3000 {
			t.Errorf("expected server port 3000, got %d", config.Server.Port)
		}

		if config.Server.Mode != ModeProduction {
			t.Errorf("expected production mode, got %s", config.Server.Mode)
		}

		if config.App.RedirectURI != "http://localhost:3000/connect.html" {
			t.Errorf("expected default redirect URI, got %s", config.App.RedirectURI)
		}

		if config.Provider.BaseURL != "https://graph.facebook.com" {
			t.Errorf("expected graph base URL, got %s", config.Provider.BaseURL)
		}

		if config.Provider.APIVersion != "v19.0" {
			t.Errorf("expected api version v19.0, got %s", config.Provider.APIVersion)
		}

		if config.ProviderTimeout() != 10*time.Second {
			t.Errorf("expected 10s provider timeout, got %v", config.ProviderTimeout())
		}

		if config.Database.Enabled {
			t.Error("expected audit database to be disabled by default")
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.App.ID != DefaultConfig().App.ID {
			t.Errorf("created config app id doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[app]
id = "1234567890"
secret = "test_secret"
redirect_uri = "https://example.com/connect.html"

[server]
host = "0.0.0.0"
port = 8080
mode = "development"

[provider]
timeout = 3
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.App.ID != "1234567890" {
			t.Errorf("expected app id 1234567890, got %s", config.App.ID)
		}
		if config.Addr() != "0.0.0.0:8080" {
			t.Errorf("expected addr 0.0.0.0:8080, got %s", config.Addr())
		}
		if !config.IsDevelopment() {
			t.Error("expected development mode")
		}
		if config.ProviderTimeout() != 3*time.Second {
			t.Errorf("expected 3s timeout, got %v", config.ProviderTimeout())
		}
		if config.Provider.BaseURL != "https://graph.facebook.com" {
			t.Errorf("expected unset keys to keep defaults, got base_url %q", config.Provider.BaseURL)
		}
	})

	t.Run("LoadConfig Missing File", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("LoadConfig Invalid TOML", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[app\nid = "), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		_, err := LoadConfig(configPath)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestConfigEnv(t *testing.T) {
	env := func(values map[string]string) func(string) string {
		return func(key string) string { return values[key] }
	}

	t.Run("overrides file values", func(t *testing.T) {
		config := DefaultConfig()
		err := config.applyEnv(env(map[string]string{
			"META_APP_ID":     "env-app",
			"META_APP_SECRET": "env-secret",
			"REDIRECT_URI":    "https://env.example.com/cb",
			"PORT":            "9090",
			"APP_ENV":         "development",
			"LOG_LEVEL":       "debug",
			"DATABASE_PATH":   "/tmp/audit.db",
		}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if config.App.ID != "env-app" || config.App.Secret != "env-secret" {
			t.Errorf("expected credentials from env, got %+v", config.App)
		}
		if config.App.RedirectURI != "https://env.example.com/cb" {
			t.Errorf("expected redirect from env, got %s", config.App.RedirectURI)
		}
		if config.Server.Port != 9090 {
			t.Errorf("expected port 9090, got %d", config.Server.Port)
		}
		if !config.IsDevelopment() {
			t.Error("expected development mode")
		}
		if config.Logging.Level != "debug" {
			t.Errorf("expected debug level, got %s", config.Logging.Level)
		}
		if !config.Database.Enabled || config.Database.Path != "/tmp/audit.db" {
			t.Errorf("expected database enabled at env path, got %+v", config.Database)
		}
	})

	t.Run("NODE_ENV fallback", func(t *testing.T) {
		config := DefaultConfig()
		if err := config.applyEnv(env(map[string]string{"NODE_ENV": "development"})); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !config.IsDevelopment() {
			t.Error("expected NODE_ENV to select development mode")
		}
	})

	t.Run("unknown mode is production", func(t *testing.T) {
		config := DefaultConfig()
		config.Server.Mode = ModeDevelopment
		if err := config.applyEnv(env(map[string]string{"APP_ENV": "staging"})); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if config.IsDevelopment() {
			t.Error("expected non-development env to select production mode")
		}
	})

	t.Run("invalid port", func(t *testing.T) {
		config := DefaultConfig()
		err := config.applyEnv(env(map[string]string{"PORT": "abc"}))
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		c := DefaultConfig()
		c.App.ID = "id"
		c.App.Secret = "secret"
		return c
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	tc := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{name: "missing id", mutate: func(c *Config) { c.App.ID = "" }, want: ErrMissingCredentials},
		{name: "missing secret", mutate: func(c *Config) { c.App.Secret = "" }, want: ErrMissingCredentials},
		{name: "missing redirect", mutate: func(c *Config) { c.App.RedirectURI = "" }, want: ErrInvalidConfig},
		{name: "port out of range", mutate: func(c *Config) { c.Server.Port = 70000 }, want: ErrInvalidConfig},
		{name: "unknown mode", mutate: func(c *Config) { c.Server.Mode = "debug" }, want: ErrInvalidConfig},
		{name: "missing provider", mutate: func(c *Config) { c.Provider.BaseURL = "" }, want: ErrInvalidConfig},
		{name: "malformed base url", mutate: func(c *Config) { c.Provider.BaseURL = "https://graph.facebook.com:bad" }, want: ErrInvalidConfig},
		{name: "relative dialog url", mutate: func(c *Config) { c.Provider.DialogURL = "www.facebook.com" }, want: ErrInvalidConfig},
		{name: "negative burst", mutate: func(c *Config) { c.Limits.Burst = -1 }, want: ErrInvalidConfig},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			if err := c.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestConfigRedacted(t *testing.T) {
	config := DefaultConfig()
	config.App.Secret = "super-secret-value"

	redacted := config.Redacted()
	if redacted.App.Secret == config.App.Secret {
		t.Error("expected secret to be masked")
	}
	if config.App.Secret != "super-secret-value" {
		t.Error("Redacted must not modify the original")
	}
	if redacted.App.ID != config.App.ID {
		t.Error("expected non-secret fields to be preserved")
	}
}
