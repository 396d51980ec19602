// Package config handles the XDG configuration directory, file paths and
// the optional config.yaml settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// AppName is the application directory name.
	AppName = "tasklist"

	// SettingsFile is the settings file name (without extension).
	SettingsFile = "config"

	// OAuthClientFile is the OAuth client credentials filename.
	OAuthClientFile = "oauth_client.json"

	// TokenFile is the stored OAuth token filename.
	TokenFile = "token.json"

	// EnvPrefix prefixes environment overrides, e.g. TASKLIST_BACKEND.
	EnvPrefix = "TASKLIST"
)

// Backend names.
const (
	BackendLocal  = "local"
	BackendRemote = "remote"
	BackendGoogle = "google"
)

// Local storage drivers.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string `yaml:"dir"`

	// Debug enables debug logging.
	Debug bool `yaml:"-"`

	// Quiet suppresses informational output.
	Quiet bool `yaml:"-"`

	// Backend selects the persistence backend: local, remote or google.
	Backend string `yaml:"backend"`

	Local  LocalConfig  `yaml:"local"`
	Remote RemoteConfig `yaml:"remote"`
	Google GoogleConfig `yaml:"google"`
	Log    LogConfig    `yaml:"log"`
}

// LocalConfig configures the local backend.
type LocalConfig struct {
	Driver string `yaml:"driver"` // file or sqlite
	Path   string `yaml:"path"`   // directory (file) or database file (sqlite)
	Key    string `yaml:"key"`    // storage key holding the collection
}

// RemoteConfig configures the remote backend.
type RemoteConfig struct {
	BaseURL string        `yaml:"base_url"`
	Token   string        `yaml:"token,omitempty"`
	Timeout time.Duration `yaml:"timeout"`
}

// GoogleConfig configures the Google Tasks backend.
type GoogleConfig struct {
	List string `yaml:"list"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level"`
}

// New creates a new Config with the default or specified config directory
// and default settings. If configDir is empty, uses XDG_CONFIG_HOME/tasklist
// or $HOME/.config/tasklist.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	cfg := &Config{Dir: dir}
	cfg.applyDefaults()
	return cfg, nil
}

// Load creates a Config for configDir and reads config.yaml from it, if
// present, followed by TASKLIST_* environment overrides.
func Load(configDir string) (*Config, error) {
	cfg, err := New(configDir)
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigName(SettingsFile)
	v.SetConfigType("yaml")
	v.AddConfigPath(cfg.Dir)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults double as the key registry for environment lookups.
	v.SetDefault("backend", cfg.Backend)
	v.SetDefault("local.driver", cfg.Local.Driver)
	v.SetDefault("local.path", cfg.Local.Path)
	v.SetDefault("local.key", cfg.Local.Key)
	v.SetDefault("remote.base_url", cfg.Remote.BaseURL)
	v.SetDefault("remote.token", cfg.Remote.Token)
	v.SetDefault("remote.timeout", cfg.Remote.Timeout)
	v.SetDefault("google.list", cfg.Google.List)
	v.SetDefault("log.level", cfg.Log.Level)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading %s.yaml: %w", SettingsFile, err)
		}
	}

	cfg.Backend = strings.ToLower(strings.TrimSpace(v.GetString("backend")))
	cfg.Local.Driver = strings.ToLower(strings.TrimSpace(v.GetString("local.driver")))
	cfg.Local.Path = v.GetString("local.path")
	cfg.Local.Key = v.GetString("local.key")
	cfg.Remote.BaseURL = v.GetString("remote.base_url")
	cfg.Remote.Token = v.GetString("remote.token")
	cfg.Remote.Timeout = v.GetDuration("remote.timeout")
	cfg.Google.List = v.GetString("google.list")
	cfg.Log.Level = v.GetString("log.level")

	return cfg, nil
}

// applyDefaults fills in the default settings.
func (c *Config) applyDefaults() {
	c.Backend = BackendLocal
	c.Local = LocalConfig{Driver: DriverFile, Path: c.Dir, Key: "todos"}
	c.Remote = RemoteConfig{BaseURL: "http://localhost:8080", Timeout: 5 * time.Second}
	c.Google = GoogleConfig{List: "@default"}
	c.Log = LogConfig{Level: "info"}
}

// Validate checks the settings.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendLocal:
		switch c.Local.Driver {
		case DriverFile, DriverSQLite:
		default:
			return fmt.Errorf("unknown local driver: %s", c.Local.Driver)
		}
		if strings.TrimSpace(c.Local.Key) == "" {
			return fmt.Errorf("local.key must not be empty")
		}
	case BackendRemote:
		if strings.TrimSpace(c.Remote.BaseURL) == "" {
			return fmt.Errorf("remote.base_url must not be empty")
		}
		if c.Remote.Timeout <= 0 {
			return fmt.Errorf("remote.timeout must be positive")
		}
	case BackendGoogle:
	default:
		return fmt.Errorf("unknown backend: %s", c.Backend)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level: %s", c.Log.Level)
	}
	return nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// SettingsPath returns the path of config.yaml.
func (c *Config) SettingsPath() string {
	return filepath.Join(c.Dir, SettingsFile+".yaml")
}

// SQLitePath returns the database file used by the sqlite driver.
// Local.Path may name a directory or a .db file.
func (c *Config) SQLitePath() string {
	if strings.HasSuffix(c.Local.Path, ".db") {
		return c.Local.Path
	}
	return filepath.Join(c.Local.Path, AppName+".db")
}

// OAuthClientPath returns the path to the OAuth client credentials file.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// TokenPath returns the path to the stored OAuth token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasOAuthClient checks if the OAuth client credentials file exists.
func (c *Config) HasOAuthClient() bool {
	_, err := os.Stat(c.OAuthClientPath())
	return err == nil
}

// HasToken checks if the token file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

// RemoveToken deletes the token file.
func (c *Config) RemoveToken() error {
	return os.Remove(c.TokenPath())
}
