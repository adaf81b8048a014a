package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"golang.org/x/text/language"
)

// Session backend names accepted in SessionConfig.Backend.
const (
	SessionBackendSQLite  = "sqlite"
	SessionBackendKeyring = "keyring"
)

// APIConfig holds connection settings for the task server.
type APIConfig struct {
	BaseURL    string `mapstructure:"base_url" yaml:"base_url"`
	TimeoutSec int    `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// SessionConfig selects where the local session (user id, theme,
// favorites) is persisted.
type SessionConfig struct {
	Backend string `mapstructure:"backend" yaml:"backend"`
	DBPath  string `mapstructure:"db_path" yaml:"db_path"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	TickIntervalSec int `mapstructure:"tick_interval_sec" yaml:"tick_interval_sec"`
	// Language is a BCP 47 tag selecting the title sort collation.
	Language string `mapstructure:"language" yaml:"language"`
}

// LanguageTag parses Language, falling back to Spanish.
func (d DisplayConfig) LanguageTag() language.Tag {
	tag, err := language.Parse(d.Language)
	if err != nil {
		return language.Spanish
	}
	return tag
}

// LogConfig controls where diagnostics go while the TUI owns the terminal.
type LogConfig struct {
	File string `mapstructure:"file" yaml:"file"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	API     APIConfig     `mapstructure:"api" yaml:"api"`
	Session SessionConfig `mapstructure:"session" yaml:"session"`
	Display DisplayConfig `mapstructure:"display" yaml:"display"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

// ConfigDir returns ~/.config/tareas, falling back to the working
// directory when the home directory is unknown.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "tareas")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/tareas/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// DefaultAppConfig returns a sensible default configuration.
func DefaultAppConfig() *AppConfig {
	dir := ConfigDir()
	return &AppConfig{
		API: APIConfig{
			BaseURL:    "http://localhost:3333",
			TimeoutSec: 30,
		},
		Session: SessionConfig{
			Backend: SessionBackendSQLite,
			DBPath:  filepath.Join(dir, "session.db"),
		},
		Display: DisplayConfig{
			TickIntervalSec: 60,
			Language:        "es",
		},
		Log: LogConfig{
			File: filepath.Join(dir, "tareas.log"),
		},
	}
}

func newViper(path string) *viper.Viper {
	def := DefaultAppConfig()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// TAREAS_API_BASE_URL overrides api.base_url, and so on.
	v.SetEnvPrefix("tareas")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("api.base_url", def.API.BaseURL)
	v.SetDefault("api.timeout_sec", def.API.TimeoutSec)
	v.SetDefault("session.backend", def.Session.Backend)
	v.SetDefault("session.db_path", def.Session.DBPath)
	v.SetDefault("display.tick_interval_sec", def.Display.TickIntervalSec)
	v.SetDefault("display.language", def.Display.Language)
	v.SetDefault("log.file", def.Log.File)
	return v
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// A missing file is not an error: defaults (and environment overrides)
// apply.
func LoadConfig(path string) (*AppConfig, error) {
	v := newViper(path)

	if err := v.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &pathErr) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := DefaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values viper cannot type-check on its own.
func (c *AppConfig) Validate() error {
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return errors.New("api.base_url must not be empty")
	}
	switch c.Session.Backend {
	case SessionBackendSQLite, SessionBackendKeyring:
	default:
		return fmt.Errorf("unknown session.backend %q (want %s or %s)",
			c.Session.Backend, SessionBackendSQLite, SessionBackendKeyring)
	}
	if c.API.TimeoutSec <= 0 {
		c.API.TimeoutSec = 30
	}
	if c.Display.TickIntervalSec <= 0 {
		c.Display.TickIntervalSec = 60
	}
	if strings.TrimSpace(c.Display.Language) == "" {
		c.Display.Language = "es"
	}
	if _, err := language.Parse(c.Display.Language); err != nil {
		return fmt.Errorf("display.language %q: %w", c.Display.Language, err)
	}
	return nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("api", cfg.API)
	v.Set("session", cfg.Session)
	v.Set("display", cfg.Display)
	v.Set("log", cfg.Log)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
