// Package config handles the XDG configuration directory and backend settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/rs/zerolog"

	"caretaker/internal/bucket"
)

const (
	// AppName is the application directory name.
	AppName = "caretaker"

	// ConfigFile is the optional settings filename inside the config directory.
	ConfigFile = "config.yaml"
)

// StoreConfig locates the remote task store.
type StoreConfig struct {
	BaseURL string        `yaml:"base_url" env:"API_BASE_URL" env-default:"https://6902f0f3d0f10a340b21f140.mockapi.io/api/v1/todo"`
	Token   string        `yaml:"token" env:"API_TOKEN"`
	Timeout time.Duration `yaml:"timeout" env:"API_TIMEOUT" env-default:"10s"`
}

// GeminiConfig locates the suggestion provider.
// An empty APIKey is allowed; the provider will reject the call.
type GeminiConfig struct {
	APIKey  string        `yaml:"api_key" env:"GEMINI_API_KEY"`
	BaseURL string        `yaml:"base_url" env:"GEMINI_BASE_URL" env-default:"https://generativelanguage.googleapis.com/v1beta/models"`
	Model   string        `yaml:"model" env:"GEMINI_MODEL" env-default:"gemini-2.5-flash-lite:generateContent"`
	Timeout time.Duration `yaml:"timeout" env:"GEMINI_TIMEOUT" env-default:"30s"`
}

// Settings is the part of the configuration read from file and environment.
type Settings struct {
	Store  StoreConfig  `yaml:"store"`
	Gemini GeminiConfig `yaml:"gemini"`
}

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	Settings

	// Log receives diagnostics. The zero value writes nowhere useful;
	// the dispatcher always sets it.
	Log zerolog.Logger

	// Clock returns the current time. Nil means time.Now.
	Clock func() time.Time
}

// New creates a new Config with the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/caretaker or $HOME/.config/caretaker.
// Settings are loaded from config.yaml in that directory when present, with
// environment variables taking precedence.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	cfg := &Config{Dir: dir, Log: zerolog.Nop()}
	if err := cfg.load(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) load() error {
	var s Settings
	if c.HasFile() {
		if err := cleanenv.ReadConfig(c.FilePath(), &s); err != nil {
			return fmt.Errorf("invalid %s: %w", ConfigFile, err)
		}
	} else if err := cleanenv.ReadEnv(&s); err != nil {
		return fmt.Errorf("invalid environment: %w", err)
	}
	c.Settings = s
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

// FilePath returns the path to the optional settings file.
func (c *Config) FilePath() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// HasFile checks if the settings file exists.
func (c *Config) HasFile() bool {
	_, err := os.Stat(c.FilePath())
	return err == nil
}

// Now returns the current time from Clock, or time.Now.
func (c *Config) Now() time.Time {
	if c.Clock != nil {
		return c.Clock()
	}
	return time.Now()
}

// Today returns the current UTC calendar date at midnight.
func (c *Config) Today() time.Time {
	return bucket.Date(c.Now())
}
