// Package config loads the settings of the svgmerge binary from a YAML file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/benoitkugler/svgmerge/svgbg"
	"github.com/benoitkugler/svgmerge/svgfetch"
	"github.com/benoitkugler/svgmerge/svgplace"
	"gopkg.in/yaml.v3"
)

// EnvPath is the environment variable read when no path is given.
const EnvPath = "SVGMERGE_CONFIG"

type Config struct {
	Canvas     svgplace.Canvas `yaml:"canvas"`
	Background svgbg.Config    `yaml:"background"`
	Fetch      FetchConfig     `yaml:"fetch"`
	Server     ServerConfig    `yaml:"server"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

type FetchConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	MaxBytes  int64         `yaml:"max_bytes"`
	UserAgent string        `yaml:"user_agent"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
	// MaxBodyBytes bounds the size of request bodies.
	MaxBodyBytes int64 `yaml:"max_body_bytes"`
}

// DefaultConfig returns a Config struct with default values
func DefaultConfig() *Config {
	return &Config{
		Canvas:     svgplace.DefaultCanvas,
		Background: svgbg.Default(),
		Fetch: FetchConfig{
			Timeout:   10 * time.Second,
			MaxBytes:  5 << 20,
			UserAgent: svgfetch.DefaultUserAgent,
		},
		Server: ServerConfig{
			Addr:         ":8080",
			MaxBodyBytes: 32 << 20,
		},
		LogLevel: "info",
	}
}

// DefaultPath returns the path of the configuration file:
// $SVGMERGE_CONFIG if set, or svgmerge/config.yaml in the user
// configuration directory.
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvPath); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(dir, "svgmerge", "config.yaml"), nil
}

// Load reads configuration from the specified file path.
// A missing file is not an error: the defaults are returned.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

// applyDefaults restores the default of zeroed fields.
func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.Canvas.Width == 0 {
		c.Canvas.Width = def.Canvas.Width
	}
	if c.Canvas.Height == 0 {
		c.Canvas.Height = def.Canvas.Height
	}
	if c.Background.Color == "" {
		c.Background.Color = def.Background.Color
	}
	if c.Background.Pattern == "" {
		c.Background.Pattern = def.Background.Pattern
	}
	if c.Background.CellSize == 0 {
		c.Background.CellSize = def.Background.CellSize
	}
	if c.Background.PatternColor == "" {
		c.Background.PatternColor = def.Background.PatternColor
	}
	if c.Fetch.Timeout <= 0 {
		c.Fetch.Timeout = def.Fetch.Timeout
	}
	if c.Fetch.MaxBytes <= 0 {
		c.Fetch.MaxBytes = def.Fetch.MaxBytes
	}
	if c.Fetch.UserAgent == "" {
		c.Fetch.UserAgent = def.Fetch.UserAgent
	}
	if c.Server.Addr == "" {
		c.Server.Addr = def.Server.Addr
	}
	if c.Server.MaxBodyBytes <= 0 {
		c.Server.MaxBodyBytes = def.Server.MaxBodyBytes
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
}

// Validate checks the canvas, the background and the log level.
func (c *Config) Validate() error {
	if err := c.Canvas.Validate(); err != nil {
		return err
	}
	if err := c.Background.Validate(); err != nil {
		return err
	}
	_, err := c.Level()
	return err
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	return level, nil
}

// FetcherConfig returns the settings of the URL fetcher.
func (c *Config) FetcherConfig() svgfetch.Config {
	return svgfetch.Config{
		Timeout:   c.Fetch.Timeout,
		MaxBytes:  c.Fetch.MaxBytes,
		UserAgent: c.Fetch.UserAgent,
	}
}

// Save persists the current configuration to the specified file path
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
