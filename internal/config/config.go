// File: internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Render output formats.
const (
	FormatPNG = "png"
	FormatPDF = "pdf"
)

// Interface defines the contract for accessing application configuration.
// This allows for dependency injection and mocking in tests.
type Interface interface {
	Logger() LoggerConfig
	Viewport() ViewportConfig
	Font() FontConfig
	Render() RenderConfig
	Network() NetworkConfig

	// Setters for values that usually come from CLI flags.
	SetViewport(width, height int)
	SetRenderOutput(path string)
	SetRenderFormat(format string)
	SetRenderLayoutDump(path string)
	SetNetworkAllowRemote(bool)
}

// Config holds the entire application configuration.
type Config struct {
	LoggerCfg   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	ViewportCfg ViewportConfig `mapstructure:"viewport" yaml:"viewport"`
	FontCfg     FontConfig     `mapstructure:"font" yaml:"font"`
	RenderCfg   RenderConfig   `mapstructure:"render" yaml:"render"`
	NetworkCfg  NetworkConfig  `mapstructure:"network" yaml:"network"`
}

var _ Interface = (*Config)(nil)

// --- Interface Method Implementations (Getters) ---

func (c *Config) Logger() LoggerConfig     { return c.LoggerCfg }
func (c *Config) Viewport() ViewportConfig { return c.ViewportCfg }
func (c *Config) Font() FontConfig         { return c.FontCfg }
func (c *Config) Render() RenderConfig     { return c.RenderCfg }
func (c *Config) Network() NetworkConfig   { return c.NetworkCfg }

// --- Interface Method Implementations (Setters) ---

func (c *Config) SetViewport(width, height int) {
	c.ViewportCfg.Width = width
	c.ViewportCfg.Height = height
}
func (c *Config) SetRenderOutput(path string)     { c.RenderCfg.Output = path }
func (c *Config) SetRenderFormat(format string)   { c.RenderCfg.Format = format }
func (c *Config) SetRenderLayoutDump(path string) { c.RenderCfg.LayoutDump = path }
func (c *Config) SetNetworkAllowRemote(b bool)    { c.NetworkCfg.AllowRemote = b }

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// ViewportConfig is the size of the rendered frame in pixels.
type ViewportConfig struct {
	Width  int `mapstructure:"width" yaml:"width"`
	Height int `mapstructure:"height" yaml:"height"`
}

// FontConfig selects the face used for measuring and drawing text. Path wins
// over Family; with neither set the embedded face is used.
type FontConfig struct {
	Family      string  `mapstructure:"family" yaml:"family"`
	Path        string  `mapstructure:"path" yaml:"path"`
	DefaultSize float64 `mapstructure:"default_size" yaml:"default_size"`
}

// RenderConfig controls what the render command writes.
type RenderConfig struct {
	Output     string `mapstructure:"output" yaml:"output"`
	LayoutDump string `mapstructure:"layout_dump" yaml:"layout_dump"`
	Background string `mapstructure:"background" yaml:"background"`
	Format     string `mapstructure:"format" yaml:"format"`
	// NoUserAgentSheet renders with author styles only.
	NoUserAgentSheet bool `mapstructure:"no_user_agent_sheet" yaml:"no_user_agent_sheet"`
}

// NetworkConfig holds settings for fetching documents and stylesheets.
type NetworkConfig struct {
	Timeout     time.Duration     `mapstructure:"timeout" yaml:"timeout"`
	Concurrency int               `mapstructure:"concurrency" yaml:"concurrency"`
	AllowRemote bool              `mapstructure:"allow_remote" yaml:"allow_remote"`
	Headers     map[string]string `mapstructure:"headers" yaml:"headers"`
	// RateLimit caps remote requests per second; 0 disables pacing.
	RateLimit float64 `mapstructure:"rate_limit" yaml:"rate_limit"`
	Burst     int     `mapstructure:"burst" yaml:"burst"`
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "lattice")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Viewport --
	v.SetDefault("viewport.width", 800)
	v.SetDefault("viewport.height", 600)

	// -- Font --
	v.SetDefault("font.family", "")
	v.SetDefault("font.path", "")
	v.SetDefault("font.default_size", 16.0)

	// -- Render --
	v.SetDefault("render.output", "out.png")
	v.SetDefault("render.layout_dump", "")
	v.SetDefault("render.background", "white")
	v.SetDefault("render.format", FormatPNG)
	v.SetDefault("render.no_user_agent_sheet", false)

	// -- Network --
	v.SetDefault("network.timeout", "30s")
	v.SetDefault("network.concurrency", 4)
	v.SetDefault("network.allow_remote", false)
	v.SetDefault("network.headers", map[string]string{"User-Agent": "lattice"})
	v.SetDefault("network.rate_limit", 0.0)
	v.SetDefault("network.burst", 1)
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.RenderCfg.Format = strings.ToLower(cfg.RenderCfg.Format)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.ViewportCfg.Width <= 0 || c.ViewportCfg.Height <= 0 {
		return fmt.Errorf("viewport must have a positive width and height, got %dx%d",
			c.ViewportCfg.Width, c.ViewportCfg.Height)
	}
	if c.FontCfg.DefaultSize <= 0 {
		return fmt.Errorf("font.default_size must be positive")
	}
	switch c.RenderCfg.Format {
	case FormatPNG, FormatPDF:
	default:
		return fmt.Errorf("render.format must be %q or %q, got %q", FormatPNG, FormatPDF, c.RenderCfg.Format)
	}
	if c.NetworkCfg.Concurrency <= 0 {
		return fmt.Errorf("network.concurrency must be a positive integer")
	}
	if c.NetworkCfg.Timeout < 0 {
		return fmt.Errorf("network.timeout must not be negative")
	}
	if c.NetworkCfg.RateLimit < 0 {
		return fmt.Errorf("network.rate_limit must not be negative")
	}
	if c.NetworkCfg.RateLimit > 0 && c.NetworkCfg.Burst <= 0 {
		return fmt.Errorf("network.burst must be positive when network.rate_limit is set")
	}
	return nil
}
