// File: internal/config/config_test.go
package config

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -- Constructor and Defaults Tests --

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, "info", cfg.Logger().Level)
	assert.Equal(t, "lattice", cfg.Logger().ServiceName)
	assert.Equal(t, ViewportConfig{Width: 800, Height: 600}, cfg.Viewport())
	assert.Equal(t, 16.0, cfg.Font().DefaultSize)
	assert.Equal(t, FormatPNG, cfg.Render().Format)
	assert.Equal(t, 30*time.Second, cfg.Network().Timeout)
	assert.Equal(t, 4, cfg.Network().Concurrency)
	assert.False(t, cfg.Network().AllowRemote)
	assert.Zero(t, cfg.Network().RateLimit)
	assert.Equal(t, 1, cfg.Network().Burst)
	assert.NoError(t, cfg.Validate())
}

// -- Validation Logic Tests --

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"zero width", func(c *Config) { c.SetViewport(0, 600) }, "viewport must have a positive width and height"},
		{"negative height", func(c *Config) { c.SetViewport(800, -1) }, "viewport must have a positive width and height"},
		{"font size", func(c *Config) { c.FontCfg.DefaultSize = 0 }, "font.default_size must be positive"},
		{"format", func(c *Config) { c.SetRenderFormat("gif") }, `render.format must be "png" or "pdf"`},
		{"concurrency", func(c *Config) { c.NetworkCfg.Concurrency = 0 }, "network.concurrency must be a positive integer"},
		{"timeout", func(c *Config) { c.NetworkCfg.Timeout = -time.Second }, "network.timeout must not be negative"},
		{"rate limit", func(c *Config) { c.NetworkCfg.RateLimit = -1 }, "network.rate_limit must not be negative"},
		{"burst", func(c *Config) { c.NetworkCfg.RateLimit = 2; c.NetworkCfg.Burst = 0 }, "network.burst must be positive"},
		{"pdf is fine", func(c *Config) { c.SetRenderFormat(FormatPDF) }, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

// -- Factory Function Tests --

func TestNewConfigFromViper(t *testing.T) {
	t.Run("Successful Load from YAML", func(t *testing.T) {
		yamlBytes := []byte(`
viewport:
  width: 1024
render:
  format: PDF
  output: page.pdf
network:
  timeout: 5s
  rate_limit: 2.5
  burst: 3
  headers:
    Accept: text/css
`)
		v := viper.New()
		SetDefaults(v)
		v.SetConfigType("yaml")
		require.NoError(t, v.ReadConfig(bytes.NewBuffer(yamlBytes)))

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)
		assert.Equal(t, 1024, cfg.Viewport().Width)
		assert.Equal(t, 600, cfg.Viewport().Height, "default kept")
		assert.Equal(t, FormatPDF, cfg.Render().Format, "format is case-insensitive")
		assert.Equal(t, "page.pdf", cfg.Render().Output)
		assert.Equal(t, 5*time.Second, cfg.Network().Timeout)
		assert.Equal(t, 2.5, cfg.Network().RateLimit)
		assert.Equal(t, 3, cfg.Network().Burst)
		assert.Equal(t, "text/css", cfg.Network().Headers["accept"])
	})

	t.Run("Validation Failure", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)
		v.Set("viewport.height", 0)

		cfg, err := NewConfigFromViper(v)
		assert.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "invalid configuration")
	})

	t.Run("Environment Variable Binding", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)
		v.SetEnvPrefix("LATTICE")
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()

		v.SetConfigType("yaml")
		require.NoError(t, v.ReadConfig(bytes.NewBufferString("viewport:\n  width: 640\n")))
		t.Setenv("LATTICE_VIEWPORT_WIDTH", "1280")
		t.Setenv("LATTICE_NETWORK_ALLOW_REMOTE", "true")

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)
		assert.Equal(t, 1280, cfg.Viewport().Width, "env overrides the config file")
		assert.True(t, cfg.Network().AllowRemote)
	})
}

// -- Struct and Mapping Tests --

func TestConfigStructureMapping(t *testing.T) {
	yamlInput := `
logger:
  level: debug
  log_file: /var/log/lattice.log
  colors:
    info: green
font:
  family: DejaVu Sans
  default_size: 14
`
	v := viper.New()
	SetDefaults(v)
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(bytes.NewBufferString(yamlInput)))

	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))

	assert.Equal(t, "debug", cfg.Logger().Level)
	assert.Equal(t, "/var/log/lattice.log", cfg.Logger().LogFile)
	assert.Equal(t, "green", cfg.Logger().Colors.Info)
	assert.Equal(t, FontConfig{Family: "DejaVu Sans", DefaultSize: 14}, cfg.Font())
}

func TestSetters(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.SetRenderOutput("x.png")
	cfg.SetRenderLayoutDump("x.json")
	cfg.SetNetworkAllowRemote(true)
	assert.Equal(t, "x.png", cfg.Render().Output)
	assert.Equal(t, "x.json", cfg.Render().LayoutDump)
	assert.True(t, cfg.Network().AllowRemote)
}
