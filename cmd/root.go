// -- cmd/root.go --
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/lattice/internal/config"
	"github.com/xkilldash9x/lattice/internal/observability"
)

type contextKey string

const configKey contextKey = "config"

// flagKeys maps command-line flags onto configuration keys. A flag only
// overrides the config file and environment when it is given.
var flagKeys = map[string]string{
	"width":        "viewport.width",
	"height":       "viewport.height",
	"font":         "font.family",
	"font-path":    "font.path",
	"font-size":    "font.default_size",
	"allow-remote": "network.allow_remote",
	"timeout":      "network.timeout",
	"no-ua":        "render.no_user_agent_sheet",
	"output":       "render.output",
	"format":       "render.format",
	"layout":       "render.layout_dump",
	"background":   "render.background",
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:           "lattice",
		Short:         "Lattice styles, lays out and paints HTML documents.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v := viper.New()
			config.SetDefaults(v)

			if err := initializeConfig(cmd, v, cfgFile); err != nil {
				return fmt.Errorf("failed to initialize configuration: %w", err)
			}
			cfg, err := config.NewConfigFromViper(v)
			if err != nil {
				return fmt.Errorf("failed to load or validate config: %w", err)
			}

			observability.InitializeLogger(cfg.Logger())
			observability.GetLogger().Debug("Starting lattice", zap.String("version", Version))

			cmd.SetContext(context.WithValue(cmd.Context(), configKey, cfg))
			return nil
		},
	}
	rootCmd.SetVersionTemplate(`{{printf "%s version %s\n" .Name .Version}}`)

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgFile, "config", "c", "", "config file (default is ./lattice.yaml or ~/.lattice.yaml)")
	pf.Int("width", 800, "viewport width in pixels")
	pf.Int("height", 600, "viewport height in pixels")
	pf.String("font", "", "system font family used for text")
	pf.String("font-path", "", "TrueType or OpenType file used for text")
	pf.Float64("font-size", 16, "default font size in pixels")
	pf.Bool("allow-remote", false, "fetch http(s) documents and stylesheets")
	pf.Duration("timeout", 0, "timeout for each remote fetch (0 keeps the configured value)")
	pf.Bool("no-ua", false, "render without the built-in user agent sheet")

	rootCmd.AddCommand(newRenderCmd())
	rootCmd.AddCommand(newHitCmd())
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

// Execute runs the root command with a context cancelled on SIGINT or SIGTERM.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()
	observability.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// initializeConfig layers the config file, LATTICE_* environment variables
// and explicitly set flags onto v.
func initializeConfig(cmd *cobra.Command, v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		path, err := homedir.Expand(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to expand config path: %w", err)
		}
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("lattice")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(home)
			v.AddConfigPath(home + "/.config/lattice")
		}
	}

	v.SetEnvPrefix("LATTICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	for name, key := range flagKeys {
		f := cmd.Flags().Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind flag --%s: %w", name, err)
		}
	}
	return nil
}

func getConfigFromContext(ctx context.Context) (config.Interface, error) {
	cfg, ok := ctx.Value(configKey).(config.Interface)
	if !ok || cfg == nil {
		return nil, errors.New("configuration not found in context")
	}
	return cfg, nil
}
