package cmd

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"aitotype/internal/bootstrap"
	"aitotype/internal/config"
	"aitotype/internal/providers"
	"aitotype/internal/store"
)

var (
	dataDir string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "aitotypectl",
	Short: "Inspect and check an AItoType installation",
	Long: `aitotypectl works on the same config.json and environment as the
AItoType desktop app.

It canonicalizes shortcut bindings, prints the stored transcription
config and checks the configured provider.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "directory holding config.json (default: AITOTYPE_DATA_DIR or the user config dir)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")
}

// openStore loads runtime config and the config.json it points at.
func openStore() (config.Config, providers.Options, *store.FileStore, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, providers.Options{}, nil, err
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	opts := providers.Options{
		OpenRouterBaseURL:  cfg.Providers.OpenRouterBaseURL,
		SiliconFlowBaseURL: cfg.Providers.SiliconFlowBaseURL,
		Timeout:            cfg.Providers.RequestTimeout,
	}
	return cfg, opts, store.Open(cfg.DataDir, opts, logger(cfg)), nil
}

func logger(cfg config.Config) zerolog.Logger {
	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	return bootstrap.NewLogger(level).With().Str("component", "ctl").Logger()
}
