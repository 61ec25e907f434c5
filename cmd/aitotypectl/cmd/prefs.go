package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"aitotype/internal/config"
	"aitotype/internal/prefs"
)

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "List local preferences with credentials masked",
	Long: `Lists the preferences the desktop app keeps in its local database:
per-provider credentials, record mode, auto-copy and the shortcut. An empty
shortcut value means the shortcut was disabled.`,
	Args: cobra.NoArgs,
	RunE: runPrefs,
}

func init() {
	rootCmd.AddCommand(prefsCmd)
}

func runPrefs(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}

	store, err := prefs.Open(prefs.DefaultPath(cfg.DataDir), logger(cfg))
	if err != nil {
		return err
	}
	defer store.Close()

	keys, err := store.Keys()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, key := range keys {
		value, _ := store.Get(key)
		if strings.Contains(key, "api_key") {
			value = maskKey(value)
		}
		fmt.Fprintf(w, "%s\t%q\n", key, value)
	}
	return w.Flush()
}
