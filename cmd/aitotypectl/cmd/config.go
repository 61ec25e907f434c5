package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"aitotype/internal/store"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Work with config.json",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective transcription config with keys masked",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cfg, _, fileStore, err := openStore()
	if err != nil {
		return err
	}
	stt := fileStore.Get()
	stt.APIKey = maskKey(stt.APIKey)
	stt.Enhancement.APIKey = maskKey(stt.Enhancement.APIKey)

	out, err := json.MarshalIndent(stt, "", "  ")
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "# %s\n", store.Path(cfg.DataDir))
	fmt.Fprintln(w, string(out))
	return nil
}

// maskKey keeps the last four characters of long keys.
func maskKey(key string) string {
	switch {
	case key == "":
		return ""
	case len(key) <= 8:
		return "****"
	default:
		return "****" + key[len(key)-4:]
	}
}
