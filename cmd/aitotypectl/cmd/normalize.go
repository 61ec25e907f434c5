package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"aitotype/internal/shortcut"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize <binding>",
	Short: "Print the canonical form of a shortcut",
	Long: `Canonicalizes a shortcut such as "ctrl+shift+k" to "Control+Shift+K",
the form the app stores and registers.`,
	Args: cobra.ExactArgs(1),
	RunE: runNormalize,
}

func init() {
	rootCmd.AddCommand(normalizeCmd)
}

func runNormalize(cmd *cobra.Command, args []string) error {
	binding, err := canonicalBinding(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), binding)
	return nil
}

func canonicalBinding(raw string) (string, error) {
	mods, key, ok := shortcut.Split(raw)
	if !ok {
		return "", fmt.Errorf("invalid shortcut %q", raw)
	}
	for _, mod := range mods {
		if !shortcut.IsModifierKey(mod) {
			return "", fmt.Errorf("unknown modifier %q in %q", mod, raw)
		}
	}
	binding, ok := shortcut.Normalize(mods, key)
	if !ok {
		return "", fmt.Errorf("shortcut %q has no terminal key", raw)
	}
	return binding, nil
}
