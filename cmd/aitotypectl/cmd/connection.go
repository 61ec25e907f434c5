package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"aitotype/internal/providers"
)

var connectionJSON bool

var testConnectionCmd = &cobra.Command{
	Use:   "test-connection",
	Short: "Check the configured provider credential and endpoint",
	Args:  cobra.NoArgs,
	RunE:  runTestConnection,
}

func init() {
	testConnectionCmd.Flags().BoolVar(&connectionJSON, "json", false, "print the result as JSON")
	rootCmd.AddCommand(testConnectionCmd)
}

func runTestConnection(cmd *cobra.Command, _ []string) error {
	cfg, opts, fileStore, err := openStore()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Providers.RequestTimeout)
	defer cancel()
	result := providers.TestConnection(ctx, fileStore.Get(), opts)

	w := cmd.OutOrStdout()
	if connectionJSON {
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(out))
	} else {
		fmt.Fprintln(w, result.Message)
		if result.Success {
			fmt.Fprintf(w, "latency: %dms\n", result.LatencyMS)
		}
	}
	if !result.Success {
		return errors.New("connection test failed")
	}
	return nil
}
