package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the configured rules",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := newEngine(cmd)
		if err != nil {
			return fmt.Errorf("failed to initialize engine: %w", err)
		}
		for _, name := range engine.Rules() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}
