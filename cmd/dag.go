package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var dagCmd = &cobra.Command{
	Use:   "dag <rule>",
	Short: "Print the precedence graph of an order rule",
	Long: `Prints one line per fragment with the fragments that must follow it.
Example) treematch dag unlock-before-lock`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := newEngine(cmd)
		if err != nil {
			return fmt.Errorf("failed to initialize engine: %w", err)
		}
		dag, err := engine.Precedence(args[0])
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), dag.String())
		return nil
	},
}
