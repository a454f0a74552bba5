package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gnolang/treematch/lint"
)

var forceInit bool

// initCmd: treematch init
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter rule configuration file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := initConfigurationFile(cfgFile, forceInit); err != nil {
			return fmt.Errorf("error initializing config file: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Configuration file created: %s\n", cfgFile)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite an existing configuration file")
}

func initConfigurationFile(configurationPath string, force bool) error {
	if configurationPath == "" {
		configurationPath = lint.DefaultConfigPath
	}
	if _, err := os.Stat(configurationPath); err == nil && !force {
		return fmt.Errorf("%s already exists", configurationPath)
	}
	return lint.WriteConfig(configurationPath, lint.DefaultConfig())
}
