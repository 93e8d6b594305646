package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func (c *CLIController) newConfigCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or initialize the configuration file",
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a template configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := c.dependencies()
			if err != nil {
				return err
			}

			path := deps.ConfigService.GetConfigPath()
			if _, statErr := os.Stat(path); statErr == nil && !force {
				return deps.Console.PrintStringList("Configuration already exists (use --force to overwrite)", []string{path})
			}
			create := deps.ConfigService.CreateDefaultConfig
			if force {
				// the previous file is kept as a timestamped backup
				create = deps.ConfigService.RestoreDefaultConfig
			}
			if err := create(); err != nil {
				return fmt.Errorf("failed to create configuration: %w", err)
			}
			return deps.Console.PrintStringList("Configuration written", []string{path})
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Replace an existing configuration file")

	cmd.AddCommand(
		initCmd,
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration with secrets masked",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				deps, err := c.dependencies()
				if err != nil {
					return err
				}
				return deps.JSON.PrintConfig(deps.ConfigService.ExportConfig())
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the configuration file path",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				deps, err := c.dependencies()
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), deps.ConfigService.GetConfigPath())
				return err
			},
		},
	)
	return cmd
}
