package main

import (
	"github.com/spf13/cobra"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	env        string
	configPath string
}

// NewRootCmd creates the searchinto command tree.
func NewRootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "searchinto",
		Short: "Export search hits into new documents through a field mapping",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&flags.env, "env", "", "Environment name selecting config/<env>.yaml (default: $ENV or local)")
	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Path to a config file, overrides --env")

	cmd.AddCommand(newServeCmd(flags))
	cmd.AddCommand(newRunCmd(flags))
	cmd.AddCommand(newPlanCmd(flags))
	cmd.AddCommand(newVersionCmd())

	return cmd
}
