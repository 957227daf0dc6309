// Package cli wires configuration, storage and services into the wird
// command tree.
package cli

import (
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
}

// NewRootCmd builds the command tree. Running it without a subcommand
// starts the terminal UI.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "wird",
		Short:         "Daily morning and evening remembrance tracker",
		Long:          "wird tracks the morning and evening remembrance routines, keeps a daily streak and reminds you when each routine is due.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, opts)
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default ~/.config/wird/config.toml)")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newStatusCmd(opts))
	root.AddCommand(newDoneCmd(opts))
	root.AddCommand(newReconcileCmd(opts))
	root.AddCommand(newRemindCmd(opts))
	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newResetCmd(opts))
	return root
}

func Execute() error {
	return NewRootCmd().Execute()
}
