package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/preflight/cmd/preflight/handlers"
)

// Tools returns the command that checks the control host's client tools.
func Tools(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "Check that the bootstrap client tools are installed",
		Long: `Check that the control host has the tools the bootstrap relies on.

ansible-playbook and ssh are required. ssh-keyscan and ssh-copy-id are
only needed to apply the fixes suggested by "preflight ssh".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Tools(cmd.Context(), g.output(cmd))
		},
	}
}
