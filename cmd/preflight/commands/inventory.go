package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/preflight/cmd/preflight/handlers"
)

// Inventory returns the command that validates an Ansible inventory.
//
// Optional flags:
//
//	--inventory, -i: Path to the inventory (default: inventory.yml)
func Inventory(g *globalFlags) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "inventory",
		Short: "Validate the Ansible inventory",
		Long: `Validate the Ansible inventory before cluster bootstrap.

Checks:
  - Required groups (bastion, masters) and cluster vars are present
  - Every host has the fields its role needs
  - No <PLACEHOLDER> markers are left from the example inventory
  - Addresses and networks are well formed and unique
  - Host addresses fall inside the declared networks (warning)

The file is only read, never modified.

Examples:
  # Validate inventory.yml in the current directory
  preflight inventory

  # Validate another file and print JSON
  preflight inventory -i staging.yml --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Inventory(cmd.Context(), path, g.output(cmd))
		},
	}

	cmd.Flags().StringVarP(&path, "inventory", "i", "", "Path to the inventory (default: $PREFLIGHT_INVENTORY or inventory.yml)")

	return cmd
}
