package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/preflight/cmd/preflight/handlers"
)

// SSH returns the command that verifies SSH trust with the cluster hosts.
//
// Required flags:
//
//	--user, -u: Remote login user
//	--key, -k: Private key name or path
//
// Optional flags:
//
//	--inventory, -i: Inventory to read masters and workers from
//	--hosts: Explicit host[:port] targets instead of the inventory
//	--known-hosts: known_hosts file to trust
//	--timeout: Per-host dial and handshake timeout
//	--concurrency: Number of hosts probed at once
func SSH(g *globalFlags) *cobra.Command {
	var opts handlers.SSHOptions

	cmd := &cobra.Command{
		Use:   "ssh",
		Short: "Verify SSH trust with cluster hosts",
		Long: `Verify SSH trust between this host and every master and worker.

For each host:
  - The public key of --key must be in the user's authorized_keys
  - The host key must be trusted by known_hosts

Nothing is installed or updated; failures come with the ssh-copy-id and
ssh-keyscan commands that would fix them.

Examples:
  # Check the hosts from inventory.yml
  preflight ssh -u ubuntu -k id_ed25519

  # Check two hosts, one at a time
  preflight ssh -u ubuntu -k ~/.ssh/cluster --hosts 10.0.10.11,10.0.10.12:2222 --concurrency 1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.SSH(cmd.Context(), opts, g.output(cmd))
		},
	}

	cmd.Flags().StringVarP(&opts.User, "user", "u", "", "Remote login user")
	cmd.Flags().StringVarP(&opts.Key, "key", "k", "", "Private key name (resolved in ~/.ssh) or path")
	cmd.Flags().StringVarP(&opts.InventoryPath, "inventory", "i", "", "Inventory to read targets from (default: $PREFLIGHT_INVENTORY or inventory.yml)")
	cmd.Flags().StringSliceVar(&opts.Hosts, "hosts", nil, "Comma-separated host[:port] targets instead of the inventory")
	cmd.Flags().StringVar(&opts.KnownHostsPath, "known-hosts", "", "known_hosts file (default: $PREFLIGHT_KNOWN_HOSTS or ~/.ssh/known_hosts)")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 0, "Per-host dial and handshake timeout (default: $PREFLIGHT_SSH_TIMEOUT or 5s)")
	cmd.Flags().IntVar(&opts.Concurrency, "concurrency", 0, "Hosts probed at once (default: $PREFLIGHT_SSH_CONCURRENCY or 4)")

	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("key")
	cmd.MarkFlagsMutuallyExclusive("inventory", "hosts")

	return cmd
}
