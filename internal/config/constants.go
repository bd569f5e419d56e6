package config

// Inventory file conventions.
const (
	// DefaultInventoryFile is the inventory checked when no path is given.
	DefaultInventoryFile = "inventory.yml"
	// ExampleInventoryFile ships with placeholder tokens and is never a default target.
	ExampleInventoryFile = "inventory.example.yml"
)

// SSH defaults.
const (
	// DefaultSSHPort is used when a host does not set ansible_port.
	DefaultSSHPort = 22
	// AuthorizedKeysPath is read relative to the remote user's home directory.
	AuthorizedKeysPath = ".ssh/authorized_keys"
	// GlobalKnownHostsFile is consulted in addition to the user's known_hosts when present.
	GlobalKnownHostsFile = "/etc/ssh/ssh_known_hosts"
)
