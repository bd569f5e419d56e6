package testing

import "fmt"

// BastionVars returns valid host vars for a bastion host.
func BastionVars(addr, internalIP string) map[string]any {
	return map[string]any{
		"ansible_host":                 addr,
		"ansible_hostname":             "bastion",
		"ansible_user":                 "ubuntu",
		"ansible_ssh_private_key_file": "~/.ssh/id_ed25519",
		"internal_ip":                  internalIP,
	}
}

// MasterVars returns valid host vars for a control plane host.
func MasterVars(name, addr string) map[string]any {
	return map[string]any{
		"ansible_host":                 addr,
		"ansible_hostname":             name,
		"ansible_user":                 "ubuntu",
		"ansible_ssh_private_key_file": "~/.ssh/id_ed25519",
	}
}

// WorkerVars returns valid host vars for a worker host.
func WorkerVars(name, addr, mgmtIP, dataIP string) map[string]any {
	vars := MasterVars(name, addr)
	vars["mgmt_ip"] = mgmtIP
	vars["prod_data_ip"] = dataIP
	return vars
}

// MinimalInventory returns a valid inventory with one bastion and two
// masters and no workers group.
func MinimalInventory() *InventoryBuilder {
	return NewInventoryBuilder().
		WithHost("bastion", "bastion", BastionVars("203.0.113.10", "10.0.10.10")).
		WithHost("masters", "master1", MasterVars("master1", "10.0.10.11")).
		WithHost("masters", "master2", MasterVars("master2", "10.0.10.12"))
}

// ValidInventory returns a complete valid inventory with n workers.
func ValidInventory(workers int) *InventoryBuilder {
	b := MinimalInventory()
	for i := 1; i <= workers; i++ {
		name := fmt.Sprintf("worker%d", i)
		b = b.WithHost("workers", name, WorkerVars(name,
			fmt.Sprintf("10.0.10.%d", 20+i),
			fmt.Sprintf("10.0.30.%d", 20+i),
			fmt.Sprintf("10.0.20.%d", 20+i)))
	}
	return b
}
