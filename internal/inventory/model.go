package inventory

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Inventory is the typed view of an inventory document.
type Inventory struct {
	All Section `mapstructure:"all"`
}

// Section is the top-level "all" group.
type Section struct {
	Vars     ClusterVars      `mapstructure:"vars"`
	Children map[string]Group `mapstructure:"children"`
}

// ClusterVars are the cluster-wide variables under all.vars.
type ClusterVars struct {
	PythonInterpreter  string `mapstructure:"ansible_python_interpreter"`
	ControlVLANNetwork string `mapstructure:"control_vlan_network"`
	ControlVLANGateway string `mapstructure:"control_vlan_gateway"`
	DataVLANNetwork    string `mapstructure:"data_vlan_network"`
	DataVLANGateway    string `mapstructure:"data_vlan_gateway"`
	LBVIPControl       string `mapstructure:"lb_vip_control"`
	LBVIPData          string `mapstructure:"lb_vip_data"`

	Extra map[string]interface{} `mapstructure:",remain"`
}

// Group is a named set of hosts.
type Group struct {
	Hosts map[string]HostVars `mapstructure:"hosts"`
}

// HostVars are the per-host variables.
type HostVars struct {
	Address    string `mapstructure:"ansible_host"`
	Hostname   string `mapstructure:"ansible_hostname"`
	User       string `mapstructure:"ansible_user"`
	KeyFile    string `mapstructure:"ansible_ssh_private_key_file"`
	Port       string `mapstructure:"ansible_port"`
	InternalIP string `mapstructure:"internal_ip"`
	MgmtIP     string `mapstructure:"mgmt_ip"`
	DataIP     string `mapstructure:"prod_data_ip"`

	Extra map[string]interface{} `mapstructure:",remain"`
}

// Host is a single inventory host with the group it was declared in.
type Host struct {
	Name  string
	Group string
	Vars  HostVars
}

// SSHPort returns the configured ansible_port, or def when it is unset.
// A value that is not a TCP port also yields def, together with an error.
func (h Host) SSHPort(def int) (int, error) {
	raw := strings.TrimSpace(h.Vars.Port)
	if raw == "" {
		return def, nil
	}
	p, err := strconv.Atoi(raw)
	if err != nil || p < 1 || p > 65535 {
		return def, fmt.Errorf("host %q: %s %q is not a valid TCP port", h.Name, FieldPort, h.Vars.Port)
	}
	return p, nil
}

// Inventory decodes the document into its typed form. Unknown variables are
// kept in the Extra maps; scalar types are coerced where possible.
func (d *Document) Inventory() (*Inventory, error) {
	var raw map[string]interface{}
	if err := d.root.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode inventory %s: %w", d.Path, err)
	}

	var inv Inventory
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &inv,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode inventory %s: %w", d.Path, err)
	}
	return &inv, nil
}

// Hosts returns the hosts of the given groups, in group order and sorted by
// name within each group. A host listed in several groups is returned once.
func (inv *Inventory) Hosts(groups ...string) []Host {
	var out []Host
	seen := make(map[string]bool)
	for _, g := range groups {
		group, ok := inv.All.Children[g]
		if !ok {
			continue
		}
		names := make([]string, 0, len(group.Hosts))
		for name := range group.Hosts {
			names = append(names, name)
		}
		slices.Sort(names)
		for _, name := range names {
			if seen[name] {
				continue
			}
			seen[name] = true
			out = append(out, Host{Name: name, Group: g, Vars: group.Hosts[name]})
		}
	}
	return out
}
