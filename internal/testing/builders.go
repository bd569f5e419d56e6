package testing

import (
	"maps"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"gopkg.in/yaml.v3"
)

// InventoryBuilder provides a fluent interface for constructing inventory
// documents. Each method returns a new builder (immutable) for chaining.
// Keys are emitted in insertion order.
type InventoryBuilder struct {
	varKeys []string
	vars    map[string]any
	groups  []groupSpec
}

type groupSpec struct {
	name  string
	hosts []hostSpec
}

type hostSpec struct {
	name string
	vars map[string]any
}

// NewInventoryBuilder creates a builder with valid cluster vars and no groups.
func NewInventoryBuilder() *InventoryBuilder {
	b := &InventoryBuilder{vars: map[string]any{}}
	for _, kv := range [][2]string{
		{"ansible_python_interpreter", "/usr/bin/python3"},
		{"control_vlan_network", "10.0.10.0/24"},
		{"control_vlan_gateway", "10.0.10.1"},
		{"data_vlan_network", "10.0.20.0/24"},
		{"data_vlan_gateway", "10.0.20.1"},
		{"lb_vip_control", "10.0.10.100"},
		{"lb_vip_data", "10.0.20.100"},
	} {
		b.varKeys = append(b.varKeys, kv[0])
		b.vars[kv[0]] = kv[1]
	}
	return b
}

// WithVar sets a cluster variable under all.vars.
func (b *InventoryBuilder) WithVar(key string, value any) *InventoryBuilder {
	nb := b.clone()
	if _, ok := nb.vars[key]; !ok {
		nb.varKeys = append(nb.varKeys, key)
	}
	nb.vars[key] = value
	return nb
}

// WithoutVar removes a cluster variable.
func (b *InventoryBuilder) WithoutVar(key string) *InventoryBuilder {
	nb := b.clone()
	delete(nb.vars, key)
	nb.varKeys = slices.DeleteFunc(nb.varKeys, func(k string) bool { return k == key })
	return nb
}

// WithGroup declares a group, possibly without hosts.
func (b *InventoryBuilder) WithGroup(group string) *InventoryBuilder {
	nb := b.clone()
	nb.group(group)
	return nb
}

// WithHost adds a host to group, declaring the group if needed.
func (b *InventoryBuilder) WithHost(group, name string, vars map[string]any) *InventoryBuilder {
	nb := b.clone()
	g := nb.group(group)
	g.hosts = append(g.hosts, hostSpec{name: name, vars: maps.Clone(vars)})
	return nb
}

// WithHostVar sets a single variable on an existing host.
func (b *InventoryBuilder) WithHostVar(group, name, key string, value any) *InventoryBuilder {
	nb := b.clone()
	for i := range nb.groups {
		if nb.groups[i].name != group {
			continue
		}
		for j := range nb.groups[i].hosts {
			if nb.groups[i].hosts[j].name == name {
				nb.groups[i].hosts[j].vars[key] = value
			}
		}
	}
	return nb
}

// WithoutHostVar removes a variable from an existing host.
func (b *InventoryBuilder) WithoutHostVar(group, name, key string) *InventoryBuilder {
	nb := b.clone()
	for i := range nb.groups {
		if nb.groups[i].name != group {
			continue
		}
		for j := range nb.groups[i].hosts {
			if nb.groups[i].hosts[j].name == name {
				delete(nb.groups[i].hosts[j].vars, key)
			}
		}
	}
	return nb
}

// Build renders the inventory as YAML.
func (b *InventoryBuilder) Build() []byte {
	vars := mappingNode()
	for _, k := range b.varKeys {
		appendPair(vars, k, b.vars[k])
	}

	children := mappingNode()
	for _, g := range b.groups {
		hosts := mappingNode()
		for _, h := range g.hosts {
			hv := mappingNode()
			keys := slices.Sorted(maps.Keys(h.vars))
			for _, k := range keys {
				appendPair(hv, k, h.vars[k])
			}
			hosts.Content = append(hosts.Content, scalarNode(h.name), hv)
		}
		group := mappingNode()
		group.Content = append(group.Content, scalarNode("hosts"), hosts)
		children.Content = append(children.Content, scalarNode(g.name), group)
	}

	all := mappingNode()
	all.Content = append(all.Content, scalarNode("vars"), vars, scalarNode("children"), children)
	root := mappingNode()
	root.Content = append(root.Content, scalarNode("all"), all)

	out, err := yaml.Marshal(root)
	if err != nil {
		panic(err)
	}
	return out
}

// Write renders the inventory into a temporary inventory.yml and returns its path.
func (b *InventoryBuilder) Write(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "inventory.yml")
	if err := os.WriteFile(path, b.Build(), 0o600); err != nil {
		t.Fatalf("failed to write inventory: %v", err)
	}
	return path
}

func (b *InventoryBuilder) group(name string) *groupSpec {
	for i := range b.groups {
		if b.groups[i].name == name {
			return &b.groups[i]
		}
	}
	b.groups = append(b.groups, groupSpec{name: name})
	return &b.groups[len(b.groups)-1]
}

// clone creates a deep copy of the builder for immutability.
func (b *InventoryBuilder) clone() *InventoryBuilder {
	nb := &InventoryBuilder{
		varKeys: slices.Clone(b.varKeys),
		vars:    maps.Clone(b.vars),
		groups:  make([]groupSpec, len(b.groups)),
	}
	for i, g := range b.groups {
		hosts := make([]hostSpec, len(g.hosts))
		for j, h := range g.hosts {
			hosts[j] = hostSpec{name: h.name, vars: maps.Clone(h.vars)}
		}
		nb.groups[i] = groupSpec{name: g.name, hosts: hosts}
	}
	return nb
}

func mappingNode() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
}

func scalarNode(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

func appendPair(m *yaml.Node, key string, value any) {
	var v yaml.Node
	if err := v.Encode(value); err != nil {
		panic(err)
	}
	m.Content = append(m.Content, scalarNode(key), &v)
}
