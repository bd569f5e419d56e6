package inventory

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Document is a parsed, not yet validated inventory.
type Document struct {
	Path string
	root *yaml.Node
}

// Load reads and parses the inventory at path.
func Load(path string) (*Document, error) {
	// #nosec G304 -- path is the operator-supplied inventory
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("failed to read inventory file: %w", err)}
	}
	return Parse(path, data)
}

// Parse parses inventory YAML. path is only used for messages.
func Parse(path string, data []byte) (*Document, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, newParseError(path, err)
	}
	if node.Kind != yaml.DocumentNode || len(node.Content) == 0 {
		return nil, &ParseError{Path: path, Err: errEmptyDocument}
	}
	root := node.Content[0]
	if isNull(root) {
		return nil, &ParseError{Path: path, Line: root.Line, Column: root.Column, Err: errEmptyDocument}
	}
	return &Document{Path: path, root: root}, nil
}

// lookup returns the key and value nodes for key in a mapping node. Aliased
// values are resolved.
func lookup(m *yaml.Node, key string) (*yaml.Node, *yaml.Node) {
	for _, p := range pairs(m) {
		if p[0].Value == key {
			return p[0], resolve(p[1])
		}
	}
	return nil, nil
}

// pairs returns the key/value nodes of a mapping in document order. Keys
// pulled in through a "<<" merge follow the explicit keys and never
// override them.
func pairs(m *yaml.Node) [][2]*yaml.Node {
	m = resolve(m)
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	out := make([][2]*yaml.Node, 0, len(m.Content)/2)
	var merged [][2]*yaml.Node
	for i := 0; i+1 < len(m.Content); i += 2 {
		k, v := m.Content[i], m.Content[i+1]
		if isMergeKey(k) {
			merged = append(merged, mergeSources(v)...)
			continue
		}
		out = append(out, [2]*yaml.Node{k, v})
	}
	if len(merged) == 0 {
		return out
	}

	seen := make(map[string]bool, len(out))
	for _, p := range out {
		seen[p[0].Value] = true
	}
	for _, p := range merged {
		if !seen[p[0].Value] {
			seen[p[0].Value] = true
			out = append(out, p)
		}
	}
	return out
}

func mergeSources(v *yaml.Node) [][2]*yaml.Node {
	v = resolve(v)
	if v == nil {
		return nil
	}
	if v.Kind == yaml.SequenceNode {
		var out [][2]*yaml.Node
		for _, c := range v.Content {
			out = append(out, pairs(c)...)
		}
		return out
	}
	return pairs(v)
}

func isMergeKey(k *yaml.Node) bool {
	return k.Kind == yaml.ScalarNode && k.Value == "<<" && (k.Tag == "" || k.Tag == "!!merge")
}

func resolve(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

func isNull(n *yaml.Node) bool {
	n = resolve(n)
	return n == nil || (n.Kind == yaml.ScalarNode && n.Tag == "!!null")
}

// scalarValue returns the scalar text of n, with null rendered as "".
func scalarValue(n *yaml.Node) string {
	n = resolve(n)
	if isNull(n) {
		return ""
	}
	return n.Value
}
