package inventory

import (
	"fmt"
	"net/netip"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/imamik/preflight/internal/result"
)

const subjectVars = "all.vars"

// Validate loads the inventory at path and checks it. Only a [ParseError]
// is returned as an error; every content defect is reported in the result.
func Validate(path string) (*result.Result, error) {
	doc, err := Load(path)
	if err != nil {
		return nil, err
	}
	return ValidateDocument(doc), nil
}

// ValidateDocument checks a parsed inventory. Every group, host and field
// is visited even after earlier failures, in document order.
func ValidateDocument(doc *Document) *result.Result {
	v := &validator{
		res:       result.New("Inventory " + doc.Path),
		networks:  make(map[string]netip.Prefix),
		hosts:     make(map[string]hostDecl),
		addresses: make(map[string]map[netip.Addr]string),
	}
	v.run(doc.root)
	return v.res
}

type hostDecl struct {
	group string
	line  int
}

type validator struct {
	res       *result.Result
	networks  map[string]netip.Prefix
	hosts     map[string]hostDecl
	addresses map[string]map[netip.Addr]string // field -> address -> owning host
}

func (v *validator) run(root *yaml.Node) {
	if root.Kind != yaml.MappingNode {
		v.fail("all", "all", result.ReasonMissingField, root.Line,
			"document root must be a mapping with an 'all' section")
		return
	}

	allKey, all := lookup(root, "all")
	if allKey == nil {
		v.fail("all", "all", result.ReasonMissingField, root.Line, "missing 'all' section at top level")
		return
	}
	if all.Kind != yaml.MappingNode {
		v.fail("all", "all", result.ReasonMissingField, allKey.Line, "'all' must be a mapping")
		return
	}
	v.pass("all", "all", allKey.Line, "section present")

	v.collectNetworks(all)
	v.checkVars(all, allKey)
	v.checkChildren(all, allKey)
}

// collectNetworks records the parseable network vars so address checks can
// test containment regardless of the order vars are declared in.
func (v *validator) collectNetworks(all *yaml.Node) {
	_, vars := lookup(all, "vars")
	for _, name := range networkVars {
		_, n := lookup(vars, name)
		if n == nil || n.Kind != yaml.ScalarNode {
			continue
		}
		if p, ok := ParseNetwork(n.Value); ok {
			v.networks[name] = p
		}
	}
}

func (v *validator) checkVars(all, allKey *yaml.Node) {
	varsKey, vars := lookup(all, "vars")
	if varsKey == nil {
		v.fail(subjectVars, "all.vars", result.ReasonMissingField, allKey.Line, "missing 'vars' section in 'all'")
		return
	}
	if vars.Kind != yaml.MappingNode {
		v.fail(subjectVars, "all.vars", result.ReasonMissingField, varsKey.Line, "'vars' must be a mapping")
		return
	}

	for _, name := range RequiredVars {
		k, val := lookup(vars, name)
		if k == nil {
			v.fail(subjectVars, name, result.ReasonMissingField, varsKey.Line,
				"missing required variable %q", name)
			continue
		}
		if v.rejectStructured(subjectVars, name, val, true) {
			continue
		}
		v.walk(subjectVars, name, val, func(field, value string, n *yaml.Node) {
			v.checkVarScalar(field, value, n, field == name)
		})
	}

	for _, p := range pairs(vars) {
		name := p[0].Value
		if slices.Contains(RequiredVars, name) || v.rejectStructured(subjectVars, name, p[1], false) {
			continue
		}
		v.walk(subjectVars, name, p[1], func(field, value string, n *yaml.Node) {
			v.checkVarScalar(field, value, n, false)
		})
	}
}

func (v *validator) checkVarScalar(field, value string, n *yaml.Node, required bool) {
	key := leafKey(field)
	switch {
	case slices.Contains(networkVars, key):
		p, ok := ParseNetwork(value)
		if !ok {
			v.fail(subjectVars, field, result.ReasonInvalidAddressFormat, n.Line,
				"invalid network format in %s: %q is not a CIDR prefix", field, value)
			return
		}
		v.pass(subjectVars, field, n.Line, "valid network %s", p)
	case isIPField(key):
		addr, ok := ParseIP(value)
		if !ok {
			v.fail(subjectVars, field, result.ReasonInvalidAddressFormat, n.Line,
				"invalid IP address format in %s: %q", field, value)
			return
		}
		if netName := varNetwork(key); netName != "" {
			if p, ok := v.networks[netName]; ok && !p.Contains(addr) {
				v.warn(subjectVars, field, result.ReasonOutsideNetwork, n.Line,
					"%s %s is outside %s (%s)", field, addr, netName, p)
				return
			}
		}
		v.pass(subjectVars, field, n.Line, "%s", describeAddr(addr))
	case required && value == "":
		v.fail(subjectVars, field, result.ReasonMissingField, n.Line, "required variable %q is empty", field)
	default:
		v.pass(subjectVars, field, n.Line, "set")
	}
}

func (v *validator) checkChildren(all, allKey *yaml.Node) {
	childrenKey, children := lookup(all, "children")
	if childrenKey == nil {
		v.fail("all", "all.children", result.ReasonMissingField, allKey.Line, "missing 'children' section in 'all'")
		return
	}
	if children.Kind != yaml.MappingNode {
		v.fail("all", "all.children", result.ReasonMissingField, childrenKey.Line, "'children' must be a mapping of groups")
		return
	}

	for _, g := range RequiredGroups {
		if k, _ := lookup(children, g); k == nil {
			v.fail(g, "all.children."+g, result.ReasonMissingGroup, childrenKey.Line, "missing required group %q", g)
		}
	}
	if k, _ := lookup(children, GroupWorkers); k == nil {
		v.warn(GroupWorkers, "all.children."+GroupWorkers, result.ReasonMissingGroup, childrenKey.Line,
			"no %q group defined; only control plane nodes will be provisioned", GroupWorkers)
	}

	for _, p := range pairs(children) {
		v.checkGroup(p[0], p[1])
	}
}

func (v *validator) checkGroup(keyNode, val *yaml.Node) {
	group := keyNode.Value
	path := "all.children." + group
	required := slices.Contains(RequiredGroups, group)

	hostsKey, hosts := lookup(val, "hosts")
	if hostsKey == nil {
		if required {
			v.fail(group, path+".hosts", result.ReasonMissingField, keyNode.Line,
				"missing 'hosts' section in group %q", group)
		} else {
			v.warn(group, path+".hosts", result.ReasonEmptyGroup, keyNode.Line,
				"group %q has no 'hosts' section", group)
		}
		return
	}
	if !isNull(hosts) && hosts.Kind != yaml.MappingNode {
		v.fail(group, path+".hosts", result.ReasonMissingField, hostsKey.Line,
			"'hosts' in group %q must be a mapping of host names", group)
		return
	}

	hostPairs := pairs(hosts)
	switch {
	case len(hostPairs) == 0:
		v.warn(group, path, result.ReasonEmptyGroup, hostsKey.Line, "group %q has no hosts defined", group)
		return
	case HasPlaceholder(group):
		v.fail(group, path, result.ReasonPlaceholderNotSubstituted, keyNode.Line,
			"unsubstituted placeholder %s in group name", strings.Join(FindPlaceholders(group), ", "))
	default:
		v.pass(group, path, keyNode.Line, "%d host(s)", len(hostPairs))
	}

	for _, hp := range hostPairs {
		v.checkHost(group, hp[0], hp[1])
	}
}

func (v *validator) checkHost(group string, keyNode, val *yaml.Node) {
	name := keyNode.Value
	subject := name
	line := keyNode.Line
	val = resolve(val)

	switch {
	case name == "":
		subject = fmt.Sprintf("%s@line%d", group, line)
		v.fail(subject, "name", result.ReasonMissingField, line, "host name is empty")
	case HasPlaceholder(name):
		v.fail(subject, "name", result.ReasonPlaceholderNotSubstituted, line,
			"unsubstituted placeholder %s in host name", strings.Join(FindPlaceholders(name), ", "))
	default:
		if prev, ok := v.hosts[name]; ok {
			v.fail(subject, "name", result.ReasonDuplicateHost, line,
				"host %q is already declared in group %q at line %d", name, prev.group, prev.line)
		} else {
			v.hosts[name] = hostDecl{group: group, line: line}
			v.pass(subject, "name", line, "declared in group %q", group)
		}
	}

	if !isNull(val) && val.Kind != yaml.MappingNode {
		v.fail(subject, "vars", result.ReasonMissingField, val.Line, "host variables must be a mapping")
		val = nil
	}

	required := RequiredHostFields(group)
	for _, f := range required {
		k, fv := lookup(val, f)
		if k == nil {
			v.fail(subject, f, result.ReasonMissingField, line,
				"host %q (%s) missing required field %q", name, group, f)
			continue
		}
		if v.rejectStructured(subject, f, fv, true) {
			continue
		}
		v.walk(subject, f, fv, func(field, value string, n *yaml.Node) {
			v.checkHostScalar(subject, field, value, n, field == f)
		})
	}

	if k, _ := lookup(val, FieldHostname); k == nil {
		v.warn(subject, FieldHostname, result.ReasonRecommended, line,
			"%s is not set; the node name will fall back to %q", FieldHostname, name)
	}

	for _, p := range pairs(val) {
		f := p[0].Value
		if slices.Contains(required, f) || v.rejectStructured(subject, f, p[1], false) {
			continue
		}
		v.walk(subject, f, p[1], func(field, value string, n *yaml.Node) {
			v.checkHostScalar(subject, field, value, n, false)
		})
	}
}

func (v *validator) checkHostScalar(subject, field, value string, n *yaml.Node, required bool) {
	key := leafKey(field)
	switch {
	case isIPField(key):
		addr, ok := ParseIP(value)
		if !ok {
			v.fail(subject, field, result.ReasonInvalidAddressFormat, n.Line,
				"invalid IP address in %s.%s: %q", subject, field, value)
			return
		}
		if owner, dup := v.claimAddress(key, addr, subject); dup {
			v.fail(subject, field, result.ReasonDuplicateAddress, n.Line,
				"%s %s is already assigned to host %q", key, addr, owner)
			return
		}
		if netName, ok := hostFieldNetwork[key]; ok {
			if p, ok := v.networks[netName]; ok && !p.Contains(addr) {
				v.warn(subject, field, result.ReasonOutsideNetwork, n.Line,
					"%s %s is outside %s (%s)", key, addr, netName, p)
				return
			}
		}
		v.pass(subject, field, n.Line, "%s", describeAddr(addr))
	case key == FieldPort:
		port, err := strconv.Atoi(value)
		if err != nil || port < 1 || port > 65535 {
			v.fail(subject, field, result.ReasonInvalidAddressFormat, n.Line, "%q is not a valid TCP port", value)
			return
		}
		v.pass(subject, field, n.Line, "port %d", port)
	case required && value == "":
		v.fail(subject, field, result.ReasonMissingField, n.Line, "required field %q is empty", field)
	default:
		v.pass(subject, field, n.Line, "set")
	}
}

// claimAddress records addr for field and reports the earlier owner if the
// address was already taken in the same role.
func (v *validator) claimAddress(field string, addr netip.Addr, host string) (string, bool) {
	owners, ok := v.addresses[field]
	if !ok {
		owners = make(map[netip.Addr]string)
		v.addresses[field] = owners
	}
	if owner, taken := owners[addr]; taken {
		return owner, true
	}
	owners[addr] = host
	return "", false
}

// rejectStructured reports one FAIL when a field that takes a single value
// holds a mapping or a list, and returns true if it did.
func (v *validator) rejectStructured(subject, field string, n *yaml.Node, required bool) bool {
	n = resolve(n)
	if n == nil || (n.Kind != yaml.MappingNode && n.Kind != yaml.SequenceNode) {
		return false
	}
	kind := "mapping"
	if n.Kind == yaml.SequenceNode {
		kind = "list"
	}
	key := leafKey(field)
	switch {
	case isIPField(key), slices.Contains(networkVars, key), key == FieldPort:
		v.fail(subject, field, result.ReasonInvalidAddressFormat, n.Line,
			"%s must be a single value, got a %s", field, kind)
	case required:
		v.fail(subject, field, result.ReasonMissingField, n.Line,
			"required field %q has no value, got a %s", field, kind)
	default:
		return false
	}
	return true
}

// walk visits every scalar leaf under n. Placeholders are reported here so
// they take precedence over any other check on the same field.
func (v *validator) walk(subject, field string, n *yaml.Node, check func(field, value string, n *yaml.Node)) {
	n = resolve(n)
	switch n.Kind {
	case yaml.MappingNode:
		ps := pairs(n)
		if len(ps) == 0 {
			v.pass(subject, field, n.Line, "empty")
			return
		}
		for _, p := range ps {
			v.walk(subject, field+"."+p[0].Value, p[1], check)
		}
	case yaml.SequenceNode:
		if len(n.Content) == 0 {
			v.pass(subject, field, n.Line, "empty")
			return
		}
		for i, c := range n.Content {
			v.walk(subject, fmt.Sprintf("%s[%d]", field, i), c, check)
		}
	default:
		value := scalarValue(n)
		if tokens := FindPlaceholders(value); len(tokens) > 0 {
			v.fail(subject, field, result.ReasonPlaceholderNotSubstituted, n.Line,
				"unsubstituted placeholder %s in %s; replace it with the real value", strings.Join(tokens, ", "), field)
			return
		}
		check(field, value, n)
	}
}

func (v *validator) pass(subject, field string, line int, format string, args ...any) {
	v.res.Add(result.Entry{
		Subject: subject, Field: field, Status: result.StatusPass,
		Message: fmt.Sprintf(format, args...), Line: line,
	})
}

func (v *validator) warn(subject, field string, reason result.Reason, line int, format string, args ...any) {
	v.res.Add(result.Entry{
		Subject: subject, Field: field, Status: result.StatusWarn, Reason: reason,
		Message: fmt.Sprintf(format, args...), Line: line,
	})
}

func (v *validator) fail(subject, field string, reason result.Reason, line int, format string, args ...any) {
	v.res.Add(result.Entry{
		Subject: subject, Field: field, Status: result.StatusFail, Reason: reason,
		Message: fmt.Sprintf(format, args...), Line: line,
	})
}

// leafKey strips the parent path and any index from a dotted field path.
func leafKey(field string) string {
	if i := strings.LastIndex(field, "."); i >= 0 {
		field = field[i+1:]
	}
	if i := strings.Index(field, "["); i >= 0 {
		field = field[:i]
	}
	return field
}

func varNetwork(name string) string {
	for _, v := range addressVars {
		if v.name == name {
			return v.network
		}
	}
	return ""
}

func describeAddr(addr netip.Addr) string {
	if addr.Is4() {
		return fmt.Sprintf("%s is a valid IPv4 address", addr)
	}
	return fmt.Sprintf("%s is a valid IPv6 address", addr)
}
