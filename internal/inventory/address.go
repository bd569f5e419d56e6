package inventory

import (
	"net/netip"
	"strings"
)

// ParseIP parses an IPv4 or IPv6 literal. IPv4-mapped IPv6 addresses are
// unmapped so duplicates compare equal.
func ParseIP(s string) (netip.Addr, bool) {
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Addr{}, false
	}
	return addr.Unmap(), true
}

// ParseNetwork parses a CIDR prefix such as 10.0.0.0/24. Host bits may be set.
func ParseNetwork(s string) (netip.Prefix, bool) {
	p, err := netip.ParsePrefix(s)
	if err != nil {
		return netip.Prefix{}, false
	}
	return p.Masked(), true
}

// isIPField reports whether values of key must be IP literals.
func isIPField(key string) bool {
	if key == FieldAddress {
		return true
	}
	if strings.HasSuffix(key, "_ip") {
		return true
	}
	for _, v := range addressVars {
		if v.name == key {
			return true
		}
	}
	return false
}
