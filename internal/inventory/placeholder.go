package inventory

import "regexp"

// placeholderRe matches template markers such as <MASTER1_IP> or <SSH_USER>.
var placeholderRe = regexp.MustCompile(`<[A-Z][A-Z0-9_]*>`)

// FindPlaceholders returns every placeholder token in s, in order.
func FindPlaceholders(s string) []string {
	return placeholderRe.FindAllString(s, -1)
}

// HasPlaceholder reports whether s still carries a template marker.
func HasPlaceholder(s string) bool {
	return placeholderRe.MatchString(s)
}
