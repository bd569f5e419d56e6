package netutil

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// Dial opens a TCP connection to address, giving up after timeout or when
// ctx is done, whichever comes first.
func Dial(ctx context.Context, address string, timeout time.Duration) (net.Conn, error) {
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", address, err)
	}
	return conn, nil
}

// SplitHostPort parses "host", "host:port", "[v6]:port" or a bare IPv6
// literal. defPort is used when no port is given.
func SplitHostPort(s string, defPort int) (string, int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", 0, fmt.Errorf("empty host")
	}

	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		// No port: either a plain name/IPv4 or an unbracketed IPv6 literal.
		host = strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
		if strings.ContainsAny(host, "[]") || (strings.Count(host, ":") == 1) {
			return "", 0, fmt.Errorf("invalid host %q", s)
		}
		return host, defPort, nil
	}
	if host == "" {
		return "", 0, fmt.Errorf("invalid host %q: missing host", s)
	}

	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return "", 0, fmt.Errorf("invalid port in %q", s)
	}
	return host, port, nil
}

// JoinHostPort is net.JoinHostPort for an integer port.
func JoinHostPort(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}
