package testing

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/imamik/preflight/internal/util/keygen"
)

// TestContext returns a context with a reasonable timeout for tests.
func TestContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// WriteFile writes content to name inside dir and returns the full path.
func WriteFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		t.Fatalf("failed to create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// NewKeyPair generates an Ed25519 key pair, optionally passphrase-protected.
func NewKeyPair(t *testing.T, passphrase string) *keygen.KeyPair {
	t.Helper()
	kp, err := keygen.GenerateKeyPair(keygen.Ed25519, []byte(passphrase))
	if err != nil {
		t.Fatalf("failed to generate key pair: %v", err)
	}
	return kp
}

// WriteKeyPair stores kp as dir/name and dir/name.pub and returns the
// private key path.
func WriteKeyPair(t *testing.T, dir, name string, kp *keygen.KeyPair) string {
	t.Helper()
	path := WriteFile(t, dir, name, kp.PrivateKey)
	WriteFile(t, dir, name+".pub", kp.PublicKey)
	return path
}

// KnownHostsLine renders a known_hosts line for addr (host:port). When
// hashed is set the host pattern is stored hashed, as ssh-keyscan -H does.
func KnownHostsLine(addr string, key ssh.PublicKey, hashed bool) string {
	host := knownhosts.Normalize(addr)
	if hashed {
		host = knownhosts.HashHostname(host)
	}
	return knownhosts.Line([]string{host}, key)
}

// WriteKnownHosts writes lines into a fresh known_hosts file and returns its path.
func WriteKnownHosts(t *testing.T, lines ...string) string {
	t.Helper()
	content := strings.Join(lines, "\n")
	if content != "" {
		content += "\n"
	}
	return WriteFile(t, t.TempDir(), "known_hosts", []byte(content))
}

// ClosedAddr returns a loopback host:port nothing listens on.
func ClosedAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()
	return addr
}
