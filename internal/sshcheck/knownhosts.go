package sshcheck

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"slices"
	"strings"
	"sync"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// hostKeyDB answers trust questions against the control host's known_hosts
// files. It never writes to them.
type hostKeyDB struct {
	files    []string
	callback ssh.HostKeyCallback // nil when none of the files exist
}

func loadKnownHosts(paths []string) (*hostKeyDB, error) {
	db := &hostKeyDB{}
	for _, p := range paths {
		if p == "" {
			continue
		}
		_, err := os.Stat(p)
		switch {
		case err == nil:
			db.files = append(db.files, p)
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to access known_hosts file %s: %w", p, err)
		}
	}
	if len(db.files) == 0 {
		return db, nil
	}

	cb, err := knownhosts.New(db.files...)
	if err != nil {
		return nil, fmt.Errorf("failed to load known_hosts: %w", err)
	}
	db.callback = cb
	return db, nil
}

// check returns nil when key is trusted for target. Untrusted keys yield a
// *knownhosts.KeyError or *knownhosts.RevokedError.
func (db *hostKeyDB) check(t Target, key ssh.PublicKey) error {
	if db.callback == nil {
		return &knownhosts.KeyError{}
	}
	return db.callback(t.Addr(), remoteAddr(t), key)
}

// known reports whether any entry exists for target, whatever its key.
func (db *hostKeyDB) known(t Target) bool {
	if db.callback == nil {
		return false
	}
	err := db.callback(t.Addr(), remoteAddr(t), probeKey())
	var keyErr *knownhosts.KeyError
	if errors.As(err, &keyErr) {
		return len(keyErr.Want) > 0
	}
	return err == nil
}

func remoteAddr(t Target) net.Addr {
	return &net.TCPAddr{IP: net.ParseIP(t.Address), Port: t.Port}
}

// probeKey is a fixed key no host presents, used to ask whether entries
// exist at all.
var probeKey = sync.OnceValue(func() ssh.PublicKey {
	priv := ed25519.NewKeyFromSeed(make([]byte, ed25519.SeedSize))
	pub, err := ssh.NewPublicKey(priv.Public())
	if err != nil {
		panic(err)
	}
	return pub
})

func describeKnownKeys(keys []knownhosts.KnownKey) string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, fmt.Sprintf("%s %s (%s:%d)", k.Key.Type(), ssh.FingerprintSHA256(k.Key), k.Filename, k.Line))
	}
	slices.Sort(out)
	return strings.Join(out, ", ")
}
