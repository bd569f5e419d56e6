package sshcheck

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/imamik/preflight/internal/config"
	sshplat "github.com/imamik/preflight/internal/platform/ssh"
	"github.com/imamik/preflight/internal/result"
	"github.com/imamik/preflight/internal/sshkey"
	"github.com/imamik/preflight/internal/util/async"
)

// Fields reported for every target.
const (
	FieldAuthorizedKeys = "authorized_keys"
	FieldKnownHosts     = "known_hosts"
)

const (
	defaultConcurrency = 4
	defaultTimeout     = 5 * time.Second
)

// Input describes one SSH trust check run.
type Input struct {
	User string
	// Key names the private key, as ansible_ssh_private_key_file would.
	Key     string
	Targets []Target
}

// Validator checks SSH trust between the control host and targets.
type Validator struct {
	prober      Prober
	knownHosts  []string
	concurrency int
	home        string
}

// Option configures a Validator.
type Option func(*Validator)

// WithProber replaces the SSH prober.
func WithProber(p Prober) Option {
	return func(v *Validator) { v.prober = p }
}

// WithKnownHostsFiles sets the known_hosts files consulted. Files that do not
// exist are ignored.
func WithKnownHostsFiles(paths ...string) Option {
	return func(v *Validator) { v.knownHosts = paths }
}

// WithConcurrency bounds the number of hosts probed at once. 1 probes
// sequentially.
func WithConcurrency(n int) Option {
	return func(v *Validator) {
		if n > 0 {
			v.concurrency = n
		}
	}
}

// WithHomeDir sets the directory "~" and bare key names resolve against.
func WithHomeDir(dir string) Option {
	return func(v *Validator) { v.home = dir }
}

// New creates a Validator that probes over SSH with a 5s timeout, four
// hosts at a time, trusting ~/.ssh/known_hosts and the global known_hosts.
func New(opts ...Option) *Validator {
	home, _ := os.UserHomeDir()
	v := &Validator{
		prober:      &SSHProber{Timeout: defaultTimeout},
		concurrency: defaultConcurrency,
		home:        home,
	}
	if home != "" {
		v.knownHosts = []string{filepath.Join(home, ".ssh", "known_hosts"), config.GlobalKnownHostsFile}
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate checks every target and returns one authorized_keys and one
// known_hosts entry per target, sorted by target name.
//
// Invalid input, *sshkey.KeyNotFoundError, *sshkey.KeyFormatError and
// unreadable known_hosts files are returned as errors before any host is
// contacted.
func (v *Validator) Validate(ctx context.Context, in Input) (*result.Result, error) {
	if strings.TrimSpace(in.User) == "" {
		return nil, errors.New("ssh user cannot be empty")
	}
	if len(in.Targets) == 0 {
		return nil, ErrNoTargets
	}

	key, err := sshkey.Open(in.Key, v.home)
	if err != nil {
		return nil, err
	}
	db, err := loadKnownHosts(v.knownHosts)
	if err != nil {
		return nil, err
	}

	log := logr.FromContextOrDiscard(ctx)
	log.V(1).Info("checking SSH trust",
		"user", in.User, "key", key.Path, "fingerprint", key.Fingerprint(),
		"targets", len(in.Targets), "concurrency", v.concurrency, "knownHosts", db.files)

	checks := async.Collect(ctx, in.Targets, v.concurrency, func(ctx context.Context, t Target) *result.Result {
		return v.checkTarget(ctx, t, in.User, key, db)
	})
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("ssh check interrupted: %w", err)
	}

	res := result.New(fmt.Sprintf("SSH trust for %s (%s)", in.User, key.Fingerprint()))
	for _, c := range checks {
		res.Merge(c)
	}
	res.SortBySubject()
	return res, nil
}

func (v *Validator) checkTarget(ctx context.Context, t Target, user string, key *sshkey.Key, db *hostKeyDB) *result.Result {
	log := logr.FromContextOrDiscard(ctx).WithValues("host", t.Name, "addr", t.Addr())

	start := time.Now()
	probe, err := v.prober.Probe(ctx, t, user, key)
	if err != nil {
		log.V(1).Info("probe failed", "duration", time.Since(start), "error", err.Error())
	} else {
		log.V(1).Info("probe succeeded", "duration", time.Since(start), "via", probe.Via)
	}

	res := result.New(t.Name)
	res.Add(authorizedKeysEntry(t, user, key, probe, err))
	res.Add(knownHostsEntry(t, probe, db))
	return res
}

func authorizedKeysEntry(t Target, user string, key *sshkey.Key, probe *sshplat.Probe, err error) result.Entry {
	e := result.Entry{Subject: t.Name, Field: FieldAuthorizedKeys}

	var (
		authErr *sshplat.AuthError
		readErr *sshplat.ReadError
	)
	switch {
	case err == nil && slices.ContainsFunc(probe.AuthorizedKeys, key.Matches):
		e.Status = result.StatusPass
		e.Message = fmt.Sprintf("public key %s is authorized for %s", key.Fingerprint(), user)
	case err == nil:
		e.Status, e.Reason = result.StatusFail, result.ReasonKeyAbsent
		e.Message = fmt.Sprintf("public key %s is not in %s's authorized_keys on %s", key.Fingerprint(), user, t.Addr())
	case errors.As(err, &authErr):
		e.Status, e.Reason = result.StatusFail, result.ReasonKeyAbsent
		e.Message = fmt.Sprintf("%s rejected public key %s for %s", t.Addr(), key.Fingerprint(), user)
		if key.Encrypted() {
			e.Message += "; the private key is passphrase-protected, load it into ssh-agent"
		}
	case errors.As(err, &readErr):
		e.Status, e.Reason = result.StatusWarn, result.ReasonKeyAbsent
		e.Message = fmt.Sprintf("logged in as %s but could not read authorized_keys: %v", user, readErr.Err)
	default:
		e.Status, e.Reason = result.StatusFail, result.ReasonUnreachable
		e.Message = fmt.Sprintf("cannot reach %s: %v", t.Addr(), unwrapConnect(err))
	}
	return e
}

func knownHostsEntry(t Target, probe *sshplat.Probe, db *hostKeyDB) result.Entry {
	e := result.Entry{Subject: t.Name, Field: FieldKnownHosts}

	if probe == nil || probe.HostKey == nil {
		if db.known(t) {
			e.Status, e.Reason = result.StatusWarn, result.ReasonUnreachable
			e.Message = fmt.Sprintf("known_hosts has an entry for %s but the host key could not be verified", t.Addr())
		} else {
			e.Status, e.Reason = result.StatusFail, result.ReasonUntrustedHostKey
			e.Message = fmt.Sprintf("no known_hosts entry for %s", t.Addr())
		}
		return e
	}

	presented := fmt.Sprintf("%s %s", probe.HostKey.Type(), ssh.FingerprintSHA256(probe.HostKey))
	err := db.check(t, probe.HostKey)

	var (
		keyErr  *knownhosts.KeyError
		revoked *knownhosts.RevokedError
	)
	switch {
	case err == nil:
		e.Status = result.StatusPass
		e.Message = fmt.Sprintf("host key %s is trusted", presented)
	case errors.As(err, &revoked):
		e.Status, e.Reason = result.StatusFail, result.ReasonUntrustedHostKey
		e.Message = fmt.Sprintf("host key %s is revoked (%s:%d)", presented, revoked.Revoked.Filename, revoked.Revoked.Line)
	case errors.As(err, &keyErr) && len(keyErr.Want) == 0:
		e.Status, e.Reason = result.StatusFail, result.ReasonUntrustedHostKey
		e.Message = fmt.Sprintf("no known_hosts entry for %s; host presented %s", t.Addr(), presented)
	case errors.As(err, &keyErr):
		e.Status, e.Reason = result.StatusFail, result.ReasonUntrustedHostKey
		e.Message = fmt.Sprintf("host key mismatch for %s: presented %s, known_hosts has %s",
			t.Addr(), presented, describeKnownKeys(keyErr.Want))
	default:
		e.Status, e.Reason = result.StatusFail, result.ReasonUntrustedHostKey
		e.Message = fmt.Sprintf("cannot verify host key %s: %v", presented, err)
	}
	return e
}

func unwrapConnect(err error) error {
	var connErr *sshplat.ConnectError
	if errors.As(err, &connErr) {
		return connErr.Err
	}
	return err
}
