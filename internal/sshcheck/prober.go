package sshcheck

import (
	"context"
	"time"

	"golang.org/x/crypto/ssh"

	sshplat "github.com/imamik/preflight/internal/platform/ssh"
	"github.com/imamik/preflight/internal/sshkey"
)

// Prober performs the read-only probe of one target. The returned probe is
// never nil and carries the host key whenever the handshake got that far.
type Prober interface {
	Probe(ctx context.Context, target Target, user string, key *sshkey.Key) (*sshplat.Probe, error)
}

// SSHProber probes targets over real SSH connections.
type SSHProber struct {
	Timeout time.Duration
	// Agent is optional; its identities are offered after the key.
	Agent *sshplat.Agent
}

// Probe implements Prober.
func (p *SSHProber) Probe(ctx context.Context, target Target, user string, key *sshkey.Key) (*sshplat.Probe, error) {
	cfg := &sshplat.Config{
		Host:        target.Address,
		Port:        target.Port,
		User:        user,
		DialTimeout: p.Timeout,
	}
	if key.Signer != nil {
		cfg.Signers = []ssh.Signer{key.Signer}
	}
	if p.Agent != nil {
		cfg.AgentSigners = p.Agent.Signers
	}

	client, err := sshplat.NewClient(cfg)
	if err != nil {
		return &sshplat.Probe{Addr: target.Addr()}, err
	}
	return client.Probe(ctx)
}
