package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"

	"github.com/imamik/preflight/internal/config"
	"github.com/imamik/preflight/internal/inventory"
	sshplat "github.com/imamik/preflight/internal/platform/ssh"
	"github.com/imamik/preflight/internal/sshcheck"
)

// SSHOptions holds the ssh command arguments. Zero values fall back to
// config.LoadSettings.
type SSHOptions struct {
	User string
	Key  string
	// Hosts are host[:port] targets; when empty the masters and workers of
	// the inventory are checked.
	Hosts          []string
	InventoryPath  string
	KnownHostsPath string
	Timeout        time.Duration
	Concurrency    int
}

// SSH handles the ssh command.
func SSH(ctx context.Context, opts SSHOptions, out Output) error {
	settings := config.LoadSettings()
	if opts.InventoryPath == "" {
		opts.InventoryPath = settings.InventoryPath
	}
	if opts.KnownHostsPath == "" {
		opts.KnownHostsPath = settings.KnownHostsPath
	}
	if opts.Timeout <= 0 {
		opts.Timeout = settings.SSHTimeout
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = settings.SSHConcurrency
	}
	log := logr.FromContextOrDiscard(ctx).WithName("ssh")

	targets, err := resolveTargets(logr.NewContext(ctx, log), opts)
	if err != nil {
		return err
	}

	prober := &sshcheck.SSHProber{Timeout: opts.Timeout}
	if agent, err := sshplat.NewAgent(); err == nil {
		defer func() { _ = agent.Close() }()
		prober.Agent = agent
	} else {
		log.V(1).Info("no ssh-agent, using the key file only", "reason", err.Error())
	}

	v := sshcheck.New(
		sshcheck.WithProber(prober),
		sshcheck.WithConcurrency(opts.Concurrency),
		sshcheck.WithKnownHostsFiles(opts.KnownHostsPath, config.GlobalKnownHostsFile),
	)
	in := sshcheck.Input{User: opts.User, Key: opts.Key, Targets: targets}

	start := time.Now()
	res, err := v.Validate(logr.NewContext(ctx, log), in)
	if err != nil {
		return err
	}
	return out.emit(ctx, "ssh", res, time.Since(start), v.Remediation(res, in))
}

func resolveTargets(ctx context.Context, opts SSHOptions) ([]sshcheck.Target, error) {
	if len(opts.Hosts) > 0 {
		return sshcheck.ParseTargets(opts.Hosts)
	}
	doc, err := inventory.Load(opts.InventoryPath)
	if err != nil {
		return nil, err
	}
	inv, err := doc.Inventory()
	if err != nil {
		return nil, fmt.Errorf("failed to read hosts from %s: %w", opts.InventoryPath, err)
	}
	return sshcheck.TargetsFromInventory(ctx, inv)
}
