package sshcheck

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/go-logr/logr"

	"github.com/imamik/preflight/internal/config"
	"github.com/imamik/preflight/internal/inventory"
	"github.com/imamik/preflight/internal/util/netutil"
)

// ErrNoTargets is returned when there is nothing to probe.
var ErrNoTargets = errors.New("no target hosts found")

// TargetGroups are the inventory groups whose hosts are probed.
var TargetGroups = []string{inventory.GroupMasters, inventory.GroupWorkers}

// Target is a host to probe.
type Target struct {
	Name    string
	Address string
	Port    int
}

// Addr returns host:port.
func (t Target) Addr() string {
	return netutil.JoinHostPort(t.Address, t.Port)
}

// TargetsFromInventory returns the masters and workers that have an
// ansible_host, sorted by name. A host with an invalid ansible_port is
// probed on the default port and the fallback is logged.
func TargetsFromInventory(ctx context.Context, inv *inventory.Inventory) ([]Target, error) {
	log := logr.FromContextOrDiscard(ctx)
	var out []Target
	for _, h := range inv.Hosts(TargetGroups...) {
		if h.Vars.Address == "" {
			continue
		}
		port, err := h.SSHPort(config.DefaultSSHPort)
		if err != nil {
			log.Info("using the default SSH port", "host", h.Name, "port", port, "reason", err.Error())
		}
		out = append(out, Target{
			Name:    h.Name,
			Address: h.Vars.Address,
			Port:    port,
		})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w in groups %v", ErrNoTargets, TargetGroups)
	}
	slices.SortFunc(out, func(a, b Target) int { return cmp.Compare(a.Name, b.Name) })
	return out, nil
}

// ParseTargets parses host[:port] arguments. Each target is named after
// its argument.
func ParseTargets(args []string) ([]Target, error) {
	if len(args) == 0 {
		return nil, ErrNoTargets
	}
	out := make([]Target, 0, len(args))
	for _, a := range args {
		host, port, err := netutil.SplitHostPort(a, config.DefaultSSHPort)
		if err != nil {
			return nil, err
		}
		out = append(out, Target{Name: a, Address: host, Port: port})
	}
	return out, nil
}
