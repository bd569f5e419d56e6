// Package main is the entry point for the preflight CLI.
//
// preflight checks the hosts of a Kubernetes cluster before bootstrap: it
// validates the Ansible inventory and verifies SSH trust between the
// control host and every master and worker. It never changes anything on
// the hosts.
//
// Commands: inventory, ssh, version, completion.
//
// For detailed usage information, run:
//
//	preflight --help
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/imamik/preflight/cmd/preflight/commands"
	"github.com/imamik/preflight/cmd/preflight/handlers"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := commands.Root().ExecuteContext(ctx)
	stop()

	if err != nil {
		// The report already explains failed checks.
		if !errors.Is(err, handlers.ErrChecksFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
