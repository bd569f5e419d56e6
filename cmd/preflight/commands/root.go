// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument parsing,
// flag binding, and validation. Command execution is delegated to handler
// functions in the handlers package.
package commands

import (
	"os"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/imamik/preflight/cmd/preflight/handlers"
	"github.com/imamik/preflight/internal/logging"
	"github.com/imamik/preflight/internal/report"
)

// globalFlags are shared by every check command.
type globalFlags struct {
	verbosity   int
	json        bool
	noColor     bool
	quiet       bool
	metricsFile string
}

// output builds the handler output for cmd.
func (g *globalFlags) output(cmd *cobra.Command) handlers.Output {
	w := cmd.OutOrStdout()
	color := false
	if f, ok := w.(*os.File); ok && !g.noColor {
		color = report.IsTerminal(f)
	}
	return handlers.Output{
		Writer:      w,
		JSON:        g.json,
		Color:       color,
		Quiet:       g.quiet,
		MetricsFile: g.metricsFile,
	}
}

// Root returns the root command for the preflight CLI.
//
// The root command installs the logger into the command context and
// organizes the command hierarchy.
func Root() *cobra.Command {
	g := &globalFlags{}

	cmd := &cobra.Command{
		Use:           "preflight",
		Short:         "Validate cluster hosts before Kubernetes bootstrap",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			log := logging.New(cmd.ErrOrStderr(), g.verbosity).WithName("preflight")
			cmd.SetContext(logr.NewContext(cmd.Context(), log))
		},
	}

	flags := cmd.PersistentFlags()
	flags.CountVarP(&g.verbosity, "verbose", "v", "Increase log verbosity (repeatable)")
	flags.BoolVar(&g.json, "json", false, "Output results as JSON")
	flags.BoolVar(&g.noColor, "no-color", false, "Disable coloured output")
	flags.BoolVarP(&g.quiet, "quiet", "q", false, "Only show warnings and failures")
	flags.StringVar(&g.metricsFile, "metrics-file", "", "Write check outcomes in Prometheus text format to this file")

	// Checks
	cmd.AddCommand(Inventory(g))
	cmd.AddCommand(SSH(g))
	cmd.AddCommand(Tools(g))

	// Utility commands
	cmd.AddCommand(Version())
	cmd.AddCommand(Completion())

	return cmd
}
