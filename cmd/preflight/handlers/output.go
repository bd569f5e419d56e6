// Package handlers runs the preflight checks behind the CLI commands.
//
// Handlers resolve defaults, run a validator, render its result and record
// metrics. They return ErrChecksFailed when a check reported a FAIL so the
// caller can set the exit status.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-logr/logr"

	"github.com/imamik/preflight/internal/metrics"
	"github.com/imamik/preflight/internal/report"
	"github.com/imamik/preflight/internal/result"
)

// ErrChecksFailed is returned when at least one check failed.
var ErrChecksFailed = errors.New("preflight checks failed")

// Output controls how results are reported.
type Output struct {
	Writer io.Writer
	JSON   bool
	Color  bool
	Quiet  bool
	// MetricsFile, when set, receives the outcome in Prometheus text format.
	MetricsFile string
}

func (o Output) emit(ctx context.Context, check string, res *result.Result, took time.Duration, hints []string) error {
	if o.JSON {
		if err := report.WriteJSON(o.Writer, hints, res); err != nil {
			return err
		}
	} else {
		p := report.NewPrinter(o.Writer, report.Options{Color: o.Color, Quiet: o.Quiet})
		p.Result(res)
		p.Hints(hints)
	}

	if o.MetricsFile != "" {
		rec := metrics.NewRecorder()
		rec.Observe(check, res, took)
		if err := rec.WriteFile(o.MetricsFile); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
		logr.FromContextOrDiscard(ctx).V(1).Info("metrics written", "path", o.MetricsFile)
	}

	if !res.OK() {
		return ErrChecksFailed
	}
	return nil
}
