package handlers

import (
	"context"
	"time"

	"github.com/imamik/preflight/internal/util/prerequisites"
)

// Tools handles the tools command.
func Tools(ctx context.Context, out Output) error {
	start := time.Now()
	res := prerequisites.Check(ctx, prerequisites.DefaultTools())
	return out.emit(ctx, "tools", res, time.Since(start), nil)
}
