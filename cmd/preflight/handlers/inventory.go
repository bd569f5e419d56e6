package handlers

import (
	"context"
	"path/filepath"
	"time"

	"github.com/go-logr/logr"

	"github.com/imamik/preflight/internal/config"
	"github.com/imamik/preflight/internal/inventory"
)

// Inventory handles the inventory command.
//
// An empty path falls back to PREFLIGHT_INVENTORY and then inventory.yml.
// A file that cannot be parsed is returned as *inventory.ParseError.
func Inventory(ctx context.Context, path string, out Output) error {
	if path == "" {
		path = config.LoadSettings().InventoryPath
	}
	log := logr.FromContextOrDiscard(ctx).WithName("inventory")
	log.V(1).Info("validating inventory", "path", path)
	if filepath.Base(path) == config.ExampleInventoryFile {
		log.Info("checking the example inventory, placeholders will be reported", "path", path)
	}

	start := time.Now()
	res, err := inventory.Validate(path)
	if err != nil {
		return err
	}
	log.V(1).Info("inventory checked", "entries", len(res.Entries), "failures", len(res.Failures()))

	return out.emit(ctx, "inventory", res, time.Since(start), nil)
}
