// Package logging builds the diagnostic logger. Diagnostics go to stderr so
// reports on stdout stay machine-readable.
package logging

import (
	"fmt"
	"io"
	"sync"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
)

// New returns a logger writing one line per record to w. Records logged
// with V(n) are shown when n <= verbosity; timestamps are added from
// verbosity 2 on.
func New(w io.Writer, verbosity int) logr.Logger {
	var mu sync.Mutex
	return funcr.New(func(prefix, args string) {
		mu.Lock()
		defer mu.Unlock()
		if prefix != "" {
			_, _ = fmt.Fprintf(w, "%s: %s\n", prefix, args)
			return
		}
		_, _ = fmt.Fprintln(w, args)
	}, funcr.Options{
		Verbosity:    verbosity,
		LogTimestamp: verbosity > 1,
	})
}
