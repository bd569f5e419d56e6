// Package config defines the runtime settings shared by the preflight
// commands.
//
// Defaults come from the environment (see [LoadSettings]) and are
// overridden by command-line flags in cmd/preflight.
package config
