package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Settings holds the environment-derived defaults for a preflight run.
type Settings struct {
	InventoryPath  string        // Inventory checked when --inventory is not given
	SSHTimeout     time.Duration // Bound on dial and handshake per host
	SSHConcurrency int           // Number of hosts probed at once
	KnownHostsPath string        // Control host known_hosts registry
}

// LoadSettings loads run settings from environment variables.
// If an environment variable is not set or invalid, a default value is used.
//
// Environment Variables:
//   - PREFLIGHT_INVENTORY (default: inventory.yml)
//   - PREFLIGHT_SSH_TIMEOUT (default: 5s)
//   - PREFLIGHT_SSH_CONCURRENCY (default: 4)
//   - PREFLIGHT_KNOWN_HOSTS (default: ~/.ssh/known_hosts)
func LoadSettings() *Settings {
	return &Settings{
		InventoryPath:  parseString("PREFLIGHT_INVENTORY", DefaultInventoryFile),
		SSHTimeout:     parseDuration("PREFLIGHT_SSH_TIMEOUT", 5*time.Second),
		SSHConcurrency: parseInt("PREFLIGHT_SSH_CONCURRENCY", 4),
		KnownHostsPath: parseString("PREFLIGHT_KNOWN_HOSTS", defaultKnownHostsPath()),
	}
}

// defaultKnownHostsPath returns ~/.ssh/known_hosts for the invoking user.
func defaultKnownHostsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".ssh", "known_hosts")
	}
	return filepath.Join(home, ".ssh", "known_hosts")
}

func parseString(envVar, defaultVal string) string {
	if val := os.Getenv(envVar); val != "" {
		return val
	}
	return defaultVal
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set, fails to parse or is not positive, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}

	return d
}

// parseInt parses a positive integer from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}

	return i
}
