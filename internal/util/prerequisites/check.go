// Package prerequisites checks that the control host has the client tools
// the cluster bootstrap relies on.
package prerequisites

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/imamik/preflight/internal/result"
)

// FieldPath is the field reported for every tool.
const FieldPath = "PATH"

const versionTimeout = 2 * time.Second

// Tool represents a client tool that may be required.
type Tool struct {
	// Name is the binary name to look for in PATH.
	Name string

	// Required tools FAIL when missing; the others only WARN.
	Required bool

	// Purpose explains what the tool is used for.
	Purpose string

	// Package names what to install on Debian and Ubuntu.
	Package string
}

// DefaultTools returns the tools checked by default.
func DefaultTools() []Tool {
	return []Tool{
		{
			Name:     "ansible-playbook",
			Required: true,
			Purpose:  "runs the cluster bootstrap playbooks",
			Package:  "ansible-core",
		},
		{
			Name:     "ssh",
			Required: true,
			Purpose:  "connects to the cluster hosts",
			Package:  "openssh-client",
		},
		{
			Name:    "ssh-keyscan",
			Purpose: "collects host keys for known_hosts",
			Package: "openssh-client",
		},
		{
			Name:    "ssh-copy-id",
			Purpose: "installs public keys on the cluster hosts",
			Package: "openssh-client",
		},
	}
}

// Check looks every tool up in PATH and reports one entry per tool, in
// order. Versions are read on a best-effort basis.
func Check(ctx context.Context, tools []Tool) *result.Result {
	res := result.New("Control host tools")

	for _, tool := range tools {
		path, err := exec.LookPath(tool.Name)
		if err != nil {
			msg := fmt.Sprintf("%s not found in PATH; it %s (install %s)", tool.Name, tool.Purpose, tool.Package)
			if tool.Required {
				res.Fail(tool.Name, FieldPath, result.ReasonToolMissing, msg)
			} else {
				res.Warn(tool.Name, FieldPath, result.ReasonToolMissing, msg)
			}
			continue
		}

		msg := "found at " + path
		if v := toolVersion(ctx, path); v != "" {
			msg += " (" + v + ")"
		}
		res.Pass(tool.Name, FieldPath, msg)
	}

	return res
}

// toolVersion returns the first line printed by "path --version", or ""
// when the tool does not answer in time.
func toolVersion(ctx context.Context, path string) string {
	ctx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()

	// #nosec G204 - path comes from exec.LookPath on a fixed tool name
	out, err := exec.CommandContext(ctx, path, "--version").CombinedOutput()
	if err != nil && len(out) == 0 {
		return ""
	}
	line, _, _ := strings.Cut(string(out), "\n")
	return strings.TrimSpace(line)
}
