package sshcheck

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/imamik/preflight/internal/config"
	"github.com/imamik/preflight/internal/result"
	"github.com/imamik/preflight/internal/sshkey"
)

// Remediation returns the commands an operator would run to fix the
// failures in res: ssh-copy-id for hosts missing the key, ssh-keyscan for
// hosts whose key is not trusted. Nothing is executed.
func (v *Validator) Remediation(res *result.Result, in Input) []string {
	byName := make(map[string]Target, len(in.Targets))
	for _, t := range in.Targets {
		byName[t.Name] = t
	}

	var copyID []string
	untrusted := map[int][]string{}
	for _, e := range res.Failures() {
		t, ok := byName[e.Subject]
		if !ok {
			continue
		}
		switch e.Reason {
		case result.ReasonKeyAbsent:
			copyID = append(copyID, fmt.Sprintf("ssh-copy-id -i %s%s %s@%s",
				v.publicKeyPath(in.Key), portFlag(t.Port), in.User, t.Address))
		case result.ReasonUntrustedHostKey:
			untrusted[t.Port] = append(untrusted[t.Port], t.Address)
		}
	}

	hints := copyID
	ports := make([]int, 0, len(untrusted))
	for p := range untrusted {
		ports = append(ports, p)
	}
	slices.SortFunc(ports, cmp.Compare[int])
	for _, p := range ports {
		hints = append(hints, fmt.Sprintf("ssh-keyscan -H%s %s >> %s",
			portFlag(p), strings.Join(untrusted[p], " "), v.userKnownHosts()))
	}
	return hints
}

func (v *Validator) publicKeyPath(name string) string {
	path, err := sshkey.Resolve(name, v.home)
	if err != nil {
		path = name
	}
	return path + ".pub"
}

// userKnownHosts is the first configured file that is not the global one.
func (v *Validator) userKnownHosts() string {
	for _, f := range v.knownHosts {
		if f != config.GlobalKnownHostsFile {
			return f
		}
	}
	return "~/.ssh/known_hosts"
}

func portFlag(port int) string {
	if port == 0 || port == config.DefaultSSHPort {
		return ""
	}
	return fmt.Sprintf(" -p %d", port)
}
