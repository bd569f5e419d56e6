package sshcheck

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/imamik/preflight/internal/config"
	"github.com/imamik/preflight/internal/result"
)

func TestRemediation(t *testing.T) {
	t.Parallel()
	v := New(WithHomeDir("/home/ops"), WithKnownHostsFiles("/home/ops/.ssh/known_hosts", config.GlobalKnownHostsFile))
	in := Input{
		User: "ubuntu",
		Key:  "id_ed25519",
		Targets: []Target{
			{Name: "master1", Address: "10.0.10.11", Port: 22},
			{Name: "master2", Address: "10.0.10.12", Port: 22},
			{Name: "worker1", Address: "10.0.10.21", Port: 2222},
			{Name: "worker2", Address: "10.0.10.22", Port: 22},
		},
	}
	res := result.New("ssh")
	res.Pass("master1", FieldAuthorizedKeys, "ok")
	res.Fail("master1", FieldKnownHosts, result.ReasonUntrustedHostKey, "no entry")
	res.Fail("master2", FieldAuthorizedKeys, result.ReasonKeyAbsent, "absent")
	res.Fail("master2", FieldKnownHosts, result.ReasonUntrustedHostKey, "no entry")
	res.Fail("worker1", FieldAuthorizedKeys, result.ReasonKeyAbsent, "rejected")
	res.Fail("worker1", FieldKnownHosts, result.ReasonUntrustedHostKey, "no entry")
	res.Fail("worker2", FieldAuthorizedKeys, result.ReasonUnreachable, "timeout")
	res.Warn("worker2", FieldKnownHosts, result.ReasonUnreachable, "unverified")

	hints := v.Remediation(res, in)

	assert.Equal(t, []string{
		"ssh-copy-id -i /home/ops/.ssh/id_ed25519.pub ubuntu@10.0.10.12",
		"ssh-copy-id -i /home/ops/.ssh/id_ed25519.pub -p 2222 ubuntu@10.0.10.21",
		"ssh-keyscan -H 10.0.10.11 10.0.10.12 >> /home/ops/.ssh/known_hosts",
		"ssh-keyscan -H -p 2222 10.0.10.21 >> /home/ops/.ssh/known_hosts",
	}, hints)
}

func TestRemediation_NothingToFix(t *testing.T) {
	t.Parallel()
	v := New(WithHomeDir("/home/ops"))
	res := result.New("ssh")
	res.Pass("master1", FieldAuthorizedKeys, "ok")
	res.Pass("master1", FieldKnownHosts, "trusted")

	assert.Empty(t, v.Remediation(res, Input{User: "ubuntu", Key: "id_ed25519"}))
}
