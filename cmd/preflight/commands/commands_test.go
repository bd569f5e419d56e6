package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"runtime"
	"testing"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/preflight/cmd/preflight/handlers"
	"github.com/imamik/preflight/internal/inventory"
	"github.com/imamik/preflight/internal/report"
	testutil "github.com/imamik/preflight/internal/testing"
)

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := Root()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(testutil.TestContext(t))
	return stdout.String(), stderr.String(), err
}

func TestRoot(t *testing.T) {
	t.Parallel()
	cmd := Root()

	require.NotNil(t, cmd)
	assert.Equal(t, "preflight", cmd.Use)
	assert.True(t, cmd.SilenceUsage)
	assert.True(t, cmd.SilenceErrors)

	subcommands := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		subcommands[sub.Name()] = true
	}
	for _, name := range []string{"inventory", "ssh", "tools", "version", "completion"} {
		assert.True(t, subcommands[name], "expected subcommand %s", name)
	}
	assert.Len(t, cmd.Commands(), 5)

	for _, flag := range []string{"verbose", "json", "no-color", "quiet", "metrics-file"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), "expected flag --%s", flag)
	}
}

func TestRoot_InstallsLogger(t *testing.T) {
	t.Parallel()
	root := Root()
	var (
		got    logr.Logger
		ctxErr error
	)
	child := &cobra.Command{
		Use: "child",
		Run: func(cmd *cobra.Command, _ []string) {
			got, ctxErr = logr.FromContext(cmd.Context())
		},
	}
	root.AddCommand(child)
	var stderr bytes.Buffer
	root.SetErr(&stderr)
	root.SetArgs([]string{"child", "-v"})

	require.NoError(t, root.ExecuteContext(context.Background()))
	require.NoError(t, ctxErr)
	got.V(1).Info("hello")
	assert.Contains(t, stderr.String(), `preflight: "level"=1 "msg"="hello"`)
}

func TestInventoryCommand(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		builder *testutil.InventoryBuilder
		args    []string
		wantErr bool
		want    string
	}{
		{"valid", testutil.ValidInventory(1), nil, false, "OK: "},
		{
			"failure",
			testutil.ValidInventory(1).WithoutHostVar(inventory.GroupMasters, "master1", inventory.FieldAddress),
			nil, true, "FAILED: ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			args := append([]string{"inventory", "-i", tt.builder.Write(t), "--no-color"}, tt.args...)

			stdout, _, err := execute(t, args...)

			if tt.wantErr {
				require.ErrorIs(t, err, handlers.ErrChecksFailed)
			} else {
				require.NoError(t, err)
			}
			assert.Contains(t, stdout, tt.want)
		})
	}
}

func TestInventoryCommand_Quiet(t *testing.T) {
	t.Parallel()
	stdout, _, err := execute(t, "inventory", "-i", testutil.ValidInventory(1).Write(t), "--quiet")

	require.NoError(t, err)
	assert.NotContains(t, stdout, "[OK]")
}

func TestInventoryCommand_JSON(t *testing.T) {
	t.Parallel()
	stdout, _, err := execute(t, "--json", "inventory", "--inventory", testutil.MinimalInventory().Write(t))
	require.NoError(t, err)

	var doc report.Document
	require.NoError(t, json.Unmarshal([]byte(stdout), &doc))
	assert.True(t, doc.OK)
	assert.Positive(t, doc.Summary.Pass)
}

func TestInventoryCommand_RejectsArgs(t *testing.T) {
	t.Parallel()
	_, _, err := execute(t, "inventory", "extra")
	require.Error(t, err)
}

func TestSSHCommand_Flags(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"user required", []string{"ssh", "-k", "id_ed25519", "--hosts", "10.0.10.11"}, `"user"`},
		{"key required", []string{"ssh", "-u", "ubuntu", "--hosts", "10.0.10.11"}, `"key"`},
		{
			"inventory and hosts exclusive",
			[]string{"ssh", "-u", "ubuntu", "-k", "id_ed25519", "-i", "inventory.yml", "--hosts", "10.0.10.11"},
			"inventory",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, _, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSSHCommand_Hosts(t *testing.T) {
	t.Parallel()
	kp := testutil.NewKeyPair(t, "")
	keyPath := testutil.WriteKeyPair(t, t.TempDir(), "id_ed25519", kp)
	srv := testutil.NewSSHServer(t, testutil.WithAuthorizedKey(kp.PublicKey))
	known := testutil.WriteKnownHosts(t, testutil.KnownHostsLine(srv.Addr, srv.HostKey, false))

	stdout, _, err := execute(t, "ssh", "-u", "ubuntu", "-k", keyPath,
		"--hosts", srv.Addr, "--known-hosts", known, "--timeout", "3s", "--concurrency", "1")

	require.NoError(t, err)
	assert.Contains(t, stdout, "is trusted")
}

func TestVersion(t *testing.T) {
	t.Parallel()
	stdout, _, err := execute(t, "version")

	require.NoError(t, err)
	assert.Contains(t, stdout, "preflight "+version+" (commit "+commit)
	assert.Contains(t, stdout, runtime.GOOS+"/"+runtime.GOARCH)
}

func TestHelpText_DescribesPreflight(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		cmd  *cobra.Command
		want []string
	}{
		{"version", Version(), []string{"preflight report", "same binary"}},
		{"completion", Completion(), []string{"--inventory", "--hosts", "preflight completion bash"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			for _, w := range tt.want {
				assert.Contains(t, tt.cmd.Long, w)
			}
			assert.NotContains(t, tt.cmd.Long, "k8zner")
		})
	}
}

func TestCompletion(t *testing.T) {
	t.Parallel()
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			t.Parallel()
			stdout, _, err := execute(t, "completion", shell)
			require.NoError(t, err)
			assert.Contains(t, stdout, "preflight")
		})
	}

	_, _, err := execute(t, "completion", "invalid")
	assert.Error(t, err)
	_, _, err = execute(t, "completion")
	assert.Error(t, err)
}
