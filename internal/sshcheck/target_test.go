package sshcheck

import (
	"bytes"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/preflight/internal/inventory"
	"github.com/imamik/preflight/internal/logging"
	testutil "github.com/imamik/preflight/internal/testing"
)

func loadInventory(t *testing.T, b *testutil.InventoryBuilder) *inventory.Inventory {
	t.Helper()
	doc, err := inventory.Parse("inventory.yml", b.Build())
	require.NoError(t, err)
	inv, err := doc.Inventory()
	require.NoError(t, err)
	return inv
}

func TestTargetsFromInventory(t *testing.T) {
	t.Parallel()
	inv := loadInventory(t, testutil.ValidInventory(2).
		WithHostVar(inventory.GroupWorkers, "worker2", inventory.FieldPort, 2222).
		WithoutHostVar(inventory.GroupMasters, "master2", inventory.FieldAddress))

	targets, err := TargetsFromInventory(testutil.TestContext(t), inv)
	require.NoError(t, err)

	assert.Equal(t, []Target{
		{Name: "master1", Address: "10.0.10.11", Port: 22},
		{Name: "worker1", Address: "10.0.10.21", Port: 22},
		{Name: "worker2", Address: "10.0.10.22", Port: 2222},
	}, targets)
}

func TestTargetsFromInventory_NoTargets(t *testing.T) {
	t.Parallel()
	inv := loadInventory(t, testutil.NewInventoryBuilder().
		WithHost(inventory.GroupBastion, "bastion", testutil.BastionVars("203.0.113.10", "10.0.10.10")))

	_, err := TargetsFromInventory(testutil.TestContext(t), inv)
	assert.ErrorIs(t, err, ErrNoTargets)
}

func TestTargetsFromInventory_InvalidPortLogged(t *testing.T) {
	t.Parallel()
	inv := loadInventory(t, testutil.MinimalInventory().
		WithHostVar(inventory.GroupMasters, "master2", inventory.FieldPort, "ssh"))
	var logs bytes.Buffer
	ctx := logr.NewContext(testutil.TestContext(t), logging.New(&logs, 0))

	targets, err := TargetsFromInventory(ctx, inv)
	require.NoError(t, err)

	require.Len(t, targets, 2)
	assert.Equal(t, 22, targets[1].Port)
	assert.Contains(t, logs.String(), `"msg"="using the default SSH port" "host"="master2"`)
	assert.Contains(t, logs.String(), `not a valid TCP port`)
}

func TestParseTargets(t *testing.T) {
	t.Parallel()
	targets, err := ParseTargets([]string{"10.0.10.11", "[::1]:2222"})
	require.NoError(t, err)
	assert.Equal(t, []Target{
		{Name: "10.0.10.11", Address: "10.0.10.11", Port: 22},
		{Name: "[::1]:2222", Address: "::1", Port: 2222},
	}, targets)
	assert.Equal(t, "[::1]:2222", targets[1].Addr())

	_, err = ParseTargets(nil)
	assert.ErrorIs(t, err, ErrNoTargets)
	_, err = ParseTargets([]string{"host:99999"})
	assert.Error(t, err)
}
