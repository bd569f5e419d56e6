package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/preflight/internal/result"
)

func sampleResult() *result.Result {
	res := result.New("Inventory inventory.yml")
	res.Pass("master1", "ansible_host", "ok")
	res.Pass("master2", "ansible_host", "ok")
	res.Warn("workers", "all.children.workers", result.ReasonMissingGroup, "no workers")
	res.Fail("master2", "ansible_user", result.ReasonMissingField, "missing")
	return res
}

func TestRecorder_Observe(t *testing.T) {
	t.Parallel()
	r := NewRecorder()

	r.Observe("inventory", sampleResult(), 150*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.entries.WithLabelValues("inventory", "PASS", "")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.entries.WithLabelValues("inventory", "WARN", "MissingGroup")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.entries.WithLabelValues("inventory", "FAIL", "MissingField")))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.success.WithLabelValues("inventory")))
	assert.InDelta(t, 0.15, testutil.ToFloat64(r.duration.WithLabelValues("inventory")), 0.001)
}

func TestRecorder_SuccessGauge(t *testing.T) {
	t.Parallel()
	r := NewRecorder()
	res := result.New("ssh")
	res.Pass("master1", "known_hosts", "trusted")

	r.Observe("ssh", res, time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.success.WithLabelValues("ssh")))
}

func TestRecorder_WriteFile(t *testing.T) {
	t.Parallel()
	r := NewRecorder()
	r.Observe("inventory", sampleResult(), time.Second)
	path := filepath.Join(t.TempDir(), "preflight.prom")

	require.NoError(t, r.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "# TYPE preflight_check_entries_total counter")
	assert.Contains(t, out, `preflight_check_entries_total{check="inventory",reason="MissingField",status="FAIL"} 1`)
	assert.True(t, strings.Contains(out, `preflight_check_success{check="inventory"} 0`))
}
