package logging

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_Verbosity(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		verbosity int
		wantDebug bool
	}{
		{"default hides V(1)", 0, false},
		{"-v shows V(1)", 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			log := New(&buf, tt.verbosity).WithName("ssh")

			log.Info("checking", "hosts", 3)
			log.V(1).Info("probe finished", "host", "master1")
			log.Error(errors.New("boom"), "probe failed")

			out := buf.String()
			assert.Contains(t, out, `ssh: "level"=0 "msg"="checking" "hosts"=3`)
			assert.Contains(t, out, `"error"="boom"`)
			assert.Equal(t, tt.wantDebug, bytes.Contains(buf.Bytes(), []byte("probe finished")))
		})
	}
}
