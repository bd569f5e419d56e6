package ssh

import (
	"bytes"
	"errors"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"

	testutil "github.com/imamik/preflight/internal/testing"
	"github.com/imamik/preflight/internal/util/netutil"
)

func TestNewClient_Defaults(t *testing.T) {
	t.Parallel()
	kp := testutil.NewKeyPair(t, "")
	cfg := &Config{Host: "10.0.10.11", User: "ubuntu", Signers: []ssh.Signer{kp.Signer}}

	client, err := NewClient(cfg)
	require.NoError(t, err)

	assert.Equal(t, defaultPort, client.config.Port)
	assert.Equal(t, defaultDialTimeout, client.config.DialTimeout)
	assert.Equal(t, ".ssh/authorized_keys", client.config.AuthorizedKeysPath)
	assert.Equal(t, "10.0.10.11:22", client.addr)
	assert.Zero(t, cfg.Port, "caller config must not be mutated")
}

func TestNewClient_Validation(t *testing.T) {
	t.Parallel()
	kp := testutil.NewKeyPair(t, "")
	signers := []ssh.Signer{kp.Signer}
	tests := []struct {
		name string
		cfg  *Config
	}{
		{"nil", nil},
		{"no host", &Config{User: "ubuntu", Signers: signers}},
		{"no user", &Config{Host: "10.0.0.1", Signers: signers}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewClient(tt.cfg)
			assert.Error(t, err)
		})
	}
}

func newProbeClient(t *testing.T, host string, port int, signers ...ssh.Signer) *Client {
	t.Helper()
	client, err := NewClient(&Config{
		Host:        host,
		Port:        port,
		User:        "ubuntu",
		Signers:     signers,
		DialTimeout: 2 * time.Second,
	})
	require.NoError(t, err)
	return client
}

func TestProbe_SFTP(t *testing.T) {
	t.Parallel()
	kp := testutil.NewKeyPair(t, "")
	other := testutil.NewKeyPair(t, "")
	srv := testutil.NewSSHServer(t,
		testutil.WithAuthorizedKey(other.PublicKey),
		testutil.WithAuthorizedKey(kp.PublicKey))

	probe, err := newProbeClient(t, srv.Host, srv.Port, kp.Signer).Probe(testutil.TestContext(t))
	require.NoError(t, err)

	assert.Equal(t, "sftp", probe.Via)
	require.NotNil(t, probe.HostKey)
	assert.Equal(t, srv.HostKey.Marshal(), probe.HostKey.Marshal())
	require.Len(t, probe.AuthorizedKeys, 2)
	assert.Equal(t, kp.Signer.PublicKey().Marshal(), probe.AuthorizedKeys[1].Marshal())
}

func TestProbe_ExecFallback(t *testing.T) {
	t.Parallel()
	kp := testutil.NewKeyPair(t, "")
	srv := testutil.NewSSHServer(t, testutil.WithAuthorizedKey(kp.PublicKey), testutil.WithoutSFTP())

	probe, err := newProbeClient(t, srv.Host, srv.Port, kp.Signer).Probe(testutil.TestContext(t))
	require.NoError(t, err)

	assert.Equal(t, "exec", probe.Via)
	require.Len(t, probe.AuthorizedKeys, 1)
	assert.Equal(t, kp.Signer.PublicKey().Marshal(), probe.AuthorizedKeys[0].Marshal())
}

func TestProbe_MissingAuthorizedKeysReadsEmpty(t *testing.T) {
	t.Parallel()
	kp := testutil.NewKeyPair(t, "")
	srv := testutil.NewSSHServer(t, testutil.WithAcceptAnyKey())
	require.NoError(t, os.Remove(filepath.Join(srv.Home, ".ssh", "authorized_keys")))

	probe, err := newProbeClient(t, srv.Host, srv.Port, kp.Signer).Probe(testutil.TestContext(t))
	require.NoError(t, err)

	assert.Equal(t, "sftp", probe.Via)
	assert.Empty(t, probe.AuthorizedKeys)
}

func TestProbe_AuthRejected(t *testing.T) {
	t.Parallel()
	kp := testutil.NewKeyPair(t, "")
	other := testutil.NewKeyPair(t, "")
	srv := testutil.NewSSHServer(t, testutil.WithAuthorizedKey(other.PublicKey))

	probe, err := newProbeClient(t, srv.Host, srv.Port, kp.Signer).Probe(testutil.TestContext(t))

	var authErr *AuthError
	require.True(t, errors.As(err, &authErr), "expected AuthError, got %v", err)
	assert.Equal(t, "ubuntu", authErr.User)
	require.NotNil(t, probe.HostKey, "host key should be captured before auth")
	assert.Equal(t, srv.HostKey.Marshal(), probe.HostKey.Marshal())
}

func TestProbe_NoSignersStillCapturesHostKey(t *testing.T) {
	t.Parallel()
	kp := testutil.NewKeyPair(t, "")
	srv := testutil.NewSSHServer(t, testutil.WithAuthorizedKey(kp.PublicKey))

	probe, err := newProbeClient(t, srv.Host, srv.Port).Probe(testutil.TestContext(t))

	var authErr *AuthError
	require.True(t, errors.As(err, &authErr), "expected AuthError, got %v", err)
	require.NotNil(t, probe.HostKey)
}

func TestProbe_AgentSigners(t *testing.T) {
	t.Parallel()
	kp := testutil.NewKeyPair(t, "")
	srv := testutil.NewSSHServer(t, testutil.WithAuthorizedKey(kp.PublicKey))

	client, err := NewClient(&Config{
		Host:         srv.Host,
		Port:         srv.Port,
		User:         "ubuntu",
		AgentSigners: func() ([]ssh.Signer, error) { return []ssh.Signer{kp.Signer}, nil },
		DialTimeout:  2 * time.Second,
	})
	require.NoError(t, err)

	probe, err := client.Probe(testutil.TestContext(t))
	require.NoError(t, err)
	assert.Len(t, probe.AuthorizedKeys, 1)
}

func TestProbe_AgentFailureFallsBackToKey(t *testing.T) {
	t.Parallel()
	kp := testutil.NewKeyPair(t, "")
	srv := testutil.NewSSHServer(t, testutil.WithAuthorizedKey(kp.PublicKey))

	client, err := NewClient(&Config{
		Host:         srv.Host,
		Port:         srv.Port,
		User:         "ubuntu",
		Signers:      []ssh.Signer{kp.Signer},
		AgentSigners: func() ([]ssh.Signer, error) { return nil, ErrNoAgent },
		DialTimeout:  2 * time.Second,
	})
	require.NoError(t, err)

	_, err = client.Probe(testutil.TestContext(t))
	assert.NoError(t, err)
}

func TestProbe_Unreachable(t *testing.T) {
	t.Parallel()
	kp := testutil.NewKeyPair(t, "")
	host, port, err := netutil.SplitHostPort(testutil.ClosedAddr(t), 22)
	require.NoError(t, err)

	probe, err := newProbeClient(t, host, port, kp.Signer).Probe(testutil.TestContext(t))

	var connErr *ConnectError
	require.True(t, errors.As(err, &connErr), "expected ConnectError, got %v", err)
	assert.Nil(t, probe.HostKey)
}

func TestProbe_HandshakeTimeout(t *testing.T) {
	t.Parallel()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	var (
		mu    sync.Mutex
		conns []net.Conn
	)
	t.Cleanup(func() {
		_ = ln.Close()
		mu.Lock()
		defer mu.Unlock()
		for _, c := range conns {
			_ = c.Close()
		}
	})
	go func() {
		// Accept and stay silent.
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			conns = append(conns, conn)
			mu.Unlock()
		}
	}()

	kp := testutil.NewKeyPair(t, "")
	host, port, err := netutil.SplitHostPort(ln.Addr().String(), 22)
	require.NoError(t, err)
	client, err := NewClient(&Config{
		Host: host, Port: port, User: "ubuntu",
		Signers:     []ssh.Signer{kp.Signer},
		DialTimeout: 200 * time.Millisecond,
	})
	require.NoError(t, err)

	start := time.Now()
	_, err = client.Probe(testutil.TestContext(t))

	var connErr *ConnectError
	require.True(t, errors.As(err, &connErr), "expected ConnectError, got %v", err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestParseAuthorizedKeys(t *testing.T) {
	t.Parallel()
	a := testutil.NewKeyPair(t, "")
	b := testutil.NewKeyPair(t, "")

	var data bytes.Buffer
	data.WriteString("# managed by ansible\n\n")
	data.WriteString(`no-port-forwarding,command="/bin/true" `)
	data.Write(a.PublicKey)
	data.WriteString("garbage line\n")
	data.Write(bytes.TrimSpace(b.PublicKey))
	data.WriteString(" ops@laptop\n")

	keys := ParseAuthorizedKeys(data.Bytes())

	require.Len(t, keys, 2)
	assert.Equal(t, a.Signer.PublicKey().Marshal(), keys[0].Marshal())
	assert.Equal(t, b.Signer.PublicKey().Marshal(), keys[1].Marshal())
}
