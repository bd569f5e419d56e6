package ssh

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"strings"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/imamik/preflight/internal/config"
	"github.com/imamik/preflight/internal/util/netutil"
)

const (
	defaultPort        = config.DefaultSSHPort
	defaultDialTimeout = 5 * time.Second
	maxAuthorizedKeys  = 1 << 20
)

// Config holds SSH probe configuration.
type Config struct {
	Host string
	Port int
	User string

	// Signers are offered first, in order. With no signers at all the probe
	// still records the host key and then fails with *AuthError.
	Signers []ssh.Signer

	// AgentSigners, if set, is called per connection to add agent identities.
	AgentSigners func() ([]ssh.Signer, error)

	// DialTimeout bounds the TCP connect and the SSH handshake, and
	// separately the authorized_keys read. If zero, defaultDialTimeout is used.
	DialTimeout time.Duration

	// AuthorizedKeysPath is read relative to the login directory. If empty,
	// config.AuthorizedKeysPath is used.
	AuthorizedKeysPath string
}

// Client probes a single host. It creates a connection per Probe call.
type Client struct {
	config *Config
	addr   string
}

// Probe is what a successful or partial probe observed.
type Probe struct {
	Addr string
	// HostKey is nil if the handshake did not get as far as key exchange.
	HostKey ssh.PublicKey
	// AuthorizedKeys holds the parsed entries of the remote file.
	AuthorizedKeys []ssh.PublicKey
	// Via is "sftp" or "exec".
	Via string
}

// NewClient validates cfg and applies defaults.
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Host == "" {
		return nil, fmt.Errorf("config host cannot be empty")
	}
	if cfg.User == "" {
		return nil, fmt.Errorf("config user cannot be empty")
	}

	// Copy config to avoid mutating caller's struct
	configCopy := *cfg
	if configCopy.Port == 0 {
		configCopy.Port = defaultPort
	}
	if configCopy.DialTimeout == 0 {
		configCopy.DialTimeout = defaultDialTimeout
	}
	if configCopy.AuthorizedKeysPath == "" {
		configCopy.AuthorizedKeysPath = config.AuthorizedKeysPath
	}

	return &Client{
		config: &configCopy,
		addr:   netutil.JoinHostPort(configCopy.Host, configCopy.Port),
	}, nil
}

// Probe connects, authenticates and reads authorized_keys. The returned
// Probe is never nil; on error it carries whatever was observed before the
// failure, in particular the host key.
func (c *Client) Probe(ctx context.Context) (*Probe, error) {
	res := &Probe{Addr: c.addr}

	conn, err := netutil.Dial(ctx, c.addr, c.config.DialTimeout)
	if err != nil {
		return res, &ConnectError{Addr: c.addr, Err: err}
	}
	defer func() { _ = conn.Close() }()
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	_ = conn.SetDeadline(time.Now().Add(c.config.DialTimeout))
	clientConfig := &ssh.ClientConfig{
		User: c.config.User,
		Auth: []ssh.AuthMethod{ssh.PublicKeysCallback(c.signers)},
		HostKeyCallback: func(_ string, _ net.Addr, key ssh.PublicKey) error {
			res.HostKey = key
			return nil
		},
		Timeout: c.config.DialTimeout,
	}

	sconn, chans, reqs, err := ssh.NewClientConn(conn, c.addr, clientConfig)
	if err != nil {
		switch {
		case ctx.Err() != nil:
			return res, &ConnectError{Addr: c.addr, Err: ctx.Err()}
		case res.HostKey != nil && isAuthFailure(err):
			return res, &AuthError{Addr: c.addr, User: c.config.User, Err: err}
		default:
			return res, &ConnectError{Addr: c.addr, Err: err}
		}
	}
	client := ssh.NewClient(sconn, chans, reqs)
	defer func() { _ = client.Close() }()

	_ = conn.SetDeadline(time.Now().Add(c.config.DialTimeout))
	data, via, err := c.readAuthorizedKeys(client)
	if err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		return res, &ReadError{Addr: c.addr, Path: c.config.AuthorizedKeysPath, Err: err}
	}
	res.Via = via
	res.AuthorizedKeys = ParseAuthorizedKeys(data)
	return res, nil
}

// signers never fails: an unusable agent only means fewer identities.
func (c *Client) signers() ([]ssh.Signer, error) {
	out := append([]ssh.Signer(nil), c.config.Signers...)
	if c.config.AgentSigners != nil {
		if agentSigners, err := c.config.AgentSigners(); err == nil {
			out = append(out, agentSigners...)
		}
	}
	return out, nil
}

// readAuthorizedKeys reads the file over SFTP, or with cat when SFTP is not
// available. A file that does not exist reads as empty.
func (c *Client) readAuthorizedKeys(client *ssh.Client) ([]byte, string, error) {
	path := c.config.AuthorizedKeysPath

	data, sftpErr := readSFTP(client, path)
	switch {
	case sftpErr == nil:
		return data, "sftp", nil
	case errors.Is(sftpErr, fs.ErrNotExist):
		return nil, "sftp", nil
	}

	data, err := c.runCommand(client, "cat "+path)
	if err != nil {
		return nil, "", fmt.Errorf("sftp: %v; exec: %w", sftpErr, err)
	}
	return data, "exec", nil
}

func readSFTP(client *ssh.Client, path string) ([]byte, error) {
	sc, err := sftp.NewClient(client)
	if err != nil {
		return nil, fmt.Errorf("failed to start sftp session: %w", err)
	}
	defer func() { _ = sc.Close() }()

	f, err := sc.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return io.ReadAll(io.LimitReader(f, maxAuthorizedKeys))
}

// runCommand executes a command on an established SSH session and returns
// its stdout.
func (c *Client) runCommand(client *ssh.Client, command string) ([]byte, error) {
	session, err := client.NewSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create SSH session on %s: %w", c.config.Host, err)
	}
	defer func() { _ = session.Close() }()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr
	if err := session.Run(command); err != nil {
		return nil, fmt.Errorf("command %q failed on %s: %w: %s",
			command, c.config.Host, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// ParseAuthorizedKeys returns the keys of an authorized_keys file. Options,
// comments and unparseable lines are skipped.
func ParseAuthorizedKeys(data []byte) []ssh.PublicKey {
	var keys []ssh.PublicKey
	for len(data) > 0 {
		pub, _, _, rest, err := ssh.ParseAuthorizedKey(data)
		if err != nil {
			break
		}
		keys = append(keys, pub)
		data = rest
	}
	return keys
}

func isAuthFailure(err error) bool {
	return strings.Contains(err.Error(), "unable to authenticate")
}
