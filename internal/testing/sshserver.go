package testing

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

// SSHServer is an in-process SSH server. Public key auth is checked against
// Home/.ssh/authorized_keys, the sftp subsystem is served read-only from
// Home, and exec supports "cat <path>".
type SSHServer struct {
	Addr    string
	Host    string
	Port    int
	HostKey ssh.PublicKey
	Home    string

	authorized [][]byte
	acceptAny  bool
	noSFTP     bool

	listener net.Listener
	config   *ssh.ServerConfig
	wg       sync.WaitGroup
	mu       sync.Mutex
	conns    []net.Conn
}

// SSHServerOption configures an SSHServer.
type SSHServerOption func(*SSHServer)

// WithAuthorizedKey adds an authorized_keys line (OpenSSH format).
func WithAuthorizedKey(line []byte) SSHServerOption {
	return func(s *SSHServer) {
		s.authorized = append(s.authorized, bytes.TrimSpace(line))
	}
}

// WithAcceptAnyKey accepts every public key regardless of authorized_keys.
func WithAcceptAnyKey() SSHServerOption {
	return func(s *SSHServer) { s.acceptAny = true }
}

// WithoutSFTP rejects the sftp subsystem so clients have to fall back to exec.
func WithoutSFTP() SSHServerOption {
	return func(s *SSHServer) { s.noSFTP = true }
}

// NewSSHServer starts a server on a loopback port. It is stopped when the
// test finishes.
func NewSSHServer(t *testing.T, opts ...SSHServerOption) *SSHServer {
	t.Helper()

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate host key: %v", err)
	}
	signer, err := ssh.NewSignerFromKey(priv)
	if err != nil {
		t.Fatalf("failed to create host key signer: %v", err)
	}

	s := &SSHServer{HostKey: signer.PublicKey(), Home: t.TempDir()}
	for _, opt := range opts {
		opt(s)
	}

	var keys []byte
	for _, line := range s.authorized {
		keys = append(keys, line...)
		keys = append(keys, '\n')
	}
	WriteFile(t, s.Home, ".ssh/authorized_keys", keys)

	s.config = &ssh.ServerConfig{PublicKeyCallback: s.checkKey}
	s.config.AddHostKey(signer)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	s.listener = ln
	s.Addr = ln.Addr().String()
	host, port, _ := net.SplitHostPort(s.Addr)
	s.Host = host
	s.Port, _ = strconv.Atoi(port)

	s.wg.Add(1)
	go s.serve()
	t.Cleanup(s.close)
	return s
}

func (s *SSHServer) close() {
	_ = s.listener.Close()
	s.mu.Lock()
	for _, c := range s.conns {
		_ = c.Close()
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *SSHServer) serve() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		s.mu.Lock()
		s.conns = append(s.conns, conn)
		s.mu.Unlock()

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handle(conn)
		}()
	}
}

func (s *SSHServer) handle(conn net.Conn) {
	sconn, chans, reqs, err := ssh.NewServerConn(conn, s.config)
	if err != nil {
		_ = conn.Close()
		return
	}
	defer func() { _ = sconn.Close() }()
	go ssh.DiscardRequests(reqs)

	for nc := range chans {
		if nc.ChannelType() != "session" {
			_ = nc.Reject(ssh.UnknownChannelType, "only session channels are supported")
			continue
		}
		ch, requests, err := nc.Accept()
		if err != nil {
			continue
		}
		go s.session(ch, requests)
	}
}

func (s *SSHServer) session(ch ssh.Channel, requests <-chan *ssh.Request) {
	defer func() { _ = ch.Close() }()
	for req := range requests {
		switch req.Type {
		case "subsystem":
			var payload struct{ Name string }
			if err := ssh.Unmarshal(req.Payload, &payload); err != nil || payload.Name != "sftp" || s.noSFTP {
				_ = req.Reply(false, nil)
				continue
			}
			_ = req.Reply(true, nil)
			srv, err := sftp.NewServer(ch, sftp.ReadOnly(), sftp.WithServerWorkingDirectory(s.Home))
			if err != nil {
				return
			}
			_ = srv.Serve()
			return
		case "exec":
			var payload struct{ Command string }
			if err := ssh.Unmarshal(req.Payload, &payload); err != nil {
				_ = req.Reply(false, nil)
				continue
			}
			_ = req.Reply(true, nil)
			status := s.exec(ch, payload.Command)
			_, _ = ch.SendRequest("exit-status", false, ssh.Marshal(struct{ Status uint32 }{status}))
			return
		default:
			if req.WantReply {
				_ = req.Reply(false, nil)
			}
		}
	}
}

func (s *SSHServer) exec(ch ssh.Channel, command string) uint32 {
	fields := strings.Fields(command)
	if len(fields) != 2 || fields[0] != "cat" {
		_, _ = fmt.Fprintf(ch.Stderr(), "%s: command not found\n", command)
		return 127
	}
	data, err := os.ReadFile(filepath.Join(s.Home, fields[1]))
	if err != nil {
		_, _ = fmt.Fprintf(ch.Stderr(), "cat: %s: No such file or directory\n", fields[1])
		return 1
	}
	_, _ = ch.Write(data)
	return 0
}

func (s *SSHServer) checkKey(meta ssh.ConnMetadata, key ssh.PublicKey) (*ssh.Permissions, error) {
	if s.acceptAny {
		return &ssh.Permissions{}, nil
	}
	data, err := os.ReadFile(filepath.Join(s.Home, ".ssh", "authorized_keys"))
	if err != nil {
		return nil, err
	}
	for len(data) > 0 {
		pub, _, _, rest, err := ssh.ParseAuthorizedKey(data)
		if err != nil {
			break
		}
		if bytes.Equal(pub.Marshal(), key.Marshal()) {
			return &ssh.Permissions{}, nil
		}
		data = rest
	}
	return nil, fmt.Errorf("public key not authorized for %q", meta.User())
}
