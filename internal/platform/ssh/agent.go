package ssh

import (
	"errors"
	"fmt"
	"net"
	"os"
	"sync"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
)

// ErrNoAgent is returned when SSH_AUTH_SOCK is not set.
var ErrNoAgent = errors.New("SSH_AUTH_SOCK is not set")

// Agent is a lazily connected ssh-agent shared by concurrent probes.
type Agent struct {
	socket string

	mu     sync.Mutex
	conn   net.Conn
	client agent.ExtendedAgent
}

// NewAgent returns an agent for the socket named by SSH_AUTH_SOCK.
func NewAgent() (*Agent, error) {
	sock := os.Getenv("SSH_AUTH_SOCK")
	if sock == "" {
		return nil, ErrNoAgent
	}
	return &Agent{socket: sock}, nil
}

// Signers returns the agent identities. It connects on first use.
func (a *Agent) Signers() ([]ssh.Signer, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.client == nil {
		conn, err := net.Dial("unix", a.socket)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to ssh-agent: %w", err)
		}
		a.conn = conn
		a.client = agent.NewClient(conn)
	}
	signers, err := a.client.Signers()
	if err != nil {
		return nil, fmt.Errorf("failed to list ssh-agent keys: %w", err)
	}
	return signers, nil
}

// Close releases the agent connection.
func (a *Agent) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.conn == nil {
		return nil
	}
	err := a.conn.Close()
	a.conn, a.client = nil, nil
	return err
}
