package ssh

import "fmt"

// ConnectError reports a host that could not be reached: the TCP connect,
// the handshake or the deadline failed before authentication.
type ConnectError struct {
	Addr string
	Err  error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("failed to reach %s: %v", e.Addr, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// AuthError reports that the server rejected every offered key.
type AuthError struct {
	Addr string
	User string
	Err  error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication as %s@%s rejected: %v", e.User, e.Addr, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// ReadError reports an authenticated session in which authorized_keys could
// not be read.
type ReadError struct {
	Addr string
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("failed to read %s on %s: %v", e.Path, e.Addr, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }
