package sshkey

import "fmt"

// KeyNotFoundError reports a private key file that does not exist.
type KeyNotFoundError struct {
	Path string
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("SSH private key not found: %s", e.Path)
}

// KeyFormatError reports a key file that exists but cannot be read or
// parsed.
type KeyFormatError struct {
	Path string
	Err  error
}

func (e *KeyFormatError) Error() string {
	return fmt.Sprintf("invalid SSH key %s: %v", e.Path, e.Err)
}

func (e *KeyFormatError) Unwrap() error {
	return e.Err
}
