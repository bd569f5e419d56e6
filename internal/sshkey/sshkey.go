package sshkey

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/ssh"
)

// Key is a loaded SSH identity.
type Key struct {
	// Path is the private key file.
	Path string
	// PublicKey is derived from the private key, or read from Path+".pub"
	// when the private key is encrypted.
	PublicKey ssh.PublicKey
	// Comment is the comment of the .pub file, if any.
	Comment string
	// Signer is nil when the private key is passphrase-protected.
	Signer ssh.Signer
}

// Fingerprint returns the SHA256 fingerprint as printed by ssh-keygen -l.
func (k *Key) Fingerprint() string {
	return ssh.FingerprintSHA256(k.PublicKey)
}

// PublicPath returns the path of the co-located public key.
func (k *Key) PublicPath() string {
	return k.Path + ".pub"
}

// Encrypted reports whether the private key needs a passphrase.
func (k *Key) Encrypted() bool {
	return k.Signer == nil
}

// Matches reports whether pub is the same key, comparing type and key blob.
func (k *Key) Matches(pub ssh.PublicKey) bool {
	return pub != nil && pub.Type() == k.PublicKey.Type() &&
		string(pub.Marshal()) == string(k.PublicKey.Marshal())
}

// Resolve turns a key name into a file path. "~" is expanded to home and a
// bare file name resolves to home/.ssh/name.
func Resolve(name, home string) (string, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return "", errors.New("SSH key name is empty")
	case name == "~" || strings.HasPrefix(name, "~/"):
		if home == "" {
			return "", fmt.Errorf("cannot expand %q: home directory unknown", name)
		}
		return filepath.Join(home, strings.TrimPrefix(name, "~")), nil
	case filepath.IsAbs(name) || strings.ContainsRune(name, filepath.Separator):
		return filepath.Clean(name), nil
	default:
		if home == "" {
			return "", fmt.Errorf("cannot resolve %q: home directory unknown", name)
		}
		return filepath.Join(home, ".ssh", name), nil
	}
}

// Open resolves name against home and loads the key.
func Open(name, home string) (*Key, error) {
	path, err := Resolve(name, home)
	if err != nil {
		return nil, err
	}
	return Load(path)
}

// Load reads the private key at path. A missing file yields
// *KeyNotFoundError; an unreadable or malformed key yields *KeyFormatError.
func Load(path string) (*Key, error) {
	// #nosec G304 -- path is the operator-supplied key file
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &KeyNotFoundError{Path: path}
	}
	if err != nil {
		return nil, &KeyFormatError{Path: path, Err: err}
	}

	key := &Key{Path: path}
	signer, err := ssh.ParsePrivateKey(data)
	var missing *ssh.PassphraseMissingError
	switch {
	case err == nil:
		key.Signer = signer
		key.PublicKey = signer.PublicKey()
		if pub, comment, perr := readPublic(key.PublicPath()); perr == nil && key.Matches(pub) {
			key.Comment = comment
		}
	case errors.As(err, &missing):
		pub, comment, perr := readPublic(key.PublicPath())
		switch {
		case perr == nil:
			key.PublicKey = pub
			key.Comment = comment
		case missing.PublicKey != nil:
			key.PublicKey = missing.PublicKey
		default:
			return nil, &KeyFormatError{
				Path: path,
				Err:  fmt.Errorf("key is passphrase-protected and %s is unusable: %w", key.PublicPath(), perr),
			}
		}
	default:
		return nil, &KeyFormatError{Path: path, Err: err}
	}
	return key, nil
}

func readPublic(path string) (ssh.PublicKey, string, error) {
	// #nosec G304 -- sibling of the operator-supplied key file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	pub, comment, _, _, err := ssh.ParseAuthorizedKey(data)
	if err != nil {
		return nil, "", fmt.Errorf("failed to parse public key: %w", err)
	}
	return pub, comment, nil
}
