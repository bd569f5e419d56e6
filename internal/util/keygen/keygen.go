package keygen

import (
	"crypto"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	"encoding/pem"
	"fmt"

	"golang.org/x/crypto/ssh"
)

// KeyType selects the key algorithm.
type KeyType string

const (
	// Ed25519 is the default ssh-keygen key type.
	Ed25519 KeyType = "ed25519"
	// RSA generates a 3072-bit RSA key, ssh-keygen's RSA default.
	RSA KeyType = "rsa"
)

const rsaBits = 3072

// KeyPair holds a key pair in ready-to-use formats.
type KeyPair struct {
	// PrivateKey is the private key in OpenSSH PEM format.
	PrivateKey []byte
	// PublicKey is the public key in OpenSSH authorized_keys format.
	PublicKey []byte
	// Signer signs with the private key.
	Signer ssh.Signer
}

// GenerateKeyPair generates a new key pair. A non-empty passphrase encrypts
// the private key the way ssh-keygen -N does.
func GenerateKeyPair(kind KeyType, passphrase []byte) (*KeyPair, error) {
	var priv crypto.Signer
	switch kind {
	case Ed25519:
		_, key, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return nil, fmt.Errorf("failed to generate ed25519 private key: %w", err)
		}
		priv = key
	case RSA:
		key, err := rsa.GenerateKey(rand.Reader, rsaBits)
		if err != nil {
			return nil, fmt.Errorf("failed to generate RSA private key: %w", err)
		}
		if err := key.Validate(); err != nil {
			return nil, fmt.Errorf("failed to validate RSA private key: %w", err)
		}
		priv = key
	default:
		return nil, fmt.Errorf("unsupported key type %q", kind)
	}

	signer, err := ssh.NewSignerFromSigner(priv)
	if err != nil {
		return nil, fmt.Errorf("failed to create signer: %w", err)
	}

	var block *pem.Block
	if len(passphrase) > 0 {
		block, err = ssh.MarshalPrivateKeyWithPassphrase(priv, "", passphrase)
	} else {
		block, err = ssh.MarshalPrivateKey(priv, "")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode private key: %w", err)
	}

	return &KeyPair{
		PrivateKey: pem.EncodeToMemory(block),
		PublicKey:  ssh.MarshalAuthorizedKey(signer.PublicKey()),
		Signer:     signer,
	}, nil
}
