package sshkey

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	testutil "github.com/imamik/preflight/internal/testing"
)

func TestResolve(t *testing.T) {
	t.Parallel()
	home := filepath.FromSlash("/home/ops")
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"bare name", "id_ed25519", "/home/ops/.ssh/id_ed25519", false},
		{"tilde", "~/.ssh/cluster", "/home/ops/.ssh/cluster", false},
		{"absolute", "/etc/keys/../keys/deploy", "/etc/keys/deploy", false},
		{"relative with dir", "keys/deploy", "keys/deploy", false},
		{"surrounding space", "  id_rsa ", "/home/ops/.ssh/id_rsa", false},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Resolve(tt.in, home)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(tt.want), got)
		})
	}
}

func TestResolve_NoHome(t *testing.T) {
	t.Parallel()
	_, err := Resolve("id_ed25519", "")
	assert.Error(t, err)
	_, err = Resolve("~/id", "")
	assert.Error(t, err)

	got, err := Resolve("/abs/key", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.FromSlash("/abs/key"), got)
}

func TestLoad_PlainKey(t *testing.T) {
	t.Parallel()
	kp := testutil.NewKeyPair(t, "")
	path := testutil.WriteKeyPair(t, t.TempDir(), "id_ed25519", kp)

	key, err := Load(path)
	require.NoError(t, err)

	assert.False(t, key.Encrypted())
	assert.True(t, key.Matches(kp.Signer.PublicKey()))
	assert.True(t, strings.HasPrefix(key.Fingerprint(), "SHA256:"))
	assert.Equal(t, path+".pub", key.PublicPath())
}

func TestLoad_PassphraseFallsBackToPublicKey(t *testing.T) {
	t.Parallel()
	kp := testutil.NewKeyPair(t, "hunter2")
	dir := t.TempDir()
	path := testutil.WriteKeyPair(t, dir, "id_ed25519", kp)

	key, err := Load(path)
	require.NoError(t, err)

	assert.True(t, key.Encrypted())
	assert.True(t, key.Matches(kp.Signer.PublicKey()))
}

func TestLoad_PassphraseWithoutPublicFile(t *testing.T) {
	t.Parallel()
	kp := testutil.NewKeyPair(t, "hunter2")
	path := testutil.WriteFile(t, t.TempDir(), "id_ed25519", kp.PrivateKey)

	key, err := Load(path)
	require.NoError(t, err)
	assert.True(t, key.Matches(kp.Signer.PublicKey()))
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	garbage := testutil.WriteFile(t, dir, "garbage", []byte("not a key"))

	_, err := Load(filepath.Join(dir, "missing"))
	var notFound *KeyNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, filepath.Join(dir, "missing"), notFound.Path)

	_, err = Load(garbage)
	var format *KeyFormatError
	require.True(t, errors.As(err, &format))
	assert.Equal(t, garbage, format.Path)
	assert.Error(t, errors.Unwrap(err))

	_, err = Load(dir)
	assert.True(t, errors.As(err, &format), "directory should be a format error, got %v", err)
}

func TestKey_MatchesIgnoresOtherKeys(t *testing.T) {
	t.Parallel()
	a := testutil.NewKeyPair(t, "")
	b := testutil.NewKeyPair(t, "")
	key := &Key{PublicKey: a.Signer.PublicKey()}

	assert.True(t, key.Matches(a.Signer.PublicKey()))
	assert.False(t, key.Matches(b.Signer.PublicKey()))
	assert.False(t, key.Matches(nil))
}

func TestOpen_ResolvesAgainstHome(t *testing.T) {
	t.Parallel()
	home := t.TempDir()
	kp := testutil.NewKeyPair(t, "")
	path := testutil.WriteKeyPair(t, filepath.Join(home, ".ssh"), "id_ed25519", kp)

	key, err := Open("id_ed25519", home)
	require.NoError(t, err)
	assert.Equal(t, path, key.Path)
	assert.NotNil(t, key.Signer)

	_, err = Open("id_missing", home)
	var notFound *KeyNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, filepath.Join(home, ".ssh", "id_missing"), notFound.Path)
}
