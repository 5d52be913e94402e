package main

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeypairFileRoundTrip(t *testing.T) {
	_, key, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "id.json")
	require.NoError(t, writeKeypair(path, key, false))

	loaded, err := loadKeypair(path)
	require.NoError(t, err)
	assert.True(t, key.Equal(loaded))

	assert.Error(t, writeKeypair(path, key, false))
	assert.NoError(t, writeKeypair(path, key, true))
}

func TestLoadKeypair_Invalid(t *testing.T) {
	dir := t.TempDir()

	_, err := loadKeypair(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	for name, contents := range map[string]string{
		"not_json.json":     "hello",
		"too_short.json":    "[1,2,3]",
		"out_of_range.json": "[" + strings.Repeat("256,", 63) + "256]",
	} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

		_, err := loadKeypair(path)
		assert.Error(t, err, name)
	}

	// Public key half doesn't match the seed
	_, key, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	tampered := append(ed25519.PrivateKey{}, key...)
	tampered[63] ^= 0xff

	path := filepath.Join(dir, "tampered.json")
	require.NoError(t, writeKeypair(path, tampered, true))
	_, err = loadKeypair(path)
	assert.Error(t, err)
}

func TestKeygenCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "validator.json")

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"keygen", "--outfile", path, "--env-file", ""})
	require.NoError(t, cmd.Execute())

	key, err := loadKeypair(path)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "public key: ")
	assert.NotContains(t, out.String(), "private key")
	assert.Len(t, key, ed25519.PrivateKeySize)
}
