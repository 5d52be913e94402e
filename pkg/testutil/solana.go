package testutil

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/require"
)

// Keypair is a generated ed25519 keypair
type Keypair struct {
	Public  ed25519.PublicKey
	Private ed25519.PrivateKey
}

func GenerateSolanaKeypair(t *testing.T) ed25519.PrivateKey {
	_, p, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	return p
}

func GenerateSolanaKeys(t *testing.T, n int) []ed25519.PublicKey {
	keys := make([]ed25519.PublicKey, n)
	for i := 0; i < n; i++ {
		p, _, err := ed25519.GenerateKey(nil)
		require.NoError(t, err)
		keys[i] = p
	}
	return keys
}

func NewRandomKeypair(t *testing.T) *Keypair {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	return &Keypair{
		Public:  pub,
		Private: priv,
	}
}
