package solana

import (
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

const SignatureSize = ed25519.SignatureSize

var (
	ErrInvalidSignature = errors.New("invalid signature")
)

// Signature is an ed25519 signature over an instruction message.
type Signature [SignatureSize]byte

// SignInstruction signs the instruction's message with the provided key.
func SignInstruction(key ed25519.PrivateKey, ix Instruction) Signature {
	var sig Signature
	copy(sig[:], ed25519.Sign(key, ix.Message()))
	return sig
}

// VerifyInstruction verifies that sig was produced by signer over the
// instruction's message.
func VerifyInstruction(signer ed25519.PublicKey, ix Instruction, sig Signature) error {
	if len(signer) != ed25519.PublicKeySize {
		return ErrInvalidPublicKey
	}

	if !ed25519.Verify(signer, ix.Message(), sig[:]) {
		return ErrInvalidSignature
	}
	return nil
}

func (s Signature) ToBase58() string {
	return base58.Encode(s[:])
}

// SignatureFromBase58 decodes a base58 encoded signature.
func SignatureFromBase58(value string) (Signature, error) {
	var sig Signature

	decoded, err := base58.Decode(value)
	if err != nil {
		return sig, errors.Wrap(err, "error decoding signature as base58")
	}

	if len(decoded) != SignatureSize {
		return sig, errors.Errorf("invalid signature length: %d", len(decoded))
	}

	copy(sig[:], decoded)
	return sig, nil
}
