package skillchain

import (
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	skillchain_program "github.com/bri1545/SkillChain/pkg/solana/skillchain"
)

const (
	AddressKindRegistry  = "registry"
	AddressKindValidator = "validator"
	AddressKindProfile   = "profile"
	AddressKindEscrow    = "escrow"
	AddressKindMint      = "mint"
)

var (
	ErrUnknownAddressKind = errors.New("unknown address kind")
	ErrAddressKeyRequired = errors.New("address kind requires a key")
)

// DeriveAddress derives a program address by kind. Validator and profile
// addresses take a base58 wallet key, and escrow addresses take a test id.
func DeriveAddress(kind, key string) (ed25519.PublicKey, uint8, error) {
	switch kind {
	case AddressKindRegistry:
		return skillchain_program.GetSkillRegistryAddress()
	case AddressKindMint:
		return skillchain_program.GetSkillTokenMintAddress()
	case AddressKindEscrow:
		if len(key) == 0 {
			return nil, 0, ErrAddressKeyRequired
		}
		return skillchain_program.GetEscrowAddress(&skillchain_program.GetEscrowAddressArgs{
			TestId: key,
		})
	case AddressKindValidator, AddressKindProfile:
		if len(key) == 0 {
			return nil, 0, ErrAddressKeyRequired
		}

		wallet, err := base58.Decode(key)
		if err != nil || len(wallet) != ed25519.PublicKeySize {
			return nil, 0, errors.New("key is not a public key")
		}

		if kind == AddressKindValidator {
			return skillchain_program.GetValidatorAddress(&skillchain_program.GetValidatorAddressArgs{
				Validator: wallet,
			})
		}
		return skillchain_program.GetUserProfileAddress(&skillchain_program.GetUserProfileAddressArgs{
			Owner: wallet,
		})
	}

	return nil, 0, ErrUnknownAddressKind
}
