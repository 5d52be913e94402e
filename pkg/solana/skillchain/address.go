package skillchain

import (
	"crypto/ed25519"

	"github.com/bri1545/SkillChain/pkg/solana"
)

var (
	SkillRegistryPrefix  = []byte("skill_registry")
	ValidatorPrefix      = []byte("validator")
	UserProfilePrefix    = []byte("user_profile")
	EscrowPrefix         = []byte("escrow")
	SkillTokenMintPrefix = []byte("skill_token_mint")
)

func GetSkillRegistryAddress() (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		PROGRAM_ID,
		SkillRegistryPrefix,
	)
}

type GetValidatorAddressArgs struct {
	Validator ed25519.PublicKey
}

func GetValidatorAddress(args *GetValidatorAddressArgs) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		PROGRAM_ID,
		ValidatorPrefix,
		args.Validator,
	)
}

type GetUserProfileAddressArgs struct {
	Owner ed25519.PublicKey
}

func GetUserProfileAddress(args *GetUserProfileAddressArgs) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		PROGRAM_ID,
		UserProfilePrefix,
		args.Owner,
	)
}

type GetEscrowAddressArgs struct {
	TestId string
}

// GetEscrowAddress derives the escrow address for a test. Test ids longer than
// the 32 byte seed limit cannot be derived.
func GetEscrowAddress(args *GetEscrowAddressArgs) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		PROGRAM_ID,
		EscrowPrefix,
		[]byte(args.TestId),
	)
}

func GetSkillTokenMintAddress() (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		PROGRAM_ID,
		SkillTokenMintPrefix,
	)
}
