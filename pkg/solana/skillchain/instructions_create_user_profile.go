package skillchain

import (
	"crypto/ed25519"

	"github.com/bri1545/SkillChain/pkg/solana"
)

type CreateUserProfileInstructionAccounts struct {
	UserProfile ed25519.PublicKey
	User        ed25519.PublicKey
	Registry    ed25519.PublicKey
}

func NewCreateUserProfileInstruction(
	accounts *CreateUserProfileInstructionAccounts,
) solana.Instruction {
	var offset int

	data := make([]byte, 8)

	putInstructionType(data, InstructionTypeCreateUserProfile, &offset)

	return solana.Instruction{
		Program: PROGRAM_ADDRESS,

		// Instruction args
		Data: data,

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.UserProfile,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.User,
				IsWritable: true,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.Registry,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  SYSTEM_PROGRAM_ID,
				IsWritable: false,
				IsSigner:   false,
			},
		},
	}
}

func DecompileCreateUserProfileInstruction(ix solana.Instruction) (*CreateUserProfileInstructionAccounts, error) {
	if err := checkInstruction(ix, InstructionTypeCreateUserProfile, 3); err != nil {
		return nil, err
	}

	return &CreateUserProfileInstructionAccounts{
		UserProfile: ix.Accounts[0].PublicKey,
		User:        ix.Accounts[1].PublicKey,
		Registry:    ix.Accounts[2].PublicKey,
	}, nil
}
