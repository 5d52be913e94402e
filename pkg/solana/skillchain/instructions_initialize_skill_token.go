package skillchain

import (
	"crypto/ed25519"

	"github.com/bri1545/SkillChain/pkg/solana"
)

type InitializeSkillTokenInstructionAccounts struct {
	SkillTokenMint ed25519.PublicKey
	Registry       ed25519.PublicKey
	Authority      ed25519.PublicKey
}

func NewInitializeSkillTokenInstruction(
	accounts *InitializeSkillTokenInstructionAccounts,
) solana.Instruction {
	var offset int

	data := make([]byte, 8)

	putInstructionType(data, InstructionTypeInitializeSkillToken, &offset)

	return solana.Instruction{
		Program: PROGRAM_ADDRESS,

		// Instruction args
		Data: data,

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.SkillTokenMint,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Registry,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Authority,
				IsWritable: true,
				IsSigner:   true,
			},
			{
				PublicKey:  SYSTEM_PROGRAM_ID,
				IsWritable: false,
				IsSigner:   false,
			},
		},
	}
}

func DecompileInitializeSkillTokenInstruction(ix solana.Instruction) (*InitializeSkillTokenInstructionAccounts, error) {
	if err := checkInstruction(ix, InstructionTypeInitializeSkillToken, 3); err != nil {
		return nil, err
	}

	return &InitializeSkillTokenInstructionAccounts{
		SkillTokenMint: ix.Accounts[0].PublicKey,
		Registry:       ix.Accounts[1].PublicKey,
		Authority:      ix.Accounts[2].PublicKey,
	}, nil
}
