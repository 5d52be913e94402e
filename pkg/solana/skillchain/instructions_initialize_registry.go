package skillchain

import (
	"crypto/ed25519"

	"github.com/bri1545/SkillChain/pkg/solana"
)

type InitializeRegistryInstructionAccounts struct {
	Registry  ed25519.PublicKey
	Authority ed25519.PublicKey
}

func NewInitializeRegistryInstruction(
	accounts *InitializeRegistryInstructionAccounts,
) solana.Instruction {
	var offset int

	data := make([]byte, 8)

	putInstructionType(data, InstructionTypeInitializeRegistry, &offset)

	return solana.Instruction{
		Program: PROGRAM_ADDRESS,

		// Instruction args
		Data: data,

		// Instruction accounts
		Accounts: []solana.AccountMeta{
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

func DecompileInitializeRegistryInstruction(ix solana.Instruction) (*InitializeRegistryInstructionAccounts, error) {
	if err := checkInstruction(ix, InstructionTypeInitializeRegistry, 2); err != nil {
		return nil, err
	}

	return &InitializeRegistryInstructionAccounts{
		Registry:  ix.Accounts[0].PublicKey,
		Authority: ix.Accounts[1].PublicKey,
	}, nil
}
