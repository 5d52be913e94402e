package skillchain

import (
	"crypto/ed25519"

	"github.com/bri1545/SkillChain/pkg/solana"
)

const (
	SetValidatorStatusInstructionArgsSize = 1 // is_active
)

type SetValidatorStatusInstructionArgs struct {
	IsActive bool
}

type SetValidatorStatusInstructionAccounts struct {
	Validator ed25519.PublicKey
	Authority ed25519.PublicKey
	Registry  ed25519.PublicKey
}

func NewSetValidatorStatusInstruction(
	accounts *SetValidatorStatusInstructionAccounts,
	args *SetValidatorStatusInstructionArgs,
) solana.Instruction {
	var offset int

	// Serialize instruction arguments
	data := make([]byte, 8+SetValidatorStatusInstructionArgsSize)

	putInstructionType(data, InstructionTypeSetValidatorStatus, &offset)
	putBool(data, args.IsActive, &offset)

	return solana.Instruction{
		Program: PROGRAM_ADDRESS,

		// Instruction args
		Data: data,

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.Validator,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Authority,
				IsWritable: false,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.Registry,
				IsWritable: false,
				IsSigner:   false,
			},
		},
	}
}

func DecompileSetValidatorStatusInstruction(ix solana.Instruction) (*SetValidatorStatusInstructionAccounts, *SetValidatorStatusInstructionArgs, error) {
	if err := checkInstruction(ix, InstructionTypeSetValidatorStatus, 3); err != nil {
		return nil, nil, err
	}
	if len(ix.Data) != 8+SetValidatorStatusInstructionArgsSize {
		return nil, nil, ErrInvalidInstructionData
	}

	offset := 8
	var args SetValidatorStatusInstructionArgs
	getBool(ix.Data, &args.IsActive, &offset)

	return &SetValidatorStatusInstructionAccounts{
		Validator: ix.Accounts[0].PublicKey,
		Authority: ix.Accounts[1].PublicKey,
		Registry:  ix.Accounts[2].PublicKey,
	}, &args, nil
}
