package skillchain

import (
	"crypto/ed25519"

	"github.com/bri1545/SkillChain/pkg/solana"
)

const (
	AddValidatorInstructionArgsSize = 32 // validator_address
)

type AddValidatorInstructionArgs struct {
	ValidatorAddress ed25519.PublicKey
}

type AddValidatorInstructionAccounts struct {
	Validator        ed25519.PublicKey
	ValidatorAddress ed25519.PublicKey
	Authority        ed25519.PublicKey
	Registry         ed25519.PublicKey
}

func NewAddValidatorInstruction(
	accounts *AddValidatorInstructionAccounts,
	args *AddValidatorInstructionArgs,
) solana.Instruction {
	var offset int

	// Serialize instruction arguments
	data := make([]byte, 8+AddValidatorInstructionArgsSize)

	putInstructionType(data, InstructionTypeAddValidator, &offset)
	putKey(data, args.ValidatorAddress, &offset)

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
				PublicKey:  accounts.ValidatorAddress,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Authority,
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

func DecompileAddValidatorInstruction(ix solana.Instruction) (*AddValidatorInstructionAccounts, *AddValidatorInstructionArgs, error) {
	if err := checkInstruction(ix, InstructionTypeAddValidator, 4); err != nil {
		return nil, nil, err
	}
	if len(ix.Data) != 8+AddValidatorInstructionArgsSize {
		return nil, nil, ErrInvalidInstructionData
	}

	offset := 8
	var args AddValidatorInstructionArgs
	getKey(ix.Data, &args.ValidatorAddress, &offset)

	return &AddValidatorInstructionAccounts{
		Validator:        ix.Accounts[0].PublicKey,
		ValidatorAddress: ix.Accounts[1].PublicKey,
		Authority:        ix.Accounts[2].PublicKey,
		Registry:         ix.Accounts[3].PublicKey,
	}, &args, nil
}
