package skillchain

import (
	"crypto/ed25519"

	"github.com/bri1545/SkillChain/pkg/solana"
)

type CreateEscrowInstructionArgs struct {
	TestId          string
	Amount          uint64
	DaoShare        uint64
	ProjectShare    uint64
	RewardPoolShare uint64
}

type CreateEscrowInstructionAccounts struct {
	Escrow ed25519.PublicKey
	Payer  ed25519.PublicKey
}

func NewCreateEscrowInstruction(
	accounts *CreateEscrowInstructionAccounts,
	args *CreateEscrowInstructionArgs,
) solana.Instruction {
	var offset int

	// Serialize instruction arguments
	data := make([]byte, 8+4+len(args.TestId)+4*8)

	putInstructionType(data, InstructionTypeCreateEscrow, &offset)
	putString(data, args.TestId, &offset)
	putUint64(data, args.Amount, &offset)
	putUint64(data, args.DaoShare, &offset)
	putUint64(data, args.ProjectShare, &offset)
	putUint64(data, args.RewardPoolShare, &offset)

	return solana.Instruction{
		Program: PROGRAM_ADDRESS,

		// Instruction args
		Data: data,

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.Escrow,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Payer,
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

func DecompileCreateEscrowInstruction(ix solana.Instruction) (*CreateEscrowInstructionAccounts, *CreateEscrowInstructionArgs, error) {
	if err := checkInstruction(ix, InstructionTypeCreateEscrow, 2); err != nil {
		return nil, nil, err
	}

	offset := 8
	var args CreateEscrowInstructionArgs
	if err := getString(ix.Data, &args.TestId, len(ix.Data), &offset); err != nil {
		return nil, nil, ErrInvalidInstructionData
	}
	if len(ix.Data) != offset+4*8 {
		return nil, nil, ErrInvalidInstructionData
	}
	getUint64(ix.Data, &args.Amount, &offset)
	getUint64(ix.Data, &args.DaoShare, &offset)
	getUint64(ix.Data, &args.ProjectShare, &offset)
	getUint64(ix.Data, &args.RewardPoolShare, &offset)

	return &CreateEscrowInstructionAccounts{
		Escrow: ix.Accounts[0].PublicKey,
		Payer:  ix.Accounts[1].PublicKey,
	}, &args, nil
}
