package skillchain

import (
	"crypto/ed25519"

	"github.com/bri1545/SkillChain/pkg/solana"
)

type DistributeRewardsInstructionArgs struct {
	TestId string
	Amount uint64
}

type DistributeRewardsInstructionAccounts struct {
	Escrow          ed25519.PublicKey
	DaoTreasury     ed25519.PublicKey
	ProjectTreasury ed25519.PublicKey
	RewardPool      ed25519.PublicKey
	Authority       ed25519.PublicKey
	Registry        ed25519.PublicKey
}

func NewDistributeRewardsInstruction(
	accounts *DistributeRewardsInstructionAccounts,
	args *DistributeRewardsInstructionArgs,
) solana.Instruction {
	var offset int

	// Serialize instruction arguments
	data := make([]byte, 8+4+len(args.TestId)+8)

	putInstructionType(data, InstructionTypeDistributeRewards, &offset)
	putString(data, args.TestId, &offset)
	putUint64(data, args.Amount, &offset)

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
				PublicKey:  accounts.DaoTreasury,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.ProjectTreasury,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.RewardPool,
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
			{
				PublicKey:  SYSTEM_PROGRAM_ID,
				IsWritable: false,
				IsSigner:   false,
			},
		},
	}
}

func DecompileDistributeRewardsInstruction(ix solana.Instruction) (*DistributeRewardsInstructionAccounts, *DistributeRewardsInstructionArgs, error) {
	if err := checkInstruction(ix, InstructionTypeDistributeRewards, 6); err != nil {
		return nil, nil, err
	}

	offset := 8
	var args DistributeRewardsInstructionArgs
	if err := getString(ix.Data, &args.TestId, len(ix.Data), &offset); err != nil {
		return nil, nil, ErrInvalidInstructionData
	}
	if len(ix.Data) != offset+8 {
		return nil, nil, ErrInvalidInstructionData
	}
	getUint64(ix.Data, &args.Amount, &offset)

	return &DistributeRewardsInstructionAccounts{
		Escrow:          ix.Accounts[0].PublicKey,
		DaoTreasury:     ix.Accounts[1].PublicKey,
		ProjectTreasury: ix.Accounts[2].PublicKey,
		RewardPool:      ix.Accounts[3].PublicKey,
		Authority:       ix.Accounts[4].PublicKey,
		Registry:        ix.Accounts[5].PublicKey,
	}, &args, nil
}
