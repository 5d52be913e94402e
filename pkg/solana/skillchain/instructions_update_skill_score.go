package skillchain

import (
	"crypto/ed25519"

	"github.com/bri1545/SkillChain/pkg/solana"
)

const (
	UpdateSkillScoreInstructionArgsSize = 2 // score_delta
)

type UpdateSkillScoreInstructionArgs struct {
	ScoreDelta int16
}

type UpdateSkillScoreInstructionAccounts struct {
	UserProfile ed25519.PublicKey
	User        ed25519.PublicKey
	Validator   ed25519.PublicKey
}

func NewUpdateSkillScoreInstruction(
	accounts *UpdateSkillScoreInstructionAccounts,
	args *UpdateSkillScoreInstructionArgs,
) solana.Instruction {
	var offset int

	// Serialize instruction arguments
	data := make([]byte, 8+UpdateSkillScoreInstructionArgsSize)

	putInstructionType(data, InstructionTypeUpdateSkillScore, &offset)
	putInt16(data, args.ScoreDelta, &offset)

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
				IsWritable: false,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.Validator,
				IsWritable: false,
				IsSigner:   false,
			},
		},
	}
}

func DecompileUpdateSkillScoreInstruction(ix solana.Instruction) (*UpdateSkillScoreInstructionAccounts, *UpdateSkillScoreInstructionArgs, error) {
	if err := checkInstruction(ix, InstructionTypeUpdateSkillScore, 3); err != nil {
		return nil, nil, err
	}
	if len(ix.Data) != 8+UpdateSkillScoreInstructionArgsSize {
		return nil, nil, ErrInvalidInstructionData
	}

	offset := 8
	var args UpdateSkillScoreInstructionArgs
	getInt16(ix.Data, &args.ScoreDelta, &offset)

	return &UpdateSkillScoreInstructionAccounts{
		UserProfile: ix.Accounts[0].PublicKey,
		User:        ix.Accounts[1].PublicKey,
		Validator:   ix.Accounts[2].PublicKey,
	}, &args, nil
}
