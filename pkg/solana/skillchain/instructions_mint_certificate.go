package skillchain

import (
	"crypto/ed25519"

	"github.com/bri1545/SkillChain/pkg/solana"
)

const (
	ValidatorSignatureSize = 64
)

type MintCertificateInstructionArgs struct {
	SkillId            string
	Score              uint8
	ValidatorSignature [ValidatorSignatureSize]byte
}

type MintCertificateInstructionAccounts struct {
	UserProfile ed25519.PublicKey
	User        ed25519.PublicKey
	Validator   ed25519.PublicKey
	Registry    ed25519.PublicKey
	NftMint     ed25519.PublicKey
}

func NewMintCertificateInstruction(
	accounts *MintCertificateInstructionAccounts,
	args *MintCertificateInstructionArgs,
) solana.Instruction {
	var offset int

	// Serialize instruction arguments
	data := make([]byte, 8+4+len(args.SkillId)+1+ValidatorSignatureSize)

	putInstructionType(data, InstructionTypeMintCertificate, &offset)
	putString(data, args.SkillId, &offset)
	putUint8(data, args.Score, &offset)
	copy(data[offset:], args.ValidatorSignature[:])

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
				PublicKey:  accounts.Validator,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Registry,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.NftMint,
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

func DecompileMintCertificateInstruction(ix solana.Instruction) (*MintCertificateInstructionAccounts, *MintCertificateInstructionArgs, error) {
	if err := checkInstruction(ix, InstructionTypeMintCertificate, 5); err != nil {
		return nil, nil, err
	}

	offset := 8
	var args MintCertificateInstructionArgs
	if err := getString(ix.Data, &args.SkillId, len(ix.Data), &offset); err != nil {
		return nil, nil, ErrInvalidInstructionData
	}
	if len(ix.Data) != offset+1+ValidatorSignatureSize {
		return nil, nil, ErrInvalidInstructionData
	}
	getUint8(ix.Data, &args.Score, &offset)
	copy(args.ValidatorSignature[:], ix.Data[offset:])

	return &MintCertificateInstructionAccounts{
		UserProfile: ix.Accounts[0].PublicKey,
		User:        ix.Accounts[1].PublicKey,
		Validator:   ix.Accounts[2].PublicKey,
		Registry:    ix.Accounts[3].PublicKey,
		NftMint:     ix.Accounts[4].PublicKey,
	}, &args, nil
}
