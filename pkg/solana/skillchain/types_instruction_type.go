package skillchain

import (
	"bytes"

	"github.com/bri1545/SkillChain/pkg/solana"
)

type InstructionType uint8

const (
	Unknown InstructionType = iota

	InstructionTypeInitializeRegistry
	InstructionTypeAddValidator
	InstructionTypeCreateUserProfile
	InstructionTypeMintCertificate
	InstructionTypeUpdateSkillScore
	InstructionTypeDistributeRewards
	InstructionTypeInitializeSkillToken

	InstructionTypeCreateEscrow
	InstructionTypeSetValidatorStatus
)

var instructionTypeNames = map[InstructionType]string{
	InstructionTypeInitializeRegistry:   "initialize_registry",
	InstructionTypeAddValidator:         "add_validator",
	InstructionTypeCreateUserProfile:    "create_user_profile",
	InstructionTypeMintCertificate:      "mint_certificate",
	InstructionTypeUpdateSkillScore:     "update_skill_score",
	InstructionTypeDistributeRewards:    "distribute_rewards",
	InstructionTypeInitializeSkillToken: "initialize_skill_token",
	InstructionTypeCreateEscrow:         "create_escrow",
	InstructionTypeSetValidatorStatus:   "set_validator_status",
}

var instructionTypeDiscriminators = func() map[InstructionType][]byte {
	res := make(map[InstructionType][]byte)
	for t, name := range instructionTypeNames {
		res[t] = instructionDiscriminator(name)
	}
	return res
}()

func (t InstructionType) String() string {
	name, ok := instructionTypeNames[t]
	if !ok {
		return "unknown"
	}
	return name
}

// Discriminator returns the 8 byte prefix identifying the instruction
func (t InstructionType) Discriminator() []byte {
	return instructionTypeDiscriminators[t]
}

// GetInstructionType returns the instruction type encoded in instruction data
func GetInstructionType(data []byte) InstructionType {
	if len(data) < 8 {
		return Unknown
	}
	for t, discriminator := range instructionTypeDiscriminators {
		if bytes.Equal(data[:8], discriminator) {
			return t
		}
	}
	return Unknown
}

// GetInstructionTypeByName returns the instruction type for its snake case name
func GetInstructionTypeByName(name string) InstructionType {
	for t, candidate := range instructionTypeNames {
		if candidate == name {
			return t
		}
	}
	return Unknown
}

func putInstructionType(dst []byte, v InstructionType, offset *int) {
	putDiscriminator(dst, v.Discriminator(), offset)
}

func checkInstruction(ix solana.Instruction, t InstructionType, expectedAccounts int) error {
	if !bytes.Equal(ix.Program, PROGRAM_ID) {
		return solana.ErrIncorrectProgram
	}
	if GetInstructionType(ix.Data) != t {
		return solana.ErrIncorrectInstruction
	}
	if len(ix.Accounts) < expectedAccounts {
		return solana.ErrNotEnoughAccountKeys
	}
	return nil
}
