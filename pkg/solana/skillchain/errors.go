package skillchain

import (
	"fmt"
)

const customErrorCodeOffset = 6000

// ProgramError is a custom error raised by the program. Its numeric code is
// stable and is what clients see when an instruction fails.
type ProgramError uint32

const (
	ErrUnauthorized ProgramError = iota + customErrorCodeOffset
	ErrInvalidValidatorSignature
	ErrValidatorNotActive
	ErrInvalidSkillScore
	ErrMaxSkillsReached
	ErrInsufficientEscrowFunds
	ErrEscrowAlreadyDistributed
	ErrInvalidSkillLevel
	ErrArithmeticOverflow

	ErrInvalidSkillId
	ErrInvalidEscrowShares
)

var programErrorInfo = map[ProgramError]struct {
	name string
	msg  string
}{
	ErrUnauthorized:              {"Unauthorized", "Unauthorized access"},
	ErrInvalidValidatorSignature: {"InvalidValidatorSignature", "Invalid validator signature"},
	ErrValidatorNotActive:        {"ValidatorNotActive", "Validator is not active"},
	ErrInvalidSkillScore:         {"InvalidSkillScore", "Invalid skill score"},
	ErrMaxSkillsReached:          {"MaxSkillsReached", "Maximum skills reached"},
	ErrInsufficientEscrowFunds:   {"InsufficientEscrowFunds", "Insufficient escrow funds"},
	ErrEscrowAlreadyDistributed:  {"EscrowAlreadyDistributed", "Escrow already distributed"},
	ErrInvalidSkillLevel:         {"InvalidSkillLevel", "Invalid skill level"},
	ErrArithmeticOverflow:        {"ArithmeticOverflow", "Arithmetic overflow"},
	ErrInvalidSkillId:            {"InvalidSkillId", "Skill id exceeds the maximum length"},
	ErrInvalidEscrowShares:       {"InvalidEscrowShares", "Escrow amount must be positive"},
}

// Code returns the numeric error code
func (e ProgramError) Code() uint32 {
	return uint32(e)
}

// Name returns the symbolic error name
func (e ProgramError) Name() string {
	info, ok := programErrorInfo[e]
	if !ok {
		return "Unknown"
	}
	return info.name
}

func (e ProgramError) Error() string {
	info, ok := programErrorInfo[e]
	if !ok {
		return fmt.Sprintf("program error: custom program error: %d", uint32(e))
	}
	return fmt.Sprintf("program error %d (%s): %s", uint32(e), info.name, info.msg)
}

// GetProgramError returns the ProgramError for a numeric code
func GetProgramError(code uint32) (ProgramError, bool) {
	_, ok := programErrorInfo[ProgramError(code)]
	return ProgramError(code), ok
}
