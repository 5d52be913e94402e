package runtime

import (
	"errors"
)

var (
	ErrUnknownProgram               = errors.New("unknown program")
	ErrUnknownInstruction           = errors.New("unknown instruction")
	ErrMissingRequiredSignature     = errors.New("missing required signature for instruction")
	ErrAccountNotProvided           = errors.New("account not provided to instruction")
	ErrAccountNotInitialized        = errors.New("account not initialized")
	ErrAccountAlreadyInitialized    = errors.New("account already initialized")
	ErrIncorrectProgramId           = errors.New("account not owned by the executing program")
	ErrInvalidSeeds                 = errors.New("account address does not match its derivation")
	ErrInvalidAccountData           = errors.New("invalid account data for instruction")
	ErrReadonlyAccountModified      = errors.New("instruction modified a readonly account")
	ErrInsufficientFunds            = errors.New("insufficient lamports for instruction")
	ErrExternalAccountLamportSpend  = errors.New("instruction spent from the balance of an account it does not own")
	ErrLamportOverflow              = errors.New("lamport balance overflow")
	ErrUnbalancedInstruction        = errors.New("sum of account balances before and after instruction do not match")
	ErrAirdropsDisabled             = errors.New("airdrops are disabled")
	ErrAirdropAmountExceedsLimit    = errors.New("airdrop amount exceeds the configured limit")
	ErrAirdropToProgramOwnedAccount = errors.New("cannot airdrop to a program owned account")
)
