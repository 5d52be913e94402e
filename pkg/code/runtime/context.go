package runtime

import (
	"bytes"
	"crypto/ed25519"
	"math"
	"time"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/bri1545/SkillChain/pkg/solana"
)

// InstructionContext is the state a program operates on while processing a
// single instruction. All account modifications are staged in memory and only
// committed by the runtime if the program returns without error.
type InstructionContext struct {
	ProgramID   ed25519.PublicKey
	Instruction solana.Instruction

	accounts []*AccountInfo
	byKey    map[string]*AccountInfo

	now time.Time
}

func newInstructionContext(programID ed25519.PublicKey, ix solana.Instruction, now time.Time) *InstructionContext {
	return &InstructionContext{
		ProgramID:   programID,
		Instruction: ix,
		byKey:       make(map[string]*AccountInfo),
		now:         now,
	}
}

// Data returns the raw instruction data
func (c *InstructionContext) Data() []byte {
	return c.Instruction.Data
}

// Now returns the clock time for the instruction. It is fixed for the entire
// duration of processing.
func (c *InstructionContext) Now() time.Time {
	return c.now
}

// Accounts returns the deduplicated set of accounts referenced by the
// instruction, in order of first appearance
func (c *InstructionContext) Accounts() []*AccountInfo {
	return c.accounts
}

// Account gets the account referenced by the instruction with the provided key
func (c *InstructionContext) Account(key ed25519.PublicKey) (*AccountInfo, error) {
	info, ok := c.byKey[string(key)]
	if !ok {
		return nil, errors.Wrapf(ErrAccountNotProvided, "account %s", base58.Encode(key))
	}
	return info, nil
}

// RequireSigner verifies the account signed the instruction
func (c *InstructionContext) RequireSigner(account *AccountInfo) error {
	if !account.IsSigner {
		return errors.Wrapf(ErrMissingRequiredSignature, "account %s", base58.Encode(account.Key))
	}
	return nil
}

// RequireAddress verifies the account is located at the expected derived
// address
func (c *InstructionContext) RequireAddress(account *AccountInfo, expected ed25519.PublicKey) error {
	if !bytes.Equal(account.Key, expected) {
		return errors.Wrapf(
			ErrInvalidSeeds,
			"expected %s, got %s",
			base58.Encode(expected),
			base58.Encode(account.Key),
		)
	}
	return nil
}

// LoadProgramAccount decodes the state of an initialized account owned by the
// executing program into dst
func (c *InstructionContext) LoadProgramAccount(account *AccountInfo, dst AccountData) error {
	if !account.IsInitialized() {
		return errors.Wrapf(ErrAccountNotInitialized, "account %s", base58.Encode(account.Key))
	}

	if !account.IsOwnedBy(c.ProgramID) {
		return errors.Wrapf(ErrIncorrectProgramId, "account %s", base58.Encode(account.Key))
	}

	if err := dst.Unmarshal(account.Data); err != nil {
		return errors.Wrapf(ErrInvalidAccountData, "account %s: %s", base58.Encode(account.Key), err.Error())
	}
	return nil
}

// CreateProgramAccount assigns an uninitialized account to the executing
// program and stores src as its initial state. The payer must sign the
// instruction.
func (c *InstructionContext) CreateProgramAccount(account, payer *AccountInfo, src AccountData) error {
	if err := c.RequireSigner(payer); err != nil {
		return err
	}

	if !account.IsWritable {
		return errors.Wrapf(ErrReadonlyAccountModified, "account %s", base58.Encode(account.Key))
	}

	if account.IsInitialized() {
		return errors.Wrapf(ErrAccountAlreadyInitialized, "account %s", base58.Encode(account.Key))
	}

	account.Owner = c.ProgramID
	account.Data = src.Marshal()
	return nil
}

// SaveProgramAccount stores src as the new state of a writable account owned
// by the executing program
func (c *InstructionContext) SaveProgramAccount(account *AccountInfo, src AccountData) error {
	if !account.IsWritable {
		return errors.Wrapf(ErrReadonlyAccountModified, "account %s", base58.Encode(account.Key))
	}

	if !account.IsOwnedBy(c.ProgramID) {
		return errors.Wrapf(ErrIncorrectProgramId, "account %s", base58.Encode(account.Key))
	}

	account.Data = src.Marshal()
	return nil
}

// Transfer moves lamports between two writable accounts. Only accounts owned
// by the executing program, or system accounts that signed the instruction,
// can be debited.
func (c *InstructionContext) Transfer(from, to *AccountInfo, lamports uint64) error {
	if lamports == 0 {
		return nil
	}

	if !from.IsWritable {
		return errors.Wrapf(ErrReadonlyAccountModified, "account %s", base58.Encode(from.Key))
	}
	if !to.IsWritable {
		return errors.Wrapf(ErrReadonlyAccountModified, "account %s", base58.Encode(to.Key))
	}

	switch {
	case from.IsOwnedBy(c.ProgramID):
	case from.IsOwnedBy(SYSTEM_PROGRAM_ID) && from.IsSigner:
	default:
		return errors.Wrapf(ErrExternalAccountLamportSpend, "account %s", base58.Encode(from.Key))
	}

	if from.Lamports < lamports {
		return errors.Wrapf(
			ErrInsufficientFunds,
			"account %s has %d lamports, need %d",
			base58.Encode(from.Key),
			from.Lamports,
			lamports,
		)
	}

	if bytes.Equal(from.Key, to.Key) {
		return nil
	}

	if to.Lamports > math.MaxInt64-lamports {
		return errors.Wrapf(ErrLamportOverflow, "account %s", base58.Encode(to.Key))
	}

	from.Lamports -= lamports
	to.Lamports += lamports
	return nil
}

func (c *InstructionContext) addAccount(info *AccountInfo) {
	c.accounts = append(c.accounts, info)
	c.byKey[string(info.Key)] = info
}
