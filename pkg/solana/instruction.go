package solana

import (
	"bytes"
	"crypto/ed25519"
	"encoding/binary"

	"github.com/pkg/errors"
)

var (
	ErrIncorrectProgram     = errors.New("incorrect program")
	ErrIncorrectInstruction = errors.New("incorrect instruction")
	ErrNotEnoughAccountKeys = errors.New("not enough account keys")
)

// AccountMeta represents an account referenced by an instruction.
type AccountMeta struct {
	PublicKey  ed25519.PublicKey
	IsSigner   bool
	IsWritable bool
}

// NewAccountMeta creates a new AccountMeta representing a writable
// account.
func NewAccountMeta(pub ed25519.PublicKey, isSigner bool) AccountMeta {
	return AccountMeta{
		PublicKey:  pub,
		IsSigner:   isSigner,
		IsWritable: true,
	}
}

// NewReadonlyAccountMeta creates a new AccountMeta representing a readonly
// account.
func NewReadonlyAccountMeta(pub ed25519.PublicKey, isSigner bool) AccountMeta {
	return AccountMeta{
		PublicKey:  pub,
		IsSigner:   isSigner,
		IsWritable: false,
	}
}

// Instruction represents a program instruction.
type Instruction struct {
	Program  ed25519.PublicKey
	Accounts []AccountMeta
	Data     []byte
}

// NewInstruction creates a new instruction.
func NewInstruction(program ed25519.PublicKey, data []byte, accounts ...AccountMeta) Instruction {
	return Instruction{
		Program:  program,
		Data:     data,
		Accounts: accounts,
	}
}

// Message returns the canonical bytes that signers of the instruction sign:
//
//	program (32) | account count (u8) | [key (32) | flags (u8)]... | data length (u32) | data
func (i Instruction) Message() []byte {
	var buf bytes.Buffer

	buf.Write(i.Program)
	buf.WriteByte(byte(len(i.Accounts)))
	for _, account := range i.Accounts {
		buf.Write(account.PublicKey)

		var flags byte
		if account.IsSigner {
			flags |= 1
		}
		if account.IsWritable {
			flags |= 2
		}
		buf.WriteByte(flags)
	}

	var length [4]byte
	binary.LittleEndian.PutUint32(length[:], uint32(len(i.Data)))
	buf.Write(length[:])
	buf.Write(i.Data)

	return buf.Bytes()
}

// Signers returns the keys of all accounts flagged as signers, in order and
// without duplicates.
func (i Instruction) Signers() []ed25519.PublicKey {
	var res []ed25519.PublicKey
	for _, account := range i.Accounts {
		if !account.IsSigner {
			continue
		}

		var seen bool
		for _, existing := range res {
			if bytes.Equal(existing, account.PublicKey) {
				seen = true
				break
			}
		}
		if !seen {
			res = append(res, account.PublicKey)
		}
	}
	return res
}

// Validate performs structural checks on the instruction.
func (i Instruction) Validate() error {
	if len(i.Program) != ed25519.PublicKeySize {
		return errors.New("invalid program key length")
	}

	if len(i.Accounts) > 255 {
		return errors.New("too many accounts")
	}

	for idx, account := range i.Accounts {
		if len(account.PublicKey) != ed25519.PublicKeySize {
			return errors.Errorf("invalid key length for account %d", idx)
		}
	}

	return nil
}
