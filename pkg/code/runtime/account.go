package runtime

import (
	"bytes"
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/bri1545/SkillChain/pkg/code/data/ledger"
)

// SYSTEM_PROGRAM_ID owns every account that has not been assigned to a program
var SYSTEM_PROGRAM_ID = ed25519.PublicKey(make([]byte, ed25519.PublicKeySize))

// AccountData is a fixed layout account state that can be loaded from and
// saved to an account's data
type AccountData interface {
	Marshal() []byte
	Unmarshal(data []byte) error
}

// AccountInfo is the view of an account made available to a program while an
// instruction executes. Changes are only persisted if the instruction succeeds.
type AccountInfo struct {
	Key        ed25519.PublicKey
	Owner      ed25519.PublicKey
	Lamports   uint64
	Data       []byte
	IsSigner   bool
	IsWritable bool

	// Nil if the account didn't exist prior to the instruction
	record *ledger.Record
}

func newAccountInfo(key ed25519.PublicKey, isSigner, isWritable bool, record *ledger.Record) (*AccountInfo, error) {
	info := &AccountInfo{
		Key:        key,
		Owner:      SYSTEM_PROGRAM_ID,
		IsSigner:   isSigner,
		IsWritable: isWritable,
		record:     record,
	}

	if record != nil {
		owner, err := base58.Decode(record.Owner)
		if err != nil {
			return nil, err
		}

		info.Owner = owner
		info.Lamports = record.Lamports
		if record.Data != nil {
			info.Data = make([]byte, len(record.Data))
			copy(info.Data, record.Data)
		}
	}

	return info, nil
}

// IsInitialized returns whether the account has been assigned to a program
func (a *AccountInfo) IsInitialized() bool {
	return !a.IsOwnedBy(SYSTEM_PROGRAM_ID) && len(a.Data) > 0
}

// IsOwnedBy returns whether the account is owned by the provided program
func (a *AccountInfo) IsOwnedBy(program ed25519.PublicKey) bool {
	return bytes.Equal(a.Owner, program)
}

func (a *AccountInfo) isModified() bool {
	if a.record == nil {
		return !a.IsOwnedBy(SYSTEM_PROGRAM_ID) || a.Lamports > 0 || len(a.Data) > 0
	}

	return base58.Encode(a.Owner) != a.record.Owner ||
		a.Lamports != a.record.Lamports ||
		!bytes.Equal(a.Data, a.record.Data)
}

func (a *AccountInfo) toRecord() *ledger.Record {
	var record *ledger.Record
	if a.record != nil {
		record = a.record.Clone()
	} else {
		record = &ledger.Record{
			Address: base58.Encode(a.Key),
		}
	}

	record.Owner = base58.Encode(a.Owner)
	record.Lamports = a.Lamports
	record.Data = nil
	if len(a.Data) > 0 {
		record.Data = make([]byte, len(a.Data))
		copy(record.Data, a.Data)
	}

	return record
}

func (a *AccountInfo) String() string {
	return fmt.Sprintf(
		"AccountInfo{key=%s,owner=%s,lamports=%d,data_size=%d,is_signer=%v,is_writable=%v}",
		base58.Encode(a.Key),
		base58.Encode(a.Owner),
		a.Lamports,
		len(a.Data),
		a.IsSigner,
		a.IsWritable,
	)
}
