package skillchain

import (
	"bytes"
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"
)

const (
	DefaultValidatorReputation = 100
)

const (
	ValidatorAccountSize = (8 + //discriminator
		32 + // address
		8 + // total_validations
		4 + // reputation
		1 + // is_active
		8 + // joined_at
		1) // bump
)

var ValidatorAccountDiscriminator = accountDiscriminator("Validator")

type ValidatorAccount struct {
	Address          ed25519.PublicKey
	TotalValidations uint64
	Reputation       uint32
	IsActive         bool
	JoinedAt         int64
	Bump             uint8
}

func (obj *ValidatorAccount) Marshal() []byte {
	var offset int

	data := make([]byte, ValidatorAccountSize)

	putDiscriminator(data, ValidatorAccountDiscriminator, &offset)
	putKey(data, keyOrZero(obj.Address), &offset)
	putUint64(data, obj.TotalValidations, &offset)
	putUint32(data, obj.Reputation, &offset)
	putBool(data, obj.IsActive, &offset)
	putInt64(data, obj.JoinedAt, &offset)
	putUint8(data, obj.Bump, &offset)

	return data
}

func (obj *ValidatorAccount) Unmarshal(data []byte) error {
	if len(data) < ValidatorAccountSize {
		return ErrInvalidAccountData
	}

	var offset int

	var discriminator []byte
	getDiscriminator(data, &discriminator, &offset)
	if !bytes.Equal(discriminator, ValidatorAccountDiscriminator) {
		return ErrInvalidAccountData
	}

	getKey(data, &obj.Address, &offset)
	getUint64(data, &obj.TotalValidations, &offset)
	getUint32(data, &obj.Reputation, &offset)
	getBool(data, &obj.IsActive, &offset)
	getInt64(data, &obj.JoinedAt, &offset)
	getUint8(data, &obj.Bump, &offset)

	return nil
}

func (obj *ValidatorAccount) String() string {
	return fmt.Sprintf(
		"Validator{address=%s,total_validations=%d,reputation=%d,is_active=%v,joined_at=%d,bump=%d}",
		base58.Encode(obj.Address),
		obj.TotalValidations,
		obj.Reputation,
		obj.IsActive,
		obj.JoinedAt,
		obj.Bump,
	)
}
