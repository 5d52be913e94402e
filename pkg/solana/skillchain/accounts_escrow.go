package skillchain

import (
	"bytes"
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"
)

const (
	MaxEscrowTestIdLength = 64

	// The test id is also an address seed
	MaxEscrowTestIdSeedLength = 32
)

const (
	EscrowAccountSize = (8 + //discriminator
		4 + MaxEscrowTestIdLength + // test_id
		32 + // payer
		8 + // amount
		8 + // dao_share
		8 + // project_share
		8 + // reward_pool_share
		1 + // is_distributed
		8 + // created_at
		1) // bump
)

var EscrowAccountDiscriminator = accountDiscriminator("EscrowAccount")

type EscrowAccount struct {
	TestId          string
	Payer           ed25519.PublicKey
	Amount          uint64
	DaoShare        uint64
	ProjectShare    uint64
	RewardPoolShare uint64
	IsDistributed   bool
	CreatedAt       int64
	Bump            uint8
}

func (obj *EscrowAccount) Marshal() []byte {
	var offset int

	data := make([]byte, EscrowAccountSize)

	putDiscriminator(data, EscrowAccountDiscriminator, &offset)
	putString(data, obj.TestId, &offset)
	putKey(data, keyOrZero(obj.Payer), &offset)
	putUint64(data, obj.Amount, &offset)
	putUint64(data, obj.DaoShare, &offset)
	putUint64(data, obj.ProjectShare, &offset)
	putUint64(data, obj.RewardPoolShare, &offset)
	putBool(data, obj.IsDistributed, &offset)
	putInt64(data, obj.CreatedAt, &offset)
	putUint8(data, obj.Bump, &offset)

	return data
}

func (obj *EscrowAccount) Unmarshal(data []byte) error {
	if len(data) < EscrowAccountSize {
		return ErrInvalidAccountData
	}

	var offset int

	var discriminator []byte
	getDiscriminator(data, &discriminator, &offset)
	if !bytes.Equal(discriminator, EscrowAccountDiscriminator) {
		return ErrInvalidAccountData
	}

	if err := getString(data, &obj.TestId, MaxEscrowTestIdLength, &offset); err != nil {
		return err
	}
	getKey(data, &obj.Payer, &offset)
	getUint64(data, &obj.Amount, &offset)
	getUint64(data, &obj.DaoShare, &offset)
	getUint64(data, &obj.ProjectShare, &offset)
	getUint64(data, &obj.RewardPoolShare, &offset)
	getBool(data, &obj.IsDistributed, &offset)
	getInt64(data, &obj.CreatedAt, &offset)
	getUint8(data, &obj.Bump, &offset)

	return nil
}

// TotalShares returns the sum of all shares, or false if the sum overflows
func (obj *EscrowAccount) TotalShares() (uint64, bool) {
	total := obj.DaoShare
	for _, share := range []uint64{obj.ProjectShare, obj.RewardPoolShare} {
		if total+share < total {
			return 0, false
		}
		total += share
	}
	return total, true
}

func (obj *EscrowAccount) String() string {
	return fmt.Sprintf(
		"EscrowAccount{test_id=%s,payer=%s,amount=%d,dao_share=%d,project_share=%d,reward_pool_share=%d,is_distributed=%v,created_at=%d,bump=%d}",
		obj.TestId,
		base58.Encode(obj.Payer),
		obj.Amount,
		obj.DaoShare,
		obj.ProjectShare,
		obj.RewardPoolShare,
		obj.IsDistributed,
		obj.CreatedAt,
		obj.Bump,
	)
}
