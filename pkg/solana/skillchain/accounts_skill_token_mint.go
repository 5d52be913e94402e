package skillchain

import (
	"bytes"
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"
)

const (
	SkillTokenDecimals = 9
)

const (
	SkillTokenMintAccountSize = (8 + //discriminator
		1 + // decimals
		32 + // mint_authority
		8 + // supply
		1) // is_initialized
)

var SkillTokenMintAccountDiscriminator = accountDiscriminator("SkillTokenMint")

type SkillTokenMintAccount struct {
	Decimals      uint8
	MintAuthority ed25519.PublicKey
	Supply        uint64
	IsInitialized bool
}

func (obj *SkillTokenMintAccount) Marshal() []byte {
	var offset int

	data := make([]byte, SkillTokenMintAccountSize)

	putDiscriminator(data, SkillTokenMintAccountDiscriminator, &offset)
	putUint8(data, obj.Decimals, &offset)
	putKey(data, keyOrZero(obj.MintAuthority), &offset)
	putUint64(data, obj.Supply, &offset)
	putBool(data, obj.IsInitialized, &offset)

	return data
}

func (obj *SkillTokenMintAccount) Unmarshal(data []byte) error {
	if len(data) < SkillTokenMintAccountSize {
		return ErrInvalidAccountData
	}

	var offset int

	var discriminator []byte
	getDiscriminator(data, &discriminator, &offset)
	if !bytes.Equal(discriminator, SkillTokenMintAccountDiscriminator) {
		return ErrInvalidAccountData
	}

	getUint8(data, &obj.Decimals, &offset)
	getKey(data, &obj.MintAuthority, &offset)
	getUint64(data, &obj.Supply, &offset)
	getBool(data, &obj.IsInitialized, &offset)

	return nil
}

func (obj *SkillTokenMintAccount) String() string {
	return fmt.Sprintf(
		"SkillTokenMint{decimals=%d,mint_authority=%s,supply=%d,is_initialized=%v}",
		obj.Decimals,
		base58.Encode(obj.MintAuthority),
		obj.Supply,
		obj.IsInitialized,
	)
}
