package skillchain

import (
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"
)

const (
	MaxSkillIdLength = 64

	SkillRecordSize = (4 + MaxSkillIdLength + // skill_id
		1 + // level
		1 + // score
		32 + // nft_mint
		8 + // earned_at
		32) // validator
)

// SkillRecord is a single certificate held in a user profile
type SkillRecord struct {
	SkillId   string
	Level     SkillLevel
	Score     uint8
	NftMint   ed25519.PublicKey
	EarnedAt  int64
	Validator ed25519.PublicKey
}

func (obj *SkillRecord) marshal(dst []byte, offset *int) {
	putString(dst, obj.SkillId, offset)
	putSkillLevel(dst, obj.Level, offset)
	putUint8(dst, obj.Score, offset)
	putKey(dst, keyOrZero(obj.NftMint), offset)
	putInt64(dst, obj.EarnedAt, offset)
	putKey(dst, keyOrZero(obj.Validator), offset)
}

func (obj *SkillRecord) unmarshal(src []byte, offset *int) error {
	if err := getString(src, &obj.SkillId, MaxSkillIdLength, offset); err != nil {
		return err
	}
	if len(src) < *offset+1+1+32+8+32 {
		return ErrInvalidAccountData
	}
	if err := getSkillLevel(src, &obj.Level, offset); err != nil {
		return err
	}
	getUint8(src, &obj.Score, offset)
	getKey(src, &obj.NftMint, offset)
	getInt64(src, &obj.EarnedAt, offset)
	getKey(src, &obj.Validator, offset)
	return nil
}

func (obj *SkillRecord) String() string {
	return fmt.Sprintf(
		"SkillRecord{skill_id=%s,level=%s,score=%d,nft_mint=%s,earned_at=%d,validator=%s}",
		obj.SkillId,
		obj.Level,
		obj.Score,
		base58.Encode(obj.NftMint),
		obj.EarnedAt,
		base58.Encode(obj.Validator),
	)
}
