package skillchain

import (
	"bytes"
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"
)

const (
	SkillRegistryAccountSize = (8 + //discriminator
		32 + // authority
		4 + // total_validators
		8 + // total_certificates
		8 + // total_users
		32 + // skill_token_mint
		32 + // treasury
		1) // bump
)

var SkillRegistryAccountDiscriminator = accountDiscriminator("SkillRegistry")

type SkillRegistryAccount struct {
	Authority         ed25519.PublicKey
	TotalValidators   uint32
	TotalCertificates uint64
	TotalUsers        uint64
	SkillTokenMint    ed25519.PublicKey
	Treasury          ed25519.PublicKey
	Bump              uint8
}

func (obj *SkillRegistryAccount) Marshal() []byte {
	var offset int

	data := make([]byte, SkillRegistryAccountSize)

	putDiscriminator(data, SkillRegistryAccountDiscriminator, &offset)
	putKey(data, keyOrZero(obj.Authority), &offset)
	putUint32(data, obj.TotalValidators, &offset)
	putUint64(data, obj.TotalCertificates, &offset)
	putUint64(data, obj.TotalUsers, &offset)
	putKey(data, keyOrZero(obj.SkillTokenMint), &offset)
	putKey(data, keyOrZero(obj.Treasury), &offset)
	putUint8(data, obj.Bump, &offset)

	return data
}

func (obj *SkillRegistryAccount) Unmarshal(data []byte) error {
	if len(data) < SkillRegistryAccountSize {
		return ErrInvalidAccountData
	}

	var offset int

	var discriminator []byte
	getDiscriminator(data, &discriminator, &offset)
	if !bytes.Equal(discriminator, SkillRegistryAccountDiscriminator) {
		return ErrInvalidAccountData
	}

	getKey(data, &obj.Authority, &offset)
	getUint32(data, &obj.TotalValidators, &offset)
	getUint64(data, &obj.TotalCertificates, &offset)
	getUint64(data, &obj.TotalUsers, &offset)
	getKey(data, &obj.SkillTokenMint, &offset)
	getKey(data, &obj.Treasury, &offset)
	getUint8(data, &obj.Bump, &offset)

	return nil
}

// HasSkillTokenMint returns whether the skill token mint has been initialized
func (obj *SkillRegistryAccount) HasSkillTokenMint() bool {
	return len(obj.SkillTokenMint) > 0 && !bytes.Equal(obj.SkillTokenMint, make([]byte, ed25519.PublicKeySize))
}

func (obj *SkillRegistryAccount) String() string {
	return fmt.Sprintf(
		"SkillRegistry{authority=%s,total_validators=%d,total_certificates=%d,total_users=%d,skill_token_mint=%s,treasury=%s,bump=%d}",
		base58.Encode(obj.Authority),
		obj.TotalValidators,
		obj.TotalCertificates,
		obj.TotalUsers,
		base58.Encode(obj.SkillTokenMint),
		base58.Encode(obj.Treasury),
		obj.Bump,
	)
}
