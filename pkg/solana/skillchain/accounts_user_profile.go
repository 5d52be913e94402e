package skillchain

import (
	"bytes"
	"crypto/ed25519"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
)

const (
	MaxSkillsPerProfile = 50
)

const (
	UserProfileAccountSize = (8 + //discriminator
		32 + // owner
		4 + // skill_score
		4 + // total_tests
		4 + // total_certificates
		8 + // total_sol_earned
		1 + // success_rate
		4 + MaxSkillsPerProfile*SkillRecordSize + // skills
		8 + // created_at
		1) // bump
)

var UserProfileAccountDiscriminator = accountDiscriminator("UserProfile")

type UserProfileAccount struct {
	Owner             ed25519.PublicKey
	SkillScore        uint32
	TotalTests        uint32
	TotalCertificates uint32
	TotalSolEarned    uint64
	SuccessRate       uint8
	Skills            []SkillRecord
	CreatedAt         int64
	Bump              uint8
}

// Marshal encodes the profile into a fixed UserProfileAccountSize allocation.
// Profiles holding more than MaxSkillsPerProfile skills cannot be encoded.
func (obj *UserProfileAccount) Marshal() []byte {
	var offset int

	data := make([]byte, UserProfileAccountSize)

	putDiscriminator(data, UserProfileAccountDiscriminator, &offset)
	putKey(data, keyOrZero(obj.Owner), &offset)
	putUint32(data, obj.SkillScore, &offset)
	putUint32(data, obj.TotalTests, &offset)
	putUint32(data, obj.TotalCertificates, &offset)
	putUint64(data, obj.TotalSolEarned, &offset)
	putUint8(data, obj.SuccessRate, &offset)
	putUint32(data, uint32(len(obj.Skills)), &offset)
	for i := range obj.Skills {
		obj.Skills[i].marshal(data, &offset)
	}
	putInt64(data, obj.CreatedAt, &offset)
	putUint8(data, obj.Bump, &offset)

	return data
}

func (obj *UserProfileAccount) Unmarshal(data []byte) error {
	if len(data) < UserProfileAccountSize {
		return ErrInvalidAccountData
	}

	var offset int

	var discriminator []byte
	getDiscriminator(data, &discriminator, &offset)
	if !bytes.Equal(discriminator, UserProfileAccountDiscriminator) {
		return ErrInvalidAccountData
	}

	getKey(data, &obj.Owner, &offset)
	getUint32(data, &obj.SkillScore, &offset)
	getUint32(data, &obj.TotalTests, &offset)
	getUint32(data, &obj.TotalCertificates, &offset)
	getUint64(data, &obj.TotalSolEarned, &offset)
	getUint8(data, &obj.SuccessRate, &offset)

	var skillCount uint32
	getUint32(data, &skillCount, &offset)
	if skillCount > MaxSkillsPerProfile {
		return ErrInvalidAccountData
	}
	obj.Skills = make([]SkillRecord, skillCount)
	for i := range obj.Skills {
		if err := obj.Skills[i].unmarshal(data, &offset); err != nil {
			return err
		}
	}

	if len(data) < offset+8+1 {
		return ErrInvalidAccountData
	}
	getInt64(data, &obj.CreatedAt, &offset)
	getUint8(data, &obj.Bump, &offset)

	return nil
}

// FindSkill returns the first skill record for the skill id
func (obj *UserProfileAccount) FindSkill(skillId string) (*SkillRecord, bool) {
	for i := range obj.Skills {
		if obj.Skills[i].SkillId == skillId {
			return &obj.Skills[i], true
		}
	}
	return nil, false
}

func (obj *UserProfileAccount) String() string {
	skills := make([]string, len(obj.Skills))
	for i := range obj.Skills {
		skills[i] = obj.Skills[i].String()
	}

	return fmt.Sprintf(
		"UserProfile{owner=%s,skill_score=%d,total_tests=%d,total_certificates=%d,total_sol_earned=%d,success_rate=%d,skills=[%s],created_at=%d,bump=%d}",
		base58.Encode(obj.Owner),
		obj.SkillScore,
		obj.TotalTests,
		obj.TotalCertificates,
		obj.TotalSolEarned,
		obj.SuccessRate,
		strings.Join(skills, ","),
		obj.CreatedAt,
		obj.Bump,
	)
}
