package skillchain

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSkillRegistryAccount_MarshalUnmarshal(t *testing.T) {
	expected := &SkillRegistryAccount{
		Authority:         newKey(t),
		TotalValidators:   3,
		TotalCertificates: 12,
		TotalUsers:        7,
		SkillTokenMint:    newKey(t),
		Treasury:          newKey(t),
		Bump:              254,
	}

	data := expected.Marshal()
	require.Len(t, data, SkillRegistryAccountSize)

	var actual SkillRegistryAccount
	require.NoError(t, actual.Unmarshal(data))
	assert.Equal(t, expected, &actual)
	assert.True(t, actual.HasSkillTokenMint())

	empty := &SkillRegistryAccount{Authority: newKey(t)}
	require.NoError(t, actual.Unmarshal(empty.Marshal()))
	assert.False(t, actual.HasSkillTokenMint())
}

func TestValidatorAccount_MarshalUnmarshal(t *testing.T) {
	expected := &ValidatorAccount{
		Address:          newKey(t),
		TotalValidations: 42,
		Reputation:       DefaultValidatorReputation,
		IsActive:         true,
		JoinedAt:         1700000000,
		Bump:             253,
	}

	data := expected.Marshal()
	require.Len(t, data, ValidatorAccountSize)

	var actual ValidatorAccount
	require.NoError(t, actual.Unmarshal(data))
	assert.Equal(t, expected, &actual)
}

func TestUserProfileAccount_MarshalUnmarshal(t *testing.T) {
	expected := &UserProfileAccount{
		Owner:             newKey(t),
		SkillScore:        1850,
		TotalTests:        4,
		TotalCertificates: 2,
		TotalSolEarned:    1_000_000_000,
		SuccessRate:       75,
		Skills: []SkillRecord{
			{
				SkillId:   "go",
				Level:     SkillLevelSenior,
				Score:     95,
				NftMint:   newKey(t),
				EarnedAt:  1700000001,
				Validator: newKey(t),
			},
			{
				SkillId:   "rust",
				Level:     SkillLevelMiddle,
				Score:     85,
				NftMint:   newKey(t),
				EarnedAt:  1700000002,
				Validator: newKey(t),
			},
		},
		CreatedAt: 1700000000,
		Bump:      255,
	}

	data := expected.Marshal()
	require.Len(t, data, UserProfileAccountSize)

	var actual UserProfileAccount
	require.NoError(t, actual.Unmarshal(data))
	assert.Equal(t, expected, &actual)

	skill, ok := actual.FindSkill("rust")
	require.True(t, ok)
	assert.EqualValues(t, 85, skill.Score)

	_, ok = actual.FindSkill("python")
	assert.False(t, ok)
}

func TestUserProfileAccount_FullProfileFits(t *testing.T) {
	profile := &UserProfileAccount{
		Owner:  newKey(t),
		Skills: make([]SkillRecord, MaxSkillsPerProfile),
	}
	for i := range profile.Skills {
		profile.Skills[i] = SkillRecord{
			SkillId:   fmt.Sprintf("%02d", i) + strings.Repeat("s", MaxSkillIdLength-2),
			Level:     SkillLevelJunior,
			Score:     50,
			NftMint:   newKey(t),
			EarnedAt:  int64(i),
			Validator: newKey(t),
		}
	}

	data := profile.Marshal()
	require.Len(t, data, UserProfileAccountSize)

	var actual UserProfileAccount
	require.NoError(t, actual.Unmarshal(data))
	assert.Equal(t, profile, &actual)
}

func TestEscrowAccount_MarshalUnmarshal(t *testing.T) {
	expected := &EscrowAccount{
		TestId:          "test-1",
		Payer:           newKey(t),
		Amount:          1000,
		DaoShare:        400,
		ProjectShare:    300,
		RewardPoolShare: 300,
		IsDistributed:   true,
		CreatedAt:       1700000000,
		Bump:            250,
	}

	data := expected.Marshal()
	require.Len(t, data, EscrowAccountSize)

	var actual EscrowAccount
	require.NoError(t, actual.Unmarshal(data))
	assert.Equal(t, expected, &actual)

	total, ok := actual.TotalShares()
	require.True(t, ok)
	assert.EqualValues(t, 1000, total)

	actual.RewardPoolShare = ^uint64(0)
	_, ok = actual.TotalShares()
	assert.False(t, ok)
}

func TestSkillTokenMintAccount_MarshalUnmarshal(t *testing.T) {
	expected := &SkillTokenMintAccount{
		Decimals:      SkillTokenDecimals,
		MintAuthority: newKey(t),
		IsInitialized: true,
	}

	data := expected.Marshal()
	require.Len(t, data, SkillTokenMintAccountSize)

	var actual SkillTokenMintAccount
	require.NoError(t, actual.Unmarshal(data))
	assert.Equal(t, expected, &actual)
}

func TestAccounts_InvalidData(t *testing.T) {
	registry := (&SkillRegistryAccount{Authority: newKey(t)}).Marshal()
	validator := (&ValidatorAccount{Address: newKey(t)}).Marshal()

	assert.Equal(t, ErrInvalidAccountData, new(SkillRegistryAccount).Unmarshal(registry[:SkillRegistryAccountSize-1]))
	assert.Equal(t, ErrInvalidAccountData, new(ValidatorAccount).Unmarshal(validator[:ValidatorAccountSize-1]))

	// Wrong discriminator
	padded := make([]byte, ValidatorAccountSize)
	copy(padded, registry)
	assert.Equal(t, ErrInvalidAccountData, new(ValidatorAccount).Unmarshal(padded))

	// Skill count beyond the allocation
	profile := (&UserProfileAccount{Owner: newKey(t)}).Marshal()
	offset := 8 + 32 + 4 + 4 + 4 + 8 + 1
	putUint32(profile, MaxSkillsPerProfile+1, &offset)
	assert.Equal(t, ErrInvalidAccountData, new(UserProfileAccount).Unmarshal(profile))

	// Unknown skill level
	profile = (&UserProfileAccount{
		Owner:  newKey(t),
		Skills: []SkillRecord{{SkillId: "go", Level: SkillLevelSenior}},
	}).Marshal()
	profile[8+32+4+4+4+8+1+4+4+2] = 3
	assert.Equal(t, ErrInvalidAccountData, new(UserProfileAccount).Unmarshal(profile))
}

func TestLevelFromScore(t *testing.T) {
	for _, tc := range []struct {
		score    uint8
		expected SkillLevel
	}{
		{0, SkillLevelJunior},
		{79, SkillLevelJunior},
		{80, SkillLevelMiddle},
		{89, SkillLevelMiddle},
		{90, SkillLevelSenior},
		{100, SkillLevelSenior},
		{255, SkillLevelSenior},
	} {
		assert.Equal(t, tc.expected, LevelFromScore(tc.score), "score %d", tc.score)
	}
}

func TestSkillLevel_String(t *testing.T) {
	assert.Equal(t, "Junior", SkillLevelJunior.String())
	assert.Equal(t, "Middle", SkillLevelMiddle.String())
	assert.Equal(t, "Senior", SkillLevelSenior.String())
	assert.Equal(t, "unknown", SkillLevel(3).String())
}

func newKey(t *testing.T) ed25519.PublicKey {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return pub
}
