package skillchain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bri1545/SkillChain/pkg/solana"
)

func TestInstructionType_Discriminators(t *testing.T) {
	seen := make(map[string]InstructionType)
	for instructionType, name := range instructionTypeNames {
		discriminator := instructionType.Discriminator()
		require.Len(t, discriminator, 8)
		assert.Equal(t, instructionDiscriminator(name), discriminator)

		_, ok := seen[string(discriminator)]
		assert.False(t, ok)
		seen[string(discriminator)] = instructionType

		assert.Equal(t, instructionType, GetInstructionType(discriminator))
		assert.Equal(t, instructionType, GetInstructionTypeByName(name))
	}

	assert.Equal(t, Unknown, GetInstructionType(nil))
	assert.Equal(t, Unknown, GetInstructionType(make([]byte, 8)))
	assert.Equal(t, Unknown, GetInstructionTypeByName("transfer"))
}

func TestMintCertificateInstruction_RoundTrip(t *testing.T) {
	accounts := &MintCertificateInstructionAccounts{
		UserProfile: newKey(t),
		User:        newKey(t),
		Validator:   newKey(t),
		Registry:    newKey(t),
		NftMint:     newKey(t),
	}
	args := &MintCertificateInstructionArgs{
		SkillId: "solidity",
		Score:   92,
	}
	args.ValidatorSignature[0] = 0xff
	args.ValidatorSignature[63] = 0x01

	ix := NewMintCertificateInstruction(accounts, args)
	require.NoError(t, ix.Validate())
	assert.Equal(t, InstructionTypeMintCertificate, GetInstructionType(ix.Data))

	signers := ix.Signers()
	require.Len(t, signers, 2)
	assert.EqualValues(t, accounts.User, signers[0])
	assert.EqualValues(t, accounts.NftMint, signers[1])

	actualAccounts, actualArgs, err := DecompileMintCertificateInstruction(ix)
	require.NoError(t, err)
	assert.Equal(t, accounts, actualAccounts)
	assert.Equal(t, args, actualArgs)

	ix.Data = ix.Data[:len(ix.Data)-1]
	_, _, err = DecompileMintCertificateInstruction(ix)
	assert.Equal(t, ErrInvalidInstructionData, err)
}

func TestUpdateSkillScoreInstruction_RoundTrip(t *testing.T) {
	accounts := &UpdateSkillScoreInstructionAccounts{
		UserProfile: newKey(t),
		User:        newKey(t),
		Validator:   newKey(t),
	}

	for _, delta := range []int16{0, 1, -1, 32767, -32768} {
		args := &UpdateSkillScoreInstructionArgs{ScoreDelta: delta}

		actualAccounts, actualArgs, err := DecompileUpdateSkillScoreInstruction(NewUpdateSkillScoreInstruction(accounts, args))
		require.NoError(t, err)
		assert.Equal(t, accounts, actualAccounts)
		assert.Equal(t, args, actualArgs)
	}
}

func TestDistributeRewardsInstruction_RoundTrip(t *testing.T) {
	accounts := &DistributeRewardsInstructionAccounts{
		Escrow:          newKey(t),
		DaoTreasury:     newKey(t),
		ProjectTreasury: newKey(t),
		RewardPool:      newKey(t),
		Authority:       newKey(t),
		Registry:        newKey(t),
	}
	args := &DistributeRewardsInstructionArgs{
		TestId: "test-1",
		Amount: 1000,
	}

	actualAccounts, actualArgs, err := DecompileDistributeRewardsInstruction(NewDistributeRewardsInstruction(accounts, args))
	require.NoError(t, err)
	assert.Equal(t, accounts, actualAccounts)
	assert.Equal(t, args, actualArgs)
}

func TestCreateEscrowInstruction_RoundTrip(t *testing.T) {
	accounts := &CreateEscrowInstructionAccounts{
		Escrow: newKey(t),
		Payer:  newKey(t),
	}
	args := &CreateEscrowInstructionArgs{
		TestId:          "test-2",
		Amount:          1000,
		DaoShare:        450,
		ProjectShare:    300,
		RewardPoolShare: 250,
	}

	actualAccounts, actualArgs, err := DecompileCreateEscrowInstruction(NewCreateEscrowInstruction(accounts, args))
	require.NoError(t, err)
	assert.Equal(t, accounts, actualAccounts)
	assert.Equal(t, args, actualArgs)
}

func TestOtherInstructions_RoundTrip(t *testing.T) {
	addValidatorAccounts := &AddValidatorInstructionAccounts{
		Validator:        newKey(t),
		ValidatorAddress: newKey(t),
		Authority:        newKey(t),
		Registry:         newKey(t),
	}
	addValidatorArgs := &AddValidatorInstructionArgs{ValidatorAddress: addValidatorAccounts.ValidatorAddress}
	actualAddValidatorAccounts, actualAddValidatorArgs, err := DecompileAddValidatorInstruction(NewAddValidatorInstruction(addValidatorAccounts, addValidatorArgs))
	require.NoError(t, err)
	assert.Equal(t, addValidatorAccounts, actualAddValidatorAccounts)
	assert.Equal(t, addValidatorArgs, actualAddValidatorArgs)

	setStatusAccounts := &SetValidatorStatusInstructionAccounts{
		Validator: newKey(t),
		Authority: newKey(t),
		Registry:  newKey(t),
	}
	setStatusArgs := &SetValidatorStatusInstructionArgs{IsActive: true}
	actualSetStatusAccounts, actualSetStatusArgs, err := DecompileSetValidatorStatusInstruction(NewSetValidatorStatusInstruction(setStatusAccounts, setStatusArgs))
	require.NoError(t, err)
	assert.Equal(t, setStatusAccounts, actualSetStatusAccounts)
	assert.Equal(t, setStatusArgs, actualSetStatusArgs)

	registryAccounts := &InitializeRegistryInstructionAccounts{Registry: newKey(t), Authority: newKey(t)}
	actualRegistryAccounts, err := DecompileInitializeRegistryInstruction(NewInitializeRegistryInstruction(registryAccounts))
	require.NoError(t, err)
	assert.Equal(t, registryAccounts, actualRegistryAccounts)

	profileAccounts := &CreateUserProfileInstructionAccounts{UserProfile: newKey(t), User: newKey(t), Registry: newKey(t)}
	actualProfileAccounts, err := DecompileCreateUserProfileInstruction(NewCreateUserProfileInstruction(profileAccounts))
	require.NoError(t, err)
	assert.Equal(t, profileAccounts, actualProfileAccounts)

	tokenAccounts := &InitializeSkillTokenInstructionAccounts{SkillTokenMint: newKey(t), Registry: newKey(t), Authority: newKey(t)}
	actualTokenAccounts, err := DecompileInitializeSkillTokenInstruction(NewInitializeSkillTokenInstruction(tokenAccounts))
	require.NoError(t, err)
	assert.Equal(t, tokenAccounts, actualTokenAccounts)
}

func TestDecompile_Mismatches(t *testing.T) {
	ix := NewCreateUserProfileInstruction(&CreateUserProfileInstructionAccounts{
		UserProfile: newKey(t),
		User:        newKey(t),
		Registry:    newKey(t),
	})

	_, err := DecompileInitializeRegistryInstruction(ix)
	assert.Equal(t, solana.ErrIncorrectInstruction, err)

	wrongProgram := ix
	wrongProgram.Program = newKey(t)
	_, err = DecompileCreateUserProfileInstruction(wrongProgram)
	assert.Equal(t, solana.ErrIncorrectProgram, err)

	missingAccounts := ix
	missingAccounts.Accounts = ix.Accounts[:2]
	_, err = DecompileCreateUserProfileInstruction(missingAccounts)
	assert.Equal(t, solana.ErrNotEnoughAccountKeys, err)
}

func TestProgramError(t *testing.T) {
	assert.EqualValues(t, 6000, ErrUnauthorized.Code())
	assert.EqualValues(t, 6002, ErrValidatorNotActive.Code())
	assert.EqualValues(t, 6008, ErrArithmeticOverflow.Code())
	assert.EqualValues(t, 6009, ErrInvalidSkillId.Code())
	assert.EqualValues(t, 6010, ErrInvalidEscrowShares.Code())

	assert.Equal(t, "MaxSkillsReached", ErrMaxSkillsReached.Name())
	assert.Contains(t, ErrEscrowAlreadyDistributed.Error(), "Escrow already distributed")

	actual, ok := GetProgramError(6005)
	require.True(t, ok)
	assert.Equal(t, ErrInsufficientEscrowFunds, actual)

	_, ok = GetProgramError(7000)
	assert.False(t, ok)
}
