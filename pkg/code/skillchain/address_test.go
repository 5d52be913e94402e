package skillchain

import (
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bri1545/SkillChain/pkg/solana"
	skillchain_program "github.com/bri1545/SkillChain/pkg/solana/skillchain"
	"github.com/bri1545/SkillChain/pkg/testutil"
)

func TestDeriveAddress(t *testing.T) {
	wallet := testutil.GenerateSolanaKeys(t, 1)[0]

	expectedRegistry, _, err := skillchain_program.GetSkillRegistryAddress()
	require.NoError(t, err)
	expectedMint, _, err := skillchain_program.GetSkillTokenMintAddress()
	require.NoError(t, err)
	expectedValidator, _, err := skillchain_program.GetValidatorAddress(&skillchain_program.GetValidatorAddressArgs{Validator: wallet})
	require.NoError(t, err)
	expectedProfile, _, err := skillchain_program.GetUserProfileAddress(&skillchain_program.GetUserProfileAddressArgs{Owner: wallet})
	require.NoError(t, err)
	expectedEscrow, _, err := skillchain_program.GetEscrowAddress(&skillchain_program.GetEscrowAddressArgs{TestId: "test-1"})
	require.NoError(t, err)

	for _, tc := range []struct {
		kind     string
		key      string
		expected []byte
	}{
		{AddressKindRegistry, "", expectedRegistry},
		{AddressKindMint, "", expectedMint},
		{AddressKindValidator, base58.Encode(wallet), expectedValidator},
		{AddressKindProfile, base58.Encode(wallet), expectedProfile},
		{AddressKindEscrow, "test-1", expectedEscrow},
	} {
		actual, _, err := DeriveAddress(tc.kind, tc.key)
		require.NoError(t, err)
		assert.EqualValues(t, tc.expected, actual)
	}

	_, _, err = DeriveAddress("unknown", "")
	assert.Equal(t, ErrUnknownAddressKind, err)

	_, _, err = DeriveAddress(AddressKindProfile, "")
	assert.Equal(t, ErrAddressKeyRequired, err)

	_, _, err = DeriveAddress(AddressKindProfile, "not-base58-0OIl")
	assert.Error(t, err)

	_, _, err = DeriveAddress(AddressKindEscrow, "0123456789abcdef0123456789abcdef0")
	assert.Equal(t, solana.ErrMaxSeedLengthExceeded, err)
}
