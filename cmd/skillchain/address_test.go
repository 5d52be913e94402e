package main

import (
	"bytes"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	skillchain_program "github.com/bri1545/SkillChain/pkg/solana/skillchain"
	"github.com/bri1545/SkillChain/pkg/testutil"
)

func TestAddressCommand(t *testing.T) {
	wallet := testutil.GenerateSolanaKeys(t, 1)[0]
	expected, _, err := skillchain_program.GetUserProfileAddress(&skillchain_program.GetUserProfileAddressArgs{Owner: wallet})
	require.NoError(t, err)

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"address", "profile", base58.Encode(wallet), "--env-file", ""})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), base58.Encode(expected))

	cmd = newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"address", "profile", "--env-file", ""})
	assert.Error(t, cmd.Execute())
}

func TestQueryPath(t *testing.T) {
	path, err := queryPath("registry", nil)
	require.NoError(t, err)
	assert.Equal(t, "/v1/registry", path)

	path, err = queryPath("STATS", nil)
	require.NoError(t, err)
	assert.Equal(t, "/v1/dao/stats", path)

	path, err = queryPath("escrow", []string{"test 1"})
	require.NoError(t, err)
	assert.Equal(t, "/v1/escrow/test%201", path)

	_, err = queryPath("profile", nil)
	assert.Error(t, err)

	_, err = queryPath("unknown", []string{"key"})
	assert.Error(t, err)
}

func TestNewEscrowTestId(t *testing.T) {
	id := newEscrowTestId()
	assert.Len(t, id, 32)
	assert.NotEqual(t, id, newEscrowTestId())

	_, _, err := skillchain_program.GetEscrowAddress(&skillchain_program.GetEscrowAddressArgs{TestId: id})
	assert.NoError(t, err)
}
