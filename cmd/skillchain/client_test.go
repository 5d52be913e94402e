package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	code_data "github.com/bri1545/SkillChain/pkg/code/data"
	"github.com/bri1545/SkillChain/pkg/code/runtime"
	web "github.com/bri1545/SkillChain/pkg/code/server/web/skillchain"
	"github.com/bri1545/SkillChain/pkg/code/skillchain"
	"github.com/bri1545/SkillChain/pkg/rate"
	"github.com/bri1545/SkillChain/pkg/retry"
	skillchain_program "github.com/bri1545/SkillChain/pkg/solana/skillchain"
	"github.com/bri1545/SkillChain/pkg/testutil"
)

func setupNode(t *testing.T) *httptest.Server {
	t.Setenv(runtime.EnableAirdropsConfigEnvName, "true")

	rt := runtime.New(code_data.NewTestDataProvider(), runtime.WithEnvConfigs())
	rt.RegisterProgram(skillchain.NewProgram())

	server := web.NewSkillChainServer(rt, skillchain.NewReader(rt, skillchain.WithEnvConfigs()), &rate.NoLimiter{})
	node := httptest.NewServer(server.Router())
	t.Cleanup(node.Close)
	return node
}

func TestApiClient_EndToEnd(t *testing.T) {
	ctx := context.Background()
	node := setupNode(t)
	client := newApiClient(node.URL)

	authority := testutil.NewRandomKeypair(t)
	registry, _, err := skillchain_program.GetSkillRegistryAddress()
	require.NoError(t, err)

	_, err = client.get(ctx, "/v1/registry")
	var apiErr *apiError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode())

	ix := skillchain_program.NewInitializeRegistryInstruction(&skillchain_program.InitializeRegistryInstructionAccounts{
		Registry:  registry,
		Authority: authority.Public,
	})

	res, err := client.submit(ctx, ix, authority.Private)
	require.NoError(t, err)
	assert.Equal(t, "initialize_registry", res["instruction"])

	res, err = client.get(ctx, "/v1/registry")
	require.NoError(t, err)
	assert.Equal(t, base58.Encode(authority.Public), res["registry"].(map[string]interface{})["authority"])

	_, err = client.submit(ctx, ix, authority.Private)
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode())

	// Program errors carry their code and name
	other := testutil.NewRandomKeypair(t)
	validator, _, err := skillchain_program.GetValidatorAddress(&skillchain_program.GetValidatorAddressArgs{Validator: other.Public})
	require.NoError(t, err)
	_, err = client.submit(ctx, skillchain_program.NewAddValidatorInstruction(
		&skillchain_program.AddValidatorInstructionAccounts{
			Validator:        validator,
			ValidatorAddress: other.Public,
			Authority:        other.Public,
			Registry:         registry,
		},
		&skillchain_program.AddValidatorInstructionArgs{ValidatorAddress: other.Public},
	), other.Private)
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode())
	assert.Equal(t, "Unauthorized", apiErr.errorName)
	assert.EqualValues(t, 6000, apiErr.errorCode)

	_, err = client.post(ctx, "/v1/airdrop", map[string]interface{}{
		"address":  base58.Encode(other.Public),
		"lamports": 500,
	})
	require.NoError(t, err)
}

func TestApiClient_RetriesRejectedRequests(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "application/json")
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"success":false,"error":"rate limited"}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer server.Close()

	client := newApiClient(server.URL)
	client.strategies = []retry.Strategy{
		retry.Limit(maxRequestAttempts),
		retry.RetriableStatusCodes(http.StatusTooManyRequests, http.StatusServiceUnavailable),
	}

	res, err := client.get(context.Background(), "/v1/registry")
	require.NoError(t, err)
	assert.Equal(t, true, res["success"])
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestApiClient_DoesNotRetryExecutedRequests(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("content-type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"error":"internal server error"}`))
	}))
	defer server.Close()

	client := newApiClient(server.URL)
	_, err := client.post(context.Background(), "/v1/submit", map[string]interface{}{})

	var apiErr *apiError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode())
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}
