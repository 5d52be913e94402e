package skillchain

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	xrate "golang.org/x/time/rate"

	code_data "github.com/bri1545/SkillChain/pkg/code/data"
	"github.com/bri1545/SkillChain/pkg/code/runtime"
	code_skillchain "github.com/bri1545/SkillChain/pkg/code/skillchain"
	"github.com/bri1545/SkillChain/pkg/rate"
	"github.com/bri1545/SkillChain/pkg/solana"
	skillchain_program "github.com/bri1545/SkillChain/pkg/solana/skillchain"
	"github.com/bri1545/SkillChain/pkg/testutil"
)

type testEnv struct {
	ctx       context.Context
	runtime   *runtime.Runtime
	router    http.Handler
	authority *testutil.Keypair
	registry  ed25519.PublicKey
}

func setup(t *testing.T, limiter rate.Limiter) *testEnv {
	t.Setenv(runtime.EnableAirdropsConfigEnvName, "true")

	rt := runtime.New(code_data.NewTestDataProvider(), runtime.WithEnvConfigs())
	rt.RegisterProgram(code_skillchain.NewProgram())
	reader := code_skillchain.NewReader(rt, code_skillchain.WithEnvConfigs())

	if limiter == nil {
		limiter = &rate.NoLimiter{}
	}

	registry, _, err := skillchain_program.GetSkillRegistryAddress()
	require.NoError(t, err)

	return &testEnv{
		ctx:       context.Background(),
		runtime:   rt,
		router:    NewSkillChainServer(rt, reader, limiter).Router(),
		authority: testutil.NewRandomKeypair(t),
		registry:  registry,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) (int, map[string]any) {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	assert.Equal(t, "application/json", rec.Header().Get(contentTypeHeaderName))

	var res map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	return rec.Code, res
}

func (e *testEnv) submit(t *testing.T, ix solana.Instruction, signers ...ed25519.PrivateKey) (int, map[string]any) {
	return e.do(t, http.MethodPost, "/v1/submit", newSubmitBody(ix, signers...))
}

func newSubmitBody(ix solana.Instruction, signers ...ed25519.PrivateKey) map[string]any {
	accounts := make([]map[string]any, len(ix.Accounts))
	for i, account := range ix.Accounts {
		accounts[i] = map[string]any{
			"pubkey":      base58.Encode(account.PublicKey),
			"is_signer":   account.IsSigner,
			"is_writable": account.IsWritable,
		}
	}

	signatures := make(map[string]string)
	for _, signer := range signers {
		sig := solana.SignInstruction(signer, ix)
		signatures[base58.Encode(signer.Public().(ed25519.PublicKey))] = sig.ToBase58()
	}

	return map[string]any{
		"instruction": map[string]any{
			"program":  base58.Encode(ix.Program),
			"accounts": accounts,
			"data":     base64.StdEncoding.EncodeToString(ix.Data),
		},
		"signatures": signatures,
	}
}

func (e *testEnv) initializeRegistryInstruction() solana.Instruction {
	return skillchain_program.NewInitializeRegistryInstruction(&skillchain_program.InitializeRegistryInstructionAccounts{
		Registry:  e.registry,
		Authority: e.authority.Public,
	})
}

func (e *testEnv) addValidatorInstruction(t *testing.T, authority, validator ed25519.PublicKey) solana.Instruction {
	address, _, err := skillchain_program.GetValidatorAddress(&skillchain_program.GetValidatorAddressArgs{Validator: validator})
	require.NoError(t, err)

	return skillchain_program.NewAddValidatorInstruction(
		&skillchain_program.AddValidatorInstructionAccounts{
			Validator:        address,
			ValidatorAddress: validator,
			Authority:        authority,
			Registry:         e.registry,
		},
		&skillchain_program.AddValidatorInstructionArgs{ValidatorAddress: validator},
	)
}

func TestSubmit_HappyPath(t *testing.T) {
	env := setup(t, nil)

	statusCode, res := env.do(t, http.MethodGet, "/v1/registry", nil)
	assert.Equal(t, http.StatusNotFound, statusCode)
	assert.Equal(t, false, res["success"])

	statusCode, res = env.submit(t, env.initializeRegistryInstruction(), env.authority.Private)
	require.Equal(t, http.StatusOK, statusCode, res)
	assert.Equal(t, true, res["success"])
	assert.Equal(t, "initialize_registry", res["instruction"])

	statusCode, res = env.do(t, http.MethodGet, "/v1/registry", nil)
	require.Equal(t, http.StatusOK, statusCode)
	assert.Equal(t, base58.Encode(env.registry), res["pda"])
	assert.Equal(t, base58.Encode(skillchain_program.PROGRAM_ID), res["program_id"])

	registry := res["registry"].(map[string]any)
	assert.Equal(t, base58.Encode(env.authority.Public), registry["authority"])
	assert.EqualValues(t, 0, registry["total_validators"])

	statusCode, res = env.submit(t, env.initializeRegistryInstruction(), env.authority.Private)
	assert.Equal(t, http.StatusConflict, statusCode)
	assert.Equal(t, false, res["success"])
}

func TestSubmit_ProgramError(t *testing.T) {
	env := setup(t, nil)

	statusCode, _ := env.submit(t, env.initializeRegistryInstruction(), env.authority.Private)
	require.Equal(t, http.StatusOK, statusCode)

	nonAuthority := testutil.NewRandomKeypair(t)
	validator := testutil.GenerateSolanaKeys(t, 1)[0]

	statusCode, res := env.submit(t, env.addValidatorInstruction(t, nonAuthority.Public, validator), nonAuthority.Private)
	assert.Equal(t, http.StatusBadRequest, statusCode)
	assert.Equal(t, false, res["success"])
	assert.EqualValues(t, 6000, res["error_code"])
	assert.Equal(t, "Unauthorized", res["error_name"])

	statusCode, res = env.submit(t, env.addValidatorInstruction(t, env.authority.Public, validator), env.authority.Private)
	require.Equal(t, http.StatusOK, statusCode, res)

	statusCode, res = env.do(t, http.MethodGet, "/v1/validator/"+base58.Encode(validator), nil)
	require.Equal(t, http.StatusOK, statusCode)
	view := res["validator"].(map[string]any)
	assert.Equal(t, base58.Encode(validator), view["address"])
	assert.Equal(t, true, view["is_active"])
	assert.EqualValues(t, 100, view["reputation"])
}

func TestSubmit_InvalidRequests(t *testing.T) {
	env := setup(t, nil)

	// Missing signature
	statusCode, res := env.submit(t, env.initializeRegistryInstruction())
	assert.Equal(t, http.StatusUnauthorized, statusCode)
	assert.Equal(t, false, res["success"])

	// Signature by the wrong key
	body := newSubmitBody(env.initializeRegistryInstruction())
	wrongSig := solana.SignInstruction(testutil.GenerateSolanaKeypair(t), env.initializeRegistryInstruction())
	body["signatures"] = map[string]string{base58.Encode(env.authority.Public): wrongSig.ToBase58()}
	statusCode, _ = env.do(t, http.MethodPost, "/v1/submit", body)
	assert.Equal(t, http.StatusUnauthorized, statusCode)

	// Unknown program
	ix := env.initializeRegistryInstruction()
	ix.Program = testutil.GenerateSolanaKeys(t, 1)[0]
	statusCode, _ = env.submit(t, ix, env.authority.Private)
	assert.Equal(t, http.StatusBadRequest, statusCode)

	// Malformed bodies
	statusCode, _ = env.do(t, http.MethodPost, "/v1/submit", "not an object")
	assert.Equal(t, http.StatusBadRequest, statusCode)

	body = newSubmitBody(env.initializeRegistryInstruction(), env.authority.Private)
	body["instruction"].(map[string]any)["program"] = "invalid"
	statusCode, _ = env.do(t, http.MethodPost, "/v1/submit", body)
	assert.Equal(t, http.StatusBadRequest, statusCode)

	body = newSubmitBody(env.initializeRegistryInstruction(), env.authority.Private)
	body["instruction"].(map[string]any)["data"] = "%%%"
	statusCode, _ = env.do(t, http.MethodPost, "/v1/submit", body)
	assert.Equal(t, http.StatusBadRequest, statusCode)
}

func TestSubmit_RateLimited(t *testing.T) {
	env := setup(t, rate.NewLocalRateLimiter(xrate.Limit(0.001), 1))

	statusCode, _ := env.submit(t, env.initializeRegistryInstruction(), env.authority.Private)
	require.Equal(t, http.StatusOK, statusCode)

	statusCode, res := env.submit(t, env.initializeRegistryInstruction(), env.authority.Private)
	assert.Equal(t, http.StatusTooManyRequests, statusCode)
	assert.Equal(t, "rate limited", res["error"])

	// Limits are partitioned by signer
	other := testutil.NewRandomKeypair(t)
	statusCode, _ = env.submit(t, env.addValidatorInstruction(t, other.Public, other.Public), other.Private)
	assert.Equal(t, http.StatusBadRequest, statusCode)
}

func TestSubmit_RateLimitedAfterSignatureVerification(t *testing.T) {
	env := setup(t, rate.NewLocalRateLimiter(xrate.Limit(0.001), 1))

	forged := func() map[string]any {
		body := newSubmitBody(env.initializeRegistryInstruction())
		wrongSig := solana.SignInstruction(testutil.GenerateSolanaKeypair(t), env.initializeRegistryInstruction())
		body["signatures"] = map[string]string{base58.Encode(env.authority.Public): wrongSig.ToBase58()}
		return body
	}

	// Unverified requests claiming the authority never use its quota
	for i := 0; i < 3; i++ {
		statusCode, _ := env.do(t, http.MethodPost, "/v1/submit", forged())
		assert.Equal(t, http.StatusUnauthorized, statusCode)

		statusCode, _ = env.submit(t, env.initializeRegistryInstruction())
		assert.Equal(t, http.StatusUnauthorized, statusCode)
	}

	statusCode, res := env.submit(t, env.initializeRegistryInstruction(), env.authority.Private)
	require.Equal(t, http.StatusOK, statusCode, res)

	// Nor are they executed once the quota is used up
	statusCode, _ = env.do(t, http.MethodPost, "/v1/submit", forged())
	assert.Equal(t, http.StatusUnauthorized, statusCode)

	statusCode, _ = env.submit(t, env.initializeRegistryInstruction(), env.authority.Private)
	assert.Equal(t, http.StatusTooManyRequests, statusCode)
}

func TestProfileAndVerifySkill(t *testing.T) {
	env := setup(t, nil)

	statusCode, _ := env.submit(t, env.initializeRegistryInstruction(), env.authority.Private)
	require.Equal(t, http.StatusOK, statusCode)

	validator := testutil.GenerateSolanaKeys(t, 1)[0]
	statusCode, _ = env.submit(t, env.addValidatorInstruction(t, env.authority.Public, validator), env.authority.Private)
	require.Equal(t, http.StatusOK, statusCode)

	user := testutil.NewRandomKeypair(t)
	profileAddress, _, err := skillchain_program.GetUserProfileAddress(&skillchain_program.GetUserProfileAddressArgs{Owner: user.Public})
	require.NoError(t, err)

	statusCode, res := env.do(t, http.MethodGet, "/v1/profile/"+base58.Encode(user.Public), nil)
	require.Equal(t, http.StatusOK, statusCode)
	assert.Equal(t, false, res["exists"])
	assert.Equal(t, base58.Encode(profileAddress), res["pda"])
	assert.Nil(t, res["profile"])

	statusCode, _ = env.submit(t, skillchain_program.NewCreateUserProfileInstruction(&skillchain_program.CreateUserProfileInstructionAccounts{
		UserProfile: profileAddress,
		User:        user.Public,
		Registry:    env.registry,
	}), user.Private)
	require.Equal(t, http.StatusOK, statusCode)

	validatorAddress, _, err := skillchain_program.GetValidatorAddress(&skillchain_program.GetValidatorAddressArgs{Validator: validator})
	require.NoError(t, err)

	nftMint := testutil.NewRandomKeypair(t)
	statusCode, res = env.submit(t, skillchain_program.NewMintCertificateInstruction(
		&skillchain_program.MintCertificateInstructionAccounts{
			UserProfile: profileAddress,
			User:        user.Public,
			Validator:   validatorAddress,
			Registry:    env.registry,
			NftMint:     nftMint.Public,
		},
		&skillchain_program.MintCertificateInstructionArgs{SkillId: "rust-101", Score: 85},
	), user.Private, nftMint.Private)
	require.Equal(t, http.StatusOK, statusCode, res)

	statusCode, res = env.do(t, http.MethodGet, "/v1/profile/"+base58.Encode(user.Public), nil)
	require.Equal(t, http.StatusOK, statusCode)
	assert.Equal(t, true, res["exists"])
	profile := res["profile"].(map[string]any)
	assert.EqualValues(t, 850, profile["skill_score"])
	skills := profile["skills"].([]any)
	require.Len(t, skills, 1)
	assert.Equal(t, "rust-101", skills[0].(map[string]any)["id"])
	assert.Equal(t, "Middle", skills[0].(map[string]any)["level"])

	statusCode, res = env.do(t, http.MethodPost, "/v1/verify-skill", map[string]any{
		"wallet_address": base58.Encode(user.Public),
		"skill_id":       "rust-101",
		"min_score":      80,
	})
	require.Equal(t, http.StatusOK, statusCode)
	assert.Equal(t, true, res["verified"])
	assert.Equal(t, "rust-101", res["skill"].(map[string]any)["id"])

	statusCode, res = env.do(t, http.MethodPost, "/v1/verify-skill", map[string]any{
		"wallet_address": base58.Encode(user.Public),
		"skill_id":       "rust-101",
		"min_score":      90,
	})
	require.Equal(t, http.StatusOK, statusCode)
	assert.Equal(t, false, res["verified"])

	statusCode, res = env.do(t, http.MethodPost, "/v1/verify-skill", map[string]any{
		"wallet_address": base58.Encode(user.Public),
		"skill_id":       "go-101",
	})
	require.Equal(t, http.StatusOK, statusCode)
	assert.Equal(t, false, res["verified"])
	assert.Nil(t, res["skill"])

	statusCode, _ = env.do(t, http.MethodPost, "/v1/verify-skill", map[string]any{
		"wallet_address": base58.Encode(user.Public),
	})
	assert.Equal(t, http.StatusBadRequest, statusCode)

	statusCode, _ = env.do(t, http.MethodGet, "/v1/profile/invalid", nil)
	assert.Equal(t, http.StatusBadRequest, statusCode)

	statusCode, res = env.do(t, http.MethodGet, "/v1/dao/stats", nil)
	require.Equal(t, http.StatusOK, statusCode)
	stats := res["stats"].(map[string]any)
	assert.EqualValues(t, 1, stats["total_validators"])
	assert.EqualValues(t, 1, stats["total_certificates"])
	assert.EqualValues(t, 1, stats["total_users"])
	assert.EqualValues(t, 15, stats["reward_distribution"].(map[string]any)["senior"])
}

func TestEscrowAndAirdrop(t *testing.T) {
	env := setup(t, nil)

	payer := testutil.NewRandomKeypair(t)

	statusCode, _ := env.do(t, http.MethodPost, "/v1/airdrop", map[string]any{
		"address":  base58.Encode(payer.Public),
		"lamports": 1_000,
	})
	require.Equal(t, http.StatusOK, statusCode)

	statusCode, _ = env.do(t, http.MethodPost, "/v1/airdrop", map[string]any{
		"address":  base58.Encode(payer.Public),
		"lamports": 0,
	})
	assert.Equal(t, http.StatusBadRequest, statusCode)

	statusCode, _ = env.do(t, http.MethodGet, "/v1/escrow/test-1", nil)
	assert.Equal(t, http.StatusNotFound, statusCode)

	escrow, _, err := skillchain_program.GetEscrowAddress(&skillchain_program.GetEscrowAddressArgs{TestId: "test-1"})
	require.NoError(t, err)

	statusCode, res := env.submit(t, skillchain_program.NewCreateEscrowInstruction(
		&skillchain_program.CreateEscrowInstructionAccounts{
			Escrow: escrow,
			Payer:  payer.Public,
		},
		&skillchain_program.CreateEscrowInstructionArgs{
			TestId:          "test-1",
			Amount:          100,
			DaoShare:        45,
			ProjectShare:    30,
			RewardPoolShare: 25,
		},
	), payer.Private)
	require.Equal(t, http.StatusOK, statusCode, res)

	statusCode, res = env.do(t, http.MethodGet, "/v1/escrow/test-1", nil)
	require.Equal(t, http.StatusOK, statusCode)
	assert.Equal(t, base58.Encode(escrow), res["pda"])
	view := res["escrow"].(map[string]any)
	assert.EqualValues(t, 100, view["amount"])
	assert.EqualValues(t, 100, view["lamports"])
	assert.Equal(t, false, view["is_distributed"])

	statusCode, _ = env.do(t, http.MethodGet, "/v1/escrow/0123456789abcdef0123456789abcdef0", nil)
	assert.Equal(t, http.StatusBadRequest, statusCode)
}

func TestGetAddress(t *testing.T) {
	env := setup(t, nil)

	statusCode, res := env.do(t, http.MethodGet, "/v1/address/registry", nil)
	require.Equal(t, http.StatusOK, statusCode)
	assert.Equal(t, base58.Encode(env.registry), res["address"])

	wallet := testutil.GenerateSolanaKeys(t, 1)[0]
	expected, bump, err := skillchain_program.GetUserProfileAddress(&skillchain_program.GetUserProfileAddressArgs{Owner: wallet})
	require.NoError(t, err)

	statusCode, res = env.do(t, http.MethodGet, "/v1/address/profile/"+base58.Encode(wallet), nil)
	require.Equal(t, http.StatusOK, statusCode)
	assert.Equal(t, base58.Encode(expected), res["address"])
	assert.EqualValues(t, bump, res["bump"])

	statusCode, _ = env.do(t, http.MethodGet, "/v1/address/unknown", nil)
	assert.Equal(t, http.StatusBadRequest, statusCode)

	statusCode, _ = env.do(t, http.MethodGet, "/v1/address/profile", nil)
	assert.Equal(t, http.StatusBadRequest, statusCode)
}
