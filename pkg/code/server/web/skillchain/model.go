package skillchain

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/bri1545/SkillChain/pkg/solana"
)

const (
	maxRequestBodySize = 64 * 1024
)

type submitRequest struct {
	instruction solana.Instruction
	signatures  map[string]solana.Signature
}

func newSubmitRequestFromHttpContext(r *http.Request) (*submitRequest, error) {
	httpRequestBody := struct {
		Instruction struct {
			Program  string `json:"program"`
			Accounts []struct {
				PublicKey  string `json:"pubkey"`
				IsSigner   bool   `json:"is_signer"`
				IsWritable bool   `json:"is_writable"`
			} `json:"accounts"`
			Data string `json:"data"`
		} `json:"instruction"`
		Signatures map[string]string `json:"signatures"`
	}{}

	if err := decodeJsonBody(r, &httpRequestBody); err != nil {
		return nil, err
	}

	program, err := decodePublicKey(httpRequestBody.Instruction.Program)
	if err != nil {
		return nil, errors.New("program is not a public key")
	}

	data, err := base64.StdEncoding.DecodeString(httpRequestBody.Instruction.Data)
	if err != nil {
		return nil, errors.New("data is not base64 encoded")
	}

	accounts := make([]solana.AccountMeta, len(httpRequestBody.Instruction.Accounts))
	for i, account := range httpRequestBody.Instruction.Accounts {
		key, err := decodePublicKey(account.PublicKey)
		if err != nil {
			return nil, errors.Errorf("account %d is not a public key", i)
		}

		accounts[i] = solana.AccountMeta{
			PublicKey:  key,
			IsSigner:   account.IsSigner,
			IsWritable: account.IsWritable,
		}
	}

	signatures := make(map[string]solana.Signature)
	for signer, encoded := range httpRequestBody.Signatures {
		if _, err := decodePublicKey(signer); err != nil {
			return nil, errors.Errorf("signer %s is not a public key", signer)
		}

		sig, err := solana.SignatureFromBase58(encoded)
		if err != nil {
			return nil, errors.Errorf("signature for %s is invalid", signer)
		}
		signatures[signer] = sig
	}

	return &submitRequest{
		instruction: solana.NewInstruction(program, data, accounts...),
		signatures:  signatures,
	}, nil
}

type verifySkillRequest struct {
	owner    ed25519.PublicKey
	skillId  string
	minScore uint8
}

func newVerifySkillRequestFromHttpContext(r *http.Request) (*verifySkillRequest, error) {
	httpRequestBody := struct {
		WalletAddress string `json:"wallet_address"`
		SkillId       string `json:"skill_id"`
		MinScore      *uint8 `json:"min_score"`
	}{}

	if err := decodeJsonBody(r, &httpRequestBody); err != nil {
		return nil, err
	}

	if len(httpRequestBody.WalletAddress) == 0 || len(httpRequestBody.SkillId) == 0 {
		return nil, errors.New("wallet_address and skill_id are required")
	}

	owner, err := decodePublicKey(httpRequestBody.WalletAddress)
	if err != nil {
		return nil, errors.New("wallet_address is not a public key")
	}

	res := &verifySkillRequest{
		owner:   owner,
		skillId: httpRequestBody.SkillId,
	}
	if httpRequestBody.MinScore != nil {
		res.minScore = *httpRequestBody.MinScore
	}
	return res, nil
}

type airdropRequest struct {
	address  ed25519.PublicKey
	lamports uint64
}

func newAirdropRequestFromHttpContext(r *http.Request) (*airdropRequest, error) {
	httpRequestBody := struct {
		Address  string `json:"address"`
		Lamports uint64 `json:"lamports"`
	}{}

	if err := decodeJsonBody(r, &httpRequestBody); err != nil {
		return nil, err
	}

	address, err := decodePublicKey(httpRequestBody.Address)
	if err != nil {
		return nil, errors.New("address is not a public key")
	}

	if httpRequestBody.Lamports == 0 {
		return nil, errors.New("lamports must be positive")
	}

	return &airdropRequest{
		address:  address,
		lamports: httpRequestBody.Lamports,
	}, nil
}

func decodeJsonBody(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodySize))
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return errors.New("invalid json body")
	}
	return nil
}

func decodePublicKey(value string) (ed25519.PublicKey, error) {
	decoded, err := base58.Decode(value)
	if err != nil {
		return nil, err
	}

	if len(decoded) != ed25519.PublicKeySize {
		return nil, errors.New("invalid public key length")
	}
	return decoded, nil
}
