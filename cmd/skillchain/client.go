package main

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/bri1545/SkillChain/pkg/retry"
	"github.com/bri1545/SkillChain/pkg/retry/backoff"
	"github.com/bri1545/SkillChain/pkg/solana"
)

const (
	defaultServerURL = "http://localhost:8080"

	maxRequestAttempts = 5
	maxResponseSize    = 1 << 20
)

type apiError struct {
	statusCode int
	message    string
	errorCode  uint32
	errorName  string
}

func (e *apiError) Error() string {
	if len(e.errorName) > 0 {
		return fmt.Sprintf("%s (%d): %s", e.errorName, e.errorCode, e.message)
	}
	return fmt.Sprintf("http %d: %s", e.statusCode, e.message)
}

// StatusCode implements retry.StatusCoder
func (e *apiError) StatusCode() int {
	return e.statusCode
}

type apiResponse map[string]interface{}

type apiClient struct {
	log        *logrus.Entry
	baseURL    string
	httpClient *http.Client
	strategies []retry.Strategy
}

func newApiClient(baseURL string) *apiClient {
	return &apiClient{
		log:        logrus.StandardLogger().WithField("type", "cmd/client"),
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		strategies: []retry.Strategy{
			retry.Limit(maxRequestAttempts),
			// Only requests that were rejected before execution are safe to resend
			retry.RetriableStatusCodes(http.StatusTooManyRequests, http.StatusServiceUnavailable),
			retry.BackoffWithJitter(backoff.BinaryExponential(250*time.Millisecond), 5*time.Second, 0.1),
		},
	}
}

type submitAccountMeta struct {
	PublicKey  string `json:"pubkey"`
	IsSigner   bool   `json:"is_signer"`
	IsWritable bool   `json:"is_writable"`
}

type submitRequest struct {
	Instruction struct {
		Program  string              `json:"program"`
		Accounts []submitAccountMeta `json:"accounts"`
		Data     string              `json:"data"`
	} `json:"instruction"`
	Signatures map[string]string `json:"signatures"`
}

func newSubmitRequest(ix solana.Instruction, signers ...ed25519.PrivateKey) *submitRequest {
	req := &submitRequest{
		Signatures: make(map[string]string),
	}

	req.Instruction.Program = base58.Encode(ix.Program)
	req.Instruction.Data = base64.StdEncoding.EncodeToString(ix.Data)
	for _, account := range ix.Accounts {
		req.Instruction.Accounts = append(req.Instruction.Accounts, submitAccountMeta{
			PublicKey:  base58.Encode(account.PublicKey),
			IsSigner:   account.IsSigner,
			IsWritable: account.IsWritable,
		})
	}

	for _, signer := range signers {
		pub := signer.Public().(ed25519.PublicKey)
		req.Signatures[base58.Encode(pub)] = solana.SignInstruction(signer, ix).ToBase58()
	}

	return req
}

func (c *apiClient) submit(ctx context.Context, ix solana.Instruction, signers ...ed25519.PrivateKey) (apiResponse, error) {
	return c.do(ctx, http.MethodPost, "/v1/submit", newSubmitRequest(ix, signers...))
}

func (c *apiClient) get(ctx context.Context, path string) (apiResponse, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

func (c *apiClient) post(ctx context.Context, path string, body interface{}) (apiResponse, error) {
	return c.do(ctx, http.MethodPost, path, body)
}

func (c *apiClient) do(ctx context.Context, method, path string, body interface{}) (apiResponse, error) {
	var encoded []byte
	if body != nil {
		var err error
		encoded, err = json.Marshal(body)
		if err != nil {
			return nil, err
		}
	}

	log := c.log.WithFields(logrus.Fields{
		"method": method,
		"path":   path,
	})

	var res apiResponse
	attempts, err := retry.RetryContext(ctx, func() error {
		var err error
		res, err = c.doOnce(ctx, method, path, encoded)
		if err != nil {
			log.WithError(err).Debug("request failed")
		}
		return err
	}, c.strategies...)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s failed after %d attempt(s)", method, path, attempts)
	}
	return res, nil
}

func (c *apiClient) doOnce(ctx context.Context, method, path string, body []byte) (apiResponse, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var decoded apiResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&decoded); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, &apiError{statusCode: resp.StatusCode, message: resp.Status}
		}
		return nil, errors.Wrap(err, "invalid response body")
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &apiError{statusCode: resp.StatusCode}
		if msg, ok := decoded["error"].(string); ok {
			apiErr.message = msg
		}
		if name, ok := decoded["error_name"].(string); ok {
			apiErr.errorName = name
		}
		if code, ok := decoded["error_code"].(float64); ok {
			apiErr.errorCode = uint32(code)
		}
		return nil, apiErr
	}

	return decoded, nil
}
