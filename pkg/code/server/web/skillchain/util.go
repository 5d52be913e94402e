package skillchain

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bri1545/SkillChain/pkg/code/data/ledger"
	"github.com/bri1545/SkillChain/pkg/code/runtime"
	code_skillchain "github.com/bri1545/SkillChain/pkg/code/skillchain"
	"github.com/bri1545/SkillChain/pkg/solana"
	skillchain_program "github.com/bri1545/SkillChain/pkg/solana/skillchain"
)

const (
	successJsonKey   = "success"
	errorJsonKey     = "error"
	errorCodeJsonKey = "error_code"
	errorNameJsonKey = "error_name"
)

var errInternal = errors.New("internal server error")

type GenericApiResponseBody map[string]any

func NewGenericApiSuccessResponseBody() GenericApiResponseBody {
	return map[string]any{
		successJsonKey: true,
	}
}

func NewGenericApiFailureResponseBody(err error) GenericApiResponseBody {
	body := map[string]any{
		successJsonKey: false,
		errorJsonKey:   err.Error(),
	}

	var programErr skillchain_program.ProgramError
	if errors.As(err, &programErr) {
		body[errorCodeJsonKey] = programErr.Code()
		body[errorNameJsonKey] = programErr.Name()
	}

	return body
}

func (b *GenericApiResponseBody) ToString() string {
	marshalled, _ := json.Marshal(b)
	return string(marshalled)
}

// HandleErrorInWebContext maps an error to the status code and error that is
// safe to return to the caller
func HandleErrorInWebContext(err error) (int, error) {
	if err == nil {
		return http.StatusOK, nil
	}

	var programErr skillchain_program.ProgramError
	if errors.As(err, &programErr) {
		return http.StatusBadRequest, programErr
	}

	switch {
	case errors.Is(err, runtime.ErrMissingRequiredSignature),
		errors.Is(err, solana.ErrInvalidSignature):
		return http.StatusUnauthorized, err

	case errors.Is(err, runtime.ErrAirdropsDisabled):
		return http.StatusForbidden, err

	case errors.Is(err, code_skillchain.ErrAccountNotFound),
		errors.Is(err, ledger.ErrAccountNotFound):
		return http.StatusNotFound, err

	case errors.Is(err, runtime.ErrAccountAlreadyInitialized),
		errors.Is(err, ledger.ErrAccountExists),
		errors.Is(err, ledger.ErrStaleVersion):
		return http.StatusConflict, err

	case errors.Is(err, runtime.ErrUnknownProgram),
		errors.Is(err, runtime.ErrUnknownInstruction),
		errors.Is(err, runtime.ErrAccountNotProvided),
		errors.Is(err, runtime.ErrAccountNotInitialized),
		errors.Is(err, runtime.ErrIncorrectProgramId),
		errors.Is(err, runtime.ErrInvalidSeeds),
		errors.Is(err, runtime.ErrInvalidAccountData),
		errors.Is(err, runtime.ErrReadonlyAccountModified),
		errors.Is(err, runtime.ErrInsufficientFunds),
		errors.Is(err, runtime.ErrExternalAccountLamportSpend),
		errors.Is(err, runtime.ErrLamportOverflow),
		errors.Is(err, runtime.ErrUnbalancedInstruction),
		errors.Is(err, runtime.ErrAirdropAmountExceedsLimit),
		errors.Is(err, runtime.ErrAirdropToProgramOwnedAccount),
		errors.Is(err, solana.ErrIncorrectProgram),
		errors.Is(err, solana.ErrIncorrectInstruction),
		errors.Is(err, solana.ErrNotEnoughAccountKeys),
		errors.Is(err, solana.ErrMaxSeedLengthExceeded),
		errors.Is(err, solana.ErrInvalidPublicKey),
		errors.Is(err, skillchain_program.ErrInvalidInstructionData):
		return http.StatusBadRequest, err
	}

	return http.StatusInternalServerError, errInternal
}
