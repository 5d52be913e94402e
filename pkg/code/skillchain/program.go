package skillchain

import (
	"context"
	"crypto/ed25519"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/bri1545/SkillChain/pkg/code/runtime"
	"github.com/bri1545/SkillChain/pkg/metrics"
	skillchain_program "github.com/bri1545/SkillChain/pkg/solana/skillchain"
)

const (
	metricsStructName = "skillchain.program"
)

// Program processes SkillChain instructions within the runtime
type Program struct {
	log *logrus.Entry
}

func NewProgram() *Program {
	return &Program{
		log: logrus.StandardLogger().WithField("type", "skillchain/program"),
	}
}

// ProgramID implements runtime.Program.ProgramID
func (p *Program) ProgramID() ed25519.PublicKey {
	return skillchain_program.PROGRAM_ID
}

// InstructionName implements runtime.Program.InstructionName
func (p *Program) InstructionName(data []byte) string {
	return skillchain_program.GetInstructionType(data).String()
}

// Process implements runtime.Program.Process
func (p *Program) Process(ctx context.Context, ixCtx *runtime.InstructionContext) error {
	instructionType := skillchain_program.GetInstructionType(ixCtx.Data())

	tracer := metrics.TraceMethodCall(ctx, metricsStructName, instructionType.String())
	defer tracer.End()

	var err error
	switch instructionType {
	case skillchain_program.InstructionTypeInitializeRegistry:
		err = p.initializeRegistry(ctx, ixCtx)
	case skillchain_program.InstructionTypeAddValidator:
		err = p.addValidator(ctx, ixCtx)
	case skillchain_program.InstructionTypeCreateUserProfile:
		err = p.createUserProfile(ctx, ixCtx)
	case skillchain_program.InstructionTypeMintCertificate:
		err = p.mintCertificate(ctx, ixCtx)
	case skillchain_program.InstructionTypeUpdateSkillScore:
		err = p.updateSkillScore(ctx, ixCtx)
	case skillchain_program.InstructionTypeDistributeRewards:
		err = p.distributeRewards(ctx, ixCtx)
	case skillchain_program.InstructionTypeInitializeSkillToken:
		err = p.initializeSkillToken(ctx, ixCtx)
	case skillchain_program.InstructionTypeCreateEscrow:
		err = p.createEscrow(ctx, ixCtx)
	case skillchain_program.InstructionTypeSetValidatorStatus:
		err = p.setValidatorStatus(ctx, ixCtx)
	default:
		err = runtime.ErrUnknownInstruction
	}

	if err != nil {
		tracer.OnError(err)
	}
	return err
}

func (p *Program) loadRegistry(ixCtx *runtime.InstructionContext, key ed25519.PublicKey) (*runtime.AccountInfo, *skillchain_program.SkillRegistryAccount, error) {
	account, err := ixCtx.Account(key)
	if err != nil {
		return nil, nil, err
	}

	address, _, err := skillchain_program.GetSkillRegistryAddress()
	if err != nil {
		return nil, nil, err
	}

	if err := ixCtx.RequireAddress(account, address); err != nil {
		return nil, nil, err
	}

	var registry skillchain_program.SkillRegistryAccount
	if err := ixCtx.LoadProgramAccount(account, &registry); err != nil {
		return nil, nil, err
	}
	return account, &registry, nil
}

func (p *Program) loadValidator(ixCtx *runtime.InstructionContext, key ed25519.PublicKey) (*runtime.AccountInfo, *skillchain_program.ValidatorAccount, error) {
	account, err := ixCtx.Account(key)
	if err != nil {
		return nil, nil, err
	}

	var validator skillchain_program.ValidatorAccount
	if err := ixCtx.LoadProgramAccount(account, &validator); err != nil {
		return nil, nil, err
	}

	address, _, err := skillchain_program.GetValidatorAddress(&skillchain_program.GetValidatorAddressArgs{
		Validator: validator.Address,
	})
	if err != nil {
		return nil, nil, err
	}

	if err := ixCtx.RequireAddress(account, address); err != nil {
		return nil, nil, err
	}
	return account, &validator, nil
}

func (p *Program) loadUserProfile(ixCtx *runtime.InstructionContext, key, owner ed25519.PublicKey) (*runtime.AccountInfo, *skillchain_program.UserProfileAccount, error) {
	account, err := ixCtx.Account(key)
	if err != nil {
		return nil, nil, err
	}

	address, _, err := skillchain_program.GetUserProfileAddress(&skillchain_program.GetUserProfileAddressArgs{
		Owner: owner,
	})
	if err != nil {
		return nil, nil, err
	}

	if err := ixCtx.RequireAddress(account, address); err != nil {
		return nil, nil, err
	}

	var profile skillchain_program.UserProfileAccount
	if err := ixCtx.LoadProgramAccount(account, &profile); err != nil {
		return nil, nil, err
	}
	return account, &profile, nil
}

func (p *Program) signer(ixCtx *runtime.InstructionContext, key ed25519.PublicKey) (*runtime.AccountInfo, error) {
	account, err := ixCtx.Account(key)
	if err != nil {
		return nil, err
	}

	if err := ixCtx.RequireSigner(account); err != nil {
		return nil, err
	}
	return account, nil
}

func checkedAddUint32(a, b uint32) (uint32, error) {
	if a > math.MaxUint32-b {
		return 0, skillchain_program.ErrArithmeticOverflow
	}
	return a + b, nil
}

func checkedAddUint64(a, b uint64) (uint64, error) {
	if a > math.MaxUint64-b {
		return 0, skillchain_program.ErrArithmeticOverflow
	}
	return a + b, nil
}
