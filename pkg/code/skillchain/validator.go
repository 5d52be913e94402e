package skillchain

import (
	"bytes"
	"context"

	"github.com/mr-tron/base58"
	"github.com/sirupsen/logrus"

	"github.com/bri1545/SkillChain/pkg/code/runtime"
	skillchain_program "github.com/bri1545/SkillChain/pkg/solana/skillchain"
)

func (p *Program) addValidator(ctx context.Context, ixCtx *runtime.InstructionContext) error {
	accounts, args, err := skillchain_program.DecompileAddValidatorInstruction(ixCtx.Instruction)
	if err != nil {
		return err
	}

	authority, err := p.signer(ixCtx, accounts.Authority)
	if err != nil {
		return err
	}

	registryAccount, registry, err := p.loadRegistry(ixCtx, accounts.Registry)
	if err != nil {
		return err
	}

	if !bytes.Equal(authority.Key, registry.Authority) {
		return skillchain_program.ErrUnauthorized
	}

	if !bytes.Equal(args.ValidatorAddress, accounts.ValidatorAddress) {
		return runtime.ErrInvalidSeeds
	}

	validatorAccount, err := ixCtx.Account(accounts.Validator)
	if err != nil {
		return err
	}

	address, bump, err := skillchain_program.GetValidatorAddress(&skillchain_program.GetValidatorAddressArgs{
		Validator: args.ValidatorAddress,
	})
	if err != nil {
		return err
	}

	if err := ixCtx.RequireAddress(validatorAccount, address); err != nil {
		return err
	}

	validator := &skillchain_program.ValidatorAccount{
		Address:    args.ValidatorAddress,
		Reputation: skillchain_program.DefaultValidatorReputation,
		IsActive:   true,
		JoinedAt:   ixCtx.Now().Unix(),
		Bump:       bump,
	}
	if err := ixCtx.CreateProgramAccount(validatorAccount, authority, validator); err != nil {
		return err
	}

	registry.TotalValidators, err = checkedAddUint32(registry.TotalValidators, 1)
	if err != nil {
		return err
	}

	if err := ixCtx.SaveProgramAccount(registryAccount, registry); err != nil {
		return err
	}

	p.log.WithFields(logrus.Fields{
		"method":    "addValidator",
		"validator": base58.Encode(args.ValidatorAddress),
	}).Debug("validator added")

	return nil
}

func (p *Program) setValidatorStatus(ctx context.Context, ixCtx *runtime.InstructionContext) error {
	accounts, args, err := skillchain_program.DecompileSetValidatorStatusInstruction(ixCtx.Instruction)
	if err != nil {
		return err
	}

	authority, err := p.signer(ixCtx, accounts.Authority)
	if err != nil {
		return err
	}

	_, registry, err := p.loadRegistry(ixCtx, accounts.Registry)
	if err != nil {
		return err
	}

	if !bytes.Equal(authority.Key, registry.Authority) {
		return skillchain_program.ErrUnauthorized
	}

	validatorAccount, validator, err := p.loadValidator(ixCtx, accounts.Validator)
	if err != nil {
		return err
	}

	validator.IsActive = args.IsActive
	if err := ixCtx.SaveProgramAccount(validatorAccount, validator); err != nil {
		return err
	}

	p.log.WithFields(logrus.Fields{
		"method":    "setValidatorStatus",
		"validator": base58.Encode(validator.Address),
		"is_active": args.IsActive,
	}).Debug("validator status updated")

	return nil
}
