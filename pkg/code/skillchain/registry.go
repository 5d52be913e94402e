package skillchain

import (
	"bytes"
	"context"

	"github.com/mr-tron/base58"
	"github.com/sirupsen/logrus"

	"github.com/bri1545/SkillChain/pkg/code/runtime"
	skillchain_program "github.com/bri1545/SkillChain/pkg/solana/skillchain"
)

func (p *Program) initializeRegistry(ctx context.Context, ixCtx *runtime.InstructionContext) error {
	accounts, err := skillchain_program.DecompileInitializeRegistryInstruction(ixCtx.Instruction)
	if err != nil {
		return err
	}

	authority, err := p.signer(ixCtx, accounts.Authority)
	if err != nil {
		return err
	}

	registryAccount, err := ixCtx.Account(accounts.Registry)
	if err != nil {
		return err
	}

	address, bump, err := skillchain_program.GetSkillRegistryAddress()
	if err != nil {
		return err
	}

	if err := ixCtx.RequireAddress(registryAccount, address); err != nil {
		return err
	}

	registry := &skillchain_program.SkillRegistryAccount{
		Authority: authority.Key,
		Treasury:  authority.Key,
		Bump:      bump,
	}
	if err := ixCtx.CreateProgramAccount(registryAccount, authority, registry); err != nil {
		return err
	}

	p.log.WithFields(logrus.Fields{
		"method":    "initializeRegistry",
		"authority": base58.Encode(authority.Key),
	}).Debug("registry initialized")

	return nil
}

func (p *Program) initializeSkillToken(ctx context.Context, ixCtx *runtime.InstructionContext) error {
	accounts, err := skillchain_program.DecompileInitializeSkillTokenInstruction(ixCtx.Instruction)
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

	mintAccount, err := ixCtx.Account(accounts.SkillTokenMint)
	if err != nil {
		return err
	}

	address, _, err := skillchain_program.GetSkillTokenMintAddress()
	if err != nil {
		return err
	}

	if err := ixCtx.RequireAddress(mintAccount, address); err != nil {
		return err
	}

	mint := &skillchain_program.SkillTokenMintAccount{
		Decimals:      skillchain_program.SkillTokenDecimals,
		MintAuthority: registryAccount.Key,
		IsInitialized: true,
	}
	if err := ixCtx.CreateProgramAccount(mintAccount, authority, mint); err != nil {
		return err
	}

	registry.SkillTokenMint = mintAccount.Key
	if err := ixCtx.SaveProgramAccount(registryAccount, registry); err != nil {
		return err
	}

	p.log.WithFields(logrus.Fields{
		"method": "initializeSkillToken",
		"mint":   base58.Encode(mintAccount.Key),
	}).Debug("skill token mint initialized")

	return nil
}
