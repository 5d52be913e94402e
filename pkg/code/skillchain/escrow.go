package skillchain

import (
	"context"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/sirupsen/logrus"

	"github.com/bri1545/SkillChain/pkg/code/runtime"
	skillchain_program "github.com/bri1545/SkillChain/pkg/solana/skillchain"
)

func (p *Program) createEscrow(ctx context.Context, ixCtx *runtime.InstructionContext) error {
	accounts, args, err := skillchain_program.DecompileCreateEscrowInstruction(ixCtx.Instruction)
	if err != nil {
		return err
	}

	payer, err := p.signer(ixCtx, accounts.Payer)
	if err != nil {
		return err
	}

	if args.Amount == 0 {
		return skillchain_program.ErrInvalidEscrowShares
	}

	escrowAccount, err := ixCtx.Account(accounts.Escrow)
	if err != nil {
		return err
	}

	address, bump, err := skillchain_program.GetEscrowAddress(&skillchain_program.GetEscrowAddressArgs{
		TestId: args.TestId,
	})
	if err != nil {
		return err
	}

	if err := ixCtx.RequireAddress(escrowAccount, address); err != nil {
		return err
	}

	escrow := &skillchain_program.EscrowAccount{
		TestId:          args.TestId,
		Payer:           payer.Key,
		Amount:          args.Amount,
		DaoShare:        args.DaoShare,
		ProjectShare:    args.ProjectShare,
		RewardPoolShare: args.RewardPoolShare,
		CreatedAt:       ixCtx.Now().Unix(),
		Bump:            bump,
	}

	total, ok := escrow.TotalShares()
	if !ok || total > escrow.Amount {
		return skillchain_program.ErrInsufficientEscrowFunds
	}

	if err := ixCtx.CreateProgramAccount(escrowAccount, payer, escrow); err != nil {
		return err
	}

	if err := ixCtx.Transfer(payer, escrowAccount, args.Amount); err != nil {
		return err
	}

	p.log.WithFields(logrus.Fields{
		"method":  "createEscrow",
		"test_id": args.TestId,
		"payer":   base58.Encode(payer.Key),
		"amount":  args.Amount,
	}).Debug("escrow created")

	return nil
}

func (p *Program) distributeRewards(ctx context.Context, ixCtx *runtime.InstructionContext) error {
	// The amount argument is not used, distribution always pays the shares
	// recorded on the escrow
	accounts, args, err := skillchain_program.DecompileDistributeRewardsInstruction(ixCtx.Instruction)
	if err != nil {
		return err
	}

	// Any signer may trigger a payout, the registry authority isn't compared.
	// Share amounts come from the escrow record.
	if _, err := p.signer(ixCtx, accounts.Authority); err != nil {
		return err
	}

	escrowAccount, err := ixCtx.Account(accounts.Escrow)
	if err != nil {
		return err
	}

	address, _, err := skillchain_program.GetEscrowAddress(&skillchain_program.GetEscrowAddressArgs{
		TestId: args.TestId,
	})
	if err != nil {
		return err
	}

	if err := ixCtx.RequireAddress(escrowAccount, address); err != nil {
		return err
	}

	var escrow skillchain_program.EscrowAccount
	if err := ixCtx.LoadProgramAccount(escrowAccount, &escrow); err != nil {
		return err
	}

	if escrow.IsDistributed {
		return skillchain_program.ErrEscrowAlreadyDistributed
	}

	if _, _, err := p.loadRegistry(ixCtx, accounts.Registry); err != nil {
		return err
	}

	total, ok := escrow.TotalShares()
	if !ok || total > escrow.Amount {
		return skillchain_program.ErrInsufficientEscrowFunds
	}

	payouts := []struct {
		recipient ed25519.PublicKey
		amount    uint64
	}{
		{accounts.DaoTreasury, escrow.DaoShare},
		{accounts.ProjectTreasury, escrow.ProjectShare},
		{accounts.RewardPool, escrow.RewardPoolShare},
	}
	for _, payout := range payouts {
		recipient, err := ixCtx.Account(payout.recipient)
		if err != nil {
			return err
		}

		if !recipient.IsOwnedBy(runtime.SYSTEM_PROGRAM_ID) {
			return runtime.ErrIncorrectProgramId
		}

		if err := ixCtx.Transfer(escrowAccount, recipient, payout.amount); err != nil {
			return err
		}
	}

	escrow.IsDistributed = true
	if err := ixCtx.SaveProgramAccount(escrowAccount, &escrow); err != nil {
		return err
	}

	p.log.WithFields(logrus.Fields{
		"method":      "distributeRewards",
		"test_id":     escrow.TestId,
		"dao":         escrow.DaoShare,
		"project":     escrow.ProjectShare,
		"reward_pool": escrow.RewardPoolShare,
	}).Debug("rewards distributed")

	return nil
}
