package skillchain

import (
	"context"

	"github.com/mr-tron/base58"
	"github.com/sirupsen/logrus"

	"github.com/bri1545/SkillChain/pkg/code/runtime"
	skillchain_program "github.com/bri1545/SkillChain/pkg/solana/skillchain"
)

const (
	maxCertificateScore = 100

	// Each certificate point is worth this much skill score
	certificateScoreMultiplier = 10
)

func (p *Program) createUserProfile(ctx context.Context, ixCtx *runtime.InstructionContext) error {
	accounts, err := skillchain_program.DecompileCreateUserProfileInstruction(ixCtx.Instruction)
	if err != nil {
		return err
	}

	user, err := p.signer(ixCtx, accounts.User)
	if err != nil {
		return err
	}

	registryAccount, registry, err := p.loadRegistry(ixCtx, accounts.Registry)
	if err != nil {
		return err
	}

	profileAccount, err := ixCtx.Account(accounts.UserProfile)
	if err != nil {
		return err
	}

	address, bump, err := skillchain_program.GetUserProfileAddress(&skillchain_program.GetUserProfileAddressArgs{
		Owner: user.Key,
	})
	if err != nil {
		return err
	}

	if err := ixCtx.RequireAddress(profileAccount, address); err != nil {
		return err
	}

	profile := &skillchain_program.UserProfileAccount{
		Owner:     user.Key,
		CreatedAt: ixCtx.Now().Unix(),
		Bump:      bump,
	}
	if err := ixCtx.CreateProgramAccount(profileAccount, user, profile); err != nil {
		return err
	}

	registry.TotalUsers, err = checkedAddUint64(registry.TotalUsers, 1)
	if err != nil {
		return err
	}

	if err := ixCtx.SaveProgramAccount(registryAccount, registry); err != nil {
		return err
	}

	p.log.WithFields(logrus.Fields{
		"method": "createUserProfile",
		"owner":  base58.Encode(user.Key),
	}).Debug("user profile created")

	return nil
}

func (p *Program) mintCertificate(ctx context.Context, ixCtx *runtime.InstructionContext) error {
	accounts, args, err := skillchain_program.DecompileMintCertificateInstruction(ixCtx.Instruction)
	if err != nil {
		return err
	}

	if args.Score > maxCertificateScore {
		return skillchain_program.ErrInvalidSkillScore
	}

	if len(args.SkillId) > skillchain_program.MaxSkillIdLength {
		return skillchain_program.ErrInvalidSkillId
	}

	user, err := p.signer(ixCtx, accounts.User)
	if err != nil {
		return err
	}

	nftMint, err := p.signer(ixCtx, accounts.NftMint)
	if err != nil {
		return err
	}

	profileAccount, profile, err := p.loadUserProfile(ixCtx, accounts.UserProfile, user.Key)
	if err != nil {
		return err
	}

	if len(profile.Skills) >= skillchain_program.MaxSkillsPerProfile {
		return skillchain_program.ErrMaxSkillsReached
	}

	validatorAccount, validator, err := p.loadValidator(ixCtx, accounts.Validator)
	if err != nil {
		return err
	}

	if !validator.IsActive {
		return skillchain_program.ErrValidatorNotActive
	}

	registryAccount, registry, err := p.loadRegistry(ixCtx, accounts.Registry)
	if err != nil {
		return err
	}

	// The validator signature is an opaque attestation and is not verified
	profile.Skills = append(profile.Skills, skillchain_program.SkillRecord{
		SkillId:   args.SkillId,
		Level:     skillchain_program.LevelFromScore(args.Score),
		Score:     args.Score,
		NftMint:   nftMint.Key,
		EarnedAt:  ixCtx.Now().Unix(),
		Validator: validator.Address,
	})

	profile.TotalCertificates, err = checkedAddUint32(profile.TotalCertificates, 1)
	if err != nil {
		return err
	}

	profile.SkillScore, err = checkedAddUint32(profile.SkillScore, uint32(args.Score)*certificateScoreMultiplier)
	if err != nil {
		return err
	}

	registry.TotalCertificates, err = checkedAddUint64(registry.TotalCertificates, 1)
	if err != nil {
		return err
	}

	validator.TotalValidations, err = checkedAddUint64(validator.TotalValidations, 1)
	if err != nil {
		return err
	}

	if err := ixCtx.SaveProgramAccount(profileAccount, profile); err != nil {
		return err
	}
	if err := ixCtx.SaveProgramAccount(registryAccount, registry); err != nil {
		return err
	}
	if err := ixCtx.SaveProgramAccount(validatorAccount, validator); err != nil {
		return err
	}

	p.log.WithFields(logrus.Fields{
		"method":   "mintCertificate",
		"owner":    base58.Encode(user.Key),
		"skill_id": args.SkillId,
		"score":    args.Score,
	}).Debug("certificate minted")

	return nil
}

func (p *Program) updateSkillScore(ctx context.Context, ixCtx *runtime.InstructionContext) error {
	accounts, args, err := skillchain_program.DecompileUpdateSkillScoreInstruction(ixCtx.Instruction)
	if err != nil {
		return err
	}

	user, err := p.signer(ixCtx, accounts.User)
	if err != nil {
		return err
	}

	profileAccount, profile, err := p.loadUserProfile(ixCtx, accounts.UserProfile, user.Key)
	if err != nil {
		return err
	}

	_, validator, err := p.loadValidator(ixCtx, accounts.Validator)
	if err != nil {
		return err
	}

	if !validator.IsActive {
		return skillchain_program.ErrValidatorNotActive
	}

	oldScore := profile.SkillScore

	// Increases are checked while decreases saturate at zero
	if args.ScoreDelta >= 0 {
		profile.SkillScore, err = checkedAddUint32(profile.SkillScore, uint32(args.ScoreDelta))
		if err != nil {
			return err
		}
	} else {
		decrease := uint32(-int32(args.ScoreDelta))
		if decrease > profile.SkillScore {
			profile.SkillScore = 0
		} else {
			profile.SkillScore -= decrease
		}
	}

	if err := ixCtx.SaveProgramAccount(profileAccount, profile); err != nil {
		return err
	}

	p.log.WithFields(logrus.Fields{
		"method":    "updateSkillScore",
		"owner":     base58.Encode(user.Key),
		"old_score": oldScore,
		"new_score": profile.SkillScore,
	}).Debug("skill score updated")

	return nil
}
