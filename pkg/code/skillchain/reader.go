package skillchain

import (
	"context"
	"crypto/ed25519"
	"fmt"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/bri1545/SkillChain/pkg/code/data/ledger"
	"github.com/bri1545/SkillChain/pkg/code/runtime"
	"github.com/bri1545/SkillChain/pkg/metrics"
	skillchain_program "github.com/bri1545/SkillChain/pkg/solana/skillchain"
)

const (
	readerMetricsStructName = "skillchain.reader"
)

var (
	ErrAccountNotFound = errors.New("skillchain account not found")
)

// Reader exposes committed program state
type Reader struct {
	log     *logrus.Entry
	conf    *conf
	runtime *runtime.Runtime
}

func NewReader(rt *runtime.Runtime, configProvider ConfigProvider) *Reader {
	return &Reader{
		log:     logrus.StandardLogger().WithField("type", "skillchain/reader"),
		conf:    configProvider(),
		runtime: rt,
	}
}

type RegistryState struct {
	Address ed25519.PublicKey
	Account *skillchain_program.SkillRegistryAccount
}

type UserProfileState struct {
	Address ed25519.PublicKey
	Account *skillchain_program.UserProfileAccount

	// EstimatedScore weighs each certificate score by its level
	EstimatedScore uint64
}

type ValidatorState struct {
	Address ed25519.PublicKey
	Account *skillchain_program.ValidatorAccount
}

type EscrowState struct {
	Address  ed25519.PublicKey
	Lamports uint64
	Account  *skillchain_program.EscrowAccount
}

type SkillVerification struct {
	Verified bool
	Skill    *skillchain_program.SkillRecord
	Message  string
}

type RewardDistribution struct {
	SeniorPercent uint64
	MiddlePercent uint64
	JuniorPercent uint64
}

type DaoStats struct {
	TotalValidators    uint32
	TotalCertificates  uint64
	TotalUsers         uint64
	RewardDistribution RewardDistribution
	ShareSplit         ShareSplit
}

// GetRegistry gets the singleton skill registry
func (r *Reader) GetRegistry(ctx context.Context) (*RegistryState, error) {
	tracer := metrics.TraceMethodCall(ctx, readerMetricsStructName, "GetRegistry")
	defer tracer.End()

	address, _, err := skillchain_program.GetSkillRegistryAddress()
	if err != nil {
		tracer.OnError(err)
		return nil, err
	}

	var registry skillchain_program.SkillRegistryAccount
	if _, err := r.load(ctx, address, &registry); err != nil {
		tracer.OnError(err)
		return nil, err
	}

	return &RegistryState{
		Address: address,
		Account: &registry,
	}, nil
}

// GetUserProfile gets the profile owned by the provided wallet
func (r *Reader) GetUserProfile(ctx context.Context, owner ed25519.PublicKey) (*UserProfileState, error) {
	tracer := metrics.TraceMethodCall(ctx, readerMetricsStructName, "GetUserProfile")
	defer tracer.End()

	address, _, err := skillchain_program.GetUserProfileAddress(&skillchain_program.GetUserProfileAddressArgs{
		Owner: owner,
	})
	if err != nil {
		tracer.OnError(err)
		return nil, err
	}

	var profile skillchain_program.UserProfileAccount
	if _, err := r.load(ctx, address, &profile); err != nil {
		tracer.OnError(err)
		return nil, err
	}

	return &UserProfileState{
		Address:        address,
		Account:        &profile,
		EstimatedScore: EstimateSkillScore(profile.Skills),
	}, nil
}

// GetValidator gets the validator record for the provided validator wallet
func (r *Reader) GetValidator(ctx context.Context, validator ed25519.PublicKey) (*ValidatorState, error) {
	tracer := metrics.TraceMethodCall(ctx, readerMetricsStructName, "GetValidator")
	defer tracer.End()

	address, _, err := skillchain_program.GetValidatorAddress(&skillchain_program.GetValidatorAddressArgs{
		Validator: validator,
	})
	if err != nil {
		tracer.OnError(err)
		return nil, err
	}

	var account skillchain_program.ValidatorAccount
	if _, err := r.load(ctx, address, &account); err != nil {
		tracer.OnError(err)
		return nil, err
	}

	return &ValidatorState{
		Address: address,
		Account: &account,
	}, nil
}

// GetEscrow gets the escrow for a test
func (r *Reader) GetEscrow(ctx context.Context, testId string) (*EscrowState, error) {
	tracer := metrics.TraceMethodCall(ctx, readerMetricsStructName, "GetEscrow")
	defer tracer.End()

	address, _, err := skillchain_program.GetEscrowAddress(&skillchain_program.GetEscrowAddressArgs{
		TestId: testId,
	})
	if err != nil {
		tracer.OnError(err)
		return nil, err
	}

	var escrow skillchain_program.EscrowAccount
	info, err := r.load(ctx, address, &escrow)
	if err != nil {
		tracer.OnError(err)
		return nil, err
	}

	return &EscrowState{
		Address:  address,
		Lamports: info.Lamports,
		Account:  &escrow,
	}, nil
}

// VerifySkill checks whether a wallet holds a certificate for a skill with at
// least the provided score. Only the first certificate recorded for the skill
// is considered.
func (r *Reader) VerifySkill(ctx context.Context, owner ed25519.PublicKey, skillId string, minScore uint8) (*SkillVerification, error) {
	profile, err := r.GetUserProfile(ctx, owner)
	if err == ErrAccountNotFound {
		return &SkillVerification{
			Message: "User has no on-chain profile",
		}, nil
	} else if err != nil {
		return nil, err
	}

	skill, ok := profile.Account.FindSkill(skillId)
	if !ok {
		return &SkillVerification{
			Message: "User does not have this skill",
		}, nil
	}

	if skill.Score < minScore {
		return &SkillVerification{
			Skill:   skill,
			Message: fmt.Sprintf("Skill score %d is below required %d", skill.Score, minScore),
		}, nil
	}

	return &SkillVerification{
		Verified: true,
		Skill:    skill,
		Message:  "Skill verified successfully",
	}, nil
}

// GetDaoStats returns registry counters along with the configured reward
// economics. Counters are zero if the registry hasn't been initialized.
func (r *Reader) GetDaoStats(ctx context.Context) (*DaoStats, error) {
	stats := &DaoStats{
		RewardDistribution: RewardDistribution{
			SeniorPercent: r.conf.seniorRewardPercent.Get(ctx),
			MiddlePercent: r.conf.middleRewardPercent.Get(ctx),
			JuniorPercent: r.conf.juniorRewardPercent.Get(ctx),
		},
		ShareSplit: ShareSplit{
			DaoBasisPoints:        r.conf.daoShareBasisPoints.Get(ctx),
			ProjectBasisPoints:    r.conf.projectShareBasisPoints.Get(ctx),
			RewardPoolBasisPoints: r.conf.rewardPoolShareBasisPoints.Get(ctx),
		},
	}

	registry, err := r.GetRegistry(ctx)
	switch err {
	case nil:
		stats.TotalValidators = registry.Account.TotalValidators
		stats.TotalCertificates = registry.Account.TotalCertificates
		stats.TotalUsers = registry.Account.TotalUsers
	case ErrAccountNotFound:
	default:
		return nil, err
	}

	return stats, nil
}

// EstimateSkillScore weighs each certificate's score by its level: Senior
// counts triple and Middle counts double
func EstimateSkillScore(skills []skillchain_program.SkillRecord) uint64 {
	var total uint64
	for _, skill := range skills {
		var multiplier uint64
		switch skill.Level {
		case skillchain_program.SkillLevelSenior:
			multiplier = 3
		case skillchain_program.SkillLevelMiddle:
			multiplier = 2
		default:
			multiplier = 1
		}
		total += uint64(skill.Score) * multiplier
	}
	return total
}

func (r *Reader) load(ctx context.Context, address ed25519.PublicKey, dst runtime.AccountData) (*runtime.AccountInfo, error) {
	info, err := r.runtime.GetAccount(ctx, address)
	if err == ledger.ErrAccountNotFound {
		return nil, ErrAccountNotFound
	} else if err != nil {
		return nil, err
	}

	if !info.IsInitialized() || !info.IsOwnedBy(skillchain_program.PROGRAM_ID) {
		return nil, ErrAccountNotFound
	}

	if err := dst.Unmarshal(info.Data); err != nil {
		r.log.WithError(err).WithField("method", "load").Warn("failure decoding account")
		return nil, err
	}
	return info, nil
}
