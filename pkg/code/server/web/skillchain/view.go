package skillchain

import (
	"time"

	"github.com/mr-tron/base58"

	code_skillchain "github.com/bri1545/SkillChain/pkg/code/skillchain"
	skillchain_program "github.com/bri1545/SkillChain/pkg/solana/skillchain"
)

type registryView struct {
	Authority         string `json:"authority"`
	TotalValidators   uint32 `json:"total_validators"`
	TotalCertificates uint64 `json:"total_certificates"`
	TotalUsers        uint64 `json:"total_users"`
	SkillTokenMint    string `json:"skill_token_mint,omitempty"`
	Treasury          string `json:"treasury"`
}

func toRegistryView(account *skillchain_program.SkillRegistryAccount) *registryView {
	view := &registryView{
		Authority:         base58.Encode(account.Authority),
		TotalValidators:   account.TotalValidators,
		TotalCertificates: account.TotalCertificates,
		TotalUsers:        account.TotalUsers,
		Treasury:          base58.Encode(account.Treasury),
	}
	if account.HasSkillTokenMint() {
		view.SkillTokenMint = base58.Encode(account.SkillTokenMint)
	}
	return view
}

type skillView struct {
	Id        string `json:"id"`
	Level     string `json:"level"`
	Score     uint8  `json:"score"`
	NftMint   string `json:"nft_mint"`
	EarnedAt  string `json:"earned_at"`
	Validator string `json:"validator"`
}

func toSkillView(record *skillchain_program.SkillRecord) *skillView {
	return &skillView{
		Id:        record.SkillId,
		Level:     record.Level.String(),
		Score:     record.Score,
		NftMint:   base58.Encode(record.NftMint),
		EarnedAt:  formatUnixTime(record.EarnedAt),
		Validator: base58.Encode(record.Validator),
	}
}

type userProfileView struct {
	Owner             string       `json:"owner"`
	SkillScore        uint32       `json:"skill_score"`
	EstimatedScore    uint64       `json:"estimated_score"`
	TotalTests        uint32       `json:"total_tests"`
	TotalCertificates uint32       `json:"total_certificates"`
	TotalSolEarned    uint64       `json:"total_sol_earned"`
	SuccessRate       uint8        `json:"success_rate"`
	Skills            []*skillView `json:"skills"`
	CreatedAt         string       `json:"created_at"`
}

func toUserProfileView(state *code_skillchain.UserProfileState) *userProfileView {
	account := state.Account

	skills := make([]*skillView, len(account.Skills))
	for i := range account.Skills {
		skills[i] = toSkillView(&account.Skills[i])
	}

	return &userProfileView{
		Owner:             base58.Encode(account.Owner),
		SkillScore:        account.SkillScore,
		EstimatedScore:    state.EstimatedScore,
		TotalTests:        account.TotalTests,
		TotalCertificates: account.TotalCertificates,
		TotalSolEarned:    account.TotalSolEarned,
		SuccessRate:       account.SuccessRate,
		Skills:            skills,
		CreatedAt:         formatUnixTime(account.CreatedAt),
	}
}

type validatorView struct {
	Address          string `json:"address"`
	TotalValidations uint64 `json:"total_validations"`
	Reputation       uint32 `json:"reputation"`
	IsActive         bool   `json:"is_active"`
	JoinedAt         string `json:"joined_at"`
}

func toValidatorView(account *skillchain_program.ValidatorAccount) *validatorView {
	return &validatorView{
		Address:          base58.Encode(account.Address),
		TotalValidations: account.TotalValidations,
		Reputation:       account.Reputation,
		IsActive:         account.IsActive,
		JoinedAt:         formatUnixTime(account.JoinedAt),
	}
}

type escrowView struct {
	TestId          string `json:"test_id"`
	Payer           string `json:"payer"`
	Amount          uint64 `json:"amount"`
	DaoShare        uint64 `json:"dao_share"`
	ProjectShare    uint64 `json:"project_share"`
	RewardPoolShare uint64 `json:"reward_pool_share"`
	IsDistributed   bool   `json:"is_distributed"`
	CreatedAt       string `json:"created_at"`
	Lamports        uint64 `json:"lamports"`
}

func toEscrowView(state *code_skillchain.EscrowState) *escrowView {
	account := state.Account
	return &escrowView{
		TestId:          account.TestId,
		Payer:           base58.Encode(account.Payer),
		Amount:          account.Amount,
		DaoShare:        account.DaoShare,
		ProjectShare:    account.ProjectShare,
		RewardPoolShare: account.RewardPoolShare,
		IsDistributed:   account.IsDistributed,
		CreatedAt:       formatUnixTime(account.CreatedAt),
		Lamports:        state.Lamports,
	}
}

type daoStatsView struct {
	TotalValidators    uint32 `json:"total_validators"`
	TotalCertificates  uint64 `json:"total_certificates"`
	TotalUsers         uint64 `json:"total_users"`
	RewardDistribution struct {
		Senior uint64 `json:"senior"`
		Middle uint64 `json:"middle"`
		Junior uint64 `json:"junior"`
	} `json:"reward_distribution"`
	EscrowSplitBasisPoints struct {
		Dao        uint64 `json:"dao"`
		Project    uint64 `json:"project"`
		RewardPool uint64 `json:"reward_pool"`
	} `json:"escrow_split_bps"`
}

func toDaoStatsView(stats *code_skillchain.DaoStats) *daoStatsView {
	view := &daoStatsView{
		TotalValidators:   stats.TotalValidators,
		TotalCertificates: stats.TotalCertificates,
		TotalUsers:        stats.TotalUsers,
	}
	view.RewardDistribution.Senior = stats.RewardDistribution.SeniorPercent
	view.RewardDistribution.Middle = stats.RewardDistribution.MiddlePercent
	view.RewardDistribution.Junior = stats.RewardDistribution.JuniorPercent
	view.EscrowSplitBasisPoints.Dao = stats.ShareSplit.DaoBasisPoints
	view.EscrowSplitBasisPoints.Project = stats.ShareSplit.ProjectBasisPoints
	view.EscrowSplitBasisPoints.RewardPool = stats.ShareSplit.RewardPoolBasisPoints
	return view
}

func formatUnixTime(ts int64) string {
	return time.Unix(ts, 0).UTC().Format(time.RFC3339)
}
