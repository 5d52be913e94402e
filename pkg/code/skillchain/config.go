package skillchain

import (
	"github.com/bri1545/SkillChain/pkg/config"
	"github.com/bri1545/SkillChain/pkg/config/env"
	"github.com/bri1545/SkillChain/pkg/config/memory"
	"github.com/bri1545/SkillChain/pkg/config/wrapper"
)

const (
	envConfigPrefix = "SKILLCHAIN_"

	DaoShareBasisPointsConfigEnvName = envConfigPrefix + "DAO_SHARE_BPS"
	defaultDaoShareBasisPoints       = 4500

	ProjectShareBasisPointsConfigEnvName = envConfigPrefix + "PROJECT_SHARE_BPS"
	defaultProjectShareBasisPoints       = 3000

	RewardPoolShareBasisPointsConfigEnvName = envConfigPrefix + "REWARD_POOL_SHARE_BPS"
	defaultRewardPoolShareBasisPoints       = 2500

	SeniorRewardPercentConfigEnvName = envConfigPrefix + "SENIOR_REWARD_PERCENT"
	defaultSeniorRewardPercent       = 15

	MiddleRewardPercentConfigEnvName = envConfigPrefix + "MIDDLE_REWARD_PERCENT"
	defaultMiddleRewardPercent       = 12

	JuniorRewardPercentConfigEnvName = envConfigPrefix + "JUNIOR_REWARD_PERCENT"
	defaultJuniorRewardPercent       = 10
)

type conf struct {
	daoShareBasisPoints        config.Uint64
	projectShareBasisPoints    config.Uint64
	rewardPoolShareBasisPoints config.Uint64

	seniorRewardPercent config.Uint64
	middleRewardPercent config.Uint64
	juniorRewardPercent config.Uint64
}

// ConfigProvider defines how config values are pulled
type ConfigProvider func() *conf

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return func() *conf {
		return &conf{
			daoShareBasisPoints:        env.NewBoundedUint64Config(DaoShareBasisPointsConfigEnvName, defaultDaoShareBasisPoints, basisPointsDenominator),
			projectShareBasisPoints:    env.NewBoundedUint64Config(ProjectShareBasisPointsConfigEnvName, defaultProjectShareBasisPoints, basisPointsDenominator),
			rewardPoolShareBasisPoints: env.NewBoundedUint64Config(RewardPoolShareBasisPointsConfigEnvName, defaultRewardPoolShareBasisPoints, basisPointsDenominator),

			seniorRewardPercent: env.NewBoundedUint64Config(SeniorRewardPercentConfigEnvName, defaultSeniorRewardPercent, 100),
			middleRewardPercent: env.NewBoundedUint64Config(MiddleRewardPercentConfigEnvName, defaultMiddleRewardPercent, 100),
			juniorRewardPercent: env.NewBoundedUint64Config(JuniorRewardPercentConfigEnvName, defaultJuniorRewardPercent, 100),
		}
	}
}

type testOverrides struct {
	daoShareBasisPoints        uint64
	projectShareBasisPoints    uint64
	rewardPoolShareBasisPoints uint64
}

func withManualTestOverrides(overrides *testOverrides) ConfigProvider {
	return func() *conf {
		return &conf{
			daoShareBasisPoints:        wrapper.NewUint64Config(memory.NewConfig(overrides.daoShareBasisPoints), defaultDaoShareBasisPoints),
			projectShareBasisPoints:    wrapper.NewUint64Config(memory.NewConfig(overrides.projectShareBasisPoints), defaultProjectShareBasisPoints),
			rewardPoolShareBasisPoints: wrapper.NewUint64Config(memory.NewConfig(overrides.rewardPoolShareBasisPoints), defaultRewardPoolShareBasisPoints),

			seniorRewardPercent: wrapper.NewUint64Config(memory.NewConfig(nil), defaultSeniorRewardPercent),
			middleRewardPercent: wrapper.NewUint64Config(memory.NewConfig(nil), defaultMiddleRewardPercent),
			juniorRewardPercent: wrapper.NewUint64Config(memory.NewConfig(nil), defaultJuniorRewardPercent),
		}
	}
}
