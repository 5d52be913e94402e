package runtime

import (
	"github.com/bri1545/SkillChain/pkg/config"
	"github.com/bri1545/SkillChain/pkg/config/env"
	"github.com/bri1545/SkillChain/pkg/config/memory"
	"github.com/bri1545/SkillChain/pkg/config/wrapper"
)

const (
	envConfigPrefix = "SKILLCHAIN_RUNTIME_"

	StripedLockParallelizationConfigEnvName = envConfigPrefix + "STRIPED_LOCK_PARALLELIZATION"
	defaultStripedLockParallelization       = 1024

	EnableAirdropsConfigEnvName = envConfigPrefix + "ENABLE_AIRDROPS"
	defaultEnableAirdrops       = false

	MaxAirdropLamportsConfigEnvName = envConfigPrefix + "MAX_AIRDROP_LAMPORTS"
	defaultMaxAirdropLamports       = 10_000_000_000 // 10 SOL
)

type conf struct {
	stripedLockParallelization config.Uint64
	enableAirdrops             config.Bool
	maxAirdropLamports         config.Uint64
}

// ConfigProvider defines how config values are pulled
type ConfigProvider func() *conf

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return func() *conf {
		return &conf{
			stripedLockParallelization: env.NewUint64Config(StripedLockParallelizationConfigEnvName, defaultStripedLockParallelization),
			enableAirdrops:             env.NewBoolConfig(EnableAirdropsConfigEnvName, defaultEnableAirdrops),
			maxAirdropLamports:         env.NewUint64Config(MaxAirdropLamportsConfigEnvName, defaultMaxAirdropLamports),
		}
	}
}

type testOverrides struct {
	stripedLockParallelization uint64
	enableAirdrops             bool
	maxAirdropLamports         uint64
}

func withManualTestOverrides(overrides *testOverrides) ConfigProvider {
	return func() *conf {
		return &conf{
			stripedLockParallelization: wrapper.NewUint64Config(memory.NewConfig(overrides.stripedLockParallelization), defaultStripedLockParallelization),
			enableAirdrops:             wrapper.NewBoolConfig(memory.NewConfig(overrides.enableAirdrops), defaultEnableAirdrops),
			maxAirdropLamports:         wrapper.NewUint64Config(memory.NewConfig(overrides.maxAirdropLamports), defaultMaxAirdropLamports),
		}
	}
}
