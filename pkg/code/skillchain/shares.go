package skillchain

import (
	"context"
	"math/big"

	"github.com/pkg/errors"
)

const basisPointsDenominator = 10_000

var (
	ErrInvalidShareSplit = errors.New("share split basis points must not exceed 10000")
)

// ShareSplit is the fraction of an escrow paid to each recipient, expressed in
// basis points
type ShareSplit struct {
	DaoBasisPoints        uint64
	ProjectBasisPoints    uint64
	RewardPoolBasisPoints uint64
}

// Shares is the lamport amount paid to each recipient of an escrow
type Shares struct {
	Dao        uint64
	Project    uint64
	RewardPool uint64
}

// Total is the sum of all shares
func (s *Shares) Total() uint64 {
	return s.Dao + s.Project + s.RewardPool
}

// DefaultShareSplit returns the configured share split
func DefaultShareSplit(ctx context.Context, configProvider ConfigProvider) *ShareSplit {
	conf := configProvider()
	return &ShareSplit{
		DaoBasisPoints:        conf.daoShareBasisPoints.Get(ctx),
		ProjectBasisPoints:    conf.projectShareBasisPoints.Get(ctx),
		RewardPoolBasisPoints: conf.rewardPoolShareBasisPoints.Get(ctx),
	}
}

// ComputeShares splits amount by the provided basis points, rounding each
// share down. Any remainder is left in the escrow.
func ComputeShares(amount uint64, split *ShareSplit) (*Shares, error) {
	var total uint64
	for _, bps := range []uint64{split.DaoBasisPoints, split.ProjectBasisPoints, split.RewardPoolBasisPoints} {
		if bps > basisPointsDenominator {
			return nil, ErrInvalidShareSplit
		}
		total += bps
	}
	if total > basisPointsDenominator {
		return nil, ErrInvalidShareSplit
	}

	return &Shares{
		Dao:        share(amount, split.DaoBasisPoints),
		Project:    share(amount, split.ProjectBasisPoints),
		RewardPool: share(amount, split.RewardPoolBasisPoints),
	}, nil
}

func share(amount, bps uint64) uint64 {
	res := new(big.Int).SetUint64(amount)
	res.Mul(res, new(big.Int).SetUint64(bps))
	res.Quo(res, big.NewInt(basisPointsDenominator))
	return res.Uint64()
}
