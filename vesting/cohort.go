// Package vesting holds cohort timing parameters and the linear vesting
// schedule with cliff used to release proven entitlements.
package vesting

import (
	"errors"
	"fmt"
	"math"

	"github.com/ethereum/go-ethereum/common"
)

var ErrInvalidParameters = errors.New("vesting: invalid cohort parameters")

// Cohort is one registered allocation round. All times are unix seconds and
// all periods are in seconds.
type Cohort struct {
	MerkleRoot      common.Hash
	DistributionEnd uint64
	VestingEnd      uint64
	VestingPeriod   uint64
	CliffPeriod     uint64
}

// NewCohort derives a cohort registered at now. Both the distribution
// duration and the vesting period must be positive, and no derived timestamp
// may overflow.
func NewCohort(root common.Hash, now, distributionDuration, vestingPeriod, cliffPeriod uint64) (Cohort, error) {
	switch {
	case distributionDuration == 0:
		return Cohort{}, fmt.Errorf("%w: zero distribution duration", ErrInvalidParameters)
	case vestingPeriod == 0:
		return Cohort{}, fmt.Errorf("%w: zero vesting period", ErrInvalidParameters)
	case distributionDuration > math.MaxUint64-now, vestingPeriod > math.MaxUint64-now:
		return Cohort{}, fmt.Errorf("%w: timestamp overflow", ErrInvalidParameters)
	case cliffPeriod > math.MaxUint64-now:
		return Cohort{}, fmt.Errorf("%w: cliff overflow", ErrInvalidParameters)
	}
	return Cohort{
		MerkleRoot:      root,
		DistributionEnd: now + distributionDuration,
		VestingEnd:      now + vestingPeriod,
		VestingPeriod:   vestingPeriod,
		CliffPeriod:     cliffPeriod,
	}, nil
}

// VestingStart is the time from which the entitlement starts to accrue.
func (c Cohort) VestingStart() uint64 {
	return c.VestingEnd - c.VestingPeriod
}

// CliffEnd is the first time at which anything can be claimed.
func (c Cohort) CliffEnd() uint64 {
	return c.VestingStart() + c.CliffPeriod
}

// DistributionOpen reports whether claims are still accepted at now.
func (c Cohort) DistributionOpen(now uint64) bool {
	return now < c.DistributionEnd
}

// CliffReached reports whether the cliff has passed at now.
func (c Cohort) CliffReached(now uint64) bool {
	return now >= c.CliffEnd()
}
