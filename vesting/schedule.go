package vesting

import "github.com/holiman/uint256"

// Vested returns the part of fullAmount unlocked at now, ignoring the cliff:
// zero before the vesting start, fullAmount from the vesting end on, and
// floor(fullAmount * elapsed / VestingPeriod) in between.
func (c Cohort) Vested(now uint64, fullAmount *uint256.Int) *uint256.Int {
	switch {
	case now >= c.VestingEnd:
		return new(uint256.Int).Set(fullAmount)
	case now <= c.VestingStart():
		return new(uint256.Int)
	}
	elapsed := uint256.NewInt(now - c.VestingStart())
	period := uint256.NewInt(c.VestingPeriod)
	// elapsed < period, so the quotient always fits in 256 bits.
	vested, _ := new(uint256.Int).MulDivOverflow(fullAmount, elapsed, period)
	return vested
}

// ClaimableNow returns how much more of fullAmount can be released at now
// given what was already released. The cliff and distribution deadline are
// checked by the caller. The result is never negative.
func ClaimableNow(c Cohort, now uint64, fullAmount, alreadyClaimed *uint256.Int) *uint256.Int {
	vested := c.Vested(now, fullAmount)
	if vested.Cmp(alreadyClaimed) <= 0 {
		return new(uint256.Int)
	}
	return vested.Sub(vested, alreadyClaimed)
}
