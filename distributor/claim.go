package distributor

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/guildxyz/club-contracts/merkle"
	"github.com/guildxyz/club-contracts/rawdb"
	"github.com/guildxyz/club-contracts/vesting"
)

// Claim releases the part of fullAmount that has vested for account in the
// given cohort and is not yet claimed. The leaf (index, account, fullAmount)
// must be proven against the cohort's root. A claim that releases nothing
// new succeeds with a zero amount.
//
// The claimed total is recorded before the token transfer is issued, so a
// transfer hook that re-enters Claim sees the updated total. If the transfer
// fails the whole claim is rolled back.
func (d *Distributor) Claim(cohortID, index uint64, account common.Address, fullAmount *uint256.Int, proof merkle.Proof) (released *uint256.Int, err error) {
	snap := d.begin()
	defer func() {
		if r := recover(); r != nil {
			d.metrics.claimsRejected.Inc()
			d.end(snap, fmt.Errorf("%w: %v", errPanicked, r))
			panic(r)
		}
		if err != nil {
			d.metrics.claimsRejected.Inc()
			d.log.Debug("Claim rejected", "cohort", cohortID, "index", index, "account", account, "err", err)
		}
		d.end(snap, err)
	}()

	if fullAmount == nil {
		fullAmount = new(uint256.Int)
	}
	c, err := d.Cohort(cohortID)
	if err != nil {
		return nil, err
	}
	now := d.clock.Now()
	if !c.DistributionOpen(now) {
		return nil, fmt.Errorf("%w: cohort %d closed at %d", ErrDistributionEnded, cohortID, c.DistributionEnd)
	}
	d.metrics.proofDepth.Observe(float64(len(proof)))
	if !merkle.Verify(index, account, fullAmount, proof, c.MerkleRoot) {
		d.metrics.proofsInvalid.Inc()
		return nil, fmt.Errorf("%w: cohort %d index %d", ErrInvalidProof, cohortID, index)
	}
	if !c.CliffReached(now) {
		return nil, fmt.Errorf("%w: cohort %d cliff ends at %d", ErrCliffNotReached, cohortID, c.CliffEnd())
	}

	already, err := rawdb.ReadClaimed(d.db, cohortID, account)
	if err != nil {
		return nil, fmt.Errorf("distributor: read claimed: %w", err)
	}
	released = vesting.ClaimableNow(c, now, fullAmount, already)

	if err := d.markClaimed(cohortID, index); err != nil {
		return nil, err
	}
	if !released.IsZero() {
		total := new(uint256.Int).Add(already, released)
		if err := rawdb.WriteClaimed(d.db, cohortID, account, total); err != nil {
			return nil, fmt.Errorf("distributor: write claimed: %w", err)
		}
		d.journal.append(claimedChange{cohort: cohortID, account: account, prev: already})

		if err := d.token.Transfer(d.address, account, released); err != nil {
			return nil, fmt.Errorf("distributor: transfer %s to %s: %w", released.Dec(), account, err)
		}
	} else {
		d.metrics.claimsZero.Inc()
	}
	d.journal.emit(ClaimedEvent{CohortID: cohortID, Account: account, Amount: new(uint256.Int).Set(released)})
	d.metrics.claims.Inc()

	d.log.Info("Claimed", "cohort", cohortID, "index", index, "account", account,
		"released", released.Dec(), "total", new(uint256.Int).Add(already, released).Dec())
	return released, nil
}

// markClaimed records that a leaf index has been used at least once.
func (d *Distributor) markClaimed(cohortID, index uint64) error {
	set := d.claimedIdx[cohortID]
	if set.has(index) {
		return nil
	}
	if err := rawdb.WriteClaimedIndex(d.db, cohortID, index); err != nil {
		return fmt.Errorf("distributor: write claimed index: %w", err)
	}
	set.add(index)
	d.journal.append(claimedIndexChange{cohort: cohortID, index: index})
	return nil
}

// Claimable returns what Claim would release for account right now without
// checking a proof. It fails with the same errors as Claim for unknown
// cohorts, closed distributions and cliffs not yet reached.
func (d *Distributor) Claimable(cohortID uint64, account common.Address, fullAmount *uint256.Int) (*uint256.Int, error) {
	if fullAmount == nil {
		fullAmount = new(uint256.Int)
	}
	c, err := d.Cohort(cohortID)
	if err != nil {
		return nil, err
	}
	now := d.clock.Now()
	if !c.DistributionOpen(now) {
		return nil, fmt.Errorf("%w: cohort %d closed at %d", ErrDistributionEnded, cohortID, c.DistributionEnd)
	}
	if !c.CliffReached(now) {
		return nil, fmt.Errorf("%w: cohort %d cliff ends at %d", ErrCliffNotReached, cohortID, c.CliffEnd())
	}
	already, err := d.Claimed(cohortID, account)
	if err != nil {
		return nil, err
	}
	return vesting.ClaimableNow(c, now, fullAmount, already), nil
}

// Claimed returns the cumulative amount released to account in a cohort.
func (d *Distributor) Claimed(cohortID uint64, account common.Address) (*uint256.Int, error) {
	if _, err := d.Cohort(cohortID); err != nil {
		return nil, err
	}
	amount, err := rawdb.ReadClaimed(d.db, cohortID, account)
	if err != nil {
		return nil, fmt.Errorf("distributor: read claimed: %w", err)
	}
	return amount, nil
}

// IsClaimed reports whether the leaf at index has been claimed from at least
// once.
func (d *Distributor) IsClaimed(cohortID, index uint64) (bool, error) {
	if _, err := d.Cohort(cohortID); err != nil {
		return false, err
	}
	return d.claimedIdx[cohortID].has(index), nil
}

// ClaimedLeaves returns the number of distinct leaves claimed in a cohort.
func (d *Distributor) ClaimedLeaves(cohortID uint64) (uint, error) {
	if _, err := d.Cohort(cohortID); err != nil {
		return 0, err
	}
	return d.claimedIdx[cohortID].count(), nil
}
