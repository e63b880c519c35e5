package distributor

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/guildxyz/club-contracts/rawdb"
	"github.com/guildxyz/club-contracts/vesting"
)

// RegisterCohort commits a new allocation round. The distribution window and
// the vesting window both start now; the vesting period must be positive and
// so must the distribution duration. Ids are assigned sequentially from 0,
// and the same root may be registered more than once.
func (d *Distributor) RegisterCohort(caller common.Address, root common.Hash, distributionDuration, vestingPeriod, cliffPeriod uint64) (id uint64, err error) {
	snap := d.begin()
	defer func() {
		if r := recover(); r != nil {
			d.end(snap, fmt.Errorf("%w: %v", errPanicked, r))
			panic(r)
		}
		d.end(snap, err)
	}()

	if err := d.authorize(caller); err != nil {
		return 0, err
	}
	c, err := vesting.NewCohort(root, d.clock.Now(), distributionDuration, vestingPeriod, cliffPeriod)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidParameters, err)
	}
	id, err = rawdb.AppendCohort(d.db, c)
	if err != nil {
		return 0, fmt.Errorf("distributor: store cohort: %w", err)
	}
	if id != uint64(len(d.cohorts)) {
		return 0, fmt.Errorf("distributor: stored cohort count %d out of sync with registry size %d", id, len(d.cohorts))
	}
	d.cohorts = append(d.cohorts, c)
	d.claimedIdx = append(d.claimedIdx, newClaimedSet())
	d.journal.append(cohortAdded{id: id})
	d.journal.emit(CohortAddedEvent{CohortID: id})
	d.metrics.cohorts.Set(int64(len(d.cohorts)))

	d.log.Info("Registered cohort", "id", id, "root", root,
		"distributionEnd", c.DistributionEnd, "vestingEnd", c.VestingEnd, "cliffEnd", c.CliffEnd())
	return id, nil
}

// Cohort returns the cohort registered under id.
func (d *Distributor) Cohort(id uint64) (vesting.Cohort, error) {
	if id >= uint64(len(d.cohorts)) {
		return vesting.Cohort{}, fmt.Errorf("%w: %d", ErrCohortDoesNotExist, id)
	}
	return d.cohorts[id], nil
}

// CohortCount returns the number of registered cohorts.
func (d *Distributor) CohortCount() uint64 {
	return uint64(len(d.cohorts))
}
