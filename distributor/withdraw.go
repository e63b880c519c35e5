package distributor

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Withdraw sweeps the distributor's whole token balance to the given
// account. It is allowed only once the distribution window of every
// registered cohort has ended, and fails with ErrAlreadyWithdrawn while the
// balance is zero.
func (d *Distributor) Withdraw(caller, to common.Address) (swept *uint256.Int, err error) {
	snap := d.begin()
	defer func() {
		if r := recover(); r != nil {
			d.end(snap, fmt.Errorf("%w: %v", errPanicked, r))
			panic(r)
		}
		d.end(snap, err)
	}()

	if err := d.authorize(caller); err != nil {
		return nil, err
	}
	now := d.clock.Now()
	for id, c := range d.cohorts {
		if c.DistributionOpen(now) {
			return nil, fmt.Errorf("%w: cohort %d closes at %d", ErrDistributionOngoing, id, c.DistributionEnd)
		}
	}
	balance := d.token.BalanceOf(d.address)
	if balance.IsZero() {
		return nil, ErrAlreadyWithdrawn
	}
	if err := d.token.Transfer(d.address, to, balance); err != nil {
		return nil, fmt.Errorf("distributor: transfer %s to %s: %w", balance.Dec(), to, err)
	}
	d.journal.emit(WithdrawnEvent{To: to, Amount: new(uint256.Int).Set(balance)})
	d.metrics.withdrawals.Inc()

	d.log.Info("Withdrew remaining balance", "to", to, "amount", balance.Dec())
	return balance, nil
}
