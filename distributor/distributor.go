// Package distributor releases pooled tokens to recipients that prove their
// entitlement against a cohort's Merkle root, vesting each entitlement
// linearly after a cliff.
//
// A Distributor is a sequential state machine: every operation either
// commits all of its state changes or none of them. It is not safe for
// concurrent use; hosts serialize calls the way a chain serializes
// transactions. Calls re-entered from a token transfer hook are supported
// and observe the ledger update of the claim that triggered them.
package distributor

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/event"

	"github.com/guildxyz/club-contracts/log"
	"github.com/guildxyz/club-contracts/metrics"
	"github.com/guildxyz/club-contracts/rawdb"
	"github.com/guildxyz/club-contracts/vesting"
)

// Distributor owns the cohort registry and the claim ledger.
type Distributor struct {
	admin   common.Address
	address common.Address
	token   TokenLedger
	db      ethdb.KeyValueStore
	ownsDB  bool
	clock   Clock
	log     *log.Logger
	metrics distributorMetrics

	// cohorts is indexed by cohort id; ids are never reused.
	cohorts []vesting.Cohort

	// claimedIdx[id] marks the leaf indices that have claimed in cohort id.
	claimedIdx []*claimedSet

	journal *journal
	depth   int

	cohortFeed   event.Feed
	claimFeed    event.Feed
	withdrawFeed event.Feed
	scope        event.SubscriptionScope
}

// New creates a Distributor and loads any registry and claim state already
// present in cfg.DB.
func New(cfg Config) (*Distributor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	d := &Distributor{
		admin:   cfg.Admin,
		address: cfg.Address,
		token:   cfg.Token,
		db:      cfg.DB,
		clock:   cfg.Clock,
		log:     cfg.Logger,
		journal: newJournal(),
	}
	if d.db == nil {
		d.db = rawdb.NewMemoryDatabase()
		d.ownsDB = true
	}
	if d.clock == nil {
		d.clock = SystemClock{}
	}
	if d.log == nil {
		d.log = log.Default()
	}
	d.log = d.log.Module("distributor")
	reg := cfg.Metrics
	if reg == nil {
		reg = metrics.DefaultRegistry
	}
	d.metrics = newDistributorMetrics(reg)

	if err := d.load(); err != nil {
		if d.ownsDB {
			d.db.Close()
		}
		return nil, err
	}
	return d, nil
}

func (d *Distributor) load() error {
	cohorts, err := rawdb.ReadCohorts(d.db)
	if err != nil {
		return fmt.Errorf("distributor: load cohorts: %w", err)
	}
	d.cohorts = cohorts
	d.claimedIdx = make([]*claimedSet, len(cohorts))
	for id := range cohorts {
		indices, err := rawdb.ReadClaimedIndices(d.db, uint64(id))
		if err != nil {
			return fmt.Errorf("distributor: load claimed indices of cohort %d: %w", id, err)
		}
		set := newClaimedSet()
		for _, idx := range indices {
			set.add(idx)
		}
		d.claimedIdx[id] = set
	}
	d.metrics.cohorts.Set(int64(len(cohorts)))
	if len(cohorts) > 0 {
		d.log.Info("Loaded distributor state", "cohorts", len(cohorts))
	}
	return nil
}

// Close unsubscribes every event subscriber and closes the database if the
// Distributor created it.
func (d *Distributor) Close() error {
	d.scope.Close()
	if d.ownsDB {
		return d.db.Close()
	}
	return nil
}

// Admin returns the administrator address.
func (d *Distributor) Admin() common.Address { return d.admin }

// Address returns the distributor's own account on the token ledger.
func (d *Distributor) Address() common.Address { return d.address }

// Token returns the token ledger holding the pooled balance.
func (d *Distributor) Token() TokenLedger { return d.token }

// begin opens an operation scope and returns its journal snapshot.
func (d *Distributor) begin() int {
	d.depth++
	return d.journal.snapshot()
}

// end closes an operation scope. A non-nil err reverts everything recorded
// since snap. When the outermost scope closes, pending events are posted.
func (d *Distributor) end(snap int, err error) {
	if err != nil {
		if rerr := d.journal.revertToSnapshot(snap, d); rerr != nil {
			d.log.Error("Failed to revert state", "err", rerr, "cause", err)
		}
	}
	d.depth--
	if d.depth == 0 {
		d.post(d.journal.reset())
	}
}

func (d *Distributor) authorize(caller common.Address) error {
	if caller != d.admin {
		return fmt.Errorf("%w: %s", ErrUnauthorized, caller)
	}
	return nil
}
