package distributor

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/guildxyz/club-contracts/rawdb"
)

// journalEntry is a revertible state change.
type journalEntry interface {
	revert(d *Distributor) error
}

// revision marks the journal and pending-event lengths at a snapshot.
type revision struct {
	entries int
	events  int
}

// journal tracks state modifications and not-yet-posted events of the
// operation in flight, including operations re-entered from a token
// transfer. Reverting to a snapshot undoes every change and drops every
// event recorded after it.
type journal struct {
	entries   []journalEntry
	events    []any
	snapshots map[int]revision
	nextID    int
}

func newJournal() *journal {
	return &journal{
		snapshots: make(map[int]revision),
	}
}

func (j *journal) append(entry journalEntry) {
	j.entries = append(j.entries, entry)
}

func (j *journal) emit(ev any) {
	j.events = append(j.events, ev)
}

func (j *journal) snapshot() int {
	id := j.nextID
	j.nextID++
	j.snapshots[id] = revision{entries: len(j.entries), events: len(j.events)}
	return id
}

func (j *journal) revertToSnapshot(id int, d *Distributor) error {
	rev, ok := j.snapshots[id]
	if !ok {
		return nil
	}
	// Revert in reverse order.
	var errs []error
	for i := len(j.entries) - 1; i >= rev.entries; i-- {
		if err := j.entries[i].revert(d); err != nil {
			errs = append(errs, err)
		}
	}
	j.entries = j.entries[:rev.entries]
	j.events = j.events[:rev.events]

	// Remove invalidated snapshots.
	for sid := range j.snapshots {
		if sid >= id {
			delete(j.snapshots, sid)
		}
	}
	return errors.Join(errs...)
}

// reset drops all entries once the outermost operation has committed and
// returns the events to post.
func (j *journal) reset() []any {
	events := j.events
	j.entries = nil
	j.events = nil
	j.snapshots = make(map[int]revision)
	j.nextID = 0
	return events
}

// --- Concrete journal entries ---

type cohortAdded struct {
	id uint64
}

func (ch cohortAdded) revert(d *Distributor) error {
	d.cohorts = d.cohorts[:ch.id]
	d.claimedIdx = d.claimedIdx[:ch.id]
	d.metrics.cohorts.Set(int64(ch.id))
	batch := d.db.NewBatch()
	if err := rawdb.DeleteCohort(batch, ch.id); err != nil {
		return err
	}
	if err := rawdb.WriteCohortCount(batch, ch.id); err != nil {
		return err
	}
	return batch.Write()
}

type claimedChange struct {
	cohort  uint64
	account common.Address
	prev    *uint256.Int
}

func (ch claimedChange) revert(d *Distributor) error {
	return rawdb.WriteClaimed(d.db, ch.cohort, ch.account, ch.prev)
}

type claimedIndexChange struct {
	cohort uint64
	index  uint64
}

func (ch claimedIndexChange) revert(d *Distributor) error {
	d.claimedIdx[ch.cohort].remove(ch.index)
	return rawdb.DeleteClaimedIndex(d.db, ch.cohort, ch.index)
}
