package distributor

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
	"github.com/holiman/uint256"
)

// CohortAddedEvent is posted when a cohort is registered.
type CohortAddedEvent struct {
	CohortID uint64
}

// ClaimedEvent is posted when a claim commits. Amount is zero for claims that
// released nothing new.
type ClaimedEvent struct {
	CohortID uint64
	Account  common.Address
	Amount   *uint256.Int
}

// WithdrawnEvent is posted when the pooled balance is swept.
type WithdrawnEvent struct {
	To     common.Address
	Amount *uint256.Int
}

// Events are delivered after the outermost operation commits. Sending blocks
// until every subscriber has received the event, so subscribers should use
// buffered channels or drain promptly.

// SubscribeCohortAdded registers ch for CohortAddedEvent.
func (d *Distributor) SubscribeCohortAdded(ch chan<- CohortAddedEvent) event.Subscription {
	return d.scope.Track(d.cohortFeed.Subscribe(ch))
}

// SubscribeClaimed registers ch for ClaimedEvent.
func (d *Distributor) SubscribeClaimed(ch chan<- ClaimedEvent) event.Subscription {
	return d.scope.Track(d.claimFeed.Subscribe(ch))
}

// SubscribeWithdrawn registers ch for WithdrawnEvent.
func (d *Distributor) SubscribeWithdrawn(ch chan<- WithdrawnEvent) event.Subscription {
	return d.scope.Track(d.withdrawFeed.Subscribe(ch))
}

func (d *Distributor) post(events []any) {
	for _, ev := range events {
		switch ev := ev.(type) {
		case CohortAddedEvent:
			d.cohortFeed.Send(ev)
		case ClaimedEvent:
			d.claimFeed.Send(ev)
		case WithdrawnEvent:
			d.withdrawFeed.Send(ev)
		}
	}
}
