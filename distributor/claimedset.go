package distributor

import "github.com/bits-and-blooms/bitset"

// denseLimit bounds the leaf indices kept in the bitmap. The bitmap grows to
// the highest index it holds, so indices at or above the limit go to a map.
const denseLimit = 1 << 20

// claimedSet records the leaf indices of one cohort that have claimed.
// Trees built by the tooling index leaves densely from 0, but a root may
// commit to arbitrary indices.
type claimedSet struct {
	dense  *bitset.BitSet
	sparse map[uint64]struct{}
}

func newClaimedSet() *claimedSet {
	return &claimedSet{dense: bitset.New(0)}
}

func (s *claimedSet) has(index uint64) bool {
	if index < denseLimit {
		return s.dense.Test(uint(index))
	}
	_, ok := s.sparse[index]
	return ok
}

func (s *claimedSet) add(index uint64) {
	if index < denseLimit {
		s.dense.Set(uint(index))
		return
	}
	if s.sparse == nil {
		s.sparse = make(map[uint64]struct{})
	}
	s.sparse[index] = struct{}{}
}

func (s *claimedSet) remove(index uint64) {
	if index < denseLimit {
		s.dense.Clear(uint(index))
		return
	}
	delete(s.sparse, index)
}

func (s *claimedSet) count() uint {
	return s.dense.Count() + uint(len(s.sparse))
}
