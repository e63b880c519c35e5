package merkle

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrEmptyTree     = errors.New("merkle: no entries")
	ErrIndexMismatch = errors.New("merkle: entry index does not match its position")
	ErrIndexOOB      = errors.New("merkle: leaf index out of bounds")
)

// Tree is an immutable binary Merkle tree. levels[0] holds the leaf digests
// in entry order and the last level holds only the root.
//
// When a level has an odd number of nodes the last node is promoted to the
// next level unchanged. It is never paired with a copy of itself.
type Tree struct {
	levels [][]common.Hash
}

// Build hashes every entry and combines the digests level by level. Entry i
// must carry Index i.
func Build(entries []Entry) (*Tree, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyTree
	}
	leaves := make([]common.Hash, len(entries))
	for i, e := range entries {
		if e.Index != uint64(i) {
			return nil, fmt.Errorf("%w: position %d has index %d", ErrIndexMismatch, i, e.Index)
		}
		leaves[i] = e.Hash()
	}
	return FromLeaves(leaves), nil
}

// FromLeaves builds a tree over precomputed leaf digests. The slice is owned
// by the tree afterwards. It panics on an empty slice; use Build for
// unvalidated input.
func FromLeaves(leaves []common.Hash) *Tree {
	if len(leaves) == 0 {
		panic("merkle: FromLeaves with no leaves")
	}
	levels := [][]common.Hash{leaves}
	for level := leaves; len(level) > 1; {
		next := make([]common.Hash, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			if i+1 == len(level) {
				next[i/2] = level[i]
				continue
			}
			next[i/2] = combine(level[i], level[i+1])
		}
		levels = append(levels, next)
		level = next
	}
	return &Tree{levels: levels}
}

// Root returns the commitment root.
func (t *Tree) Root() common.Hash {
	return t.levels[len(t.levels)-1][0]
}

// Len returns the number of leaves.
func (t *Tree) Len() int {
	return len(t.levels[0])
}

// Depth returns the number of levels above the leaves. It bounds the proof
// length for every leaf.
func (t *Tree) Depth() int {
	return len(t.levels) - 1
}

// Leaf returns the digest stored at the given leaf position.
func (t *Tree) Leaf(index uint64) (common.Hash, error) {
	if index >= uint64(t.Len()) {
		return common.Hash{}, fmt.Errorf("%w: %d >= %d", ErrIndexOOB, index, t.Len())
	}
	return t.levels[0][index], nil
}

// Proof returns the sibling path for the leaf at index, ordered from the leaf
// level upwards. Levels where the node was promoted contribute no step.
func (t *Tree) Proof(index uint64) (Proof, error) {
	if index >= uint64(t.Len()) {
		return nil, fmt.Errorf("%w: %d >= %d", ErrIndexOOB, index, t.Len())
	}
	proof := make(Proof, 0, t.Depth())
	pos := index
	for _, level := range t.levels[:len(t.levels)-1] {
		switch {
		case pos%2 == 1:
			proof = append(proof, ProofStep{Sibling: level[pos-1], Left: true})
		case pos+1 < uint64(len(level)):
			proof = append(proof, ProofStep{Sibling: level[pos+1]})
		}
		pos /= 2
	}
	return proof, nil
}
