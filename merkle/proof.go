package merkle

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// ProofStep is one level of an inclusion proof. Left reports whether Sibling
// sits to the left of the running digest, i.e. whether the step computes
// combine(Sibling, current) rather than combine(current, Sibling).
type ProofStep struct {
	Sibling common.Hash `json:"sibling"`
	Left    bool        `json:"left"`
}

// Proof is an ordered leaf-to-root list of steps.
type Proof []ProofStep

// ComputeRoot folds the proof over a leaf digest and returns the resulting
// root.
func (p Proof) ComputeRoot(leaf common.Hash) common.Hash {
	cur := leaf
	for _, step := range p {
		if step.Left {
			cur = combine(step.Sibling, cur)
		} else {
			cur = combine(cur, step.Sibling)
		}
	}
	return cur
}

// Verify reports whether (index, account, amount) is committed to by root
// under the given proof. It never errors: any mismatch yields false.
func Verify(index uint64, account common.Address, amount *uint256.Int, proof Proof, root common.Hash) bool {
	return proof.ComputeRoot(LeafHash(index, account, amount)) == root
}

// VerifyEntry is Verify for an Entry.
func VerifyEntry(e Entry, proof Proof, root common.Hash) bool {
	return Verify(e.Index, e.Account, e.Amount, proof, root)
}
