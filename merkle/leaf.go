// Package merkle builds binary keccak256 Merkle trees over allocation lists
// and produces and verifies inclusion proofs for single allocations.
//
// A leaf commits to (index, account, amount) using the same byte layout as
// Solidity's abi.encodePacked(uint256, address, uint256), so roots built here
// can be checked by an EVM verifier that hashes leaves the same way.
package merkle

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/guildxyz/club-contracts/crypto"
)

// LeafLength is the size of an encoded leaf: a 32-byte index, a 20-byte
// account and a 32-byte amount.
const LeafLength = 32 + common.AddressLength + 32

// Entry is one allocation: the full entitlement of Account at leaf Index.
type Entry struct {
	Index   uint64
	Account common.Address
	Amount  *uint256.Int
}

// EncodeLeaf returns the fixed-width encoding of an allocation. A nil amount
// encodes as zero.
func EncodeLeaf(index uint64, account common.Address, amount *uint256.Int) []byte {
	enc := make([]byte, LeafLength)
	idx := uint256.NewInt(index).Bytes32()
	copy(enc[:32], idx[:])
	copy(enc[32:32+common.AddressLength], account[:])
	if amount != nil {
		amt := amount.Bytes32()
		copy(enc[32+common.AddressLength:], amt[:])
	}
	return enc
}

// LeafHash returns the leaf digest of an allocation.
func LeafHash(index uint64, account common.Address, amount *uint256.Int) common.Hash {
	return crypto.Keccak256Hash(EncodeLeaf(index, account, amount))
}

// Hash returns the leaf digest of e.
func (e Entry) Hash() common.Hash {
	return LeafHash(e.Index, e.Account, e.Amount)
}

// combine hashes two sibling nodes, left first. Internal nodes hash 64 bytes
// while leaves hash LeafLength bytes, so an internal node can never be
// presented as a leaf.
func combine(left, right common.Hash) common.Hash {
	return crypto.Keccak256Hash(left[:], right[:])
}
