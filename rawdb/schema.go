package rawdb

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
)

// Key prefixes for the database schema. Each record type uses a distinct
// prefix so keys can never collide.
var (
	cohortCountKey = []byte("CohortCount") // -> number of registered cohorts (8 bytes BE)

	cohortPrefix       = []byte("c") // c + id (8 bytes BE) -> cohort RLP
	claimedPrefix      = []byte("a") // a + id (8 bytes BE) + account -> released amount (32 bytes BE)
	claimedIndexPrefix = []byte("i") // i + id (8 bytes BE) + leaf index (8 bytes BE) -> {1}
)

// encodeUint64 encodes an id or index as an 8-byte big-endian value.
func encodeUint64(n uint64) []byte {
	enc := make([]byte, 8)
	binary.BigEndian.PutUint64(enc, n)
	return enc
}

// cohortKey = cohortPrefix + id
func cohortKey(id uint64) []byte {
	return append(append([]byte{}, cohortPrefix...), encodeUint64(id)...)
}

// claimedKey = claimedPrefix + id + account
func claimedKey(id uint64, account common.Address) []byte {
	key := append(append([]byte{}, claimedPrefix...), encodeUint64(id)...)
	return append(key, account[:]...)
}

// claimedIndexCohortPrefix = claimedIndexPrefix + id
func claimedIndexCohortPrefix(id uint64) []byte {
	return append(append([]byte{}, claimedIndexPrefix...), encodeUint64(id)...)
}

// claimedIndexKey = claimedIndexPrefix + id + index
func claimedIndexKey(id, index uint64) []byte {
	return append(claimedIndexCohortPrefix(id), encodeUint64(index)...)
}
