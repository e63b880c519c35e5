// Package rawdb persists the distributor's cohort registry and claim ledger
// in a go-ethereum key-value store, using a prefix-based key schema.
package rawdb

import (
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/ethdb/leveldb"
	"github.com/ethereum/go-ethereum/ethdb/memorydb"
)

// Defaults for on-disk databases opened by the tooling.
const (
	DefaultCache   = 16 // MiB
	DefaultHandles = 16
)

// NewMemoryDatabase creates an ephemeral in-memory key-value store.
func NewMemoryDatabase() ethdb.KeyValueStore {
	return memorydb.New()
}

// NewLevelDBDatabase opens, creating if needed, a LevelDB store at file.
func NewLevelDBDatabase(file string, cache, handles int, namespace string, readonly bool) (ethdb.KeyValueStore, error) {
	return leveldb.New(file, cache, handles, namespace, readonly)
}
