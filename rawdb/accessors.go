package rawdb

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"

	"github.com/guildxyz/club-contracts/vesting"
)

var (
	ErrCohortNotFound = errors.New("rawdb: cohort not found")
	ErrCorruptRecord  = errors.New("rawdb: corrupt record")
)

// --- Cohort registry ---

// ReadCohortCount returns the number of registered cohorts, 0 when none have
// been stored.
func ReadCohortCount(db ethdb.KeyValueReader) (uint64, error) {
	data, _ := db.Get(cohortCountKey)
	switch len(data) {
	case 0:
		return 0, nil
	case 8:
		return binary.BigEndian.Uint64(data), nil
	default:
		return 0, fmt.Errorf("%w: cohort count length %d", ErrCorruptRecord, len(data))
	}
}

// WriteCohortCount stores the number of registered cohorts.
func WriteCohortCount(db ethdb.KeyValueWriter, count uint64) error {
	return db.Put(cohortCountKey, encodeUint64(count))
}

// ReadCohort retrieves the cohort with the given id.
func ReadCohort(db ethdb.KeyValueReader, id uint64) (vesting.Cohort, error) {
	data, _ := db.Get(cohortKey(id))
	if len(data) == 0 {
		return vesting.Cohort{}, fmt.Errorf("%w: %d", ErrCohortNotFound, id)
	}
	var c vesting.Cohort
	if err := rlp.DecodeBytes(data, &c); err != nil {
		return vesting.Cohort{}, fmt.Errorf("%w: cohort %d: %v", ErrCorruptRecord, id, err)
	}
	return c, nil
}

// WriteCohort stores a cohort under id. It does not touch the count.
func WriteCohort(db ethdb.KeyValueWriter, id uint64, c vesting.Cohort) error {
	data, err := rlp.EncodeToBytes(&c)
	if err != nil {
		return err
	}
	return db.Put(cohortKey(id), data)
}

// DeleteCohort removes the cohort record under id. It does not touch the
// count.
func DeleteCohort(db ethdb.KeyValueWriter, id uint64) error {
	return db.Delete(cohortKey(id))
}

// AppendCohort stores c under the next free id and bumps the count, in one
// batch. It returns the assigned id.
func AppendCohort(db ethdb.KeyValueStore, c vesting.Cohort) (uint64, error) {
	id, err := ReadCohortCount(db)
	if err != nil {
		return 0, err
	}
	batch := db.NewBatch()
	if err := WriteCohort(batch, id, c); err != nil {
		return 0, err
	}
	if err := WriteCohortCount(batch, id+1); err != nil {
		return 0, err
	}
	if err := batch.Write(); err != nil {
		return 0, err
	}
	return id, nil
}

// ReadCohorts loads every registered cohort in id order.
func ReadCohorts(db ethdb.KeyValueReader) ([]vesting.Cohort, error) {
	count, err := ReadCohortCount(db)
	if err != nil {
		return nil, err
	}
	cohorts := make([]vesting.Cohort, 0, count)
	for id := uint64(0); id < count; id++ {
		c, err := ReadCohort(db, id)
		if err != nil {
			return nil, err
		}
		cohorts = append(cohorts, c)
	}
	return cohorts, nil
}

// --- Claim ledger ---

// ReadClaimed returns the cumulative amount released to account in cohort
// id, zero when nothing was released.
func ReadClaimed(db ethdb.KeyValueReader, id uint64, account common.Address) (*uint256.Int, error) {
	data, _ := db.Get(claimedKey(id, account))
	switch len(data) {
	case 0:
		return new(uint256.Int), nil
	case 32:
		return new(uint256.Int).SetBytes32(data), nil
	default:
		return nil, fmt.Errorf("%w: claimed amount length %d", ErrCorruptRecord, len(data))
	}
}

// WriteClaimed stores the cumulative released amount. A zero amount removes
// the record.
func WriteClaimed(db ethdb.KeyValueWriter, id uint64, account common.Address, amount *uint256.Int) error {
	if amount.IsZero() {
		return db.Delete(claimedKey(id, account))
	}
	enc := amount.Bytes32()
	return db.Put(claimedKey(id, account), enc[:])
}

// HasClaimedIndex reports whether the leaf at index has claimed in cohort id.
func HasClaimedIndex(db ethdb.KeyValueReader, id, index uint64) bool {
	ok, _ := db.Has(claimedIndexKey(id, index))
	return ok
}

// WriteClaimedIndex marks the leaf at index as having claimed in cohort id.
func WriteClaimedIndex(db ethdb.KeyValueWriter, id, index uint64) error {
	return db.Put(claimedIndexKey(id, index), []byte{1})
}

// DeleteClaimedIndex clears the claimed mark of a leaf.
func DeleteClaimedIndex(db ethdb.KeyValueWriter, id, index uint64) error {
	return db.Delete(claimedIndexKey(id, index))
}

// ReadClaimedIndices returns every marked leaf index of cohort id in
// ascending order.
func ReadClaimedIndices(db ethdb.Iteratee, id uint64) ([]uint64, error) {
	prefix := claimedIndexCohortPrefix(id)
	it := db.NewIterator(prefix, nil)
	defer it.Release()

	var indices []uint64
	for it.Next() {
		key := it.Key()
		if len(key) != len(prefix)+8 {
			return nil, fmt.Errorf("%w: claimed index key length %d", ErrCorruptRecord, len(key))
		}
		indices = append(indices, binary.BigEndian.Uint64(key[len(prefix):]))
	}
	return indices, it.Error()
}
