package distribution

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"

	"github.com/guildxyz/club-contracts/merkle"
)

var (
	ErrEmpty        = errors.New("distribution: no balances")
	ErrZeroAmount   = errors.New("distribution: zero amount")
	ErrInvalidClaim = errors.New("distribution: claim does not verify")
	ErrTotal        = errors.New("distribution: token total mismatch")
)

// Claim is everything an account needs to claim from a cohort registered
// with the distribution's root.
type Claim struct {
	Index  uint64
	Amount *uint256.Int
	Proof  merkle.Proof
}

// Distribution is a committed allocation list.
type Distribution struct {
	MerkleRoot common.Hash
	TokenTotal *uint256.Int
	Claims     map[common.Address]Claim
}

// ParseBalanceMap orders the accounts by address, assigns dense indices in
// that order and builds the tree over the resulting leaves.
func ParseBalanceMap(balances BalanceMap) (*Distribution, error) {
	if len(balances) == 0 {
		return nil, ErrEmpty
	}
	total, err := balances.Total()
	if err != nil {
		return nil, err
	}
	accounts := make([]common.Address, 0, len(balances))
	for acc, amount := range balances {
		if amount == nil || amount.IsZero() {
			return nil, fmt.Errorf("%w: %s", ErrZeroAmount, acc.Hex())
		}
		accounts = append(accounts, acc)
	}
	sort.Slice(accounts, func(i, j int) bool {
		return bytes.Compare(accounts[i][:], accounts[j][:]) < 0
	})

	entries := make([]merkle.Entry, len(accounts))
	for i, acc := range accounts {
		entries[i] = merkle.Entry{Index: uint64(i), Account: acc, Amount: balances[acc]}
	}
	tree, err := merkle.Build(entries)
	if err != nil {
		return nil, err
	}
	d := &Distribution{
		MerkleRoot: tree.Root(),
		TokenTotal: total,
		Claims:     make(map[common.Address]Claim, len(entries)),
	}
	for _, e := range entries {
		proof, err := tree.Proof(e.Index)
		if err != nil {
			return nil, err
		}
		d.Claims[e.Account] = Claim{Index: e.Index, Amount: new(uint256.Int).Set(e.Amount), Proof: proof}
	}
	return d, nil
}

// Entries returns the leaves of the distribution ordered by index.
func (d *Distribution) Entries() []merkle.Entry {
	entries := make([]merkle.Entry, 0, len(d.Claims))
	for acc, c := range d.Claims {
		entries = append(entries, merkle.Entry{Index: c.Index, Account: acc, Amount: c.Amount})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Index < entries[j].Index })
	return entries
}

// Verify checks that the claims form a dense index range, that every proof
// verifies against the root and that the amounts add up to the token total.
func (d *Distribution) Verify() error {
	if len(d.Claims) == 0 {
		return ErrEmpty
	}
	seen := make(map[uint64]common.Address, len(d.Claims))
	total := new(uint256.Int)
	for acc, c := range d.Claims {
		if c.Index >= uint64(len(d.Claims)) {
			return fmt.Errorf("%w: %s index %d out of range", ErrInvalidClaim, acc.Hex(), c.Index)
		}
		if other, ok := seen[c.Index]; ok {
			return fmt.Errorf("%w: %s and %s share index %d", ErrInvalidClaim, acc.Hex(), other.Hex(), c.Index)
		}
		seen[c.Index] = acc
		if !merkle.Verify(c.Index, acc, c.Amount, c.Proof, d.MerkleRoot) {
			return fmt.Errorf("%w: %s index %d", ErrInvalidClaim, acc.Hex(), c.Index)
		}
		if _, overflow := total.AddOverflow(total, c.Amount); overflow {
			return ErrAmountOverflow
		}
	}
	if d.TokenTotal == nil || !total.Eq(d.TokenTotal) {
		return fmt.Errorf("%w: claims sum to %s, total is %v", ErrTotal, total.Dec(), d.TokenTotal)
	}
	return nil
}

type claimJSON struct {
	Index  uint64       `json:"index"`
	Amount *hexutil.Big `json:"amount"`
	Proof  merkle.Proof `json:"proof"`
}

type distributionJSON struct {
	MerkleRoot common.Hash          `json:"merkleRoot"`
	TokenTotal *hexutil.Big         `json:"tokenTotal"`
	Claims     map[string]claimJSON `json:"claims"`
}

// MarshalJSON encodes amounts as 0x-prefixed hex and keys claims by
// checksummed address.
func (d *Distribution) MarshalJSON() ([]byte, error) {
	enc := distributionJSON{
		MerkleRoot: d.MerkleRoot,
		Claims:     make(map[string]claimJSON, len(d.Claims)),
	}
	if d.TokenTotal != nil {
		enc.TokenTotal = (*hexutil.Big)(d.TokenTotal.ToBig())
	}
	for acc, c := range d.Claims {
		proof := c.Proof
		if proof == nil {
			proof = merkle.Proof{}
		}
		enc.Claims[acc.Hex()] = claimJSON{
			Index:  c.Index,
			Amount: (*hexutil.Big)(c.Amount.ToBig()),
			Proof:  proof,
		}
	}
	return json.Marshal(enc)
}

// UnmarshalJSON decodes the format written by MarshalJSON.
func (d *Distribution) UnmarshalJSON(input []byte) error {
	var dec distributionJSON
	if err := json.Unmarshal(input, &dec); err != nil {
		return err
	}
	if dec.TokenTotal == nil {
		return errors.New("distribution: missing required field 'tokenTotal'")
	}
	total, err := toUint256(dec.TokenTotal)
	if err != nil {
		return fmt.Errorf("tokenTotal: %w", err)
	}
	claims := make(map[common.Address]Claim, len(dec.Claims))
	for k, c := range dec.Claims {
		acc, err := parseAddress(k)
		if err != nil {
			return err
		}
		if _, ok := claims[acc]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicate, acc.Hex())
		}
		if c.Amount == nil {
			return fmt.Errorf("%s: missing required field 'amount'", acc.Hex())
		}
		amount, err := toUint256(c.Amount)
		if err != nil {
			return fmt.Errorf("%s: %w", acc.Hex(), err)
		}
		claims[acc] = Claim{Index: c.Index, Amount: amount, Proof: c.Proof}
	}
	d.MerkleRoot = dec.MerkleRoot
	d.TokenTotal = total
	d.Claims = claims
	return nil
}

func toUint256(b *hexutil.Big) (*uint256.Int, error) {
	v, overflow := uint256.FromBig((*big.Int)(b))
	if overflow {
		return nil, ErrAmountOverflow
	}
	return v, nil
}

// Read decodes a distribution from r.
func Read(r io.Reader) (*Distribution, error) {
	d := new(Distribution)
	if err := json.NewDecoder(r).Decode(d); err != nil {
		return nil, fmt.Errorf("distribution: decode: %w", err)
	}
	return d, nil
}

// Write encodes d to w as indented JSON.
func Write(w io.Writer, d *Distribution) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return err
	}
	buf.WriteByte('\n')
	_, err = buf.WriteTo(w)
	return err
}
