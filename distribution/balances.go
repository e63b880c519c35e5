// Package distribution turns allocation lists into Merkle distributions: the
// root a cohort is registered with and, per account, the index, amount and
// proof a claim needs.
package distribution

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
)

// DefaultDecimals is the number of decimals of an 18-decimal token.
const DefaultDecimals = 18

var (
	ErrInvalidAddress = errors.New("distribution: invalid address")
	ErrInvalidAmount  = errors.New("distribution: invalid amount")
	ErrDuplicate      = errors.New("distribution: duplicate account")
	ErrAmountOverflow = errors.New("distribution: amount overflows 256 bits")
)

// BalanceMap maps accounts to amounts in the token's smallest unit.
type BalanceMap map[common.Address]*uint256.Int

// Total returns the sum of all balances.
func (m BalanceMap) Total() (*uint256.Int, error) {
	total := new(uint256.Int)
	for acc, amount := range m {
		if _, overflow := total.AddOverflow(total, amount); overflow {
			return nil, fmt.Errorf("%w: total at %s", ErrAmountOverflow, acc.Hex())
		}
	}
	return total, nil
}

// ParseUnits converts a decimal string of whole tokens, optionally with a
// fractional part of at most decimals digits, into smallest units.
// Thousands separators and quotes are ignored.
func ParseUnits(s string, decimals uint8) (*uint256.Int, error) {
	clean := strings.NewReplacer(",", "", `"`, "", "_", "").Replace(strings.TrimSpace(s))
	whole, frac, _ := strings.Cut(clean, ".")
	if whole == "" && frac == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if len(frac) > int(decimals) {
		return nil, fmt.Errorf("%w: %q has more than %d decimals", ErrInvalidAmount, s, decimals)
	}
	digits := whole + frac + strings.Repeat("0", int(decimals)-len(frac))
	for _, r := range digits {
		if r < '0' || r > '9' {
			return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
		}
	}
	b, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	v, overflow := uint256.FromBig(b)
	if overflow {
		return nil, fmt.Errorf("%w: %q", ErrAmountOverflow, s)
	}
	return v, nil
}

// ParseAmount parses a smallest-unit amount given either as 0x-prefixed hex
// or as a decimal integer. Unprefixed values containing hex letters are
// rejected rather than misread.
func ParseAmount(s string) (*uint256.Int, error) {
	s = strings.TrimSpace(s)
	base, digits := 10, s
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		base, digits = 16, s[2:]
	}
	if digits == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	for _, c := range digits {
		switch {
		case c >= '0' && c <= '9':
		case base == 16 && (c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'):
		case base == 10 && (c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'):
			return nil, fmt.Errorf("%w: %q: hex amounts need a 0x prefix", ErrInvalidAmount, s)
		default:
			return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
		}
	}
	b, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	v, overflow := uint256.FromBig(b)
	if overflow {
		return nil, fmt.Errorf("%w: %q", ErrAmountOverflow, s)
	}
	return v, nil
}

func parseAddress(s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	return common.HexToAddress(s), nil
}

// ParseCSV reads lines of "address,amount" where amount is in whole tokens.
// Unquoted thousands separators split the amount over several fields, which
// are joined back together. Blank lines are skipped.
func ParseCSV(r io.Reader, decimals uint8) (BalanceMap, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true

	out := make(BalanceMap)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("distribution: read csv: %w", err)
		}
		line, _ := cr.FieldPos(0)
		if len(rec) < 2 {
			return nil, fmt.Errorf("line %d: %w: missing amount", line, ErrInvalidAmount)
		}
		acc, err := parseAddress(rec[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		amount, err := ParseUnits(strings.Join(rec[1:], ""), decimals)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if _, ok := out[acc]; ok {
			return nil, fmt.Errorf("line %d: %w: %s", line, ErrDuplicate, acc.Hex())
		}
		out[acc] = amount
	}
	return out, nil
}

// ReadBalanceMap decodes a JSON object mapping addresses to amounts. Amounts
// are strings accepted by ParseAmount. Addresses differing only in case are
// duplicates.
func ReadBalanceMap(r io.Reader) (BalanceMap, error) {
	var raw map[string]string
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("distribution: decode balance map: %w", err)
	}
	out := make(BalanceMap, len(raw))
	for k, v := range raw {
		acc, err := parseAddress(k)
		if err != nil {
			return nil, err
		}
		if _, ok := out[acc]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicate, acc.Hex())
		}
		amount, err := ParseAmount(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", acc.Hex(), err)
		}
		out[acc] = amount
	}
	return out, nil
}

// WriteBalanceMap encodes m as a JSON object keyed by checksummed address
// with 0x-prefixed hex amounts.
func WriteBalanceMap(w io.Writer, m BalanceMap) error {
	raw := make(map[string]string, len(m))
	for acc, amount := range m {
		raw[acc.Hex()] = hexutil.EncodeBig(amount.ToBig())
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(raw)
}
