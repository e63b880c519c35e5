package distribution

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/guildxyz/club-contracts/merkle"
)

var (
	addrA = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	addrB = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	addrC = common.HexToAddress("0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC")
)

func ether(n uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(n), uint256.NewInt(1_000_000_000_000_000_000))
}

func TestParseUnits(t *testing.T) {
	tests := []struct {
		in       string
		decimals uint8
		want     string
	}{
		{"1", 18, "1000000000000000000"},
		{"1,000", 18, "1000000000000000000000"},
		{`"2,500.5"`, 18, "2500500000000000000000"},
		{"0.000000000000000001", 18, "1"},
		{".25", 2, "25"},
		{"7", 0, "7"},
		{" 42 ", 6, "42000000"},
	}
	for _, tt := range tests {
		got, err := ParseUnits(tt.in, tt.decimals)
		require.NoError(t, err, tt.in)
		require.Equal(t, tt.want, got.Dec(), tt.in)
	}

	for _, bad := range []string{"", "abc", "1.2.3", "-1", "1e18", "0.0000000000000000001"} {
		_, err := ParseUnits(bad, 18)
		require.ErrorIs(t, err, ErrInvalidAmount, bad)
	}
	_, err := ParseUnits(strings.Repeat("9", 78), 0)
	require.ErrorIs(t, err, ErrAmountOverflow)
}

func TestParseAmount(t *testing.T) {
	v, err := ParseAmount("0x64")
	require.NoError(t, err)
	require.Equal(t, uint64(100), v.Uint64())

	v, err = ParseAmount("101")
	require.NoError(t, err)
	require.Equal(t, uint64(101), v.Uint64())

	v, err = ParseAmount("0XfF")
	require.NoError(t, err)
	require.Equal(t, uint64(255), v.Uint64())

	// Leading zeros stay decimal.
	v, err = ParseAmount("010")
	require.NoError(t, err)
	require.Equal(t, uint64(10), v.Uint64())

	for _, bad := range []string{"", "0x", "-5", "+5", "0xzz", "ten", "0b101", "0o17", "1_000", "1e18", "1.5"} {
		_, err := ParseAmount(bad)
		require.ErrorIs(t, err, ErrInvalidAmount, bad)
	}

	// Bare hex digits, as older balance maps stored them, are refused
	// instead of being read as a different decimal value.
	for _, bare := range []string{"de0b6b3a7640000", "3635c9adc5dea00000", "ff"} {
		_, err := ParseAmount(bare)
		require.ErrorIs(t, err, ErrInvalidAmount, bare)
		require.ErrorContains(t, err, "0x prefix", bare)
	}
	_, err = ParseAmount("0x1" + strings.Repeat("0", 64))
	require.ErrorIs(t, err, ErrAmountOverflow)
}

func TestParseCSV(t *testing.T) {
	in := strings.Join([]string{
		addrA.Hex() + ",100",
		"",
		strings.ToLower(addrB.Hex()) + `,"1,000.5"`,
		addrC.Hex() + ",2,000",
	}, "\n")

	m, err := ParseCSV(strings.NewReader(in), DefaultDecimals)
	require.NoError(t, err)
	require.Len(t, m, 3)
	require.True(t, ether(100).Eq(m[addrA]))
	require.Equal(t, "1000500000000000000000", m[addrB].Dec())
	require.True(t, ether(2000).Eq(m[addrC]))

	total, err := m.Total()
	require.NoError(t, err)
	require.Equal(t, "3100500000000000000000", total.Dec())
}

func TestParseCSVErrors(t *testing.T) {
	tests := map[string]struct {
		in   string
		want error
	}{
		"bad address":    {"0x1234,5", ErrInvalidAddress},
		"missing amount": {addrA.Hex(), ErrInvalidAmount},
		"bad amount":     {addrA.Hex() + ",lots", ErrInvalidAmount},
		"duplicate":      {addrA.Hex() + ",1\n" + strings.ToLower(addrA.Hex()) + ",2", ErrDuplicate},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCSV(strings.NewReader(tt.in), DefaultDecimals)
			require.ErrorIs(t, err, tt.want)
		})
	}

	_, err := ParseCSV(strings.NewReader("\n"+addrA.Hex()+",x"), DefaultDecimals)
	require.ErrorContains(t, err, "line 2")
}

func TestBalanceMapJSONRoundTrip(t *testing.T) {
	m := BalanceMap{addrA: uint256.NewInt(100), addrB: ether(3)}
	var buf bytes.Buffer
	require.NoError(t, WriteBalanceMap(&buf, m))
	require.Contains(t, buf.String(), addrA.Hex())
	require.Contains(t, buf.String(), `"0x64"`)

	got, err := ReadBalanceMap(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.True(t, m[addrA].Eq(got[addrA]))
	require.True(t, m[addrB].Eq(got[addrB]))

	dup := `{"` + addrA.Hex() + `":"1","` + strings.ToLower(addrA.Hex()) + `":"2"}`
	_, err = ReadBalanceMap(strings.NewReader(dup))
	require.ErrorIs(t, err, ErrDuplicate)

	_, err = ReadBalanceMap(strings.NewReader(`{"nope":"1"}`))
	require.ErrorIs(t, err, ErrInvalidAddress)
}

func TestParseBalanceMap(t *testing.T) {
	m := BalanceMap{addrA: uint256.NewInt(200), addrB: uint256.NewInt(300), addrC: uint256.NewInt(250)}
	d, err := ParseBalanceMap(m)
	require.NoError(t, err)
	require.Equal(t, uint64(750), d.TokenTotal.Uint64())
	require.Len(t, d.Claims, 3)

	// Indices follow address order: C (0x3c..) < B (0x70..) < A (0xf3..).
	require.Equal(t, uint64(0), d.Claims[addrC].Index)
	require.Equal(t, uint64(1), d.Claims[addrB].Index)
	require.Equal(t, uint64(2), d.Claims[addrA].Index)

	for acc, c := range d.Claims {
		require.True(t, merkle.Verify(c.Index, acc, c.Amount, c.Proof, d.MerkleRoot), acc.Hex())
	}
	require.NoError(t, d.Verify())

	entries := d.Entries()
	tree, err := merkle.Build(entries)
	require.NoError(t, err)
	require.Equal(t, d.MerkleRoot, tree.Root())

	// The result does not depend on map iteration order.
	again, err := ParseBalanceMap(m)
	require.NoError(t, err)
	require.Equal(t, d.MerkleRoot, again.MerkleRoot)
}

func TestParseBalanceMapErrors(t *testing.T) {
	_, err := ParseBalanceMap(BalanceMap{})
	require.ErrorIs(t, err, ErrEmpty)

	_, err = ParseBalanceMap(BalanceMap{addrA: uint256.NewInt(1), addrB: new(uint256.Int)})
	require.ErrorIs(t, err, ErrZeroAmount)

	maxAmount := new(uint256.Int).SetAllOne()
	_, err = ParseBalanceMap(BalanceMap{addrA: maxAmount, addrB: uint256.NewInt(1)})
	require.ErrorIs(t, err, ErrAmountOverflow)
}

func TestVerifyDetectsTampering(t *testing.T) {
	build := func(t *testing.T) *Distribution {
		d, err := ParseBalanceMap(BalanceMap{addrA: uint256.NewInt(200), addrB: uint256.NewInt(300), addrC: uint256.NewInt(250)})
		require.NoError(t, err)
		return d
	}

	t.Run("amount", func(t *testing.T) {
		d := build(t)
		c := d.Claims[addrA]
		c.Amount = uint256.NewInt(201)
		d.Claims[addrA] = c
		require.ErrorIs(t, d.Verify(), ErrInvalidClaim)
	})
	t.Run("total", func(t *testing.T) {
		d := build(t)
		d.TokenTotal = uint256.NewInt(749)
		require.ErrorIs(t, d.Verify(), ErrTotal)
	})
	t.Run("root", func(t *testing.T) {
		d := build(t)
		d.MerkleRoot[0] ^= 1
		require.ErrorIs(t, d.Verify(), ErrInvalidClaim)
	})
	t.Run("index", func(t *testing.T) {
		d := build(t)
		c := d.Claims[addrA]
		c.Index = 7
		d.Claims[addrA] = c
		require.ErrorIs(t, d.Verify(), ErrInvalidClaim)
	})
}

func TestDistributionJSON(t *testing.T) {
	d, err := ParseBalanceMap(BalanceMap{addrA: uint256.NewInt(100), addrB: uint256.NewInt(101)})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, d))

	var raw map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
	require.Equal(t, d.MerkleRoot.Hex(), raw["merkleRoot"])
	require.Equal(t, "0xc9", raw["tokenTotal"])
	claims := raw["claims"].(map[string]any)
	require.Contains(t, claims, addrA.Hex())

	got, err := Read(&buf)
	require.NoError(t, err)
	require.Equal(t, d.MerkleRoot, got.MerkleRoot)
	require.True(t, d.TokenTotal.Eq(got.TokenTotal))
	require.Len(t, got.Claims, 2)
	for acc, c := range d.Claims {
		gc := got.Claims[acc]
		require.Equal(t, c.Index, gc.Index)
		require.True(t, c.Amount.Eq(gc.Amount))
		require.Equal(t, c.Proof, gc.Proof)
	}
	require.NoError(t, got.Verify())

	_, err = Read(strings.NewReader(`{"merkleRoot":"0x00"}`))
	require.Error(t, err)
}
