package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/guildxyz/club-contracts/distribution"
	"github.com/guildxyz/club-contracts/rawdb"
	"github.com/guildxyz/club-contracts/vesting"
)

const testCSV = `0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266,100
0x70997970C51812dc3A010C7d01b50e0d17dc79C8,"1,000"
0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC,0.5
`

func runTool(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestVersion(t *testing.T) {
	code, out, _ := runTool(t, "--version")
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if !strings.Contains(out, version) {
		t.Fatalf("expected version %q in output, got %q", version, out)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
	if cfg.Decimals != distribution.DefaultDecimals {
		t.Fatalf("expected %d decimals, got %d", distribution.DefaultDecimals, cfg.Decimals)
	}

	bad := []func(*Config){
		func(c *Config) { c.Decimals = 78 },
		func(c *Config) { c.LogLevel = "loud" },
		func(c *Config) { c.LogFormat = "xml" },
	}
	for i, mutate := range bad {
		c := DefaultConfig()
		mutate(&c)
		if err := c.Validate(); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}

func TestInvalidGlobalFlags(t *testing.T) {
	if code, _, _ := runTool(t, "--log.level", "loud", "verify", "-i", "x.json"); code != 1 {
		t.Fatalf("expected exit code 1 for bad log level, got %d", code)
	}
	if code, _, _ := runTool(t, "verify"); code != 1 {
		t.Fatalf("expected exit code 1 for missing --input, got %d", code)
	}
}

func TestPipeline(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "list.csv")
	balancesPath := filepath.Join(dir, "balances.json")
	distPath := filepath.Join(dir, "distribution.json")
	if err := os.WriteFile(csvPath, []byte(testCSV), 0o644); err != nil {
		t.Fatal(err)
	}

	if code, _, stderr := runTool(t, "csv-to-json", "-i", csvPath, "-o", balancesPath); code != 0 {
		t.Fatalf("csv-to-json failed: %s", stderr)
	}
	f, err := os.Open(balancesPath)
	if err != nil {
		t.Fatal(err)
	}
	balances, err := distribution.ReadBalanceMap(f)
	f.Close()
	if err != nil {
		t.Fatalf("reading balance map: %v", err)
	}
	half := balances[common.HexToAddress("0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC")]
	if half == nil || half.Dec() != "500000000000000000" {
		t.Fatalf("expected 0.5 tokens in wei, got %v", half)
	}

	metricsPath := filepath.Join(dir, "merkletool.prom")
	if code, _, stderr := runTool(t, "--metrics.textfile", metricsPath, "generate", "-i", balancesPath, "-o", distPath); code != 0 {
		t.Fatalf("generate failed: %s", stderr)
	}
	prom, err := os.ReadFile(metricsPath)
	if err != nil {
		t.Fatalf("reading metrics file: %v", err)
	}
	if !strings.Contains(string(prom), "merkletool_merkletool_leaves 3\n") {
		t.Fatalf("expected leaf gauge in metrics file:\n%s", prom)
	}
	f, err = os.Open(distPath)
	if err != nil {
		t.Fatal(err)
	}
	dist, err := distribution.Read(f)
	f.Close()
	if err != nil {
		t.Fatalf("reading distribution: %v", err)
	}
	if len(dist.Claims) != 3 {
		t.Fatalf("expected 3 claims, got %d", len(dist.Claims))
	}

	code, out, stderr := runTool(t, "verify", "-i", distPath, "--root", dist.MerkleRoot.Hex())
	if code != 0 {
		t.Fatalf("verify failed: %s", stderr)
	}
	if !strings.HasPrefix(out, "OK "+dist.MerkleRoot.Hex()) {
		t.Fatalf("unexpected verify output %q", out)
	}

	if code, _, _ := runTool(t, "verify", "-i", distPath, "--root", common.Hash{1}.Hex()); code != 1 {
		t.Fatalf("expected root mismatch to fail, got exit code %d", code)
	}
}

func TestCSVToJSONDecimalsFromEnv(t *testing.T) {
	t.Setenv("MERKLETOOL_DECIMALS", "0")
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "list.csv")
	if err := os.WriteFile(csvPath, []byte("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266,100\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	code, out, stderr := runTool(t, "csv-to-json", "-i", csvPath)
	if code != 0 {
		t.Fatalf("csv-to-json failed: %s", stderr)
	}
	if !strings.Contains(out, `"0x64"`) {
		t.Fatalf("expected amount 0x64 in output, got %q", out)
	}
}

func TestGenerateRejectsBareHexAmounts(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "balances.json")
	legacy := `{"0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266":"de0b6b3a7640000"}`
	if err := os.WriteFile(in, []byte(legacy), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "distribution.json")
	code, _, stderr := runTool(t, "generate", "-i", in, "-o", out)
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if !strings.Contains(stderr, "0x prefix") {
		t.Fatalf("expected prefix error, got %q", stderr)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Fatalf("expected no output file, stat err %v", err)
	}
}

func TestVerifyRejectsTamperedFile(t *testing.T) {
	dist, err := distribution.ParseBalanceMap(distribution.BalanceMap{
		common.HexToAddress("0x01"): uint256.NewInt(100),
		common.HexToAddress("0x02"): uint256.NewInt(101),
	})
	if err != nil {
		t.Fatal(err)
	}
	dist.TokenTotal = uint256.NewInt(200)

	path := filepath.Join(t.TempDir(), "distribution.json")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := distribution.Write(f, dist); err != nil {
		t.Fatal(err)
	}
	f.Close()

	code, _, stderr := runTool(t, "verify", "-i", path)
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if !strings.Contains(stderr, "token total mismatch") {
		t.Fatalf("expected total mismatch error, got %q", stderr)
	}
}

func TestInspect(t *testing.T) {
	dir := t.TempDir()
	account := common.HexToAddress("0x00000000000000000000000000000000000a11ce")
	root := common.HexToHash("0xabcdef")

	db, err := rawdb.NewLevelDBDatabase(dir, rawdb.DefaultCache, rawdb.DefaultHandles, "", false)
	if err != nil {
		t.Fatal(err)
	}
	c, err := vesting.NewCohort(root, 1000, 500, 300, 60)
	if err != nil {
		t.Fatal(err)
	}
	id, err := rawdb.AppendCohort(db, c)
	if err != nil {
		t.Fatal(err)
	}
	if err := rawdb.WriteClaimed(db, id, account, uint256.NewInt(42)); err != nil {
		t.Fatal(err)
	}
	if err := rawdb.WriteClaimedIndex(db, id, 3); err != nil {
		t.Fatal(err)
	}
	if err := db.Close(); err != nil {
		t.Fatal(err)
	}

	code, out, stderr := runTool(t, "--datadir", dir, "inspect", "--account", account.Hex())
	if code != 0 {
		t.Fatalf("inspect failed: %s", stderr)
	}
	for _, want := range []string{
		"cohorts: 1",
		"cohort 0 root=" + root.Hex(),
		"distributionEnd=1500",
		"cliffEnd=1060",
		"vestingEnd=1300",
		"claimedLeaves=1",
		account.Hex() + " claimed=42",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}

	if code, _, _ := runTool(t, "inspect"); code != 1 {
		t.Fatalf("expected inspect without datadir to fail, got %d", code)
	}
}
