package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/urfave/cli/v2"

	"github.com/guildxyz/club-contracts/distribution"
	"github.com/guildxyz/club-contracts/log"
	"github.com/guildxyz/club-contracts/metrics"
	"github.com/guildxyz/club-contracts/rawdb"
)

func inputFlag(usage string) *cli.StringFlag {
	return &cli.StringFlag{Name: "input", Aliases: []string{"i"}, Usage: usage, Required: true}
}

func outputFlag() *cli.StringFlag {
	return &cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "output file (default: stdout)"}
}

func csvToJSONCommand(cfg *Config) *cli.Command {
	return &cli.Command{
		Name:  "csv-to-json",
		Usage: "Convert an address,amount CSV in whole tokens into a balance map",
		Flags: []cli.Flag{inputFlag("CSV file of address,amount lines"), outputFlag()},
		Action: func(ctx *cli.Context) error {
			in, err := os.Open(ctx.String("input"))
			if err != nil {
				return err
			}
			defer in.Close()

			balances, err := distribution.ParseCSV(in, uint8(cfg.Decimals))
			if err != nil {
				return err
			}
			total, err := balances.Total()
			if err != nil {
				return err
			}
			log.Info("Parsed balances", "accounts", len(balances), "total", total.Dec(), "decimals", cfg.Decimals)
			return withOutput(ctx, func(w io.Writer) error {
				return distribution.WriteBalanceMap(w, balances)
			})
		},
	}
}

func generateCommand() *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "Build the Merkle root and per-account proofs from a balance map",
		Flags: []cli.Flag{inputFlag("JSON balance map of address to smallest-unit amount, as 0x-prefixed hex or decimal (bare hex is rejected)"), outputFlag()},
		Action: func(ctx *cli.Context) error {
			in, err := os.Open(ctx.String("input"))
			if err != nil {
				return err
			}
			defer in.Close()

			balances, err := distribution.ReadBalanceMap(in)
			if err != nil {
				return err
			}
			reg := metrics.DefaultRegistry
			timer := metrics.NewTimer(reg.Histogram(metrics.TreeBuildTime))
			dist, err := distribution.ParseBalanceMap(balances)
			if err != nil {
				return err
			}
			elapsed := timer.Stop()
			reg.Gauge(metrics.TreeLeaves).Set(int64(len(dist.Claims)))

			log.Info("Generated distribution", "root", dist.MerkleRoot, "leaves", len(dist.Claims),
				"total", dist.TokenTotal.Dec(), "elapsed", elapsed)
			log.Debug("Metrics", reg.LogArgs()...)
			return withOutput(ctx, func(w io.Writer) error {
				return distribution.Write(w, dist)
			})
		},
	}
}

func verifyCommand() *cli.Command {
	return &cli.Command{
		Name:  "verify",
		Usage: "Check every proof of a distribution file against its root",
		Flags: []cli.Flag{
			inputFlag("distribution JSON file"),
			&cli.StringFlag{Name: "root", Usage: "expected Merkle root"},
		},
		Action: func(ctx *cli.Context) error {
			in, err := os.Open(ctx.String("input"))
			if err != nil {
				return err
			}
			defer in.Close()

			dist, err := distribution.Read(in)
			if err != nil {
				return err
			}
			if want := ctx.String("root"); want != "" {
				if got := dist.MerkleRoot; got != common.HexToHash(want) {
					return fmt.Errorf("root mismatch: file has %s, want %s", got, want)
				}
			}
			if err := dist.Verify(); err != nil {
				return err
			}
			fmt.Fprintf(ctx.App.Writer, "OK %s claims=%d total=%s\n", dist.MerkleRoot, len(dist.Claims), dist.TokenTotal.Dec())
			return nil
		},
	}
}

func inspectCommand(cfg *Config) *cli.Command {
	return &cli.Command{
		Name:  "inspect",
		Usage: "List the cohorts and claims stored in a distributor database",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "account", Usage: "also print the amounts claimed by this account"},
		},
		Action: func(ctx *cli.Context) error {
			if cfg.DataDir == "" {
				return errors.New("--datadir is required")
			}
			if _, err := os.Stat(cfg.DataDir); err != nil {
				return err
			}
			var account *common.Address
			if s := ctx.String("account"); s != "" {
				if !common.IsHexAddress(s) {
					return fmt.Errorf("invalid account %q", s)
				}
				acc := common.HexToAddress(s)
				account = &acc
			}
			db, err := rawdb.NewLevelDBDatabase(cfg.DataDir, rawdb.DefaultCache, rawdb.DefaultHandles, "", true)
			if err != nil {
				return err
			}
			defer db.Close()

			cohorts, err := rawdb.ReadCohorts(db)
			if err != nil {
				return err
			}
			w := ctx.App.Writer
			fmt.Fprintf(w, "cohorts: %d\n", len(cohorts))
			for id, c := range cohorts {
				indices, err := rawdb.ReadClaimedIndices(db, uint64(id))
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "cohort %d root=%s distributionEnd=%d vestingStart=%d cliffEnd=%d vestingEnd=%d claimedLeaves=%d\n",
					id, c.MerkleRoot, c.DistributionEnd, c.VestingStart(), c.CliffEnd(), c.VestingEnd, len(indices))
				if account != nil {
					claimed, err := rawdb.ReadClaimed(db, uint64(id), *account)
					if err != nil {
						return err
					}
					fmt.Fprintf(w, "  %s claimed=%s\n", account.Hex(), claimed.Dec())
				}
			}
			return nil
		},
	}
}

// withOutput runs write against the --output file, or stdout when unset.
func withOutput(ctx *cli.Context, write func(io.Writer) error) error {
	path := ctx.String("output")
	if path == "" {
		return write(ctx.App.Writer)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
