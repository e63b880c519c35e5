// Command merkletool builds and checks Merkle distributions for the vesting
// distributor and inspects a distributor database.
//
// Usage:
//
//	merkletool [global flags] <command> [flags]
//
// Commands:
//
//	csv-to-json  Convert "address,whole tokens" CSV into a balance map
//	generate     Build the root and per-account proofs from a balance map
//	verify       Re-check every proof of a distribution file
//	inspect      List cohorts and claimed amounts stored in a datadir
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"
)

// Build-time version info, overridable with ldflags:
//
//	go build -ldflags "-X main.version=v0.2.0 -X main.commit=abc1234"
var (
	version = "v0.1.0-dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run is the actual entry point, returning an exit code. It takes the CLI
// arguments without the program name so it can be tested in isolation.
func run(args []string, stdout, stderr io.Writer) int {
	app := newApp(stdout, stderr)
	if err := app.Run(append([]string{app.Name}, args...)); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newApp(stdout, stderr io.Writer) *cli.App {
	cfg := new(Config)
	return &cli.App{
		Name:            "merkletool",
		Usage:           "build and verify Merkle vesting distributions",
		Version:         fmt.Sprintf("%s (commit %s)", version, commit),
		Writer:          stdout,
		ErrWriter:       stderr,
		Flags:           globalFlags(),
		Before:          cfg.load,
		After:           cfg.writeMetrics,
		HideHelpCommand: true,
		ExitErrHandler:  func(*cli.Context, error) {},
		Commands: []*cli.Command{
			csvToJSONCommand(cfg),
			generateCommand(),
			verifyCommand(),
			inspectCommand(cfg),
		},
	}
}
