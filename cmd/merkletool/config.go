package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/guildxyz/club-contracts/distribution"
	"github.com/guildxyz/club-contracts/log"
	"github.com/guildxyz/club-contracts/metrics"
)

// Config holds the global settings shared by every command.
type Config struct {
	Decimals    uint
	LogLevel    string
	LogFormat   string
	DataDir     string
	MetricsFile string
}

// DefaultConfig returns the settings used when no flag or environment
// variable overrides them.
func DefaultConfig() Config {
	return Config{
		Decimals:  distribution.DefaultDecimals,
		LogLevel:  "info",
		LogFormat: log.FormatText,
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Decimals > 77 {
		return fmt.Errorf("invalid decimals %d: must be at most 77", c.Decimals)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case log.FormatJSON, log.FormatText:
	default:
		return fmt.Errorf("invalid log format %q", c.LogFormat)
	}
	return nil
}

// Global flag names.
const (
	decimalsFlag  = "decimals"
	logLevelFlag  = "log.level"
	logFormatFlag = "log.format"
	dataDirFlag   = "datadir"
	metricsFlag   = "metrics.textfile"
)

func globalFlags() []cli.Flag {
	def := DefaultConfig()
	return []cli.Flag{
		&cli.UintFlag{
			Name:    decimalsFlag,
			Usage:   "token decimals used to convert whole-token CSV amounts",
			Value:   def.Decimals,
			EnvVars: []string{"MERKLETOOL_DECIMALS"},
		},
		&cli.StringFlag{
			Name:    logLevelFlag,
			Usage:   "log level (debug, info, warn, error)",
			Value:   def.LogLevel,
			EnvVars: []string{"MERKLETOOL_LOG_LEVEL"},
		},
		&cli.StringFlag{
			Name:    logFormatFlag,
			Usage:   "log format (text, json)",
			Value:   def.LogFormat,
			EnvVars: []string{"MERKLETOOL_LOG_FORMAT"},
		},
		&cli.StringFlag{
			Name:    dataDirFlag,
			Usage:   "distributor database directory",
			Value:   def.DataDir,
			EnvVars: []string{"MERKLETOOL_DATADIR"},
		},
		&cli.StringFlag{
			Name:    metricsFlag,
			Usage:   "write metrics in Prometheus text format to this file on exit",
			EnvVars: []string{"MERKLETOOL_METRICS_TEXTFILE"},
		},
	}
}

// load resolves the global configuration into cfg and installs the logger.
func (cfg *Config) load(ctx *cli.Context) error {
	cfg.Decimals = ctx.Uint(decimalsFlag)
	cfg.LogLevel = ctx.String(logLevelFlag)
	cfg.LogFormat = ctx.String(logFormatFlag)
	cfg.DataDir = ctx.String(dataDirFlag)
	cfg.MetricsFile = ctx.String(metricsFlag)
	if err := cfg.Validate(); err != nil {
		return err
	}
	level, _ := log.ParseLevel(cfg.LogLevel)
	logger, err := log.NewWithWriter(ctx.App.ErrWriter, level, cfg.LogFormat)
	if err != nil {
		return err
	}
	log.SetDefault(logger.Module("merkletool"))
	return nil
}

// writeMetrics dumps the default registry for the node exporter's textfile
// collector. The file is written under a temporary name and renamed so the
// collector never reads a partial file.
func (cfg *Config) writeMetrics(*cli.Context) error {
	if cfg.MetricsFile == "" {
		return nil
	}
	tmp := cfg.MetricsFile + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := metrics.WriteText(f, metrics.DefaultRegistry, "merkletool"); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, cfg.MetricsFile)
}
