package distributor

import (
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/holiman/uint256"

	"github.com/guildxyz/club-contracts/log"
	"github.com/guildxyz/club-contracts/metrics"
)

// TokenLedger is the fungible token holding the pooled balance. The
// distributor only reads balances and transfers out of its own account; it
// never mints or burns.
type TokenLedger interface {
	BalanceOf(account common.Address) *uint256.Int
	Transfer(from, to common.Address, amount *uint256.Int) error
}

// Clock reports the current time in unix seconds.
type Clock interface {
	Now() uint64
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() uint64 { return uint64(time.Now().Unix()) }

// Config holds everything a Distributor needs.
type Config struct {
	// Admin is the only principal allowed to register cohorts and withdraw.
	Admin common.Address

	// Address is the distributor's own account on the token ledger.
	Address common.Address

	// Token is the ledger holding the pooled balance.
	Token TokenLedger

	// DB persists the registry and the claim ledger. When nil an in-memory
	// store is created and closed by Close.
	DB ethdb.KeyValueStore

	// Clock defaults to SystemClock.
	Clock Clock

	// Logger defaults to the package default logger.
	Logger *log.Logger

	// Metrics defaults to metrics.DefaultRegistry.
	Metrics *metrics.Registry
}

// Validate checks the mandatory fields.
func (c *Config) Validate() error {
	if c.Token == nil {
		return errors.New("config: token ledger must be set")
	}
	if c.Admin == (common.Address{}) {
		return errors.New("config: admin address must not be zero")
	}
	if c.Address == (common.Address{}) {
		return errors.New("config: distributor address must not be zero")
	}
	return nil
}
