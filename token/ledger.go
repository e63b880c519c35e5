// Package token provides an in-memory fungible token ledger with ERC-20
// transfer semantics. It stands in for the external token contract that
// holds the distributor's pooled balance.
package token

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

var (
	ErrInsufficientBalance = errors.New("token: transfer amount exceeds balance")
	ErrSupplyOverflow      = errors.New("token: total supply overflow")
)

// TransferHook is invoked after a transfer has been applied. It runs without
// the ledger lock held, so it may call back into the ledger or into the
// account that initiated the transfer.
type TransferHook func(from, to common.Address, amount *uint256.Int)

// Ledger is an in-memory balance table. It is safe for concurrent use.
type Ledger struct {
	mu       sync.RWMutex
	balances map[common.Address]*uint256.Int
	supply   *uint256.Int
	hook     TransferHook
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		balances: make(map[common.Address]*uint256.Int),
		supply:   new(uint256.Int),
	}
}

// SetTransferHook installs fn to be called after every successful transfer.
// A nil fn removes the hook.
func (l *Ledger) SetTransferHook(fn TransferHook) {
	l.mu.Lock()
	l.hook = fn
	l.mu.Unlock()
}

// BalanceOf returns a copy of the balance of account.
func (l *Ledger) BalanceOf(account common.Address) *uint256.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balanceLocked(account)
}

// TotalSupply returns a copy of the total supply.
func (l *Ledger) TotalSupply() *uint256.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return new(uint256.Int).Set(l.supply)
}

// Mint creates amount tokens in account.
func (l *Ledger) Mint(account common.Address, amount *uint256.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	supply, overflow := new(uint256.Int).AddOverflow(l.supply, amount)
	if overflow {
		return ErrSupplyOverflow
	}
	l.supply = supply
	l.balances[account] = new(uint256.Int).Add(l.balanceLocked(account), amount)
	return nil
}

// Burn destroys amount tokens held by account.
func (l *Ledger) Burn(account common.Address, amount *uint256.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	bal := l.balanceLocked(account)
	if bal.Lt(amount) {
		return fmt.Errorf("%w: have %s, burn %s", ErrInsufficientBalance, bal.Dec(), amount.Dec())
	}
	l.supply = new(uint256.Int).Sub(l.supply, amount)
	l.balances[account] = bal.Sub(bal, amount)
	return nil
}

// SetBalance mints or burns so that account holds exactly amount.
func (l *Ledger) SetBalance(account common.Address, amount *uint256.Int) error {
	old := l.BalanceOf(account)
	switch old.Cmp(amount) {
	case -1:
		return l.Mint(account, new(uint256.Int).Sub(amount, old))
	case 1:
		return l.Burn(account, new(uint256.Int).Sub(old, amount))
	}
	return nil
}

// Transfer moves amount from one account to another. It fails without any
// state change when from holds less than amount.
func (l *Ledger) Transfer(from, to common.Address, amount *uint256.Int) error {
	l.mu.Lock()
	bal := l.balanceLocked(from)
	if bal.Lt(amount) {
		l.mu.Unlock()
		return fmt.Errorf("%w: have %s, want %s", ErrInsufficientBalance, bal.Dec(), amount.Dec())
	}
	l.balances[from] = bal.Sub(bal, amount)
	l.balances[to] = new(uint256.Int).Add(l.balanceLocked(to), amount)
	hook := l.hook
	l.mu.Unlock()

	if hook != nil {
		hook(from, to, new(uint256.Int).Set(amount))
	}
	return nil
}

func (l *Ledger) balanceLocked(account common.Address) *uint256.Int {
	if bal, ok := l.balances[account]; ok {
		return new(uint256.Int).Set(bal)
	}
	return new(uint256.Int)
}
