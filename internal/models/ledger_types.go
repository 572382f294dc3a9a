package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet names one of the two balances held on a ledger row.
type Wallet string

const (
	WalletMain Wallet = "main"
	WalletGas  Wallet = "gas"
)

// Column returns the ledgers column backing the wallet.
func (w Wallet) Column() string {
	if w == WalletGas {
		return "gas_fee_balance"
	}
	return "main_wallet_balance"
}

// Ledger is the model for the 'ledgers' table (one row per user).
type Ledger struct {
	UserID            int64           `json:"userId" db:"user_id"`
	MainWalletBalance decimal.Decimal `json:"mainWalletBalance" db:"main_wallet_balance"`
	GasFeeBalance     decimal.Decimal `json:"gasFeeBalance" db:"gas_fee_balance"`
	UpdatedAt         time.Time       `json:"updatedAt" db:"updated_at"`
}

// Balance returns the balance of the given wallet.
func (l Ledger) Balance(w Wallet) decimal.Decimal {
	if w == WalletGas {
		return l.GasFeeBalance
	}
	return l.MainWalletBalance
}

// LedgerEntry is an audit row written alongside every balance mutation.
type LedgerEntry struct {
	ID        int64           `json:"id" db:"id"`
	UserID    int64           `json:"userId" db:"user_id"`
	Wallet    Wallet          `json:"wallet" db:"wallet"`
	Delta     decimal.Decimal `json:"delta" db:"delta"`
	Reason    string          `json:"reason" db:"reason"`
	Reference string          `json:"reference" db:"reference"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
}
