// Package ledger mutates the per-user custodial balances. Every function
// takes a Querier so callers decide the transaction scope; approval flows
// pass their *sql.Tx so the balance change commits or rolls back together
// with the request status.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/01moynul/mintverse-golang/internal/apperror"
	"github.com/01moynul/mintverse-golang/internal/models"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// Querier is implemented by *sql.DB, *sql.Tx, *sqlx.DB and *sqlx.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Reasons recorded on ledger entries.
const (
	ReasonDeposit         = "wallet_deposit"
	ReasonGasDeposit      = "gas_fee_deposit"
	ReasonWithdrawal      = "withdrawal"
	ReasonPurchase        = "purchase"
	ReasonMintingFee      = "minting_fee"
	ReasonAdminAdjustment = "admin_adjustment"
)

// Get returns the user's ledger. A user with no ledger row yet has two zero
// balances; that is not an error.
func Get(ctx context.Context, q Querier, userID int64) (models.Ledger, error) {
	return get(ctx, q, userID, "")
}

// GetForUpdate is Get with a row lock; only meaningful inside a transaction.
func GetForUpdate(ctx context.Context, q Querier, userID int64) (models.Ledger, error) {
	return get(ctx, q, userID, " FOR UPDATE")
}

func get(ctx context.Context, q Querier, userID int64, suffix string) (models.Ledger, error) {
	l := models.Ledger{UserID: userID}
	query := "SELECT main_wallet_balance, gas_fee_balance, updated_at FROM ledgers WHERE user_id = ?" + suffix
	err := q.QueryRowContext(ctx, query, userID).Scan(&l.MainWalletBalance, &l.GasFeeBalance, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return l, nil
		}
		return l, fmt.Errorf("get ledger for user %d: %w", userID, err)
	}
	return l, nil
}

// Credit adds amount to one wallet, creating the ledger row on first use.
func Credit(ctx context.Context, q Querier, userID int64, w models.Wallet, amount decimal.Decimal, reason, ref string) error {
	if !amount.IsPositive() {
		return fmt.Errorf("credit amount %s: %w", amount, apperror.ErrValidation)
	}

	col := w.Column()
	query := fmt.Sprintf(
		"INSERT INTO ledgers (user_id, %[1]s) VALUES (?, ?) ON DUPLICATE KEY UPDATE %[1]s = %[1]s + ?",
		col,
	)
	if _, err := q.ExecContext(ctx, query, userID, amount, amount); err != nil {
		return fmt.Errorf("credit %s wallet of user %d: %w", w, userID, err)
	}

	return journal(ctx, q, userID, w, amount, reason, ref)
}

// Debit subtracts amount from one wallet. The balance check and the
// subtraction are one conditional UPDATE, so a balance can never go
// negative even under concurrent debits. A user without a ledger row has
// nothing to debit.
func Debit(ctx context.Context, q Querier, userID int64, w models.Wallet, amount decimal.Decimal, reason, ref string) error {
	if !amount.IsPositive() {
		return fmt.Errorf("debit amount %s: %w", amount, apperror.ErrValidation)
	}

	col := w.Column()
	query := fmt.Sprintf(
		"UPDATE ledgers SET %[1]s = %[1]s - ? WHERE user_id = ? AND %[1]s >= ?",
		col,
	)
	res, err := q.ExecContext(ctx, query, amount, userID, amount)
	if err != nil {
		return fmt.Errorf("debit %s wallet of user %d: %w", w, userID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("debit %s wallet of user %d: %w", w, userID, err)
	}
	if n == 0 {
		return fmt.Errorf("user %d %s wallet below %s: %w", userID, w, amount, apperror.ErrInsufficientFunds)
	}

	return journal(ctx, q, userID, w, amount.Neg(), reason, ref)
}

// Adjustment is an explicit administrator override. Nil fields are left
// untouched.
type Adjustment struct {
	Main *decimal.Decimal
	Gas  *decimal.Decimal
}

// Adjust sets balances to the given absolute values and journals the
// difference. Negative targets are rejected.
func Adjust(ctx context.Context, q Querier, userID int64, adj Adjustment, ref string) (models.Ledger, error) {
	if adj.Main == nil && adj.Gas == nil {
		return models.Ledger{}, fmt.Errorf("empty adjustment: %w", apperror.ErrValidation)
	}
	for _, v := range []*decimal.Decimal{adj.Main, adj.Gas} {
		if v != nil && v.IsNegative() {
			return models.Ledger{}, fmt.Errorf("balance %s is negative: %w", v, apperror.ErrValidation)
		}
	}

	current, err := GetForUpdate(ctx, q, userID)
	if err != nil {
		return current, err
	}

	next := current
	if adj.Main != nil {
		next.MainWalletBalance = *adj.Main
	}
	if adj.Gas != nil {
		next.GasFeeBalance = *adj.Gas
	}

	query := `
		INSERT INTO ledgers (user_id, main_wallet_balance, gas_fee_balance)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE main_wallet_balance = VALUES(main_wallet_balance), gas_fee_balance = VALUES(gas_fee_balance)`
	if _, err := q.ExecContext(ctx, query, userID, next.MainWalletBalance, next.GasFeeBalance); err != nil {
		return current, fmt.Errorf("adjust ledger of user %d: %w", userID, err)
	}

	if d := next.MainWalletBalance.Sub(current.MainWalletBalance); !d.IsZero() {
		if err := journal(ctx, q, userID, models.WalletMain, d, ReasonAdminAdjustment, ref); err != nil {
			return current, err
		}
	}
	if d := next.GasFeeBalance.Sub(current.GasFeeBalance); !d.IsZero() {
		if err := journal(ctx, q, userID, models.WalletGas, d, ReasonAdminAdjustment, ref); err != nil {
			return current, err
		}
	}
	return next, nil
}

func journal(ctx context.Context, q Querier, userID int64, w models.Wallet, delta decimal.Decimal, reason, ref string) error {
	query := `
		INSERT INTO ledger_entries (user_id, wallet, delta, reason, reference)
		VALUES (?, ?, ?, ?, ?)`
	if _, err := q.ExecContext(ctx, query, userID, w, delta, reason, ref); err != nil {
		return fmt.Errorf("journal ledger entry: %w", err)
	}
	return nil
}

// Entries returns the most recent journal rows for a user, newest first.
func Entries(ctx context.Context, db *sqlx.DB, userID int64, limit int) ([]models.LedgerEntry, error) {
	entries := []models.LedgerEntry{}
	query := `
		SELECT id, user_id, wallet, delta, reason, reference, created_at
		FROM ledger_entries
		WHERE user_id = ?
		ORDER BY id DESC
		LIMIT ?`
	if err := db.SelectContext(ctx, &entries, query, userID, limit); err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	return entries, nil
}
