// Package stats answers the counting queries behind the admin dashboard
// and the pending-queue gauges.
package stats

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Pending request kinds and the table each is stored in.
var pendingTables = []struct {
	kind  string
	table string
}{
	{"deposit", "wallet_deposits"},
	{"gas_fee_deposit", "gas_fee_deposits"},
	{"withdrawal", "withdrawals"},
	{"transaction", "transactions"},
	{"mint", "mint_requests"},
	{"offer", "offers"},
}

type Store struct {
	DB *sqlx.DB
}

// PendingCounts returns the number of Pending rows per request kind.
func (s *Store) PendingCounts(ctx context.Context) (map[string]int64, error) {
	counts := make(map[string]int64, len(pendingTables))
	for _, pt := range pendingTables {
		var n int64
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE status = 'Pending'", pt.table)
		if err := s.DB.QueryRowContext(ctx, query).Scan(&n); err != nil {
			return nil, fmt.Errorf("count pending %s: %w", pt.kind, err)
		}
		counts[pt.kind] = n
	}
	return counts, nil
}

// Overview is the admin dashboard summary.
type Overview struct {
	Pending       map[string]int64 `json:"pending"`
	TotalUsers    int64            `json:"totalUsers"`
	TotalListings int64            `json:"totalListings"`
	SoldListings  int64            `json:"soldListings"`
	UnreadContact int64            `json:"contactMessages"`
}

func (s *Store) Overview(ctx context.Context) (*Overview, error) {
	pending, err := s.PendingCounts(ctx)
	if err != nil {
		return nil, err
	}
	o := &Overview{Pending: pending}

	counts := []struct {
		dst   *int64
		query string
	}{
		{&o.TotalUsers, "SELECT COUNT(*) FROM users"},
		{&o.TotalListings, "SELECT COUNT(*) FROM listings"},
		{&o.SoldListings, "SELECT COUNT(*) FROM listings WHERE status = 'Sold'"},
		{&o.UnreadContact, "SELECT COUNT(*) FROM contact_messages"},
	}
	for _, c := range counts {
		if err := s.DB.QueryRowContext(ctx, c.query).Scan(c.dst); err != nil {
			return nil, fmt.Errorf("dashboard count: %w", err)
		}
	}
	return o, nil
}

// UserSummary is the per-user dashboard.
type UserSummary struct {
	Owned           int64 `json:"owned"`
	Bought          int64 `json:"bought"`
	PendingMints    int64 `json:"pendingMints"`
	PendingPurchase int64 `json:"pendingPurchases"`
}

func (s *Store) UserSummary(ctx context.Context, userID int64) (*UserSummary, error) {
	u := &UserSummary{}
	counts := []struct {
		dst   *int64
		query string
	}{
		{&u.Owned, "SELECT COUNT(*) FROM listings WHERE owner_id = ? AND status <> 'Sold'"},
		{&u.Bought, "SELECT COUNT(*) FROM listings WHERE buyer_id = ?"},
		{&u.PendingMints, "SELECT COUNT(*) FROM mint_requests WHERE user_id = ? AND status = 'Pending'"},
		{&u.PendingPurchase, "SELECT COUNT(*) FROM transactions WHERE buyer_id = ? AND status = 'Pending'"},
	}
	for _, c := range counts {
		if err := s.DB.QueryRowContext(ctx, c.query, userID).Scan(c.dst); err != nil {
			return nil, fmt.Errorf("user summary: %w", err)
		}
	}
	return u, nil
}
