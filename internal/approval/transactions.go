package approval

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/01moynul/mintverse-golang/internal/apperror"
	"github.com/01moynul/mintverse-golang/internal/ledger"
	"github.com/01moynul/mintverse-golang/internal/models"
	"github.com/01moynul/mintverse-golang/internal/notification"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type purchase struct {
	decision
	ownerID   int64
	listingID int64
	price     decimal.Decimal
}

// ApproveTransaction debits the buyer's main wallet by the listed price and
// marks the listing Sold to the buyer. If either step fails nothing changes.
func (s *Service) ApproveTransaction(ctx context.Context, actor Actor, id int64) error {
	return s.run(ctx, actor, KindTransaction, "approve", id, func(tx *sqlx.Tx) (*decision, error) {
		if err := transition(ctx, tx, "transactions", id, models.TransactionPending, models.TransactionSold); err != nil {
			return nil, err
		}

		p, err := loadPurchase(ctx, tx, id)
		if err != nil {
			return nil, err
		}

		if err := ledger.Debit(ctx, tx, p.userID, models.WalletMain, p.price, ledger.ReasonPurchase, p.ref); err != nil {
			return nil, err
		}

		res, err := tx.ExecContext(ctx,
			"UPDATE listings SET status = ?, buyer_id = ?, buyer_name = ? WHERE id = ? AND status <> ?",
			models.ListingSold, p.userID, p.name, p.listingID, models.ListingSold,
		)
		if err != nil {
			return nil, fmt.Errorf("mark listing %d sold: %w", p.listingID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("mark listing %d sold: %w", p.listingID, err)
		}
		if n == 0 {
			return nil, fmt.Errorf("listing %d already sold: %w", p.listingID, apperror.ErrConflict)
		}

		buyerMsg := fmt.Sprintf("Your purchase %s was approved. The item is now in your collection.", p.ref)
		if err := notification.Add(ctx, tx, p.userID, buyerMsg, fmt.Sprintf("/listings/%d", p.listingID)); err != nil {
			return nil, err
		}
		ownerMsg := fmt.Sprintf("Your item was sold to %s for %s ETH.", p.name, p.price.StringFixed(4))
		if err := notification.Add(ctx, tx, p.ownerID, ownerMsg, fmt.Sprintf("/listings/%d", p.listingID)); err != nil {
			return nil, err
		}
		return &p.decision, nil
	})
}

// RejectTransaction closes the purchase request without touching any
// balance or the listing.
func (s *Service) RejectTransaction(ctx context.Context, actor Actor, id int64) error {
	return s.run(ctx, actor, KindTransaction, "reject", id, func(tx *sqlx.Tx) (*decision, error) {
		if err := transition(ctx, tx, "transactions", id, models.TransactionPending, models.TransactionRejected); err != nil {
			return nil, err
		}

		p, err := loadPurchase(ctx, tx, id)
		if err != nil {
			return nil, err
		}

		msg := fmt.Sprintf("Your purchase %s was rejected.", p.ref)
		if err := notification.Add(ctx, tx, p.userID, msg, "/transactions"); err != nil {
			return nil, err
		}
		return &p.decision, nil
	})
}

func loadPurchase(ctx context.Context, tx *sqlx.Tx, id int64) (*purchase, error) {
	var p purchase
	query := `
		SELECT t.buyer_id, t.buyer_name, t.owner_id, t.listing_id, t.listed_price, t.ref_number, u.email
		FROM transactions t
		JOIN users u ON u.id = t.buyer_id
		WHERE t.id = ?`
	err := tx.QueryRowContext(ctx, query, id).Scan(&p.userID, &p.name, &p.ownerID, &p.listingID, &p.price, &p.ref, &p.email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transaction %d: %w", id, apperror.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load transaction %d: %w", id, err)
	}
	return &p, nil
}
