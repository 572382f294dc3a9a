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
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// MintResult describes the listing created by an approved mint.
type MintResult struct {
	ListingID int64           `json:"listingId"`
	RefNumber string          `json:"refNumber"`
	Fee       decimal.Decimal `json:"fee"`
}

// ApproveMint charges the current minting fee to the creator's gas-fee
// wallet and publishes the request as an Available listing. The fee is
// quoted before the transaction opens; an oracle failure leaves the request
// Pending.
func (s *Service) ApproveMint(ctx context.Context, actor Actor, id int64) (*MintResult, error) {
	var result MintResult

	quote := func(ctx context.Context) error {
		fee, err := s.fees.MintingFee(ctx)
		if err != nil {
			if !errors.Is(err, apperror.ErrUpstreamUnavailable) {
				err = fmt.Errorf("%v: %w", err, apperror.ErrUpstreamUnavailable)
			}
			return err
		}
		result.Fee = fee
		return nil
	}

	err := s.runWith(ctx, actor, KindMint, "approve", id, quote, func(tx *sqlx.Tx) (*decision, error) {
		if err := transition(ctx, tx, "mint_requests", id, models.MintPending, models.MintApproved); err != nil {
			return nil, err
		}

		m, d, err := loadMint(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		d.ref = fmt.Sprintf("mint-%d", id)

		if err := ledger.Debit(ctx, tx, m.UserID, models.WalletGas, result.Fee, ledger.ReasonMintingFee, d.ref); err != nil {
			return nil, err
		}

		result.RefNumber = uuid.NewString()
		res, err := tx.ExecContext(ctx, `
			INSERT INTO listings
			(ref_number, name, image, category, collection_name, price, description, royalties, status, creator, owner_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			result.RefNumber, m.Name, m.Image, m.Category, m.CollectionName, m.Price,
			m.Description, m.Royalties, models.ListingAvailable, m.Creator, m.UserID,
		)
		if err != nil {
			return nil, fmt.Errorf("publish listing: %w", err)
		}
		if result.ListingID, err = res.LastInsertId(); err != nil {
			return nil, fmt.Errorf("publish listing: %w", err)
		}

		if _, err := tx.ExecContext(ctx, "UPDATE mint_requests SET listing_id = ? WHERE id = ?", result.ListingID, id); err != nil {
			return nil, fmt.Errorf("link mint request %d: %w", id, err)
		}

		msg := fmt.Sprintf("%q was minted. A fee of %s ETH was charged to your gas wallet.", m.Name, result.Fee.StringFixed(4))
		if err := notification.Add(ctx, tx, m.UserID, msg, fmt.Sprintf("/listings/%d", result.ListingID)); err != nil {
			return nil, err
		}
		return d, nil
	})
	if err != nil {
		return nil, err
	}

	s.rec.MintingFeeCharged(result.Fee.InexactFloat64())
	return &result, nil
}

// RejectMint closes the request without charging anything. The row is kept
// with status Rejected so the creator can see the outcome.
func (s *Service) RejectMint(ctx context.Context, actor Actor, id int64) error {
	return s.run(ctx, actor, KindMint, "reject", id, func(tx *sqlx.Tx) (*decision, error) {
		if err := transition(ctx, tx, "mint_requests", id, models.MintPending, models.MintRejected); err != nil {
			return nil, err
		}

		m, d, err := loadMint(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		d.ref = fmt.Sprintf("mint-%d", id)

		msg := fmt.Sprintf("Your minting request for %q was rejected.", m.Name)
		if err := notification.Add(ctx, tx, m.UserID, msg, "/mint"); err != nil {
			return nil, err
		}
		return d, nil
	})
}

func loadMint(ctx context.Context, tx *sqlx.Tx, id int64) (*models.MintRequest, *decision, error) {
	var (
		m models.MintRequest
		d decision
	)
	query := `
		SELECT m.user_id, m.name, m.image, m.category, m.collection_name, m.price,
		       m.description, m.royalties, m.creator, u.email, u.name
		FROM mint_requests m
		JOIN users u ON u.id = m.user_id
		WHERE m.id = ?`
	err := tx.QueryRowContext(ctx, query, id).Scan(
		&m.UserID, &m.Name, &m.Image, &m.Category, &m.CollectionName, &m.Price,
		&m.Description, &m.Royalties, &m.Creator, &d.email, &d.name,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("mint request %d: %w", id, apperror.ErrNotFound)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load mint request %d: %w", id, err)
	}
	m.ID = id
	d.userID = m.UserID
	return &m, &d, nil
}
