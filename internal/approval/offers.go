package approval

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/01moynul/mintverse-golang/internal/apperror"
	"github.com/01moynul/mintverse-golang/internal/models"
	"github.com/01moynul/mintverse-golang/internal/notification"
	"github.com/jmoiron/sqlx"
)

// AcceptOffer and DeclineOffer settle an offer. Offers never move money.
func (s *Service) AcceptOffer(ctx context.Context, actor Actor, id int64) error {
	return s.settleOffer(ctx, actor, id, "accept", models.OfferAccepted)
}

func (s *Service) DeclineOffer(ctx context.Context, actor Actor, id int64) error {
	return s.settleOffer(ctx, actor, id, "decline", models.OfferDeclined)
}

func (s *Service) settleOffer(ctx context.Context, actor Actor, id int64, action string, to models.OfferStatus) error {
	return s.run(ctx, actor, KindOffer, action, id, func(tx *sqlx.Tx) (*decision, error) {
		if err := transition(ctx, tx, "offers", id, models.OfferPending, to); err != nil {
			return nil, err
		}

		var (
			d         decision
			o         models.Offer
			listingID int64
		)
		query := `
			SELECT o.user_id, o.offered_price, o.listing_id, l.name, u.email, u.name
			FROM offers o
			JOIN listings l ON l.id = o.listing_id
			JOIN users u ON u.id = o.user_id
			WHERE o.id = ?`
		err := tx.QueryRowContext(ctx, query, id).Scan(&d.userID, &o.OfferedPrice, &listingID, &o.ListingName, &d.email, &d.name)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("offer %d: %w", id, apperror.ErrNotFound)
		}
		if err != nil {
			return nil, fmt.Errorf("load offer %d: %w", id, err)
		}
		d.ref = fmt.Sprintf("offer-%d", id)

		msg := fmt.Sprintf("Your offer of %s ETH on %q was %s.", o.OfferedPrice.StringFixed(4), o.ListingName, pastTense[action])
		if err := notification.Add(ctx, tx, d.userID, msg, fmt.Sprintf("/listings/%d", listingID)); err != nil {
			return nil, err
		}
		return &d, nil
	})
}
