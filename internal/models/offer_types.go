package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Offer is the model for the 'offers' table.
type Offer struct {
	ID           int64           `json:"id" db:"id"`
	ListingID    int64           `json:"listingId" db:"listing_id"`
	UserID       int64           `json:"userId" db:"user_id"`
	BuyerName    string          `json:"buyerName" db:"buyer_name"`
	OfferedPrice decimal.Decimal `json:"offeredPrice" db:"offered_price"`
	Status       OfferStatus     `json:"status" db:"status"`
	CreatedAt    time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time       `json:"updatedAt" db:"updated_at"`

	ListingName  string `json:"listingName,omitempty" db:"listing_name"`
	ListingImage string `json:"listingImage,omitempty" db:"listing_image"`
}

var (
	offerWideSpread   = decimal.NewFromInt(1)
	offerNarrowSpread = decimal.RequireFromString("0.02")
	offerWideFrom     = decimal.NewFromInt(2)
	offerFloor        = decimal.RequireFromString("0.001")
)

// OfferRange returns the inclusive bounds an offer on a listing priced at
// price must fall within. Listings at 2 ETH or more accept offers up to
// 1 ETH below price, cheaper ones up to 0.02 ETH below; never below 0.001.
func OfferRange(price decimal.Decimal) (min, max decimal.Decimal) {
	spread := offerNarrowSpread
	if price.GreaterThanOrEqual(offerWideFrom) {
		spread = offerWideSpread
	}
	min = price.Sub(spread)
	if min.LessThan(offerFloor) {
		min = offerFloor
	}
	return min, price
}
