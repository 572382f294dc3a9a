package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Listing is the model for the 'listings' table (the live catalog).
type Listing struct {
	ID             int64           `json:"id" db:"id"`
	RefNumber      string          `json:"refNumber" db:"ref_number"`
	Name           string          `json:"name" db:"name"`
	Image          string          `json:"image" db:"image"`
	Category       string          `json:"category" db:"category"`
	CollectionName *string         `json:"collectionName,omitempty" db:"collection_name"`
	Price          decimal.Decimal `json:"price" db:"price"`
	Description    *string         `json:"description,omitempty" db:"description"`
	Royalties      decimal.Decimal `json:"royalties" db:"royalties"`
	Views          int64           `json:"views" db:"views"`
	Status         ListingStatus   `json:"status" db:"status"`
	Creator        string          `json:"creator" db:"creator"`
	OwnerID        int64           `json:"ownerId" db:"owner_id"`
	BuyerID        *int64          `json:"buyerId,omitempty" db:"buyer_id"`
	BuyerName      *string         `json:"buyerName,omitempty" db:"buyer_name"`
	CreatedAt      time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time       `json:"updatedAt" db:"updated_at"`
}

// MintRequest is the model for the 'mint_requests' table: a listing
// waiting for an administrator to approve it and charge the minting fee.
type MintRequest struct {
	ID             int64           `json:"id" db:"id"`
	UserID         int64           `json:"userId" db:"user_id"`
	Name           string          `json:"name" db:"name"`
	Image          string          `json:"image" db:"image"`
	Category       string          `json:"category" db:"category"`
	CollectionName *string         `json:"collectionName,omitempty" db:"collection_name"`
	Price          decimal.Decimal `json:"price" db:"price"`
	Description    *string         `json:"description,omitempty" db:"description"`
	Royalties      decimal.Decimal `json:"royalties" db:"royalties"`
	Creator        string          `json:"creator" db:"creator"`
	Status         MintStatus      `json:"status" db:"status"`
	ListingID      *int64          `json:"listingId,omitempty" db:"listing_id"`
	CreatedAt      time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time       `json:"updatedAt" db:"updated_at"`
}
