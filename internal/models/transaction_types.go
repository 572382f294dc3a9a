package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the model for the 'transactions' table: one purchase
// request for one listing.
type Transaction struct {
	ID          int64             `json:"id" db:"id"`
	RefNumber   string            `json:"refNumber" db:"ref_number"`
	BuyerID     int64             `json:"buyerId" db:"buyer_id"`
	BuyerName   string            `json:"buyerName" db:"buyer_name"`
	OwnerID     int64             `json:"ownerId" db:"owner_id"`
	OwnerName   string            `json:"ownerName" db:"owner_name"`
	ListingID   int64             `json:"listingId" db:"listing_id"`
	ListingRef  string            `json:"listingRef" db:"listing_ref"`
	EthAddress  string            `json:"ethAddress" db:"eth_address"`
	ListedPrice decimal.Decimal   `json:"listedPrice" db:"listed_price"`
	ReceiptImg  string            `json:"receiptImg" db:"receipt_img"`
	Status      TransactionStatus `json:"status" db:"status"`
	CreatedAt   time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time         `json:"updatedAt" db:"updated_at"`
}
