package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Deposit is the model for the 'wallet_deposits' table.
type Deposit struct {
	ID         int64           `json:"id" db:"id"`
	RefNumber  string          `json:"refNumber" db:"ref_number"`
	UserID     int64           `json:"userId" db:"user_id"`
	EthAddress string          `json:"ethAddress" db:"eth_address"`
	Amount     decimal.Decimal `json:"amount" db:"amount"`
	Method     string          `json:"method" db:"method"`
	ReceiptImg string          `json:"receiptImg" db:"receipt_img"`
	Status     RequestStatus   `json:"status" db:"status"`
	CreatedAt  time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time       `json:"updatedAt" db:"updated_at"`

	UserName  string `json:"userName,omitempty" db:"user_name"`
	UserEmail string `json:"userEmail,omitempty" db:"user_email"`
}

// GasFeeDeposit is the model for the 'gas_fee_deposits' table.
type GasFeeDeposit struct {
	ID         int64           `json:"id" db:"id"`
	RefNumber  string          `json:"refNumber" db:"ref_number"`
	UserID     int64           `json:"userId" db:"user_id"`
	Amount     decimal.Decimal `json:"amount" db:"amount"`
	ReceiptImg string          `json:"receiptImg" db:"receipt_img"`
	Status     RequestStatus   `json:"status" db:"status"`
	CreatedAt  time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time       `json:"updatedAt" db:"updated_at"`

	UserName  string `json:"userName,omitempty" db:"user_name"`
	UserEmail string `json:"userEmail,omitempty" db:"user_email"`
}

// Withdrawal is the model for the 'withdrawals' table.
type Withdrawal struct {
	ID         int64           `json:"id" db:"id"`
	RefNumber  string          `json:"refNumber" db:"ref_number"`
	UserID     int64           `json:"userId" db:"user_id"`
	EthAddress string          `json:"ethAddress" db:"eth_address"`
	Amount     decimal.Decimal `json:"amount" db:"amount"`
	Status     RequestStatus   `json:"status" db:"status"`
	CreatedAt  time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time       `json:"updatedAt" db:"updated_at"`

	UserName  string `json:"userName,omitempty" db:"user_name"`
	UserEmail string `json:"userEmail,omitempty" db:"user_email"`
}
