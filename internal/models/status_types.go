package models

import (
	"database/sql/driver"
	"errors"
	"fmt"
)

// ErrUnknownStatus is returned when a stored or submitted status string is
// not one of the values defined for its entity.
var ErrUnknownStatus = errors.New("unknown status")

// scanEnum copies a VARCHAR/ENUM column into dst, rejecting unknown values.
func scanEnum[T ~string](src any, dst *T, valid func(T) bool) error {
	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("cannot scan %T into %T", src, dst)
	}
	if !valid(T(raw)) {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
	}
	*dst = T(raw)
	return nil
}

func parseEnum[T ~string](raw string, valid func(T) bool) (T, error) {
	if !valid(T(raw)) {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
	}
	return T(raw), nil
}

//
// --- Requests (wallet deposits, gas-fee deposits, withdrawals) ---
//

type RequestStatus string

const (
	RequestPending  RequestStatus = "Pending"
	RequestApproved RequestStatus = "Approved"
	RequestRejected RequestStatus = "Rejected"
)

func (s RequestStatus) Valid() bool {
	switch s {
	case RequestPending, RequestApproved, RequestRejected:
		return true
	}
	return false
}

func (s *RequestStatus) Scan(src any) error { return scanEnum(src, s, RequestStatus.Valid) }
func (s RequestStatus) Value() (driver.Value, error) { return string(s), nil }

func ParseRequestStatus(raw string) (RequestStatus, error) {
	return parseEnum(raw, RequestStatus.Valid)
}

//
// --- Purchases ---
//

type TransactionStatus string

const (
	TransactionPending  TransactionStatus = "Pending"
	TransactionSold     TransactionStatus = "Sold"
	TransactionRejected TransactionStatus = "Rejected"
)

func (s TransactionStatus) Valid() bool {
	switch s {
	case TransactionPending, TransactionSold, TransactionRejected:
		return true
	}
	return false
}

func (s *TransactionStatus) Scan(src any) error { return scanEnum(src, s, TransactionStatus.Valid) }
func (s TransactionStatus) Value() (driver.Value, error) { return string(s), nil }

func ParseTransactionStatus(raw string) (TransactionStatus, error) {
	return parseEnum(raw, TransactionStatus.Valid)
}

//
// --- Listings ---
//

type ListingStatus string

const (
	ListingListed    ListingStatus = "Listed"
	ListingAvailable ListingStatus = "Available"
	ListingPending   ListingStatus = "Pending"
	ListingSold      ListingStatus = "Sold"
)

func (s ListingStatus) Valid() bool {
	switch s {
	case ListingListed, ListingAvailable, ListingPending, ListingSold:
		return true
	}
	return false
}

func (s *ListingStatus) Scan(src any) error { return scanEnum(src, s, ListingStatus.Valid) }
func (s ListingStatus) Value() (driver.Value, error) { return string(s), nil }

// Purchasable reports whether a buyer may submit a purchase for the listing.
func (s ListingStatus) Purchasable() bool {
	return s == ListingAvailable || s == ListingListed
}

//
// --- Mint requests ---
//

type MintStatus string

const (
	MintPending  MintStatus = "Pending"
	MintApproved MintStatus = "Approved"
	MintRejected MintStatus = "Rejected"
)

func (s MintStatus) Valid() bool {
	switch s {
	case MintPending, MintApproved, MintRejected:
		return true
	}
	return false
}

func (s *MintStatus) Scan(src any) error { return scanEnum(src, s, MintStatus.Valid) }
func (s MintStatus) Value() (driver.Value, error) { return string(s), nil }

func ParseMintStatus(raw string) (MintStatus, error) {
	return parseEnum(raw, MintStatus.Valid)
}

//
// --- Offers ---
//

type OfferStatus string

const (
	OfferPending  OfferStatus = "Pending"
	OfferAccepted OfferStatus = "Accepted"
	OfferDeclined OfferStatus = "Declined"
)

func (s OfferStatus) Valid() bool {
	switch s {
	case OfferPending, OfferAccepted, OfferDeclined:
		return true
	}
	return false
}

func (s *OfferStatus) Scan(src any) error { return scanEnum(src, s, OfferStatus.Valid) }
func (s OfferStatus) Value() (driver.Value, error) { return string(s), nil }

func ParseOfferStatus(raw string) (OfferStatus, error) {
	return parseEnum(raw, OfferStatus.Valid)
}

//
// --- Roles ---
//

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

func (r *Role) Scan(src any) error { return scanEnum(src, r, Role.Valid) }
func (r Role) Value() (driver.Value, error) { return string(r), nil }

func ParseRole(raw string) (Role, error) {
	return parseEnum(raw, Role.Valid)
}
