package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/01moynul/mintverse-golang/internal/apperror"
	"github.com/01moynul/mintverse-golang/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

//
// --- Purchase (Transaction) Handlers ---
//

// PurchaseInput is the multipart form for buying a listing. The payment
// receipt travels in the "receipt" file field.
type PurchaseInput struct {
	ListingID  int64  `form:"listingId" binding:"required,gt=0"`
	EthAddress string `form:"ethAddress" binding:"required,eth_addr"`
}

// CreatePurchase is the handler for POST /v1/purchases. The listed price
// is copied from the listing now; the buyer is debited only on approval.
func (h *Handlers) CreatePurchase(c *gin.Context) {
	limitBody(c, maxMultipart)

	// 1. --- Bind & Validate Form ---
	var input PurchaseInput
	if err := c.ShouldBind(&input); err != nil {
		badRequest(c, err)
		return
	}
	ctx := c.Request.Context()
	buyerID := userID(c)

	// 2. --- Load Listing & Buyer ---
	tx := models.Transaction{
		RefNumber:  uuid.NewString(),
		BuyerID:    buyerID,
		ListingID:  input.ListingID,
		EthAddress: input.EthAddress,
		Status:     models.TransactionPending,
	}
	var status models.ListingStatus
	query := `
		SELECT l.ref_number, l.owner_id, o.name, l.price, l.status, b.name
		FROM listings l
		JOIN users o ON o.id = l.owner_id
		JOIN users b ON b.id = ?
		WHERE l.id = ?`
	err := h.DB.QueryRowContext(ctx, query, buyerID, input.ListingID).
		Scan(&tx.ListingRef, &tx.OwnerID, &tx.OwnerName, &tx.ListedPrice, &status, &tx.BuyerName)
	if errors.Is(err, sql.ErrNoRows) {
		h.respondError(c, fmt.Errorf("listing %d: %w", input.ListingID, apperror.ErrNotFound))
		return
	}
	if err != nil {
		h.respondError(c, fmt.Errorf("load listing: %w", err))
		return
	}

	// 3. --- Business Rules ---
	if !status.Purchasable() {
		h.respondError(c, fmt.Errorf("%w: listing is not for sale", apperror.ErrConflict))
		return
	}
	if tx.OwnerID == buyerID {
		h.respondError(c, fmt.Errorf("%w: you cannot buy your own listing", apperror.ErrValidation))
		return
	}
	var pending bool
	err = h.DB.GetContext(ctx, &pending,
		"SELECT EXISTS(SELECT 1 FROM transactions WHERE buyer_id = ? AND listing_id = ? AND status = ?)",
		buyerID, input.ListingID, models.TransactionPending)
	if err != nil {
		h.respondError(c, fmt.Errorf("check pending purchase: %w", err))
		return
	}
	if pending {
		h.respondError(c, fmt.Errorf("%w: a purchase of this listing is already awaiting approval", apperror.ErrConflict))
		return
	}

	// 4. --- Store Receipt ---
	receipt, err := h.saveUpload(c, "receipt")
	if err != nil {
		h.respondError(c, err)
		return
	}
	tx.ReceiptImg = receipt

	// 5. --- Save Request ---
	insert := `
		INSERT INTO transactions
		(ref_number, buyer_id, buyer_name, owner_id, owner_name, listing_id, listing_ref, eth_address, listed_price, receipt_img, status)
		VALUES (:ref_number, :buyer_id, :buyer_name, :owner_id, :owner_name, :listing_id, :listing_ref, :eth_address, :listed_price, :receipt_img, :status)`
	res, err := h.DB.NamedExecContext(ctx, insert, tx)
	if err != nil {
		h.discardUpload(receipt)
		h.respondError(c, fmt.Errorf("save purchase: %w", err))
		return
	}
	if tx.ID, err = res.LastInsertId(); err != nil {
		h.respondError(c, fmt.Errorf("purchase id: %w", err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Purchase submitted and awaiting approval",
		"transaction": tx,
	})
}

const transactionColumns = `id, ref_number, buyer_id, buyer_name, owner_id, owner_name, listing_id, listing_ref,
	eth_address, listed_price, receipt_img, status, created_at, updated_at`

// GetMyPurchases is the handler for GET /v1/purchases
func (h *Handlers) GetMyPurchases(c *gin.Context) {
	txs := []models.Transaction{}
	query := "SELECT " + transactionColumns + " FROM transactions WHERE buyer_id = ? ORDER BY created_at DESC"
	if err := h.DB.SelectContext(c.Request.Context(), &txs, query, userID(c)); err != nil {
		h.respondError(c, fmt.Errorf("list purchases: %w", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": txs})
}
