package handlers

import (
	"fmt"
	"net/http"

	"github.com/01moynul/mintverse-golang/internal/ledger"
	"github.com/01moynul/mintverse-golang/internal/models"
	"github.com/01moynul/mintverse-golang/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//
// --- Wallet Deposits (main wallet and gas-fee wallet) ---
//

const maxMultipart = storage.MaxUploadBytes + 1<<20

// DepositInput is the multipart form for a main wallet deposit. The
// receipt image travels in the "receipt" file field.
type DepositInput struct {
	Amount     string `form:"amount" binding:"required,dmin=0.001,dscale=4"`
	EthAddress string `form:"ethAddress" binding:"required,eth_addr"`
}

// CreateDeposit is the handler for POST /v1/wallet/deposits
func (h *Handlers) CreateDeposit(c *gin.Context) {
	limitBody(c, maxMultipart)

	// 1. --- Bind & Validate Form ---
	var input DepositInput
	if err := c.ShouldBind(&input); err != nil {
		badRequest(c, err)
		return
	}
	amount := decimal.RequireFromString(input.Amount)

	// 2. --- Store Receipt ---
	receipt, err := h.saveUpload(c, "receipt")
	if err != nil {
		h.respondError(c, err)
		return
	}

	// 3. --- Save Request ---
	deposit := models.Deposit{
		RefNumber:  uuid.NewString(),
		UserID:     userID(c),
		EthAddress: input.EthAddress,
		Amount:     amount,
		Method:     "ethereum",
		ReceiptImg: receipt,
		Status:     models.RequestPending,
	}
	query := `
		INSERT INTO wallet_deposits (ref_number, user_id, eth_address, amount, method, receipt_img, status)
		VALUES (:ref_number, :user_id, :eth_address, :amount, :method, :receipt_img, :status)`
	res, err := h.DB.NamedExecContext(c.Request.Context(), query, deposit)
	if err != nil {
		h.discardUpload(receipt)
		h.respondError(c, fmt.Errorf("save deposit: %w", err))
		return
	}
	if deposit.ID, err = res.LastInsertId(); err != nil {
		h.respondError(c, fmt.Errorf("deposit id: %w", err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "Deposit submitted and awaiting approval",
		"deposit":    deposit,
		"receiptUrl": h.uploadURL(receipt),
	})
}

type GasDepositInput struct {
	Amount string `form:"amount" binding:"required,dmin=0.001,dscale=4"`
}

// CreateGasDeposit is the handler for POST /v1/wallet/gas-deposits
func (h *Handlers) CreateGasDeposit(c *gin.Context) {
	limitBody(c, maxMultipart)

	var input GasDepositInput
	if err := c.ShouldBind(&input); err != nil {
		badRequest(c, err)
		return
	}

	receipt, err := h.saveUpload(c, "receipt")
	if err != nil {
		h.respondError(c, err)
		return
	}

	deposit := models.GasFeeDeposit{
		RefNumber:  uuid.NewString(),
		UserID:     userID(c),
		Amount:     decimal.RequireFromString(input.Amount),
		ReceiptImg: receipt,
		Status:     models.RequestPending,
	}
	query := `
		INSERT INTO gas_fee_deposits (ref_number, user_id, amount, receipt_img, status)
		VALUES (:ref_number, :user_id, :amount, :receipt_img, :status)`
	res, err := h.DB.NamedExecContext(c.Request.Context(), query, deposit)
	if err != nil {
		h.discardUpload(receipt)
		h.respondError(c, fmt.Errorf("save gas fee deposit: %w", err))
		return
	}
	if deposit.ID, err = res.LastInsertId(); err != nil {
		h.respondError(c, fmt.Errorf("gas fee deposit id: %w", err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "Gas fee deposit submitted and awaiting approval",
		"deposit":    deposit,
		"receiptUrl": h.uploadURL(receipt),
	})
}

// GetMyDeposits is the handler for GET /v1/wallet/deposits
func (h *Handlers) GetMyDeposits(c *gin.Context) {
	deposits := []models.Deposit{}
	query := `
		SELECT id, ref_number, user_id, eth_address, amount, method, receipt_img, status, created_at, updated_at
		FROM wallet_deposits
		WHERE user_id = ?
		ORDER BY created_at DESC`
	if err := h.DB.SelectContext(c.Request.Context(), &deposits, query, userID(c)); err != nil {
		h.respondError(c, fmt.Errorf("list deposits: %w", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"deposits": deposits})
}

// GetMyGasDeposits is the handler for GET /v1/wallet/gas-deposits
func (h *Handlers) GetMyGasDeposits(c *gin.Context) {
	deposits := []models.GasFeeDeposit{}
	query := `
		SELECT id, ref_number, user_id, amount, receipt_img, status, created_at, updated_at
		FROM gas_fee_deposits
		WHERE user_id = ?
		ORDER BY created_at DESC`
	if err := h.DB.SelectContext(c.Request.Context(), &deposits, query, userID(c)); err != nil {
		h.respondError(c, fmt.Errorf("list gas fee deposits: %w", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"deposits": deposits})
}

//
// --- Ledger ---
//

// GetMyWallet is the handler for GET /v1/wallet. It returns both balances
// and the most recent journal entries.
func (h *Handlers) GetMyWallet(c *gin.Context) {
	h.writeLedger(c, userID(c))
}

func (h *Handlers) writeLedger(c *gin.Context, id int64) {
	ctx := c.Request.Context()
	l, err := ledger.Get(ctx, h.DB, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	entries, err := ledger.Entries(ctx, h.DB, id, 50)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ledger": l, "entries": entries})
}
