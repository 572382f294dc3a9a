package handlers

import (
	"fmt"
	"net/http"

	"github.com/01moynul/mintverse-golang/internal/apperror"
	"github.com/01moynul/mintverse-golang/internal/ledger"
	"github.com/01moynul/mintverse-golang/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//
// --- Withdrawal Handlers ---
//

type WithdrawalInput struct {
	Amount     decimal.Decimal `json:"amount" binding:"dmin=0.001,dscale=4"`
	EthAddress string          `json:"ethAddress" binding:"required,eth_addr"`
}

// CreateWithdrawal is the handler for POST /v1/wallet/withdrawals.
// The balance is checked here but only deducted when an administrator
// approves the request.
func (h *Handlers) CreateWithdrawal(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input WithdrawalInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	ctx := c.Request.Context()
	id := userID(c)

	// 2. --- Check Balance ---
	l, err := ledger.Get(ctx, h.DB, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if l.MainWalletBalance.LessThan(input.Amount) {
		h.respondError(c, fmt.Errorf("%w: main wallet holds %s ETH", apperror.ErrInsufficientFunds, l.MainWalletBalance.StringFixed(4)))
		return
	}

	// 3. --- Save Request ---
	w := models.Withdrawal{
		RefNumber:  uuid.NewString(),
		UserID:     id,
		EthAddress: input.EthAddress,
		Amount:     input.Amount,
		Status:     models.RequestPending,
	}
	query := `
		INSERT INTO withdrawals (ref_number, user_id, eth_address, amount, status)
		VALUES (:ref_number, :user_id, :eth_address, :amount, :status)`
	res, err := h.DB.NamedExecContext(ctx, query, w)
	if err != nil {
		h.respondError(c, fmt.Errorf("save withdrawal: %w", err))
		return
	}
	if w.ID, err = res.LastInsertId(); err != nil {
		h.respondError(c, fmt.Errorf("withdrawal id: %w", err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "Withdrawal requested and awaiting approval",
		"withdrawal": w,
	})
}

// GetMyWithdrawals is the handler for GET /v1/wallet/withdrawals
func (h *Handlers) GetMyWithdrawals(c *gin.Context) {
	withdrawals := []models.Withdrawal{}
	query := `
		SELECT id, ref_number, user_id, eth_address, amount, status, created_at, updated_at
		FROM withdrawals
		WHERE user_id = ?
		ORDER BY created_at DESC`
	if err := h.DB.SelectContext(c.Request.Context(), &withdrawals, query, userID(c)); err != nil {
		h.respondError(c, fmt.Errorf("list withdrawals: %w", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawals": withdrawals})
}
