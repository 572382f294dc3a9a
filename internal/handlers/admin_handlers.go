package handlers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/01moynul/mintverse-golang/internal/apperror"
	"github.com/01moynul/mintverse-golang/internal/approval"
	"github.com/01moynul/mintverse-golang/internal/ledger"
	"github.com/01moynul/mintverse-golang/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

//
// --- Admin: Approval Queues ---
//

// statusFilter turns ?status= into a WHERE fragment for the given alias.
// An unknown status is a 400, not an empty list.
func statusFilter[T ~string](c *gin.Context, alias string, parse func(string) (T, error)) (string, []any, error) {
	raw := c.Query("status")
	if raw == "" {
		return "", nil, nil
	}
	s, err := parse(raw)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", apperror.ErrValidation, err)
	}
	return " WHERE " + alias + ".status = ?", []any{s}, nil
}

// GetAllDeposits is the handler for GET /v1/admin/deposits?status=
func (h *Handlers) GetAllDeposits(c *gin.Context) {
	where, args, err := statusFilter(c, "r", models.ParseRequestStatus)
	if err != nil {
		h.respondError(c, err)
		return
	}
	deposits := []models.Deposit{}
	query := `
		SELECT r.id, r.ref_number, r.user_id, r.eth_address, r.amount, r.method, r.receipt_img,
		       r.status, r.created_at, r.updated_at, u.name AS user_name, u.email AS user_email
		FROM wallet_deposits r
		JOIN users u ON u.id = r.user_id` + where + `
		ORDER BY r.created_at ASC`
	if err := h.DB.SelectContext(c.Request.Context(), &deposits, query, args...); err != nil {
		h.respondError(c, fmt.Errorf("list deposits: %w", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"deposits": deposits})
}

// GetAllGasDeposits is the handler for GET /v1/admin/gas-deposits?status=
func (h *Handlers) GetAllGasDeposits(c *gin.Context) {
	where, args, err := statusFilter(c, "r", models.ParseRequestStatus)
	if err != nil {
		h.respondError(c, err)
		return
	}
	deposits := []models.GasFeeDeposit{}
	query := `
		SELECT r.id, r.ref_number, r.user_id, r.amount, r.receipt_img, r.status,
		       r.created_at, r.updated_at, u.name AS user_name, u.email AS user_email
		FROM gas_fee_deposits r
		JOIN users u ON u.id = r.user_id` + where + `
		ORDER BY r.created_at ASC`
	if err := h.DB.SelectContext(c.Request.Context(), &deposits, query, args...); err != nil {
		h.respondError(c, fmt.Errorf("list gas fee deposits: %w", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"deposits": deposits})
}

// GetAllWithdrawals is the handler for GET /v1/admin/withdrawals?status=
func (h *Handlers) GetAllWithdrawals(c *gin.Context) {
	where, args, err := statusFilter(c, "r", models.ParseRequestStatus)
	if err != nil {
		h.respondError(c, err)
		return
	}
	withdrawals := []models.Withdrawal{}
	query := `
		SELECT r.id, r.ref_number, r.user_id, r.eth_address, r.amount, r.status,
		       r.created_at, r.updated_at, u.name AS user_name, u.email AS user_email
		FROM withdrawals r
		JOIN users u ON u.id = r.user_id` + where + `
		ORDER BY r.created_at ASC`
	if err := h.DB.SelectContext(c.Request.Context(), &withdrawals, query, args...); err != nil {
		h.respondError(c, fmt.Errorf("list withdrawals: %w", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawals": withdrawals})
}

// GetAllTransactions is the handler for GET /v1/admin/transactions?status=
func (h *Handlers) GetAllTransactions(c *gin.Context) {
	where, args, err := statusFilter(c, "t", models.ParseTransactionStatus)
	if err != nil {
		h.respondError(c, err)
		return
	}
	txs := []models.Transaction{}
	query := "SELECT " + transactionColumns + " FROM transactions t" + where + " ORDER BY created_at ASC"
	if err := h.DB.SelectContext(c.Request.Context(), &txs, query, args...); err != nil {
		h.respondError(c, fmt.Errorf("list transactions: %w", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": txs})
}

// GetAllMintRequests is the handler for GET /v1/admin/mint-requests?status=
func (h *Handlers) GetAllMintRequests(c *gin.Context) {
	where, args, err := statusFilter(c, "m", models.ParseMintStatus)
	if err != nil {
		h.respondError(c, err)
		return
	}
	requests := []models.MintRequest{}
	query := `
		SELECT m.id, m.user_id, m.name, m.image, m.category, m.collection_name, m.price, m.description,
		       m.royalties, m.creator, m.status, m.listing_id, m.created_at, m.updated_at
		FROM mint_requests m` + where + `
		ORDER BY m.created_at ASC`
	if err := h.DB.SelectContext(c.Request.Context(), &requests, query, args...); err != nil {
		h.respondError(c, fmt.Errorf("list mint requests: %w", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"mintRequests": requests})
}

// GetAllOffers is the handler for GET /v1/admin/offers?status=
func (h *Handlers) GetAllOffers(c *gin.Context) {
	where, args, err := statusFilter(c, "o", models.ParseOfferStatus)
	if err != nil {
		h.respondError(c, err)
		return
	}
	offers := []models.Offer{}
	query := `
		SELECT o.id, o.listing_id, o.user_id, o.buyer_name, o.offered_price, o.status,
		       o.created_at, o.updated_at, l.name AS listing_name, l.image AS listing_image
		FROM offers o
		JOIN listings l ON l.id = o.listing_id` + where + `
		ORDER BY o.created_at ASC`
	if err := h.DB.SelectContext(c.Request.Context(), &offers, query, args...); err != nil {
		h.respondError(c, fmt.Errorf("list offers: %w", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"offers": offers})
}

//
// --- Admin: Decisions ---
//

type decisionFunc func(ctx context.Context, actor approval.Actor, id int64) error

// Decide adapts an approval operation to a PATCH /:id/<action> route.
func (h *Handlers) Decide(fn decisionFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c, "id")
		if err != nil {
			h.respondError(c, err)
			return
		}
		if err := fn(c.Request.Context(), actor(c), id); err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Decision applied", "id": id})
	}
}

// ApproveMint is the handler for PATCH /v1/admin/mint-requests/:id/approve
func (h *Handlers) ApproveMint(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	result, err := h.Approvals.ApproveMint(c.Request.Context(), actor(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Minting request approved", "listing": result})
}

//
// --- Admin: Users ---
//

// GetUsers is the handler for GET /v1/admin/users?page=
func (h *Handlers) GetUsers(c *gin.Context) {
	limit, offset := page(c)
	users := []models.User{}
	query := "SELECT " + userColumns + " FROM users ORDER BY id LIMIT ? OFFSET ?"
	if err := h.DB.SelectContext(c.Request.Context(), &users, query, limit, offset); err != nil {
		h.respondError(c, fmt.Errorf("list users: %w", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

type CreateUserInput struct {
	RegisterUserInput
	Role models.Role `json:"role" binding:"required,oneof=user admin"`
}

// CreateUser is the handler for POST /v1/admin/users. Accounts created by
// an administrator are considered verified.
func (h *Handlers) CreateUser(c *gin.Context) {
	var input CreateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	if err := models.ValidatePassword(input.Password); err != nil {
		badRequest(c, err)
		return
	}

	var password models.Password
	if err := password.Set(input.Password); err != nil {
		h.respondError(c, fmt.Errorf("hash password: %w", err))
		return
	}

	query := `
		INSERT INTO users (name, email, password_hash, role, eth_address, is_email_verified)
		VALUES (?, ?, ?, ?, ?, 1)`
	res, err := h.DB.ExecContext(c.Request.Context(), query,
		input.Name, input.Email, password.Hash, input.Role, optional(input.EthAddress))
	if isDuplicate(err) {
		h.respondError(c, fmt.Errorf("%w: an account with this email already exists", apperror.ErrConflict))
		return
	}
	if err != nil {
		h.respondError(c, fmt.Errorf("create user: %w", err))
		return
	}
	id, err := res.LastInsertId()
	if err != nil {
		h.respondError(c, fmt.Errorf("user id: %w", err))
		return
	}

	h.Log.WithFields(logrus.Fields{"admin": userID(c), "user": id, "role": input.Role}).Info("user created by admin")
	c.JSON(http.StatusCreated, gin.H{"message": "User created", "userId": id})
}

// DeleteUser is the handler for DELETE /v1/admin/users/:id. The ledger
// and every request of the user go with it (ON DELETE CASCADE).
func (h *Handlers) DeleteUser(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	if id == userID(c) {
		h.respondError(c, fmt.Errorf("%w: you cannot delete your own account", apperror.ErrValidation))
		return
	}

	res, err := h.DB.ExecContext(c.Request.Context(), "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		h.respondError(c, fmt.Errorf("delete user: %w", err))
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		h.respondError(c, fmt.Errorf("user %d: %w", id, apperror.ErrNotFound))
		return
	}

	h.Log.WithFields(logrus.Fields{"admin": userID(c), "user": id}).Info("user deleted by admin")
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}

//
// --- Admin: Ledgers ---
//

// GetUserLedger is the handler for GET /v1/admin/users/:id/ledger
func (h *Handlers) GetUserLedger(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.userExists(c, id); err != nil {
		h.respondError(c, err)
		return
	}
	h.writeLedger(c, id)
}

type AdjustLedgerInput struct {
	MainWalletBalance *decimal.Decimal `json:"mainWalletBalance" binding:"omitempty,dmin=0,dscale=4"`
	GasFeeBalance     *decimal.Decimal `json:"gasFeeBalance" binding:"omitempty,dmin=0,dscale=4"`
}

// AdjustUserLedger is the handler for PUT /v1/admin/users/:id/ledger.
// It sets balances to absolute values; the difference is journaled.
func (h *Handlers) AdjustUserLedger(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	var input AdjustLedgerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	ctx := c.Request.Context()

	// 1. --- Begin Transaction ---
	tx, err := h.DB.BeginTxx(ctx, nil)
	if err != nil {
		h.respondError(c, fmt.Errorf("begin transaction: %w", err))
		return
	}
	defer tx.Rollback()

	// 2. --- Check User ---
	var exists bool
	if err := tx.GetContext(ctx, &exists, "SELECT EXISTS(SELECT 1 FROM users WHERE id = ?)", id); err != nil {
		h.respondError(c, fmt.Errorf("check user: %w", err))
		return
	}
	if !exists {
		h.respondError(c, fmt.Errorf("user %d: %w", id, apperror.ErrNotFound))
		return
	}

	// 3. --- Adjust ---
	adj := ledger.Adjustment{Main: input.MainWalletBalance, Gas: input.GasFeeBalance}
	l, err := ledger.Adjust(ctx, tx, id, adj, fmt.Sprintf("admin-%d", userID(c)))
	if err != nil {
		h.respondError(c, err)
		return
	}

	// 4. --- Commit ---
	if err := tx.Commit(); err != nil {
		h.respondError(c, fmt.Errorf("commit: %w", err))
		return
	}

	h.Log.WithFields(logrus.Fields{"admin": userID(c), "user": id}).Info("ledger adjusted")
	c.JSON(http.StatusOK, gin.H{"ledger": l})
}

func (h *Handlers) userExists(c *gin.Context, id int64) error {
	var found int64
	err := h.DB.GetContext(c.Request.Context(), &found, "SELECT id FROM users WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("user %d: %w", id, apperror.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("check user: %w", err)
	}
	return nil
}
