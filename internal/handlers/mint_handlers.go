package handlers

import (
	"fmt"
	"net/http"

	"github.com/01moynul/mintverse-golang/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

//
// --- Minting Requests ---
//

// MintInput is the multipart form for a mint request. The artwork travels
// in the "image" file field.
type MintInput struct {
	Name           string `form:"name" binding:"required,max=100"`
	Category       string `form:"category" binding:"required,max=50"`
	CollectionName string `form:"collectionName" binding:"max=100"`
	Price          string `form:"price" binding:"required,dgt0,dscale=4"`
	Description    string `form:"description" binding:"max=2000"`
	Royalties      string `form:"royalties" binding:"omitempty,dmin=0,dmax=50,dscale=2"`
}

// CreateMintRequest is the handler for POST /v1/mint-requests.
// Nothing is charged here; the minting fee is taken from the gas-fee
// wallet when an administrator approves the request.
func (h *Handlers) CreateMintRequest(c *gin.Context) {
	limitBody(c, maxMultipart)

	// 1. --- Bind & Validate Form ---
	var input MintInput
	if err := c.ShouldBind(&input); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.checkCategory(c, input.Category); err != nil {
		h.respondError(c, err)
		return
	}
	ctx := c.Request.Context()
	id := userID(c)

	var creator string
	if err := h.DB.GetContext(ctx, &creator, "SELECT name FROM users WHERE id = ?", id); err != nil {
		h.respondError(c, fmt.Errorf("load creator: %w", err))
		return
	}

	// 2. --- Store Artwork ---
	image, err := h.saveUpload(c, "image")
	if err != nil {
		h.respondError(c, err)
		return
	}

	// 3. --- Save Request ---
	m := models.MintRequest{
		UserID:         id,
		Name:           input.Name,
		Image:          image,
		Category:       input.Category,
		CollectionName: optional(input.CollectionName),
		Price:          decimal.RequireFromString(input.Price),
		Description:    optional(input.Description),
		Royalties:      decimal.Zero,
		Creator:        creator,
		Status:         models.MintPending,
	}
	if input.Royalties != "" {
		m.Royalties = decimal.RequireFromString(input.Royalties)
	}

	query := `
		INSERT INTO mint_requests
		(user_id, name, image, category, collection_name, price, description, royalties, creator, status)
		VALUES (:user_id, :name, :image, :category, :collection_name, :price, :description, :royalties, :creator, :status)`
	res, err := h.DB.NamedExecContext(ctx, query, m)
	if err != nil {
		h.discardUpload(image)
		h.respondError(c, fmt.Errorf("save mint request: %w", err))
		return
	}
	if m.ID, err = res.LastInsertId(); err != nil {
		h.respondError(c, fmt.Errorf("mint request id: %w", err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Minting request submitted and awaiting approval",
		"mintRequest": m,
		"imageUrl":    h.uploadURL(image),
	})
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// GetMyMintRequests is the handler for GET /v1/mint-requests
func (h *Handlers) GetMyMintRequests(c *gin.Context) {
	requests := []models.MintRequest{}
	query := `
		SELECT id, user_id, name, image, category, collection_name, price, description,
		       royalties, creator, status, listing_id, created_at, updated_at
		FROM mint_requests
		WHERE user_id = ?
		ORDER BY created_at DESC`
	if err := h.DB.SelectContext(c.Request.Context(), &requests, query, userID(c)); err != nil {
		h.respondError(c, fmt.Errorf("list mint requests: %w", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"mintRequests": requests})
}

// GetMintingFee is the handler for GET /v1/minting-fee. The quote is
// indicative; the fee charged is fetched again at approval.
func (h *Handlers) GetMintingFee(c *gin.Context) {
	fee, err := h.Fees.MintingFee(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fee": fee, "currency": "ETH"})
}
