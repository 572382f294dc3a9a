package handlers

import (
	"fmt"
	"net/http"

	"github.com/01moynul/mintverse-golang/internal/apperror"
	"github.com/01moynul/mintverse-golang/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

//
// --- Offer Handlers ---
//

// GetOfferRange is the handler for GET /v1/listings/:id/offer-range
func (h *Handlers) GetOfferRange(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	l, err := h.loadListing(c, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	min, max := models.OfferRange(l.Price)
	c.JSON(http.StatusOK, gin.H{"listingId": id, "min": min, "max": max})
}

type OfferInput struct {
	ListingID    int64           `json:"listingId" binding:"required,gt=0"`
	OfferedPrice decimal.Decimal `json:"offeredPrice" binding:"dgt0,dscale=4"`
}

// CreateOffer is the handler for POST /v1/offers
func (h *Handlers) CreateOffer(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input OfferInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	ctx := c.Request.Context()
	id := userID(c)

	// 2. --- Check Listing ---
	l, err := h.loadListing(c, input.ListingID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !l.Status.Purchasable() {
		h.respondError(c, fmt.Errorf("%w: listing is not for sale", apperror.ErrConflict))
		return
	}
	if l.OwnerID == id {
		h.respondError(c, fmt.Errorf("%w: you cannot make an offer on your own listing", apperror.ErrValidation))
		return
	}

	// 3. --- Check Range ---
	min, max := models.OfferRange(l.Price)
	if input.OfferedPrice.LessThan(min) || input.OfferedPrice.GreaterThan(max) {
		h.respondError(c, fmt.Errorf("%w: offer must be between %s and %s ETH",
			apperror.ErrValidation, min.StringFixed(4), max.StringFixed(4)))
		return
	}

	// 4. --- Save Offer ---
	var buyerName string
	if err := h.DB.GetContext(ctx, &buyerName, "SELECT name FROM users WHERE id = ?", id); err != nil {
		h.respondError(c, fmt.Errorf("load buyer: %w", err))
		return
	}
	offer := models.Offer{
		ListingID:    l.ID,
		UserID:       id,
		BuyerName:    buyerName,
		OfferedPrice: input.OfferedPrice,
		Status:       models.OfferPending,
		ListingName:  l.Name,
	}
	query := `
		INSERT INTO offers (listing_id, user_id, buyer_name, offered_price, status)
		VALUES (:listing_id, :user_id, :buyer_name, :offered_price, :status)`
	res, err := h.DB.NamedExecContext(ctx, query, offer)
	if err != nil {
		h.respondError(c, fmt.Errorf("save offer: %w", err))
		return
	}
	if offer.ID, err = res.LastInsertId(); err != nil {
		h.respondError(c, fmt.Errorf("offer id: %w", err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Offer submitted", "offer": offer})
}

// GetMyOffers is the handler for GET /v1/offers
func (h *Handlers) GetMyOffers(c *gin.Context) {
	offers := []models.Offer{}
	query := `
		SELECT o.id, o.listing_id, o.user_id, o.buyer_name, o.offered_price, o.status,
		       o.created_at, o.updated_at, l.name AS listing_name, l.image AS listing_image
		FROM offers o
		JOIN listings l ON l.id = o.listing_id
		WHERE o.user_id = ?
		ORDER BY o.created_at DESC`
	if err := h.DB.SelectContext(c.Request.Context(), &offers, query, userID(c)); err != nil {
		h.respondError(c, fmt.Errorf("list offers: %w", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"offers": offers})
}
