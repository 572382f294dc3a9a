package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/01moynul/mintverse-golang/internal/apperror"
	"github.com/01moynul/mintverse-golang/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

//
// --- Public Catalog ---
//

const listingColumns = `id, ref_number, name, image, category, collection_name, price, description,
	royalties, views, status, creator, owner_id, buyer_id, buyer_name, created_at, updated_at`

// catalogStatuses are the statuses shown in the public catalog.
var catalogStatuses = []any{models.ListingAvailable, models.ListingListed}

// GetListings is the handler for GET /v1/listings?page=&category=
func (h *Handlers) GetListings(c *gin.Context) {
	h.listCatalog(c, c.Query("category"))
}

// GetListingsByCategory is the handler for GET /v1/categories/:slug/listings
func (h *Handlers) GetListingsByCategory(c *gin.Context) {
	var name string
	err := h.DB.GetContext(c.Request.Context(), &name, "SELECT name FROM categories WHERE slug = ?", c.Param("slug"))
	if errors.Is(err, sql.ErrNoRows) {
		h.respondError(c, fmt.Errorf("category: %w", apperror.ErrNotFound))
		return
	}
	if err != nil {
		h.respondError(c, fmt.Errorf("load category: %w", err))
		return
	}
	h.listCatalog(c, name)
}

func (h *Handlers) listCatalog(c *gin.Context, category string) {
	limit, offset := page(c)

	where := "status IN (?, ?)"
	args := append([]any{}, catalogStatuses...)
	if category != "" {
		where += " AND category = ?"
		args = append(args, category)
	}

	var total int64
	if err := h.DB.GetContext(c.Request.Context(), &total, "SELECT COUNT(*) FROM listings WHERE "+where, args...); err != nil {
		h.respondError(c, fmt.Errorf("count listings: %w", err))
		return
	}

	listings := []models.Listing{}
	query := "SELECT " + listingColumns + " FROM listings WHERE " + where + " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	if err := h.DB.SelectContext(c.Request.Context(), &listings, query, append(args, limit, offset)...); err != nil {
		h.respondError(c, fmt.Errorf("list listings: %w", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"listings": listings, "total": total, "pageSize": limit})
}

// GetListing is the handler for GET /v1/listings/:id
func (h *Handlers) GetListing(c *gin.Context) {
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
	c.JSON(http.StatusOK, gin.H{"listing": l})
}

func (h *Handlers) loadListing(c *gin.Context, id int64) (*models.Listing, error) {
	var l models.Listing
	err := h.DB.GetContext(c.Request.Context(), &l, "SELECT "+listingColumns+" FROM listings WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("listing %d: %w", id, apperror.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load listing %d: %w", id, err)
	}
	return &l, nil
}

type SearchInput struct {
	Query    string `form:"q" binding:"max=100"`
	MinPrice string `form:"minPrice" binding:"omitempty,dmin=0,dscale=4"`
	MaxPrice string `form:"maxPrice" binding:"omitempty,dmin=0,dscale=4"`
}

// SearchListings is the handler for GET /v1/listings/search
// It matches name, collection, category and description.
func (h *Handlers) SearchListings(c *gin.Context) {
	var input SearchInput
	if err := c.ShouldBindQuery(&input); err != nil {
		badRequest(c, err)
		return
	}
	limit, offset := page(c)

	where := []string{"status IN (?, ?)"}
	args := append([]any{}, catalogStatuses...)
	if q := strings.TrimSpace(input.Query); q != "" {
		like := "%" + escapeLike(q) + "%"
		where = append(where, "(name LIKE ? OR collection_name LIKE ? OR category LIKE ? OR description LIKE ?)")
		args = append(args, like, like, like, like)
	}
	if input.MinPrice != "" {
		where = append(where, "price >= ?")
		args = append(args, decimal.RequireFromString(input.MinPrice))
	}
	if input.MaxPrice != "" {
		where = append(where, "price <= ?")
		args = append(args, decimal.RequireFromString(input.MaxPrice))
	}

	listings := []models.Listing{}
	query := "SELECT " + listingColumns + " FROM listings WHERE " + strings.Join(where, " AND ") +
		" ORDER BY views DESC, created_at DESC LIMIT ? OFFSET ?"
	if err := h.DB.SelectContext(c.Request.Context(), &listings, query, append(args, limit, offset)...); err != nil {
		h.respondError(c, fmt.Errorf("search listings: %w", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"listings": listings})
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }

// GetTrending is the handler for GET /v1/listings/trending
func (h *Handlers) GetTrending(c *gin.Context) {
	listings := []models.Listing{}
	query := "SELECT " + listingColumns + " FROM listings WHERE status IN (?, ?) ORDER BY views DESC LIMIT ?"
	if err := h.DB.SelectContext(c.Request.Context(), &listings, query, catalogStatuses[0], catalogStatuses[1], pageSize); err != nil {
		h.respondError(c, fmt.Errorf("trending listings: %w", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"listings": listings})
}

// RecordView is the handler for POST /v1/listings/:id/view.
// Only the first view by a given user increments the counter.
func (h *Handlers) RecordView(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	ctx := c.Request.Context()

	tx, err := h.DB.BeginTxx(ctx, nil)
	if err != nil {
		h.respondError(c, fmt.Errorf("begin transaction: %w", err))
		return
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.GetContext(ctx, &exists, "SELECT EXISTS(SELECT 1 FROM listings WHERE id = ?)", id); err != nil {
		h.respondError(c, fmt.Errorf("load listing: %w", err))
		return
	}
	if !exists {
		h.respondError(c, fmt.Errorf("listing %d: %w", id, apperror.ErrNotFound))
		return
	}

	res, err := tx.ExecContext(ctx, "INSERT IGNORE INTO listing_views (listing_id, user_id) VALUES (?, ?)", id, userID(c))
	if err != nil {
		h.respondError(c, fmt.Errorf("record view: %w", err))
		return
	}
	n, err := res.RowsAffected()
	if err != nil {
		h.respondError(c, err)
		return
	}
	if n == 1 {
		if _, err := tx.ExecContext(ctx, "UPDATE listings SET views = views + 1 WHERE id = ?", id); err != nil {
			h.respondError(c, fmt.Errorf("count view: %w", err))
			return
		}
	}

	if err := tx.Commit(); err != nil {
		h.respondError(c, fmt.Errorf("commit: %w", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"counted": n == 1})
}

// GetMyCollections is the handler for GET /v1/me/collections. Owned are
// the user's unsold listings, bought are purchases approved for them.
func (h *Handlers) GetMyCollections(c *gin.Context) {
	ctx := c.Request.Context()
	id := userID(c)

	owned := []models.Listing{}
	query := "SELECT " + listingColumns + " FROM listings WHERE owner_id = ? AND status <> ? ORDER BY created_at DESC"
	if err := h.DB.SelectContext(ctx, &owned, query, id, models.ListingSold); err != nil {
		h.respondError(c, fmt.Errorf("owned listings: %w", err))
		return
	}

	bought := []models.Listing{}
	query = "SELECT " + listingColumns + " FROM listings WHERE buyer_id = ? ORDER BY updated_at DESC"
	if err := h.DB.SelectContext(ctx, &bought, query, id); err != nil {
		h.respondError(c, fmt.Errorf("bought listings: %w", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"owned": owned, "bought": bought})
}

//
// --- Admin: Listing Maintenance ---
//

type UpdateListingInput struct {
	Price       *decimal.Decimal `json:"price" binding:"omitempty,dgt0,dscale=4"`
	Description *string          `json:"description" binding:"omitempty,max=2000"`
	Category    *string          `json:"category" binding:"omitempty,max=50"`
}

// UpdateListing is the handler for PATCH /v1/admin/listings/:id
func (h *Handlers) UpdateListing(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	var input UpdateListingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	if input.Category != nil {
		if err := h.checkCategory(c, *input.Category); err != nil {
			h.respondError(c, err)
			return
		}
	}

	query := `
		UPDATE listings SET
			price = COALESCE(?, price),
			description = COALESCE(?, description),
			category = COALESCE(?, category)
		WHERE id = ?`
	res, err := h.DB.ExecContext(c.Request.Context(), query, input.Price, input.Description, input.Category, id)
	if err != nil {
		h.respondError(c, fmt.Errorf("update listing: %w", err))
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		h.respondError(c, fmt.Errorf("listing %d: %w", id, apperror.ErrNotFound))
		return
	}
	h.GetListing(c)
}

// DeleteListing is the handler for DELETE /v1/admin/listings/:id
func (h *Handlers) DeleteListing(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	res, err := h.DB.ExecContext(c.Request.Context(), "DELETE FROM listings WHERE id = ?", id)
	if err != nil {
		h.respondError(c, fmt.Errorf("delete listing: %w", err))
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		h.respondError(c, fmt.Errorf("listing %d: %w", id, apperror.ErrNotFound))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Listing deleted"})
}

type BulkDeleteInput struct {
	IDs []int64 `json:"ids" binding:"required,min=1,max=500,dive,gt=0"`
}

// BulkDeleteListings is the handler for POST /v1/admin/listings/bulk-delete
func (h *Handlers) BulkDeleteListings(c *gin.Context) {
	n, ok := h.bulkDelete(c, "listings")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}

// bulkDelete deletes the posted ids from table and reports how many rows
// went away. table is always a constant chosen by the caller.
func (h *Handlers) bulkDelete(c *gin.Context, table string) (int64, bool) {
	var input BulkDeleteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return 0, false
	}

	query, args, err := sqlx.In("DELETE FROM "+table+" WHERE id IN (?)", input.IDs)
	if err != nil {
		h.respondError(c, err)
		return 0, false
	}
	res, err := h.DB.ExecContext(c.Request.Context(), h.DB.Rebind(query), args...)
	if err != nil {
		h.respondError(c, fmt.Errorf("bulk delete %s: %w", table, err))
		return 0, false
	}
	n, _ := res.RowsAffected()
	return n, true
}
