package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/01moynul/mintverse-golang/internal/apperror"
	"github.com/01moynul/mintverse-golang/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
)

//
// --- Category Handlers ---
//

type CreateCategoryInput struct {
	Name string `json:"name" binding:"required,min=2,max=50"`
}

// CreateCategory is the handler for POST /v1/admin/categories
func (h *Handlers) CreateCategory(c *gin.Context) {
	var input CreateCategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	category := models.Category{Name: input.Name, Slug: slug.Make(input.Name)}
	if category.Slug == "" {
		badRequest(c, errors.New("category name must contain letters or digits"))
		return
	}

	res, err := h.DB.NamedExecContext(c.Request.Context(),
		"INSERT INTO categories (name, slug) VALUES (:name, :slug)", category)
	if isDuplicate(err) {
		h.respondError(c, fmt.Errorf("%w: category %q already exists", apperror.ErrConflict, input.Name))
		return
	}
	if err != nil {
		h.respondError(c, fmt.Errorf("create category: %w", err))
		return
	}
	if category.ID, err = res.LastInsertId(); err != nil {
		h.respondError(c, fmt.Errorf("category id: %w", err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{"category": category})
}

// GetAllCategories is the handler for GET /v1/categories
func (h *Handlers) GetAllCategories(c *gin.Context) {
	categories := []models.Category{}
	if err := h.DB.SelectContext(c.Request.Context(), &categories,
		"SELECT id, name, slug, created_at FROM categories ORDER BY name"); err != nil {
		h.respondError(c, fmt.Errorf("list categories: %w", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// checkCategory rejects a category name that was never created.
func (h *Handlers) checkCategory(c *gin.Context, name string) error {
	var id int64
	err := h.DB.GetContext(c.Request.Context(), &id, "SELECT id FROM categories WHERE name = ?", name)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: unknown category %q", apperror.ErrValidation, name)
	}
	if err != nil {
		return fmt.Errorf("check category: %w", err)
	}
	return nil
}
