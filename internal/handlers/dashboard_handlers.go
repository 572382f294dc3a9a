package handlers

import (
	"net/http"

	"github.com/01moynul/mintverse-golang/internal/ledger"
	"github.com/gin-gonic/gin"
)

// GetDashboard is the handler for GET /v1/me/dashboard
func (h *Handlers) GetDashboard(c *gin.Context) {
	ctx := c.Request.Context()
	id := userID(c)

	// 1. --- Balances ---
	l, err := ledger.Get(ctx, h.DB, id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	// 2. --- Counts ---
	summary, err := h.Stats.UserSummary(ctx, id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ledger":  l,
		"summary": summary,
	})
}

// GetAdminStats is the handler for GET /v1/admin/stats
func (h *Handlers) GetAdminStats(c *gin.Context) {
	overview, err := h.Stats.Overview(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}
