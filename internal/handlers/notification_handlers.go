package handlers

import (
	"fmt"
	"net/http"

	"github.com/01moynul/mintverse-golang/internal/apperror"
	"github.com/01moynul/mintverse-golang/internal/notification"
	"github.com/gin-gonic/gin"
)

//
// --- Notification Handlers ---
//

// GetMyNotifications is the handler for GET /v1/notifications
// It retrieves the logged-in user's notifications, unread and newest first.
func (h *Handlers) GetMyNotifications(c *gin.Context) {
	list, err := notification.List(c.Request.Context(), h.DB, userID(c), 50)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": list})
}

// MarkNotificationAsRead is the handler for PATCH /v1/notifications/:id/read
func (h *Handlers) MarkNotificationAsRead(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}

	ok, err := notification.MarkRead(c.Request.Context(), h.DB, userID(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !ok {
		h.respondError(c, fmt.Errorf("notification %d: %w", id, apperror.ErrNotFound))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}
