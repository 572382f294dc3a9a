package handlers

import (
	"fmt"
	"net/http"

	"github.com/01moynul/mintverse-golang/internal/apperror"
	"github.com/01moynul/mintverse-golang/internal/models"
	"github.com/gin-gonic/gin"
)

type ContactInput struct {
	Name    string `json:"name" binding:"required,max=100"`
	Email   string `json:"email" binding:"required,email,max=120"`
	Subject string `json:"subject" binding:"required,max=150"`
	Message string `json:"message" binding:"required,max=5000"`
}

// SubmitContact is the handler for POST /v1/contact (public).
func (h *Handlers) SubmitContact(c *gin.Context) {
	var input ContactInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	msg := models.ContactMessage{Name: input.Name, Email: input.Email, Subject: input.Subject, Message: input.Message}
	_, err := h.DB.NamedExecContext(c.Request.Context(), `
		INSERT INTO contact_messages (name, email, subject, message)
		VALUES (:name, :email, :subject, :message)`, msg)
	if err != nil {
		h.respondError(c, fmt.Errorf("save contact message: %w", err))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Thanks, we will get back to you soon"})
}

// GetContactMessages is the handler for GET /v1/admin/contact
func (h *Handlers) GetContactMessages(c *gin.Context) {
	limit, offset := page(c)
	messages := []models.ContactMessage{}
	query := `
		SELECT id, name, email, subject, message, created_at
		FROM contact_messages
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?`
	if err := h.DB.SelectContext(c.Request.Context(), &messages, query, limit, offset); err != nil {
		h.respondError(c, fmt.Errorf("list contact messages: %w", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// DeleteContactMessage is the handler for DELETE /v1/admin/contact/:id
func (h *Handlers) DeleteContactMessage(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	res, err := h.DB.ExecContext(c.Request.Context(), "DELETE FROM contact_messages WHERE id = ?", id)
	if err != nil {
		h.respondError(c, fmt.Errorf("delete contact message: %w", err))
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		h.respondError(c, fmt.Errorf("contact message %d: %w", id, apperror.ErrNotFound))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Message deleted"})
}

// BulkDeleteContactMessages is the handler for POST /v1/admin/contact/bulk-delete
func (h *Handlers) BulkDeleteContactMessages(c *gin.Context) {
	n, ok := h.bulkDelete(c, "contact_messages")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}
