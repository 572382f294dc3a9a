package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type ChatInput struct {
	Message string `json:"message" binding:"required,max=2000"`
}

// ChatAI is the handler for POST /v1/admin/ai/chat
func (h *Handlers) ChatAI(c *gin.Context) {
	if h.AIService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "AI assistant is not configured"})
		return
	}

	var input ChatInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	answer, tokens, err := h.AIService.GenerateResponse(c.Request.Context(), input.Message)
	if err != nil {
		h.Log.WithError(err).Warn("assistant request failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "AI service unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"response": answer, "tokensUsed": tokens})
}
