package handler

import (
	"net/http"
	"strings"

	"whatsledger/internal/conversation"
	"whatsledger/internal/domain"

	"github.com/gin-gonic/gin"
)

// WebhookHandler accepts already-normalized messages: {from, text, messageId}.
type WebhookHandler struct {
	dispatch *Dispatcher
}

func NewWebhookHandler(dispatch *Dispatcher) *WebhookHandler {
	return &WebhookHandler{dispatch: dispatch}
}

type WebhookRequest struct {
	From      string `json:"from"`
	Text      string `json:"text"`
	MessageID string `json:"messageId"`
}

func (h *WebhookHandler) Receive(c *gin.Context) {
	var req WebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	req.From = strings.TrimSpace(req.From)
	if req.From == "" || strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Missing required fields",
			"message": `Both "from" and "text" fields are required`,
		})
		return
	}
	out, _, _ := h.dispatch.Dispatch(c.Request.Context(), conversation.Inbound{
		From:      req.From,
		Text:      req.Text,
		MessageID: req.MessageID,
		Provider:  domain.ProviderAPI,
	}, false)
	// FAILED still answers 200 with success=false and the apology.
	c.JSON(http.StatusOK, out)
}
