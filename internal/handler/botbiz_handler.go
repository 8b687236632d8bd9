package handler

import (
	"log"
	"net/http"
	"strconv"

	"whatsledger/config"
	"whatsledger/internal/conversation"
	"whatsledger/internal/domain"

	"github.com/gin-gonic/gin"
)

type botbizPayload struct {
	Messages []struct {
		ID        string `json:"id"`
		From      string `json:"from"`
		Timestamp string `json:"timestamp"`
		Text      *struct {
			Body string `json:"body"`
		} `json:"text"`
	} `json:"messages"`
}

type botbizResult struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Response  string `json:"response,omitempty"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
}

// BotbizHandler receives BotBiz webhook deliveries, authenticated by ?token=.
type BotbizHandler struct {
	cfg      *config.BotbizConfig
	dispatch *Dispatcher
}

func NewBotbizHandler(cfg *config.BotbizConfig, dispatch *Dispatcher) *BotbizHandler {
	return &BotbizHandler{cfg: cfg, dispatch: dispatch}
}

func (h *BotbizHandler) tokenOK(c *gin.Context) bool {
	return h.cfg.VerifyToken != "" && c.Query("token") == h.cfg.VerifyToken
}

func (h *BotbizHandler) Verify(c *gin.Context) {
	if !h.tokenOK(c) {
		log.Println("[botbiz] webhook verification failed")
		c.String(http.StatusForbidden, "Invalid verification token")
		return
	}
	c.String(http.StatusOK, "Webhook verified")
}

func (h *BotbizHandler) Receive(c *gin.Context) {
	if !h.tokenOK(c) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid verification token"})
		return
	}
	var payload botbizPayload
	if err := c.ShouldBindJSON(&payload); err != nil || len(payload.Messages) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "No messages to process",
			"data":    gin.H{"processed": 0, "messages": []botbizResult{}},
		})
		return
	}

	processed := 0
	results := make([]botbizResult, 0, len(payload.Messages))
	for _, m := range payload.Messages {
		if m.From == "" || m.Text == nil || m.Text.Body == "" {
			log.Printf("[botbiz] skipping message %s without sender or text", m.ID)
			continue
		}
		out, sent, err := h.dispatch.Dispatch(c.Request.Context(), conversation.Inbound{
			From:      m.From,
			Text:      m.Text.Body,
			MessageID: m.ID,
			Provider:  domain.ProviderBotbiz,
		}, false)
		switch {
		case err != nil:
			results = append(results, botbizResult{ID: m.ID, Status: "error", Error: "Failed to send response"})
		case out.Duplicate:
			results = append(results, botbizResult{ID: m.ID, Status: "duplicate"})
		default:
			processed++
			r := botbizResult{ID: m.ID, Status: "success", Response: out.Message}
			if sent != nil {
				r.MessageID = sent.MessageID
			}
			results = append(results, r)
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Processed " + strconv.Itoa(processed) + " messages",
		"data":    gin.H{"processed": processed, "messages": results},
	})
}
