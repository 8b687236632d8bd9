package handler

import (
	"log"
	"net/http"
	"strings"

	"whatsledger/internal/conversation"
	"whatsledger/internal/domain"

	"github.com/gin-gonic/gin"
)

type dialog360Payload struct {
	Messages []cloudMessage `json:"messages"`
}

// cloudMessage is the message shape shared by 360dialog and the Meta Cloud API.
type cloudMessage struct {
	ID        string `json:"id"`
	From      string `json:"from"`
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
	Text      *struct {
		Body string `json:"body"`
	} `json:"text"`
}

func (m cloudMessage) body() (string, bool) {
	if m.Type != "text" || m.Text == nil || strings.TrimSpace(m.Text.Body) == "" {
		return "", false
	}
	return m.Text.Body, true
}

// Dialog360Handler processes 360dialog webhooks. It always answers 200.
type Dialog360Handler struct {
	dispatch *Dispatcher
}

func NewDialog360Handler(dispatch *Dispatcher) *Dialog360Handler {
	return &Dialog360Handler{dispatch: dispatch}
}

func (h *Dialog360Handler) Receive(c *gin.Context) {
	var payload dialog360Payload
	if err := c.ShouldBindJSON(&payload); err != nil {
		log.Printf("[360dialog] bad payload: %v", err)
		c.Status(http.StatusOK)
		return
	}
	for _, m := range payload.Messages {
		text, ok := m.body()
		if !ok {
			log.Printf("[360dialog] skipping non-text message type=%s", m.Type)
			continue
		}
		from, _, _ := strings.Cut(m.From, "@")
		h.dispatch.Dispatch(c.Request.Context(), conversation.Inbound{
			From:      from,
			Text:      text,
			MessageID: m.ID,
			Provider:  domain.ProviderDialog360,
		}, true)
	}
	c.Status(http.StatusOK)
}
