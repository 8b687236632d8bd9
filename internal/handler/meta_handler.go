package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"whatsledger/config"
	"whatsledger/internal/conversation"
	"whatsledger/internal/domain"
	"whatsledger/pkg/whatsapp"

	"github.com/gin-gonic/gin"
)

const metaObject = "whatsapp_business_account"

type metaPayload struct {
	Object string `json:"object"`
	Entry  []struct {
		ID      string `json:"id"`
		Changes []struct {
			Field string `json:"field"`
			Value struct {
				Messages []cloudMessage `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

// MetaHandler serves the WhatsApp Cloud API webhook.
type MetaHandler struct {
	cfg      *config.MetaConfig
	dispatch *Dispatcher
}

func NewMetaHandler(cfg *config.MetaConfig, dispatch *Dispatcher) *MetaHandler {
	return &MetaHandler{cfg: cfg, dispatch: dispatch}
}

// Verify answers the hub.challenge subscription handshake.
func (h *MetaHandler) Verify(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	if mode == "" || token == "" {
		c.Status(http.StatusOK)
		return
	}
	if mode == "subscribe" && h.cfg.VerifyToken != "" && token == h.cfg.VerifyToken {
		log.Println("[meta] webhook verified")
		c.String(http.StatusOK, c.Query("hub.challenge"))
		return
	}
	c.Status(http.StatusForbidden)
}

func (h *MetaHandler) Receive(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.String(http.StatusOK, "EVENT_RECEIVED")
		return
	}
	if h.cfg.AppSecret != "" && !validSignature(h.cfg.AppSecret, c.GetHeader("X-Hub-Signature-256"), body) {
		log.Println("[meta] rejected webhook with bad signature")
		c.Status(http.StatusForbidden)
		return
	}
	var payload metaPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Printf("[meta] bad payload: %v", err)
		c.String(http.StatusOK, "EVENT_RECEIVED")
		return
	}
	if payload.Object != metaObject {
		log.Printf("[meta] ignoring object %q", payload.Object)
		c.String(http.StatusOK, "EVENT_RECEIVED")
		return
	}
	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			if change.Field != "messages" {
				continue
			}
			for _, m := range change.Value.Messages {
				text, ok := m.body()
				if !ok {
					log.Printf("[meta] skipping non-text message type=%s", m.Type)
					continue
				}
				h.dispatch.Dispatch(c.Request.Context(), conversation.Inbound{
					From:      whatsapp.DigitsOnly(m.From),
					Text:      text,
					MessageID: m.ID,
					Provider:  domain.ProviderMeta,
				}, true)
			}
		}
	}
	c.String(http.StatusOK, "EVENT_RECEIVED")
}

// validSignature checks an "sha256=<hex>" HMAC of body.
func validSignature(secret, header string, body []byte) bool {
	sig, ok := strings.CutPrefix(header, "sha256=")
	if !ok {
		return false
	}
	got, err := hex.DecodeString(sig)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(got, mac.Sum(nil))
}
