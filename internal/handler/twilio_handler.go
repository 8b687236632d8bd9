package handler

import (
	"encoding/xml"
	"log"
	"net/http"
	"strings"

	"whatsledger/internal/conversation"
	"whatsledger/internal/domain"
	"whatsledger/internal/reply"
	"whatsledger/pkg/whatsapp"

	"github.com/gin-gonic/gin"
)

const noSenderReply = "Error: No sender phone number"

type twiml struct {
	XMLName xml.Name `xml:"Response"`
	Message string   `xml:"Message,omitempty"`
}

// TwilioHandler answers inbound Twilio messages inline with TwiML.
type TwilioHandler struct {
	dispatch *Dispatcher
}

func NewTwilioHandler(dispatch *Dispatcher) *TwilioHandler {
	return &TwilioHandler{dispatch: dispatch}
}

func (h *TwilioHandler) Receive(c *gin.Context) {
	from := whatsapp.StripPlus(strings.TrimPrefix(c.PostForm("From"), "whatsapp:"))
	if from == "" {
		log.Println("[twilio] message without sender")
		writeTwiML(c, noSenderReply)
		return
	}
	out := h.dispatch.Handle(c.Request.Context(), conversation.Inbound{
		From:      whatsapp.WithPlus(from),
		Text:      c.PostForm("Body"),
		MessageID: c.PostForm("MessageSid"),
		Provider:  domain.ProviderTwilio,
	})
	switch {
	case out.Duplicate:
		writeTwiML(c, "")
	case out.Failed():
		writeTwiML(c, reply.ProviderFallback)
	default:
		writeTwiML(c, out.Message)
	}
}

func writeTwiML(c *gin.Context, message string) {
	body, err := xml.Marshal(twiml{Message: message})
	if err != nil {
		body = []byte("<Response></Response>")
	}
	c.Data(http.StatusOK, "text/xml; charset=utf-8", append([]byte(xml.Header), body...))
}
