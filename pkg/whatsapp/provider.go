package whatsapp

import (
	"log"

	"whatsledger/config"
)

// New returns the sender for the active provider in cfg.
func New(cfg config.WhatsAppConfig) Sender {
	switch cfg.ActiveProvider() {
	case "botbiz":
		return NewBotbizClient(cfg.Botbiz.BaseURL, cfg.Botbiz.APIKey, cfg.Botbiz.PhoneNumber)
	case "meta":
		return NewMetaSender(cfg.Meta.BaseURL, cfg.Meta.PhoneNumberID, cfg.Meta.AccessToken)
	case "twilio":
		return NewTwilioSender(cfg.Twilio.BaseURL, cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.PhoneNumber)
	case "dialog360":
		return NewDialog360Sender(cfg.Dialog360.BaseURL, cfg.Dialog360.APIKey)
	}
	log.Println("[whatsapp] no provider enabled, replies will only be logged")
	return LogSender{}
}
