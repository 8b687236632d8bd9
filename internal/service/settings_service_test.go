package service

import (
	"context"
	"errors"
	"testing"

	"whatsledger/config"
	"whatsledger/internal/reply"
	"whatsledger/pkg/whatsapp"
)

type memSettings map[string]string

func (m memSettings) GetMany(keys []string) (map[string]string, error) {
	out := map[string]string{}
	for _, k := range keys {
		if v, ok := m[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func (m memSettings) SetMany(values map[string]string) error {
	for k, v := range values {
		m[k] = v
	}
	return nil
}

type recordingSender struct {
	to, message string
}

func (r *recordingSender) Name() string { return "recording" }

func (r *recordingSender) Send(_ context.Context, to, message string) (*whatsapp.SendResult, error) {
	r.to, r.message = to, message
	return &whatsapp.SendResult{Provider: r.Name(), MessageID: "m1"}, nil
}

func TestSettingsMaskAndOverride(t *testing.T) {
	cfg := config.WhatsAppConfig{
		Twilio: config.TwilioConfig{AccountSID: "AC1234567890abcdef", AuthToken: "short", PhoneNumber: "+14155238886"},
	}
	store := memSettings{}
	svc := NewSettingsService(cfg, store, &recordingSender{})

	if err := svc.SaveWhatsApp("twilio", map[string]string{"enabled": "TRUE", "auth_token": "tok_9876543210"}); err != nil {
		t.Fatal(err)
	}
	if store["whatsapp.twilio.enabled"] != "true" {
		t.Fatalf("stored enabled = %q", store["whatsapp.twilio.enabled"])
	}

	got, err := svc.WhatsApp()
	if err != nil {
		t.Fatal(err)
	}
	tw := got["twilio"]
	if tw["account_sid"] != "AC12**********cdef" {
		t.Errorf("account_sid = %v", tw["account_sid"])
	}
	if tw["auth_token"] != "tok_******3210" {
		t.Errorf("auth_token = %v", tw["auth_token"])
	}
	if tw["phone_number"] != "+14155238886" || tw["enabled"] != true {
		t.Errorf("twilio = %v", tw)
	}
	if got["active"]["next_start"] != "twilio" {
		t.Errorf("active = %v", got["active"])
	}
	if svc.cfg.Twilio.Enabled {
		t.Error("saved settings must not change the running config")
	}
}

func TestSaveWhatsAppRejectsUnknown(t *testing.T) {
	svc := NewSettingsService(config.WhatsAppConfig{}, memSettings{}, &recordingSender{})
	if err := svc.SaveWhatsApp("telegram", map[string]string{}); !errors.Is(err, ErrUnknownProvider) {
		t.Fatalf("err = %v", err)
	}
	if err := svc.SaveWhatsApp("meta", map[string]string{"password": "x"}); !errors.Is(err, ErrUnknownSetting) {
		t.Fatalf("err = %v", err)
	}
	if err := svc.SaveWhatsApp("meta", map[string]string{"enabled": "maybe"}); err == nil {
		t.Fatal("expected error for non-boolean enabled")
	}
}

func TestLoadWhatsAppOverrides(t *testing.T) {
	cfg := config.WhatsAppConfig{Botbiz: config.BotbizConfig{APIKey: "env-key"}}
	store := memSettings{
		"whatsapp.botbiz.api_key": "db-key",
		"whatsapp.botbiz.enabled": "true",
		"whatsapp.meta.enabled":   "not-a-bool",
	}
	if err := LoadWhatsAppOverrides(store, &cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Botbiz.APIKey != "db-key" || !cfg.Botbiz.Enabled || cfg.Meta.Enabled {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestSendTest(t *testing.T) {
	sender := &recordingSender{}
	svc := NewSettingsService(config.WhatsAppConfig{}, memSettings{}, sender)
	res, err := svc.SendTest(context.Background(), "+919812345678")
	if err != nil || res.MessageID != "m1" {
		t.Fatalf("SendTest = %+v, %v", res, err)
	}
	if sender.to != "+919812345678" || sender.message != reply.TestMessage {
		t.Fatalf("sent %q to %q", sender.message, sender.to)
	}
}
