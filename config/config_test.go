package config

import (
	"testing"
	"time"
)

func TestActiveProviderPrecedence(t *testing.T) {
	tests := []struct {
		name string
		cfg  WhatsAppConfig
		want string
	}{
		{"none enabled", WhatsAppConfig{}, "log"},
		{"dialog360 only", WhatsAppConfig{Dialog360: Dialog360Config{Enabled: true}}, "dialog360"},
		{"twilio beats dialog360", WhatsAppConfig{Twilio: TwilioConfig{Enabled: true}, Dialog360: Dialog360Config{Enabled: true}}, "twilio"},
		{"meta beats twilio", WhatsAppConfig{Meta: MetaConfig{Enabled: true}, Twilio: TwilioConfig{Enabled: true}}, "meta"},
		{"botbiz beats all", WhatsAppConfig{Botbiz: BotbizConfig{Enabled: true}, Meta: MetaConfig{Enabled: true}}, "botbiz"},
	}
	for _, tt := range tests {
		if got := tt.cfg.ActiveProvider(); got != tt.want {
			t.Errorf("%s: ActiveProvider() = %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("BOTBIZ_ENABLED", "TRUE")
	t.Setenv("BOTBIZ_POLLING_INTERVAL", "2500")
	t.Setenv("JWT_EXPIRY_HOURS", "not-a-number")

	cfg := Load()
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("driver = %s", cfg.Database.Driver)
	}
	if !cfg.WhatsApp.Botbiz.Enabled {
		t.Error("botbiz should be enabled")
	}
	if cfg.WhatsApp.Botbiz.PollingInterval != 2500*time.Millisecond {
		t.Errorf("polling interval = %s", cfg.WhatsApp.Botbiz.PollingInterval)
	}
	if cfg.JWT.AccessExpiry != 24*time.Hour {
		t.Errorf("jwt expiry = %s, want default", cfg.JWT.AccessExpiry)
	}
}
