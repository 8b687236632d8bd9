package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"whatsledger/config"
	"whatsledger/internal/domain"
	"whatsledger/internal/reply"
	"whatsledger/pkg/whatsapp"
)

var (
	ErrUnknownProvider = errors.New("unknown whatsapp provider")
	ErrUnknownSetting  = errors.New("unknown setting")
)

type SettingStore interface {
	GetMany(keys []string) (map[string]string, error)
	SetMany(values map[string]string) error
}

type settingField struct {
	name   string
	secret bool
	str    func(*config.WhatsAppConfig) *string
	flag   func(*config.WhatsAppConfig) *bool
}

var whatsappProviders = []string{domain.ProviderBotbiz, domain.ProviderTwilio, domain.ProviderDialog360, domain.ProviderMeta}

var whatsappFields = map[string][]settingField{
	domain.ProviderBotbiz: {
		{name: "api_key", secret: true, str: func(c *config.WhatsAppConfig) *string { return &c.Botbiz.APIKey }},
		{name: "phone_number", str: func(c *config.WhatsAppConfig) *string { return &c.Botbiz.PhoneNumber }},
		{name: "verify_token", secret: true, str: func(c *config.WhatsAppConfig) *string { return &c.Botbiz.VerifyToken }},
		{name: "enabled", flag: func(c *config.WhatsAppConfig) *bool { return &c.Botbiz.Enabled }},
	},
	domain.ProviderTwilio: {
		{name: "account_sid", secret: true, str: func(c *config.WhatsAppConfig) *string { return &c.Twilio.AccountSID }},
		{name: "auth_token", secret: true, str: func(c *config.WhatsAppConfig) *string { return &c.Twilio.AuthToken }},
		{name: "phone_number", str: func(c *config.WhatsAppConfig) *string { return &c.Twilio.PhoneNumber }},
		{name: "enabled", flag: func(c *config.WhatsAppConfig) *bool { return &c.Twilio.Enabled }},
	},
	domain.ProviderDialog360: {
		{name: "api_key", secret: true, str: func(c *config.WhatsAppConfig) *string { return &c.Dialog360.APIKey }},
		{name: "phone_number_id", str: func(c *config.WhatsAppConfig) *string { return &c.Dialog360.PhoneNumberID }},
		{name: "enabled", flag: func(c *config.WhatsAppConfig) *bool { return &c.Dialog360.Enabled }},
	},
	domain.ProviderMeta: {
		{name: "app_id", secret: true, str: func(c *config.WhatsAppConfig) *string { return &c.Meta.AppID }},
		{name: "app_secret", secret: true, str: func(c *config.WhatsAppConfig) *string { return &c.Meta.AppSecret }},
		{name: "phone_number_id", str: func(c *config.WhatsAppConfig) *string { return &c.Meta.PhoneNumberID }},
		{name: "access_token", secret: true, str: func(c *config.WhatsAppConfig) *string { return &c.Meta.AccessToken }},
		{name: "verify_token", secret: true, str: func(c *config.WhatsAppConfig) *string { return &c.Meta.VerifyToken }},
		{name: "enabled", flag: func(c *config.WhatsAppConfig) *bool { return &c.Meta.Enabled }},
	},
}

func settingKey(provider, field string) string {
	return "whatsapp." + provider + "." + field
}

func whatsappKeys() []string {
	var keys []string
	for _, p := range whatsappProviders {
		for _, f := range whatsappFields[p] {
			keys = append(keys, settingKey(p, f.name))
		}
	}
	return keys
}

// ApplyWhatsAppOverrides copies stored settings over the environment configuration.
func ApplyWhatsAppOverrides(cfg *config.WhatsAppConfig, values map[string]string) {
	for _, p := range whatsappProviders {
		for _, f := range whatsappFields[p] {
			v, ok := values[settingKey(p, f.name)]
			if !ok {
				continue
			}
			if f.flag != nil {
				b, err := strconv.ParseBool(v)
				if err == nil {
					*f.flag(cfg) = b
				}
				continue
			}
			*f.str(cfg) = v
		}
	}
}

// LoadWhatsAppOverrides reads stored settings into cfg.
func LoadWhatsAppOverrides(store SettingStore, cfg *config.WhatsAppConfig) error {
	values, err := store.GetMany(whatsappKeys())
	if err != nil {
		return err
	}
	ApplyWhatsAppOverrides(cfg, values)
	return nil
}

// SettingsService manages WhatsApp provider credentials. Saved values take effect on the next start.
type SettingsService struct {
	cfg    config.WhatsAppConfig
	store  SettingStore
	sender whatsapp.Sender
}

func NewSettingsService(cfg config.WhatsAppConfig, store SettingStore, sender whatsapp.Sender) *SettingsService {
	return &SettingsService{cfg: cfg, store: store, sender: sender}
}

// WhatsApp returns the effective settings per provider with secrets masked.
func (s *SettingsService) WhatsApp() (map[string]map[string]interface{}, error) {
	cfg := s.cfg
	if err := LoadWhatsAppOverrides(s.store, &cfg); err != nil {
		return nil, err
	}
	out := make(map[string]map[string]interface{}, len(whatsappProviders)+1)
	for _, p := range whatsappProviders {
		m := make(map[string]interface{}, len(whatsappFields[p]))
		for _, f := range whatsappFields[p] {
			switch {
			case f.flag != nil:
				m[f.name] = *f.flag(&cfg)
			case f.secret:
				m[f.name] = whatsapp.Mask(*f.str(&cfg))
			default:
				m[f.name] = *f.str(&cfg)
			}
		}
		out[p] = m
	}
	out["active"] = map[string]interface{}{"provider": s.sender.Name(), "next_start": cfg.ActiveProvider()}
	return out, nil
}

// SaveWhatsApp stores the given fields for one provider. Unknown fields are rejected.
func (s *SettingsService) SaveWhatsApp(provider string, data map[string]string) error {
	fields, ok := whatsappFields[provider]
	if !ok {
		return ErrUnknownProvider
	}
	values := make(map[string]string, len(data))
	for k, v := range data {
		f, ok := findField(fields, k)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownSetting, k)
		}
		if f.flag != nil {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%s must be true or false", k)
			}
			v = strconv.FormatBool(b)
		}
		values[settingKey(provider, k)] = v
	}
	return s.store.SetMany(values)
}

func findField(fields []settingField, name string) (settingField, bool) {
	for _, f := range fields {
		if f.name == name {
			return f, true
		}
	}
	return settingField{}, false
}

// SendTest sends the fixed test message through the running sender.
func (s *SettingsService) SendTest(ctx context.Context, phone string) (*whatsapp.SendResult, error) {
	return s.sender.Send(ctx, phone, reply.TestMessage)
}
