package whatsapp

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

const DefaultTwilioBaseURL = "https://api.twilio.com"

// TwilioSender uses the Twilio Messages API with whatsapp: addressed numbers.
type TwilioSender struct {
	BaseURL     string
	AccountSID  string
	AuthToken   string
	PhoneNumber string
	client      *http.Client
}

func NewTwilioSender(baseURL, accountSID, authToken, phoneNumber string) *TwilioSender {
	if baseURL == "" {
		baseURL = DefaultTwilioBaseURL
	}
	return &TwilioSender{
		BaseURL:     baseURL,
		AccountSID:  accountSID,
		AuthToken:   authToken,
		PhoneNumber: phoneNumber,
		client:      &http.Client{Timeout: defaultTimeout},
	}
}

func (t *TwilioSender) Name() string { return "twilio" }

func (t *TwilioSender) Send(ctx context.Context, to, message string) (*SendResult, error) {
	form := url.Values{}
	form.Set("From", "whatsapp:"+WithPlus(t.PhoneNumber))
	form.Set("To", "whatsapp:"+WithPlus(to))
	form.Set("Body", message)
	endpoint := t.BaseURL + "/2010-04-01/Accounts/" + url.PathEscape(t.AccountSID) + "/Messages.json"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(t.AccountSID, t.AuthToken)
	var out struct {
		SID string `json:"sid"`
	}
	if err := do(t.client, t.Name(), req, &out); err != nil {
		return nil, err
	}
	return &SendResult{Provider: t.Name(), MessageID: out.SID}, nil
}
