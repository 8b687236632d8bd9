package whatsapp

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
)

const (
	DefaultMetaBaseURL    = "https://graph.facebook.com"
	DefaultMetaAPIVersion = "v17.0"
)

// MetaSender talks to the WhatsApp Cloud API. The access token is attached by an oauth2 transport.
type MetaSender struct {
	BaseURL       string
	APIVersion    string
	PhoneNumberID string
	client        *http.Client
}

func NewMetaSender(baseURL, phoneNumberID, accessToken string) *MetaSender {
	if baseURL == "" {
		baseURL = DefaultMetaBaseURL
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{Timeout: defaultTimeout})
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}))
	client.Timeout = defaultTimeout
	return &MetaSender{
		BaseURL:       baseURL,
		APIVersion:    DefaultMetaAPIVersion,
		PhoneNumberID: phoneNumberID,
		client:        client,
	}
}

func (m *MetaSender) Name() string { return "meta" }

func (m *MetaSender) Send(ctx context.Context, to, message string) (*SendResult, error) {
	endpoint := fmt.Sprintf("%s/%s/%s/messages", m.BaseURL, m.APIVersion, m.PhoneNumberID)
	var out cloudTextResp
	err := postJSON(ctx, m.client, m.Name(), endpoint, nil, cloudTextReq{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               StripPlus(to),
		Type:             "text",
		Text:             textBody{Body: message},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &SendResult{Provider: m.Name(), MessageID: out.firstID()}, nil
}
