package whatsapp

import (
	"context"
	"net/http"
)

const DefaultDialog360BaseURL = "https://waba.360dialog.io"

type Dialog360Sender struct {
	BaseURL string
	APIKey  string
	client  *http.Client
}

func NewDialog360Sender(baseURL, apiKey string) *Dialog360Sender {
	if baseURL == "" {
		baseURL = DefaultDialog360BaseURL
	}
	return &Dialog360Sender{BaseURL: baseURL, APIKey: apiKey, client: &http.Client{Timeout: defaultTimeout}}
}

func (d *Dialog360Sender) Name() string { return "dialog360" }

type cloudTextReq struct {
	MessagingProduct string   `json:"messaging_product,omitempty"`
	RecipientType    string   `json:"recipient_type"`
	To               string   `json:"to"`
	Type             string   `json:"type"`
	Text             textBody `json:"text"`
}

type cloudTextResp struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

func (r cloudTextResp) firstID() string {
	if len(r.Messages) == 0 {
		return ""
	}
	return r.Messages[0].ID
}

func (d *Dialog360Sender) Send(ctx context.Context, to, message string) (*SendResult, error) {
	var out cloudTextResp
	err := postJSON(ctx, d.client, d.Name(), d.BaseURL+"/v1/messages",
		map[string]string{"D360-API-KEY": d.APIKey},
		cloudTextReq{RecipientType: "individual", To: StripPlus(to), Type: "text", Text: textBody{Body: message}}, &out)
	if err != nil {
		return nil, err
	}
	return &SendResult{Provider: d.Name(), MessageID: out.firstID()}, nil
}
