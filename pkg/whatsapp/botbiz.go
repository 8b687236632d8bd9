package whatsapp

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

const (
	DefaultBotbizBaseURL = "https://api.botbiz.io"
	botbizSendPath       = "/api/v1/messages/send"
	botbizListPath       = "/api/v1/messages/list"
)

// BotbizClient sends through the BotBiz REST API and lists inbound messages for polling.
type BotbizClient struct {
	BaseURL     string
	APIKey      string
	PhoneNumber string
	client      *http.Client
}

func NewBotbizClient(baseURL, apiKey, phoneNumber string) *BotbizClient {
	if baseURL == "" {
		baseURL = DefaultBotbizBaseURL
	}
	return &BotbizClient{
		BaseURL:     baseURL,
		APIKey:      apiKey,
		PhoneNumber: phoneNumber,
		client:      &http.Client{Timeout: defaultTimeout},
	}
}

func (b *BotbizClient) Name() string { return "botbiz" }

type botbizSendReq struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

type botbizSendResp struct {
	ID        string `json:"id"`
	MessageID string `json:"message_id"`
}

func (b *BotbizClient) headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + b.APIKey}
}

func (b *BotbizClient) Send(ctx context.Context, to, message string) (*SendResult, error) {
	var out botbizSendResp
	err := postJSON(ctx, b.client, b.Name(), b.BaseURL+botbizSendPath, b.headers(),
		botbizSendReq{Phone: StripPlus(to), Message: message, Type: "text"}, &out)
	if err != nil {
		return nil, err
	}
	id := out.MessageID
	if id == "" {
		id = out.ID
	}
	return &SendResult{Provider: b.Name(), MessageID: id}, nil
}

// BotbizMessage is one inbound message as returned by the list endpoint.
type BotbizMessage struct {
	ID        string `json:"id"`
	From      string `json:"from"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

type botbizListResp struct {
	Messages []BotbizMessage `json:"messages"`
}

// ListMessages returns messages received after the given timestamp, newest first.
func (b *BotbizClient) ListMessages(ctx context.Context, after string, limit int) ([]BotbizMessage, error) {
	q := url.Values{}
	q.Set("after", after)
	q.Set("limit", strconv.Itoa(limit))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.BaseURL+botbizListPath+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range b.headers() {
		req.Header.Set(k, v)
	}
	var out botbizListResp
	if err := do(b.client, b.Name(), req, &out); err != nil {
		return nil, err
	}
	return out.Messages, nil
}
