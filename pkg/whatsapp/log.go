package whatsapp

import (
	"context"
	"log"
)

// LogSender only logs outgoing messages. It is used when no provider is enabled.
type LogSender struct{}

func (LogSender) Name() string { return "log" }

func (LogSender) Send(_ context.Context, to, message string) (*SendResult, error) {
	log.Printf("[whatsapp] no provider configured, to=%s message=%q", to, message)
	return &SendResult{Provider: "log"}, nil
}
