package handler

import (
	"context"
	"log"

	"whatsledger/internal/conversation"
	"whatsledger/internal/reply"
	"whatsledger/pkg/whatsapp"
)

// Conversation handles one normalized inbound message.
type Conversation interface {
	Handle(ctx context.Context, in conversation.Inbound) conversation.Reply
}

// Dispatcher runs the conversation and sends its reply back through the active provider.
type Dispatcher struct {
	conv   Conversation
	sender whatsapp.Sender
}

func NewDispatcher(conv Conversation, sender whatsapp.Sender) *Dispatcher {
	return &Dispatcher{conv: conv, sender: sender}
}

// Handle runs the conversation without sending anything.
func (d *Dispatcher) Handle(ctx context.Context, in conversation.Inbound) conversation.Reply {
	return d.conv.Handle(ctx, in)
}

// Dispatch handles in and sends the reply unless the message was a duplicate.
// With fallback set, a failed conversation sends the provider fallback text instead of the apology.
func (d *Dispatcher) Dispatch(ctx context.Context, in conversation.Inbound, fallback bool) (conversation.Reply, *whatsapp.SendResult, error) {
	out := d.conv.Handle(ctx, in)
	if out.Duplicate || out.Message == "" {
		return out, nil, nil
	}
	text := out.Message
	if fallback && out.Failed() {
		text = reply.ProviderFallback
	}
	res, err := d.sender.Send(ctx, in.From, text)
	if err != nil {
		log.Printf("[%s] send reply to %s via %s failed: %v", in.Provider, in.From, d.sender.Name(), err)
	}
	return out, res, err
}
