package worker

import (
	"context"
	"log"
	"time"

	"whatsledger/internal/conversation"
	"whatsledger/internal/domain"
	"whatsledger/pkg/whatsapp"
)

const pollBatch = 50

// MessageSource lists inbound messages newer than a watermark, newest first.
type MessageSource interface {
	ListMessages(ctx context.Context, after string, limit int) ([]whatsapp.BotbizMessage, error)
}

// Dispatcher handles one inbound message and sends the reply.
type Dispatcher interface {
	Dispatch(ctx context.Context, in conversation.Inbound, fallback bool) (conversation.Reply, *whatsapp.SendResult, error)
}

// BotbizPoller pulls messages from BotBiz when webhooks are not available.
type BotbizPoller struct {
	source    MessageSource
	dispatch  Dispatcher
	interval  time.Duration
	watermark string
}

func NewBotbizPoller(source MessageSource, dispatch Dispatcher, interval time.Duration) *BotbizPoller {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &BotbizPoller{source: source, dispatch: dispatch, interval: interval}
}

// Run polls until ctx is cancelled.
func (p *BotbizPoller) Run(ctx context.Context) {
	log.Printf("[botbiz] polling every %s", p.interval)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		p.Poll(ctx)
		select {
		case <-ctx.Done():
			log.Println("[botbiz] poller stopped")
			return
		case <-ticker.C:
		}
	}
}

// Poll fetches one batch and dispatches it oldest first. It returns the number handled.
func (p *BotbizPoller) Poll(ctx context.Context) int {
	msgs, err := p.source.ListMessages(ctx, p.watermark, pollBatch)
	if err != nil {
		log.Printf("[botbiz] poll failed: %v", err)
		return 0
	}
	if len(msgs) == 0 {
		return 0
	}
	p.watermark = msgs[0].Timestamp

	handled := 0
	for i := len(msgs) - 1; i >= 0; i-- {
		m := msgs[i]
		if m.From == "" || m.Text == "" {
			continue
		}
		out, _, err := p.dispatch.Dispatch(ctx, conversation.Inbound{
			From:      m.From,
			Text:      m.Text,
			MessageID: m.ID,
			Provider:  domain.ProviderBotbiz,
		}, false)
		if err != nil || out.Duplicate {
			continue
		}
		handled++
	}
	return handled
}

// Watermark is the timestamp of the newest message seen so far.
func (p *BotbizPoller) Watermark() string { return p.watermark }
