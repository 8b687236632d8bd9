// Package conversation drives one inbound WhatsApp message from text to reply.
package conversation

import (
	"context"
	"errors"
	"log"

	"whatsledger/internal/dedup"
	"whatsledger/internal/domain"
	"whatsledger/internal/intent"
	"whatsledger/internal/ledger"
	"whatsledger/internal/models"
	"whatsledger/internal/reply"
	"whatsledger/pkg/whatsapp"
)

// Inbound is a message normalized by a provider adapter. MessageID is optional.
type Inbound struct {
	From      string
	Text      string
	MessageID string
	Provider  string
}

// Reply is what the adapter sends back. Duplicate replies must not be re-sent.
type Reply struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	State     string `json:"-"`
	Intent    string `json:"-"`
	Duplicate bool   `json:"-"`
}

// Failed reports whether handling ended in the FAILED state.
func (r Reply) Failed() bool { return r.State == domain.StateFailed }

// Ledger is the subset of ledger.Service the conversation needs.
type Ledger interface {
	RecordPayment(ctx context.Context, in ledger.PaymentInput) (*ledger.PaymentResult, error)
	QueryBalance(ctx context.Context, name, senderPhone string) (*ledger.BalanceResult, error)
	QueryHistory(ctx context.Context, name, senderPhone string) (*ledger.HistoryResult, error)
}

type MessageLogStore interface {
	Create(ctx context.Context, m *models.MessageLog) error
}

type Service struct {
	ledger Ledger
	seen   dedup.Store
	logs   MessageLogStore
}

// NewService wires the handler. seen and logs may be nil.
func NewService(l Ledger, seen dedup.Store, logs MessageLogStore) *Service {
	return &Service{ledger: l, seen: seen, logs: logs}
}

// Handle runs RECEIVED -> CLASSIFIED -> RESOLVED -> REPLIED, or ends in FAILED.
// It never returns an error; failures are carried in the reply text.
func (s *Service) Handle(ctx context.Context, in Inbound) (out Reply) {
	in.From = whatsapp.Normalize(in.From)
	out.State = domain.StateReceived
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[conversation] panic handling message from %s: %v", in.From, r)
			out = Reply{Success: false, Message: reply.Apology, State: domain.StateFailed, Intent: out.Intent}
			s.forget(ctx, in)
			s.record(ctx, in, domain.MessageOutgoing, out)
		}
	}()

	if s.isDuplicate(ctx, in) {
		log.Printf("[conversation] duplicate delivery provider=%s id=%s", in.Provider, in.MessageID)
		return Reply{Success: true, State: domain.StateReplied, Duplicate: true}
	}
	s.record(ctx, in, domain.MessageIncoming, out)

	parsed := intent.Classify(in.Text)
	out.State = domain.StateClassified
	out.Intent = parsed.Type

	msg, err := s.resolve(ctx, in, parsed)
	if err != nil {
		var re *ledger.ReplyError
		if !errors.As(err, &re) {
			log.Printf("[conversation] %s from %s failed: %v", parsed.Type, in.From, err)
			out.Success = false
			out.Message = reply.Apology
			out.State = domain.StateFailed
			s.forget(ctx, in)
			s.record(ctx, in, domain.MessageOutgoing, out)
			return out
		}
		msg = re.Reply
	}
	out.State = domain.StateResolved

	out.Success = true
	out.Message = msg
	out.State = domain.StateReplied
	s.record(ctx, in, domain.MessageOutgoing, out)
	return out
}

func (s *Service) resolve(ctx context.Context, in Inbound, parsed intent.Parsed) (string, error) {
	if msg, ok := reply.Static(parsed.Type); ok {
		return msg, nil
	}
	switch parsed.Type {
	case domain.IntentPayment:
		res, err := s.ledger.RecordPayment(ctx, ledger.PaymentInput{
			Name:           parsed.Name,
			Amount:         parsed.Amount,
			Direction:      parsed.Direction,
			RecordedBy:     in.From,
			IdempotencyKey: idempotencyKey(in),
		})
		if err != nil {
			return "", err
		}
		return res.Message, nil
	case domain.IntentBalanceQuery:
		res, err := s.ledger.QueryBalance(ctx, parsed.Name, in.From)
		if err != nil {
			return "", err
		}
		return res.Message, nil
	case domain.IntentHistoryQuery:
		res, err := s.ledger.QueryHistory(ctx, parsed.Name, in.From)
		if err != nil {
			return "", err
		}
		return res.Message, nil
	}
	return reply.Unclear, nil
}

func idempotencyKey(in Inbound) string {
	if in.MessageID == "" {
		return ""
	}
	provider := in.Provider
	if provider == "" {
		provider = domain.ProviderAPI
	}
	return provider + ":" + in.MessageID
}

// isDuplicate fails open: a broken seen-set must not drop messages.
func (s *Service) isDuplicate(ctx context.Context, in Inbound) bool {
	key := idempotencyKey(in)
	if key == "" || s.seen == nil {
		return false
	}
	dup, err := s.seen.Seen(ctx, key)
	if err != nil {
		log.Printf("[conversation] dedup lookup failed key=%s: %v", key, err)
		return false
	}
	return dup
}

// forget clears the seen mark after a FAILED outcome so the provider's retry is handled.
func (s *Service) forget(ctx context.Context, in Inbound) {
	key := idempotencyKey(in)
	if key == "" || s.seen == nil {
		return
	}
	if err := s.seen.Forget(ctx, key); err != nil {
		log.Printf("[conversation] dedup forget failed key=%s: %v", key, err)
	}
}

func (s *Service) record(ctx context.Context, in Inbound, direction string, out Reply) {
	if s.logs == nil {
		return
	}
	body := in.Text
	if direction == domain.MessageOutgoing {
		body = out.Message
	}
	entry := &models.MessageLog{
		Provider:  in.Provider,
		Direction: direction,
		Phone:     in.From,
		Body:      body,
		MessageID: in.MessageID,
		Intent:    out.Intent,
		State:     out.State,
	}
	if entry.Provider == "" {
		entry.Provider = domain.ProviderAPI
	}
	if err := s.logs.Create(ctx, entry); err != nil {
		log.Printf("[conversation] message log failed: %v", err)
	}
}
