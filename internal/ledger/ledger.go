// Package ledger resolves customers and records or reports their payments.
package ledger

import (
	"context"
	"errors"
	"log"
	"sort"
	"time"

	"whatsledger/internal/domain"
	"whatsledger/internal/models"
	"whatsledger/internal/reply"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const historyLimit = 5

// CustomerStore finds and creates customers. Lookups return gorm.ErrRecordNotFound when nothing matches.
type CustomerStore interface {
	FindByNameCI(ctx context.Context, name string) (*models.Customer, error)
	FindByPhone(ctx context.Context, phone string) (*models.Customer, error)
	Create(ctx context.Context, c *models.Customer) error
}

// PaymentStore persists payments. Insert returns gorm.ErrDuplicatedKey when the idempotency key is taken.
type PaymentStore interface {
	Insert(ctx context.Context, p *models.Payment) error
	ListByCustomer(ctx context.Context, customerID uint) ([]models.Payment, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*models.Payment, error)
}

// Notifier is told about every newly stored payment.
type Notifier interface {
	PaymentRecorded(p *models.Payment, c *models.Customer, balance decimal.Decimal)
}

// MaxAmount is the largest whole amount a decimal(14,2) column holds.
const MaxAmount = 999_999_999_999

type PaymentInput struct {
	Name           string `validate:"required"`
	Amount         int64  `validate:"gt=0,lte=999999999999"`
	Direction      string `validate:"oneof=paid received"`
	RecordedBy     string
	IdempotencyKey string
}

type PaymentResult struct {
	Message   string
	Customer  *models.Customer
	Payment   *models.Payment
	Balance   decimal.Decimal
	Duplicate bool
}

type BalanceResult struct {
	Message  string
	Customer *models.Customer
	Totals   Totals
}

type HistoryResult struct {
	Message      string
	Customer     *models.Customer
	Transactions []models.Payment
}

type Service struct {
	customers CustomerStore
	payments  PaymentStore
	renderer  *reply.Renderer
	notifier  Notifier
	validate  *validator.Validate
	now       func() time.Time
}

func NewService(customers CustomerStore, payments PaymentStore, renderer *reply.Renderer) *Service {
	return &Service{
		customers: customers,
		payments:  payments,
		renderer:  renderer,
		validate:  validator.New(),
		now:       time.Now,
	}
}

// SetNotifier registers a receiver for payment events; nil disables notifications.
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

// PlaceholderPhone returns a unique stand-in for a customer whose number is unknown.
func PlaceholderPhone() string {
	return "unknown-" + uuid.NewString()
}

// RecordPayment appends a payment for the named counterparty, creating the customer on first mention.
func (s *Service) RecordPayment(ctx context.Context, in PaymentInput) (*PaymentResult, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, &ReplyError{Kind: KindInvalid, Reply: reply.InvalidPayment, Err: errors.Join(ErrInvalidPayment, err)}
	}

	if in.IdempotencyKey != "" {
		existing, err := s.payments.GetByIdempotencyKey(ctx, in.IdempotencyKey)
		if err == nil {
			return s.duplicate(ctx, in, existing)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, s.storeError(reply.PaymentFailed, "lookup idempotency key", err)
		}
	}

	customer, err := s.findOrCreateCustomer(ctx, in.Name)
	if err != nil {
		return nil, s.storeError(reply.PaymentFailed, "resolve customer", err)
	}

	p := &models.Payment{
		CustomerID: customer.ID,
		Amount:     decimal.NewFromInt(in.Amount),
		Direction:  domain.LedgerDirection(in.Direction),
		Method:     domain.DefaultPaymentMethod,
		Date:       s.now(),
		RecordedBy: in.RecordedBy,
	}
	if in.IdempotencyKey != "" {
		key := in.IdempotencyKey
		p.IdempotencyKey = &key
	}
	if err := s.payments.Insert(ctx, p); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) && in.IdempotencyKey != "" {
			existing, gerr := s.payments.GetByIdempotencyKey(ctx, in.IdempotencyKey)
			if gerr == nil {
				return s.duplicate(ctx, in, existing)
			}
		}
		return nil, s.storeError(reply.PaymentFailed, "insert payment", err)
	}

	totals, err := s.totalsFor(ctx, customer.ID)
	if err != nil {
		return nil, s.storeError(reply.PaymentFailed, "recompute balance", err)
	}
	if s.notifier != nil {
		s.notifier.PaymentRecorded(p, customer, totals.Balance)
	}
	return &PaymentResult{
		Message:  s.renderer.PaymentRecorded(p.Amount, in.Direction, in.Name, totals.Balance),
		Customer: customer,
		Payment:  p,
		Balance:  totals.Balance,
	}, nil
}

func (s *Service) duplicate(ctx context.Context, in PaymentInput, existing *models.Payment) (*PaymentResult, error) {
	totals, err := s.totalsFor(ctx, existing.CustomerID)
	if err != nil {
		return nil, s.storeError(reply.PaymentFailed, "recompute balance", err)
	}
	log.Printf("[ledger] duplicate delivery key=%s payment=%d", in.IdempotencyKey, existing.ID)
	return &PaymentResult{
		Message:   s.renderer.PaymentRecorded(existing.Amount, in.Direction, in.Name, totals.Balance),
		Customer:  existing.Customer,
		Payment:   existing,
		Balance:   totals.Balance,
		Duplicate: true,
	}, nil
}

func (s *Service) findOrCreateCustomer(ctx context.Context, name string) (*models.Customer, error) {
	c, err := s.customers.FindByNameCI(ctx, name)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	c = &models.Customer{Name: name, Phone: PlaceholderPhone()}
	if err := s.customers.Create(ctx, c); err != nil {
		return nil, err
	}
	log.Printf("[ledger] created customer id=%d name=%q", c.ID, c.Name)
	return c, nil
}

// QueryBalance reports totals for the named customer, or for the sender's own number when name is empty.
func (s *Service) QueryBalance(ctx context.Context, name, senderPhone string) (*BalanceResult, error) {
	customer, err := s.resolve(ctx, name, senderPhone)
	if err != nil {
		return nil, s.lookupError(name, reply.BalanceFailed, err)
	}
	totals, err := s.totalsFor(ctx, customer.ID)
	if err != nil {
		return nil, s.storeError(reply.BalanceFailed, "list payments", err)
	}
	return &BalanceResult{
		Message:  s.renderer.BalanceStatement(customer.Name, totals.Received, totals.Paid, totals.Balance),
		Customer: customer,
		Totals:   totals,
	}, nil
}

// QueryHistory returns the five most recent payments, newest first.
func (s *Service) QueryHistory(ctx context.Context, name, senderPhone string) (*HistoryResult, error) {
	customer, err := s.resolve(ctx, name, senderPhone)
	if err != nil {
		return nil, s.lookupError(name, reply.HistoryFailed, err)
	}
	payments, err := s.payments.ListByCustomer(ctx, customer.ID)
	if err != nil {
		return nil, s.storeError(reply.HistoryFailed, "list payments", err)
	}
	recent := Recent(payments, historyLimit)
	entries := make([]reply.HistoryEntry, len(recent))
	for i, p := range recent {
		entries[i] = reply.HistoryEntry{Date: p.Date, Direction: p.Direction, Amount: p.Amount, Method: p.Method, Note: p.Note}
	}
	return &HistoryResult{
		Message:      s.renderer.History(customer.Name, entries),
		Customer:     customer,
		Transactions: recent,
	}, nil
}

// Recent sorts a copy of payments by date descending and keeps at most limit of them.
func Recent(payments []models.Payment, limit int) []models.Payment {
	sorted := make([]models.Payment, len(payments))
	copy(sorted, payments)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.After(sorted[j].Date) })
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

func (s *Service) resolve(ctx context.Context, name, senderPhone string) (*models.Customer, error) {
	if name != "" {
		return s.customers.FindByNameCI(ctx, name)
	}
	return s.customers.FindByPhone(ctx, senderPhone)
}

func (s *Service) totalsFor(ctx context.Context, customerID uint) (Totals, error) {
	payments, err := s.payments.ListByCustomer(ctx, customerID)
	if err != nil {
		return Totals{}, err
	}
	return Summarize(payments), nil
}

func (s *Service) lookupError(name, failedReply string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &ReplyError{Kind: KindNotFound, Reply: reply.NotFound(name), Err: ErrCustomerNotFound}
	}
	return s.storeError(failedReply, "resolve customer", err)
}

func (s *Service) storeError(userReply, op string, err error) error {
	log.Printf("[ledger] %s failed: %v", op, err)
	return &ReplyError{Kind: KindStore, Reply: userReply, Err: err}
}
