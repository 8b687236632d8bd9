package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"whatsledger/internal/domain"
	"whatsledger/internal/ledger"
	"whatsledger/internal/models"
	"whatsledger/pkg/whatsapp"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const recentTransactionsLimit = 5

var (
	ErrCustomerNotFound = errors.New("customer not found")
	ErrPaymentNotFound  = errors.New("payment not found")
	ErrPhoneTaken       = errors.New("phone number already belongs to another customer")
	ErrInvalidAmount    = errors.New("amount must be greater than zero and fit the ledger column")
)

type CustomerRepo interface {
	Create(ctx context.Context, c *models.Customer) error
	GetByID(ctx context.Context, id uint) (*models.Customer, error)
	GetWithPayments(ctx context.Context, id uint) (*models.Customer, error)
	ListWithPayments(ctx context.Context) ([]models.Customer, error)
	PhoneTaken(ctx context.Context, phone string, excludeID uint) (bool, error)
	Update(ctx context.Context, c *models.Customer) error
}

type PaymentRepo interface {
	Insert(ctx context.Context, p *models.Payment) error
	GetByID(ctx context.Context, id uint) (*models.Payment, error)
	ListByCustomer(ctx context.Context, customerID uint) ([]models.Payment, error)
	PageByCustomer(ctx context.Context, customerID uint, page, limit int) ([]models.Payment, int64, error)
	Page(ctx context.Context, page, limit int) ([]models.Payment, int64, error)
	ListAll(ctx context.Context) ([]models.Payment, error)
	Recent(ctx context.Context, limit int) ([]models.Payment, error)
	SetReceiptURL(ctx context.Context, id uint, url string) error
	Delete(ctx context.Context, id uint) error
}

// CustomerSummary is a customer with the totals of all its payments.
type CustomerSummary struct {
	*models.Customer
	ledger.Totals
}

type Dashboard struct {
	Summary            DashboardSummary `json:"summary"`
	RecentTransactions []models.Payment `json:"recent_transactions"`
}

type DashboardSummary struct {
	TotalReceived   decimal.Decimal `json:"total_received"`
	TotalPaid       decimal.Decimal `json:"total_paid"`
	CurrentBalance  decimal.Decimal `json:"current_balance"`
	ActiveCustomers int             `json:"active_customers"`
}

type CustomerInput struct {
	Name    string `validate:"required,max=255"`
	Phone   string `validate:"max=64"`
	Email   string `validate:"omitempty,email"`
	Address string `validate:"max=512"`
}

// ManualPayment is a payment entered from the dashboard rather than parsed from a message.
type ManualPayment struct {
	CustomerID uint            `validate:"required"`
	Amount     decimal.Decimal `validate:"-"`
	Direction  string          `validate:"oneof=CREDIT DEBIT"`
	Method     string          `validate:"max=50"`
	Date       time.Time
	Note       string
	RecordedBy string
}

// BookService serves the dashboard views of the ledger. All totals go through ledger.Summarize.
type BookService struct {
	customers CustomerRepo
	payments  PaymentRepo
	notifier  ledger.Notifier
	validate  *validator.Validate
	now       func() time.Time
}

func NewBookService(customers CustomerRepo, payments PaymentRepo, notifier ledger.Notifier) *BookService {
	return &BookService{
		customers: customers,
		payments:  payments,
		notifier:  notifier,
		validate:  validator.New(),
		now:       time.Now,
	}
}

func (s *BookService) Dashboard(ctx context.Context) (*Dashboard, error) {
	customers, err := s.customers.ListWithPayments(ctx)
	if err != nil {
		return nil, err
	}
	var all []models.Payment
	active := 0
	for _, c := range customers {
		if len(c.Payments) > 0 {
			active++
		}
		all = append(all, c.Payments...)
	}
	totals := ledger.Summarize(all)
	recent, err := s.payments.Recent(ctx, recentTransactionsLimit)
	if err != nil {
		return nil, err
	}
	return &Dashboard{
		Summary: DashboardSummary{
			TotalReceived:   totals.Received,
			TotalPaid:       totals.Paid,
			CurrentBalance:  totals.Balance,
			ActiveCustomers: active,
		},
		RecentTransactions: recent,
	}, nil
}

// Summary returns totals over every payment plus the most recent transactions.
func (s *BookService) Summary(ctx context.Context) (ledger.Totals, []models.Payment, error) {
	all, err := s.payments.ListAll(ctx)
	if err != nil {
		return ledger.Totals{}, nil, err
	}
	recent, err := s.payments.Recent(ctx, recentTransactionsLimit)
	if err != nil {
		return ledger.Totals{}, nil, err
	}
	return ledger.Summarize(all), recent, nil
}

func (s *BookService) ListCustomers(ctx context.Context) ([]CustomerSummary, error) {
	customers, err := s.customers.ListWithPayments(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]CustomerSummary, len(customers))
	for i := range customers {
		c := &customers[i]
		out[i] = CustomerSummary{Customer: c, Totals: ledger.Summarize(c.Payments)}
		c.Payments = nil
	}
	return out, nil
}

func (s *BookService) GetCustomer(ctx context.Context, id uint) (*CustomerSummary, error) {
	c, err := s.customers.GetWithPayments(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrCustomerNotFound)
	}
	totals := ledger.Summarize(c.Payments)
	c.Payments = ledger.Recent(c.Payments, len(c.Payments))
	return &CustomerSummary{Customer: c, Totals: totals}, nil
}

func (s *BookService) CustomerHistory(ctx context.Context, id uint, page, limit int) ([]models.Payment, int64, error) {
	if _, err := s.customers.GetByID(ctx, id); err != nil {
		return nil, 0, notFound(err, ErrCustomerNotFound)
	}
	return s.payments.PageByCustomer(ctx, id, page, limit)
}

func (s *BookService) CreateCustomer(ctx context.Context, in CustomerInput) (*models.Customer, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	phone, err := s.phoneFor(ctx, in.Phone, 0)
	if err != nil {
		return nil, err
	}
	c := &models.Customer{
		Name:    strings.TrimSpace(in.Name),
		Phone:   phone,
		Email:   strings.TrimSpace(in.Email),
		Address: strings.TrimSpace(in.Address),
	}
	if err := s.customers.Create(ctx, c); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrPhoneTaken
		}
		return nil, err
	}
	return c, nil
}

// UpdateCustomer replaces the editable fields. An empty phone becomes a fresh placeholder.
func (s *BookService) UpdateCustomer(ctx context.Context, id uint, in CustomerInput) (*models.Customer, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	c, err := s.customers.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrCustomerNotFound)
	}
	phone, err := s.phoneFor(ctx, in.Phone, id)
	if err != nil {
		return nil, err
	}
	c.Name = strings.TrimSpace(in.Name)
	c.Phone = phone
	c.Email = strings.TrimSpace(in.Email)
	c.Address = strings.TrimSpace(in.Address)
	if err := s.customers.Update(ctx, c); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrPhoneTaken
		}
		return nil, err
	}
	return c, nil
}

func (s *BookService) phoneFor(ctx context.Context, phone string, excludeID uint) (string, error) {
	// stored in the same form conversation uses for senders
	phone = whatsapp.Normalize(phone)
	if phone == "" {
		return ledger.PlaceholderPhone(), nil
	}
	taken, err := s.customers.PhoneTaken(ctx, phone, excludeID)
	if err != nil {
		return "", err
	}
	if taken {
		return "", ErrPhoneTaken
	}
	return phone, nil
}

func (s *BookService) RecordPayment(ctx context.Context, in ManualPayment) (*models.Payment, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	if !in.Amount.IsPositive() || in.Amount.GreaterThan(decimal.NewFromInt(ledger.MaxAmount)) {
		return nil, ErrInvalidAmount
	}
	c, err := s.customers.GetByID(ctx, in.CustomerID)
	if err != nil {
		return nil, notFound(err, ErrCustomerNotFound)
	}
	method := strings.TrimSpace(in.Method)
	if method == "" {
		method = domain.DefaultPaymentMethod
	}
	date := in.Date
	if date.IsZero() {
		date = s.now()
	}
	p := &models.Payment{
		CustomerID: c.ID,
		Amount:     in.Amount.Round(2),
		Direction:  in.Direction,
		Method:     method,
		Date:       date,
		Note:       strings.TrimSpace(in.Note),
		RecordedBy: in.RecordedBy,
	}
	if err := s.payments.Insert(ctx, p); err != nil {
		return nil, err
	}
	p.Customer = c
	s.notify(ctx, p, c)
	return p, nil
}

func (s *BookService) notify(ctx context.Context, p *models.Payment, c *models.Customer) {
	if s.notifier == nil {
		return
	}
	payments, err := s.payments.ListByCustomer(ctx, c.ID)
	if err != nil {
		log.Printf("[book] balance for notification: customer=%d err=%v", c.ID, err)
		return
	}
	s.notifier.PaymentRecorded(p, c, ledger.Summarize(payments).Balance)
}

func (s *BookService) ListPayments(ctx context.Context, page, limit int) ([]models.Payment, int64, error) {
	return s.payments.Page(ctx, page, limit)
}

func (s *BookService) GetPayment(ctx context.Context, id uint) (*models.Payment, error) {
	p, err := s.payments.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrPaymentNotFound)
	}
	return p, nil
}

// DeletePayment removes the payment and returns it as it was.
func (s *BookService) DeletePayment(ctx context.Context, id uint) (*models.Payment, error) {
	p, err := s.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.payments.Delete(ctx, id); err != nil {
		return nil, notFound(err, ErrPaymentNotFound)
	}
	return p, nil
}

func (s *BookService) AttachReceipt(ctx context.Context, id uint, url string) (*models.Payment, error) {
	p, err := s.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.payments.SetReceiptURL(ctx, id, url); err != nil {
		return nil, err
	}
	p.ReceiptURL = url
	return p, nil
}

func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}
