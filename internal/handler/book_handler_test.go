package handler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"whatsledger/internal/ledger"
	"whatsledger/internal/models"
	"whatsledger/internal/service"
	"whatsledger/pkg/cloudinary"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ---- mock implementations ----

type mockBook struct {
	getCustomerFn   func(uint) (*service.CustomerSummary, error)
	createCustFn    func(service.CustomerInput) (*models.Customer, error)
	recordFn        func(service.ManualPayment) (*models.Payment, error)
	getPaymentFn    func(uint) (*models.Payment, error)
	deletePaymentFn func(uint) (*models.Payment, error)
	attachFn        func(uint, string) (*models.Payment, error)
}

var errNotConfigured = fmt.Errorf("not configured")

func (m *mockBook) Dashboard(context.Context) (*service.Dashboard, error) {
	return &service.Dashboard{}, nil
}
func (m *mockBook) Summary(context.Context) (ledger.Totals, []models.Payment, error) {
	return ledger.Totals{}, nil, nil
}
func (m *mockBook) ListCustomers(context.Context) ([]service.CustomerSummary, error) {
	return nil, nil
}
func (m *mockBook) GetCustomer(_ context.Context, id uint) (*service.CustomerSummary, error) {
	if m.getCustomerFn != nil {
		return m.getCustomerFn(id)
	}
	return nil, errNotConfigured
}
func (m *mockBook) CustomerHistory(context.Context, uint, int, int) ([]models.Payment, int64, error) {
	return nil, 0, nil
}
func (m *mockBook) CreateCustomer(_ context.Context, in service.CustomerInput) (*models.Customer, error) {
	if m.createCustFn != nil {
		return m.createCustFn(in)
	}
	return nil, errNotConfigured
}
func (m *mockBook) UpdateCustomer(context.Context, uint, service.CustomerInput) (*models.Customer, error) {
	return nil, errNotConfigured
}
func (m *mockBook) RecordPayment(_ context.Context, in service.ManualPayment) (*models.Payment, error) {
	if m.recordFn != nil {
		return m.recordFn(in)
	}
	return nil, errNotConfigured
}
func (m *mockBook) ListPayments(context.Context, int, int) ([]models.Payment, int64, error) {
	return nil, 0, nil
}
func (m *mockBook) GetPayment(_ context.Context, id uint) (*models.Payment, error) {
	if m.getPaymentFn != nil {
		return m.getPaymentFn(id)
	}
	return nil, errNotConfigured
}
func (m *mockBook) DeletePayment(_ context.Context, id uint) (*models.Payment, error) {
	if m.deletePaymentFn != nil {
		return m.deletePaymentFn(id)
	}
	return nil, errNotConfigured
}
func (m *mockBook) AttachReceipt(_ context.Context, id uint, url string) (*models.Payment, error) {
	if m.attachFn != nil {
		return m.attachFn(id, url)
	}
	return nil, errNotConfigured
}

type mockUploader struct {
	uploadFn func(folder, publicID string) (*cloudinary.UploadResult, error)
	deleted  []string
}

func (m *mockUploader) UploadReceipt(_ context.Context, _ io.Reader, folder, publicID string) (*cloudinary.UploadResult, error) {
	if m.uploadFn != nil {
		return m.uploadFn(folder, publicID)
	}
	return nil, errNotConfigured
}

func (m *mockUploader) DeleteByURL(_ context.Context, url string) error {
	m.deleted = append(m.deleted, url)
	return nil
}

type mockAuditor struct {
	entries []models.AuditLog
}

func (m *mockAuditor) Create(l *models.AuditLog) error {
	m.entries = append(m.entries, *l)
	return nil
}

// ---- helpers ----

func fakeAuthBook(accountID uint, email string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("account_id", accountID)
		c.Set("email", email)
		c.Set("role", "business")
		c.Next()
	}
}

func newBookTestRouter(book Book, cloud cloudinary.Uploader, audit Auditor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(fakeAuthBook(7, "owner@shop.test"))
	h := NewBookHandler(book, cloud, "receipts", audit)
	r.GET("/api/customers/:id", h.GetCustomer)
	r.POST("/api/customers", h.CreateCustomer)
	r.POST("/api/payments", h.CreatePayment)
	r.DELETE("/api/payments/:id", h.DeletePayment)
	r.POST("/api/payments/:id/receipt", h.UploadReceipt)
	return r
}

func multipartReceipt(contentType string, size int) (*bytes.Buffer, string) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="receipt.jpg"`)
	hdr.Set("Content-Type", contentType)
	part, _ := mw.CreatePart(hdr)
	part.Write(bytes.Repeat([]byte{0xff}, size))
	mw.Close()
	return &buf, mw.FormDataContentType()
}

var bookTestPayment = &models.Payment{ID: 3, CustomerID: 1, Amount: decimal.NewFromInt(500), Direction: "CREDIT", Method: "Cash"}

// ---- tests ----

func TestGetCustomer(t *testing.T) {
	tests := []struct {
		name           string
		id             string
		getFn          func(uint) (*service.CustomerSummary, error)
		expectedStatus int
	}{
		{
			name: "success",
			id:   "1",
			getFn: func(id uint) (*service.CustomerSummary, error) {
				return &service.CustomerSummary{Customer: &models.Customer{ID: id, Name: "Jane"}}, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "not found",
			id:             "9",
			getFn:          func(uint) (*service.CustomerSummary, error) { return nil, service.ErrCustomerNotFound },
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "bad id",
			id:             "abc",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "store failure",
			id:             "1",
			getFn:          func(uint) (*service.CustomerSummary, error) { return nil, fmt.Errorf("db down") },
			expectedStatus: http.StatusInternalServerError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newBookTestRouter(&mockBook{getCustomerFn: tt.getFn}, nil, nil)
			w := doJSON(router, http.MethodGet, "/api/customers/"+tt.id, nil)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestCreateCustomer(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		createFn       func(service.CustomerInput) (*models.Customer, error)
		expectedStatus int
	}{
		{
			name: "created",
			body: map[string]string{"name": "Jane", "phone": "+254700000001"},
			createFn: func(in service.CustomerInput) (*models.Customer, error) {
				return &models.Customer{ID: 1, Name: in.Name, Phone: in.Phone}, nil
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "missing name",
			body:           map[string]string{"phone": "+254700000001"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "phone taken",
			body:           map[string]string{"name": "Jane", "phone": "+254700000001"},
			createFn:       func(service.CustomerInput) (*models.Customer, error) { return nil, service.ErrPhoneTaken },
			expectedStatus: http.StatusConflict,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newBookTestRouter(&mockBook{createCustFn: tt.createFn}, nil, &mockAuditor{})
			w := doJSON(router, http.MethodPost, "/api/customers", tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestCreatePayment(t *testing.T) {
	var got service.ManualPayment
	ok := func(in service.ManualPayment) (*models.Payment, error) {
		got = in
		return bookTestPayment, nil
	}
	tests := []struct {
		name           string
		body           interface{}
		recordFn       func(service.ManualPayment) (*models.Payment, error)
		expectedStatus int
	}{
		{
			name:           "created",
			body:           map[string]interface{}{"customer_id": 1, "amount": "500", "direction": "CREDIT", "date": "2024-03-01"},
			recordFn:       ok,
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "bad direction",
			body:           map[string]interface{}{"customer_id": 1, "amount": "500", "direction": "SIDEWAYS"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad date",
			body:           map[string]interface{}{"customer_id": 1, "amount": "500", "direction": "DEBIT", "date": "01/03/2024"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid amount",
			body:           map[string]interface{}{"customer_id": 1, "amount": "0", "direction": "DEBIT"},
			recordFn:       func(service.ManualPayment) (*models.Payment, error) { return nil, service.ErrInvalidAmount },
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown customer",
			body:           map[string]interface{}{"customer_id": 42, "amount": "10", "direction": "DEBIT"},
			recordFn:       func(service.ManualPayment) (*models.Payment, error) { return nil, service.ErrCustomerNotFound },
			expectedStatus: http.StatusNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newBookTestRouter(&mockBook{recordFn: tt.recordFn}, nil, &mockAuditor{})
			w := doJSON(router, http.MethodPost, "/api/payments", tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
	if got.RecordedBy != "owner@shop.test" || !got.Amount.Equal(decimal.NewFromInt(500)) || got.Date.Day() != 1 {
		t.Errorf("unexpected manual payment %+v", got)
	}
}

func TestDeletePaymentRemovesReceipt(t *testing.T) {
	cloud := &mockUploader{}
	audit := &mockAuditor{}
	book := &mockBook{deletePaymentFn: func(id uint) (*models.Payment, error) {
		p := *bookTestPayment
		p.ReceiptURL = "https://res.cloudinary.com/demo/image/upload/v1/receipts/payment_3.jpg"
		return &p, nil
	}}
	w := doJSON(newBookTestRouter(book, cloud, audit), http.MethodDelete, "/api/payments/3", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	if len(cloud.deleted) != 1 {
		t.Errorf("expected receipt deletion, got %v", cloud.deleted)
	}
	if len(audit.entries) != 1 || audit.entries[0].Action != "delete" {
		t.Errorf("unexpected audit entries %+v", audit.entries)
	}
}

func TestUploadReceipt(t *testing.T) {
	found := func(uint) (*models.Payment, error) { return bookTestPayment, nil }
	tests := []struct {
		name           string
		cloud          cloudinary.Uploader
		contentType    string
		size           int
		getFn          func(uint) (*models.Payment, error)
		expectedStatus int
	}{
		{
			name:           "uploads disabled",
			cloud:          nil,
			contentType:    "image/jpeg",
			size:           10,
			getFn:          found,
			expectedStatus: http.StatusServiceUnavailable,
		},
		{
			name: "success",
			cloud: &mockUploader{uploadFn: func(folder, publicID string) (*cloudinary.UploadResult, error) {
				return &cloudinary.UploadResult{URL: "https://cdn/" + folder + "/" + publicID, PublicID: publicID}, nil
			}},
			contentType:    "image/jpeg",
			size:           10,
			getFn:          found,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "not an image",
			cloud:          &mockUploader{},
			contentType:    "application/pdf",
			size:           10,
			getFn:          found,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "too large",
			cloud:          &mockUploader{},
			contentType:    "image/png",
			size:           maxReceiptSize + 1,
			getFn:          found,
			expectedStatus: http.StatusRequestEntityTooLarge,
		},
		{
			name:           "unknown payment",
			cloud:          &mockUploader{},
			contentType:    "image/png",
			size:           10,
			getFn:          func(uint) (*models.Payment, error) { return nil, service.ErrPaymentNotFound },
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "upload failure",
			cloud: &mockUploader{uploadFn: func(string, string) (*cloudinary.UploadResult, error) {
				return nil, fmt.Errorf("cloudinary down")
			}},
			contentType:    "image/png",
			size:           10,
			getFn:          found,
			expectedStatus: http.StatusBadGateway,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			book := &mockBook{
				getPaymentFn: tt.getFn,
				attachFn: func(id uint, url string) (*models.Payment, error) {
					p := *bookTestPayment
					p.ReceiptURL = url
					return &p, nil
				},
			}
			router := newBookTestRouter(book, tt.cloud, &mockAuditor{})
			body, ct := multipartReceipt(tt.contentType, tt.size)
			req, _ := http.NewRequest(http.MethodPost, "/api/payments/3/receipt", body)
			req.Header.Set("Content-Type", ct)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}
