package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"whatsledger/internal/ledger"
	"whatsledger/internal/middleware"
	"whatsledger/internal/models"
	"whatsledger/internal/service"
	"whatsledger/pkg/cloudinary"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const maxReceiptSize = 5 << 20

// Book is the dashboard view of the ledger.
type Book interface {
	Dashboard(ctx context.Context) (*service.Dashboard, error)
	Summary(ctx context.Context) (ledger.Totals, []models.Payment, error)
	ListCustomers(ctx context.Context) ([]service.CustomerSummary, error)
	GetCustomer(ctx context.Context, id uint) (*service.CustomerSummary, error)
	CustomerHistory(ctx context.Context, id uint, page, limit int) ([]models.Payment, int64, error)
	CreateCustomer(ctx context.Context, in service.CustomerInput) (*models.Customer, error)
	UpdateCustomer(ctx context.Context, id uint, in service.CustomerInput) (*models.Customer, error)
	RecordPayment(ctx context.Context, in service.ManualPayment) (*models.Payment, error)
	ListPayments(ctx context.Context, page, limit int) ([]models.Payment, int64, error)
	GetPayment(ctx context.Context, id uint) (*models.Payment, error)
	DeletePayment(ctx context.Context, id uint) (*models.Payment, error)
	AttachReceipt(ctx context.Context, id uint, url string) (*models.Payment, error)
}

type BookHandler struct {
	book   Book
	cloud  cloudinary.Uploader
	folder string
	audit  Auditor
}

// NewBookHandler builds the customer and payment endpoints. cloud may be nil when uploads are disabled.
func NewBookHandler(book Book, cloud cloudinary.Uploader, folder string, audit Auditor) *BookHandler {
	return &BookHandler{book: book, cloud: cloud, folder: folder, audit: audit}
}

type CustomerRequest struct {
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

func (r CustomerRequest) input() service.CustomerInput {
	return service.CustomerInput{Name: r.Name, Phone: r.Phone, Email: r.Email, Address: r.Address}
}

type PaymentRequest struct {
	CustomerID uint            `json:"customer_id" binding:"required"`
	Amount     decimal.Decimal `json:"amount"`
	Direction  string          `json:"direction" binding:"required,oneof=CREDIT DEBIT"`
	Method     string          `json:"method"`
	Date       string          `json:"date"`
	Note       string          `json:"note"`
}

// bookError maps service errors to status codes.
func bookError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, service.ErrCustomerNotFound), errors.Is(err, service.ErrPaymentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrPhoneTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, gin.H{"error": verrs.Error()})
			return
		}
		log.Printf("[book] %s failed: %v", op, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to " + op})
	}
}

func (h *BookHandler) Dashboard(c *gin.Context) {
	d, err := h.book.Dashboard(c.Request.Context())
	if err != nil {
		bookError(c, "load dashboard", err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *BookHandler) ListCustomers(c *gin.Context) {
	list, err := h.book.ListCustomers(c.Request.Context())
	if err != nil {
		bookError(c, "list customers", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list, "total": len(list)})
}

func (h *BookHandler) GetCustomer(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	cs, err := h.book.GetCustomer(c.Request.Context(), id)
	if err != nil {
		bookError(c, "load customer", err)
		return
	}
	c.JSON(http.StatusOK, cs)
}

func (h *BookHandler) CustomerHistory(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	page, limit := parsePagination(c)
	list, total, err := h.book.CustomerHistory(c.Request.Context(), id, page, limit)
	if err != nil {
		bookError(c, "load history", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list, "total": total, "page": page, "limit": limit})
}

func (h *BookHandler) CreateCustomer(c *gin.Context) {
	var req CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cust, err := h.book.CreateCustomer(c.Request.Context(), req.input())
	if err != nil {
		bookError(c, "create customer", err)
		return
	}
	auditCaller(h.audit, c, "create", "customer", cust.ID)
	c.JSON(http.StatusCreated, cust)
}

func (h *BookHandler) UpdateCustomer(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cust, err := h.book.UpdateCustomer(c.Request.Context(), id, req.input())
	if err != nil {
		bookError(c, "update customer", err)
		return
	}
	auditCaller(h.audit, c, "update", "customer", cust.ID)
	c.JSON(http.StatusOK, cust)
}

func (h *BookHandler) CreatePayment(c *gin.Context) {
	var req PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date (use YYYY-MM-DD)"})
		return
	}
	p, err := h.book.RecordPayment(c.Request.Context(), service.ManualPayment{
		CustomerID: req.CustomerID,
		Amount:     req.Amount,
		Direction:  req.Direction,
		Method:     req.Method,
		Date:       date,
		Note:       req.Note,
		RecordedBy: callerEmail(c),
	})
	if err != nil {
		bookError(c, "create payment", err)
		return
	}
	auditCaller(h.audit, c, "create", "payment", p.ID)
	c.JSON(http.StatusCreated, p)
}

func (h *BookHandler) ListPayments(c *gin.Context) {
	page, limit := parsePagination(c)
	list, total, err := h.book.ListPayments(c.Request.Context(), page, limit)
	if err != nil {
		bookError(c, "list payments", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list, "total": total, "page": page, "limit": limit})
}

func (h *BookHandler) PaymentSummary(c *gin.Context) {
	totals, recent, err := h.book.Summary(c.Request.Context())
	if err != nil {
		bookError(c, "fetch summary", err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, gin.H{"summary": totals, "recent_transactions": recent})
}

func (h *BookHandler) DeletePayment(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	p, err := h.book.DeletePayment(c.Request.Context(), id)
	if err != nil {
		bookError(c, "delete payment", err)
		return
	}
	if p.ReceiptURL != "" && h.cloud != nil {
		if err := h.cloud.DeleteByURL(c.Request.Context(), p.ReceiptURL); err != nil {
			log.Printf("[book] delete receipt for payment %d: %v", p.ID, err)
		}
	}
	auditCaller(h.audit, c, "delete", "payment", p.ID)
	c.JSON(http.StatusOK, p)
}

// UploadReceipt stores an image of the receipt and links it to the payment.
func (h *BookHandler) UploadReceipt(c *gin.Context) {
	if h.cloud == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "receipt uploads are not configured"})
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	if _, err := h.book.GetPayment(c.Request.Context(), id); err != nil {
		bookError(c, "load payment", err)
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	if file.Size > maxReceiptSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large (max 5MB)"})
		return
	}
	if ct := file.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "receipt must be an image"})
		return
	}
	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read file"})
		return
	}
	defer f.Close()

	publicID := "payment_" + strconv.FormatUint(uint64(id), 10) + "_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
	res, err := h.cloud.UploadReceipt(c.Request.Context(), f, h.folder, publicID)
	if err != nil {
		log.Printf("[book] receipt upload for payment %d: %v", id, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "upload failed"})
		return
	}
	p, err := h.book.AttachReceipt(c.Request.Context(), id, res.URL)
	if err != nil {
		bookError(c, "attach receipt", err)
		return
	}
	auditCaller(h.audit, c, "upload_receipt", "payment", p.ID)
	c.JSON(http.StatusOK, gin.H{"payment": p, "receipt": res})
}

// callerEmail is the dashboard user recorded on manual entries.
func callerEmail(c *gin.Context) string {
	if e := c.GetString("email"); e != "" {
		return e
	}
	return strconv.FormatUint(uint64(middleware.GetAccountID(c)), 10)
}
