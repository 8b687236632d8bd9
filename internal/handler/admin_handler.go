package handler

import (
	"errors"
	"log"
	"net/http"
	"time"

	"whatsledger/internal/models"
	"whatsledger/internal/repository"
	"whatsledger/internal/service"

	"github.com/gin-gonic/gin"
)

type BusinessAdmin interface {
	ListBusinesses(search string, page, limit int) ([]models.Business, int64, error)
	Business(id uint) (*service.BusinessDetail, error)
	SetBusinessActive(id uint, active bool) (*models.Business, error)
	Stats() (*repository.PlatformStats, []repository.TimeSeriesPoint, error)
}

type AccessCodes interface {
	Create(businessName string, expiryDays int, adminID uint) (*models.AccessCode, error)
	List() ([]service.AccessCodeView, error)
	Extend(id uint, additionalDays int) (*models.AccessCode, error)
	Revoke(id uint) (*models.AccessCode, error)
}

type MessageLogs interface {
	List(phone string, page, limit int) ([]models.MessageLog, int64, error)
}

type AdminHandler struct {
	admin    BusinessAdmin
	codes    AccessCodes
	messages MessageLogs
	audit    Auditor
}

func NewAdminHandler(admin BusinessAdmin, codes AccessCodes, messages MessageLogs, audit Auditor) *AdminHandler {
	return &AdminHandler{admin: admin, codes: codes, messages: messages, audit: audit}
}

// Dashboard handles GET /admin/stats.
func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats, series, err := h.admin.Stats()
	if err != nil {
		log.Printf("[admin] stats: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats, "messages_by_day": series})
}

func (h *AdminHandler) ListBusinesses(c *gin.Context) {
	page, limit := parsePagination(c)
	list, total, err := h.admin.ListBusinesses(c.Query("search"), page, limit)
	if err != nil {
		log.Printf("[admin] list businesses: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch businesses"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list, "total": total, "page": page, "limit": limit})
}

func (h *AdminHandler) GetBusiness(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	b, err := h.admin.Business(id)
	if err != nil {
		if errors.Is(err, service.ErrBusinessNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		log.Printf("[admin] business %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch business details"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"business": b})
}

func (h *AdminHandler) SetBusinessStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req struct {
		IsActive *bool `json:"is_active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "is_active is required"})
		return
	}
	b, err := h.admin.SetBusinessActive(id, *req.IsActive)
	if err != nil {
		if errors.Is(err, service.ErrBusinessNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		log.Printf("[admin] set business %d active=%v: %v", id, *req.IsActive, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update business status"})
		return
	}
	action := "block"
	if *req.IsActive {
		action = "activate"
	}
	auditCaller(h.audit, c, action, "business", id)
	c.JSON(http.StatusOK, gin.H{"message": "Business " + action + "d successfully", "business": b})
}

func (h *AdminHandler) ListAccessCodes(c *gin.Context) {
	list, err := h.codes.List()
	if err != nil {
		log.Printf("[admin] list access codes: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch access codes"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_codes": list})
}

func (h *AdminHandler) CreateAccessCode(c *gin.Context) {
	var req struct {
		BusinessName string `json:"business_name" binding:"required"`
		ExpiryDays   int    `json:"expiry_days" binding:"gte=0,lte=365"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ac, err := h.codes.Create(req.BusinessName, req.ExpiryDays, c.GetUint("account_id"))
	if err != nil {
		log.Printf("[admin] create access code: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate access code"})
		return
	}
	auditCaller(h.audit, c, "create", "access_code", ac.ID)
	c.JSON(http.StatusCreated, gin.H{"message": "Access code generated successfully", "access_code": ac})
}

func (h *AdminHandler) ExtendAccessCode(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req struct {
		AdditionalDays int `json:"additional_days"`
	}
	_ = c.ShouldBindJSON(&req)
	ac, err := h.codes.Extend(id, req.AdditionalDays)
	if err != nil {
		h.accessCodeError(c, id, err)
		return
	}
	auditCaller(h.audit, c, "extend", "access_code", id)
	c.JSON(http.StatusOK, gin.H{"message": "Access code extended successfully", "access_code": ac})
}

func (h *AdminHandler) RevokeAccessCode(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	ac, err := h.codes.Revoke(id)
	if err != nil {
		h.accessCodeError(c, id, err)
		return
	}
	auditCaller(h.audit, c, "revoke", "access_code", id)
	c.JSON(http.StatusOK, gin.H{"message": "Access code revoked", "access_code": ac})
}

func (h *AdminHandler) accessCodeError(c *gin.Context, id uint, err error) {
	switch {
	case errors.Is(err, service.ErrAccessCodeNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidExtension), errors.Is(err, service.ErrAccessCodeNotActive):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("[admin] access code %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update access code"})
	}
}

// ListMessages returns the WhatsApp message log, newest first, optionally filtered by ?phone=.
func (h *AdminHandler) ListMessages(c *gin.Context) {
	page, limit := parsePagination(c)
	list, total, err := h.messages.List(c.Query("phone"), page, limit)
	if err != nil {
		log.Printf("[admin] list messages: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch messages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list, "total": total, "page": page, "limit": limit, "generated_at": time.Now().UTC()})
}
