package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"whatsledger/internal/domain"
	"whatsledger/internal/models"
	"whatsledger/internal/service"
	"whatsledger/pkg/whatsapp"

	"github.com/gin-gonic/gin"
)

type Authenticator interface {
	RegisterBusiness(in service.BusinessRegistration) (*models.Business, error)
	RegisterWithCode(in service.BusinessRegistration, code string) (*models.Business, error)
	LoginBusiness(email, password string) (*models.Business, string, error)
	LoginAdmin(email, password string) (*models.Admin, string, error)
}

type AuthHandler struct {
	svc   Authenticator
	audit Auditor
}

func NewAuthHandler(svc Authenticator, audit Auditor) *AuthHandler {
	return &AuthHandler{svc: svc, audit: audit}
}

type RegisterRequest struct {
	Name        string `json:"name" binding:"required"`
	OwnerName   string `json:"owner_name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	PhoneNumber string `json:"phone_number" binding:"required"`
	Password    string `json:"password" binding:"required,min=6"`
	AccessCode  string `json:"access_code"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (r RegisterRequest) registration() service.BusinessRegistration {
	return service.BusinessRegistration{
		Name:        r.Name,
		OwnerName:   r.OwnerName,
		Email:       r.Email,
		PhoneNumber: r.PhoneNumber,
		Password:    r.Password,
	}
}

func (h *AuthHandler) bindRegistration(c *gin.Context) (RegisterRequest, bool) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return req, false
	}
	if !whatsapp.IsValidNumber(req.PhoneNumber) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid phone number format"})
		return req, false
	}
	return req, true
}

func (h *AuthHandler) Register(c *gin.Context) {
	req, ok := h.bindRegistration(c)
	if !ok {
		return
	}
	b, err := h.svc.RegisterBusiness(req.registration())
	h.registered(c, b, err)
}

func (h *AuthHandler) RegisterWithCode(c *gin.Context) {
	req, ok := h.bindRegistration(c)
	if !ok {
		return
	}
	if req.AccessCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "access_code is required"})
		return
	}
	b, err := h.svc.RegisterWithCode(req.registration(), req.AccessCode)
	h.registered(c, b, err)
}

func (h *AuthHandler) registered(c *gin.Context, b *models.Business, err error) {
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailExists),
			errors.Is(err, service.ErrInvalidAccessCode),
			errors.Is(err, service.ErrAccessCodeExpired):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			log.Printf("[auth] register failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		}
		return
	}
	audit(h.audit, c, b.ID, domain.RoleBusiness, "register", "business", strconv.FormatUint(uint64(b.ID), 10))
	c.JSON(http.StatusCreated, gin.H{"message": "Business registered successfully", "business": b})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	b, token, err := h.svc.LoginBusiness(req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCreds):
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrAccountDisabled):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			log.Printf("[auth] business login failed: email=%s err=%v", req.Email, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		}
		return
	}
	audit(h.audit, c, b.ID, domain.RoleBusiness, "login", "business", strconv.FormatUint(uint64(b.ID), 10))
	c.JSON(http.StatusOK, gin.H{"message": "Login successful", "token": token, "business": b})
}

func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	a, token, err := h.svc.LoginAdmin(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCreds) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		log.Printf("[auth] admin login failed: email=%s err=%v", req.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	audit(h.audit, c, a.ID, domain.RoleAdmin, "login", "admin", strconv.FormatUint(uint64(a.ID), 10))
	c.JSON(http.StatusOK, gin.H{"token": token, "admin": a})
}
