package handler

import (
	"context"
	"errors"
	"log"
	"net/http"

	"whatsledger/internal/service"
	"whatsledger/pkg/whatsapp"

	"github.com/gin-gonic/gin"
)

type WhatsAppSettings interface {
	WhatsApp() (map[string]map[string]interface{}, error)
	SaveWhatsApp(provider string, data map[string]string) error
	SendTest(ctx context.Context, phone string) (*whatsapp.SendResult, error)
}

type SettingsHandler struct {
	svc   WhatsAppSettings
	audit Auditor
}

func NewSettingsHandler(svc WhatsAppSettings, audit Auditor) *SettingsHandler {
	return &SettingsHandler{svc: svc, audit: audit}
}

func (h *SettingsHandler) GetWhatsApp(c *gin.Context) {
	settings, err := h.svc.WhatsApp()
	if err != nil {
		log.Printf("[settings] load: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch WhatsApp settings"})
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (h *SettingsHandler) SaveWhatsApp(c *gin.Context) {
	var req struct {
		Provider string            `json:"provider" binding:"required"`
		Data     map[string]string `json:"data" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "provider and data are required"})
		return
	}
	if err := h.svc.SaveWhatsApp(req.Provider, req.Data); err != nil {
		if errors.Is(err, service.ErrUnknownProvider) || errors.Is(err, service.ErrUnknownSetting) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Printf("[settings] save %s: %v", req.Provider, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save WhatsApp settings"})
		return
	}
	auditCaller(h.audit, c, "update_settings", "whatsapp."+req.Provider, 0)
	c.JSON(http.StatusOK, gin.H{"message": "Settings saved successfully", "provider": req.Provider})
}

func (h *SettingsHandler) TestWhatsApp(c *gin.Context) {
	var req struct {
		PhoneNumber string `json:"phone_number" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "phone_number is required"})
		return
	}
	res, err := h.svc.SendTest(c.Request.Context(), req.PhoneNumber)
	if err != nil {
		log.Printf("[settings] test message to %s: %v", req.PhoneNumber, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to send test message", "detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Test message sent successfully", "result": res})
}
