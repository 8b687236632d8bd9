package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"whatsledger/internal/models"
	"whatsledger/internal/repository"
	"whatsledger/internal/service"
	"whatsledger/pkg/whatsapp"

	"github.com/gin-gonic/gin"
)

// ---- mock implementations ----

type mockBusinessAdmin struct {
	getFn    func(uint) (*service.BusinessDetail, error)
	activeFn func(uint, bool) (*models.Business, error)
}

func (m *mockBusinessAdmin) ListBusinesses(string, int, int) ([]models.Business, int64, error) {
	return []models.Business{{ID: 1, Name: "Duka"}}, 1, nil
}
func (m *mockBusinessAdmin) Business(id uint) (*service.BusinessDetail, error) {
	if m.getFn != nil {
		return m.getFn(id)
	}
	return nil, errNotConfigured
}
func (m *mockBusinessAdmin) SetBusinessActive(id uint, active bool) (*models.Business, error) {
	if m.activeFn != nil {
		return m.activeFn(id, active)
	}
	return nil, errNotConfigured
}
func (m *mockBusinessAdmin) Stats() (*repository.PlatformStats, []repository.TimeSeriesPoint, error) {
	return &repository.PlatformStats{TotalBusinesses: 2}, nil, nil
}

type mockAccessCodes struct {
	createFn func(string, int) (*models.AccessCode, error)
	extendFn func(uint, int) (*models.AccessCode, error)
}

func (m *mockAccessCodes) Create(name string, days int, _ uint) (*models.AccessCode, error) {
	if m.createFn != nil {
		return m.createFn(name, days)
	}
	return nil, errNotConfigured
}
func (m *mockAccessCodes) List() ([]service.AccessCodeView, error) { return nil, nil }
func (m *mockAccessCodes) Extend(id uint, days int) (*models.AccessCode, error) {
	if m.extendFn != nil {
		return m.extendFn(id, days)
	}
	return nil, errNotConfigured
}
func (m *mockAccessCodes) Revoke(uint) (*models.AccessCode, error) {
	return nil, service.ErrAccessCodeNotFound
}

type mockMessageLogs struct {
	phone string
}

func (m *mockMessageLogs) List(phone string, page, limit int) ([]models.MessageLog, int64, error) {
	m.phone = phone
	return []models.MessageLog{{ID: 1, Phone: phone}}, 1, nil
}

type mockSettings struct {
	saveErr error
	sent    string
}

func (m *mockSettings) WhatsApp() (map[string]map[string]interface{}, error) {
	return map[string]map[string]interface{}{"meta": {"access_token": "EAAB****1234"}}, nil
}
func (m *mockSettings) SaveWhatsApp(string, map[string]string) error { return m.saveErr }
func (m *mockSettings) SendTest(_ context.Context, phone string) (*whatsapp.SendResult, error) {
	m.sent = phone
	return &whatsapp.SendResult{Provider: "log"}, nil
}

// ---- helpers ----

func newAdminTestRouter(admin BusinessAdmin, codes AccessCodes, msgs MessageLogs, settings WhatsAppSettings) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("account_id", uint(1))
		c.Set("role", "admin")
		c.Next()
	})
	h := NewAdminHandler(admin, codes, msgs, &mockAuditor{})
	r.GET("/admin/stats", h.Dashboard)
	r.GET("/admin/businesses", h.ListBusinesses)
	r.GET("/admin/businesses/:id", h.GetBusiness)
	r.PUT("/admin/businesses/:id/status", h.SetBusinessStatus)
	r.POST("/admin/access-codes", h.CreateAccessCode)
	r.PUT("/admin/access-codes/:id/extend", h.ExtendAccessCode)
	r.DELETE("/admin/access-codes/:id", h.RevokeAccessCode)
	r.GET("/admin/messages", h.ListMessages)
	s := NewSettingsHandler(settings, &mockAuditor{})
	r.GET("/admin/settings/whatsapp", s.GetWhatsApp)
	r.POST("/admin/settings/whatsapp", s.SaveWhatsApp)
	r.POST("/admin/settings/whatsapp/test", s.TestWhatsApp)
	return r
}

// ---- tests ----

func TestAdminBusinesses(t *testing.T) {
	admin := &mockBusinessAdmin{
		getFn: func(id uint) (*service.BusinessDetail, error) {
			if id != 1 {
				return nil, service.ErrBusinessNotFound
			}
			return &service.BusinessDetail{Business: &models.Business{ID: 1}}, nil
		},
		activeFn: func(id uint, active bool) (*models.Business, error) {
			return &models.Business{ID: id, IsActive: active}, nil
		},
	}
	tests := []struct {
		name           string
		method, url    string
		body           interface{}
		expectedStatus int
	}{
		{"list", http.MethodGet, "/admin/businesses?page=2&limit=500", nil, http.StatusOK},
		{"get", http.MethodGet, "/admin/businesses/1", nil, http.StatusOK},
		{"get missing", http.MethodGet, "/admin/businesses/2", nil, http.StatusNotFound},
		{"block", http.MethodPut, "/admin/businesses/1/status", map[string]bool{"is_active": false}, http.StatusOK},
		{"status required", http.MethodPut, "/admin/businesses/1/status", map[string]string{}, http.StatusBadRequest},
		{"stats", http.MethodGet, "/admin/stats", nil, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newAdminTestRouter(admin, &mockAccessCodes{}, &mockMessageLogs{}, &mockSettings{})
			w := doJSON(router, tt.method, tt.url, tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestAdminListClampsLimit(t *testing.T) {
	router := newAdminTestRouter(&mockBusinessAdmin{}, &mockAccessCodes{}, &mockMessageLogs{}, &mockSettings{})
	w := doJSON(router, http.MethodGet, "/admin/businesses?page=2&limit=500", nil)
	var got struct {
		Page  int `json:"page"`
		Limit int `json:"limit"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Page != 2 || got.Limit != 20 {
		t.Errorf("page=%d limit=%d", got.Page, got.Limit)
	}
}

func TestAdminAccessCodes(t *testing.T) {
	codes := &mockAccessCodes{
		createFn: func(name string, days int) (*models.AccessCode, error) {
			return &models.AccessCode{ID: 5, Code: "ABCD1234", BusinessName: name, ExpiresAt: time.Now().AddDate(0, 0, days)}, nil
		},
		extendFn: func(id uint, days int) (*models.AccessCode, error) {
			if days <= 0 {
				return nil, service.ErrInvalidExtension
			}
			return &models.AccessCode{ID: id}, nil
		},
	}
	tests := []struct {
		name           string
		method, url    string
		body           interface{}
		expectedStatus int
	}{
		{"create", http.MethodPost, "/admin/access-codes", map[string]interface{}{"business_name": "Duka", "expiry_days": 7}, http.StatusCreated},
		{"create without name", http.MethodPost, "/admin/access-codes", map[string]interface{}{"expiry_days": 7}, http.StatusBadRequest},
		{"extend", http.MethodPut, "/admin/access-codes/5/extend", map[string]int{"additional_days": 3}, http.StatusOK},
		{"extend by zero", http.MethodPut, "/admin/access-codes/5/extend", map[string]int{"additional_days": 0}, http.StatusBadRequest},
		{"revoke missing", http.MethodDelete, "/admin/access-codes/9", nil, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newAdminTestRouter(&mockBusinessAdmin{}, codes, &mockMessageLogs{}, &mockSettings{})
			w := doJSON(router, tt.method, tt.url, tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestAdminMessagesFilter(t *testing.T) {
	msgs := &mockMessageLogs{}
	router := newAdminTestRouter(&mockBusinessAdmin{}, &mockAccessCodes{}, msgs, &mockSettings{})
	w := doJSON(router, http.MethodGet, "/admin/messages?phone=254700000001", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	if msgs.phone != "254700000001" {
		t.Errorf("phone filter = %q", msgs.phone)
	}
}

func TestSettingsEndpoints(t *testing.T) {
	settings := &mockSettings{}
	router := newAdminTestRouter(&mockBusinessAdmin{}, &mockAccessCodes{}, &mockMessageLogs{}, settings)

	if w := doJSON(router, http.MethodGet, "/admin/settings/whatsapp", nil); w.Code != http.StatusOK {
		t.Errorf("get settings: %d", w.Code)
	}
	body := map[string]interface{}{"provider": "meta", "data": map[string]string{"access_token": "x"}}
	if w := doJSON(router, http.MethodPost, "/admin/settings/whatsapp", body); w.Code != http.StatusOK {
		t.Errorf("save settings: %d %s", w.Code, w.Body.String())
	}
	settings.saveErr = service.ErrUnknownProvider
	if w := doJSON(router, http.MethodPost, "/admin/settings/whatsapp", body); w.Code != http.StatusBadRequest {
		t.Errorf("unknown provider: %d", w.Code)
	}
	if w := doJSON(router, http.MethodPost, "/admin/settings/whatsapp/test", map[string]string{}); w.Code != http.StatusBadRequest {
		t.Errorf("test without phone: %d", w.Code)
	}
	w := doJSON(router, http.MethodPost, "/admin/settings/whatsapp/test", map[string]string{"phone_number": "+254700000001"})
	if w.Code != http.StatusOK || settings.sent != "+254700000001" {
		t.Errorf("test message: %d sent=%q", w.Code, settings.sent)
	}
}
