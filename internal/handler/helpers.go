package handler

import (
	"net/http"
	"strconv"
	"time"

	"whatsledger/internal/middleware"
	"whatsledger/internal/models"

	"github.com/gin-gonic/gin"
)

// Auditor persists audit entries for account actions.
type Auditor interface {
	Create(log *models.AuditLog) error
}

func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

// parseID reads the :id path parameter and answers 400 itself when it is invalid.
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}

// parseDate accepts YYYY-MM-DD or RFC 3339; empty means zero time.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func audit(a Auditor, c *gin.Context, actorID uint, role, action, resource, resourceID string) {
	if a == nil {
		return
	}
	var actor *uint
	if actorID != 0 {
		actor = &actorID
	}
	_ = a.Create(&models.AuditLog{
		ActorID:    actor,
		ActorRole:  role,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		IP:         c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
	})
}

// auditCaller records an action by the authenticated account.
func auditCaller(a Auditor, c *gin.Context, action, resource string, resourceID uint) {
	audit(a, c, middleware.GetAccountID(c), c.GetString("role"), action, resource, strconv.FormatUint(uint64(resourceID), 10))
}
