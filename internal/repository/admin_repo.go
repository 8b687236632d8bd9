package repository

import (
	"time"

	"whatsledger/internal/domain"
	"whatsledger/internal/models"

	"gorm.io/gorm"
)

type PlatformStats struct {
	TotalBusinesses   int64 `json:"total_businesses"`
	ActiveBusinesses  int64 `json:"active_businesses"`
	ActiveAccessCodes int64 `json:"active_access_codes"`
	UsedAccessCodes   int64 `json:"used_access_codes"`
	TotalCustomers    int64 `json:"total_customers"`
	TotalPayments     int64 `json:"total_payments"`
	MessagesToday     int64 `json:"messages_today"`
}

type TimeSeriesPoint struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type AdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) Create(a *models.Admin) error {
	return r.db.Create(a).Error
}

func (r *AdminRepository) GetByEmail(email string) (*models.Admin, error) {
	var a models.Admin
	err := r.db.Where("email = ?", email).First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AdminRepository) GetPlatformStats() (*PlatformStats, error) {
	var s PlatformStats
	counts := []struct {
		q   *gorm.DB
		dst *int64
	}{
		{r.db.Model(&models.Business{}), &s.TotalBusinesses},
		{r.db.Model(&models.Business{}).Where("is_active = ?", true), &s.ActiveBusinesses},
		{r.db.Model(&models.AccessCode{}).Where("status = ?", domain.AccessCodeActive), &s.ActiveAccessCodes},
		{r.db.Model(&models.AccessCode{}).Where("status = ?", domain.AccessCodeUsed), &s.UsedAccessCodes},
		{r.db.Model(&models.Customer{}), &s.TotalCustomers},
		{r.db.Model(&models.Payment{}), &s.TotalPayments},
		{r.db.Model(&models.MessageLog{}).Where("created_at >= ?", startOfDay(time.Now())), &s.MessagesToday},
	}
	for _, c := range counts {
		if err := c.q.Count(c.dst).Error; err != nil {
			return nil, err
		}
	}
	return &s, nil
}

// MessagesByDay returns daily inbound message counts for the last N days.
func (r *AdminRepository) MessagesByDay(days int) ([]TimeSeriesPoint, error) {
	since := time.Now().AddDate(0, 0, -days)
	var points []TimeSeriesPoint
	err := r.db.Model(&models.MessageLog{}).
		Select("DATE(created_at) as date, COUNT(*) as count").
		Where("direction = ? AND created_at >= ?", domain.MessageIncoming, since).
		Group("DATE(created_at)").
		Order("date ASC").
		Scan(&points).Error
	return points, err
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
