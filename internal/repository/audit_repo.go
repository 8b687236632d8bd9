package repository

import (
	"context"

	"whatsledger/internal/domain"
	"whatsledger/internal/models"

	"gorm.io/gorm"
)

type AuditLogRepository struct {
	db *gorm.DB
}

func NewAuditLogRepository(db *gorm.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

func (r *AuditLogRepository) Create(log *models.AuditLog) error {
	return r.db.Create(log).Error
}

type MessageLogRepository struct {
	db *gorm.DB
}

func NewMessageLogRepository(db *gorm.DB) *MessageLogRepository {
	return &MessageLogRepository{db: db}
}

func (r *MessageLogRepository) Create(ctx context.Context, m *models.MessageLog) error {
	return r.db.WithContext(ctx).Create(m).Error
}

// List returns message logs newest first, optionally filtered by phone.
func (r *MessageLogRepository) List(phone string, page, limit int) ([]models.MessageLog, int64, error) {
	q := r.db.Model(&models.MessageLog{})
	if phone != "" {
		q = q.Where("phone = ?", phone)
	}
	var total int64
	q.Count(&total)
	var list []models.MessageLog
	err := q.Order("created_at DESC").Limit(limit).Offset((page - 1) * limit).Find(&list).Error
	return list, total, err
}

// CountByPhone returns the incoming and outgoing message counts for phone.
func (r *MessageLogRepository) CountByPhone(phone string) (incoming, outgoing int64, err error) {
	if err = r.db.Model(&models.MessageLog{}).Where("phone = ? AND direction = ?", phone, domain.MessageIncoming).Count(&incoming).Error; err != nil {
		return 0, 0, err
	}
	err = r.db.Model(&models.MessageLog{}).Where("phone = ? AND direction = ?", phone, domain.MessageOutgoing).Count(&outgoing).Error
	return incoming, outgoing, err
}
