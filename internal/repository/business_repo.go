package repository

import (
	"whatsledger/internal/models"

	"gorm.io/gorm"
)

type BusinessRepository struct {
	db *gorm.DB
}

func NewBusinessRepository(db *gorm.DB) *BusinessRepository {
	return &BusinessRepository{db: db}
}

func (r *BusinessRepository) Create(b *models.Business) error {
	return r.db.Create(b).Error
}

func (r *BusinessRepository) GetByID(id uint) (*models.Business, error) {
	var b models.Business
	err := r.db.First(&b, id).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BusinessRepository) GetByEmail(email string) (*models.Business, error) {
	var b models.Business
	err := r.db.Where("email = ?", email).First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BusinessRepository) List(search string, page, limit int) ([]models.Business, int64, error) {
	q := r.db.Model(&models.Business{})
	if search != "" {
		q = q.Where("name LIKE ? OR email LIKE ?", "%"+search+"%", "%"+search+"%")
	}
	var total int64
	q.Count(&total)
	var list []models.Business
	err := q.Order("created_at DESC").Limit(limit).Offset((page - 1) * limit).Find(&list).Error
	return list, total, err
}

func (r *BusinessRepository) SetActive(id uint, active bool) error {
	res := r.db.Model(&models.Business{}).Where("id = ?", id).Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CreateWithCode creates the business and marks the access code used in one transaction.
func (r *BusinessRepository) CreateWithCode(b *models.Business, code *models.AccessCode) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		b.AccessCodeID = &code.ID
		if err := tx.Create(b).Error; err != nil {
			return err
		}
		return markCodeUsed(tx, code, b.ID)
	})
}
