package repository

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"whatsledger/internal/domain"
	"whatsledger/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AccessCodeRepository struct {
	db *gorm.DB
}

func NewAccessCodeRepository(db *gorm.DB) *AccessCodeRepository {
	return &AccessCodeRepository{db: db}
}

// generateAccessCode returns a code like "A3F2-C1B0".
func generateAccessCode() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	s := strings.ToUpper(hex.EncodeToString(b))
	return s[:4] + "-" + s[4:], nil
}

// Create stores a new active code, retrying on the rare collision.
func (r *AccessCodeRepository) Create(businessName string, expiresAt time.Time, createdBy *uint) (*models.AccessCode, error) {
	for i := 0; i < 10; i++ {
		code, err := generateAccessCode()
		if err != nil {
			return nil, err
		}
		ac := models.AccessCode{
			Code:         code,
			BusinessName: businessName,
			Status:       domain.AccessCodeActive,
			ExpiresAt:    expiresAt,
			CreatedByID:  createdBy,
		}
		if err := r.db.Create(&ac).Error; err == nil {
			return &ac, nil
		}
		// Collision: retry with new code
	}
	return nil, fmt.Errorf("failed to generate a unique access code after retries")
}

func (r *AccessCodeRepository) GetByID(id uint) (*models.AccessCode, error) {
	var ac models.AccessCode
	err := r.db.Preload("UsedBy").First(&ac, id).Error
	if err != nil {
		return nil, err
	}
	return &ac, nil
}

func (r *AccessCodeRepository) GetByCode(code string) (*models.AccessCode, error) {
	var ac models.AccessCode
	err := r.db.Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).First(&ac).Error
	if err != nil {
		return nil, err
	}
	return &ac, nil
}

// List returns all codes newest first with the redeeming business preloaded.
func (r *AccessCodeRepository) List() ([]models.AccessCode, error) {
	var list []models.AccessCode
	err := r.db.Preload("UsedBy").Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *AccessCodeRepository) Update(ac *models.AccessCode) error {
	return r.db.Omit(clause.Associations).Save(ac).Error
}

func markCodeUsed(tx *gorm.DB, code *models.AccessCode, businessID uint) error {
	now := time.Now()
	res := tx.Model(&models.AccessCode{}).
		Where("id = ? AND status = ?", code.ID, domain.AccessCodeActive).
		Updates(map[string]interface{}{"status": domain.AccessCodeUsed, "used_by_id": businessID, "used_at": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	code.Status = domain.AccessCodeUsed
	code.UsedByID = &businessID
	code.UsedAt = &now
	return nil
}
