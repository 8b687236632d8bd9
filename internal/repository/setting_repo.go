package repository

import (
	"whatsledger/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingRepository struct {
	db *gorm.DB
}

func NewSettingRepository(db *gorm.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

func (r *SettingRepository) Set(key, value string) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&models.SystemSetting{Key: key, Value: value}).Error
}

// GetMany returns the stored values for keys; missing keys are absent from the map.
func (r *SettingRepository) GetMany(keys []string) (map[string]string, error) {
	values := make([]interface{}, len(keys))
	for i, k := range keys {
		values[i] = k
	}
	var list []models.SystemSetting
	if err := r.db.Where(clause.IN{Column: clause.Column{Name: "key"}, Values: values}).Find(&list).Error; err != nil {
		return nil, err
	}
	out := make(map[string]string, len(list))
	for _, s := range list {
		out[s.Key] = s.Value
	}
	return out, nil
}

func (r *SettingRepository) SetMany(values map[string]string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		repo := &SettingRepository{db: tx}
		for k, v := range values {
			if err := repo.Set(k, v); err != nil {
				return err
			}
		}
		return nil
	})
}
