package repository

import (
	"context"
	"strings"

	"whatsledger/internal/models"

	"gorm.io/gorm"
)

type CustomerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) Create(ctx context.Context, c *models.Customer) error {
	return r.db.WithContext(ctx).Create(c).Error
}

// FindByNameCI matches the whole name ignoring case. The oldest customer wins when names repeat.
func (r *CustomerRepository) FindByNameCI(ctx context.Context, name string) (*models.Customer, error) {
	var c models.Customer
	err := r.db.WithContext(ctx).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).
		Order("id ASC").
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CustomerRepository) FindByPhone(ctx context.Context, phone string) (*models.Customer, error) {
	var c models.Customer
	err := r.db.WithContext(ctx).Where("phone = ?", phone).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CustomerRepository) GetByID(ctx context.Context, id uint) (*models.Customer, error) {
	var c models.Customer
	err := r.db.WithContext(ctx).First(&c, id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetWithPayments loads a customer and all of its payments.
func (r *CustomerRepository) GetWithPayments(ctx context.Context, id uint) (*models.Customer, error) {
	var c models.Customer
	err := r.db.WithContext(ctx).Preload("Payments").First(&c, id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListWithPayments returns every customer, newest first, with payments preloaded for balance computation.
func (r *CustomerRepository) ListWithPayments(ctx context.Context) ([]models.Customer, error) {
	var list []models.Customer
	err := r.db.WithContext(ctx).Preload("Payments").Order("created_at DESC").Find(&list).Error
	return list, err
}

// PhoneTaken reports whether another customer already uses phone.
func (r *CustomerRepository) PhoneTaken(ctx context.Context, phone string, excludeID uint) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.Customer{}).Where("phone = ?", phone)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

func (r *CustomerRepository) Update(ctx context.Context, c *models.Customer) error {
	return r.db.WithContext(ctx).Save(c).Error
}

// ReplacePhone gives every customer holding phone a fresh value from gen. It returns how many changed.
func (r *CustomerRepository) ReplacePhone(ctx context.Context, phone string, gen func() string) (int, error) {
	var list []models.Customer
	if err := r.db.WithContext(ctx).Where("phone = ?", phone).Find(&list).Error; err != nil {
		return 0, err
	}
	for _, c := range list {
		if err := r.db.WithContext(ctx).Model(&models.Customer{}).Where("id = ?", c.ID).Update("phone", gen()).Error; err != nil {
			return 0, err
		}
	}
	return len(list), nil
}
