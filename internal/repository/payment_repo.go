package repository

import (
	"context"

	"whatsledger/internal/models"

	"gorm.io/gorm"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Insert returns gorm.ErrDuplicatedKey when the idempotency key already exists (requires TranslateError).
func (r *PaymentRepository) Insert(ctx context.Context, p *models.Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PaymentRepository) GetByID(ctx context.Context, id uint) (*models.Payment, error) {
	var p models.Payment
	err := r.db.WithContext(ctx).Preload("Customer").First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) GetByIdempotencyKey(ctx context.Context, key string) (*models.Payment, error) {
	var p models.Payment
	err := r.db.WithContext(ctx).Preload("Customer").Where("idempotency_key = ?", key).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) ListByCustomer(ctx context.Context, customerID uint) ([]models.Payment, error) {
	var list []models.Payment
	err := r.db.WithContext(ctx).Where("customer_id = ?", customerID).Order("date DESC").Find(&list).Error
	return list, err
}

// PageByCustomer returns one page of a customer's payments, newest first, and the total count.
func (r *PaymentRepository) PageByCustomer(ctx context.Context, customerID uint, page, limit int) ([]models.Payment, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Payment{}).Where("customer_id = ?", customerID)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []models.Payment
	err := q.Order("date DESC").Limit(limit).Offset((page - 1) * limit).Find(&list).Error
	return list, total, err
}

// Page returns one page of all payments with their customers, newest first.
func (r *PaymentRepository) Page(ctx context.Context, page, limit int) ([]models.Payment, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Payment{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []models.Payment
	err := r.db.WithContext(ctx).Preload("Customer").Order("date DESC").Limit(limit).Offset((page - 1) * limit).Find(&list).Error
	return list, total, err
}

func (r *PaymentRepository) ListAll(ctx context.Context) ([]models.Payment, error) {
	var list []models.Payment
	err := r.db.WithContext(ctx).Find(&list).Error
	return list, err
}

func (r *PaymentRepository) Recent(ctx context.Context, limit int) ([]models.Payment, error) {
	var list []models.Payment
	err := r.db.WithContext(ctx).Preload("Customer").Order("date DESC").Limit(limit).Find(&list).Error
	return list, err
}

func (r *PaymentRepository) SetReceiptURL(ctx context.Context, id uint, url string) error {
	return r.db.WithContext(ctx).Model(&models.Payment{}).Where("id = ?", id).Update("receipt_url", url).Error
}

// Delete removes a payment. It returns gorm.ErrRecordNotFound if nothing was deleted.
func (r *PaymentRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Payment{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteAll wipes payments and then customers.
func (r *PaymentRepository) DeleteAll(ctx context.Context) (payments, customers int64, err error) {
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Payment{})
		if res.Error != nil {
			return res.Error
		}
		payments = res.RowsAffected
		res = tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Customer{})
		if res.Error != nil {
			return res.Error
		}
		customers = res.RowsAffected
		return nil
	})
	return payments, customers, err
}
