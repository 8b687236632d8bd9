package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Payment struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	CustomerID     uint            `gorm:"not null;index" json:"customer_id"`
	Amount         decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
	Direction      string          `gorm:"size:10;not null;index" json:"direction"` // CREDIT | DEBIT
	Method         string          `gorm:"size:50;not null;default:'Cash'" json:"method"`
	Date           time.Time       `gorm:"not null;index" json:"date"`
	Note           string          `gorm:"type:text" json:"note"`
	RecordedBy     string          `gorm:"size:64" json:"recorded_by"`
	ReceiptURL     string          `gorm:"size:512" json:"receipt_url,omitempty"`
	IdempotencyKey *string         `gorm:"size:255;uniqueIndex" json:"-"` // provider:message_id; nil for dashboard entries
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`

	Customer *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
}

func (Payment) TableName() string {
	return "payments"
}
