package models

import "time"

// Customer is a counterparty the business exchanges money with. Names are free text
// and not unique; Phone is unique and holds a placeholder token when unknown.
type Customer struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null;index" json:"name"`
	Phone     string    `gorm:"size:64;uniqueIndex;not null" json:"phone"`
	Email     string    `gorm:"size:255" json:"email"`
	Address   string    `gorm:"size:512" json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Payments []Payment `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE" json:"payments,omitempty"`
}

func (Customer) TableName() string {
	return "customers"
}
