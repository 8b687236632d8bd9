package models

import (
	"time"

	"whatsledger/internal/domain"
)

// AccessCode is a one-time registration code issued by an admin to a business.
type AccessCode struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Code         string     `gorm:"uniqueIndex;size:16;not null" json:"code"` // XXXX-XXXX
	BusinessName string     `gorm:"size:255;not null" json:"business_name"`
	Status       string     `gorm:"size:20;not null;index;default:'active'" json:"status"`
	ExpiresAt    time.Time  `gorm:"not null" json:"expires_at"`
	CreatedByID  *uint      `gorm:"index" json:"created_by_id,omitempty"`
	UsedByID     *uint      `gorm:"index" json:"used_by_id,omitempty"`
	UsedAt       *time.Time `json:"used_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	UsedBy *Business `gorm:"foreignKey:UsedByID" json:"used_by,omitempty"`
}

func (AccessCode) TableName() string {
	return "access_codes"
}

func (a *AccessCode) IsUsed() bool { return a.Status == domain.AccessCodeUsed }

// Redeemable reports whether the code is active and not past its expiry at t.
func (a *AccessCode) Redeemable(t time.Time) bool {
	return a.Status == domain.AccessCodeActive && t.Before(a.ExpiresAt)
}
