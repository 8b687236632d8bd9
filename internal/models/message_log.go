package models

import "time"

// MessageLog records every inbound WhatsApp message and the reply sent back.
type MessageLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Provider  string    `gorm:"size:20;not null;index" json:"provider"`
	Direction string    `gorm:"size:10;not null;index" json:"direction"` // INCOMING | OUTGOING
	Phone     string    `gorm:"size:64;not null;index" json:"phone"`
	Body      string    `gorm:"type:text" json:"body"`
	MessageID string    `gorm:"size:255;index" json:"message_id,omitempty"`
	Intent    string    `gorm:"size:20" json:"intent,omitempty"`
	State     string    `gorm:"size:20" json:"state,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (MessageLog) TableName() string {
	return "message_logs"
}
