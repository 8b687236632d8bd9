package ws

import (
	"whatsledger/internal/models"

	"github.com/shopspring/decimal"
)

const EventPaymentRecorded = "payment_recorded"

type PaymentEvent struct {
	Type     string           `json:"type"`
	Payment  *models.Payment  `json:"payment"`
	Customer *models.Customer `json:"customer"`
	Balance  decimal.Decimal  `json:"balance"`
}

// PaymentNotifier pushes every stored payment to connected dashboards.
type PaymentNotifier struct {
	hub *Hub
}

func NewPaymentNotifier(hub *Hub) *PaymentNotifier {
	return &PaymentNotifier{hub: hub}
}

func (n *PaymentNotifier) PaymentRecorded(p *models.Payment, c *models.Customer, balance decimal.Decimal) {
	n.hub.BroadcastAll(PaymentEvent{
		Type:     EventPaymentRecorded,
		Payment:  p,
		Customer: c,
		Balance:  balance,
	})
}
